package coco2yolo

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instances.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "info": {"year": 2017},
  "categories": [{"id": 1, "name": "person", "supercategory": "person"}],
  "images": [{"id": 391895, "width": 640, "height": 360.0, "file_name": "000000391895.jpg"}],
  "annotations": [
    {"id": 7, "image_id": 391895, "category_id": 1, "bbox": [359.17, 146.17, 112.45, 213.57]},
    {"id": 8, "image_id": 391895, "category_id": 1, "segmentation": [[1, 2, 3, 4]]}
  ]
}`), 0644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)

	assert.Equal(t, []Category{{ID: 1, Name: "person", Supercategory: "person"}}, doc.Categories)
	assert.Equal(t, []ImageRecord{{ID: "391895", Width: 640, Height: 360,
		FileName: "000000391895.jpg"}}, doc.Images)
	require.Len(t, doc.Annotations, 2)
	assert.Equal(t, []float64{359.17, 146.17, 112.45, 213.57}, doc.Annotations[0].Bbox)
	assert.True(t, doc.Annotations[0].hasBox())
	assert.Nil(t, doc.Annotations[1].Bbox)
	assert.False(t, doc.Annotations[1].hasBox())
}

func TestLoadDocument_Missing(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSource))

	var parseErr *ParseError
	assert.False(t, errors.As(err, &parseErr))
}

func TestLoadDocument_Malformed(t *testing.T) {
	tests := map[string]string{
		"syntax":        `{"images": [`,
		"type mismatch": `{"images": [{"id": 1, "width": "wide"}]}`,
		"object id":     `{"annotations": [{"image_id": {"id": 1}}]}`,
		"boolean id":    `{"images": [{"id": true}]}`,
		"not an object": `[1, 2, 3]`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			_, err := LoadDocument(path)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, path, parseErr.Path)
			assert.False(t, errors.Is(err, ErrMissingSource))
			assert.Contains(t, err.Error(), "failed to parse COCO input")
		})
	}
}

func TestImageID_UnmarshalJSON(t *testing.T) {
	var d Document
	require.NoError(t, json.Unmarshal([]byte(`{
  "images": [{"id": 42}, {"id": "000002b66c9c498e"}, {"id": 1.5e3}, {"id": null}],
  "annotations": [{"image_id": "42"}, {"image_id": 7}]
}`), &d))

	ids := make([]ImageID, len(d.Images))
	for i, img := range d.Images {
		ids[i] = img.ID
	}
	assert.Equal(t, []ImageID{"42", "000002b66c9c498e", "1.5e3", ""}, ids)
	assert.Equal(t, ImageID("42"), d.Annotations[0].ImageID)
	assert.Equal(t, ImageID("7"), d.Annotations[1].ImageID)
}

func TestBuildCategoryMap(t *testing.T) {
	vocab := Vocabulary{"person", "car", "motorcycle"}
	categories := []Category{
		{ID: 1, Name: "person"},
		{ID: 3, Name: "car"},
		{ID: 4, Name: "motorbike"},
		{ID: 5, Name: "airplane"},
		{ID: 9, Name: "Person"},
	}

	assert.Equal(t, CategoryMap{1: 0, 3: 1}, BuildCategoryMap(categories, vocab, nil))

	mapping, err := ParseLabelMapping([]string{"motorbike=motorcycle"})
	require.NoError(t, err)
	catMap := BuildCategoryMap(categories, vocab, mapping)
	assert.Equal(t, CategoryMap{1: 0, 3: 1, 4: 2}, catMap)

	assert.Equal(t, CategoryMap{1: 0}, BuildCategoryMap(categories[:1], Vocabulary{"person", "person"}, nil),
		"the first matching name wins")

	for _, class := range catMap {
		assert.True(t, class >= 0 && class < len(vocab))
	}
}
