package coco2yolo

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.jpg")
	require.NoError(t, imaging.Save(image.NewNRGBA(image.Rect(0, 0, 64, 48)), path))

	w, h, err := imageSize(path)
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	_, _, err = imageSize(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}

func TestImageFormat(t *testing.T) {
	tests := map[string]string{
		"a.jpg":      "jpeg",
		"dir/b.JPEG": "jpeg",
		"c.png":      "png",
		"d.gif":      "gif",
		"e.tif":      "tiff",
		"f.bmp":      "bmp",
	}
	for path, want := range tests {
		got, err := imageFormat(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := imageFormat("g.webp")
	assert.Error(t, err)
}
