// Package coco2yolo converts COCO instance annotations to per-image YOLO label files.
package coco2yolo

// COCO instance annotation specific functionality.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrMissingSource is wrapped by the error LoadDocument returns when the annotation document does
// not exist.
var ErrMissingSource = errors.New("annotation source not found")

// ParseError is returned when an annotation document exists but is not a valid COCO document.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse COCO input from %q: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Category is an entry in the source dataset's category catalog.
type Category struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory,omitempty"`
}

// ImageID identifies an image. COCO exports use integers, other tools strings. Numbers keep their
// JSON text, so 42 and "42" are the same image.
type ImageID string

// UnmarshalJSON accepts a JSON number, string or null.
func (id *ImageID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ImageID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid image id %s", data)
	}
	*id = ImageID(n.String())
	return nil
}

// ImageRecord describes an annotated image. Width and height are in pixels.
type ImageRecord struct {
	ID       ImageID `json:"id"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FileName string  `json:"file_name"`
}

// AnnotationRecord is a single object annotation.
type AnnotationRecord struct {
	ID         int64     `json:"id"`
	ImageID    ImageID   `json:"image_id"`
	CategoryID int64     `json:"category_id"`
	Bbox       []float64 `json:"bbox"` // Absolute x, y, width, height. Nil without a "bbox" key.
}

// hasBox reports whether the annotation carries a usable x, y, width, height box.
func (a AnnotationRecord) hasBox() bool {
	return len(a.Bbox) == 4
}

// Document is a COCO instance annotation file.
type Document struct {
	Categories  []Category         `json:"categories"`
	Images      []ImageRecord      `json:"images"`
	Annotations []AnnotationRecord `json:"annotations"`
}

// LoadDocument reads and parses the COCO annotation document at path.
//
// The returned error wraps ErrMissingSource if the file does not exist, and is a *ParseError if
// the file is not valid JSON of the expected shape.
func LoadDocument(path string) (*Document, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrMissingSource, path)
		}
		return nil, fmt.Errorf("cannot read file %q: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(enc, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return &doc, nil
}

// CategoryMap maps source category IDs to class vocabulary indices.
type CategoryMap map[int64]int

// BuildCategoryMap maps every category whose name, after applying mapping, is in vocab to the
// index of that name. Other categories are left out.
func BuildCategoryMap(categories []Category, vocab Vocabulary, mapping LabelMapping) CategoryMap {
	catMap := make(CategoryMap, len(categories))
	for _, c := range categories {
		if i, ok := vocab.Index(mapping.Apply(c.Name)); ok {
			catMap[c.ID] = i
		}
	}
	return catMap
}
