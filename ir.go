package coco2yolo

// The intermediate label representation.

import (
	"fmt"
	"strings"
)

// NormalizedBox is an object label with its center and extent given as fractions of the image
// width and height.
type NormalizedBox struct {
	Class   int // Index into the class vocabulary.
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// String formats the box as a YOLO label line, without the trailing newline.
func (b NormalizedBox) String() string {
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f", b.Class, b.XCenter, b.YCenter, b.Width, b.Height)
}

// Coords returns the box as absolute x1, y1, x2, y2 offsets from the top-left corner of an image
// with the given size.
func (b NormalizedBox) Coords(imgWidth, imgHeight float64) [4]float64 {
	return [4]float64{
		(b.XCenter - b.Width/2) * imgWidth,
		(b.YCenter - b.Height/2) * imgHeight,
		(b.XCenter + b.Width/2) * imgWidth,
		(b.YCenter + b.Height/2) * imgHeight,
	}
}

// LabelFile holds the boxes destined for a single label file, in the order they were found.
type LabelFile struct {
	Name  string      // The label file name, without directory.
	Image ImageRecord // The first image that contributed to the file.
	Boxes []NormalizedBox
}

// LabelFiles accumulates label files, keeping the order in which they were first seen.
type LabelFiles struct {
	files  []*LabelFile
	byName map[string]*LabelFile
}

// NewLabelFiles returns an empty LabelFiles.
func NewLabelFiles() *LabelFiles {
	return &LabelFiles{byName: make(map[string]*LabelFile)}
}

// Append adds box to the label file called name, creating the file entry if necessary.
func (l *LabelFiles) Append(name string, img ImageRecord, box NormalizedBox) {
	f, ok := l.byName[name]
	if !ok {
		f = &LabelFile{Name: name, Image: img}
		l.byName[name] = f
		l.files = append(l.files, f)
	}
	f.Boxes = append(f.Boxes, box)
}

// Files returns the label files in first-seen order.
func (l *LabelFiles) Files() []*LabelFile {
	return l.files
}

// Len is the number of label files.
func (l *LabelFiles) Len() int {
	return len(l.files)
}

// LabelMapping is an ordered list of label (sub-)string replacements.
type LabelMapping []struct{ old, new string }

// ParseLabelMapping parses mappings of the form old=new.
func ParseLabelMapping(mappings []string) (LabelMapping, error) {
	replacements := make(LabelMapping, len(mappings))
	for i, v := range mappings {
		a := strings.Split(v, "=")
		if len(a) != 2 || a[0] == "" {
			return nil, fmt.Errorf("invalid mapping: %v", v)
		}

		replacements[i].old = a[0]
		replacements[i].new = a[1]
	}

	return replacements, nil
}

// Apply applies the replacements, in order, to label.
func (m LabelMapping) Apply(label string) string {
	for _, r := range m {
		label = strings.Replace(label, r.old, r.new, -1)
	}
	return label
}
