package coco2yolo

import (
	"fmt"
	"strings"
)

// Vocabulary is the ordered list of class names a detector is trained on. A name's position is
// its class index.
type Vocabulary []string

// COCO80 is the YOLOv5 order of the 80 COCO object classes.
var COCO80 = Vocabulary{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat", "dog",
	"horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack", "umbrella",
	"handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball", "kite",
	"baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket", "bottle",
	"wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple", "sandwich", "orange",
	"broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair", "couch", "potted plant",
	"bed", "dining table", "toilet", "tv", "laptop", "mouse", "remote", "keyboard", "cell phone",
	"microwave", "oven", "toaster", "sink", "refrigerator", "book", "clock", "vase", "scissors",
	"teddy bear", "hair drier", "toothbrush",
}

// Index returns the first class index of name.
func (v Vocabulary) Index(name string) (int, bool) {
	for i, n := range v {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// Name returns the class name for index i, or "" if i is out of range.
func (v Vocabulary) Name(i int) string {
	if i < 0 || i >= len(v) {
		return ""
	}
	return v[i]
}

// Validate checks that the vocabulary is non-empty and that its names are non-empty and unique.
func (v Vocabulary) Validate() error {
	if len(v) == 0 {
		return fmt.Errorf("the class vocabulary is empty")
	}
	seen := make(map[string]int, len(v))
	for i, n := range v {
		if strings.TrimSpace(n) == "" {
			return fmt.Errorf("empty class name at index %d", i)
		}
		if j, ok := seen[n]; ok {
			return fmt.Errorf("duplicate class name %q at indices %d and %d", n, j, i)
		}
		seen[n] = i
	}
	return nil
}

// ReadVocabulary reads class names from the file at path, one per line. Blank lines and lines
// starting with '#' are ignored.
func ReadVocabulary(path string) (Vocabulary, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	vocab := make(Vocabulary, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		vocab = append(vocab, l)
	}

	return vocab, nil
}
