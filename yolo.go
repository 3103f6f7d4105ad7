package coco2yolo

// YOLO label specific functionality.

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultLabelExt is the file extension of YOLO label files.
const DefaultLabelExt = ".txt"

// NormalizeBox converts the absolute x, y, width, height box to a NormalizedBox for an image of
// imgWidth x imgHeight pixels. Each value is clamped to [0, 1] after normalisation.
func NormalizeBox(class int, bbox [4]float64, imgWidth, imgHeight float64) NormalizedBox {
	x, y, w, h := bbox[0], bbox[1], bbox[2], bbox[3]
	return NormalizedBox{
		Class:   class,
		XCenter: clampUnit((x + w/2) / imgWidth),
		YCenter: clampUnit((y + h/2) / imgHeight),
		Width:   clampUnit(w / imgWidth),
		Height:  clampUnit(h / imgHeight),
	}
}

// clampUnit clamps v to [0, 1]. NaN becomes 0.
func clampUnit(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// labelFileName derives the label file name from an image file name: the directory is dropped
// and the extension replaced by ext. Returns false if fileName has no base name.
func labelFileName(fileName, ext string) (string, bool) {
	base := path.Base(filepath.ToSlash(fileName))
	if fileName == "" || base == "." || base == "/" {
		return "", false
	}

	imgExt := path.Ext(base)
	if imgExt == base {
		// Dot files have no extension to strip.
		imgExt = ""
	}

	return strings.TrimSuffix(base, imgExt) + ext, true
}

// prepareOutputDir removes dirPath with all of its contents and recreates it empty.
func prepareOutputDir(dirPath string) error {
	if err := os.RemoveAll(dirPath); err != nil {
		return fmt.Errorf("cannot clear directory %q: %w", dirPath, err)
	}
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("cannot create directory %q: %w", dirPath, err)
	}
	return nil
}

// WriteYOLO clears dirPath and writes one label file per element of files into it.
func WriteYOLO(dirPath string, files []*LabelFile) error {
	if err := prepareOutputDir(dirPath); err != nil {
		return err
	}

	for _, f := range files {
		if err := writeLabelFile(filepath.Join(dirPath, f.Name), f.Boxes); err != nil {
			return err
		}
	}

	return nil
}

// writeLabelFile writes one line per box to a new file at filePath.
func writeLabelFile(filePath string, boxes []NormalizedBox) (err error) {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("cannot create label file %q: %w", filePath, err)
	}
	defer closeWithErrCheck(file, &err)

	w := bufio.NewWriter(file)
	for _, b := range boxes {
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return fmt.Errorf("cannot write label file %q: %w", filePath, err)
		}
	}

	return w.Flush()
}
