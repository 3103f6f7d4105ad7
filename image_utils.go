package coco2yolo

import (
	"strings"

	"github.com/disintegration/imaging"
)

// imageSize decodes the image at path and returns its width and height after applying the EXIF
// orientation.
func imageSize(path string) (width, height int, err error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, err
	}

	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

// imageFormat returns the lower case encoding name ("jpeg", "png", ...) derived from the file
// extension of path.
func imageFormat(path string) (string, error) {
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return "", err
	}
	return strings.ToLower(f.String()), nil
}
