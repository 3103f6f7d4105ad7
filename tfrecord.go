package coco2yolo

// TFRecord object detection export.

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/protobuf/proto"
	"github.com/ryszard/tfutils/go/example"
	"github.com/ryszard/tfutils/go/tfrecord"
	tensorflow "github.com/ryszard/tfutils/proto/tensorflow/core/example"
)

// TFFeatureMap maps feature names to their values. Values must be convertible to
// tensorflow.Feature.
type TFFeatureMap map[string]interface{}

// tfFeatures converts a label file to the TensorFlow object detection feature map. Class labels
// are the vocabulary index plus one, as ID 0 is reserved for the background.
//
// If imageDir is set, the encoded image is read from it and included.
func tfFeatures(f *LabelFile, vocab Vocabulary, imageDir string) (TFFeatureMap, error) {
	m := make(TFFeatureMap, 16)
	m["image/height"] = int(math.Round(f.Image.Height))
	m["image/width"] = int(math.Round(f.Image.Width))
	m["image/filename"] = f.Image.FileName
	m["image/source_id"] = string(f.Image.ID)

	if imageDir != "" {
		imgPath := filepath.Join(imageDir, filepath.FromSlash(f.Image.FileName))
		format, err := imageFormat(imgPath)
		if err != nil {
			return nil, err
		}
		imgData, err := os.ReadFile(imgPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read the image: %w", err)
		}
		m["image/encoded"] = imgData
		m["image/format"] = format
	}

	numLabels := len(f.Boxes)
	xmins := make([]float32, numLabels)
	ymins := make([]float32, numLabels)
	xmaxs := make([]float32, numLabels)
	ymaxs := make([]float32, numLabels)
	classes := make([]string, numLabels)
	classIDs := make([]int64, numLabels)
	for i, b := range f.Boxes {
		c := b.Coords(1, 1)
		xmins[i] = float32(clampUnit(c[0]))
		ymins[i] = float32(clampUnit(c[1]))
		xmaxs[i] = float32(clampUnit(c[2]))
		ymaxs[i] = float32(clampUnit(c[3]))
		classes[i] = vocab.Name(b.Class)
		classIDs[i] = int64(b.Class + 1)
	}
	m["image/object/bbox/xmin"] = xmins
	m["image/object/bbox/ymin"] = ymins
	m["image/object/bbox/xmax"] = xmaxs
	m["image/object/bbox/ymax"] = ymaxs
	m["image/object/class/text"] = classes
	m["image/object/class/label"] = classIDs

	return m, nil
}

// WriteTFRecord writes one tensorflow.Example per label file to one or more TFRecord files stored
// under recordFilePath, with a "-xxxxx-of-yyyyy" suffix added when numShards > 1.
//
// Label files whose image cannot be read are logged and left out.
func WriteTFRecord(recordFilePath string, files []*LabelFile, vocab Vocabulary, imageDir string,
	numShards int) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("conversion to TensorFlow Example failed: %v", e)
		}
	}()

	if numShards <= 0 {
		numShards = 1
	}
	if err := createParentDir(recordFilePath); err != nil {
		return err
	}

	shardPath := func(idx int) string {
		if numShards == 1 {
			return recordFilePath
		}
		return fmt.Sprintf("%s-%05d-of-%05d", recordFilePath, idx, numShards)
	}

	shardSize := int(math.Ceil(float64(len(files)) / float64(numShards)))
	if shardSize == 0 {
		shardSize = 1
	}

	written := 0
	for shardIdx := 0; shardIdx < numShards; shardIdx++ {
		start := shardIdx * shardSize
		end := start + shardSize
		if start > len(files) {
			start = len(files)
		}
		if end > len(files) {
			end = len(files)
		}

		n, err := writeTFRecordShard(shardPath(shardIdx), files[start:end], vocab, imageDir)
		if err != nil {
			return err
		}
		written += n
	}

	Logf("Wrote %d examples to %d TFRecord file(s) at %s", written, numShards, recordFilePath)
	return nil
}

// writeTFRecordShard creates the shard file at path and writes the examples for files to it.
func writeTFRecordShard(path string, files []*LabelFile, vocab Vocabulary, imageDir string) (
	n int, err error) {

	shardFile, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create shard at %q: %w", path, err)
	}
	defer closeWithErrCheck(shardFile, &err)

	for _, f := range files {
		features, err := tfFeatures(f, vocab, imageDir)
		if err != nil {
			Warnf("Failed to convert %q: %v", f.Image.FileName, err)
			continue
		}

		if err := writeTFRecordExample(shardFile, example.New(features)); err != nil {
			return n, fmt.Errorf("failed to write example to %q: %w", path, err)
		}
		n++
	}

	return n, nil
}

// writeTFRecordExample serialises the example and writes it as a TFRecord to w.
func writeTFRecordExample(w io.Writer, e *tensorflow.Example) error {
	enc, err := proto.Marshal(e)
	if err != nil {
		return err
	}

	return tfrecord.Write(w, enc)
}
