package coco2yolo

// Conversion of COCO annotation documents to YOLO label directories.

import (
	"errors"
	"fmt"
	"path/filepath"
)

// DropReason tells why an annotation record produced no label line.
type DropReason int

// The reasons for dropping an annotation record.
const (
	MissingBox       DropReason = iota // No usable "bbox".
	UnknownImage                       // The image ID is not in the images collection.
	UnmappedCategory                   // The category is not in the class vocabulary.
	InvalidImage                       // The image has no file name or no usable size.
)

func (r DropReason) String() string {
	switch r {
	case MissingBox:
		return "missing bbox"
	case UnknownImage:
		return "unknown image"
	case UnmappedCategory:
		return "unmapped category"
	case InvalidImage:
		return "invalid image"
	}
	return fmt.Sprintf("DropReason(%d)", int(r))
}

// DropObserver is called for every dropped annotation record of a split.
type DropObserver func(split string, reason DropReason, ann AnnotationRecord)

// Converter converts the splits of a Config.
type Converter struct {
	cfg     *Config
	vocab   Vocabulary
	mapping LabelMapping

	// OnDrop, if set, is notified of dropped annotation records. Dropping is not affected.
	OnDrop DropObserver
}

// NewConverter validates cfg and returns a Converter for it.
func NewConverter(cfg *Config) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	mapping, err := ParseLabelMapping(cfg.MapLabels)
	if err != nil {
		return nil, err
	}

	return &Converter{cfg: cfg, vocab: cfg.Vocabulary(), mapping: mapping}, nil
}

// Run converts all splits of cfg. See Converter.Run.
func Run(cfg *Config, onDrop DropObserver) (*Report, error) {
	c, err := NewConverter(cfg)
	if err != nil {
		return nil, err
	}
	c.OnDrop = onDrop
	return c.Run()
}

// Run converts each split in turn and then writes the optional dataset descriptor and report.
//
// A split whose source document does not exist is skipped with a warning. Any other error aborts
// the run.
func (c *Converter) Run() (*Report, error) {
	report := newReport()
	Logf("Conversion run %s", report.RunID)

	for _, split := range c.cfg.Splits {
		stats, err := c.ConvertSplit(split)
		if errors.Is(err, ErrMissingSource) {
			Warnf("Warning: %s not found, skipping.", c.cfg.SourcePath(split))
			stats = &SplitStats{
				Name:    split.SplitName(),
				Source:  c.cfg.SourcePath(split),
				Output:  c.cfg.OutputPath(split),
				Skipped: true,
			}
		} else if err != nil {
			return nil, fmt.Errorf("split %q: %w", split.SplitName(), err)
		}
		report.Splits = append(report.Splits, stats)
	}

	if c.cfg.DataYAML != "" {
		if err := WriteDataYAML(c.cfg.DataYAML, c.cfg); err != nil {
			return nil, err
		}
		Logf("Wrote the dataset descriptor to %s", c.cfg.DataYAML)
	}
	if c.cfg.Report != "" {
		if err := WriteReport(c.cfg.Report, report); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// ConvertSplit loads the source document of split, converts it, and writes the label directory
// and the optional TFRecord file.
func (c *Converter) ConvertSplit(split Split) (*SplitStats, error) {
	source := c.cfg.SourcePath(split)
	outDir := c.cfg.OutputPath(split)
	imageDir := c.cfg.ImagesPath(split)

	Logf("Loading %s...", source)
	doc, err := LoadDocument(source)
	if err != nil {
		return nil, err
	}

	Logf("Converting annotations to %s...", outDir)
	files, stats := c.Convert(split.SplitName(), doc, imageDir)
	stats.Source = source
	stats.Output = outDir

	if err := WriteYOLO(outDir, files.Files()); err != nil {
		return nil, err
	}

	if tfPath := c.cfg.TFRecordPath(split); tfPath != "" {
		if err := WriteTFRecord(tfPath, files.Files(), c.vocab, imageDir, split.Shards); err != nil {
			return nil, err
		}
	}

	Logf("Wrote %d labels in %d files to %s (dropped: %d missing bbox, %d unknown image,"+
		" %d unmapped category, %d invalid image)", stats.Retained, stats.Files, outDir,
		stats.MissingBox, stats.UnknownImage, stats.UnmappedCategory, stats.InvalidImage)

	return stats, nil
}

// Convert turns the annotations of doc into label files, in source order. imageDir is optional
// and used to read the size of images whose records lack one.
func (c *Converter) Convert(split string, doc *Document, imageDir string) (*LabelFiles,
	*SplitStats) {

	stats := &SplitStats{Name: split, Annotations: len(doc.Annotations)}
	drop := func(reason DropReason, a AnnotationRecord) {
		stats.countDrop(reason)
		if c.OnDrop != nil {
			c.OnDrop(split, reason, a)
		}
	}

	catMap := BuildCategoryMap(doc.Categories, c.vocab, c.mapping)
	Logf("Mapped %d of %d categories", len(catMap), len(doc.Categories))

	images := newImageTable(doc.Images, imageDir)
	files := NewLabelFiles()
	samples := make(map[int]*boxSamples)

	for _, a := range doc.Annotations {
		if !a.hasBox() {
			drop(MissingBox, a)
			continue
		}
		img, ok := images.get(a.ImageID)
		if !ok {
			drop(UnknownImage, a)
			continue
		}
		class, ok := catMap[a.CategoryID]
		if !ok {
			drop(UnmappedCategory, a)
			continue
		}
		img, ok = images.sized(img)
		if !ok {
			drop(InvalidImage, a)
			continue
		}
		name, ok := labelFileName(img.FileName, c.cfg.LabelExt)
		if !ok {
			drop(InvalidImage, a)
			continue
		}

		box := NormalizeBox(class, [4]float64{a.Bbox[0], a.Bbox[1], a.Bbox[2], a.Bbox[3]},
			img.Width, img.Height)
		files.Append(name, img, box)

		s, ok := samples[class]
		if !ok {
			s = &boxSamples{}
			samples[class] = s
		}
		s.add(box)
		stats.Retained++
	}

	stats.Files = files.Len()
	stats.Classes = classStats(c.vocab, samples)

	return files, stats
}

// imageTable looks up image records by ID.
type imageTable struct {
	records  map[ImageID]ImageRecord
	imageDir string
	probed   map[ImageID]bool // Records whose size was read from the image file.
}

func newImageTable(images []ImageRecord, imageDir string) *imageTable {
	t := &imageTable{
		records:  make(map[ImageID]ImageRecord, len(images)),
		imageDir: imageDir,
		probed:   make(map[ImageID]bool),
	}
	for _, img := range images {
		t.records[img.ID] = img
	}
	return t
}

func (t *imageTable) get(id ImageID) (ImageRecord, bool) {
	img, ok := t.records[id]
	return img, ok
}

// sized returns img with a positive width and height. If the record has none, they are read
// once from the image file, which requires an image directory.
func (t *imageTable) sized(img ImageRecord) (ImageRecord, bool) {
	if img.FileName == "" {
		return img, false
	}
	if img.Width > 0 && img.Height > 0 {
		return img, true
	}
	if t.imageDir == "" {
		return img, false
	}

	if !t.probed[img.ID] {
		t.probed[img.ID] = true
		path := filepath.Join(t.imageDir, filepath.FromSlash(img.FileName))
		if w, h, err := imageSize(path); err != nil {
			Warnf("Cannot read the size of image %q from %q: %v", img.ID, path, err)
		} else {
			img.Width, img.Height = float64(w), float64(h)
			t.records[img.ID] = img
		}
	}

	img = t.records[img.ID]
	return img, img.Width > 0 && img.Height > 0
}
