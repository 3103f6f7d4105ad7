package coco2yolo

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// ClassStats summarises the retained boxes of one class. Sizes are normalised.
type ClassStats struct {
	Class      int     `json:"class"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	MeanWidth  float64 `json:"mean_width"`
	StdWidth   float64 `json:"std_width"`
	MeanHeight float64 `json:"mean_height"`
	StdHeight  float64 `json:"std_height"`
}

// SplitStats describes the conversion of a single split.
type SplitStats struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Output      string `json:"output"`
	Skipped     bool   `json:"skipped,omitempty"` // The source document was missing.
	Annotations int    `json:"annotations"`       // Annotation records read.
	Retained    int    `json:"retained"`          // Label lines written.
	Files       int    `json:"files"`             // Label files written.

	// Dropped annotation records by reason.
	MissingBox       int `json:"missing_box"`
	UnknownImage     int `json:"unknown_image"`
	UnmappedCategory int `json:"unmapped_category"`
	InvalidImage     int `json:"invalid_image"`

	Classes []ClassStats `json:"classes,omitempty"`
}

// Dropped is the total number of dropped annotation records.
func (s *SplitStats) Dropped() int {
	return s.MissingBox + s.UnknownImage + s.UnmappedCategory + s.InvalidImage
}

func (s *SplitStats) countDrop(reason DropReason) {
	switch reason {
	case MissingBox:
		s.MissingBox++
	case UnknownImage:
		s.UnknownImage++
	case UnmappedCategory:
		s.UnmappedCategory++
	case InvalidImage:
		s.InvalidImage++
	}
}

// Report describes a conversion run.
type Report struct {
	RunID   string        `json:"run_id"`
	Started time.Time     `json:"started"`
	Splits  []*SplitStats `json:"splits"`
}

func newReport() *Report {
	return &Report{
		RunID:   uuid.New().String(),
		Started: time.Now().UTC(),
	}
}

// Files is the total number of label files written by the run.
func (r *Report) Files() int {
	n := 0
	for _, s := range r.Splits {
		n += s.Files
	}
	return n
}

// WriteReport writes the report as indented JSON to outFile.
func WriteReport(outFile string, r *Report) error {
	enc, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := createParentDir(outFile); err != nil {
		return err
	}
	if err := os.WriteFile(outFile, enc, 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %w", outFile, err)
	}
	return nil
}

// boxSamples collects normalised box sizes of one class.
type boxSamples struct {
	widths  []float64
	heights []float64
}

func (s *boxSamples) add(b NormalizedBox) {
	s.widths = append(s.widths, b.Width)
	s.heights = append(s.heights, b.Height)
}

// classStats summarises samples, ordered by class index.
func classStats(vocab Vocabulary, samples map[int]*boxSamples) []ClassStats {
	stats := make([]ClassStats, 0, len(samples))
	for class, s := range samples {
		cs := ClassStats{Class: class, Name: vocab.Name(class), Count: len(s.widths)}
		cs.MeanWidth, cs.StdWidth = meanStdDev(s.widths)
		cs.MeanHeight, cs.StdHeight = meanStdDev(s.heights)
		stats = append(stats, cs)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Class < stats[j].Class })
	return stats
}

// meanStdDev returns the mean and the sample standard deviation of x. The deviation is zero for
// fewer than two values.
func meanStdDev(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
