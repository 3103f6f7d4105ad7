package coco2yolo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Split pairs a COCO annotation document with the directory its labels are written to.
type Split struct {
	Name     string `yaml:"name"`               // Defaults to the base name of Output.
	Source   string `yaml:"source"`             // The annotation document.
	Output   string `yaml:"output"`             // The label output directory.
	Images   string `yaml:"images,omitempty"`   // Optional image directory.
	TFRecord string `yaml:"tfrecord,omitempty"` // Optional TFRecord output path.
	Shards   int    `yaml:"shards,omitempty"`   // TFRecord shard files (default 1).
}

// SplitName returns s.Name, or the base name of s.Output if no name is set.
func (s Split) SplitName() string {
	if s.Name != "" {
		return s.Name
	}
	return filepath.Base(s.Output)
}

// Config configures a conversion run.
type Config struct {
	SourceRoot string   `yaml:"source_root"` // Relative split sources are resolved against it.
	OutputRoot string   `yaml:"output_root"` // Relative split outputs are resolved against it.
	Names      []string `yaml:"names"`       // The class vocabulary.
	LabelExt   string   `yaml:"label_ext"`
	MapLabels  []string `yaml:"map_labels"` // old=new category name replacements.
	Splits     []Split  `yaml:"splits"`
	DataYAML   string   `yaml:"data_yaml"` // Optional YOLO dataset descriptor path.
	Report     string   `yaml:"report"`    // Optional JSON report path.
}

// DefaultConfig returns the configuration for converting COCO 2017 to the 80 YOLO classes.
func DefaultConfig() *Config {
	return &Config{
		Names:    append([]string(nil), COCO80...),
		LabelExt: DefaultLabelExt,
		Splits: []Split{
			{
				Name:   "train",
				Source: filepath.Join("annotations", "instances_train2017.json"),
				Output: filepath.Join("labels", "train2017"),
			},
			{
				Name:   "val",
				Source: filepath.Join("annotations", "instances_val2017.json"),
				Output: filepath.Join("labels", "val2017"),
			},
		},
	}
}

// LoadConfig loads a YAML configuration from path. Fields omitted from the file keep the values
// of DefaultConfig.
func LoadConfig(path string) (cfg *Config, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}
	defer closeWithErrCheck(file, &err)

	cfg = DefaultConfig()
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	return cfg, nil
}

// Vocabulary returns the configured class vocabulary.
func (c *Config) Vocabulary() Vocabulary {
	return Vocabulary(c.Names)
}

// SourcePath is the resolved annotation document path of s.
func (c *Config) SourcePath(s Split) string {
	return joinRoot(c.SourceRoot, s.Source)
}

// OutputPath is the resolved label directory of s.
func (c *Config) OutputPath(s Split) string {
	return joinRoot(c.OutputRoot, s.Output)
}

// ImagesPath is the resolved image directory of s, or "" if it has none.
func (c *Config) ImagesPath(s Split) string {
	return joinRoot(c.SourceRoot, s.Images)
}

// TFRecordPath is the resolved TFRecord output path of s, or "" if it has none.
func (c *Config) TFRecordPath(s Split) string {
	return joinRoot(c.OutputRoot, s.TFRecord)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Vocabulary().Validate(); err != nil {
		return err
	}
	if !strings.HasPrefix(c.LabelExt, ".") || len(c.LabelExt) < 2 ||
		strings.ContainsRune(c.LabelExt, filepath.Separator) {
		return fmt.Errorf("invalid label extension %q", c.LabelExt)
	}
	if _, err := ParseLabelMapping(c.MapLabels); err != nil {
		return err
	}
	if len(c.Splits) == 0 {
		return fmt.Errorf("no splits configured")
	}

	names := make(map[string]bool, len(c.Splits))
	for i, s := range c.Splits {
		if s.Source == "" || s.Output == "" {
			return fmt.Errorf("split %d: missing source or output path", i)
		}
		if s.Shards < 0 {
			return fmt.Errorf("split %d: invalid number of shards %d", i, s.Shards)
		}
		name := s.SplitName()
		if names[name] {
			return fmt.Errorf("duplicate split name %q", name)
		}
		names[name] = true

		out := c.OutputPath(s)
		for _, other := range c.Splits {
			if isWithin(c.SourcePath(other), out) {
				return fmt.Errorf("split %q: the source %q lies inside the output directory %q",
					name, c.SourcePath(other), out)
			}
			if other.Images != "" && isWithin(c.ImagesPath(other), out) {
				return fmt.Errorf("split %q: the image directory %q lies inside the output directory %q",
					name, c.ImagesPath(other), out)
			}
			if other.TFRecord != "" && isWithin(c.TFRecordPath(other), out) {
				return fmt.Errorf("split %q: the TFRecord file %q lies inside the output directory %q",
					name, c.TFRecordPath(other), out)
			}
		}
		// Outputs are cleared before writing, so they must not overlap.
		for _, other := range c.Splits[:i] {
			o := c.OutputPath(other)
			if isWithin(out, o) || isWithin(o, out) {
				return fmt.Errorf("splits %q and %q have overlapping output directories",
					other.SplitName(), name)
			}
		}
	}

	return nil
}
