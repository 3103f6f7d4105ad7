// Converts COCO instance annotations to YOLO label directories, one label file per image.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sensorable/coco2yolo"
)

// options are the parsed command line arguments.
type options struct {
	cfg      *coco2yolo.Config
	quiet    bool // Mute progress logging.
	logDrops bool // Log every dropped annotation record.
}

// parseArgs parses the command line arguments. Flags that are set override the values of the
// configuration file given by -config (or the defaults).
func parseArgs(args []string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(output, "Usage of %s:\n", fs.Name())
		_, _ = fmt.Fprintln(output, "  -config <file> [flags]\tconvert the splits of a YAML configuration")
		_, _ = fmt.Fprintln(output, "  -source-root <dir> [flags]\tconvert the COCO 2017 train and val splits")
		_, _ = fmt.Fprintln(output)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "The YAML configuration `file`")
	sourceRoot := fs.String("source-root", "",
		"The `directory` that relative annotation document paths are resolved against")
	outputRoot := fs.String("output-root", "",
		"The `directory` that relative label output paths are resolved against")
	namesPath := fs.String("names", "",
		"A `file` with one class name per line, in class index order (default: the 80 COCO classes)")
	splits := fs.String("splits", "",
		"Comma-separated list of `source=output[,...]` pairs of annotation documents and label"+
			" directories")
	mapLabels := fs.String("map-labels", "",
		"Comma-separated list of old=new category name (sub-)string replacements")
	labelExt := fs.String("label-ext", "", "The label file `extension` (default \".txt\")")
	dataYAML := fs.String("data-yaml", "", "Write a YOLO dataset descriptor to `path`")
	report := fs.String("report", "", "Write a JSON conversion report to `path`")

	opts := &options{}
	fs.BoolVar(&opts.quiet, "quiet", false, "Only log warnings and errors")
	fs.BoolVar(&opts.logDrops, "log-drops", false, "Log every dropped annotation record")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	// Load the base configuration.
	var err error
	if *configPath != "" {
		if opts.cfg, err = coco2yolo.LoadConfig(*configPath); err != nil {
			return nil, err
		}
	} else {
		opts.cfg = coco2yolo.DefaultConfig()
	}
	cfg := opts.cfg

	// Apply the flags that were set.
	var visitErr error
	fs.Visit(func(f *flag.Flag) {
		if visitErr != nil {
			return
		}
		switch f.Name {
		case "source-root":
			cfg.SourceRoot = filepath.Clean(*sourceRoot)
		case "output-root":
			cfg.OutputRoot = filepath.Clean(*outputRoot)
		case "names":
			var vocab coco2yolo.Vocabulary
			if vocab, visitErr = coco2yolo.ReadVocabulary(*namesPath); visitErr == nil {
				cfg.Names = vocab
			}
		case "splits":
			cfg.Splits, visitErr = parseSplits(*splits)
		case "map-labels":
			cfg.MapLabels = nil
			if *mapLabels != "" {
				cfg.MapLabels = strings.Split(*mapLabels, ",")
			}
		case "label-ext":
			cfg.LabelExt = *labelExt
		case "data-yaml":
			cfg.DataYAML = *dataYAML
		case "report":
			cfg.Report = *report
		}
	})
	if visitErr != nil {
		return nil, visitErr
	}

	if *configPath == "" && cfg.SourceRoot == "" {
		return nil, errors.New("missing -config or -source-root argument")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return opts, nil
}

// parseSplits parses comma-separated source=output pairs.
func parseSplits(s string) ([]coco2yolo.Split, error) {
	var splits []coco2yolo.Split
	for _, v := range strings.Split(s, ",") {
		a := strings.Split(v, "=")
		if len(a) != 2 || a[0] == "" || a[1] == "" {
			return nil, fmt.Errorf("invalid split: %q", v)
		}
		splits = append(splits, coco2yolo.Split{
			Source: filepath.Clean(a[0]),
			Output: filepath.Clean(a[1]),
		})
	}
	return splits, nil
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		log.Print(err)
		os.Exit(2)
	}

	if opts.quiet {
		coco2yolo.SetLogger(nil)
	}
	var onDrop coco2yolo.DropObserver
	if opts.logDrops {
		onDrop = func(split string, reason coco2yolo.DropReason, a coco2yolo.AnnotationRecord) {
			log.Printf("%s: dropped annotation %d (image %q, category %d): %v",
				split, a.ID, a.ImageID, a.CategoryID, reason)
		}
	}

	report, err := coco2yolo.Run(opts.cfg, onDrop)
	if err != nil {
		log.Fatal("Conversion failed: ", err)
	}

	coco2yolo.Logf("Total number of label files: %d", report.Files())
}
