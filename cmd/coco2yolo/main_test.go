package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/sensorable/coco2yolo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_SourceRoot(t *testing.T) {
	opts, err := parseArgs([]string{"-source-root", "/data/coco/", "-output-root", "/data/yolo",
		"-quiet"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.True(t, opts.quiet)
	assert.False(t, opts.logDrops)
	assert.Equal(t, "/data/coco", opts.cfg.SourceRoot)
	assert.Equal(t, "/data/yolo", opts.cfg.OutputRoot)
	assert.Equal(t, coco2yolo.DefaultConfig().Splits, opts.cfg.Splits)
	assert.Equal(t, []string(coco2yolo.COCO80), opts.cfg.Names)
}

func TestParseArgs_Splits(t *testing.T) {
	opts, err := parseArgs([]string{"-source-root", "/data", "-log-drops",
		"-splits", "a/train.json=labels/train/,val.json=labels/val",
		"-map-labels", "motorbike=motorcycle,aeroplane=airplane",
		"-label-ext", ".lbl"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.True(t, opts.logDrops)
	assert.Equal(t, []coco2yolo.Split{
		{Source: filepath.Join("a", "train.json"), Output: filepath.Join("labels", "train")},
		{Source: "val.json", Output: filepath.Join("labels", "val")},
	}, opts.cfg.Splits)
	assert.Equal(t, []string{"motorbike=motorcycle", "aeroplane=airplane"}, opts.cfg.MapLabels)
	assert.Equal(t, ".lbl", opts.cfg.LabelExt)
}

func TestParseArgs_ConfigWithOverrides(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "convert.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
source_root: /data/coco
names: [person, car]
map_labels: [motorbike=motorcycle]
splits:
  - source: instances_val.json
    output: labels/val
report: report.json
`), 0644))
	namesPath := filepath.Join(dir, "names.txt")
	require.NoError(t, os.WriteFile(namesPath, []byte("# classes\nperson\n\nbicycle\ncar\n"), 0644))

	opts, err := parseArgs([]string{"-config", configPath, "-names", namesPath, "-map-labels", "",
		"-data-yaml", "data.yaml"}, &bytes.Buffer{})
	require.NoError(t, err)

	cfg := opts.cfg
	assert.Equal(t, "/data/coco", cfg.SourceRoot)
	assert.Equal(t, []string{"person", "bicycle", "car"}, cfg.Names)
	assert.Empty(t, cfg.MapLabels)
	assert.Equal(t, "report.json", cfg.Report)
	assert.Equal(t, "data.yaml", cfg.DataYAML)
	require.Len(t, cfg.Splits, 1)
	assert.Equal(t, "val", cfg.Splits[0].SplitName())
}

func TestParseArgs_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string][]string{
		"no source":          {},
		"positional args":    {"-source-root", "/data", "extra"},
		"invalid split":      {"-source-root", "/data", "-splits", "train.json"},
		"empty split output": {"-source-root", "/data", "-splits", "train.json="},
		"missing names file": {"-source-root", "/data", "-names", filepath.Join(dir, "none.txt")},
		"missing config":     {"-config", filepath.Join(dir, "none.yaml")},
		"invalid mapping":    {"-source-root", "/data", "-map-labels", "a=b=c"},
		"invalid label ext":  {"-source-root", "/data", "-label-ext", "txt"},
		"unknown flag":       {"-vocabulary", "names.txt"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseArgs(args, &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}

func TestParseArgs_Help(t *testing.T) {
	var out bytes.Buffer
	_, err := parseArgs([]string{"-h"}, &out)
	assert.True(t, errors.Is(err, flag.ErrHelp))
	assert.Contains(t, out.String(), "-source-root")
}
