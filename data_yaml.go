package coco2yolo

// YOLO dataset descriptor (data.yaml) specific functionality.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// dataYAMLNode builds the descriptor: the dataset root, one image directory per split, the number
// of classes and the class names. Split keys keep the configured order.
func dataYAMLNode(cfg *Config) *yaml.Node {
	scalar := func(v string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		root.Content = append(root.Content, scalar(key), value)
	}

	if cfg.OutputRoot != "" {
		add("path", scalar(filepath.ToSlash(cfg.OutputRoot)))
	}
	for _, s := range cfg.Splits {
		dir := s.Images
		if dir == "" {
			dir = imageDirForLabels(s.Output)
		}
		add(s.SplitName(), scalar(filepath.ToSlash(dir)))
	}
	add("nc", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(len(cfg.Names))})

	names := &yaml.Node{Kind: yaml.SequenceNode}
	for _, n := range cfg.Names {
		names.Content = append(names.Content, scalar(n))
	}
	add("names", names)

	return root
}

// imageDirForLabels maps a label directory to the image directory YOLO expects next to it, by
// replacing the last "labels" path element with "images". Other paths are returned unchanged.
func imageDirForLabels(labelDir string) string {
	parts := splitAll(filepath.Clean(labelDir))
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] == "labels" {
			parts[i] = "images"
			return filepath.Join(parts...)
		}
	}
	return labelDir
}

// splitAll splits p into its path elements.
func splitAll(p string) []string {
	var parts []string
	for {
		dir, file := filepath.Split(p)
		if file != "" {
			parts = append([]string{file}, parts...)
		}
		dir = filepath.Clean(dir)
		if dir == p || dir == "." {
			if dir != "." {
				parts = append([]string{dir}, parts...)
			}
			return parts
		}
		p = dir
	}
}

// WriteDataYAML writes the YOLO dataset descriptor for cfg to outFile.
func WriteDataYAML(outFile string, cfg *Config) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(dataYAMLNode(cfg)); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	if err := createParentDir(outFile); err != nil {
		return err
	}
	if err := os.WriteFile(outFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %w", outFile, err)
	}
	return nil
}
