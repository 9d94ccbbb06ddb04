// Package output writes the dataset artifact to disk.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/ports"
)

// Formats understood by FileWriter.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FileWriter renders the dataset as indented JSON or YAML.
type FileWriter struct {
	path   string
	format string
}

var _ ports.DatasetWriter = (*FileWriter)(nil)

// NewFileWriter defaults to JSON when format is empty.
func NewFileWriter(path, format string) *FileWriter {
	if format == "" {
		format = FormatJSON
	}
	return &FileWriter{path: path, format: format}
}

// Path is where the artifact is written.
func (w *FileWriter) Path() string { return w.path }

// Write encodes and replaces the artifact.
func (w *FileWriter) Write(dataset domain.Dataset) error {
	if dataset.Colleges == nil {
		dataset.Colleges = []domain.College{}
	}
	raw, err := Encode(dataset, w.format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(w.path, raw, 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}

// Encode renders the dataset with two-space indentation.
func Encode(dataset domain.Dataset, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		raw, err := json.MarshalIndent(dataset, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode dataset json: %w", err)
		}
		return raw, nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(dataset); err != nil {
			return nil, fmt.Errorf("encode dataset yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode dataset yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// ReadDataset loads a JSON artifact previously written by FileWriter.
func ReadDataset(path string) (domain.Dataset, error) {
	var ds domain.Dataset
	raw, err := os.ReadFile(path)
	if err != nil {
		return ds, fmt.Errorf("read dataset: %w", err)
	}
	if err := json.Unmarshal(raw, &ds); err != nil {
		return ds, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return ds, nil
}
