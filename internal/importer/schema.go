package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported input formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Document is the format-independent shape of an import file.
type Document struct {
	Project ProjectImport `json:"project" yaml:"project"`
	Tasks   []TaskImport  `json:"tasks" yaml:"tasks"`
}

// ProjectImport defines the project-level fields in the import file.
// Jira exports carry none; the caller names the project.
type ProjectImport struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// TaskImport defines one task. Parent refers to another task's ID; an empty
// or unknown parent attaches the task to the project root.
type TaskImport struct {
	ID          string   `json:"id" yaml:"id"`
	Key         string   `json:"key,omitempty" yaml:"key,omitempty"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
	Parent      string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Hours       *float64 `json:"hours,omitempty" yaml:"hours,omitempty"`
}

// DetectFormat infers the format from a file extension.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("cannot infer import format from %q; pass one of csv, json, yaml", path)
	}
}

// LoadFile reads and parses an import file. An empty format is inferred
// from the extension.
func LoadFile(path, format string) (*Document, error) {
	if format == "" {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	defer f.Close()
	return Parse(f, format)
}

// Parse decodes r according to format.
func Parse(r io.Reader, format string) (*Document, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		tasks, err := ParseJiraCSV(r)
		if err != nil {
			return nil, err
		}
		return &Document{Tasks: tasks}, nil
	case FormatJSON:
		var doc Document
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing import JSON: %w", err)
		}
		return &doc, nil
	case FormatYAML, "yml":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading import YAML: %w", err)
		}
		var doc Document
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("parsing import YAML: %w", err)
		}
		return &doc, nil
	default:
		return nil, fmt.Errorf("unsupported import format %q", format)
	}
}
