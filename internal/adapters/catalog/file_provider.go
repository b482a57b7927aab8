package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// Format is a catalog file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" and "json" in any case
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported catalog format: %s", s)
	}
}

// FormatFromPath picks the format from the file extension.
// Anything other than .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// FileProvider loads a catalog snapshot from a YAML or JSON file
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for the given file
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Path returns the catalog file location
func (p *FileProvider) Path() string {
	return p.path
}

// LoadSnapshot reads, validates and converts the catalog file
func (p *FileProvider) LoadSnapshot(ctx context.Context) (production.Snapshot, error) {
	logger := common.LoggerFromContext(ctx)

	data, err := os.ReadFile(p.path)
	if err != nil {
		return production.Snapshot{}, fmt.Errorf("failed to read catalog file: %w", err)
	}

	snapshot, err := Decode(bytes.NewReader(data), FormatFromPath(p.path))
	if err != nil {
		return production.Snapshot{}, fmt.Errorf("failed to load catalog %s: %w", p.path, err)
	}

	logger.Log(common.LevelDebug, "Catalog file loaded", map[string]interface{}{
		"action":    "load_catalog_file",
		"path":      p.path,
		"resources": len(snapshot.Resources),
		"recipes":   len(snapshot.Recipes),
	})
	return snapshot, nil
}

// Decode parses a catalog document and converts it into a snapshot
func Decode(r io.Reader, format Format) (production.Snapshot, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return production.Snapshot{}, fmt.Errorf("failed to decode JSON catalog: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return production.Snapshot{}, fmt.Errorf("failed to decode YAML catalog: %w", err)
		}
	default:
		return production.Snapshot{}, fmt.Errorf("unsupported catalog format: %s", format)
	}
	return doc.ToSnapshot()
}

// Export writes a snapshot in the given format
func Export(w io.Writer, snapshot production.Snapshot, format Format) error {
	doc := DocumentFromSnapshot(snapshot)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode YAML catalog: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported catalog format: %s", format)
	}
}
