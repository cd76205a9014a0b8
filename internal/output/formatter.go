// Package output renders pool and volume listings as a table, YAML or JSON.
package output

import (
	"fmt"
	"sort"

	"github.com/jbweber/virtstore/internal/storage"
)

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatYAML is a YAML format.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
)

// Formatter renders storage listings.
type Formatter interface {
	// FormatPools renders the parsed pool-list output.
	FormatPools(pools map[string]storage.PoolRecord) (string, error)

	// FormatVolumes renders volume name -> path.
	FormatVolumes(volumes map[string]string) (string, error)

	// FormatAttributes renders pool-info or vol-info attributes.
	FormatAttributes(attrs map[string]string) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
}

// NewFormatter creates a Formatter for opts.Format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	switch Format(format) {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}

// PoolEntry is one pool in structured output.
type PoolEntry struct {
	Name      string            `json:"name" yaml:"name"`
	State     string            `json:"state,omitempty" yaml:"state,omitempty"`
	Autostart string            `json:"autostart,omitempty" yaml:"autostart,omitempty"`
	Columns   map[string]string `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// VolumeEntry is one volume in structured output.
type VolumeEntry struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// poolEntries returns the pools sorted by name. Columns other than State
// and Autostart (pool-list --details) are kept in Columns.
func poolEntries(pools map[string]storage.PoolRecord) []PoolEntry {
	entries := make([]PoolEntry, 0, len(pools))
	for _, name := range sortedKeys(pools) {
		rec := pools[name]
		e := PoolEntry{Name: name, State: rec.State(), Autostart: rec.Autostart()}
		for col, v := range rec {
			if col == storage.ColumnState || col == storage.ColumnAutostart {
				continue
			}
			if e.Columns == nil {
				e.Columns = make(map[string]string)
			}
			e.Columns[col] = v
		}
		entries = append(entries, e)
	}
	return entries
}

func volumeEntries(volumes map[string]string) []VolumeEntry {
	entries := make([]VolumeEntry, 0, len(volumes))
	for _, name := range sortedKeys(volumes) {
		entries = append(entries, VolumeEntry{Name: name, Path: volumes[name]})
	}
	return entries
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Structured renders v as YAML or JSON. Table output has no generic form and
// is rejected.
func Structured(format Format, v any) (string, error) {
	switch format {
	case FormatYAML:
		return marshalYAML(v, "value")
	case FormatJSON:
		return marshalJSON(v, "value")
	default:
		return "", fmt.Errorf("format %s cannot render structured values", format)
	}
}
