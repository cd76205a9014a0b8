package output

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/virtstore/internal/storage"
)

// JSONFormatter formats listings as JSON.
type JSONFormatter struct{}

// FormatPools formats pools as a JSON array sorted by name.
func (f *JSONFormatter) FormatPools(pools map[string]storage.PoolRecord) (string, error) {
	return marshalJSON(poolEntries(pools), "pools")
}

// FormatVolumes formats volumes as a JSON array sorted by name.
func (f *JSONFormatter) FormatVolumes(volumes map[string]string) (string, error) {
	return marshalJSON(volumeEntries(volumes), "volumes")
}

// FormatAttributes formats attributes as a JSON object.
func (f *JSONFormatter) FormatAttributes(attrs map[string]string) (string, error) {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return marshalJSON(attrs, "attributes")
}

func marshalJSON(v any, what string) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s to JSON: %w", what, err)
	}
	return string(data) + "\n", nil
}
