package output

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/virtstore/internal/storage"
)

// YAMLFormatter formats listings as YAML.
type YAMLFormatter struct{}

// FormatPools formats pools as a YAML sequence sorted by name.
func (f *YAMLFormatter) FormatPools(pools map[string]storage.PoolRecord) (string, error) {
	return marshalYAML(poolEntries(pools), "pools")
}

// FormatVolumes formats volumes as a YAML sequence sorted by name.
func (f *YAMLFormatter) FormatVolumes(volumes map[string]string) (string, error) {
	return marshalYAML(volumeEntries(volumes), "volumes")
}

// FormatAttributes formats attributes as a YAML mapping.
func (f *YAMLFormatter) FormatAttributes(attrs map[string]string) (string, error) {
	return marshalYAML(attrs, "attributes")
}

func marshalYAML(v any, what string) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s to YAML: %w", what, err)
	}
	return string(data), nil
}
