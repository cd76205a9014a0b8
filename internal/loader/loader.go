// Package loader reads declarative pool plans from YAML files and applies
// them through the storage package.
//
// A plan names one pool, how to define it and the volumes it should hold:
//
//	name: scratch
//	type: dir
//	target: /var/lib/virtstore/scratch
//	build: true
//	start: true
//	volumes:
//	  - name: base.qcow2
//	    capacity: 1G
//	    format: qcow2
//	  - name: base-clone.qcow2
//	    clone_of: base.qcow2
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/virtstore/internal/storage"
)

// PoolPlan describes a pool and its volumes.
type PoolPlan struct {
	Name   string           `yaml:"name"`
	Type   storage.PoolType `yaml:"type"`
	Target string           `yaml:"target,omitempty"`
	Source SourceSpec       `yaml:"source,omitempty"`
	// Extra holds additional pool-define-as options, e.g. rbd auth settings.
	Extra string `yaml:"extra,omitempty"`

	Build     bool `yaml:"build,omitempty"`
	Start     bool `yaml:"start,omitempty"`
	Autostart bool `yaml:"autostart,omitempty"`

	Volumes []VolumePlan `yaml:"volumes,omitempty"`
}

// SourceSpec holds the pool source options. Which fields are required
// depends on the pool type.
type SourceSpec struct {
	Host   string `yaml:"host,omitempty"`
	Device string `yaml:"device,omitempty"`
	Name   string `yaml:"name,omitempty"` // volume group or rbd pool
	Path   string `yaml:"path,omitempty"` // netfs export
}

// VolumePlan is a volume to create, or to clone from another volume of the
// same pool.
type VolumePlan struct {
	Name       string `yaml:"name"`
	Capacity   string `yaml:"capacity,omitempty"`
	Allocation string `yaml:"allocation,omitempty"`
	Format     string `yaml:"format,omitempty"`
	CloneOf    string `yaml:"clone_of,omitempty"`
}

// LoadFromFile loads a PoolPlan from a YAML file.
func LoadFromFile(path string) (*PoolPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return LoadFromYAML(data)
}

// LoadFromYAML loads and validates a PoolPlan.
func LoadFromYAML(data []byte) (*PoolPlan, error) {
	var plan PoolPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	// Autostart implies start.
	if plan.Autostart {
		plan.Start = true
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &plan, nil
}

// SaveToFile writes plan as YAML.
func SaveToFile(plan *PoolPlan, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal pool plan to YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// Validate checks the fields required by the pool type and the volume list.
func (p *PoolPlan) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}

	required := map[string]string{}
	switch p.Type {
	case storage.PoolTypeDir:
		required["target"] = p.Target
	case storage.PoolTypeFS, storage.PoolTypeDisk:
		required["target"] = p.Target
		required["source.device"] = p.Source.Device
	case storage.PoolTypeLogical:
		required["target"] = p.Target
		required["source.device"] = p.Source.Device
		required["source.name"] = p.Source.Name
	case storage.PoolTypeISCSI:
		required["target"] = p.Target
		required["source.host"] = p.Source.Host
		required["source.device"] = p.Source.Device
	case storage.PoolTypeNetFS:
		required["target"] = p.Target
		required["source.host"] = p.Source.Host
		required["source.path"] = p.Source.Path
	case storage.PoolTypeRBD:
		required["source.host"] = p.Source.Host
		required["source.name"] = p.Source.Name
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unsupported pool type %q", p.Type)
	}
	for _, field := range []string{"target", "source.host", "source.device", "source.name", "source.path"} {
		if v, ok := required[field]; ok && v == "" {
			return fmt.Errorf("%s is required for %s pools", field, p.Type)
		}
	}

	seen := make(map[string]bool)
	for i, v := range p.Volumes {
		if v.Name == "" {
			return fmt.Errorf("volumes[%d].name is required", i)
		}
		if seen[v.Name] {
			return fmt.Errorf("volumes[%d].name %q is duplicated", i, v.Name)
		}
		if v.CloneOf != "" {
			if v.Capacity != "" {
				return fmt.Errorf("volumes[%d] cannot specify both capacity and clone_of", i)
			}
		} else if v.Capacity == "" {
			return fmt.Errorf("volumes[%d].capacity is required", i)
		}
		seen[v.Name] = true
	}
	return nil
}
