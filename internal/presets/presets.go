// Package presets ships the named example funnels, one per industry.
package presets

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/money-model/internal/moneymodel"
)

//go:embed presets.yaml
var catalogYAML []byte

// ErrUnknownPreset is returned by Catalog.Get for a key that is not in the catalog.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named example set of funnel inputs.
type Preset struct {
	Key         string                  `yaml:"key" json:"key"`
	Name        string                  `yaml:"name" json:"name"`
	Description string                  `yaml:"description" json:"description"`
	Inputs      moneymodel.FunnelInputs `yaml:"inputs" json:"inputs"`
}

// Catalog is an ordered, keyed list of presets.
type Catalog struct {
	presets []Preset
	byKey   map[string]int
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse reads a catalog document. Keys must be unique and non-empty.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Presets []Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse preset catalog: %w", err)
	}

	c := &Catalog{byKey: make(map[string]int, len(doc.Presets))}
	for _, p := range doc.Presets {
		p.Key = strings.TrimSpace(p.Key)
		if p.Key == "" {
			return nil, fmt.Errorf("preset %q has no key", p.Name)
		}
		if _, dup := c.byKey[p.Key]; dup {
			return nil, fmt.Errorf("duplicate preset key %q", p.Key)
		}
		c.byKey[p.Key] = len(c.presets)
		c.presets = append(c.presets, p)
	}
	return c, nil
}

// Get returns the preset for key.
func (c *Catalog) Get(key string) (Preset, error) {
	i, ok := c.byKey[key]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
	}
	return c.presets[i], nil
}

// Keys returns preset keys in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.presets))
	for i, p := range c.presets {
		keys[i] = p.Key
	}
	return keys
}

// All returns every preset in catalog order.
func (c *Catalog) All() []Preset {
	out := make([]Preset, len(c.presets))
	copy(out, c.presets)
	return out
}
