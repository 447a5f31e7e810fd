package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/farmgame/client/internal/resource"
)

// AssetEntry is one row of assets.yaml.
type AssetEntry struct {
	Key   string         `yaml:"key"`
	Kind  string         `yaml:"kind"`
	Name  string         `yaml:"name"`
	Props map[string]any `yaml:"props"`
}

type manifestFile struct {
	Assets []AssetEntry `yaml:"assets"`
}

// Manifest is the asset table the resource cache loads templates from. It is
// read-only after LoadManifest, so Load is safe from worker goroutines.
type Manifest struct {
	entries map[string]*AssetEntry
}

// LoadManifest loads assets.yaml. Keys are normalised the same way the
// resource cache normalises lookups; a duplicate key is an error.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read asset manifest: %w", err)
	}
	return ParseManifest(raw)
}

// ParseManifest decodes manifest YAML.
func ParseManifest(raw []byte) (*Manifest, error) {
	var f manifestFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse asset manifest: %w", err)
	}
	m := &Manifest{entries: make(map[string]*AssetEntry, len(f.Assets))}
	for i := range f.Assets {
		e := &f.Assets[i]
		key := resource.NormalizeKey(e.Key)
		if key == "" {
			return nil, fmt.Errorf("asset manifest entry %d: %w", i, resource.ErrEmptyKey)
		}
		if _, dup := m.entries[key]; dup {
			return nil, fmt.Errorf("asset manifest: duplicate key %s", key)
		}
		e.Key = key
		if e.Name == "" {
			e.Name = key
		}
		m.entries[key] = e
	}
	return m, nil
}

// Load implements resource.Loader.
func (m *Manifest) Load(key string) (*resource.Template, error) {
	e, ok := m.entries[resource.NormalizeKey(key)]
	if !ok {
		return nil, resource.NotFound(key)
	}
	return &resource.Template{Key: e.Key, Kind: e.Kind, Name: e.Name, Props: e.Props}, nil
}

// Has reports whether key is listed.
func (m *Manifest) Has(key string) bool {
	_, ok := m.entries[resource.NormalizeKey(key)]
	return ok
}

// Count returns the number of assets listed.
func (m *Manifest) Count() int {
	return len(m.entries)
}
