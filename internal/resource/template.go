package resource

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/farmgame/client/internal/geom"
)

var (
	// ErrNotInitialized is caller misuse: the cache has not been initialized.
	ErrNotInitialized = errors.New("resource cache not initialized")
	// ErrEmptyKey is caller misuse: an empty asset key.
	ErrEmptyKey = errors.New("empty asset key")
	// ErrAssetNotFound means the loader could not resolve a key.
	ErrAssetNotFound = errors.New("asset not found")
)

// Template is a loaded asset: the handle every instance of a key is built from.
type Template struct {
	Key   string
	Kind  string // "prefab", "map", ...
	Name  string
	Props map[string]any
}

// Float reads a numeric prop, falling back to def.
func (t *Template) Float(name string, def float64) float64 {
	if t == nil {
		return def
	}
	switch v := t.Props[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// String reads a string prop, falling back to def.
func (t *Template) String(name, def string) string {
	if t == nil {
		return def
	}
	if v, ok := t.Props[name].(string); ok {
		return v
	}
	return def
}

// Loader is the asset-loading collaborator. Load must be safe for concurrent
// use: async loads call it from worker goroutines.
type Loader interface {
	Load(key string) (*Template, error)
}

// NotFound builds the error loaders return for an unknown key.
func NotFound(key string) error {
	return fmt.Errorf("load %s: %w", key, ErrAssetNotFound)
}

// Instance is one live object built from a template. It is either active
// (held by a caller) or idle inside a pool.
type Instance struct {
	ID       uint64
	Key      string // pool key that created it; empty for unpooled instances
	Template *Template
	Name     string
	Parent   *Instance
	Position geom.Vec2
	Tint     color.RGBA

	active    bool
	destroyed bool
}

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func (i *Instance) Active() bool    { return i.active }
func (i *Instance) Destroyed() bool { return i.destroyed }

func (i *Instance) SetActive(active bool) {
	if i.destroyed {
		return
	}
	i.active = active
}

func (i *Instance) SetParent(parent *Instance) { i.Parent = parent }

// Destroy releases the instance for good; it can never be reactivated.
func (i *Instance) Destroy() {
	i.active = false
	i.destroyed = true
	i.Parent = nil
}
