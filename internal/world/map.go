package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/farmgame/client/internal/core/event"
	"github.com/farmgame/client/internal/geom"
	"github.com/farmgame/client/internal/grid"
	"github.com/farmgame/client/internal/resource"
)

const mapDir = "maps/"

// MapKey is the resource key of a map name.
func MapKey(name string) string { return mapDir + name }

// MapManager owns the single active map instance and the grid mapper used
// for world/tile conversion on it.
type MapManager struct {
	cache *resource.Cache
	grid  *grid.Mapper
	bus   *event.Bus
	log   *zap.Logger

	defaultTileSize float64
	root            *resource.Instance
	current         *resource.Instance
	name            string
	loadSeq         uint64

	initialized bool
}

func NewMapManager(cache *resource.Cache, tileSize float64, bus *event.Bus, log *zap.Logger) *MapManager {
	g := grid.NewMapper(tileSize)
	return &MapManager{
		cache:           cache,
		grid:            g,
		bus:             bus,
		log:             log.Named("map"),
		defaultTileSize: g.TileSize(),
	}
}

func (m *MapManager) Initialize() error {
	if m.initialized {
		return nil
	}
	m.root = &resource.Instance{Name: "MapRoot"}
	m.initialized = true
	m.log.Info("map manager initialized", zap.Float64("tile_size", m.grid.TileSize()))
	return nil
}

func (m *MapManager) Dispose() {
	if !m.initialized {
		return
	}
	m.UnloadMap()
	m.initialized = false
}

func (m *MapManager) Initialized() bool { return m.initialized }

// LoadMap replaces the current map with maps/<name>.
func (m *MapManager) LoadMap(name string) error {
	if !m.initialized {
		m.log.Error("load map rejected", zap.String("map", name), zap.Error(ErrNotInitialized))
		return ErrNotInitialized
	}
	m.UnloadMap()
	tmpl, err := m.cache.Load(MapKey(name))
	if err != nil {
		m.log.Error("load map failed", zap.String("map", name), zap.Error(err))
		return fmt.Errorf("load map %s: %w", name, err)
	}
	m.place(name, tmpl)
	return nil
}

// LoadMapAsync replaces the current map in the background. cb runs on the
// game loop once. A later LoadMap, LoadMapAsync or UnloadMap supersedes an
// unfinished load, whose cb then receives ErrMapSuperseded.
func (m *MapManager) LoadMapAsync(name string, cb func(error)) {
	if !m.initialized {
		m.log.Error("async load map rejected", zap.String("map", name), zap.Error(ErrNotInitialized))
		if cb != nil {
			cb(ErrNotInitialized)
		}
		return
	}
	m.UnloadMap()
	seq := m.loadSeq
	m.cache.LoadAsync(MapKey(name), func(tmpl *resource.Template, err error) {
		switch {
		case err != nil:
			m.log.Error("async load map failed", zap.String("map", name), zap.Error(err))
			err = fmt.Errorf("load map %s: %w", name, err)
		case !m.initialized:
			err = ErrNotInitialized
		case seq != m.loadSeq:
			err = ErrMapSuperseded
		default:
			m.place(name, tmpl)
		}
		if cb != nil {
			cb(err)
		}
	})
}

func (m *MapManager) place(name string, tmpl *resource.Template) {
	m.current = m.cache.Instantiate(tmpl, m.root)
	m.name = name
	if err := m.grid.SetTileSize(tmpl.Float("tile_size", m.defaultTileSize)); err != nil {
		m.log.Warn("map tile size ignored", zap.String("map", name), zap.Error(err))
	}
	m.log.Info("map loaded", zap.String("map", name), zap.Float64("tile_size", m.grid.TileSize()))
	if m.bus != nil {
		event.Emit(m.bus, event.MapLoaded{Name: name, TileSize: m.grid.TileSize()})
	}
}

// UnloadMap destroys the current map, if any.
func (m *MapManager) UnloadMap() {
	m.loadSeq++
	if m.current == nil {
		return
	}
	m.current.Destroy()
	m.current = nil
	m.log.Info("map unloaded", zap.String("map", m.name))
	m.name = ""
}

func (m *MapManager) Current() *resource.Instance { return m.current }
func (m *MapManager) Name() string { return m.name }
func (m *MapManager) Loaded() bool { return m.current != nil }
func (m *MapManager) Grid() *grid.Mapper { return m.grid }

// SpawnPoint returns the map's spawn_x/spawn_y props, if it declares them.
func (m *MapManager) SpawnPoint() (geom.Vec2, bool) {
	if m.current == nil {
		return geom.Vec2{}, false
	}
	t := m.current.Template
	if _, ok := t.Props["spawn_x"]; !ok {
		return geom.Vec2{}, false
	}
	return geom.Vec2{X: t.Float("spawn_x", 0), Y: t.Float("spawn_y", 0)}, true
}

func (m *MapManager) WorldToGrid(p geom.Vec3) grid.Cell { return m.grid.WorldToGrid(p) }
func (m *MapManager) GridToWorld(c grid.Cell) geom.Vec3 { return m.grid.GridToWorld(c) }
