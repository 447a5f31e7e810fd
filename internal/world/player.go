package world

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/farmgame/client/internal/config"
	"github.com/farmgame/client/internal/core/ecs"
	"github.com/farmgame/client/internal/core/event"
	"github.com/farmgame/client/internal/geom"
	"github.com/farmgame/client/internal/movement"
	"github.com/farmgame/client/internal/resource"
)

const playerName = "Player"

// Player is the single player entity. The manager holds every part directly.
type Player struct {
	ID       ecs.EntityID
	Instance *resource.Instance
	Movable  *movement.Movable
	Data     *PlayerData

	sub movement.Subscription
}

// PlayerManager creates, places and destroys the player.
type PlayerManager struct {
	cache    *resource.Cache
	registry *movement.Registry
	world    *ecs.World
	profiles ProfileStore
	bus      *event.Bus
	log      *zap.Logger
	cfg      config.PlayerConfig

	root        *resource.Instance
	player      *Player
	initialized bool
}

func NewPlayerManager(
	cfg config.PlayerConfig,
	cache *resource.Cache,
	registry *movement.Registry,
	world *ecs.World,
	profiles ProfileStore,
	bus *event.Bus,
	log *zap.Logger,
) *PlayerManager {
	if profiles == nil {
		profiles = NewMemoryProfiles()
	}
	return &PlayerManager{
		cache:    cache,
		registry: registry,
		world:    world,
		profiles: profiles,
		bus:      bus,
		log:      log.Named("player"),
		cfg:      cfg,
	}
}

func (m *PlayerManager) Initialize() error {
	if m.initialized {
		return nil
	}
	m.root = &resource.Instance{Name: "PlayerRoot"}
	m.initialized = true
	m.log.Info("player manager initialized", zap.String("profile", m.cfg.Profile))
	return nil
}

func (m *PlayerManager) Dispose() {
	if !m.initialized {
		return
	}
	m.DestroyPlayer()
	m.initialized = false
}

// Player returns the player, or nil before CreatePlayer.
func (m *PlayerManager) Player() *Player { return m.player }

// CreatePlayer loads the profile and the player prefab and places the player.
// Creating an existing player is a no-op.
func (m *PlayerManager) CreatePlayer(ctx context.Context) error {
	if !m.initialized {
		m.log.Error("create player rejected", zap.Error(ErrNotInitialized))
		return ErrNotInitialized
	}
	if m.player != nil {
		m.log.Warn("player already exists")
		return nil
	}

	data, err := m.profiles.LoadProfile(ctx, m.cfg.Profile)
	if err != nil {
		return fmt.Errorf("load profile %s: %w", m.cfg.Profile, err)
	}
	if data == nil {
		data = NewPlayerData(m.cfg.Profile)
		if m.cfg.MoveSpeed > 0 {
			data.MoveSpeed = m.cfg.MoveSpeed
		}
	}

	tmpl, err := m.cache.Load(m.cfg.Prefab)
	if err != nil {
		m.log.Error("player prefab missing", zap.String("prefab", m.cfg.Prefab), zap.Error(err))
		return fmt.Errorf("create player: %w", err)
	}
	inst := m.cache.Instantiate(tmpl, m.root)
	inst.Name = playerName
	inst.Position = data.Position

	mv := movement.NewMovable(playerName, m.registry)
	mv.SetSpeed(data.MoveSpeed)
	if m.cfg.StoppingDistance > 0 {
		mv.SetStoppingDistance(m.cfg.StoppingDistance)
	}
	mv.Teleport(data.Position)
	mv.SetFacing(data.Facing)

	p := &Player{
		ID:       m.world.CreateEntity(),
		Instance: inst,
		Movable:  mv,
		Data:     data,
	}
	p.sub = mv.Subscribe(m.listener(p))
	mv.Enable()
	m.player = p

	if m.bus != nil {
		event.Emit(m.bus, event.PlayerCreated{Entity: p.ID, Profile: data.Profile, IsNew: data.IsNewPlayer})
	}
	m.log.Info("player created",
		zap.String("profile", data.Profile),
		zap.Bool("new", data.IsNewPlayer),
		zap.Float64("x", data.Position.X),
		zap.Float64("y", data.Position.Y))
	return nil
}

// listener keeps the data record in step with the movable and forwards the
// transitions to the event bus.
func (m *PlayerManager) listener(p *Player) movement.Listener {
	return movement.Listener{
		MoveStarted: func() {
			if m.bus != nil {
				event.Emit(m.bus, event.MoveStarted{Entity: p.ID, Name: playerName})
			}
		},
		MoveStopped: func() {
			pos := p.Movable.Position()
			p.Data.Position = pos
			p.Instance.Position = pos
			if m.bus != nil {
				event.Emit(m.bus, event.MoveStopped{Entity: p.ID, Name: playerName, Position: pos})
			}
		},
		DirectionChanged: func(dir geom.Vec2) {
			if !dir.IsZero() {
				p.Data.Facing = dir
			}
			if m.bus != nil {
				event.Emit(m.bus, event.DirectionChanged{Entity: p.ID, Name: playerName, Direction: dir})
			}
		},
	}
}

// DestroyPlayer removes the player. Without a player it does nothing.
func (m *PlayerManager) DestroyPlayer() {
	p := m.player
	if p == nil {
		return
	}
	p.Movable.Unsubscribe(p.sub)
	p.Movable.Destroy()
	p.Instance.Destroy()
	m.world.MarkForDestruction(p.ID)
	m.player = nil
	m.log.Info("player destroyed")
}

func (m *PlayerManager) validatePlayer() error {
	if !m.initialized {
		return ErrNotInitialized
	}
	if m.player == nil {
		return ErrNoPlayer
	}
	return nil
}

// SetPlayerPosition teleports the player and records the position.
func (m *PlayerManager) SetPlayerPosition(pos geom.Vec2) error {
	if err := m.validatePlayer(); err != nil {
		m.log.Error("set player position rejected", zap.Error(err))
		return err
	}
	p := m.player
	p.Movable.Teleport(pos)
	p.Data.Position = pos
	p.Instance.Position = pos
	return nil
}

// MoveTo sends the player toward target.
func (m *PlayerManager) MoveTo(target geom.Vec2) error {
	if err := m.validatePlayer(); err != nil {
		return err
	}
	m.player.Movable.MoveTo(target)
	return nil
}

// SetMap records the map the player stands on.
func (m *PlayerManager) SetMap(name string) error {
	if err := m.validatePlayer(); err != nil {
		return err
	}
	m.player.Data.MapName = name
	return nil
}

// SyncTransform copies the movable's position onto the visual instance.
func (m *PlayerManager) SyncTransform() {
	if p := m.player; p != nil {
		p.Instance.Position = p.Movable.Position()
	}
}

// SaveProfile writes the player record, with the live position.
func (m *PlayerManager) SaveProfile(ctx context.Context) error {
	if err := m.validatePlayer(); err != nil {
		return err
	}
	p := m.player
	snapshot := *p.Data
	snapshot.Position = p.Movable.Position()
	snapshot.Facing = p.Movable.Facing()
	snapshot.MoveSpeed = p.Movable.Speed()
	if err := m.profiles.SaveProfile(ctx, &snapshot); err != nil {
		m.log.Error("save profile failed", zap.String("profile", snapshot.Profile), zap.Error(err))
		return fmt.Errorf("save profile %s: %w", snapshot.Profile, err)
	}
	m.log.Debug("profile saved", zap.String("profile", snapshot.Profile))
	return nil
}
