package world

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"go.uber.org/zap"

	"github.com/farmgame/client/internal/config"
	"github.com/farmgame/client/internal/core/ecs"
	"github.com/farmgame/client/internal/core/event"
	"github.com/farmgame/client/internal/core/task"
	"github.com/farmgame/client/internal/geom"
	"github.com/farmgame/client/internal/grid"
	"github.com/farmgame/client/internal/movement"
	"github.com/farmgame/client/internal/npc"
	"github.com/farmgame/client/internal/resource"
)

var flashRed = color.RGBA{R: 255, A: 255}

// minSpeed is where knockback velocity is considered spent.
const minSpeed = 0.01

// Npc is a non-player entity: a pooled visual, a movable and, when advisory
// is enabled, a slow-path brain.
type Npc struct {
	ID          ecs.EntityID
	Name        string
	Prefab      string
	Personality string
	Instance    *resource.Instance
	Movable     *movement.Movable
	Brain       *npc.Brain

	Speech     string
	LastAction npc.Action
	baseTint   color.RGBA
}

// Body is the NPC's knockback state and its last filed tile.
type Body struct {
	Velocity geom.Vec2
	Cell     grid.Cell
}

// NpcManager spawns NPCs and runs their fast reaction to hits. The slow
// reaction is delegated to each NPC's brain.
type NpcManager struct {
	world    *ecs.World
	npcs     *ecs.Store[Npc]
	bodies   *ecs.Store[Body]
	occ      *Occupancy
	cache    *resource.Cache
	registry *movement.Registry
	maps     *MapManager
	tasks    *task.Queue
	bus      *event.Bus
	advisor  npc.Advisor
	limiter  *npc.Limiter
	log      *zap.Logger

	cfg                config.NpcConfig
	advisoryTimeout    time.Duration
	defaultPersonality string

	root        *resource.Instance
	initialized bool
}

// NpcDeps bundles the NpcManager's collaborators. Advisor may be nil to run
// NPCs without a slow path.
type NpcDeps struct {
	World    *ecs.World
	Cache    *resource.Cache
	Registry *movement.Registry
	Maps     *MapManager
	Tasks    *task.Queue
	Bus      *event.Bus
	Advisor  npc.Advisor
	Limiter  *npc.Limiter
}

func NewNpcManager(cfg config.NpcConfig, advisory config.AdvisoryConfig, deps NpcDeps, log *zap.Logger) *NpcManager {
	m := &NpcManager{
		world:              deps.World,
		npcs:               ecs.NewStore[Npc](),
		bodies:             ecs.NewStore[Body](),
		occ:                NewOccupancy(),
		cache:              deps.Cache,
		registry:           deps.Registry,
		maps:               deps.Maps,
		tasks:              deps.Tasks,
		bus:                deps.Bus,
		advisor:            deps.Advisor,
		limiter:            deps.Limiter,
		log:                log.Named("npc"),
		cfg:                cfg,
		advisoryTimeout:    advisory.Timeout,
		defaultPersonality: advisory.Personality,
	}
	m.world.Registry().Register(m.npcs)
	m.world.Registry().Register(m.bodies)
	m.world.OnDestroy(m.release)
	return m
}

func (m *NpcManager) Initialize() error {
	if m.initialized {
		return nil
	}
	m.root = &resource.Instance{Name: "NpcRoot"}
	m.initialized = true
	m.log.Info("npc manager initialized", zap.Bool("advisory", m.advisor != nil))
	return nil
}

// Dispose despawns every NPC immediately.
func (m *NpcManager) Dispose() {
	if !m.initialized {
		return
	}
	m.DespawnAll()
	m.world.FlushDestroyQueue()
	m.occ.Reset()
	m.initialized = false
}

// Spawn places a pooled prefab at pos. An empty personality uses the
// configured default.
func (m *NpcManager) Spawn(prefab string, pos geom.Vec2, personality string) (ecs.EntityID, error) {
	if !m.initialized {
		return 0, ErrNotInitialized
	}
	inst, err := m.cache.SpawnAt(prefab, pos, m.root)
	if err != nil {
		return 0, fmt.Errorf("spawn npc %s: %w", prefab, err)
	}
	if personality == "" {
		personality = inst.Template.String("personality", m.defaultPersonality)
	}

	id := m.world.CreateEntity()
	name := fmt.Sprintf("%s#%d", inst.Template.Name, id.Index())

	mv := movement.NewMovable(name, m.registry)
	mv.SetSpeed(inst.Template.Float("move_speed", movement.DefaultSpeed))
	mv.Teleport(pos)
	mv.Enable()

	n := &Npc{
		ID:          id,
		Name:        name,
		Prefab:      prefab,
		Personality: personality,
		Instance:    inst,
		Movable:     mv,
		LastAction:  npc.ActionNone,
		baseTint:    inst.Tint,
	}
	if m.advisor != nil {
		n.Brain = npc.NewBrain(m.advisor, m.tasks, npc.BrainOptions{
			Name:        name,
			Personality: personality,
			Timeout:     m.advisoryTimeout,
			Limiter:     m.limiter,
		}, m.log)
	}
	mv.Subscribe(movement.Listener{
		MoveStarted: func() {
			if m.bus != nil {
				event.Emit(m.bus, event.MoveStarted{Entity: id, Name: name})
			}
		},
		MoveStopped: func() {
			if m.bus != nil {
				event.Emit(m.bus, event.MoveStopped{Entity: id, Name: name, Position: mv.Position()})
			}
		},
		DirectionChanged: func(dir geom.Vec2) {
			if m.bus != nil {
				event.Emit(m.bus, event.DirectionChanged{Entity: id, Name: name, Direction: dir})
			}
		},
	})

	cell := m.maps.Grid().PlaneToGrid(pos)
	m.npcs.Set(id, n)
	m.bodies.Set(id, &Body{Cell: cell})
	m.occ.Add(id, cell)

	m.log.Debug("npc spawned", zap.String("npc", name), zap.Int("cell_x", cell.X), zap.Int("cell_y", cell.Y))
	return id, nil
}

// Despawn queues id for end-of-tick destruction.
func (m *NpcManager) Despawn(id ecs.EntityID) error {
	if !m.npcs.Has(id) || !m.world.Alive(id) {
		return fmt.Errorf("despawn %d: %w", id, ErrUnknownNpc)
	}
	m.world.MarkForDestruction(id)
	return nil
}

// DespawnAll queues every NPC.
func (m *NpcManager) DespawnAll() {
	m.npcs.Each(func(id ecs.EntityID, _ *Npc) {
		m.world.MarkForDestruction(id)
	})
}

// release runs from the destroy queue while the components still exist.
func (m *NpcManager) release(id ecs.EntityID) {
	n, ok := m.npcs.Get(id)
	if !ok {
		return
	}
	if n.Brain != nil {
		n.Brain.Close()
	}
	n.Movable.Destroy()
	n.Instance.Tint = n.baseTint
	m.cache.Despawn(n.Prefab, n.Instance)
	if b, ok := m.bodies.Get(id); ok {
		m.occ.Remove(id, b.Cell)
	}
	m.log.Debug("npc despawned", zap.String("npc", n.Name))
}

func (m *NpcManager) Get(id ecs.EntityID) (*Npc, bool) {
	if !m.world.Alive(id) {
		return nil, false
	}
	return m.npcs.Get(id)
}

func (m *NpcManager) Body(id ecs.EntityID) (*Body, bool) {
	return m.bodies.Get(id)
}

// Each visits live NPCs.
func (m *NpcManager) Each(fn func(*Npc)) {
	m.npcs.Each(func(id ecs.EntityID, n *Npc) {
		if !m.world.PendingDestroy(id) {
			fn(n)
		}
	})
}

func (m *NpcManager) Count() int { return m.npcs.Len() }

// At returns the NPCs filed on cell.
func (m *NpcManager) At(cell grid.Cell) []ecs.EntityID { return m.occ.At(cell) }

// Occupancy exposes the tile index.
func (m *NpcManager) Occupancy() *Occupancy { return m.occ }

// Hit is the fast reaction: an impulse away from source, a red flash for the
// configured duration, then a report to the brain. A busy brain drops the
// report. force <= 0 uses the configured hit force.
func (m *NpcManager) Hit(id ecs.EntityID, source geom.Vec2, force float64) error {
	n, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("hit %d: %w", id, ErrUnknownNpc)
	}
	if force <= 0 {
		force = m.cfg.HitForce
	}

	if b, ok := m.bodies.Get(id); ok {
		push := n.Movable.Position().Sub(source).Normalize()
		b.Velocity = b.Velocity.Add(push.Scale(force))
	}

	n.Instance.Tint = flashRed
	inst, base := n.Instance, n.baseTint
	m.tasks.After(m.cfg.FlashDuration, func() {
		if m.world.Alive(id) {
			inst.Tint = base
		}
	})

	if m.bus != nil {
		event.Emit(m.bus, event.NpcHit{Npc: id, Source: source, Force: force})
	}

	if n.Brain == nil {
		return nil
	}
	situation := fmt.Sprintf("I was attacked. The attacker is at (%.1f, %.1f). It hurts and my mood is getting worse.", source.X, source.Y)
	err := n.Brain.Decide(situation, func(d npc.Directive) {
		m.applyDirective(id, source, d)
	})
	if err != nil && !errors.Is(err, npc.ErrBusy) {
		return err
	}
	return nil
}

// applyDirective runs on the loop when a brain answers.
func (m *NpcManager) applyDirective(id ecs.EntityID, source geom.Vec2, d npc.Directive) {
	n, ok := m.Get(id)
	if !ok {
		return
	}
	n.Speech = d.Speech
	n.LastAction = d.Action

	pos := n.Movable.Position()
	switch d.Action {
	case npc.ActionFlee:
		away := pos.Sub(source).Normalize()
		if away.IsZero() {
			away = n.Movable.Facing().Scale(-1)
		}
		n.Movable.MoveTo(pos.Add(away.Scale(m.cfg.FleeDistance)))
	case npc.ActionApproach:
		n.Movable.MoveTo(source)
	default:
		n.Movable.Stop()
	}

	if m.bus != nil {
		event.Emit(m.bus, event.NpcDirective{Npc: id, Action: string(d.Action), Speech: d.Speech})
	}
}

// ApplyKnockback integrates impulse velocities with linear drag.
func (m *NpcManager) ApplyKnockback(dt time.Duration) {
	secs := dt.Seconds()
	decay := 1 - m.cfg.Drag*secs
	if decay < 0 {
		decay = 0
	}
	ecs.Each2(m.npcs, m.bodies, func(_ ecs.EntityID, n *Npc, b *Body) {
		if b.Velocity.IsZero() {
			return
		}
		n.Movable.Nudge(b.Velocity.Scale(secs))
		b.Velocity = b.Velocity.Scale(decay)
		if b.Velocity.Len() < minSpeed {
			b.Velocity = geom.Zero2
		}
	})
}

// SyncOccupancy re-files NPCs whose tile changed and copies positions to
// their visual instances.
func (m *NpcManager) SyncOccupancy() {
	g := m.maps.Grid()
	ecs.Each2(m.npcs, m.bodies, func(id ecs.EntityID, n *Npc, b *Body) {
		pos := n.Movable.Position()
		n.Instance.Position = pos
		cell := g.PlaneToGrid(pos)
		if cell != b.Cell {
			m.occ.Move(id, b.Cell, cell)
			b.Cell = cell
		}
	})
}
