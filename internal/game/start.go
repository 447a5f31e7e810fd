package game

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/farmgame/client/internal/config"
	"github.com/farmgame/client/internal/data"
	"github.com/farmgame/client/internal/geom"
	"github.com/farmgame/client/internal/resource"
	"github.com/farmgame/client/internal/world"
)

var ErrNotInitialized = errors.New("start policy not initialized")

// StartDeps are the collaborators the start policy drives.
type StartDeps struct {
	Cache   *resource.Cache
	Maps    *world.MapManager
	Players *world.PlayerManager
	Npcs    *world.NpcManager
	Spawns  *data.NpcSpawnTable // may be nil
}

// StartPolicy decides where the player starts. A new player is placed on the
// initial map's spawn point and the profile is saved with the flag cleared,
// so the first-run placement happens once per profile. A returning player
// goes back to the saved map and position.
type StartPolicy struct {
	mapCfg  config.MapConfig
	prewarm []config.PrewarmEntry
	deps    StartDeps
	log     *zap.Logger

	initialized bool
	started     bool
}

func NewStartPolicy(cfg *config.Config, deps StartDeps, log *zap.Logger) *StartPolicy {
	return &StartPolicy{
		mapCfg:  cfg.Map,
		prewarm: cfg.Pool.Prewarm,
		deps:    deps,
		log:     log.Named("start"),
	}
}

func (p *StartPolicy) Initialize() error {
	if p.initialized {
		return nil
	}
	if p.deps.Cache == nil || p.deps.Maps == nil || p.deps.Players == nil || p.deps.Npcs == nil {
		return ErrMissingService
	}
	if err := p.deps.Npcs.Initialize(); err != nil {
		return fmt.Errorf("npc manager: %w", err)
	}
	p.initialized = true
	return nil
}

// Dispose tears down the NPCs and the player. Services themselves are
// disposed by Boot.
func (p *StartPolicy) Dispose() {
	if !p.initialized {
		return
	}
	p.deps.Npcs.Dispose()
	p.deps.Players.DestroyPlayer()
	p.initialized = false
	p.started = false
}

// Started reports whether StartNewGame has completed.
func (p *StartPolicy) Started() bool { return p.started }

// StartNewGame creates the player and places it, then fills the map. It runs
// once; later calls return nil.
func (p *StartPolicy) StartNewGame(ctx context.Context) error {
	if !p.initialized {
		return ErrNotInitialized
	}
	if p.started {
		return nil
	}
	players := p.deps.Players
	if err := players.CreatePlayer(ctx); err != nil {
		return err
	}
	data := players.Player().Data

	var err error
	if data.IsNewPlayer {
		err = p.placeNewPlayer(ctx)
	} else {
		err = p.placeReturningPlayer()
	}
	if err != nil {
		return err
	}

	p.prewarmPools()
	n := p.spawnNpcs(p.deps.Maps.Name())
	p.started = true
	p.log.Info("game started",
		zap.String("map", p.deps.Maps.Name()),
		zap.Bool("new_player", data.IsNewPlayer),
		zap.Int("npcs", n))
	return nil
}

func (p *StartPolicy) placeNewPlayer(ctx context.Context) error {
	name := p.mapCfg.InitialMap
	if err := p.deps.Maps.LoadMap(name); err != nil {
		return fmt.Errorf("load initial map: %w", err)
	}
	players := p.deps.Players
	if err := players.SetPlayerPosition(p.spawnPoint()); err != nil {
		return err
	}
	if err := players.SetMap(name); err != nil {
		return err
	}
	players.Player().Data.IsNewPlayer = false
	if err := players.SaveProfile(ctx); err != nil {
		// The flag stays cleared in memory. The next launch repeats placement.
		p.log.Warn("first-run profile save failed", zap.Error(err))
	}
	return nil
}

func (p *StartPolicy) placeReturningPlayer() error {
	players := p.deps.Players
	name := players.Player().Data.MapName
	if name == "" {
		name = p.mapCfg.InitialMap
	}
	err := p.deps.Maps.LoadMap(name)
	if err != nil && name != p.mapCfg.InitialMap {
		p.log.Warn("saved map unavailable, using initial map", zap.String("map", name), zap.Error(err))
		name = p.mapCfg.InitialMap
		if err = p.deps.Maps.LoadMap(name); err == nil {
			err = players.SetPlayerPosition(p.spawnPoint())
		}
	}
	if err != nil {
		return fmt.Errorf("load map %s: %w", name, err)
	}
	return players.SetMap(name)
}

// spawnPoint prefers the map's own spawn props over the configured one.
func (p *StartPolicy) spawnPoint() geom.Vec2 {
	if pos, ok := p.deps.Maps.SpawnPoint(); ok {
		return pos
	}
	return geom.Vec2{X: p.mapCfg.SpawnX, Y: p.mapCfg.SpawnY}
}

func (p *StartPolicy) prewarmPools() {
	for _, e := range p.prewarm {
		if err := p.deps.Cache.Prewarm(e.Key, e.Count); err != nil {
			p.log.Warn("prewarm failed", zap.String("key", e.Key), zap.Error(err))
		}
	}
}

// spawnNpcs places the spawn rows of one map. Copies of a row are laid out
// one tile apart along X. Failed spawns are logged and skipped.
func (p *StartPolicy) spawnNpcs(mapName string) int {
	tile := p.deps.Maps.Grid().TileSize()
	n := 0
	for _, s := range p.deps.Spawns.ForMap(mapName) {
		for i := 0; i < s.Count; i++ {
			pos := geom.Vec2{X: s.X + float64(i)*tile, Y: s.Y}
			if _, err := p.deps.Npcs.Spawn(s.Prefab, pos, s.Personality); err != nil {
				p.log.Warn("npc spawn failed", zap.String("prefab", s.Prefab), zap.Error(err))
				continue
			}
			n++
		}
	}
	return n
}
