package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/farmgame/client/internal/client"
	"github.com/farmgame/client/internal/config"
	"github.com/farmgame/client/internal/core/ecs"
	"github.com/farmgame/client/internal/core/event"
	coresys "github.com/farmgame/client/internal/core/system"
	"github.com/farmgame/client/internal/core/task"
	"github.com/farmgame/client/internal/data"
	"github.com/farmgame/client/internal/game"
	"github.com/farmgame/client/internal/movement"
	"github.com/farmgame/client/internal/npc"
	"github.com/farmgame/client/internal/persist"
	"github.com/farmgame/client/internal/resource"
	"github.com/farmgame/client/internal/scripting"
	"github.com/farmgame/client/internal/system"
	"github.com/farmgame/client/internal/ui"
	"github.com/farmgame/client/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Main client logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/client.toml"
	explicit := false
	if p := os.Getenv("FARM_CONFIG"); p != "" {
		cfgPath = p
		explicit = true
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = config.Default()
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Profiles: PostgreSQL when enabled, memory otherwise
	printSection("Profiles")
	var profiles world.ProfileStore = world.NewMemoryProfiles()
	if cfg.Database.Enabled {
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := persist.RunMigrations(dbCtx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		profiles = persist.NewProfileStore(persist.NewProfileRepo(db))
		printOK("PostgreSQL profiles ready")
	} else {
		printOK("in-memory profiles (database disabled)")
	}

	// 4. Static data
	printSection("Data")
	manifest, err := data.LoadManifest(cfg.Assets.Manifest)
	if err != nil {
		return fmt.Errorf("load asset manifest: %w", err)
	}
	printStat("assets", manifest.Count())

	spawns, err := data.LoadNpcSpawns(cfg.Assets.NpcSpawns)
	if err != nil {
		return fmt.Errorf("load npc spawns: %w", err)
	}
	printStat("npc spawns", spawns.Count())

	// 5. NPC advisory service
	advisor, closeAdvisor, err := newAdvisor(cfg.Advisory, log)
	if err != nil {
		return fmt.Errorf("advisor: %w", err)
	}
	defer closeAdvisor()

	// 6. Services
	tasks := task.NewQueue()
	bus := event.NewBus()
	ecsWorld := ecs.NewWorld()
	cache := resource.NewCache(manifest, tasks, log)
	uiMgr := ui.NewManager(log)
	maps := world.NewMapManager(cache, cfg.Map.TileSize, bus, log)
	registry := movement.NewRegistry(log)
	players := world.NewPlayerManager(cfg.Player, cache, registry, ecsWorld, profiles, bus, log)
	npcs := world.NewNpcManager(cfg.Npc, cfg.Advisory, world.NpcDeps{
		World:    ecsWorld,
		Cache:    cache,
		Registry: registry,
		Maps:     maps,
		Tasks:    tasks,
		Bus:      bus,
		Advisor:  advisor,
		Limiter:  npc.NewLimiter(cfg.Advisory.MaxInFlight),
	}, log)

	subscribeLogging(bus, log)

	// 7. Boot
	policy := game.NewStartPolicy(cfg, game.StartDeps{
		Cache:   cache,
		Maps:    maps,
		Players: players,
		Npcs:    npcs,
		Spawns:  spawns,
	}, log)
	boot := game.NewBoot(game.Services{
		Resources: cache,
		UI:        uiMgr,
		Maps:      maps,
		Players:   players,
		Movement:  registry,
	}, policy, log)
	if err := boot.Start(ctx); err != nil {
		boot.Shutdown()
		return fmt.Errorf("boot: %w", err)
	}
	defer boot.Shutdown()
	printOK(fmt.Sprintf("map %s, %d npcs", maps.Name(), npcs.Count()))

	// 8. Systems
	runner := coresys.NewRunner()
	autosave := system.NewAutosaveSystem(players, log, cfg.Autosave.IntervalTicks)
	runner.Register(system.NewTaskSystem(tasks, log))
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewMovementSystem(registry, players))
	runner.Register(system.NewKnockbackSystem(npcs))
	runner.Register(system.NewOccupancySystem(npcs))
	runner.Register(autosave)
	runner.Register(system.NewCleanupSystem(ecsWorld))
	defer autosave.SaveNow()

	// 9. Frame loop
	if cfg.Client.Headless {
		return runHeadless(ctx, runner, cfg.Client.TickRate, log)
	}
	camera := client.NewCamera(cfg.Client.ScreenWidth, cfg.Client.ScreenHeight, cfg.Client.PixelsPerUnit)
	router := client.NewPointerRouter(uiMgr, camera, maps, players, npcs, cfg.Npc.HitForce, log)
	host := client.NewGame(client.Options{
		Title:   cfg.Client.Name,
		Step:    cfg.Client.TickRate,
		Runner:  runner,
		Camera:  camera,
		Router:  router,
		UI:      uiMgr,
		Maps:    maps,
		Players: players,
		Npcs:    npcs,
		Log:     log,
	})
	if err := client.Run(host); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	log.Info("window closed")
	return nil
}

// runHeadless ticks the runner on a timer until ctx is cancelled.
func runHeadless(ctx context.Context, runner *coresys.Runner, tickRate time.Duration, log *zap.Logger) error {
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()
	log.Info("headless loop started", zap.Duration("tick", tickRate))
	for {
		select {
		case <-ticker.C:
			runner.Tick(tickRate)
		case <-ctx.Done():
			log.Info("shutdown signal received", zap.Uint64("ticks", runner.Ticks()))
			return nil
		}
	}
}

// newAdvisor builds the configured advisory backend. A nil advisor turns the
// slow reaction off; NPCs still flinch when hit.
func newAdvisor(cfg config.AdvisoryConfig, log *zap.Logger) (npc.Advisor, func(), error) {
	noop := func() {}
	switch cfg.Mode {
	case "", "off":
		printOK("npc advisory off")
		return nil, noop, nil
	case "lua":
		engine, err := scripting.NewEngine(cfg.ScriptsDir, log)
		if err != nil {
			return nil, noop, fmt.Errorf("lua engine: %w", err)
		}
		printOK("lua advisor loaded")
		return engine, engine.Close, nil
	case "http":
		key := os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			log.Warn("advisory key not set, npc advisory off", zap.String("env", cfg.APIKeyEnv))
			return nil, noop, nil
		}
		adv := npc.NewHTTPAdvisor(&http.Client{Timeout: cfg.Timeout}, cfg.Endpoint, cfg.Model, key)
		printOK("http advisor " + cfg.Model)
		return adv, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown advisory mode %q", cfg.Mode)
}

// subscribeLogging traces the gameplay events the HUD would otherwise show.
func subscribeLogging(bus *event.Bus, log *zap.Logger) {
	l := log.Named("events")
	event.Subscribe(bus, func(e event.MapLoaded) {
		l.Debug("map loaded", zap.String("map", e.Name), zap.Float64("tile_size", e.TileSize))
	})
	event.Subscribe(bus, func(e event.MoveStopped) {
		l.Debug("move stopped", zap.String("name", e.Name), zap.Float64("x", e.Position.X), zap.Float64("y", e.Position.Y))
	})
	event.Subscribe(bus, func(e event.NpcHit) {
		l.Debug("npc hit", zap.Uint64("npc", uint64(e.Npc)), zap.Float64("force", e.Force))
	})
	event.Subscribe(bus, func(e event.NpcDirective) {
		l.Info("npc decided", zap.Uint64("npc", uint64(e.Npc)), zap.String("action", e.Action), zap.String("speech", e.Speech))
	})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
