package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/worldcore/internal/config"
	"github.com/l1jgo/worldcore/internal/core/ecs"
	"github.com/l1jgo/worldcore/internal/core/event"
	coresys "github.com/l1jgo/worldcore/internal/core/system"
	"github.com/l1jgo/worldcore/internal/creature"
	"github.com/l1jgo/worldcore/internal/data"
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/metrics"
	"github.com/l1jgo/worldcore/internal/persist"
	"github.com/l1jgo/worldcore/internal/scripting"
	"github.com/l1jgo/worldcore/internal/system"
	"github.com/l1jgo/worldcore/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            worldcore  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

// displayWidth counts CJK runes as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func printSection(title string) {
	lineLen := max(46-displayWidth(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-displayWidth(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	stats := metrics.New(reg)

	// 4. Map, event bus and creature registry
	bus := event.NewBus()
	m := world.NewMap(log, world.Options{Bus: bus, Stats: stats})
	m.Name = cfg.World.MapName
	ecsWorld := ecs.NewWorld()
	creatures := creature.NewRegistry(ecsWorld)

	// 5. Lua movement scripts
	engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	engine.Bind(m)

	// 6. Load or generate the map
	printSection("map")
	if err := loadMap(cfg.World, m, engine, log); err != nil {
		return err
	}
	printStat("sectors", m.SectorCount())
	printStat("houses", m.HouseCount())

	if cfg.World.PortalList != "" {
		portals, err := data.LoadPortalTable(cfg.World.PortalList)
		if err != nil {
			log.Warn("portal list not loaded", zap.Error(err))
		} else {
			printStat("portals", portals.Bind(m, log))
		}
	}

	// 7. Connect to PostgreSQL, run migrations, restore houses
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var store world.HouseStore
	if cfg.Database.Enabled {
		printSection("database")
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		houseRepo := persist.NewHouseRepo(db)
		if err := m.LoadHouses(ctx, houseRepo); err != nil {
			return fmt.Errorf("load houses: %w", err)
		}
		store = houseRepo
	}

	// 8. Spawns
	if cfg.World.SpawnList != "" {
		spawns, err := data.LoadSpawnList(cfg.World.SpawnList)
		if err != nil {
			log.Warn("spawn list not loaded", zap.Error(err))
		} else {
			printStat("creatures", spawnCreatures(m, creatures, spawns, log))
		}
	}
	fmt.Println()

	// 9. Create systems and register with runner
	runner := coresys.NewRunner()
	runner.Observe(func(p coresys.Phase, took time.Duration) { stats.PhaseTime(p.String(), took) })
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewSpectatorCacheSystem(m, cfg.Tick.SpectatorClearTicks))
	runner.Register(system.NewWanderSystem(m, creatures, nil, log, cfg.Pathfinding.WanderTicks))
	runner.Register(system.NewCleanSystem(m, cfg.Tick.CleanTicks))
	var persistSys *system.PersistenceSystem
	if store != nil {
		persistSys = system.NewPersistenceSystem(m, store, stats, log, cfg.Tick.SaveTicks, cfg.Tick.SaveRetries)
		runner.Register(persistSys)
	}
	runner.Register(system.NewCleanupSystem(ecsWorld, creatures, m))

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = startMetrics(cfg.Metrics.Addr, reg, log)
	}

	// 10. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Tick.Rate)
	defer ticker.Stop()

	printSection("ready")
	if metricsSrv != nil {
		printReady(fmt.Sprintf("metrics on %s", cfg.Metrics.Addr))
	}
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Tick.Rate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Tick.Rate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			if persistSys != nil {
				saveCtx, saveCancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := persistSys.SaveAll(saveCtx); err != nil {
					log.Warn("final house save failed", zap.Error(err))
				}
				saveCancel()
			}
			if metricsSrv != nil {
				shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				_ = metricsSrv.Shutdown(shutCtx)
				shutCancel()
			}
			log.Info("server stopped")
			return nil
		}
	}
}

// loadMap fills m from the map list, or generates terrain when configured.
func loadMap(cfg config.WorldConfig, m *world.Map, engine *scripting.Engine, log *zap.Logger) error {
	if cfg.Generate.Enabled {
		n, err := data.Generate(m, data.GenerateOptions{
			Seed:   cfg.Generate.Seed,
			Width:  int(cfg.Generate.Width),
			Height: int(cfg.Generate.Height),
			Floor:  cfg.Generate.Floor,
		})
		if err != nil {
			return fmt.Errorf("generate map: %w", err)
		}
		printStat("generated tiles", n)
		return nil
	}

	table, err := data.LoadMapData(cfg.MapList, cfg.TileDir, log)
	if err != nil {
		return fmt.Errorf("load map data: %w", err)
	}
	n, err := table.Populate(m, engine)
	if err != nil {
		return fmt.Errorf("populate map: %w", err)
	}
	if m.Name == "" {
		m.Name = cfg.MapName
	}
	log.Info("map loaded", zap.String("map", m.Name), zap.Int("areas", table.Count()), zap.Int("tiles", n))
	printStat("areas", table.Count())
	printStat("tiles", n)
	return nil
}

// spawnCreatures places every spawn entry around its point and gives
// monsters with a radius wander state. It returns how many were placed.
func spawnCreatures(m *world.Map, creatures *creature.Registry, spawns []data.SpawnEntry, log *zap.Logger) int {
	placed := 0
	for _, sp := range spawns {
		kind := creature.KindMonster
		if sp.Kind == "npc" {
			kind = creature.KindNPC
		}
		home := geo.Pos(sp.X, sp.Y, sp.Z)
		for n := 0; n < sp.Count; n++ {
			c := creatures.Spawn(sp.Name, kind)
			if !m.PlaceEntity(home, c, true, false) {
				log.Warn("spawn has no room", zap.String("name", sp.Name), zap.Stringer("pos", home))
				creatures.Despawn(c)
				continue
			}
			if sp.Radius > 0 {
				creatures.SetWander(c, home, sp.Radius)
			}
			placed++
		}
	}
	return placed
}

func startMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.Error(err))
		}
	}()
	return srv
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
