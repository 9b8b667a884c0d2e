// Package bootstrap assembles the running application from configuration.
// Optional integrations (engine binary, render bridge, Redis, Postgres) stay
// off when their settings are empty; the service degrades per dependency
// instead of refusing to start.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quietbay/chesscourt/internal/archive"
	"github.com/quietbay/chesscourt/internal/boardimage"
	"github.com/quietbay/chesscourt/internal/command"
	"github.com/quietbay/chesscourt/internal/config"
	"github.com/quietbay/chesscourt/internal/court"
	"github.com/quietbay/chesscourt/internal/engine"
	"github.com/quietbay/chesscourt/internal/gateway"
	"github.com/quietbay/chesscourt/internal/livestate"
	"github.com/quietbay/chesscourt/internal/logging"
	"github.com/quietbay/chesscourt/internal/messages"
	"github.com/quietbay/chesscourt/internal/render"
)

// App carries everything main needs to serve and to shut down in order.
type App struct {
	Config  *config.AppConfig
	Court   *court.Manager
	Service *command.Service
	Hub     *gateway.Hub
	Server  *gateway.Server

	cpu   *engine.Stockfish
	live  *livestate.Store
	store archive.Store
}

// New builds the dependency graph bottom-up. Any hard failure aborts
// startup; soft failures (unreadable live snapshots) are logged and skipped.
func New(ctx context.Context, cfg *config.AppConfig, version string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	catalog, err := messages.New(cfg.MessagesFile)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	boards := config.NewBoardsFile(cfg.BoardsFile)

	var renderer render.Renderer = render.Nop{}
	if strings.TrimSpace(cfg.BridgeURL) != "" {
		opts := []render.Option{}
		if strings.TrimSpace(cfg.BridgeToken) != "" {
			opts = append(opts, render.WithToken(cfg.BridgeToken))
		}
		renderer = render.NewBridge(cfg.BridgeURL, opts...)
		logging.L().Info("render bridge enabled", zap.String("url", cfg.BridgeURL))
	}

	// No engine binary means no CPU seats; PvP still works.
	var cpu *engine.Stockfish
	if strings.TrimSpace(cfg.StockfishPath) != "" {
		cpu, err = engine.NewStockfish(ctx, cfg.StockfishPath, engine.Options{
			Threads:    cfg.EngineThreads,
			HashMB:     cfg.EngineHashMB,
			SkillLevel: cfg.EngineSkillLevel,
			MoveTime:   cfg.EngineMoveTime,
		})
		if err != nil {
			return nil, fmt.Errorf("init engine: %w", err)
		}
	} else {
		logging.L().Warn("no engine binary configured, cpu challenges disabled")
	}

	var provider engine.MoveProvider
	if cpu != nil {
		provider = cpu
	}
	mgr := court.NewManager(court.Deps{
		CPU:      provider,
		Renderer: renderer,
		Source:   boards,
	})
	if err := mgr.Reload(); err != nil {
		return nil, fmt.Errorf("load boards: %w", err)
	}

	var live *livestate.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		live, err = livestate.NewStore(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("init live store: %w", err)
		}
	} else {
		logging.L().Warn("no redis configured, games will not survive restarts")
	}

	var store archive.Store
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pg, err := archive.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init archive: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("archive schema: %w", err)
		}
		store = pg
	} else {
		store = archive.NewMemory()
		logging.L().Warn("no database configured, finished matches kept in memory only")
	}

	hub := gateway.NewHub()

	svc, err := command.NewService(command.Deps{
		Court:     mgr,
		Catalog:   catalog,
		Archive:   store,
		Live:      live,
		Renderer:  renderer,
		Boards:    boards,
		Roster:    hub,
		Presenter: hub,
		Version:   version,
		CPUDelay:  cfg.CPUMoveDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("init command service: %w", err)
	}

	if err := svc.RestoreAll(ctx); err != nil {
		return nil, fmt.Errorf("restore games: %w", err)
	}

	srv, err := gateway.NewServer(svc, hub, boardimage.NewPainter(), cfg.GatewayToken)
	if err != nil {
		return nil, fmt.Errorf("init gateway: %w", err)
	}

	return &App{
		Config:  cfg,
		Court:   mgr,
		Service: svc,
		Hub:     hub,
		Server:  srv,
		cpu:     cpu,
		live:    live,
		store:   store,
	}, nil
}

// Close releases external resources. Safe to call once after the HTTP
// listener has stopped.
func (a *App) Close() {
	if a.cpu != nil {
		if err := a.cpu.Close(); err != nil {
			logging.L().Warn("engine close", zap.Error(err))
		}
	}
	if a.live != nil {
		if err := a.live.Close(); err != nil {
			logging.L().Warn("live store close", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logging.L().Warn("archive close", zap.Error(err))
		}
	}
}
