package daemon

import (
	"context"
	"path/filepath"
	"time"

	"github.com/matheus3301/wppmcp/internal/api"
	"github.com/matheus3301/wppmcp/internal/bridge"
	"github.com/matheus3301/wppmcp/internal/bus"
	"github.com/matheus3301/wppmcp/internal/config"
	"github.com/matheus3301/wppmcp/internal/httpapi"
	"github.com/matheus3301/wppmcp/internal/lock"
	"github.com/matheus3301/wppmcp/internal/logging"
	"github.com/matheus3301/wppmcp/internal/mcpserver"
	"github.com/matheus3301/wppmcp/internal/paths"
	"github.com/matheus3301/wppmcp/internal/status"
	"github.com/matheus3301/wppmcp/internal/store"
	"github.com/matheus3301/wppmcp/internal/tools"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Params holds the resolved configuration passed to the fx module.
type Params struct {
	Config  *config.Config
	Version string
	Binary  string

	// Optional overrides for testing; empty means the ~/.wpp-mcp layout.
	SocketPath string
	LockPath   string
	LogPath    string
}

func (p Params) socketPath() string {
	if p.SocketPath != "" {
		return p.SocketPath
	}
	return p.Config.Socket()
}

func (p Params) lockPath() string {
	if p.LockPath != "" {
		return p.LockPath
	}
	return paths.LockPath()
}

func (p Params) logPath() string {
	binary := p.Binary
	if binary == "" {
		binary = "wppd"
	}
	switch {
	case p.LogPath != "":
		return p.LogPath
	case p.Config.Log.Dir != "":
		return filepath.Join(p.Config.Log.Dir, binary+".log")
	}
	return paths.LogPath(binary)
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		Core(),
		fx.Provide(
			provideLock,
			provideToolService,
			NewServer,
			provideHTTP,
		),
		fx.Invoke(registerLifecycle),
	)
}

// Core provides everything needed to call tools: logger, store, bridge
// client, health machine and registry. The stdio MCP binary uses it without
// the listeners.
func Core() fx.Option {
	return fx.Options(
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideMetrics,
			provideStore,
			provideBridge,
			provideRegistry,
			provideMCP,
		),
		fx.Invoke(registerStoreLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	binary := p.Binary
	if binary == "" {
		binary = "wppd"
	}
	return logging.New(p.logPath(), p.Config.Log.Level, binary)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideMetrics(b *bus.Bus) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}
	dropped := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "wppmcp_bus_dropped_events_total",
		Help: "Events not delivered because a subscriber's buffer was full.",
	}, func() float64 { return float64(b.Dropped()) })
	if err := reg.Register(dropped); err != nil {
		return nil, err
	}
	return reg, nil
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if p.LockPath == "" {
		if err := paths.EnsureDir(); err != nil {
			return nil, err
		}
	}
	logger.Info("acquiring daemon lock", zap.String("path", p.lockPath()))
	l, err := lock.Acquire(p.lockPath())
	if err != nil {
		return nil, err
	}
	logger.Info("daemon lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, *store.Store, error) {
	cfg := p.Config.Store
	db, err := store.Open(cfg.WhatsAppDB, cfg.MessagesDB)
	if err != nil {
		return nil, nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized",
		zap.String("messages_db", cfg.MessagesDB),
		zap.String("whatsapp_db", cfg.WhatsAppDB),
	)
	return db, store.New(db.Contacts, db.Messages, store.WithLogger(logger.Named("store"))), nil
}

func provideBridge(p Params, machine *status.Machine, logger *zap.Logger) *bridge.Client {
	return bridge.New(p.Config.Bridge,
		bridge.WithObserver(machine),
		bridge.WithLogger(logger.Named("bridge")),
	)
}

func provideRegistry(st *store.Store, bc *bridge.Client, b *bus.Bus, reg *prometheus.Registry, logger *zap.Logger) *tools.Registry {
	return tools.New(st, bc,
		tools.WithLogger(logger.Named("tools")),
		tools.WithBus(b),
		tools.WithMetrics(reg),
	)
}

func provideMCP(p Params, registry *tools.Registry, logger *zap.Logger) *mcpserver.Server {
	return mcpserver.New(registry, p.Version, logger.Named("mcp"))
}

func provideToolService(registry *tools.Registry, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *api.ToolService {
	return api.NewToolService(registry, machine, b, logger.Named("api"))
}

// provideHTTP binds the SSE listener once the lock is held. An empty address
// disables it and yields a nil server.
func provideHTTP(p Params, _ *lock.Lock, mcp *mcpserver.Server, machine *status.Machine, reg *prometheus.Registry, registry *tools.Registry, logger *zap.Logger) (*httpapi.Server, error) {
	cfg := p.Config.Server
	if cfg.SSEAddr == "" {
		logger.Info("SSE listener disabled")
		return nil, nil
	}
	baseURL := cfg.PublicURL
	if baseURL == "" {
		baseURL = "http://" + cfg.SSEAddr
	}
	router := httpapi.NewRouter(httpapi.Deps{
		MCP:      mcp.SSE(baseURL),
		Health:   machine,
		Gatherer: reg,
		Limiter:  httpapi.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		Logger:   logger.Named("http"),
		Tools:    len(registry.Tools()),
	})
	return httpapi.Listen(cfg.SSEAddr, router, logger.Named("http"))
}

func registerStoreLifecycle(lc fx.Lifecycle, db *store.DB, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			return nil
		},
	})
}

func registerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, lk *lock.Lock, srv *Server, httpSrv *httpapi.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			// Either listener failing takes the whole daemon down.
			var g errgroup.Group
			g.Go(srv.Start)
			if httpSrv != nil {
				g.Go(httpSrv.Serve)
			}
			go func() {
				if err := g.Wait(); err != nil {
					logger.Error("listener failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if httpSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := httpSrv.Shutdown(shutdownCtx); err != nil {
					logger.Warn("error stopping HTTP server", zap.Error(err))
				}
			}
			srv.Stop(ctx)
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
