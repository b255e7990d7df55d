package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"portfolio/internal/config"
	"portfolio/internal/logger"
	"portfolio/internal/repository/sqlite"
	"portfolio/internal/route"
	"portfolio/internal/service"
	"portfolio/internal/service/websocket"
	"portfolio/internal/service/works"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  *logger.Logger
	db      *sqlite.DB
	source  works.Source
	hub     *websocket.HubService
	manager *service.Manager
	watcher *works.Watcher
}

// NewApp wires the services described by cfg. Close releases them.
func NewApp(cfg *config.Config) (*App, error) {
	log, err := logger.NewLogger(cfg.LogDirectory)
	if err != nil {
		return nil, err
	}

	a := &App{config: cfg, logger: log}

	if err := a.buildSource(); err != nil {
		a.Close()
		return nil, err
	}

	a.hub = websocket.NewHubService(log)
	a.manager = service.NewManager(a.source, a.hub, cfg.Rotor, cfg.FrameInterval, log)

	if cfg.WorksSource == config.SourceFile && cfg.WatchWorks {
		a.watcher = works.NewWatcher(cfg.WorksFile, works.DefaultDebounce, a.reload, log)
	}

	return a, nil
}

func (a *App) buildSource() error {
	var src works.Source
	switch a.config.WorksSource {
	case config.SourceRemote:
		src = works.NewRemoteSource(a.config.WorksURL, nil, a.config.WorksTimeout)
	default:
		src = works.NewFileSource(a.config.WorksFile)
	}

	if a.config.WorksCacheDB != "" {
		if err := os.MkdirAll(filepath.Dir(a.config.WorksCacheDB), 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
		db, err := sqlite.New(a.config.WorksCacheDB)
		if err != nil {
			return err
		}
		a.db = db
		src = works.NewCachedSource(src, sqlite.NewWorkItemRepository(db), a.logger)
	}

	a.source = src
	return nil
}

func (a *App) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.WorksTimeout)
	defer cancel()
	a.manager.Reload(ctx)
}

// Manager exposes the gallery manager.
func (a *App) Manager() *service.Manager {
	return a.manager
}

// Handler returns the HTTP handler tree.
func (a *App) Handler() http.Handler {
	return route.SetupRoutes(a.manager, a.config, a.logger)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(ctx)
		return nil
	})

	// The gallery still works on placeholders if the first load fails.
	a.reload()

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			a.logger.Warning("Works file watching disabled: %v", err)
		} else {
			g.Go(func() error {
				<-ctx.Done()
				a.watcher.Stop()
				return nil
			})
		}
	}

	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		a.logger.Info("🚀 Portfolio server listening on %s", ln.Addr())
		a.logger.Info("📁 Works: %s", a.source.Name())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases the cache database and log files.
func (a *App) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.logger != nil {
		errs = append(errs, a.logger.Close())
	}
	return errors.Join(errs...)
}
