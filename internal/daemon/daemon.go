package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"surfacegate/internal/catalog"
	"surfacegate/internal/config"
	"surfacegate/internal/gateway"
	"surfacegate/internal/logging"
)

// Daemon owns the gateway server and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *catalog.Store
	server *gateway.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	APIAddress    string
	CatalogDBPath string
	LockFilePath  string
	Engines       []string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *catalog.Store, server *gateway.Server, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || server == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, server, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "surfacegated.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		server:   server,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the gateway server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another surfacegate daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.server.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start gateway: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("surfacegate daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.Addr()),
	)
	return nil
}

// Stop shuts the gateway down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("surfacegate daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports the daemon's runtime state.
func (d *Daemon) Status() Status {
	engines := make([]string, 0, len(d.cfg.Engines))
	for _, engine := range d.cfg.Engines {
		engines = append(engines, engine.Name)
	}
	return Status{
		Running:       d.running.Load(),
		APIAddress:    d.server.Addr(),
		CatalogDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
		Engines:       engines,
	}
}
