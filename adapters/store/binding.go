package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcosvidal/carniceria-go/adapters/store/rest"
	"github.com/marcosvidal/carniceria-go/adapters/store/sqlitestore"
	"github.com/marcosvidal/carniceria-go/interfaces"
	"github.com/marcosvidal/carniceria-go/internal"
)

// Binding holds the primary and fallback backends and the one that is
// currently bound. The choice is made once, at startup: if the primary probe
// fails the session binds the fallback and stays there. Auto-promotion back
// to the primary mid-session is deliberately not done; it would risk writes
// split across two backends. ForcePrimary and ForceFallback exist for
// diagnostic use only.
type Binding struct {
	mu       sync.RWMutex
	primary  interfaces.Store
	fallback interfaces.Store
	bound    interfaces.Store
	degraded bool
	logger   *internal.Logger
}

// Bind probes the configured backends and returns the binding. With
// prefer_primary unset the fallback is bound without probing the primary.
func Bind(ctx context.Context, cfg *internal.Config, logger *internal.Logger) (*Binding, error) {
	if logger == nil {
		logger = internal.GetLogger()
	}

	fallback, err := sqlitestore.NewSQLiteStore(cfg.Store.FallbackPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open fallback store: %w", err)
	}
	if err := fallback.Probe(ctx); err != nil {
		fallback.Close()
		return nil, fmt.Errorf("fallback store failed its schema probe: %w", err)
	}

	b := &Binding{fallback: fallback, logger: logger}

	if cfg.Store.PrimaryURL != "" {
		b.primary = rest.NewClient(rest.Config{
			BaseURL:        cfg.Store.PrimaryURL,
			APIKey:         cfg.Store.PrimaryKey,
			Timeout:        cfg.StoreTimeout(),
			MaxConnections: cfg.Store.MaxConnections,
			Logger:         logger,
		})
	}

	if b.primary != nil && cfg.Store.PreferPrimary {
		if err := b.primary.Probe(ctx); err == nil {
			b.bound = b.primary
			logger.Info(internal.ComponentStore, "Bound primary store %s", b.primary.Name())
			return b, nil
		} else {
			// A single degraded-mode notice; the binding never flips back
			// on its own within this session.
			logger.Warn(internal.ComponentStore, "Primary store unreachable, binding fallback: %v", err)
		}
	}

	b.bound = b.fallback
	b.degraded = b.primary != nil
	logger.Info(internal.ComponentStore, "Bound fallback store %s", b.fallback.Name())
	return b, nil
}

// Store returns the currently bound backend.
func (b *Binding) Store() interfaces.Store {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bound
}

// Degraded reports whether the session is running on the fallback while a
// primary is configured.
func (b *Binding) Degraded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.degraded
}

// ForcePrimary rebinds to the primary backend without probing. Diagnostic
// use only.
func (b *Binding) ForcePrimary() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.primary == nil {
		return fmt.Errorf("no primary store configured")
	}
	b.bound = b.primary
	b.degraded = false
	b.logger.Warn(internal.ComponentStore, "Forced binding to primary store %s", b.primary.Name())
	return nil
}

// ForceFallback rebinds to the fallback backend. Diagnostic use only.
func (b *Binding) ForceFallback() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bound = b.fallback
	b.degraded = b.primary != nil
	b.logger.Warn(internal.ComponentStore, "Forced binding to fallback store %s", b.fallback.Name())
	return nil
}

// Close releases both backends.
func (b *Binding) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var firstErr error
	if b.primary != nil {
		if err := b.primary.Close(); err != nil {
			firstErr = err
		}
	}
	if err := b.fallback.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
