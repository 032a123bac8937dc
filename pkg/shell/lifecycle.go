package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Component is something that can be started and stopped.
type Component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// hook is one named start/stop pair. Either function may be nil.
type hook struct {
	name  string
	start func(context.Context) error
	stop  func(context.Context) error
}

// Lifecycle starts components in registration order and stops them in
// reverse. A failed start stops whatever had already started.
type Lifecycle struct {
	mu      sync.Mutex
	hooks   []hook
	started int // number of hooks whose start succeeded
	running bool
	logger  *slog.Logger
}

// NewLifecycle creates a new lifecycle manager.
func NewLifecycle(logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{logger: logger}
}

// Append registers a named start/stop pair.
func (l *Lifecycle) Append(name string, start, stop func(context.Context) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, hook{name: name, start: start, stop: stop})
}

// Register registers a component under name.
func (l *Lifecycle) Register(name string, c Component) {
	l.Append(name, c.Start, c.Stop)
}

// Start runs all start hooks.
func (l *Lifecycle) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return errors.New("lifecycle already started")
	}

	for i, h := range l.hooks {
		if h.start != nil {
			if err := h.start(ctx); err != nil {
				l.started = i
				l.stopStarted(ctx)
				return fmt.Errorf("starting %s: %w", h.name, err)
			}
		}
		l.logger.Debug("component started", "component", h.name)
	}

	l.started = len(l.hooks)
	l.running = true
	return nil
}

// stopStarted rolls back the hooks that started before a failure.
func (l *Lifecycle) stopStarted(ctx context.Context) {
	for i := l.started - 1; i >= 0; i-- {
		h := l.hooks[i]
		if h.stop == nil {
			continue
		}
		if err := h.stop(ctx); err != nil {
			l.logger.Warn("lifecycle rollback: stop failed", "component", h.name, "error", err)
		}
	}
	l.started = 0
}

// Stop runs all stop hooks in reverse order and reports every failure.
func (l *Lifecycle) Stop(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return nil
	}

	var errs []error
	for i := l.started - 1; i >= 0; i-- {
		h := l.hooks[i]
		if h.stop == nil {
			continue
		}
		if err := h.stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stopping %s: %w", h.name, err))
		}
	}

	l.started = 0
	l.running = false
	return errors.Join(errs...)
}

// IsStarted returns whether the lifecycle has been started.
func (l *Lifecycle) IsStarted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}
