package server

import (
	"sync"

	"github.com/txn2/appshell/pkg/shell"
)

// window is a headless shell.Window. Loading fires ready-to-show at once,
// since there is nothing to paint.
type window struct {
	host *Host
	opts shell.WindowOptions

	mu            sync.Mutex
	url           string
	shown         bool
	closed        bool
	onClosed      []func()
	onReadyToShow []func()
}

var _ shell.Window = (*window)(nil)

func (w *window) Load(url string) error {
	w.mu.Lock()
	w.url = url
	ready := append([]func(){}, w.onReadyToShow...)
	w.mu.Unlock()

	w.host.logger.Info("window loaded", "url", url)
	for _, fn := range ready {
		fn()
	}
	return nil
}

// Show reports the window to the readiness checker the first time it is called.
func (w *window) Show() {
	w.mu.Lock()
	first := !w.shown && !w.closed
	w.shown = true
	w.mu.Unlock()

	if first && w.host.health != nil {
		w.host.health.WindowShown()
	}
}

func (w *window) OpenDevTools() {
	w.host.logger.Debug("dev tools requested; not available headless")
}

func (w *window) Maximize() {
	w.host.logger.Debug("maximize requested; not available headless")
}

// Close fires the closed callbacks once.
func (w *window) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	wasShown := w.shown
	closed := append([]func(){}, w.onClosed...)
	w.mu.Unlock()

	if wasShown && w.host.health != nil {
		w.host.health.WindowClosed()
	}

	for _, fn := range closed {
		fn()
	}
	w.host.windowClosed(w)
	return nil
}

func (w *window) OnClosed(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClosed = append(w.onClosed, fn)
}

func (w *window) OnReadyToShow(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReadyToShow = append(w.onReadyToShow, fn)
}

// URL returns the last loaded URL.
func (w *window) URL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.url
}

// Shown reports whether Show has been called.
func (w *window) Shown() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shown
}
