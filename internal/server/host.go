// Package server provides the headless host runtime: it satisfies the
// shell's Host contract without a native window toolkit and exposes the
// registered asset protocol over loopback HTTP.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"sync"

	"github.com/txn2/appshell/pkg/assetproto"
	"github.com/txn2/appshell/pkg/health"
	"github.com/txn2/appshell/pkg/shell"
)

// Version is set at build time.
var Version = "dev"

// ErrProtocolRegistered is returned when a second protocol is registered;
// the headless host serves a single origin.
var ErrProtocolRegistered = errors.New("a protocol is already registered")

// Options configures a Host.
type Options struct {
	// Origin is the custom-scheme host prefix (e.g. "app://local") that plain
	// loopback requests are attributed to.
	Origin string

	// Platform overrides runtime.GOOS.
	Platform string

	Logger *slog.Logger
	Health *health.Checker
}

// Host is a headless implementation of shell.Host.
type Host struct {
	origin   string
	platform string
	logger   *slog.Logger
	health   *health.Checker
	mux      *http.ServeMux

	mu        sync.Mutex
	scheme    string
	assets    http.Handler
	fallback  http.Handler
	windows   map[*window]struct{}
	allClosed func()

	quitOnce sync.Once
	quit     chan struct{}
}

var _ shell.Host = (*Host)(nil)

// NewHost creates a headless host.
func NewHost(opts Options) *Host {
	h := &Host{
		origin:   opts.Origin,
		platform: opts.Platform,
		logger:   opts.Logger,
		health:   opts.Health,
		mux:      http.NewServeMux(),
		windows:  make(map[*window]struct{}),
		quit:     make(chan struct{}),
	}
	if h.platform == "" {
		h.platform = runtime.GOOS
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.health != nil {
		h.health.Register(h.mux)
	}
	h.mux.HandleFunc("/", h.serveRoot)
	return h
}

// RegisterProtocol implements shell.Host.
func (h *Host) RegisterProtocol(scheme string, ph assetproto.ProtocolHandler) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.assets != nil {
		return fmt.Errorf("%w: %s", ErrProtocolRegistered, h.scheme)
	}
	h.scheme = scheme
	h.assets = assetproto.NewHTTPHandler(h.origin, ph, h.logger.With("protocol", scheme))
	h.logger.Debug("protocol handler mounted", "protocol", scheme, "origin", h.origin)
	return nil
}

// NewWindow implements shell.Host.
func (h *Host) NewWindow(opts shell.WindowOptions) (shell.Window, error) {
	w := &window{host: h, opts: opts}
	h.mu.Lock()
	h.windows[w] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("window created", "width", opts.Width, "height", opts.Height)
	return w, nil
}

// Quit implements shell.Host. It is safe to call more than once.
func (h *Host) Quit() {
	h.quitOnce.Do(func() {
		h.logger.Info("quit requested")
		close(h.quit)
	})
}

// Platform implements shell.Host.
func (h *Host) Platform() string {
	return h.platform
}

// Done is closed once Quit has been called.
func (h *Host) Done() <-chan struct{} {
	return h.quit
}

// OnAllWindowsClosed sets the callback run when the last window closes.
func (h *Host) OnAllWindowsClosed(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.allClosed = fn
}

// SetFallback sets the handler used while no protocol is registered, such
// as a redirect to the development server.
func (h *Host) SetFallback(fallback http.Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fallback = fallback
}

// Handler returns the HTTP handler serving probes and assets.
func (h *Host) Handler() http.Handler {
	return h.mux
}

func (h *Host) serveRoot(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	next := h.assets
	if next == nil {
		next = h.fallback
	}
	h.mu.Unlock()

	if next == nil {
		http.NotFound(w, r)
		return
	}
	next.ServeHTTP(w, r)
}

// windowClosed forgets w and reports the last close to the shell.
func (h *Host) windowClosed(w *window) {
	h.mu.Lock()
	delete(h.windows, w)
	remaining := len(h.windows)
	allClosed := h.allClosed
	h.mu.Unlock()

	if remaining == 0 && allClosed != nil {
		allClosed()
	}
}
