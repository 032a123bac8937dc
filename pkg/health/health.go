// Package health reports, over HTTP, whether the shell process is up and
// whether it currently has a window on screen.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
)

// Probe paths.
const (
	LivenessPath  = "/healthz"
	ReadinessPath = "/readyz"
)

// Readiness states.
const (
	StateStarting = "starting" // no window has been shown yet
	StateReady    = "ready"    // at least one window is on screen
	StateIdle     = "idle"     // every window closed, process still running
	StateDraining = "draining" // shutdown has begun
)

// Checker derives readiness from window visibility. Host runtimes call
// WindowShown and WindowClosed as windows come and go. Safe for concurrent
// use.
type Checker struct {
	mode string

	mu       sync.Mutex
	visible  int
	shown    bool
	draining bool
}

// NewChecker creates a Checker for a shell running in mode. mode is echoed
// in probe responses.
func NewChecker(mode string) *Checker {
	return &Checker{mode: mode}
}

// WindowShown records a window becoming visible.
func (c *Checker) WindowShown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible++
	c.shown = true
}

// WindowClosed records a previously shown window closing.
func (c *Checker) WindowClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visible > 0 {
		c.visible--
	}
}

// SetDraining marks the shell as shutting down. It is final.
func (c *Checker) SetDraining() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draining = true
}

// IsReady reports whether a window is on screen and shutdown has not begun.
func (c *Checker) IsReady() bool {
	return c.State() == StateReady
}

// State returns the current readiness state.
func (c *Checker) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Checker) stateLocked() string {
	switch {
	case c.draining:
		return StateDraining
	case c.visible > 0:
		return StateReady
	case c.shown:
		return StateIdle
	default:
		return StateStarting
	}
}

type probeResponse struct {
	Status  string `json:"status"`
	Mode    string `json:"mode,omitempty"`
	Windows int    `json:"windows"`
}

func (c *Checker) snapshot() probeResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return probeResponse{Status: c.stateLocked(), Mode: c.mode, Windows: c.visible}
}

// LivenessHandler always responds 200 while the process can serve HTTP.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := c.snapshot()
		resp.Status = "ok"
		writeJSON(w, http.StatusOK, resp)
	}
}

// ReadinessHandler responds 200 while a window is on screen and 503 otherwise.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := c.snapshot()
		code := http.StatusServiceUnavailable
		if resp.Status == StateReady {
			code = http.StatusOK
		}
		writeJSON(w, code, resp)
	}
}

// Register mounts both probes on mux.
func (c *Checker) Register(mux *http.ServeMux) {
	mux.HandleFunc(LivenessPath, c.LivenessHandler())
	mux.HandleFunc(ReadinessPath, c.ReadinessHandler())
}

func writeJSON(w http.ResponseWriter, code int, v probeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
