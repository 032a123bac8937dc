//go:build integration

package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/txn2/appshell/pkg/health"
)

// WaitConfig configures readiness checks.
type WaitConfig struct {
	Timeout  time.Duration
	Interval time.Duration
}

// DefaultWaitConfig returns default wait configuration.
func DefaultWaitConfig() WaitConfig {
	return WaitConfig{
		Timeout:  5 * time.Second,
		Interval: 20 * time.Millisecond,
	}
}

// WaitForReady polls the readiness probe until it reports "ready".
func WaitForReady(ctx context.Context, baseURL string, cfg WaitConfig) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	url := baseURL + health.ReadinessPath
	client := &http.Client{Timeout: time.Second}
	var last string
	for {
		state, err := probeState(ctx, client, url)
		if err == nil && state == "ready" {
			return nil
		}
		last = state

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s not ready within %v (last state %q): %w", url, cfg.Timeout, last, ctx.Err())
		case <-ticker.C:
		}
	}
}

func probeState(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Status, nil
}
