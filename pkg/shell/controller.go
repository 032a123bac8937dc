package shell

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/txn2/appshell/pkg/assetproto"
	"github.com/txn2/appshell/pkg/config"
)

// entryPoint is the page the main window opens.
const entryPoint = "index.html"

// darwin keeps applications alive with no windows open.
const darwin = "darwin"

// Controller drives the application lifecycle against a Host.
// It is the only owner of the main window handle.
type Controller struct {
	cfg      *config.Config
	host     Host
	logger   *slog.Logger
	resolver *assetproto.Resolver
	main     windowSlot
}

var _ Component = (*Controller)(nil)

// NewController creates a controller. In production it also builds the asset
// resolver, so a bad bundle configuration fails here rather than per request.
func NewController(cfg *config.Config, host Host, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{cfg: cfg, host: host, logger: logger}

	if cfg.Mode.IsProduction() {
		r, err := assetproto.NewResolver(cfg.Host, cfg.BundleRoot)
		if err != nil {
			return nil, fmt.Errorf("creating asset resolver: %w", err)
		}
		c.resolver = r
	}
	return c, nil
}

// Resolver returns the asset resolver, or nil outside production.
func (c *Controller) Resolver() *assetproto.Resolver {
	return c.resolver
}

// MainWindow returns the current main window, or nil.
func (c *Controller) MainWindow() Window {
	return c.main.get()
}

// Ready runs once the host runtime has initialised: it registers the asset
// protocol and opens the main window.
func (c *Controller) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.registerProtocols(); err != nil {
		return err
	}
	return c.createMainWindow()
}

// Activate reopens the main window when the host is re-activated with no
// window open (e.g. clicking the dock icon).
func (c *Controller) Activate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.main.get() != nil {
		return nil
	}
	return c.createMainWindow()
}

// WindowAllClosed quits the application, except on macOS where apps stay
// active until the user quits explicitly.
func (c *Controller) WindowAllClosed() {
	if c.host.Platform() == darwin {
		c.logger.Debug("all windows closed; staying active", "platform", darwin)
		return
	}
	c.host.Quit()
}

// Start implements Component.
func (c *Controller) Start(ctx context.Context) error {
	return c.Ready(ctx)
}

// Stop implements Component by closing the main window, if open.
func (c *Controller) Stop(_ context.Context) error {
	w := c.main.get()
	if w == nil {
		return nil
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing main window: %w", err)
	}
	return nil
}

// registerProtocols wires the resolver into the host. Only the packaged build
// serves assets itself; development builds load from the dev server.
func (c *Controller) registerProtocols() error {
	if !c.cfg.Mode.IsProduction() {
		return nil
	}
	if err := c.host.RegisterProtocol(c.cfg.Protocol, c.resolver.Handle); err != nil {
		return fmt.Errorf("registering %s protocol: %w", c.cfg.Protocol, err)
	}
	c.logger.Info("asset protocol registered",
		"protocol", c.cfg.Protocol, "host", c.cfg.Host, "bundle_root", c.resolver.BundleRoot())
	return nil
}

func (c *Controller) createMainWindow() error {
	url, err := AssetURL(c.cfg, entryPoint)
	if err != nil {
		return err
	}

	w, err := c.host.NewWindow(mainWindowOptions)
	if err != nil {
		return fmt.Errorf("creating main window: %w", err)
	}
	c.main.set(w)

	w.OnClosed(func() {
		if c.main.clear(w) {
			c.logger.Debug("main window closed")
		}
	})
	w.OnReadyToShow(func() {
		if cur := c.main.get(); cur != nil {
			cur.Show()
		}
	})

	if err := w.Load(url); err != nil {
		c.main.clear(w)
		if closeErr := w.Close(); closeErr != nil {
			c.logger.Warn("closing failed main window", "error", closeErr)
		}
		return fmt.Errorf("loading %s: %w", url, err)
	}

	if c.cfg.Debug {
		w.OpenDevTools()
		w.Maximize()
	}

	c.logger.Info("main window created", "url", url, "mode", c.cfg.Mode.String())
	return nil
}
