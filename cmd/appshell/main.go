// Package main provides the entry point for the appshell desktop shell.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/txn2/appshell/internal/server"
	"github.com/txn2/appshell/pkg/assetproto"
	"github.com/txn2/appshell/pkg/config"
	"github.com/txn2/appshell/pkg/health"
	"github.com/txn2/appshell/pkg/shell"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type shellOptions struct {
	configPath  string
	envDir      string
	devServer   string
	address     string
	transport   string
	debug       bool
	showVersion bool
}

func parseFlags() shellOptions {
	opts := shellOptions{}
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.envDir, "env-dir", ".", "Directory containing .env files (empty to disable)")
	flag.StringVar(&opts.devServer, "devserver", "", "Development server URL (development mode)")
	flag.StringVar(&opts.address, "address", "", "Loopback address for the http transport")
	flag.StringVar(&opts.transport, "transport", "", "Transport type: http, stdio")
	flag.BoolVar(&opts.debug, "debug", false, "Open dev tools, maximize the main window and log at debug level")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	flag.Parse()
	return opts
}

func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// shellRuntime bundles the wired components.
type shellRuntime struct {
	cfg        *config.Config
	logger     *slog.Logger
	checker    *health.Checker
	host       *server.Host
	controller *shell.Controller
	lifecycle  *shell.Lifecycle
}

func run() error {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("appshell version %s\n", server.Version)
		return nil
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigPath: opts.configPath,
		EnvDir:     opts.envDir,
		DevServer:  opts.devServer,
		Address:    opts.address,
		Transport:  opts.transport,
		Debug:      opts.debug,
	})
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.Debug)
	slog.SetDefault(logger)

	rt, err := newShellRuntime(cfg, logger)
	if err != nil {
		return err
	}

	ctx := setupSignalHandler()
	return rt.serve(ctx)
}

func newShellRuntime(cfg *config.Config, logger *slog.Logger) (*shellRuntime, error) {
	checker := health.NewChecker(cfg.Mode.String())
	host := server.NewHost(server.Options{
		Origin: cfg.Host,
		Logger: logger,
		Health: checker,
	})

	controller, err := shell.NewController(cfg, host, logger)
	if err != nil {
		return nil, fmt.Errorf("creating controller: %w", err)
	}
	host.OnAllWindowsClosed(controller.WindowAllClosed)
	if !cfg.Mode.IsProduction() {
		host.SetFallback(server.DevRedirect(cfg))
	}

	lc := shell.NewLifecycle(logger)
	lc.Register("controller", controller)

	return &shellRuntime{
		cfg:        cfg,
		logger:     logger,
		checker:    checker,
		host:       host,
		controller: controller,
		lifecycle:  lc,
	}, nil
}

// serve runs the configured transport until ctx is canceled or the host quits.
func (rt *shellRuntime) serve(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := rt.lifecycle.Start(runCtx); err != nil {
		return fmt.Errorf("starting shell: %w", err)
	}
	defer func() {
		if stopErr := rt.lifecycle.Stop(context.Background()); stopErr != nil {
			rt.logger.Warn("shutdown incomplete", "error", stopErr)
		}
	}()

	serveFn, err := rt.transport()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return serveFn(gctx)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-rt.host.Done():
		}
		rt.checker.SetDraining()
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// transport prepares the configured transport and returns its run function.
func (rt *shellRuntime) transport() (func(context.Context) error, error) {
	switch rt.cfg.Server.Transport {
	case config.TransportHTTP:
		l, err := net.Listen("tcp", rt.cfg.Server.Address)
		if err != nil {
			return nil, fmt.Errorf("listening on %s: %w", rt.cfg.Server.Address, err)
		}
		return func(ctx context.Context) error {
			return server.ListenAndServe(ctx, l, rt.host.Handler(), rt.logger)
		}, nil
	case config.TransportStdio:
		mcpServer := mcp.NewServer(&mcp.Implementation{
			Name:    "appshell",
			Version: server.Version,
		}, nil)
		if err := assetproto.RegisterResources(mcpServer, rt.controller.Resolver()); err != nil {
			return nil, fmt.Errorf("registering asset resources: %w", err)
		}
		return func(ctx context.Context) error {
			return mcpServer.Run(ctx, &mcp.StdioTransport{})
		}, nil
	default:
		return nil, fmt.Errorf("unknown transport: %s", rt.cfg.Server.Transport)
	}
}
