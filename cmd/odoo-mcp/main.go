// odoo-mcp is a Model Context Protocol server for the Odoo external
// API. It bridges MCP tool calls from an AI agent host onto Odoo's
// XML-RPC endpoints: record search, read, create, update, delete,
// arbitrary method execution, and schema introspection.
//
// Usage:
//
//	odoo-mcp serve       Serve MCP over stdio (the default)
//	odoo-mcp version     Print version and build information
//
// Configuration is loaded from a YAML file discovered automatically
// (see [config.DefaultSearchPaths]) and overlaid with ODOO_*
// environment variables. When the configuration carries a full set of
// credentials the session is established at startup; otherwise the
// host authenticates through the odoo_authenticate tool.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nugget/odoo-mcp/internal/buildinfo"
	"github.com/nugget/odoo-mcp/internal/config"
	"github.com/nugget/odoo-mcp/internal/mcp"
	"github.com/nugget/odoo-mcp/internal/odoo"
	"github.com/nugget/odoo-mcp/internal/tools"
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run] so the full
// startup-to-shutdown lifecycle can be driven from tests.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point. Arguments are parsed by hand — the flag
// package relies on package-level globals, and our surface is small
// enough that manual parsing is clearer than a CLI framework.
//
// Structured logs go to stderr: when serving MCP, stdout is the
// protocol channel and must stay clean.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	var configPath string
	command := "serve"

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-config", "--config":
			if i+1 >= len(args) {
				return fmt.Errorf("%s requires a path argument", args[i])
			}
			i++
			configPath = args[i]
		case "serve", "version":
			command = args[i]
		default:
			return fmt.Errorf("unknown argument %q", args[i])
		}
	}

	if command == "version" {
		fmt.Fprintln(stdout, buildinfo.String())
		for k, v := range buildinfo.Info() {
			fmt.Fprintf(stdout, "  %s: %s\n", k, v)
		}
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
	slog.SetDefault(logger)

	return serve(ctx, logger, cfg)
}

// loadConfig finds and loads the YAML config, then overlays ODOO_*
// environment variables. A missing config file is fine unless one was
// named explicitly — the environment or the authenticate tool can
// supply everything.
func loadConfig(explicit string) (*config.Config, error) {
	cfg := config.Default()

	path, err := config.FindConfig(explicit)
	if err != nil {
		if explicit != "" {
			return nil, err
		}
	} else {
		if cfg, err = config.Load(path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// clientConfig maps the file/env configuration onto a session client
// configuration.
func clientConfig(o config.OdooConfig) odoo.Config {
	return odoo.Config{
		URL:             o.URL,
		Database:        o.Database,
		Username:        o.Username,
		Password:        o.Password,
		APIKey:          o.APIKey,
		Timeout:         time.Duration(o.TimeoutSec) * time.Second,
		MaxRetries:      o.MaxRetries,
		RetryDelay:      time.Duration(o.RetryDelaySec * float64(time.Second)),
		InsecureSkipTLS: o.InsecureSkipTLS,
	}
}

func serve(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	// The authenticate tool supplies url/database/credentials; the
	// retry and transport settings always come from configuration.
	connect := func(ctx context.Context, c odoo.Config) (tools.Session, *odoo.ConnectInfo, error) {
		base := clientConfig(cfg.Odoo)
		c.Timeout = base.Timeout
		c.MaxRetries = base.MaxRetries
		c.RetryDelay = base.RetryDelay
		c.InsecureSkipTLS = base.InsecureSkipTLS

		client := odoo.NewClient(c, logger)
		info, err := client.Connect(ctx)
		if err != nil {
			return nil, nil, err
		}
		return client, info, nil
	}

	registry := tools.NewRegistry(connect, logger)

	if cfg.Odoo.HasCredentials() {
		client := odoo.NewClient(clientConfig(cfg.Odoo), logger)
		info, err := client.Connect(ctx)
		if err != nil {
			// Not fatal: the host can still authenticate via the tool.
			logger.Error("startup connect failed", "url", cfg.Odoo.URL, "error", err)
		} else {
			registry.SetSession(client)
			logger.Info("connected from configuration",
				"database", info.Database,
				"uid", info.UID,
			)
		}
	}

	logger.Info("serving MCP over stdio", "server", mcp.ServerName, "version", buildinfo.Version)
	return mcp.ServeStdio(ctx, mcp.NewServer(registry))
}
