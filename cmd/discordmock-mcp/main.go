// Command discordmock-mcp serves a seeded in-memory Discord guild over MCP so
// agents can be exercised against a fake Discord.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/discordmock/internal/auth"
	"github.com/jamesprial/discordmock/internal/config"
	"github.com/jamesprial/discordmock/internal/guild"
	"github.com/jamesprial/discordmock/internal/logging"
	"github.com/jamesprial/discordmock/internal/message"
	"github.com/jamesprial/discordmock/internal/sandbox"
	"github.com/jamesprial/discordmock/internal/simulate"
	"github.com/jamesprial/discordmock/internal/tools"
)

const version = "0.1.0"

// Options are the command-line flags.
type Options struct {
	Config   string `long:"config" short:"c" env:"DISCORDMOCK_CONFIG" default:"config.yaml" description:"Path to the sandbox YAML config"`
	EnvFile  string `long:"env-file" default:".env" description:"Dotenv file loaded before the config; a missing file is ignored"`
	Stdio    bool   `long:"stdio" description:"Serve MCP over stdin/stdout instead of HTTP"`
	Port     int    `long:"port" short:"p" description:"HTTP port (overrides config and DISCORDMOCK_PORT)"`
	LogLevel string `long:"log-level" description:"debug, info, warn or error (overrides config)"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "discordmock-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(opts Options) error {
	// The env file feeds both the config flag and the DISCORDMOCK_* overrides.
	if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", opts.EnvFile, err)
	}

	cfg, loaded, err := loadConfig(opts.Config)
	if err != nil {
		return err
	}
	config.ApplyEnvOverrides(cfg)
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	logger, closer, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	if loaded {
		logger.Info("loaded config", "path", opts.Config)
	} else {
		logger.Info("no config file, using defaults", "path", opts.Config)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sb, err := sandbox.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sb.Close()

	mcpServer := server.NewMCPServer(
		"discordmock-mcp",
		version,
		server.WithToolCapabilities(false),
	)
	rest := sb.Client.REST()
	n := tools.RegisterAll(mcpServer,
		message.MessageTools(rest, sb.Queue, sb.Resolver, logger),
		guild.GuildTools(rest, sb.Guild.ID, logger),
		simulate.SimulateTools(sb, logger),
	)
	logger.Info("tools registered", "count", n)

	if opts.Stdio {
		logger.Info("starting in stdio mode")
		errLog := slog.NewLogLogger(logger.Handler(), slog.LevelError)
		if err := server.ServeStdio(mcpServer, server.WithErrorLogger(errLog)); err != nil {
			return fmt.Errorf("stdio server: %w", err)
		}
		return nil
	}
	return serveHTTP(ctx, mcpServer, cfg.Server, logger)
}

// loadConfig reads path, falling back to DefaultConfig when the file does
// not exist. A file that exists but does not parse or validate is an error.
func loadConfig(path string) (*config.Config, bool, error) {
	cfg, err := config.LoadConfig(path)
	switch {
	case err == nil:
		return cfg, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return config.DefaultConfig(), false, nil
	default:
		return nil, false, fmt.Errorf("config %s: %w", path, err)
	}
}

func serveHTTP(ctx context.Context, mcpServer *server.MCPServer, cfg config.ServerConfig, logger *slog.Logger) error {
	httpHandler := server.NewStreamableHTTPServer(mcpServer)
	authMiddleware := auth.NewAuthMiddleware(cfg.AuthToken, logger)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           authMiddleware(httpHandler),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "auth", cfg.AuthToken != "")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
