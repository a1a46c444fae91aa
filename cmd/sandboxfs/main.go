package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/codefionn/sandboxfs/internal/config"
	"github.com/codefionn/sandboxfs/internal/logger"
	"github.com/codefionn/sandboxfs/internal/sandbox"
	"github.com/codefionn/sandboxfs/internal/server"
)

var version = "dev"

type stringSlice []string

func (s *stringSlice) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(value string) error {
	if value == "" {
		return fmt.Errorf("value cannot be empty")
	}
	*s = append(*s, value)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	var roots stringSlice
	flags := flag.NewFlagSet("sandboxfs", flag.ContinueOnError)
	flags.Var(&roots, "root", "sandbox root directory (repeatable)")
	configPath := flags.String("config", config.DefaultConfigPath(), "path to config file")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn, error, none")
	logPath := flags.String("log-path", "", "log file path (default stderr)")
	showVersion := flags.Bool("version", false, "print version and exit")

	if parseErr := flags.Parse(os.Args[1:]); parseErr != nil {
		if errors.Is(parseErr, flag.ErrHelp) {
			return nil
		}
		return parseErr
	}
	if *showVersion {
		fmt.Println("sandboxfs", version)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags beat config, environment beats both for logging.
	if len(roots) > 0 {
		cfg.Roots = roots
	}
	// Positional arguments are accepted as roots as well, matching the
	// common "server <root>..." invocation.
	cfg.Roots = append(cfg.Roots, flags.Args()...)
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logPath != "" {
		cfg.LogPath = *logPath
	}
	if envLevel := strings.TrimSpace(os.Getenv("SANDBOXFS_LOG_LEVEL")); envLevel != "" {
		cfg.LogLevel = envLevel
	}
	if envPath := strings.TrimSpace(os.Getenv("SANDBOXFS_LOG_PATH")); envPath != "" {
		cfg.LogPath = envPath
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err != nil {
			logger.Error("Fatal error: %v", err)
		}
		if closeErr := logger.Global().Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close logger: %v\n", closeErr)
		}
	}()

	sb, err := sandbox.New(cfg.Roots)
	if err != nil {
		return err
	}
	logger.Info("sandbox established with roots: %s", strings.Join(sb.Roots(), ", "))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Version = version
	logger.Info("serving on stdio")
	return server.Serve(ctx, sb, cfg.MaxReadBytes)
}
