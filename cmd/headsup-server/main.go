package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/headsup/internal/deck"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"headsup-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Seed     int64  `short:"s" long:"seed" help:"Deck shuffle seed (0 uses the current time)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	seed := CLI.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger.Info("Starting heads-up server",
		"addr", cfg.ListenAddr(),
		"defaultCash", cfg.Server.DefaultCash,
		"tick", cfg.TickInterval())

	state := game.NewState(deck.New(randutil.New(seed)), cfg.Server.DefaultCash)
	wsServer := server.NewServer(cfg.ListenAddr(), logger)
	service := server.NewGameService(state, wsServer, cfg.TickInterval(), quartz.NewReal(), logger)
	wsServer.SetGameService(service)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return wsServer.Start()
	})
	g.Go(func() error {
		return service.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return wsServer.Stop()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Server exited", "error", err)
		kctx.Exit(1)
	}
	logger.Info("Server shutdown complete")
}
