package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeusync/scenekit/internal/config"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML scene config (defaults are used when empty)")
	autostart := flag.Bool("start", true, "start the render loop after setup")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			os.Exit(1)
		}
	}

	rt, err := injector.InitializeRuntime(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error building runtime:", err)
		os.Exit(1)
	}
	logger := rt.Logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rt.App.StartGame(ctx); err != nil {
		logger.Fatal("failed to start scene", log.Error(err))
	}

	console := cfg.Console.Addr != ""
	if console {
		if err := rt.Server.Start(ctx); err != nil {
			logger.Fatal("failed to start console", log.Error(err))
		}
	}
	if *autostart {
		if err := rt.App.StartLoop(); err != nil {
			logger.Fatal("failed to start loop", log.Error(err))
		}
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	sig := <-stopCh
	logger.Info("shutting down", log.String("signal", sig.String()))
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if console {
		if err := rt.Server.Stop(shutdownCtx); err != nil {
			logger.Warn("console stop", log.Error(err))
		}
	}
	if err := rt.App.Close(); err != nil {
		logger.Warn("scene close", log.Error(err))
	}
}
