package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/1broseidon/waytile/internal/backend/x11"
	"github.com/1broseidon/waytile/internal/bindings"
	"github.com/1broseidon/waytile/internal/config"
	"github.com/1broseidon/waytile/internal/daemon"
	"github.com/1broseidon/waytile/internal/eventloop"
	"github.com/1broseidon/waytile/internal/input"
	"github.com/1broseidon/waytile/internal/ipc"
	"github.com/1broseidon/waytile/internal/runtimepath"
	"github.com/1broseidon/waytile/internal/shell"
	"github.com/1broseidon/waytile/internal/tiling"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/waytile/config.yaml)")
	headless := fs.Bool("headless", false, "Run without the nested X11 backend")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: waytile run [--config PATH] [--headless]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the compositor daemon in the foreground. With $DISPLAY set")
		fmt.Fprintln(os.Stderr, "each configured output opens as a nested X window; --headless runs")
		fmt.Fprintln(os.Stderr, "the engine with the IPC surface only.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	// Resolve the config path up front so the watcher and SIGHUP reload
	// read the same file the daemon started from.
	path := *configPath
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			log.Printf("Failed to resolve config path: %v", err)
			return 1
		}
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("configuration loaded", "path", path,
		"outputs", len(cfg.Outputs), "workspaces", len(cfg.Workspaces))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shutdown requests (signal, IPC, quit binding) funnel through one
	// channel so state is persisted while the loop is still running.
	var shutdownOnce sync.Once
	shutdownCh := make(chan struct{})
	requestShutdown := func() { shutdownOnce.Do(func() { close(shutdownCh) }) }

	// Compositor loop. Everything that touches shell state runs here.
	loop := eventloop.New()
	go func() {
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("event loop exited", "error", err)
		}
	}()

	seat := input.NewSeat("seat0")
	sh := shell.New(seat, tiling.Gaps{Outer: cfg.Gaps.Outer, Inner: cfg.Gaps.Inner}, cfg.Workspaces)
	sh.SetBlockerTimeout(cfg.BlockerTimeout())

	statePath, err := runtimepath.StatePath()
	if err != nil {
		logger.Error("failed to resolve state path", "error", err)
		return 1
	}
	stateSync, err := daemon.NewStateSynchronizer(loop, sh, statePath, logger)
	if err != nil {
		logger.Error("failed to create state synchronizer", "error", err)
		return 1
	}

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   logger,
	}, loop, sh, stateSync, cfg.Outputs)

	// Map the configured outputs before anything can talk to the daemon,
	// then restore the per-output active workspaces of the previous run.
	reconciler.ReconcileNow()
	if err := stateSync.Restore(); err != nil {
		logger.Warn("failed to restore workspace state", "error", err)
	}
	go reconciler.Run(ctx)

	sweeper := daemon.NewSweeper(daemon.SweeperConfig{Logger: logger}, loop, sh)
	go sweeper.Run(ctx)

	ipcServer, err := ipc.NewServer(loop, sh, logger, cfg.Socket, requestShutdown)
	if err != nil {
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer ipcServer.Stop()
	logger.Info("ipc server listening", "socket", ipcServer.SocketPath())

	table := registerActions(loop, sh, logger, requestShutdown, len(cfg.Workspaces))
	if err := table.BindAll(cfg.Bindings); err != nil {
		logger.Warn("invalid binding in config", "error", err)
	}

	// Nested backend: one host X window per output. Skipped headless or
	// when there is no display to nest in.
	var backend *x11.Backend
	if !*headless && os.Getenv("DISPLAY") != "" {
		backend, err = x11.New(loop, sh, table, logger)
		if err != nil {
			logger.Warn("x11 backend unavailable, continuing headless", "error", err)
		} else if err := backend.CreateOutputs(cfg.Outputs); err != nil {
			logger.Error("failed to create output windows", "error", err)
			backend.Stop()
			return 1
		} else {
			go backend.Run()
			defer backend.Stop()
		}
	}

	// Reloads come from two places: the file watcher and SIGHUP. Both call
	// applyConfig off the compositor loop.
	applyConfig := func(newCfg *config.Config, loadErr error) {
		if loadErr != nil {
			logger.Warn("config reload failed", "error", loadErr)
			return
		}
		loop.Post(func() {
			sh.SetGaps(tiling.Gaps{Outer: newCfg.Gaps.Outer, Inner: newCfg.Gaps.Inner})
			sh.SetBlockerTimeout(newCfg.BlockerTimeout())
		})
		reconciler.SetDesired(newCfg.Outputs)
		logger.Info("configuration reloaded", "path", path)
	}

	watcher, err := config.NewWatcher(path, applyConfig)
	if err != nil {
		logger.Warn("config watcher unavailable", "error", err)
	} else {
		go watcher.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	logger.Info("daemon started")
	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, reloading config")
				applyConfig(config.LoadFromPath(path))
				continue
			}
			logger.Info("shutting down", "signal", sig)
			requestShutdown()
		case <-shutdownCh:
			// Persist while the loop is still dispatching, then stop it.
			stateSync.SyncNow()
			cancel()
			logger.Info("daemon stopped")
			return 0
		}
	}
}

// registerActions builds the binding table the backend dispatches into.
// Every action posts onto the compositor loop; dispatch happens on backend
// goroutines.
func registerActions(loop *eventloop.Loop, sh *shell.Shell, logger *slog.Logger, quit func(), workspaceCount int) *bindings.Table {
	table := bindings.NewTable()

	for i := 0; i < workspaceCount; i++ {
		idx := i
		table.RegisterAction(fmt.Sprintf("switch-workspace-%d", i+1), func() {
			loop.Post(func() {
				for _, out := range sh.Outputs().List() {
					if err := sh.SwitchWorkspace(out, idx); err != nil {
						logger.Warn("workspace switch failed", "output", out.Name(), "index", idx, "error", err)
					}
				}
			})
		})
	}

	table.RegisterAction("lock", func() {
		loop.Post(func() {
			if err := sh.Lock().Lock(); err != nil {
				logger.Warn("lock failed", "error", err)
			} else {
				logger.Info("session locked via binding")
			}
		})
	})
	table.RegisterAction("unlock", func() {
		loop.Post(func() {
			sh.Lock().Unlock()
			logger.Info("session unlocked via binding")
		})
	})
	table.RegisterAction("quit", func() {
		logger.Info("quit binding dispatched")
		quit()
	})

	return table
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
