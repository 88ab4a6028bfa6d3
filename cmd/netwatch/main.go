package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/pedalvalet/netwatch/internal/alert"
	"github.com/pedalvalet/netwatch/internal/config"
	"github.com/pedalvalet/netwatch/internal/control"
	"github.com/pedalvalet/netwatch/internal/heartbeat"
	"github.com/pedalvalet/netwatch/internal/logging"
	"github.com/pedalvalet/netwatch/internal/monitor"
	"github.com/pedalvalet/netwatch/internal/probe"
	"github.com/pedalvalet/netwatch/internal/statusapi"
)

func main() {
	var (
		controlFile = pflag.String("control-file", "", "path to the parent's control file")
		configFile  = pflag.String("config", "", "optional YAML config file")
		hbDir       = pflag.String("heartbeat-dir", "", "override heartbeat log folder")
	)
	pflag.Parse()

	if err := run(*controlFile, *configFile, *hbDir); err != nil {
		fmt.Fprintln(os.Stderr, "netwatch:", err)
		os.Exit(1)
	}
}

func run(controlFile, configFile, hbDir string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if hbDir != "" {
		cfg.HeartbeatDir = hbDir
	}
	if !cfg.Enabled() {
		return nil
	}
	if controlFile == "" {
		// Standalone invocation: shadow our own parent.
		controlFile = control.PathFor(cfg.ControlDir, os.Getppid())
	}

	log, err := logging.NewLogger(cfg.LogDir, cfg.Debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	channel := control.NewChannel(controlFile, log)
	hb, err := heartbeat.Open(cfg.HeartbeatDir)
	if err != nil {
		return err
	}
	defer hb.Close()

	registry := probe.DefaultRegistry(cfg.ProbeTimeout)
	loop := monitor.New(monitor.Options{
		CheckEvery:   cfg.CheckEvery,
		ConfirmDelay: cfg.ConfirmDelay,
	}, registry, channel, alert.NewConsole(), hb, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, control.ReloadSignal)
	go func() {
		for range reload {
			loop.RequestReload()
		}
	}()

	if watcher, err := control.NewWatcher(controlFile, log); err != nil {
		log.Debug("control_watch_unavailable", zap.Error(err))
	} else {
		defer watcher.Close()
		go func() {
			for range watcher.Changed {
				loop.RequestReload()
			}
		}()
	}

	if cfg.Debug && cfg.StatusAddr != "" {
		srv := statusapi.NewServer(log, loop).Serve(cfg.StatusAddr)
		defer srv.Close()
	}

	return loop.Run(ctx)
}
