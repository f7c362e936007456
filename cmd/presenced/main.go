package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/codeserver/presence-monitor/bridge"
	"github.com/codeserver/presence-monitor/config"
	"github.com/codeserver/presence-monitor/envsim"
	"github.com/codeserver/presence-monitor/harness"
	"github.com/codeserver/presence-monitor/host"
	"github.com/codeserver/presence-monitor/monitor"
)

var (
	configPath = flag.String("config", "", "Path to config file (optional)")
	version    = "1.0.0"
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	logger, err := buildLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Presence monitor harness starting",
		zap.String("version", version),
		zap.String("page_url", cfg.Page.URL),
		zap.Bool("embedded", cfg.Page.Embedded))

	env := envsim.New(envsim.Options{
		Embedded: cfg.Page.Embedded,
		Hidden:   cfg.Page.Hidden,
		Focused:  cfg.Page.Focused,
		PageURL:  cfg.Page.URL,
	})

	channel := bridge.NewChannel(0)

	mon := monitor.New(env, channel, monitor.Options{
		Timeout: time.Duration(cfg.Monitor.TimeoutSeconds) * time.Second,
		Logger:  logger,
		Debug:   config.DebugFromPageURL(env.PageURL()),
	})
	mon.AutoStart()

	tracker := host.NewTracker(host.Policy{
		OnInactive: func(msg monitor.Message) {
			logger.Warn("User inactive past threshold, host should intervene",
				zap.Int64("timestamp", msg.Timestamp))
		},
	}, logger)
	tracker.Start(channel.Messages())

	srv := harness.New(env, mon, tracker, logger, cfg.Harness.Mode)
	go func() {
		logger.Info("Harness listening", zap.String("addr", cfg.Harness.ListenAddr))
		if err := srv.Run(cfg.Harness.ListenAddr); err != nil {
			logger.Fatal("Harness server failed", zap.Error(err))
		}
	}()

	// The page is "ready" as soon as the process is up, with a second
	// idempotent attempt on the load signal.
	env.Fire(monitor.SignalContentReady)
	env.Fire(monitor.SignalLoad)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")

	env.Fire(monitor.SignalUnload)
	mon.Teardown()
	tracker.Stop()
	channel.Close()

	logger.Info("Stopped.")
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = lvl
	return cfg.Build()
}
