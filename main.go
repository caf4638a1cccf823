package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/CristiGvl/picoHWMQTT/api"
	"github.com/CristiGvl/picoHWMQTT/internal/config"
	"github.com/CristiGvl/picoHWMQTT/internal/driver"
	"github.com/CristiGvl/picoHWMQTT/internal/logger"
	"github.com/CristiGvl/picoHWMQTT/internal/platform"
	"github.com/CristiGvl/picoHWMQTT/internal/publisher"
	"github.com/CristiGvl/picoHWMQTT/internal/sampler"
	"github.com/CristiGvl/picoHWMQTT/internal/status"
	"github.com/CristiGvl/picoHWMQTT/internal/telemetry"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the INI config file")
	flag.Parse()

	boot := logger.New(config.DefaultLogLevel, config.DefaultLogFormat)
	boot.Info("HWMON starting")

	if err := platform.ValidateSupport(); err != nil {
		fatal(boot, "platform validation failed", err)
	}

	// A missing .env is normal; the INI file is the primary source
	_ = godotenv.Load()

	boot.Info("parsing config", "path", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(boot, "configuration error", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("mqtt broker", "host", cfg.Credentials.Host, "port", cfg.MQTT.Port)
	if cfg.Credentials.HasAuth() {
		log.Info("mqtt user", "user", cfg.Credentials.User)
	} else {
		log.Info("mqtt user not set, connecting without authentication")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.New(reg)
	store := status.NewStore()

	pub := publisher.New(publisher.Config{
		BrokerURL:      cfg.BrokerURL(),
		ClientID:       cfg.MQTT.ClientID,
		User:           cfg.Credentials.User,
		Pass:           cfg.Credentials.Pass,
		Keepalive:      cfg.MQTT.Keepalive,
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
	}, log, publisher.WithPrecision(cfg.Monitor.Precision))

	mon := driver.New(driver.Config{
		Prefix:            cfg.MQTT.Prefix,
		UpdateInterval:    cfg.Monitor.UpdateInterval,
		SendInterval:      cfg.Monitor.SendInterval,
		ConnectRetryDelay: cfg.MQTT.ConnectRetryDelay,
	}, sampler.New(log, sampler.WithChip(cfg.Monitor.Chip)), pub,
		driver.WithLogger(log),
		driver.WithPrecision(cfg.Monitor.Precision),
		driver.WithTelemetry(metrics),
		driver.WithStatus(store),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	log.Info("monitor starting")
	g.Go(func() error {
		return mon.Run(gCtx)
	})

	if cfg.Status.Listen != "" {
		server := api.NewServer(store, reg)

		g.Go(func() error {
			return runStatusAPI(gCtx, server, cfg.Status.Listen, log)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("monitor stopped", "error", err)
		os.Exit(1)
	}

	log.Info("monitor stopped")
}

// runStatusAPI serves until ctx ends. A listener failure is logged and
// never stops the monitor.
func runStatusAPI(ctx context.Context, server *api.Server, addr string, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("status API listening", "addr", addr)
		errCh <- server.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("status API stopped, monitor keeps running", "addr", addr, "error", err)
		}
	case <-ctx.Done():
		if err := server.Shutdown(); err != nil {
			log.Warn("status API shutdown", "error", err)
		}
	}
	return nil
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
