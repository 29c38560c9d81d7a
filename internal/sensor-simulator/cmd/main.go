package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/farm-node/internal/model"
	sensorSimulator "github.com/LeonardoBeccarini/farm-node/internal/sensor-simulator"
	"github.com/LeonardoBeccarini/farm-node/pkg/logger"
	"github.com/LeonardoBeccarini/farm-node/pkg/mqttbus"
)

func main() {
	envFile := flag.String("env-file", "", "optional .env file (default ./.env if present)")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "load env file: %v\n", err)
		os.Exit(1)
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "farm-node: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, cfgErr := loadConfig()

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "farm-node")
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfgErr != nil {
		log.Error("invalid configuration", zap.Error(cfgErr))
		return cfgErr
	}
	for _, w := range cfg.Warnings {
		log.Warn("config fallback", zap.String("detail", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The will must be known before connecting; the reconnect hook needs the
	// node, which needs the client.
	cfg.Broker.Will = sensorSimulator.LastWill(cfg.Identity)
	var node atomic.Pointer[sensorSimulator.NodeSimulator]
	client, err := mqttbus.Connect(ctx, &cfg.Broker, log, func(mqtt.Client) {
		if n := node.Load(); n != nil {
			n.Reconnected()
		}
	})
	if err != nil {
		return err
	}
	defer mqttbus.Close(client, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := sensorSimulator.NewMetrics(reg, cfg.Identity)

	var source sensorSimulator.Source
	switch cfg.SourceMode {
	case "drift":
		source = sensorSimulator.NewDriftSource(cfg.Seed, cfg.SourceNPK, cfg.DecayPerMin)
	default:
		source = sensorSimulator.NewRandomSource(cfg.Seed, cfg.SourceNPK)
	}

	topics := model.TopicsFor(cfg.Identity)
	publisher := mqttbus.NewPublisher(client, mqttbus.PublisherOptions{}, log)
	consumer := mqttbus.NewConsumer(client, topics.Command, 1, nil, log)

	n, err := sensorSimulator.NewNodeSimulator(cfg.Identity, cfg.Thresholds, source, publisher, consumer, metrics, log)
	if err != nil {
		return err
	}
	node.Store(n)

	if cfg.HTTPPort > 0 {
		srv := startHTTP(cfg.HTTPPort, reg, client, n, log)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	log.Info("farm node running",
		zap.String("site", cfg.Identity.Site),
		zap.String("node", cfg.Identity.Node),
		zap.Duration("interval", cfg.Interval),
		zap.Float64("min_th", cfg.Thresholds.Min),
		zap.Float64("max_th", cfg.Thresholds.Max),
		zap.String("source", cfg.SourceMode))

	n.Start(ctx, cfg.Interval)
	log.Info("farm node stopped")
	return nil
}

func startHTTP(port int, reg *prometheus.Registry, client mqtt.Client, n *sensorSimulator.NodeSimulator, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle("/healthz", sensorSimulator.NewHealthHandler(client, n))

	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("HTTP listening", zap.Int("port", port))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", zap.Error(err))
		}
	}()
	return hs
}
