package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/LeonardoBeccarini/farm-node/internal/model"
	"github.com/LeonardoBeccarini/farm-node/pkg/mqttbus"
)

const (
	sourceRandom = "random"
	sourceDrift  = "drift"
)

type Config struct {
	Broker     mqttbus.Config
	Identity   model.Identity
	Interval   time.Duration
	Thresholds model.Thresholds

	SourceMode  string
	SourceNPK   bool
	DecayPerMin float64
	Seed        int64

	HTTPPort  int
	LogLevel  string
	LogFormat string

	// Warnings lists values that failed to parse and fell back to defaults.
	Warnings []string
}

func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		return godotenv.Load(path)
	}
	return nil
}

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

// loadConfig reads the environment. Thresholds and the telemetry source
// mode are fatal when wrong; everything else falls back with a warning.
func loadConfig() (Config, error) {
	cfg := Config{
		Identity: model.Identity{
			Site: getenv("SITE", "site1"),
			Node: getenv("NODE", "nodeA"),
		},
		SourceMode: strings.ToLower(getenv("SOURCE_MODE", sourceRandom)),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogFormat:  getenv("LOG_FORMAT", "json"),
		Seed:       time.Now().UnixNano(),
	}

	cfg.Broker = mqttbus.Config{
		Host:      getenv("MQTT_HOST", "127.0.0.1"),
		Port:      cfg.envInt("MQTT_PORT", 1883),
		User:      getenv("MQTT_USER", ""),
		Password:  os.Getenv("MQTT_PASSWORD"),
		ClientID:  getenv("MQTT_CLIENT_ID", fmt.Sprintf("sim-%s-%s", cfg.Identity.Site, cfg.Identity.Node)),
		KeepAlive: 60 * time.Second,
	}
	if cfg.Broker.Port <= 0 || cfg.Broker.Port > 65535 {
		cfg.warn("MQTT_PORT %d out of range, using 1883", cfg.Broker.Port)
		cfg.Broker.Port = 1883
	}

	cfg.Interval = cfg.envInterval("PUBLISH_EVERY", 5*time.Second)
	cfg.SourceNPK = cfg.envBool("SOURCE_NPK", false)
	cfg.DecayPerMin = cfg.envFloat("DRIFT_DECAY_PER_MIN", 0.001)
	cfg.HTTPPort = cfg.envInt("HTTP_PORT", 9100)

	var errs []error
	minTh, err := strictFloat("MIN_TH", 30)
	errs = append(errs, err)
	maxTh, err := strictFloat("MAX_TH", 45)
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}
	cfg.Thresholds = model.Thresholds{Min: minTh, Max: maxTh}
	if err := cfg.Thresholds.Validate(); err != nil {
		return cfg, err
	}

	switch cfg.SourceMode {
	case sourceRandom, sourceDrift:
	default:
		return cfg, fmt.Errorf("SOURCE_MODE %q: want %q or %q", cfg.SourceMode, sourceRandom, sourceDrift)
	}
	return cfg, nil
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func (c *Config) envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.warn("%s=%q is not an integer, using %d", k, v, def)
		return def
	}
	return n
}

func (c *Config) envBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.warn("%s=%q is not a boolean, using %t", k, v, def)
		return def
	}
	return b
}

func (c *Config) envFloat(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		c.warn("%s=%q is not a number, using %v", k, v, def)
		return def
	}
	return f
}

// envInterval accepts plain seconds ("5", "2.5") or a Go duration ("1m").
func (c *Config) envInterval(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	var d time.Duration
	if secs, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64); err == nil {
		d = time.Duration(secs * float64(time.Second))
	} else if pd, err := time.ParseDuration(v); err == nil {
		d = pd
	} else {
		c.warn("%s=%q is not a duration, using %s", k, v, def)
		return def
	}
	if d <= 0 {
		c.warn("%s=%q must be positive, using %s", k, v, def)
		return def
	}
	return d
}

func strictFloat(k string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", k, v, model.ErrInvalidThresholds)
	}
	return f, nil
}
