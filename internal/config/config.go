// Package config loads the agent configuration from an INI file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// DefaultPath is the config file looked up in the working directory
const DefaultPath = "config.ini"

const (
	DefaultPort              = 1883
	DefaultKeepalive         = 60 * time.Second
	DefaultPrefix            = "hwinfo/"
	DefaultConnectTimeout    = 10 * time.Second
	DefaultUpdateInterval    = 1 * time.Second
	DefaultSendInterval      = 30 * time.Second
	DefaultPrecision         = 1
	DefaultChip              = "k10temp"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultConnectRetryDelay = 5 * time.Second
)

var (
	// ErrMissingKey is returned when a required key is absent
	ErrMissingKey = errors.New("missing required key")
	// ErrInvalidValue is returned when a key cannot be parsed
	ErrInvalidValue = errors.New("invalid value")
)

type Config struct {
	Credentials Credentials
	MQTT        MQTTConfig
	Monitor     MonitorConfig
	Status      StatusConfig
	Log         LogConfig
}

type Credentials struct {
	User string
	Pass string
	Host string
}

// HasAuth reports whether broker authentication should be attempted
func (c Credentials) HasAuth() bool {
	return c.User != ""
}

type MQTTConfig struct {
	Port              int
	Keepalive         time.Duration
	Prefix            string
	ClientID          string
	ConnectTimeout    time.Duration
	ConnectRetryDelay time.Duration
}

type MonitorConfig struct {
	UpdateInterval time.Duration
	SendInterval   time.Duration
	Precision      int
	Chip           string
}

type StatusConfig struct {
	Listen string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads path, applies HWMON_* environment overrides and validates.
// Callers wanting .env support load it into the environment first.
func Load(path string) (*Config, error) {
	// Passwords may legitimately contain ';' or '#'
	file, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := parse(file)
	if err != nil {
		return nil, err
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parse(file *ini.File) (*Config, error) {
	var cfg Config
	var err error

	creds := file.Section("credentials")
	cfg.Credentials = Credentials{
		User: creds.Key("user").String(),
		Pass: creds.Key("pass").String(),
		Host: creds.Key("host").String(),
	}

	mqtt := file.Section("mqtt")
	if cfg.MQTT.Port, err = intKey(mqtt, "port"); err != nil {
		return nil, err
	}
	if cfg.MQTT.Keepalive, err = durationKey(mqtt, "keepalive"); err != nil {
		return nil, err
	}
	if cfg.MQTT.ConnectTimeout, err = durationKey(mqtt, "connect_timeout"); err != nil {
		return nil, err
	}
	if cfg.MQTT.ConnectRetryDelay, err = durationKey(mqtt, "connect_retry_delay"); err != nil {
		return nil, err
	}
	cfg.MQTT.Prefix = mqtt.Key("prefix").String()
	cfg.MQTT.ClientID = mqtt.Key("client_id").String()

	monitor := file.Section("monitor")
	if cfg.Monitor.UpdateInterval, err = durationKey(monitor, "update_interval"); err != nil {
		return nil, err
	}
	if cfg.Monitor.SendInterval, err = durationKey(monitor, "send_interval"); err != nil {
		return nil, err
	}
	cfg.Monitor.Precision = -1
	if monitor.HasKey("precision") {
		if cfg.Monitor.Precision, err = intKey(monitor, "precision"); err != nil {
			return nil, err
		}
	}
	cfg.Monitor.Chip = monitor.Key("chip").String()

	cfg.Status.Listen = file.Section("status").Key("listen").String()

	logSec := file.Section("log")
	cfg.Log.Level = logSec.Key("level").String()
	cfg.Log.Format = logSec.Key("format").String()

	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := []struct {
		name string
		dst  *string
	}{
		{"HWMON_USER", &c.Credentials.User},
		{"HWMON_PASS", &c.Credentials.Pass},
		{"HWMON_HOST", &c.Credentials.Host},
		{"HWMON_STATUS_LISTEN", &c.Status.Listen},
		{"HWMON_LOG_LEVEL", &c.Log.Level},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.name); ok && v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.MQTT.Port == 0 {
		c.MQTT.Port = DefaultPort
	}
	if c.MQTT.Keepalive == 0 {
		c.MQTT.Keepalive = DefaultKeepalive
	}
	if c.MQTT.Prefix == "" {
		c.MQTT.Prefix = DefaultPrefix
	}
	if c.MQTT.ConnectTimeout == 0 {
		c.MQTT.ConnectTimeout = DefaultConnectTimeout
	}
	if c.MQTT.ConnectRetryDelay == 0 {
		c.MQTT.ConnectRetryDelay = DefaultConnectRetryDelay
	}
	if c.Monitor.UpdateInterval == 0 {
		c.Monitor.UpdateInterval = DefaultUpdateInterval
	}
	if c.Monitor.SendInterval == 0 {
		c.Monitor.SendInterval = DefaultSendInterval
	}
	if c.Monitor.Precision < 0 {
		c.Monitor.Precision = DefaultPrecision
	}
	if c.Monitor.Chip == "" {
		c.Monitor.Chip = DefaultChip
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func (c *Config) validate() error {
	if c.Credentials.Host == "" {
		return fmt.Errorf("credentials.host: %w", ErrMissingKey)
	}
	if c.Credentials.HasAuth() && c.Credentials.Pass == "" {
		return fmt.Errorf("credentials.pass is required when user is set: %w", ErrMissingKey)
	}
	if c.MQTT.Port < 1 || c.MQTT.Port > 65535 {
		return fmt.Errorf("mqtt.port %d: %w", c.MQTT.Port, ErrInvalidValue)
	}
	if c.Monitor.SendInterval < c.Monitor.UpdateInterval {
		return fmt.Errorf("monitor.send_interval must not be shorter than update_interval: %w", ErrInvalidValue)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: %w", c.Log.Format, ErrInvalidValue)
	}
	return nil
}

// BrokerURL returns the paho broker address
func (c *Config) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", c.Credentials.Host, c.MQTT.Port)
}

func intKey(sec *ini.Section, name string) (int, error) {
	raw := strings.TrimSpace(sec.Key(name).String())
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s.%s %q: %w", sec.Name(), name, raw, ErrInvalidValue)
	}
	return v, nil
}

// durationKey accepts Go durations ("30s") or bare seconds ("30")
func durationKey(sec *ini.Section, name string) (time.Duration, error) {
	raw := strings.TrimSpace(sec.Key(name).String())
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("%s.%s %q: %w", sec.Name(), name, raw, ErrInvalidValue)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s.%s %q: %w", sec.Name(), name, raw, ErrInvalidValue)
	}
	return d, nil
}
