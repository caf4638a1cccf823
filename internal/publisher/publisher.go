// Package publisher owns the MQTT session the agent reports to.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/CristiGvl/picoHWMQTT/internal/logger"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 2 * time.Second
	defaultPrecision      = 1
	// paho gives up on its own after ConnectTimeout; wait a little longer
	connectGrace = time.Second
	disconnectQuiesceMs   = 250
)

// Config describes the broker session
type Config struct {
	BrokerURL      string
	ClientID       string
	User           string
	Pass           string
	Keepalive      time.Duration
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

// Option customises a Publisher
type Option func(*Publisher)

// WithPrecision sets the decimals written in payloads; the default is 1
func WithPrecision(decimals int) Option {
	return func(p *Publisher) {
		if decimals >= 0 {
			p.precision = decimals
		}
	}
}

// session is the subset of mqtt.Client the publisher drives
type session interface {
	Connect() mqtt.Token
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher wraps a single MQTT client that is reused across reconnects
type Publisher struct {
	cfg       Config
	client    session
	log       *slog.Logger
	precision int
	grace     time.Duration
}

// New creates a publisher. No connection is made until Connect.
// If log is nil, a discard logger is used.
func New(cfg Config, log *slog.Logger, opts ...Option) *Publisher {
	if log == nil {
		log = logger.Discard()
	}
	cfg = withDefaults(cfg)

	mqttOpts := mqtt.NewClientOptions()
	mqttOpts.AddBroker(cfg.BrokerURL)
	mqttOpts.SetClientID(cfg.ClientID)
	if cfg.User != "" {
		mqttOpts.SetUsername(cfg.User)
		mqttOpts.SetPassword(cfg.Pass)
	}
	mqttOpts.SetKeepAlive(cfg.Keepalive)
	mqttOpts.SetConnectTimeout(cfg.ConnectTimeout)
	mqttOpts.SetCleanSession(true)
	// Reconnects are driven by the driver loop
	mqttOpts.SetAutoReconnect(false)
	mqttOpts.SetConnectRetry(false)
	mqttOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("broker connection lost", "broker", cfg.BrokerURL, "error", err)
	})

	return newWithSession(cfg, mqtt.NewClient(mqttOpts), log, opts...)
}

func newWithSession(cfg Config, client session, log *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		cfg:       withDefaults(cfg),
		client:    client,
		log:       log,
		precision: defaultPrecision,
		grace:     connectGrace,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func withDefaults(cfg Config) Config {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID()
	}
	return cfg
}

// DefaultClientID returns hwmon-<hostname>-<random suffix>
func DefaultClientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "host"
	}
	return fmt.Sprintf("hwmon-%s-%s", host, uuid.NewString()[:8])
}

// Connect blocks until the session is up, the connect timeout fires,
// or ctx is cancelled. It always targets the same underlying client.
func (p *Publisher) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &ConnectError{Err: err}
	}

	if err := p.wait(ctx, p.client.Connect(), p.cfg.ConnectTimeout+p.grace); err != nil {
		if errors.Is(err, ErrTimeout) || ctx.Err() != nil {
			// Abandon the attempt so the next Connect starts from a clean state
			p.client.Disconnect(0)
		}
		if ctx.Err() != nil {
			return &ConnectError{Err: ctx.Err()}
		}
		return &ConnectError{Err: err, Transient: true}
	}

	p.log.Info("connected to broker", "broker", p.cfg.BrokerURL, "client_id", p.cfg.ClientID)
	return nil
}

// Healthy reports whether the session is live
func (p *Publisher) Healthy() bool {
	return p.client.IsConnectionOpen()
}

// Publish sends value to topic at QoS 0. It is fire-and-forget:
// callers log the error and move on.
func (p *Publisher) Publish(ctx context.Context, topic string, value float64) error {
	if !p.client.IsConnectionOpen() {
		return fmt.Errorf("publish %s: %w", topic, ErrNotConnected)
	}

	token := p.client.Publish(topic, 0, false, FormatValue(value, p.precision))
	if err := p.wait(ctx, token, p.cfg.PublishTimeout); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close ends the session
func (p *Publisher) Close() {
	if p.client.IsConnectionOpen() {
		p.client.Disconnect(disconnectQuiesceMs)
	}
}

func (p *Publisher) wait(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FormatValue renders a mean with a fixed number of decimals
func FormatValue(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// Topic joins prefix and name with exactly one slash
func Topic(prefix, name string) string {
	name = strings.TrimLeft(name, "/")
	if prefix == "" {
		return name
	}
	return strings.TrimRight(prefix, "/") + "/" + name
}
