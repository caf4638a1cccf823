// Package driver runs the connect, sample and flush loop of the agent.
//
// The loop is single-threaded and owns the aggregator. Sampling and flushing
// are gated on the same clock inside one iteration, so a flush always sees
// every tick taken before it.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CristiGvl/picoHWMQTT/internal/aggregator"
	"github.com/CristiGvl/picoHWMQTT/internal/logger"
	"github.com/CristiGvl/picoHWMQTT/internal/metric"
	"github.com/CristiGvl/picoHWMQTT/internal/publisher"
	"github.com/CristiGvl/picoHWMQTT/internal/status"
	"github.com/CristiGvl/picoHWMQTT/internal/telemetry"
)

const (
	DefaultIdleSleep         = 50 * time.Millisecond
	DefaultReconnectPause    = 1 * time.Second
	DefaultConnectRetryDelay = 5 * time.Second
	DefaultUpdateInterval    = 1 * time.Second
	DefaultSendInterval      = 30 * time.Second
)

// State represents the driver state
type State int

const (
	StateConnecting State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Source produces one sample per tracked metric per call.
// Every call must return the same set of metrics.
type Source interface {
	Sample(ctx context.Context) []metric.Sample
}

// Publisher is the broker session used by the driver
type Publisher interface {
	Connect(ctx context.Context) error
	Healthy() bool
	Publish(ctx context.Context, topic string, value float64) error
	Close()
}

// Config holds the loop timing and topic layout
type Config struct {
	Prefix            string
	UpdateInterval    time.Duration
	SendInterval      time.Duration
	IdleSleep         time.Duration
	ReconnectPause    time.Duration
	ConnectRetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.UpdateInterval <= 0 {
		c.UpdateInterval = DefaultUpdateInterval
	}
	if c.SendInterval <= 0 {
		c.SendInterval = DefaultSendInterval
	}
	if c.IdleSleep <= 0 {
		c.IdleSleep = DefaultIdleSleep
	}
	if c.ReconnectPause <= 0 {
		c.ReconnectPause = DefaultReconnectPause
	}
	if c.ConnectRetryDelay <= 0 {
		c.ConnectRetryDelay = DefaultConnectRetryDelay
	}
	return c
}

// Option customises a Driver
type Option func(*Driver)

// WithTelemetry records loop events as Prometheus metrics
func WithTelemetry(m *telemetry.Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithStatus publishes flushed windows and session state to store
func WithStatus(store *status.Store) Option {
	return func(d *Driver) { d.status = store }
}

// WithLogger sets the driver logger
func WithLogger(log *slog.Logger) Option {
	return func(d *Driver) {
		if log != nil {
			d.log = log
		}
	}
}

// WithPrecision sets the decimals kept on flush; the default is aggregator.DefaultPrecision
func WithPrecision(decimals int) Option {
	return func(d *Driver) {
		if decimals >= 0 {
			d.precision = decimals
		}
	}
}

// WithClock replaces the wall clock and sleep, for tests
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(d *Driver) {
		d.now = now
		d.sleep = sleep
	}
}

type Driver struct {
	cfg     Config
	source    Source
	pub       Publisher
	precision int
	agg       *aggregator.Aggregator
	log     *slog.Logger
	metrics *telemetry.Metrics
	status  *status.Store

	now   func() time.Time
	sleep func(context.Context, time.Duration) error

	state      State
	lastUpdate time.Time
	lastSend   time.Time
}

func New(cfg Config, source Source, pub Publisher, opts ...Option) *Driver {
	cfg = cfg.withDefaults()
	d := &Driver{
		cfg:       cfg,
		source:    source,
		pub:       pub,
		precision: aggregator.DefaultPrecision,
		log:       logger.Discard(),
		now:       time.Now,
		sleep:     sleepContext,
		state:     StateConnecting,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.agg = aggregator.New(d.precision)
	return d
}

// State returns the current loop state
func (d *Driver) State() State {
	return d.state
}

// Run connects and then loops until ctx is cancelled or a fatal
// connect error occurs. Transport errors never end the loop.
func (d *Driver) Run(ctx context.Context) error {
	defer d.pub.Close()

	if err := d.connect(ctx); err != nil {
		return err
	}

	d.log.Info("monitor running",
		"update_interval", d.cfg.UpdateInterval,
		"send_interval", d.cfg.SendInterval,
		"prefix", d.cfg.Prefix,
	)

	for {
		if err := d.step(ctx); err != nil {
			return err
		}
		if err := d.sleep(ctx, d.cfg.IdleSleep); err != nil {
			return err
		}
	}
}

// connect retries until the broker accepts the session
func (d *Driver) connect(ctx context.Context) error {
	d.state = StateConnecting
	for attempt := 1; ; attempt++ {
		err := d.pub.Connect(ctx)
		d.observeConnect(err)
		if err == nil {
			break
		}
		if publisher.IsFatal(err) {
			return err
		}

		d.log.Warn("broker connect failed", "attempt", attempt, "retry_in", d.cfg.ConnectRetryDelay, "error", err)
		if err := d.sleep(ctx, d.cfg.ConnectRetryDelay); err != nil {
			return err
		}
	}

	now := d.now()
	d.lastUpdate = now
	d.lastSend = now
	d.state = StateRunning
	return nil
}

// step runs one loop iteration
func (d *Driver) step(ctx context.Context) error {
	if !d.pub.Healthy() {
		return d.reconnect(ctx)
	}

	now := d.now()
	if now.Sub(d.lastUpdate) > d.cfg.UpdateInterval {
		d.sample(ctx)
		d.lastUpdate = now
	}
	if now.Sub(d.lastSend) > d.cfg.SendInterval {
		d.flush(ctx, now)
		d.lastSend = now
	}
	return nil
}

// reconnect makes one best-effort attempt on the same publisher
func (d *Driver) reconnect(ctx context.Context) error {
	d.setConnected(false)
	if err := d.sleep(ctx, d.cfg.ReconnectPause); err != nil {
		return err
	}

	err := d.pub.Connect(ctx)
	d.observeConnect(err)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d.log.Warn("broker reconnect failed", "error", err)
	}
	return nil
}

func (d *Driver) sample(ctx context.Context) {
	for _, s := range d.source.Sample(ctx) {
		d.agg.Accumulate(s.Name, s.Value)
	}
	d.agg.Tick()
	if d.metrics != nil {
		d.metrics.Tick()
	}
}

func (d *Driver) flush(ctx context.Context, now time.Time) {
	res := d.agg.Flush()
	if res.Empty() {
		d.log.Debug("no samples in window, nothing to send")
		return
	}
	if len(res.Skewed) > 0 {
		d.log.Warn("metrics sampled off the shared cadence", "metrics", res.Skewed, "samples", res.Samples)
	}

	for _, m := range res.Means {
		topic := publisher.Topic(d.cfg.Prefix, m.Name)
		if err := d.pub.Publish(ctx, topic, m.Value); err != nil {
			d.log.Warn("publish failed, dropping value", "topic", topic, "error", err)
			if d.metrics != nil {
				d.metrics.PublishFailed()
			}
			continue
		}
		d.log.Debug("published", "topic", topic, "value", m.Value, "samples", res.Samples)
		if d.metrics != nil {
			d.metrics.SetMean(m.Name, m.Value)
		}
	}

	if d.metrics != nil {
		d.metrics.Flushed()
	}
	if d.status != nil {
		d.status.SetWindow(res, now)
	}
}

func (d *Driver) observeConnect(err error) {
	if d.metrics != nil {
		d.metrics.ConnectAttempt(err)
	}
	d.setConnected(err == nil)
}

func (d *Driver) setConnected(ok bool) {
	if d.metrics != nil {
		d.metrics.SetConnected(ok)
	}
	if d.status != nil {
		d.status.SetConnected(ok, d.now())
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
