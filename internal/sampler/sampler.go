// Package sampler reads instantaneous host telemetry for the driver loop.
package sampler

import (
	"context"
	"log/slog"

	"github.com/CristiGvl/picoHWMQTT/internal/cpu"
	"github.com/CristiGvl/picoHWMQTT/internal/logger"
	"github.com/CristiGvl/picoHWMQTT/internal/memory"
	"github.com/CristiGvl/picoHWMQTT/internal/metric"
	"github.com/CristiGvl/picoHWMQTT/internal/temps"
)

// Sampler reads the three tracked metrics from the host.
// Reads are not cached or smoothed.
type Sampler struct {
	temps  temps.Reader
	cpu    cpu.Reader
	memory memory.Reader
	chip   string
	log    *slog.Logger
}

// Option customises a Sampler
type Option func(*Sampler)

// WithChip selects the temperature chip prefix to report
func WithChip(chip string) Option {
	return func(s *Sampler) {
		if chip != "" {
			s.chip = chip
		}
	}
}

// WithReaders replaces the platform readers
func WithReaders(t temps.Reader, c cpu.Reader, m memory.Reader) Option {
	return func(s *Sampler) {
		s.temps = t
		s.cpu = c
		s.memory = m
	}
}

// New creates a sampler backed by the platform readers.
// If log is nil, a discard logger is used.
func New(log *slog.Logger, opts ...Option) *Sampler {
	if log == nil {
		log = logger.Discard()
	}

	s := &Sampler{
		temps:  temps.NewReader(),
		cpu:    cpu.NewReader(),
		memory: memory.NewReader(),
		chip:   temps.DefaultChip,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadChipsetTemperature returns the chip temperature in Celsius,
// or 0 when no matching sensor exists.
func (s *Sampler) ReadChipsetTemperature(ctx context.Context) float64 {
	sensors, err := s.temps.Sensors(ctx)
	if err != nil {
		s.log.Debug("temperature sensors unavailable", "error", err)
		return 0
	}

	sensor, ok := temps.Match(sensors, s.chip)
	if !ok {
		return 0
	}
	return sensor.Temperature
}

// ReadCPUUtilizationPercent returns CPU utilisation in [0,100]
func (s *Sampler) ReadCPUUtilizationPercent(ctx context.Context) float64 {
	v, err := s.cpu.Usage(ctx)
	if err != nil {
		s.log.Error("collector", "name", "cpu", "error", err)
		return 0
	}
	return v
}

// ReadMemoryUsedPercent returns RAM usage in [0,100]
func (s *Sampler) ReadMemoryUsedPercent(ctx context.Context) float64 {
	v, err := s.memory.UsedPercent(ctx)
	if err != nil {
		s.log.Error("collector", "name", "memory", "error", err)
		return 0
	}
	return v
}

// Sample reads every tracked metric once, in publish order
func (s *Sampler) Sample(ctx context.Context) []metric.Sample {
	return []metric.Sample{
		{Name: metric.ChipsetTemperature, Value: s.ReadChipsetTemperature(ctx)},
		{Name: metric.CPUUtilization, Value: s.ReadCPUUtilizationPercent(ctx)},
		{Name: metric.RAMUsed, Value: s.ReadMemoryUsedPercent(ctx)},
	}
}
