package sampler

import (
	"context"
	"errors"
	"testing"

	"github.com/CristiGvl/picoHWMQTT/internal/metric"
	"github.com/CristiGvl/picoHWMQTT/internal/temps"
)

type fakeTemps struct {
	sensors []temps.Sensor
	err     error
}

func (f *fakeTemps) Sensors(ctx context.Context) ([]temps.Sensor, error) {
	return f.sensors, f.err
}

type fakeCPU struct {
	v   float64
	err error
}

func (f *fakeCPU) Usage(ctx context.Context) (float64, error) { return f.v, f.err }

type fakeMemory struct {
	v   float64
	err error
}

func (f *fakeMemory) UsedPercent(ctx context.Context) (float64, error) { return f.v, f.err }

func TestSample(t *testing.T) {
	s := New(nil, WithReaders(
		&fakeTemps{sensors: []temps.Sensor{{Name: "acpitz", Temperature: 30}, {Name: "k10temp_tctl", Temperature: 55.5}}},
		&fakeCPU{v: 12.5},
		&fakeMemory{v: 63.2},
	))

	got := s.Sample(context.Background())
	want := []metric.Sample{
		{Name: metric.ChipsetTemperature, Value: 55.5},
		{Name: metric.CPUUtilization, Value: 12.5},
		{Name: metric.RAMUsed, Value: 63.2},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestChipsetTemperatureFallback(t *testing.T) {
	tests := []struct {
		name  string
		temps *fakeTemps
	}{
		{name: "no matching sensor", temps: &fakeTemps{sensors: []temps.Sensor{{Name: "coretemp_package_id_0", Temperature: 60}}}},
		{name: "no sensors", temps: &fakeTemps{}},
		{name: "facility error", temps: &fakeTemps{err: errors.New("no hwmon")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil, WithReaders(tt.temps, &fakeCPU{}, &fakeMemory{}))
			if got := s.ReadChipsetTemperature(context.Background()); got != 0 {
				t.Fatalf("expected 0, got %v", got)
			}
		})
	}
}

func TestWithChip(t *testing.T) {
	s := New(nil,
		WithReaders(&fakeTemps{sensors: []temps.Sensor{{Name: "coretemp_package_id_0", Temperature: 61}}}, &fakeCPU{}, &fakeMemory{}),
		WithChip("coretemp"),
	)
	if got := s.ReadChipsetTemperature(context.Background()); got != 61 {
		t.Fatalf("expected 61, got %v", got)
	}
}

func TestReadFailuresReportZero(t *testing.T) {
	s := New(nil, WithReaders(&fakeTemps{}, &fakeCPU{err: errors.New("boom")}, &fakeMemory{err: errors.New("boom")}))

	samples := s.Sample(context.Background())
	if len(samples) != len(metric.Names()) {
		t.Fatalf("expected every metric sampled, got %d", len(samples))
	}
	for _, smp := range samples {
		if smp.Value != 0 {
			t.Fatalf("expected 0 for %s, got %v", smp.Name, smp.Value)
		}
	}
}
