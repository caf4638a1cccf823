package aggregator

import (
	"math"
	"testing"
)

func TestFlushMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "cpu scenario", values: []float64{10, 20, 30}, want: 20.0},
		{name: "single sample rounds half up", values: []float64{45.05}, want: 45.1},
		{name: "rounds down below half", values: []float64{1.04, 1.04}, want: 1.0},
		{name: "non terminating mean", values: []float64{1, 2, 2}, want: 1.7},
		{name: "zero sentinel participates", values: []float64{0, 50}, want: 25.0},
		{name: "negative rounds away from zero", values: []float64{-2.25}, want: -2.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(DefaultPrecision)
			for _, v := range tt.values {
				a.Accumulate("m", v)
				a.Tick()
			}

			res := a.Flush()
			if res.Samples != len(tt.values) {
				t.Fatalf("expected %d samples, got %d", len(tt.values), res.Samples)
			}
			got, ok := res.Map()["m"]
			if !ok {
				t.Fatalf("expected mean for m, got %v", res.Means)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFlushWithoutTicksIsEmpty(t *testing.T) {
	a := New(DefaultPrecision)

	res := a.Flush()
	if !res.Empty() || len(res.Means) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}

	a.Accumulate("cpu", 12)
	a.Tick()
	if res := a.Flush(); res.Empty() {
		t.Fatal("expected first flush to report a mean")
	}

	res = a.Flush()
	if !res.Empty() || len(res.Means) != 0 {
		t.Fatalf("expected second flush to be empty, got %+v", res)
	}
}

func TestFlushResetsState(t *testing.T) {
	a := New(DefaultPrecision)
	a.Accumulate("cpu", 90)
	a.Accumulate("ram", 80)
	a.Tick()
	a.Flush()

	if a.Counter() != 0 {
		t.Fatalf("expected counter 0 after flush, got %d", a.Counter())
	}
	if a.Sum("cpu") != 0 || a.Sum("ram") != 0 {
		t.Fatalf("expected zero sums after flush, got cpu=%v ram=%v", a.Sum("cpu"), a.Sum("ram"))
	}
	if a.Len() != 0 {
		t.Fatalf("expected no tracked metrics after flush, got %d", a.Len())
	}

	a.Accumulate("cpu", 10)
	a.Tick()
	a.Accumulate("cpu", 20)
	a.Tick()

	if got := a.Flush().Map()["cpu"]; got != 15 {
		t.Fatalf("expected window independent of prior history, got %v", got)
	}
}

func TestIndependentMetrics(t *testing.T) {
	a := New(DefaultPrecision)
	ticks := [][3]float64{
		{40, 5, 30},
		{42, 15, 31},
		{44, 25, 32},
	}
	for _, tick := range ticks {
		a.Accumulate("temp", tick[0])
		a.Accumulate("cpu", tick[1])
		a.Accumulate("ram", tick[2])
		a.Tick()
	}

	res := a.Flush()
	want := map[string]float64{"temp": 42, "cpu": 15, "ram": 31}
	got := res.Map()
	for name, v := range want {
		if got[name] != v {
			t.Fatalf("metric %s: expected %v, got %v", name, v, got[name])
		}
	}
	if len(res.Skewed) != 0 {
		t.Fatalf("expected no skewed metrics, got %v", res.Skewed)
	}

	order := []string{"temp", "cpu", "ram"}
	for i, m := range res.Means {
		if m.Name != order[i] {
			t.Fatalf("expected first-seen order %v, got %v", order, res.Means)
		}
	}
}

func TestSkewedMetricIsReported(t *testing.T) {
	a := New(DefaultPrecision)
	a.Accumulate("cpu", 10)
	a.Accumulate("temp", 40)
	a.Tick()
	a.Accumulate("cpu", 20)
	a.Tick()

	res := a.Flush()
	if len(res.Skewed) != 1 || res.Skewed[0] != "temp" {
		t.Fatalf("expected temp reported as skewed, got %v", res.Skewed)
	}
	if got := res.Map()["temp"]; got != 20 {
		t.Fatalf("expected temp mean against shared counter 20, got %v", got)
	}
}

func TestPrecision(t *testing.T) {
	a := New(2)
	a.Accumulate("m", 1.005)
	a.Tick()
	if got := a.Flush().Map()["m"]; got != 1.01 {
		t.Fatalf("expected 1.01, got %v", got)
	}

	a = New(0)
	a.Accumulate("m", 2.5)
	a.Tick()
	if got := a.Flush().Map()["m"]; got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
}

func TestNaNPassesThrough(t *testing.T) {
	a := New(DefaultPrecision)
	a.Accumulate("m", math.NaN())
	a.Tick()
	if got := a.Flush().Map()["m"]; !math.IsNaN(got) {
		t.Fatalf("expected NaN, got %v", got)
	}
}
