// Package aggregator turns fast-cadence metric samples into windowed means.
//
// All tracked metrics share one sample counter, so every metric must be
// accumulated exactly once per Tick. A metric sampled on a different cadence
// still produces a value, but it is reported in Result.Skewed so the caller
// can surface the drift instead of publishing a silently wrong mean.
package aggregator

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of decimal places kept on flush
const DefaultPrecision = 1

// Mean represents the average of one metric over a flush window
type Mean struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Result represents the output of a flush
type Result struct {
	Means   []Mean   `json:"means"`
	Samples int      `json:"samples"`
	Skewed  []string `json:"skewed,omitempty"`
}

// Empty reports whether the window held no samples
func (r Result) Empty() bool {
	return r.Samples == 0
}

// Map returns the means keyed by metric name
func (r Result) Map() map[string]float64 {
	out := make(map[string]float64, len(r.Means))
	for _, m := range r.Means {
		out[m.Name] = m.Value
	}
	return out
}

type entry struct {
	sum  float64
	seen int
}

// Aggregator accumulates per-metric sums between flushes.
// It is not safe for concurrent use; the driver loop owns it.
type Aggregator struct {
	precision int32
	entries   map[string]*entry
	order     []string
	counter   int
}

// New creates an aggregator rounding means to the given number of decimals
func New(precision int) *Aggregator {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return &Aggregator{
		precision: int32(precision),
		entries:   make(map[string]*entry),
	}
}

// Accumulate adds one observation of name to the current window
func (a *Aggregator) Accumulate(name string, value float64) {
	e, ok := a.entries[name]
	if !ok {
		e = &entry{}
		a.entries[name] = e
		a.order = append(a.order, name)
	}
	e.sum += value
	e.seen++
}

// Tick closes one sampling period
func (a *Aggregator) Tick() {
	a.counter++
}

// Counter returns the number of ticks since the last flush
func (a *Aggregator) Counter() int {
	return a.counter
}

// Len returns the number of metrics tracked in the current window
func (a *Aggregator) Len() int {
	return len(a.entries)
}

// Sum returns the running sum for name
func (a *Aggregator) Sum(name string) float64 {
	if e, ok := a.entries[name]; ok {
		return e.sum
	}
	return 0
}

// Flush computes sum/counter for every metric and resets the window.
// With no ticks recorded it returns an empty result and leaves state untouched.
func (a *Aggregator) Flush() Result {
	if a.counter == 0 {
		return Result{}
	}

	res := Result{
		Means:   make([]Mean, 0, len(a.order)),
		Samples: a.counter,
	}
	for _, name := range a.order {
		e := a.entries[name]
		res.Means = append(res.Means, Mean{
			Name:  name,
			Value: a.round(e.sum / float64(a.counter)),
		})
		if e.seen != a.counter {
			res.Skewed = append(res.Skewed, name)
		}
	}

	a.reset()
	return res
}

// round applies half-away-from-zero rounding on the shortest decimal form
func (a *Aggregator) round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(a.precision).Float64()
	return f
}

func (a *Aggregator) reset() {
	a.entries = make(map[string]*entry, len(a.order))
	a.order = a.order[:0]
	a.counter = 0
}
