//go:build linux || windows

package cpu

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
)

// PsutilReader implements CPU monitoring through gopsutil
type PsutilReader struct{}

// newPlatformReader creates a new gopsutil backed CPU reader
func newPlatformReader() Reader {
	return &PsutilReader{}
}

// Usage returns CPU usage percentage.
// A zero interval compares against the previous call and never blocks.
func (r *PsutilReader) Usage(ctx context.Context) (float64, error) {
	percentages, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}

	if len(percentages) == 0 {
		return 0, nil
	}

	return percentages[0], nil
}
