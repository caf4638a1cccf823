//go:build linux || windows

package memory

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"
)

// PsutilReader implements memory monitoring through gopsutil
type PsutilReader struct{}

// newPlatformReader creates a new gopsutil backed memory reader
func newPlatformReader() Reader {
	return &PsutilReader{}
}

// UsedPercent returns memory usage percentage
func (r *PsutilReader) UsedPercent(ctx context.Context) (float64, error) {
	memInfo, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}

	return memInfo.UsedPercent, nil
}
