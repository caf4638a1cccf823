//go:build !linux && !windows

package memory

import (
	"context"
	"fmt"
)

// UnsupportedReader is a fallback for unsupported platforms
type UnsupportedReader struct{}

// newPlatformReader creates a fallback memory reader for unsupported platforms
func newPlatformReader() Reader {
	return &UnsupportedReader{}
}

// UsedPercent returns an error for unsupported platforms
func (r *UnsupportedReader) UsedPercent(ctx context.Context) (float64, error) {
	return 0, fmt.Errorf("memory monitoring not supported on this platform")
}
