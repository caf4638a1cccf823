package memory

import "context"

// Reader interface for memory monitoring
type Reader interface {
	// UsedPercent returns the share of physical memory in use
	UsedPercent(ctx context.Context) (float64, error)
}

// NewReader creates a new memory reader for the current platform
func NewReader() Reader {
	return newPlatformReader()
}
