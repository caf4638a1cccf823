package cpu

import "context"

// Reader interface for CPU monitoring
type Reader interface {
	// Usage returns overall utilisation in percent since the previous call
	Usage(ctx context.Context) (float64, error)
}

// NewReader creates a new CPU reader for the current platform
func NewReader() Reader {
	return newPlatformReader()
}
