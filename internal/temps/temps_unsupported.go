//go:build !linux && !windows

package temps

import "context"

// UnsupportedReader is a fallback for unsupported platforms
type UnsupportedReader struct{}

// newPlatformReader creates a fallback temperature reader for unsupported platforms
func newPlatformReader() Reader {
	return &UnsupportedReader{}
}

// Sensors reports no sensors; callers fall back to the unknown value
func (r *UnsupportedReader) Sensors(ctx context.Context) ([]Sensor, error) {
	return nil, nil
}
