//go:build linux

package temps

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"
)

// LinuxReader implements temperature monitoring for Linux
type LinuxReader struct{}

// newPlatformReader creates a new Linux temperature reader
func newPlatformReader() Reader {
	return &LinuxReader{}
}

// Sensors returns hwmon temperature sensors in discovery order
func (r *LinuxReader) Sensors(ctx context.Context) ([]Sensor, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	// gopsutil returns partial readings together with warnings
	if err != nil && len(temps) == 0 {
		return nil, err
	}

	sensors := make([]Sensor, 0, len(temps))
	for _, temp := range temps {
		sensors = append(sensors, Sensor{
			Name:        temp.SensorKey,
			Temperature: temp.Temperature,
		})
	}

	return sensors, nil
}
