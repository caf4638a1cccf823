package temps

import (
	"context"
	"strings"
)

// DefaultChip is the hwmon chip name reported by AMD K10+ CPUs
const DefaultChip = "k10temp"

// Sensor represents a temperature sensor
type Sensor struct {
	Name        string  `json:"name"`
	Temperature float64 `json:"temperature_celsius"`
}

// Reader interface for temperature monitoring
type Reader interface {
	// Sensors returns every sensor the platform reports
	Sensors(ctx context.Context) ([]Sensor, error)
}

// NewReader creates a new temperature reader for the current platform
func NewReader() Reader {
	return newPlatformReader()
}

// Match returns the first sensor whose name starts with chip
func Match(sensors []Sensor, chip string) (Sensor, bool) {
	chip = strings.ToLower(chip)
	for _, s := range sensors {
		if strings.HasPrefix(strings.ToLower(s.Name), chip) {
			return s, true
		}
	}
	return Sensor{}, false
}
