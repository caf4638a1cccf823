//go:build windows

package temps

import (
	"context"
	"strings"

	"github.com/StackExchange/wmi"
)

// WindowsReader implements temperature monitoring for Windows
type WindowsReader struct{}

// newPlatformReader creates a new Windows temperature reader
func newPlatformReader() Reader {
	return &WindowsReader{}
}

// Win32_TemperatureProbe represents WMI temperature probe data
type Win32_TemperatureProbe struct {
	DeviceID       string
	Name           string
	CurrentReading *uint32
}

// Win32_PerfRawData_Counters_ThermalZoneInformation represents thermal zone data
type Win32_PerfRawData_Counters_ThermalZoneInformation struct {
	Name        string
	Temperature uint64
}

// Sensors returns WMI temperature probes, falling back to thermal zones
func (r *WindowsReader) Sensors(ctx context.Context) ([]Sensor, error) {
	sensors, err := r.temperatureProbes()
	if err == nil && len(sensors) > 0 {
		return sensors, nil
	}

	return r.thermalZones()
}

// temperatureProbes gets temperature data from WMI temperature probes
func (r *WindowsReader) temperatureProbes() ([]Sensor, error) {
	var probes []Win32_TemperatureProbe
	if err := wmi.Query("SELECT DeviceID, Name, CurrentReading FROM Win32_TemperatureProbe", &probes); err != nil {
		return nil, err
	}

	var sensors []Sensor
	for _, probe := range probes {
		if probe.CurrentReading == nil {
			continue
		}

		name := probe.Name
		if name == "" {
			name = probe.DeviceID
		}

		sensors = append(sensors, Sensor{
			Name:        strings.ToLower(name),
			Temperature: decikelvinToCelsius(uint64(*probe.CurrentReading)),
		})
	}

	return sensors, nil
}

// thermalZones gets temperature data from thermal zone information
func (r *WindowsReader) thermalZones() ([]Sensor, error) {
	var zones []Win32_PerfRawData_Counters_ThermalZoneInformation
	if err := wmi.Query("SELECT Name, Temperature FROM Win32_PerfRawData_Counters_ThermalZoneInformation", &zones); err != nil {
		return nil, err
	}

	var sensors []Sensor
	for _, zone := range zones {
		tempCelsius := decikelvinToCelsius(zone.Temperature)

		// Skip unrealistic temperatures
		if tempCelsius < -50 || tempCelsius > 150 {
			continue
		}

		sensors = append(sensors, Sensor{
			Name:        strings.ToLower(zone.Name),
			Temperature: tempCelsius,
		})
	}

	return sensors, nil
}

// Convert from tenths of Kelvin to Celsius
func decikelvinToCelsius(v uint64) float64 {
	return float64(v)/10.0 - 273.15
}
