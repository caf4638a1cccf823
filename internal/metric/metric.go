package metric

// Metric names published under the broker prefix
const (
	ChipsetTemperature = "k10_temperature_celsius"
	CPUUtilization     = "cpu_utilization_percent"
	RAMUsed            = "ram_used_percent"
)

// Names returns the tracked metrics in publish order
func Names() []string {
	return []string{ChipsetTemperature, CPUUtilization, RAMUsed}
}

// Sample represents a single instantaneous reading
type Sample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
