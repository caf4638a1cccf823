package platform

import (
	"fmt"
	"runtime"
)

// SupportedOS represents operating systems with working sensor readers
type SupportedOS string

const (
	Linux   SupportedOS = "linux"
	Windows SupportedOS = "windows"
)

// GetOS returns the current operating system
func GetOS() SupportedOS {
	return SupportedOS(runtime.GOOS)
}

// IsSupported reports whether CPU and memory readers exist for os
func IsSupported(os SupportedOS) bool {
	return os == Linux || os == Windows
}

// ValidateSupport returns an error if the current OS cannot be sampled
func ValidateSupport() error {
	if !IsSupported(GetOS()) {
		return fmt.Errorf("unsupported operating system: %s (supported: %s, %s)", runtime.GOOS, Linux, Windows)
	}
	return nil
}
