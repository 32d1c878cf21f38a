//go:build !windows

package view

// EnableDPIAwareness is a no-op outside Windows.
func EnableDPIAwareness() error { return nil }
