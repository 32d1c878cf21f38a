//go:build windows

package view

import "golang.org/x/sys/windows"

// perMonitorAwareV2 is DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2.
const perMonitorAwareV2 = ^uintptr(3)

// EnableDPIAwareness makes window and screen coordinates physical pixels so
// mouse positions line up with captured frames on scaled displays.
func EnableDPIAwareness() error {
	user32 := windows.NewLazySystemDLL("user32.dll")
	if p := user32.NewProc("SetProcessDpiAwarenessContext"); p.Find() == nil {
		if r, _, err := p.Call(perMonitorAwareV2); r == 0 {
			return err
		}
		return nil
	}
	if r, _, err := user32.NewProc("SetProcessDPIAware").Call(); r == 0 {
		return err
	}
	return nil
}
