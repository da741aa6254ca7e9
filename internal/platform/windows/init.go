//go:build windows

package windows

import (
	"github.com/lowvis/magnifier/internal/platform"
)

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		enablePerMonitorDPI()
		return &platform.Provider{
			Capture:    NewCapture(),
			Monitors:   NewEnumerator(),
			Cursor:     NewCursorReader(),
			Foreground: NewForegroundReader(),
			Presenter:  NewPresenter(),
			Layout:     NewLayoutReader(),
		}, nil
	}
}

// enablePerMonitorDPI opts the process into per-monitor DPI awareness
// so every coordinate from the OS is a physical pixel. Must happen
// before any window or DC is created.
func enablePerMonitorDPI() {
	// DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2 is (HANDLE)-4.
	if procSetProcessDpiAwarenessContext.Find() == nil {
		if ret, _, _ := procSetProcessDpiAwarenessContext.Call(^uintptr(3)); ret != 0 {
			return
		}
	}
	procSetProcessDPIAware.Call()
}
