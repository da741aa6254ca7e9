//go:build windows

package windows

import (
	"fmt"
	"unsafe"

	"github.com/lowvis/magnifier/internal/platform"
)

type layoutReader struct{}

// NewLayoutReader returns the keyboard-layout reader.
func NewLayoutReader() platform.LayoutReader { return layoutReader{} }

// Layout returns the foreground thread's keyboard layout as an HKL hex
// string, e.g. "04090409". The engine only compares values for change.
func (layoutReader) Layout() string {
	hwnd, _, _ := procGetForegroundWindow.Call()
	var tid uintptr
	if hwnd != 0 {
		var pid uint32
		tid, _, _ = procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	}
	hkl, _, _ := procGetKeyboardLayout.Call(tid)
	return fmt.Sprintf("%08x", uint32(hkl))
}
