//go:build windows

package windows

import (
	"image"
	"path/filepath"
	"unsafe"

	sys "golang.org/x/sys/windows"

	"github.com/lowvis/magnifier/internal/platform"
)

type foregroundReader struct{}

// NewForegroundReader returns the Win32 foreground-window reader.
func NewForegroundReader() platform.ForegroundReader { return &foregroundReader{} }

func (foregroundReader) Foreground() (platform.ForegroundWindow, bool) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return platform.ForegroundWindow{}, false
	}

	var rect winRect
	if ret, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect))); ret == 0 {
		return platform.ForegroundWindow{}, false
	}

	w := platform.ForegroundWindow{
		Title:   windowText(hwnd),
		Class:   windowClass(hwnd),
		Process: windowProcess(hwnd),
		Bounds:  image.Rect(int(rect.Left), int(rect.Top), int(rect.Right), int(rect.Bottom)),
	}
	return w, true
}

func windowText(hwnd uintptr) string {
	var buf [512]uint16
	n, _, _ := procGetWindowTextW.Call(hwnd,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return sys.UTF16ToString(buf[:n])
}

func windowClass(hwnd uintptr) string {
	var buf [256]uint16
	n, _, _ := procGetClassNameW.Call(hwnd,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return sys.UTF16ToString(buf[:n])
}

// windowProcess resolves the owning executable's base name, e.g.
// "putty.exe". Empty when the process cannot be opened.
func windowProcess(hwnd uintptr) string {
	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return ""
	}
	h, err := sys.OpenProcess(sys.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer sys.CloseHandle(h)

	var buf [sys.MAX_LONG_PATH]uint16
	size := uint32(len(buf))
	if err := sys.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	return filepath.Base(sys.UTF16ToString(buf[:size]))
}
