//go:build windows

package windows

import (
	"unsafe"

	sys "golang.org/x/sys/windows"
)

const bmiHeaderSize = unsafe.Sizeof(bitmapInfoHeader{})

var (
	user32 = sys.NewLazySystemDLL("user32.dll")
	gdi32  = sys.NewLazySystemDLL("gdi32.dll")
	shcore = sys.NewLazySystemDLL("shcore.dll")

	procEnumDisplayMonitors           = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW               = user32.NewProc("GetMonitorInfoW")
	procGetDC                         = user32.NewProc("GetDC")
	procReleaseDC                     = user32.NewProc("ReleaseDC")
	procGetCursorInfo                 = user32.NewProc("GetCursorInfo")
	procGetIconInfo                   = user32.NewProc("GetIconInfo")
	procDrawIconEx                    = user32.NewProc("DrawIconEx")
	procGetSystemMetrics              = user32.NewProc("GetSystemMetrics")
	procGetForegroundWindow           = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW                = user32.NewProc("GetWindowTextW")
	procGetClassNameW                 = user32.NewProc("GetClassNameW")
	procGetWindowThreadProcessId      = user32.NewProc("GetWindowThreadProcessId")
	procGetWindowRect                 = user32.NewProc("GetWindowRect")
	procGetKeyboardLayout             = user32.NewProc("GetKeyboardLayout")
	procRegisterClassExW              = user32.NewProc("RegisterClassExW")
	procCreateWindowExW               = user32.NewProc("CreateWindowExW")
	procDestroyWindow                 = user32.NewProc("DestroyWindow")
	procDefWindowProcW                = user32.NewProc("DefWindowProcW")
	procSetWindowPos                  = user32.NewProc("SetWindowPos")
	procPeekMessageW                  = user32.NewProc("PeekMessageW")
	procTranslateMessage              = user32.NewProc("TranslateMessage")
	procDispatchMessageW              = user32.NewProc("DispatchMessageW")
	procSetProcessDpiAwarenessContext = user32.NewProc("SetProcessDpiAwarenessContext")
	procSetProcessDPIAware            = user32.NewProc("SetProcessDPIAware")

	procCreateCompatibleDC = gdi32.NewProc("CreateCompatibleDC")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
	procCreateDIBSection   = gdi32.NewProc("CreateDIBSection")
	procSelectObject       = gdi32.NewProc("SelectObject")
	procDeleteObject       = gdi32.NewProc("DeleteObject")
	procBitBlt             = gdi32.NewProc("BitBlt")
	procSetDIBitsToDevice  = gdi32.NewProc("SetDIBitsToDevice")

	procGetDpiForMonitor = shcore.NewProc("GetDpiForMonitor")
)

const (
	srcCopy       = 0x00CC0020
	captureBlt    = 0x40000000
	dibRGBColors  = 0
	biRGB         = 0
	diNormal      = 0x0003
	cursorShowing = 0x0001

	smCxCursor = 13
	smCyCursor = 14

	monitorInfoFPrimary = 0x0001
	mdtEffectiveDPI     = 0

	wsPopup        = 0x80000000
	wsVisible      = 0x10000000
	wsExTopmost    = 0x00000008
	wsExToolWindow = 0x00000080
	wsExNoActivate = 0x08000000

	swpNoActivate = 0x0010
	swpShowWindow = 0x0040
	hwndTopmost   = ^uintptr(0) // (HWND)-1

	pmRemove = 0x0001
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

type winPoint struct {
	X, Y int32
}

type monitorInfoEx struct {
	CbSize    uint32
	RcMonitor winRect
	RcWork    winRect
	DwFlags   uint32
	SzDevice  [32]uint16
}

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	Colors [1]uint32
}

type cursorInfo struct {
	CbSize      uint32
	Flags       uint32
	HCursor     sys.Handle
	PtScreenPos winPoint
}

type iconInfo struct {
	FIcon    int32
	XHotspot uint32
	YHotspot uint32
	HbmMask  sys.Handle
	HbmColor sys.Handle
}

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     sys.Handle
	HIcon         sys.Handle
	HCursor       sys.Handle
	HbrBackground sys.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       sys.Handle
}

type winMsg struct {
	Hwnd    sys.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      winPoint
}

// topDownBitmapInfo builds a 32bpp BGRA top-down header for the given
// pixel dimensions.
func topDownBitmapInfo(w, h int) bitmapInfo {
	return bitmapInfo{Header: bitmapInfoHeader{
		BiSize:        uint32(bmiHeaderSize),
		BiWidth:       int32(w),
		BiHeight:      -int32(h),
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: biRGB,
	}}
}
