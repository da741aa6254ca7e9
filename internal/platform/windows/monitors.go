//go:build windows

package windows

import (
	"fmt"
	"image"
	"strings"
	"sync"
	"unsafe"

	sys "golang.org/x/sys/windows"

	"github.com/lowvis/magnifier/internal/monitor"
)

// enumerator implements monitor.Enumerator over EnumDisplayMonitors.
type enumerator struct{}

// NewEnumerator returns the display enumerator.
func NewEnumerator() monitor.Enumerator { return &enumerator{} }

// The Win32 callback is created once; NewCallback slots are never
// released. Results are collected through this guarded slice.
var (
	enumMu      sync.Mutex
	enumHandles []sys.Handle
	enumCB      = sys.NewCallback(func(hMonitor, hdc uintptr, rect, lparam uintptr) uintptr {
		enumHandles = append(enumHandles, sys.Handle(hMonitor))
		return 1
	})
)

func (e *enumerator) Enumerate() ([]monitor.Descriptor, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumHandles = enumHandles[:0]
	ret, _, _ := procEnumDisplayMonitors.Call(0, 0, enumCB, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors failed")
	}

	descs := make([]monitor.Descriptor, 0, len(enumHandles))
	for _, h := range enumHandles {
		var info monitorInfoEx
		info.CbSize = uint32(unsafe.Sizeof(info))
		ret, _, _ := procGetMonitorInfoW.Call(uintptr(h), uintptr(unsafe.Pointer(&info)))
		if ret == 0 {
			continue
		}
		id := sys.UTF16ToString(info.SzDevice[:])
		descs = append(descs, monitor.Descriptor{
			ID:       id,
			Name:     strings.TrimPrefix(id, `\\.\`),
			Bounds:   rectToImage(info.RcMonitor),
			WorkArea: rectToImage(info.RcWork),
			Scale:    1.0, // per-monitor DPI awareness: coordinates are physical
			DPI:      monitorDPI(h),
			Primary:  info.DwFlags&monitorInfoFPrimary != 0,
		})
	}
	if len(descs) == 0 {
		return nil, fmt.Errorf("no monitors reported")
	}
	return descs, nil
}

func monitorDPI(h sys.Handle) int {
	if procGetDpiForMonitor.Find() != nil {
		return 96
	}
	var dpiX, dpiY uint32
	ret, _, _ := procGetDpiForMonitor.Call(uintptr(h), mdtEffectiveDPI,
		uintptr(unsafe.Pointer(&dpiX)), uintptr(unsafe.Pointer(&dpiY)))
	if ret != 0 || dpiX == 0 {
		return 96
	}
	return int(dpiX)
}

func rectToImage(r winRect) image.Rectangle {
	return image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom))
}
