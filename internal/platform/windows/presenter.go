//go:build windows

package windows

import (
	"fmt"
	"image"
	"sync"
	"unsafe"

	sys "golang.org/x/sys/windows"

	"github.com/lowvis/magnifier/internal/monitor"
	"github.com/lowvis/magnifier/internal/platform"
)

const outputClassName = "MagnifierOutput"

var (
	registerClassOnce sync.Once
	registerClassErr  error

	wndProc = sys.NewCallback(func(hwnd, msg, wparam, lparam uintptr) uintptr {
		ret, _, _ := procDefWindowProcW.Call(hwnd, msg, wparam, lparam)
		return ret
	})
)

func registerOutputClass() error {
	registerClassOnce.Do(func() {
		name, err := sys.UTF16PtrFromString(outputClassName)
		if err != nil {
			registerClassErr = err
			return
		}
		wc := wndClassEx{
			LpfnWndProc:   wndProc,
			LpszClassName: name,
		}
		wc.CbSize = uint32(unsafe.Sizeof(wc))
		if ret, _, _ := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); ret == 0 {
			registerClassErr = fmt.Errorf("RegisterClassExW failed")
		}
	})
	return registerClassErr
}

// gdiPresenter owns a borderless topmost window covering the
// destination monitor and blits composed frames onto it. The window is
// non-activating so it never steals focus from the tracked source.
type gdiPresenter struct {
	hwnd   uintptr
	width  int
	height int
	bgra   []byte
}

// NewPresenter returns an unattached output presenter.
func NewPresenter() platform.Presenter { return &gdiPresenter{} }

func (p *gdiPresenter) Attach(m monitor.Descriptor) error {
	if err := registerOutputClass(); err != nil {
		return err
	}
	p.Close()

	name, err := sys.UTF16PtrFromString(outputClassName)
	if err != nil {
		return err
	}
	b := m.Bounds
	hwnd, _, _ := procCreateWindowExW.Call(
		wsExTopmost|wsExToolWindow|wsExNoActivate,
		uintptr(unsafe.Pointer(name)),
		uintptr(unsafe.Pointer(name)),
		wsPopup,
		uintptr(int32(b.Min.X)), uintptr(int32(b.Min.Y)),
		uintptr(int32(b.Dx())), uintptr(int32(b.Dy())),
		0, 0, 0, 0)
	if hwnd == 0 {
		return fmt.Errorf("CreateWindowExW on %s failed", m.ID)
	}
	procSetWindowPos.Call(hwnd, hwndTopmost,
		uintptr(int32(b.Min.X)), uintptr(int32(b.Min.Y)),
		uintptr(int32(b.Dx())), uintptr(int32(b.Dy())),
		swpNoActivate|swpShowWindow)

	w, h := m.SourceSize()
	p.hwnd = hwnd
	p.width, p.height = w, h
	p.bgra = make([]byte, w*h*4)
	return nil
}

func (p *gdiPresenter) Present(img *image.RGBA) error {
	if p.hwnd == 0 {
		return fmt.Errorf("presenter not attached")
	}
	p.pump()

	b := img.Bounds()
	if b.Dx() != p.width || b.Dy() != p.height {
		return fmt.Errorf("frame %dx%d does not match output %dx%d",
			b.Dx(), b.Dy(), p.width, p.height)
	}
	for i := 0; i < len(p.bgra); i += 4 {
		p.bgra[i] = img.Pix[i+2]
		p.bgra[i+1] = img.Pix[i+1]
		p.bgra[i+2] = img.Pix[i]
		p.bgra[i+3] = 0xFF
	}

	hdc, _, _ := procGetDC.Call(p.hwnd)
	if hdc == 0 {
		return fmt.Errorf("GetDC on output window failed")
	}
	defer procReleaseDC.Call(p.hwnd, hdc)

	bmi := topDownBitmapInfo(p.width, p.height)
	ret, _, _ := procSetDIBitsToDevice.Call(hdc,
		0, 0, uintptr(p.width), uintptr(p.height),
		0, 0, 0, uintptr(p.height),
		uintptr(unsafe.Pointer(&p.bgra[0])),
		uintptr(unsafe.Pointer(&bmi)), dibRGBColors)
	if ret == 0 {
		return fmt.Errorf("SetDIBitsToDevice failed")
	}
	return nil
}

// pump drains pending window messages so the output window stays
// responsive without a dedicated message loop goroutine.
func (p *gdiPresenter) pump() {
	var msg winMsg
	for {
		ret, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)),
			p.hwnd, 0, 0, pmRemove)
		if ret == 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

func (p *gdiPresenter) Close() error {
	if p.hwnd != 0 {
		procDestroyWindow.Call(p.hwnd)
		p.hwnd = 0
	}
	p.bgra = nil
	return nil
}
