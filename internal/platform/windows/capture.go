//go:build windows

package windows

import (
	"fmt"
	"image"
	"time"
	"unsafe"

	"github.com/lowvis/magnifier/internal/monitor"
	"github.com/lowvis/magnifier/internal/platform"
)

// gdiCapture mirrors one monitor by blitting the screen DC into a
// persistent DIB section. GDI always produces a frame, so Acquire
// never reports a timeout; a failed blit means the desktop changed
// under us and the session must be rebuilt.
type gdiCapture struct {
	mon      monitor.Descriptor
	width    int
	height   int
	screenDC uintptr
	memDC    uintptr
	bitmap   uintptr
	oldObj   uintptr
	bits     uintptr
	img      *image.RGBA
}

// NewCapture returns an unopened GDI capture backend.
func NewCapture() platform.CaptureBackend { return &gdiCapture{} }

func (c *gdiCapture) Open(m monitor.Descriptor) error {
	c.Close()

	w, h := m.SourceSize()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("monitor %s has empty bounds", m.ID)
	}

	screenDC, _, _ := procGetDC.Call(0)
	if screenDC == 0 {
		return fmt.Errorf("GetDC failed")
	}
	memDC, _, _ := procCreateCompatibleDC.Call(screenDC)
	if memDC == 0 {
		procReleaseDC.Call(0, screenDC)
		return fmt.Errorf("CreateCompatibleDC failed")
	}

	bmi := topDownBitmapInfo(w, h)
	var bits uintptr
	bitmap, _, _ := procCreateDIBSection.Call(memDC,
		uintptr(unsafe.Pointer(&bmi)), dibRGBColors,
		uintptr(unsafe.Pointer(&bits)), 0, 0)
	if bitmap == 0 {
		procDeleteDC.Call(memDC)
		procReleaseDC.Call(0, screenDC)
		return fmt.Errorf("CreateDIBSection %dx%d failed", w, h)
	}
	oldObj, _, _ := procSelectObject.Call(memDC, bitmap)

	c.mon = m
	c.width, c.height = w, h
	c.screenDC, c.memDC = screenDC, memDC
	c.bitmap, c.oldObj, c.bits = bitmap, oldObj, bits
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
	return nil
}

func (c *gdiCapture) Acquire(timeout time.Duration) (*image.RGBA, error) {
	if c.memDC == 0 {
		return nil, fmt.Errorf("capture session not open")
	}

	ret, _, _ := procBitBlt.Call(c.memDC,
		0, 0, uintptr(c.width), uintptr(c.height),
		c.screenDC,
		uintptr(int32(c.mon.Bounds.Min.X)), uintptr(int32(c.mon.Bounds.Min.Y)),
		srcCopy|captureBlt)
	if ret == 0 {
		// Display mode changed or the DC was invalidated.
		return nil, platform.ErrAccessLost
	}

	// BGRA in the DIB, RGBA out.
	n := c.width * c.height * 4
	src := unsafe.Slice((*byte)(unsafe.Pointer(c.bits)), n)
	dst := c.img.Pix
	for i := 0; i < n; i += 4 {
		dst[i] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i]
		dst[i+3] = 0xFF
	}
	return c.img, nil
}

func (c *gdiCapture) Close() error {
	if c.memDC != 0 {
		if c.oldObj != 0 {
			procSelectObject.Call(c.memDC, c.oldObj)
		}
		if c.bitmap != 0 {
			procDeleteObject.Call(c.bitmap)
		}
		procDeleteDC.Call(c.memDC)
	}
	if c.screenDC != 0 {
		procReleaseDC.Call(0, c.screenDC)
	}
	c.screenDC, c.memDC, c.bitmap, c.oldObj, c.bits = 0, 0, 0, 0, 0
	c.img = nil
	return nil
}
