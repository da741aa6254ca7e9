//go:build windows

package windows

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/lowvis/magnifier/internal/platform"
)

// cursorReader reads the system pointer via GetCursorInfo and renders
// its glyph with DrawIconEx. The rendered glyph is cached per cursor
// handle; callers see the cache invalidated through CursorState.Shape.
type cursorReader struct {
	cachedShape uintptr
	cachedGlyph *image.RGBA
	cachedHot   image.Point
}

// NewCursorReader returns the Win32 cursor reader.
func NewCursorReader() platform.CursorReader { return &cursorReader{} }

func (r *cursorReader) ReadCursor() (platform.CursorState, error) {
	var ci cursorInfo
	ci.CbSize = uint32(unsafe.Sizeof(ci))
	ret, _, _ := procGetCursorInfo.Call(uintptr(unsafe.Pointer(&ci)))
	if ret == 0 {
		return platform.CursorState{}, fmt.Errorf("GetCursorInfo failed")
	}

	state := platform.CursorState{
		Pos:     image.Pt(int(ci.PtScreenPos.X), int(ci.PtScreenPos.Y)),
		Visible: ci.Flags&cursorShowing != 0,
	}
	if !state.Visible || ci.HCursor == 0 {
		return state, nil
	}

	state.Shape = uintptr(ci.HCursor)
	if state.Shape != r.cachedShape {
		glyph, hot, err := renderCursor(uintptr(ci.HCursor))
		if err != nil {
			// Leave the glyph empty; position and visibility still hold.
			return state, nil
		}
		r.cachedShape, r.cachedGlyph, r.cachedHot = state.Shape, glyph, hot
	}
	state.Glyph = r.cachedGlyph
	state.Hotspot = r.cachedHot
	return state, nil
}

// renderCursor draws the cursor into an offscreen 32bpp DIB and reads
// the pixels back.
func renderCursor(hCursor uintptr) (*image.RGBA, image.Point, error) {
	var ii iconInfo
	ret, _, _ := procGetIconInfo.Call(hCursor, uintptr(unsafe.Pointer(&ii)))
	if ret == 0 {
		return nil, image.Point{}, fmt.Errorf("GetIconInfo failed")
	}
	if ii.HbmMask != 0 {
		defer procDeleteObject.Call(uintptr(ii.HbmMask))
	}
	if ii.HbmColor != 0 {
		defer procDeleteObject.Call(uintptr(ii.HbmColor))
	}
	hot := image.Pt(int(ii.XHotspot), int(ii.YHotspot))

	wMetric, _, _ := procGetSystemMetrics.Call(smCxCursor)
	hMetric, _, _ := procGetSystemMetrics.Call(smCyCursor)
	w, h := int(wMetric), int(hMetric)
	if w <= 0 || h <= 0 {
		w, h = 32, 32
	}

	memDC, _, _ := procCreateCompatibleDC.Call(0)
	if memDC == 0 {
		return nil, hot, fmt.Errorf("CreateCompatibleDC failed")
	}
	defer procDeleteDC.Call(memDC)

	bmi := topDownBitmapInfo(w, h)
	var bits uintptr
	bitmap, _, _ := procCreateDIBSection.Call(memDC,
		uintptr(unsafe.Pointer(&bmi)), dibRGBColors,
		uintptr(unsafe.Pointer(&bits)), 0, 0)
	if bitmap == 0 {
		return nil, hot, fmt.Errorf("CreateDIBSection failed")
	}
	defer procDeleteObject.Call(bitmap)

	oldObj, _, _ := procSelectObject.Call(memDC, bitmap)
	defer procSelectObject.Call(memDC, oldObj)

	ret, _, _ = procDrawIconEx.Call(memDC, 0, 0, hCursor,
		uintptr(w), uintptr(h), 0, 0, diNormal)
	if ret == 0 {
		return nil, hot, fmt.Errorf("DrawIconEx failed")
	}

	n := w * h * 4
	src := unsafe.Slice((*byte)(unsafe.Pointer(bits)), n)
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	hasAlpha := false
	for i := 3; i < n; i += 4 {
		if src[i] != 0 {
			hasAlpha = true
			break
		}
	}
	for i := 0; i < n; i += 4 {
		b, g, rr, a := src[i], src[i+1], src[i+2], src[i+3]
		if !hasAlpha {
			// Monochrome cursor: DrawIconEx leaves alpha zero. Treat any
			// painted pixel as opaque.
			if b != 0 || g != 0 || rr != 0 {
				a = 0xFF
			}
		}
		img.Pix[i] = rr
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img, hot, nil
}
