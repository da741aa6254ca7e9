package monitor

import (
	"errors"
	"image"
	"testing"
)

type fakeEnum struct {
	monitors []Descriptor
	err      error
}

func (f *fakeEnum) Enumerate() ([]Descriptor, error) { return f.monitors, f.err }

func twoMonitors() []Descriptor {
	return []Descriptor{
		{ID: `\\.\DISPLAY1`, Bounds: image.Rect(0, 0, 1920, 1080), Scale: 1.0, Primary: true},
		{ID: `\\.\DISPLAY2`, Bounds: image.Rect(1920, 0, 3840, 1080), Scale: 1.0},
	}
}

func TestNewManagerEnumerates(t *testing.T) {
	m, err := NewManager(&fakeEnum{monitors: twoMonitors()})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.All()) != 2 {
		t.Fatalf("got %d monitors, want 2", len(m.All()))
	}

	if _, err := NewManager(&fakeEnum{err: errors.New("no displays")}); err == nil {
		t.Error("enumeration failure should propagate")
	}
}

func TestFindByIDCaseInsensitive(t *testing.T) {
	m, err := NewManager(&fakeEnum{monitors: twoMonitors()})
	if err != nil {
		t.Fatal(err)
	}
	d, ok := m.FindByID(`\\.\display2`)
	if !ok || d.ID != `\\.\DISPLAY2` {
		t.Errorf("FindByID = (%+v, %v)", d, ok)
	}
	if _, ok := m.FindByID(`\\.\DISPLAY9`); ok {
		t.Error("unknown ID should not resolve")
	}
}

func TestPickDefaults(t *testing.T) {
	m, err := NewManager(&fakeEnum{monitors: twoMonitors()})
	if err != nil {
		t.Fatal(err)
	}
	src, dst, err := m.Pick("", "")
	if err != nil {
		t.Fatal(err)
	}
	if !src.Primary {
		t.Errorf("default source should be the primary, got %s", src.ID)
	}
	if dst.ID != `\\.\DISPLAY2` {
		t.Errorf("default dest = %s, want DISPLAY2", dst.ID)
	}
}

func TestPickConfiguredIDsWin(t *testing.T) {
	m, err := NewManager(&fakeEnum{monitors: twoMonitors()})
	if err != nil {
		t.Fatal(err)
	}
	src, dst, err := m.Pick(`\\.\DISPLAY2`, `\\.\DISPLAY1`)
	if err != nil {
		t.Fatal(err)
	}
	if src.ID != `\\.\DISPLAY2` || dst.ID != `\\.\DISPLAY1` {
		t.Errorf("Pick = (%s, %s), want configured pair", src.ID, dst.ID)
	}
}

func TestPickUnknownIDFallsBack(t *testing.T) {
	m, err := NewManager(&fakeEnum{monitors: twoMonitors()})
	if err != nil {
		t.Fatal(err)
	}
	src, dst, err := m.Pick(`\\.\DISPLAY9`, "")
	if err != nil {
		t.Fatal(err)
	}
	if src.ID != `\\.\DISPLAY1` || dst.ID != `\\.\DISPLAY2` {
		t.Errorf("Pick = (%s, %s), want primary defaults", src.ID, dst.ID)
	}
}

func TestPickNeedsTwoMonitors(t *testing.T) {
	m, err := NewManager(&fakeEnum{monitors: twoMonitors()[:1]})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.Pick("", ""); err == nil {
		t.Error("single monitor should be rejected")
	}
}

func TestSourceSize(t *testing.T) {
	d := Descriptor{Bounds: image.Rect(0, 0, 960, 540), Scale: 2.0}
	w, h := d.SourceSize()
	if w != 1920 || h != 1080 {
		t.Errorf("SourceSize = %dx%d, want 1920x1080", w, h)
	}
}
