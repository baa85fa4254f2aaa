package viewer

import (
	"testing"
	"time"

	"github.com/willbeason/newton-fractal/pkg/render"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestState() *State {
	s := NewState(render.Params{Width: 1024, Height: 1024, N: 5, MaxIter: 60}, "hue", 100*time.Millisecond)
	s.Rendered()
	return s
}

func TestNewState_Clamps(t *testing.T) {
	s := NewState(render.Params{Width: 10000, Height: 3, N: 1, MaxIter: 1000}, "classic", 0)

	want := render.Params{Width: MaxSize, Height: MaxSize, N: MinN, MaxIter: MaxIter}
	if got := s.Params(); got != want {
		t.Errorf("Params() = %+v, want %+v", got, want)
	}
	if got := s.Palette(); got != "classic" {
		t.Errorf("Palette() = %q, want classic", got)
	}
	if !s.ShouldRender(t0) {
		t.Error("a new State should render immediately")
	}
}

func TestState_NoChangeNoRender(t *testing.T) {
	s := newTestState()
	if s.ShouldRender(t0.Add(time.Hour)) {
		t.Error("rendered without any change")
	}
}

func TestState_Debounce(t *testing.T) {
	s := newTestState()

	s.AddN(1, t0)
	if s.ShouldRender(t0.Add(50 * time.Millisecond)) {
		t.Error("rendered inside the debounce window")
	}

	// Another change restarts the window.
	s.AddMaxIter(10, t0.Add(80*time.Millisecond))
	if s.ShouldRender(t0.Add(150 * time.Millisecond)) {
		t.Error("rendered before the restarted window closed")
	}
	if !s.ShouldRender(t0.Add(180 * time.Millisecond)) {
		t.Error("did not render after the window closed")
	}

	want := render.Params{Width: 1024, Height: 1024, N: 6, MaxIter: 70}
	if got := s.Params(); got != want {
		t.Errorf("Params() = %+v, want %+v", got, want)
	}

	s.Rendered()
	if s.Dirty() || s.ShouldRender(t0.Add(time.Second)) {
		t.Error("still pending after Rendered")
	}
}

func TestState_ClampedChangeIsNotDirty(t *testing.T) {
	s := NewState(render.Params{Width: MinSize, N: MaxN, MaxIter: MaxIter}, "hue", 0)
	s.Rendered()

	s.AddN(5, t0)
	s.AddMaxIter(1, t0)
	s.StepSize(-1, t0)

	if s.Dirty() {
		t.Errorf("changes past the limits marked the state dirty: %+v", s.Params())
	}
}

func TestState_StepSize(t *testing.T) {
	s := newTestState()
	s.StepSize(2, t0)

	if got := s.Params(); got.Width != 1536 || got.Height != 1536 {
		t.Errorf("size = %dx%d, want 1536x1536", got.Width, got.Height)
	}
}

func TestState_Auto(t *testing.T) {
	s := newTestState()
	s.ToggleAuto()

	for i := 0; i < 3; i++ {
		if !s.ShouldRender(t0) {
			t.Fatal("auto-render skipped a frame")
		}
		s.Rendered()
	}

	s.ToggleAuto()
	if s.ShouldRender(t0) {
		t.Error("rendered after auto-render was turned off")
	}
}

func TestState_RequestRender(t *testing.T) {
	s := newTestState()
	s.AddN(1, t0)
	s.RequestRender()

	if !s.ShouldRender(t0) {
		t.Error("an explicit request should skip the debounce window")
	}
}

func TestState_CyclePalette(t *testing.T) {
	s := newTestState()
	names := render.PaletteNames()

	for i := 0; i < len(names); i++ {
		s.CyclePalette(t0)
	}
	if got := s.Palette(); got != "hue" {
		t.Errorf("Palette() after a full cycle = %q, want hue", got)
	}
	if !s.Dirty() {
		t.Error("changing the palette did not mark the state dirty")
	}
}
