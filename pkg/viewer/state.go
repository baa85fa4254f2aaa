// Package viewer holds the interactive window's control state: the parameter
// snapshot shown to the user, whether it changed since the last render, and
// when the next render should happen.
//
// It owns no window and no pixels so that the decision logic can be tested
// without a display.
package viewer

import (
	"time"

	"github.com/willbeason/newton-fractal/pkg/render"
)

// Control ranges.
const (
	MinN    = 2
	MaxN    = 30
	MinIter = 3
	MaxIter = 200

	MinSize  = 256
	MaxSize  = 4096
	SizeStep = 256
)

// DefaultDebounce is how long parameters must stay unchanged before a
// non-automatic render starts.
const DefaultDebounce = 150 * time.Millisecond

// State is not safe for concurrent use; the window's update loop owns it.
type State struct {
	params   render.Params
	palettes []string
	palette  int

	auto     bool
	debounce time.Duration

	dirty     bool
	changedAt time.Time
	requested bool
}

// NewState starts from p, clamped into the control ranges, with a render
// pending. Width and height are both set to p.Width.
func NewState(p render.Params, palette string, debounce time.Duration) *State {
	s := &State{
		palettes:  render.PaletteNames(),
		debounce:  debounce,
		requested: true,
	}

	s.params = render.Params{
		Width:   clamp(p.Width, MinSize, MaxSize),
		N:       clamp(p.N, MinN, MaxN),
		MaxIter: clamp(p.MaxIter, MinIter, MaxIter),
	}
	s.params.Height = s.params.Width

	for i, name := range s.palettes {
		if name == palette {
			s.palette = i
		}
	}

	return s
}

// Params returns a copy of the current snapshot.
func (s *State) Params() render.Params {
	return s.params
}

func (s *State) Palette() string {
	return s.palettes[s.palette]
}

func (s *State) Auto() bool {
	return s.auto
}

// Dirty reports whether the parameters changed since the last render.
func (s *State) Dirty() bool {
	return s.dirty
}

// AddN changes the degree by delta within [MinN, MaxN].
func (s *State) AddN(delta int, now time.Time) {
	s.set(&s.params.N, clamp(s.params.N+delta, MinN, MaxN), now)
}

// AddMaxIter changes the iteration cap by delta within [MinIter, MaxIter].
func (s *State) AddMaxIter(delta int, now time.Time) {
	s.set(&s.params.MaxIter, clamp(s.params.MaxIter+delta, MinIter, MaxIter), now)
}

// StepSize grows or shrinks the square resolution by steps of SizeStep.
func (s *State) StepSize(steps int, now time.Time) {
	size := clamp(s.params.Width+steps*SizeStep, MinSize, MaxSize)
	s.set(&s.params.Width, size, now)
	s.params.Height = s.params.Width
}

// CyclePalette switches to the next built-in palette.
func (s *State) CyclePalette(now time.Time) {
	s.palette = (s.palette + 1) % len(s.palettes)
	s.markDirty(now)
}

func (s *State) ToggleAuto() {
	s.auto = !s.auto
}

// RequestRender asks for a render on the next check regardless of
// debouncing.
func (s *State) RequestRender() {
	s.requested = true
}

// ShouldRender reports whether the kernel should run now.
//
// With auto-render on, every frame renders. Otherwise a render happens when
// explicitly requested, or once the parameters have changed and then stayed
// the same for the debounce period.
func (s *State) ShouldRender(now time.Time) bool {
	switch {
	case s.auto, s.requested:
		return true
	case s.dirty:
		return now.Sub(s.changedAt) >= s.debounce
	default:
		return false
	}
}

// Rendered records that the current snapshot has been rendered.
func (s *State) Rendered() {
	s.dirty = false
	s.requested = false
}

func (s *State) set(field *int, value int, now time.Time) {
	if *field == value {
		return
	}
	*field = value
	s.markDirty(now)
}

func (s *State) markDirty(now time.Time) {
	s.dirty = true
	s.changedAt = now
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
