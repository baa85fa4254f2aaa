// Package render turns Params into an RGBA8 image of the Newton fractal for
// z^n - 1.
//
// Every pixel is computed independently from the Params and its own
// coordinates, so rows are handed out to one worker per CPU and written into
// disjoint parts of a single buffer without locking.
package render

import (
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/willbeason/newton-fractal/pkg/newton"
)

// BytesPerPixel is the size of one RGBA8 pixel in a rendered buffer.
const BytesPerPixel = 4

type options struct {
	palette PaletteFunc
	workers int
	stats   *Stats
}

// An Option changes how a render is carried out but not which pixels are
// computed.
type Option func(*options)

// WithPalette replaces the default Hue coloring.
func WithPalette(p PaletteFunc) Option {
	return func(o *options) {
		if p != nil {
			o.palette = p
		}
	}
}

// WithWorkers sets how many goroutines share the rows. Zero or less means
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithStats makes RenderWith also count the pixels reaching each root, as
// Survey does, and store the result in dst. The counts come from the same
// pass that colors the pixels.
func WithStats(dst *Stats) Option {
	return func(o *options) {
		o.stats = dst
	}
}

func newOptions(opts []Option) options {
	o := options{palette: Hue}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Render returns a freshly allocated buffer of Width*Height RGBA8 pixels,
// row-major from the top-left, colored with the default palette.
//
// Render panics if p does not pass Validate.
func Render(p Params) []byte {
	return RenderWith(p)
}

// RenderWith is Render with options.
func RenderWith(p Params, opts ...Option) []byte {
	mustValidate(p)
	o := newOptions(opts)

	viewport := NewViewport(p.Width, p.Height)
	palette := o.palette(p.N, p.MaxIter)

	stride := p.Width * BytesPerPixel
	buf := make([]byte, p.Height*stride)

	workers := resolveWorkers(o.workers, p.Height)
	var partial []Stats
	if o.stats != nil {
		partial = newPartials(workers, p.N)
	}

	forEachRow(p.Height, workers, func(w, y int) {
		row := buf[y*stride : (y+1)*stride]
		for x := 0; x < p.Width; x++ {
			r := newton.Iterate(viewport.At(x, y), p.N, p.MaxIter)
			if partial != nil {
				partial[w].add(r)
			}
			c := palette(r.Root, r.Iterations)

			i := x * BytesPerPixel
			row[i] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = c.A
		}
	})

	if o.stats != nil {
		*o.stats = merge(partial, p.N)
	}

	return buf
}

// Image renders p and wraps the buffer as an image without copying it.
func Image(p Params, opts ...Option) *image.RGBA {
	return &image.RGBA{
		Pix:    RenderWith(p, opts...),
		Stride: p.Width * BytesPerPixel,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}

func mustValidate(p Params) {
	if err := p.Validate(); err != nil {
		panic(err)
	}
}

func resolveWorkers(workers, rows int) int {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return max(1, min(workers, rows))
}

// forEachRow calls fn once for every row in [0, rows), spread over workers
// goroutines. fn also receives the index of the worker calling it, in
// [0, resolveWorkers(workers, rows)), so callers can keep per-worker state.
func forEachRow(rows, workers int, fn func(worker, y int)) {
	workers = resolveWorkers(workers, rows)

	yChannel := make(chan int)
	go func() {
		for y := 0; y < rows; y++ {
			yChannel <- y
		}
		close(yChannel)
	}()

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for y := range yChannel {
				fn(w, y)
			}
			return nil
		})
	}

	// Rows cannot fail.
	_ = g.Wait()
}
