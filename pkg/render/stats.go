package render

import "github.com/willbeason/newton-fractal/pkg/newton"

// Stats summarizes which roots the pixels of a render converged to.
type Stats struct {
	// Counts[k] is the number of pixels that converged to root k.
	Counts []int

	// NonConverged is the number of pixels with no root.
	NonConverged int

	// TotalIterations sums the iterations of converged pixels.
	TotalIterations int64
}

// Survey classifies every pixel of p exactly as Render does but counts the
// results instead of coloring them. Use WithStats to get both from one pass.
func Survey(p Params, opts ...Option) Stats {
	mustValidate(p)
	o := newOptions(opts)

	viewport := NewViewport(p.Width, p.Height)
	workers := resolveWorkers(o.workers, p.Height)
	partial := newPartials(workers, p.N)

	forEachRow(p.Height, workers, func(w, y int) {
		s := &partial[w]
		for x := 0; x < p.Width; x++ {
			s.add(newton.Iterate(viewport.At(x, y), p.N, p.MaxIter))
		}
	})

	return merge(partial, p.N)
}

// newPartials returns one zeroed Stats per worker so that workers never share
// counters.
func newPartials(workers, n int) []Stats {
	partial := make([]Stats, workers)
	for i := range partial {
		partial[i].Counts = make([]int, n)
	}

	return partial
}

func (s *Stats) add(r newton.Result) {
	if !r.Converged() {
		s.NonConverged++
		return
	}
	s.Counts[r.Root]++
	s.TotalIterations += int64(r.Iterations)
}

func merge(partial []Stats, n int) Stats {
	total := Stats{Counts: make([]int, n)}
	for _, s := range partial {
		for k, c := range s.Counts {
			total.Counts[k] += c
		}
		total.NonConverged += s.NonConverged
		total.TotalIterations += s.TotalIterations
	}

	return total
}

// Converged is the number of pixels that reached some root.
func (s Stats) Converged() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}

	return n
}

// Basins is the number of roots reached by at least minSupport pixels.
func (s Stats) Basins(minSupport int) int {
	n := 0
	for _, c := range s.Counts {
		if c >= minSupport && c > 0 {
			n++
		}
	}

	return n
}

// MeanIterations is the average iteration count over converged pixels.
func (s Stats) MeanIterations() float64 {
	converged := s.Converged()
	if converged == 0 {
		return 0
	}

	return float64(s.TotalIterations) / float64(converged)
}
