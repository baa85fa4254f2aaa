package render

import (
	"bytes"
	"testing"
)

func TestSurvey_RootCoverage(t *testing.T) {
	for n := 2; n <= 8; n++ {
		s := Survey(Params{Width: 128, Height: 128, N: n, MaxIter: 60})

		if len(s.Counts) != n {
			t.Fatalf("n=%d: len(Counts) = %d", n, len(s.Counts))
		}
		for k, c := range s.Counts {
			if c == 0 {
				t.Errorf("n=%d: no pixel reached root %d", n, k)
			}
		}
		if got := s.Converged() + s.NonConverged; got != 128*128 {
			t.Errorf("n=%d: counted %d pixels, want %d", n, got, 128*128)
		}
	}
}

func TestSurvey_MaxIterOne(t *testing.T) {
	p := Params{Width: 256, Height: 256, N: 3, MaxIter: 1}
	s := Survey(p)

	// Only the pixel sitting exactly on 1 starts within tolerance of a root.
	if got := s.Converged(); got < 1 || got > p.Pixels()/100 {
		t.Errorf("Converged() = %d with max_iter=1", got)
	}
	if s.Counts[0] < 1 {
		t.Error("the pixel on root 0 did not converge immediately")
	}
	if s.TotalIterations != 0 {
		t.Errorf("TotalIterations = %d, want 0", s.TotalIterations)
	}
}

func TestSurvey_MonotoneInMaxIter(t *testing.T) {
	previous := -1
	for _, maxIter := range []int{1, 2, 3, 5, 10, 20, 40, 80} {
		s := Survey(Params{Width: 96, Height: 96, N: 5, MaxIter: maxIter})

		if got := s.Converged(); got < previous {
			t.Errorf("max_iter=%d: %d pixels converged, fewer than %d at a lower cap", maxIter, got, previous)
		} else {
			previous = got
		}
	}
}

func TestSurvey_BasinsGrowWithN(t *testing.T) {
	const size = 128
	minSupport := size * size / 100

	three := Survey(Params{Width: size, Height: size, N: 3, MaxIter: 60}).Basins(minSupport)
	seven := Survey(Params{Width: size, Height: size, N: 7, MaxIter: 60}).Basins(minSupport)

	if three != 3 {
		t.Errorf("n=3: Basins = %d, want 3", three)
	}
	if seven != 7 {
		t.Errorf("n=7: Basins = %d, want 7", seven)
	}
}

func TestSurvey_WorkersAgree(t *testing.T) {
	p := Params{Width: 80, Height: 50, N: 6, MaxIter: 30}
	want := Survey(p, WithWorkers(1))

	for _, workers := range []int{2, 7, 64} {
		got := Survey(p, WithWorkers(workers))
		if got.NonConverged != want.NonConverged || got.TotalIterations != want.TotalIterations {
			t.Errorf("%d workers: %+v, want %+v", workers, got, want)
		}
		for k := range want.Counts {
			if got.Counts[k] != want.Counts[k] {
				t.Errorf("%d workers: Counts[%d] = %d, want %d", workers, k, got.Counts[k], want.Counts[k])
			}
		}
	}
}

func TestStats_MeanIterations(t *testing.T) {
	s := Stats{Counts: []int{2, 2}, TotalIterations: 12}
	if got := s.MeanIterations(); got != 3 {
		t.Errorf("MeanIterations() = %v, want 3", got)
	}

	if got := (Stats{Counts: []int{0, 0}, NonConverged: 5}).MeanIterations(); got != 0 {
		t.Errorf("MeanIterations() with nothing converged = %v, want 0", got)
	}
}

func TestRenderWith_Stats(t *testing.T) {
	p := Params{Width: 90, Height: 60, N: 7, MaxIter: 200}
	want := Survey(p)

	for _, workers := range []int{1, 4} {
		var got Stats
		buf := RenderWith(p, WithStats(&got), WithWorkers(workers))

		if len(buf) != p.Pixels()*BytesPerPixel {
			t.Fatalf("len(buf) = %d, want %d", len(buf), p.Pixels()*BytesPerPixel)
		}
		if got.NonConverged != want.NonConverged || got.TotalIterations != want.TotalIterations {
			t.Errorf("%d workers: stats = %+v, Survey = %+v", workers, got, want)
		}
		for k := range want.Counts {
			if got.Counts[k] != want.Counts[k] {
				t.Errorf("%d workers: Counts[%d] = %d, want %d", workers, k, got.Counts[k], want.Counts[k])
			}
		}
	}

	// Counting does not change the pixels.
	var stats Stats
	if !bytes.Equal(RenderWith(p, WithStats(&stats)), Render(p)) {
		t.Error("WithStats changed the rendered pixels")
	}
}
