package output

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/willbeason/newton-fractal/pkg/render"
)

// Manifest records how an image was rendered and what it contains.
type Manifest struct {
	Output     string    `yaml:"output"`
	Format     string    `yaml:"format"`
	RenderedAt time.Time `yaml:"rendered_at"`
	ElapsedMS  float64   `yaml:"elapsed_ms"`

	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	N       int    `yaml:"n"`
	MaxIter int    `yaml:"max_iter"`
	Palette string `yaml:"palette"`

	Basins         int     `yaml:"basins"`
	RootPixels     []int   `yaml:"root_pixels,flow"`
	NonConverged   int     `yaml:"non_converged"`
	MeanIterations float64 `yaml:"mean_iterations"`
}

// NewManifest describes a render of p whose pixels were summarized in s.
// Roots count as basins once they hold at least 0.1% of the pixels.
func NewManifest(p render.Params, palette string, s render.Stats) Manifest {
	return Manifest{
		Width:          p.Width,
		Height:         p.Height,
		N:              p.N,
		MaxIter:        p.MaxIter,
		Palette:        palette,
		Basins:         s.Basins(max(1, p.Pixels()/1000)),
		RootPixels:     s.Counts,
		NonConverged:   s.NonConverged,
		MeanIterations: s.MeanIterations(),
	}
}

func WriteManifest(w io.Writer, m Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	return enc.Close()
}
