package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/willbeason/newton-fractal/pkg/config"
	"github.com/willbeason/newton-fractal/pkg/logging"
	"github.com/willbeason/newton-fractal/pkg/render"
	"github.com/willbeason/newton-fractal/pkg/viewer"
)

const (
	windowSize = 800
	iterStep   = 1
)

const help = "[ ] n   - = max iter   , . size   A auto   R render   P palette"

func mainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewer",
		Short: "Explore the Newton fractal of z^n - 1 in a window",
		Args:  cobra.ExactArgs(0),
		RunE:  runCmd,
	}

	config.AddRenderFlags(cmd.Flags())
	cmd.Flags().Duration("debounce", viewer.DefaultDebounce, "how long parameters must settle before a render")

	return cmd
}

func runCmd(cmd *cobra.Command, _ []string) error {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	v := viper.New()
	err := config.Bind(v, cmd.Flags())
	if err != nil {
		return err
	}

	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	g := &game{
		log:     log,
		state:   viewer.NewState(cfg.Params(), cfg.Palette, debounce),
		workers: cfg.Workers,
	}

	ebiten.SetWindowSize(windowSize, windowSize)
	ebiten.SetWindowTitle("Newton Fractal")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return ebiten.RunGame(g)
}

type game struct {
	log     *logrus.Logger
	state   *viewer.State
	workers int

	frame   *ebiten.Image
	elapsed time.Duration
}

func (g *game) Update() error {
	now := time.Now()
	s := g.state

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		s.AddN(-1, now)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		s.AddN(1, now)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		s.AddMaxIter(-iterStep, now)
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		s.AddMaxIter(iterStep, now)
	case inpututil.IsKeyJustPressed(ebiten.KeyComma):
		s.StepSize(-1, now)
	case inpututil.IsKeyJustPressed(ebiten.KeyPeriod):
		s.StepSize(1, now)
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		s.CyclePalette(now)
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		s.ToggleAuto()
	case inpututil.IsKeyJustPressed(ebiten.KeyR), inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		s.RequestRender()
	}

	if s.ShouldRender(now) {
		g.render()
	}

	return nil
}

func (g *game) render() {
	p := g.state.Params()

	palette, err := render.LookupPalette(g.state.Palette())
	if err != nil {
		// Palette names come from the registry, so this cannot happen.
		panic(err)
	}

	start := time.Now()
	pix := render.RenderWith(p, render.WithPalette(palette), render.WithWorkers(g.workers))
	g.elapsed = time.Since(start)

	if g.frame != nil {
		b := g.frame.Bounds()
		if b.Dx() != p.Width || b.Dy() != p.Height {
			g.frame.Deallocate()
			g.frame = nil
		}
	}
	if g.frame == nil {
		g.frame = ebiten.NewImage(p.Width, p.Height)
	}
	g.frame.WritePixels(pix)

	g.state.Rendered()

	ms := float64(g.elapsed) / float64(time.Millisecond)
	ebiten.SetWindowTitle(fmt.Sprintf("Newton Fractal [%.2f ms]", ms))

	g.log.WithFields(logrus.Fields{
		"size":     p.Width,
		"n":        p.N,
		"max_iter": p.MaxIter,
		"palette":  g.state.Palette(),
		"elapsed":  g.elapsed,
	}).Debug("rendered")
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.frame != nil {
		sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
		fw, fh := g.frame.Bounds().Dx(), g.frame.Bounds().Dy()

		scale := min(float64(sw)/float64(fw), float64(sh)/float64(fh))

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate((float64(sw)-scale*float64(fw))/2, (float64(sh)-scale*float64(fh))/2)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(g.frame, op)
	}

	p := g.state.Params()
	status := fmt.Sprintf("n=%d  max_iter=%d  size=%d  palette=%s  auto=%t",
		p.N, p.MaxIter, p.Width, g.state.Palette(), g.state.Auto())
	if g.state.Dirty() {
		status += "  *"
	}
	ebitenutil.DebugPrint(screen, status+"\n"+help)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func main() {
	ctx := context.Background()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
