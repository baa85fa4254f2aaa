package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/willbeason/newton-fractal/pkg/config"
	"github.com/willbeason/newton-fractal/pkg/logging"
	"github.com/willbeason/newton-fractal/pkg/output"
	"github.com/willbeason/newton-fractal/pkg/render"
)

func mainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newton",
		Short: "Render the Newton fractal of z^n - 1 to an image file",
		Args:  cobra.ExactArgs(0),
		RunE:  runCmd,
	}

	config.AddRenderFlags(cmd.Flags())
	config.AddOutputFlags(cmd.Flags())

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

	log, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	palette, err := render.LookupPalette(cfg.Palette)
	if err != nil {
		return err
	}

	p := cfg.Params()
	var stats render.Stats
	opts := []render.Option{render.WithPalette(palette), render.WithWorkers(cfg.Workers)}
	if cfg.Manifest != "" {
		opts = append(opts, render.WithStats(&stats))
	}

	fields := logrus.Fields{
		"width":    p.Width,
		"height":   p.Height,
		"n":        p.N,
		"max_iter": p.MaxIter,
		"palette":  cfg.Palette,
	}
	log.WithFields(fields).Info("rendering")

	start := time.Now()
	img := render.Image(p, opts...)
	elapsed := time.Since(start)

	log.WithField("elapsed", elapsed).Info("rendered")

	err = writeImage(cfg.Out, cfg.Format, img)
	if err != nil {
		return err
	}
	log.WithField("path", cfg.Out).Info("wrote image")

	if cfg.Manifest == "" {
		return nil
	}

	m := output.NewManifest(p, cfg.Palette, stats)
	m.Output = cfg.Out
	m.Format = cfg.Format
	m.RenderedAt = start.UTC()
	m.ElapsedMS = float64(elapsed) / float64(time.Millisecond)

	err = writeManifest(cfg.Manifest, m)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"path":   cfg.Manifest,
		"basins": m.Basins,
	}).Info("wrote manifest")

	return nil
}

func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		err := os.MkdirAll(dir, os.ModePerm)
		if err != nil {
			return nil, err
		}
	}

	return os.Create(path)
}

func writeImage(path, format string, img *image.RGBA) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = output.Encode(f, img, format)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}

func writeManifest(path string, m output.Manifest) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = output.WriteManifest(f, m)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}

func main() {
	ctx := context.Background()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
