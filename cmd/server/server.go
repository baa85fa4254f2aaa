package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/willbeason/newton-fractal/pkg/config"
	"github.com/willbeason/newton-fractal/pkg/logging"
	"github.com/willbeason/newton-fractal/pkg/server"
)

const shutdownTimeout = 10 * time.Second

func mainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve Newton fractal renders over HTTP and websockets",
		Args:  cobra.ExactArgs(0),
		RunE:  runCmd,
	}

	config.AddRenderFlags(cmd.Flags())
	config.AddServerFlags(cmd.Flags())
	cmd.Flags().StringSlice("origin", nil, "extra browser origins allowed to open websockets")

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

	origins, err := cmd.Flags().GetStringSlice("origin")
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	s := server.New(log, cfg.Params(), cfg.Palette,
		server.WithWorkers(cfg.Workers),
		server.WithMaxSide(cfg.MaxSide),
		server.WithConcurrentRenders(cfg.MaxRenders),
		server.WithOriginPatterns(origins...),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":        cfg.Addr,
			"max_side":    cfg.MaxSide,
			"max_renders": cfg.MaxRenders,
		}).Info("listening")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err = <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		return err
	}

	err = <-errs
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func main() {
	ctx := context.Background()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
