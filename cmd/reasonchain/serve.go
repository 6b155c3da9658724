package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexxia-ai/reasonchain"
	"github.com/nexxia-ai/reasonchain/httpapi"
	"github.com/spf13/cobra"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP (POST /api/process, GET /api/results)",
	RunE:  serve,
}

func serve(cmd *cobra.Command, args []string) error {
	pipeline, err := reasonchain.NewFromSettings(settings, logger)
	if err != nil {
		return err
	}

	var store httpapi.Store
	if settings.Results.File != "" || settings.Results.Directory != "" {
		rs, err := reasonchain.NewResultStoreFromSettings(settings.Results)
		if err != nil {
			return err
		}
		store = rs
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewHandler(pipeline, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
