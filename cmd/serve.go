package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/examforge/examforge/internal/activity"
	"github.com/examforge/examforge/internal/api"
	"github.com/examforge/examforge/internal/examgen"
	"github.com/examforge/examforge/internal/llm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation endpoint and the activity API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides EXAMFORGE_HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.HTTPAddr
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		addr = v
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	provider, err := llm.NewProvider(ctx, cfg.LLM, s.EventRepo())
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	gen := examgen.NewGenerator(provider, cfg.Generator())
	srv := api.NewServer(gen, activity.NewService(s.ActivityRepo()), api.Options{JWTSecret: cfg.JWTSecret})

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Generation blocks on one completion call.
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr, "provider", cfg.LLM.Provider, "model", provider.Model(),
			"db_driver", cfg.DBDriver, "auth", cfg.JWTSecret != "")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
