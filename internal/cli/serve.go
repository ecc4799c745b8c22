package cli

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

	"github.com/ppiankov/threatstage/internal/playback"
	"github.com/ppiankov/threatstage/internal/server"
)

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config listen_addr)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Serves the scenario pipeline over HTTP: run management, history, script generation, response plans, paced log playback, health, and Prometheus metrics.\nSupports hot-reload of the alert webhook config.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	orc, cfg, err := buildOrchestrator()
	if err != nil {
		return err
	}
	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	player := playback.NewPlayer(playback.WithInterval(cfg.PlaybackInterval))
	srv := server.New(addr, orc, player, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start hot-reload watcher for the config file
	reloader, err := server.NewReloader(orc, configPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: hot-reload disabled: %v\n", err)
	} else {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down api server...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
