package commands

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/sidelined/internal/api/rest"
	"github.com/fortuna/sidelined/internal/metrics"
	"github.com/fortuna/sidelined/internal/store"
	"github.com/spf13/cobra"
)

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config, 8080)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--port <port>]",
	Short: "Serves wins lost per season over HTTP, with Prometheus metrics.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Printf("Starting %s v%s", appName, appVersion)

		port := cfg.RESTPort
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := metrics.NewManager()
		a, err := buildApp(cfg, m)
		if err != nil {
			return err
		}
		defer a.Close()

		var archive rest.SeasonArchive
		if cfg.AtlasDSN != "" {
			db, err := a.database(ctx)
			if err != nil {
				return err
			}
			archive = store.NewWinsLostRepository(db)
		}

		server := rest.NewServer(port, a.runner, archive, m, nil)
		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		log.Printf("✓ REST API server listening on :%d", port)
		log.Printf("  Metrics: http://0.0.0.0:%d/metrics", port)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}

		log.Println("✓ Shutdown complete")
		return nil
	},
}
