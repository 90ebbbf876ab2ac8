package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the face recognition web server",
	Long: `Start the Face ID web server.
The server exposes enrollment, identification and store management
endpoints under /api/v1 and keeps the face store snapshot on disk.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (string, int) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return host, port
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	rec, err := newRecognizer(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Face store loaded with %d faces from %s\n", rec.Count(), cfg.Store.SnapshotPath)

	// The HTTP migrate endpoint runs without an interactive terminal.
	migrateRunner, cleanup, err := newMigrateRunner(cfg, rec, io.Discard)
	if err != nil {
		return fmt.Errorf("failed to set up migration source: %w", err)
	}
	defer cleanup()
	if migrateRunner != nil {
		fmt.Println("Migration source database connected")
	}

	host, port := resolveServeHostPort(cmd)
	server := web.NewServer(rec, migrateRunner, host, port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face ID API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
