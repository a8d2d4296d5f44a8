package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notelink/notelink/internal/clientstate"
	"github.com/notelink/notelink/internal/config"
	"github.com/notelink/notelink/internal/notes"
	notestore "github.com/notelink/notelink/internal/notes/store"
	"github.com/notelink/notelink/internal/observability"
	"github.com/notelink/notelink/internal/ratelimit"
	"github.com/notelink/notelink/internal/server"
	"github.com/notelink/notelink/internal/server/handlers"
	"github.com/notelink/notelink/internal/storage"
	"github.com/notelink/notelink/internal/webhook"
)

var (
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Ctrl+C (SIGINT) or SIGTERM triggers a graceful shutdown: in-flight
requests get the configured shutdown timeout to finish, then the store
is closed and logs are flushed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serverHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		logLevel := cfg.Logging.Level
		if verbose {
			logLevel = "debug"
		}
		logger, err := observability.NewServerLogger(logLevel, cfg.Logging.Format)
		if err != nil {
			return err
		}
		defer logger.Sync() // nolint:errcheck // stderr sync errors are benign

		logger.Info("initializing server",
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port))

		db, err := notestore.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup
		if err := db.Migrate(cmd.Context()); err != nil {
			return err
		}

		state, err := clientstate.NewFileStore(cfg.State.Path)
		if err != nil {
			return err
		}
		limiter := ratelimit.New(state, logger)

		hook := webhook.NewClient(cfg.Webhook.ChatURL, cfg.Webhook.NoteURL, logger)
		hook.Timeout = cfg.Webhook.Timeout

		var uploader storage.Uploader
		if cfg.Storage.BaseURL != "" {
			bucket := storage.NewBucketClient(cfg.Storage.BaseURL, cfg.Storage.Bucket, cfg.Storage.APIKey)
			bucket.Timeout = cfg.Storage.Timeout
			uploader = bucket
		}

		pipeline := notes.NewPipeline(limiter, uploader, hook, db, logger)
		pipeline.Limit = cfg.Limits.NoteLimit
		pipeline.Window = cfg.Limits.NoteWindow
		pipeline.LegacyNotify = cfg.Webhook.NoteMethod == "GET"

		h := handlers.New(logger)
		h.Chat = hook
		h.Submitter = pipeline
		h.Records = db
		h.Limiter = limiter
		h.Health = db
		h.Version = versionInfo.Version
		h.ChatLimit = cfg.Limits.ChatLimit
		h.ChatWindow = cfg.Limits.ChatWindow

		srv := server.New(cfg.Server, cfg.Auth, h, logger)

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		select {
		case err := <-errChan:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("HTTP server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "0.0.0.0", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")
}
