package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zombar/docready/internal/api"
	"github.com/zombar/docready/internal/converter"
	"github.com/zombar/docready/internal/database"
	"github.com/zombar/docready/internal/metrics"
	"github.com/zombar/docready/internal/queue"
	"github.com/zombar/docready/internal/service"
	"github.com/zombar/docready/internal/tracing"
	"github.com/zombar/docready/pkg/logging"
)

func main() {
	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("docready service initializing", "version", "1.0.0")

	// Get default values from environment variables, with fallbacks
	portDefault := getEnv("PORT", "8080")
	dbPathDefault := getEnv("DB_PATH", "docready.db")
	redisAddrDefault := getEnv("REDIS_ADDR", "localhost:6379")
	uploadDirDefault := getEnv("UPLOAD_DIR", "uploads")
	convertDirDefault := getEnv("CONVERT_DIR", "converted")
	sofficePathDefault := getEnv("SOFFICE_PATH", "")
	otlpEndpointDefault := getEnv("OTLP_ENDPOINT", "")
	useQueueDefault := getEnvBool("USE_QUEUE", true)

	var (
		port         = flag.String("port", portDefault, "Server port (env: PORT)")
		dbPath       = flag.String("db", dbPathDefault, "Database file path (env: DB_PATH)")
		redisAddr    = flag.String("redis", redisAddrDefault, "Redis address for the task queue (env: REDIS_ADDR)")
		uploadDir    = flag.String("upload-dir", uploadDirDefault, "Directory for uploaded documents (env: UPLOAD_DIR)")
		convertDir   = flag.String("convert-dir", convertDirDefault, "Directory for converted documents (env: CONVERT_DIR)")
		sofficePath  = flag.String("soffice", sofficePathDefault, "Path to the LibreOffice binary (env: SOFFICE_PATH)")
		otlpEndpoint = flag.String("otlp-endpoint", otlpEndpointDefault, "OTLP trace collector endpoint (env: OTLP_ENDPOINT)")
		useQueue     = flag.Bool("use-queue", useQueueDefault, "Process documents through the Redis queue (env: USE_QUEUE)")
	)
	flag.Parse()

	// Initialize tracing
	shutdownTracer, err := tracing.InitTracer(context.Background(), "docready", *otlpEndpoint)
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
		logger.Info("tracing initialized successfully")
	}

	// Initialize database
	db, err := database.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "database_path", *dbPath)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize converter
	conv := converter.New(*sofficePath)
	if conv.Available() {
		logger.Info("document converter available")
	} else {
		logger.Warn("document converter not found, only .docx uploads will be accepted")
	}

	m := metrics.New()
	svc := service.New(db, conv, m, *convertDir)

	// Queue worker and client share the process; with the queue disabled
	// uploads are processed inline on the request path.
	var queueClient api.QueueClient
	if *useQueue {
		client := queue.NewClient(*redisAddr)
		defer client.Close()
		queueClient = client

		worker := queue.NewWorker(*redisAddr, svc, 4)
		go func() {
			if err := worker.Run(); err != nil {
				logger.Error("queue worker failed", "error", err)
				os.Exit(1)
			}
		}()
		defer worker.Shutdown()
		logger.Info("queue worker started", "redis", *redisAddr)
	} else {
		logger.Info("queue disabled, processing documents inline")
	}

	// Initialize API handler
	apiHandler := api.NewHandler(db, svc, conv, m, queueClient, *uploadDir)

	// Wrap handler with HTTP logging middleware
	handler := logging.HTTPLoggingMiddleware(logger)(apiHandler)

	// Create server with extended timeouts for conversion-heavy uploads
	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("docready service starting",
			"port", *port,
			"database", *dbPath,
			"upload_dir", *uploadDir,
			"queue_enabled", *useQueue,
			"converter_available", conv.Available(),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
