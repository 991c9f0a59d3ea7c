package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civic-quiz-service/internal/app"
	"civic-quiz-service/internal/config"
	"civic-quiz-service/internal/domain"
	"civic-quiz-service/internal/logging"
	"civic-quiz-service/internal/metrics"
	transport "civic-quiz-service/internal/transport/http"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	collector := metrics.New()
	recorder := app.NewResultRecorder(b.online, b.offline,
		config.TTLDuration(cfg.Submit.Timeout, 5*time.Second), logger, collector)
	service := app.NewQuizService(b.sessions, b.quizzes, recorder,
		app.WithBudget(cfg.BudgetSeconds(domain.DefaultBudgetSeconds)),
		app.WithTickInterval(config.TTLDuration(cfg.Quiz.Tick, time.Second)),
		app.WithCompletedRetention(config.TTLDuration(cfg.Quiz.Retention, app.DefaultCompletedRetention)),
		app.WithLogger(logger),
		app.WithMetrics(collector),
	)
	wsHandler := transport.NewWSHandler(service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quiz service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes backs the loader when no database is configured.
func sampleQuizzes() map[string]domain.Quiz {
	quiz := app.DefaultQuiz()
	return map[string]domain.Quiz{quiz.ID: quiz}
}
