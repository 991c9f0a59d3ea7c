package cli

import (
	"context"
	"time"

	"civic-quiz-service/internal/app"
	"civic-quiz-service/internal/config"
	"civic-quiz-service/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSyncCmd drains the offline result queue into the online store.
func NewSyncCmd(configPath *string) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Submit results that were queued while the result store was unreachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), *configPath, timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "maximum time to spend draining the queue")
	return cmd
}

func runSync(ctx context.Context, configPath string, timeout time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Redis.Addr == "" || cfg.Postgres.URL == "" {
		logger.Warn("sync needs both redis and postgres configured; nothing to do")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	synced, err := app.SyncPending(ctx, b.offline, b.online, logger)
	logger.Info("offline sync finished", zap.Int("synced", synced), zap.Error(err))
	return err
}
