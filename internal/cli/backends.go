package cli

import (
	"context"
	"fmt"
	"time"

	"civic-quiz-service/internal/app"
	"civic-quiz-service/internal/config"
	"civic-quiz-service/internal/infra/memory"
	pgstore "civic-quiz-service/internal/infra/postgres"
	redisstore "civic-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// backends holds the storage chosen from config. Redis and Postgres are both
// optional; missing ones are replaced by in-memory stores.
type backends struct {
	redis *redis.Client
	pool  *pgxpool.Pool

	quizzes  app.QuizRepository
	sessions app.SessionRepository
	online   app.ResultSubmitter
	offline  interface {
		app.OfflineQueue
		app.PendingQueue
	}
}

func openBackends(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{}

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := b.redis.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, continuing with degraded cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if b.pool != nil {
		loader = pgstore.NewQuizLoader(b.pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if b.redis != nil {
		b.quizzes = redisstore.NewQuizRepository(b.redis, loader, quizTTL)
		b.sessions = redisstore.NewSessionStore(b.redis, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
		b.offline = redisstore.NewOfflineQueue(b.redis, cfg.Redis.QueueKey)
	} else {
		b.quizzes = memory.NewQuizRepository(loader, quizTTL)
		b.sessions = memory.NewSessionStore()
		b.offline = memory.NewOfflineQueue()
	}

	if b.pool != nil {
		b.online = pgstore.NewResultStore(b.pool)
	} else {
		b.online = memory.NewResultStore()
	}
	return b, nil
}

func (b *backends) close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}
