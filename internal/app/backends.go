package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gokatarajesh/techquiz/internal/config"
	"github.com/gokatarajesh/techquiz/internal/db/docstore"
	"github.com/gokatarajesh/techquiz/internal/db/queries"
	"github.com/gokatarajesh/techquiz/internal/db/repository"
	"github.com/gokatarajesh/techquiz/internal/question"
	"github.com/gokatarajesh/techquiz/internal/question/external"
	"github.com/gokatarajesh/techquiz/internal/server"
)

// Backends holds the question store selected by QUESTION_SOURCE and the
// connections behind it. Only the connection for the active source is opened.
type Backends struct {
	Source     question.Source
	Pool       *pgxpool.Pool
	Mongo      *mongo.Client
	Repository *repository.QuestionRepository
	Documents  *docstore.QuestionStore
	Pingers    map[string]server.Pinger
}

// OpenBackends connects to the configured question store.
func OpenBackends(ctx context.Context, cfg *config.App, logger zerolog.Logger) (*Backends, error) {
	b := &Backends{Pingers: map[string]server.Pinger{}}

	switch cfg.QuestionSource {
	case config.SourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.Pool = pool
		b.Repository = repository.NewQuestionRepository(queries.New(pool))
		b.Source = question.NewRepositorySource(b.Repository)
		b.Pingers["postgres"] = pool.Ping

	case config.SourceMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		b.Mongo = client
		b.Documents = docstore.NewQuestionStore(client, cfg.Mongo.Database)
		if err := b.Documents.EnsureIndexes(ctx); err != nil {
			logger.Warn().Err(err).Msg("mongo index creation failed")
		}
		b.Source = question.NewDocumentSource(b.Documents)
		b.Pingers["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }

	case config.SourceRealtimeDB:
		httpClient := &http.Client{Timeout: cfg.Runtime.QuestionFetchTimeout}
		client := external.NewRealtimeDBClient(cfg.RealtimeDB.URL, cfg.RealtimeDB.AuthToken, httpClient)
		b.Source = question.NewRealtimeSource(client)

	default:
		return nil, fmt.Errorf("unknown question source %q", cfg.QuestionSource)
	}

	logger.Info().Str("source", cfg.QuestionSource).Msg("question source ready")
	return b, nil
}

// Close releases whichever connection OpenBackends opened.
func (b *Backends) Close(ctx context.Context) error {
	if b.Pool != nil {
		b.Pool.Close()
	}
	if b.Mongo != nil {
		if err := b.Mongo.Disconnect(ctx); err != nil {
			return fmt.Errorf("disconnect mongo: %w", err)
		}
	}
	return nil
}

// NewRedis builds the shared Redis client.
func NewRedis(cfg config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
