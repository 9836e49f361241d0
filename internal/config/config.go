package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Question store backends.
const (
	SourceRealtimeDB = "realtimedb"
	SourcePostgres   = "postgres"
	SourceMongo      = "mongo"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"techquiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`
	QuestionSource          string        `env:"QUESTION_SOURCE" envDefault:"realtimedb"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`

	Postgres   Postgres
	Redis      Redis
	Mongo      Mongo
	RealtimeDB RealtimeDB
	Runtime    Runtime
	CORS       CORS
}

// Postgres captures connection info for the SQL question store. Only read
// when QUESTION_SOURCE=postgres.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:""`
	Password string `env:"PG_PASSWORD" envDefault:""`
	Database string `env:"PG_DATABASE" envDefault:""`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// DSN renders a pgx connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode, p.MaxConns)
}

// Redis holds cache, counter and session configuration.
type Redis struct {
	Addr           string `env:"REDIS_ADDR,notEmpty"`
	Password       string `env:"REDIS_PASSWORD" envDefault:""`
	DB             int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize       int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
	ProgressPrefix string `env:"REDIS_PROGRESS_PREFIX" envDefault:"progress"`
}

// Mongo configures the document question store.
type Mongo struct {
	URI      string `env:"MONGO_URI" envDefault:""`
	Database string `env:"MONGO_DATABASE" envDefault:"techquiz"`
}

// RealtimeDB points at the Firebase Realtime Database holding the catalog.
type RealtimeDB struct {
	URL       string `env:"RTDB_URL" envDefault:""`
	AuthToken string `env:"RTDB_AUTH_TOKEN" envDefault:""`
}

// Runtime groups selection and session defaults.
type Runtime struct {
	QuestionFetchTimeout time.Duration `env:"QUESTION_FETCH_TIMEOUT_SECONDS" envDefault:"4s"`
	DefaultLimit         int           `env:"DEFAULT_QUESTION_LIMIT" envDefault:"10"`
	MaxLimit             int           `env:"MAX_QUESTION_LIMIT" envDefault:"200"`
	CacheTTL             time.Duration `env:"QUESTION_CACHE_TTL" envDefault:"10m"`
	PrefetchInterval     time.Duration `env:"QUESTION_PREFETCH_INTERVAL" envDefault:"5m"`
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	// SelectionSeed makes tie-breaking reproducible when non-zero.
	SelectionSeed uint64 `env:"SELECTION_SEED" envDefault:"0"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,X-Client-ID"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the selected question source depends on.
func (a *App) Validate() error {
	var errs []error
	switch a.QuestionSource {
	case SourceRealtimeDB:
		if a.RealtimeDB.URL == "" {
			errs = append(errs, errors.New("RTDB_URL is required for the realtimedb source"))
		}
	case SourcePostgres:
		if a.Postgres.User == "" || a.Postgres.Password == "" || a.Postgres.Database == "" {
			errs = append(errs, errors.New("PG_USER, PG_PASSWORD and PG_DATABASE are required for the postgres source"))
		}
	case SourceMongo:
		if a.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown QUESTION_SOURCE %q", a.QuestionSource))
	}

	if a.Runtime.DefaultLimit <= 0 {
		errs = append(errs, errors.New("DEFAULT_QUESTION_LIMIT must be positive"))
	}
	if a.Runtime.MaxLimit > 0 && a.Runtime.DefaultLimit > a.Runtime.MaxLimit {
		errs = append(errs, errors.New("DEFAULT_QUESTION_LIMIT exceeds MAX_QUESTION_LIMIT"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
