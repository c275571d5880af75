package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/db"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/config"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/convo"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/llm"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/query"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/session"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/sqlguard"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup; call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, logger: logger}

	// On error, clean up everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", slog.Any("error", err))
			}
		}
	}()

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g, err := provideGenkit(ctx)
	if err != nil {
		return nil, err
	}
	a.Genkit = g
	logger.Info("initialized Genkit", slog.String("model", cfg.ModelName))

	model := llm.NewClient(g, cfg.ModelName, logger)
	gate := sqlguard.New(logger)
	executor := query.New(pool, gate, logger)

	a.Sessions = session.New(cfg.SessionMaxMessages, logger)
	a.Orchestrator = convo.New(a.Sessions, model, executor, cfg.SessionHistoryLimit, logger)

	// Background sweep keeps abandoned sessions from accumulating.
	sweepCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	sweeper := session.NewSweeper(a.Sessions, cfg.SessionMaxAge, cfg.SweepInterval, logger)
	a.sweeper.Add(1)
	go func() {
		defer a.sweeper.Done()
		sweeper.Run(sweepCtx)
	}()

	return a, nil
}

// provideGenkit initializes Genkit with the Google AI plugin.
// GEMINI_API_KEY is read by the plugin directly from the environment.
func provideGenkit(ctx context.Context) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with googleai provider")
	}
	return g, nil
}

// provideDBPool runs migrations and creates the PostgreSQL connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = cfg.PostgresMaxConns
	if poolCfg.MaxConns <= 0 {
		poolCfg.MaxConns = 10
	}
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
