// Package app provides application initialization and dependency wiring.
//
// App is the container that owns every long-lived component: the database
// pool, the Genkit instance, the session store with its sweeper, and the
// conversation orchestrator.
package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/config"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/convo"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/session"
)

// App is the core application container.
type App struct {
	Config *config.Config

	Genkit       *genkit.Genkit
	DBPool       *pgxpool.Pool
	Sessions     *session.Store
	Orchestrator *convo.Orchestrator

	logger *slog.Logger

	// Lifecycle management
	cancel  context.CancelFunc
	sweeper sync.WaitGroup
}

// Close gracefully shuts down all resources. Safe to call on a partially
// initialized App.
func (a *App) Close() error {
	if a.logger != nil {
		a.logger.Info("shutting down application")
	}

	// Stop the sweeper before closing anything it might touch.
	if a.cancel != nil {
		a.cancel()
	}
	a.sweeper.Wait()

	if a.DBPool != nil {
		a.DBPool.Close()
		if a.logger != nil {
			a.logger.Info("database pool closed")
		}
	}

	return nil
}
