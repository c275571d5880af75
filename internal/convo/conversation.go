// Package convo implements the per-turn conversation state machine: it
// decides between a direct reply and query-and-summarize, drives the model
// and the executor, and records the outcome in the session store.
package convo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/llm"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/query"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/session"
)

// DefaultHistoryLimit is how many recent messages are handed to the model
// as conversational context.
const DefaultHistoryLimit = 10

// Result types returned by Process.
const (
	TypeDirect        = "direct"
	TypeSQLAnalysis   = "sql_analysis"
	TypeDatabaseError = "database_error"
	TypeError         = "error"
)

// User-facing messages for failed turns. Raw errors are logged, never
// surfaced to the caller.
const (
	msgRejectedQuery  = "I can only run read-only SELECT queries against the feedback data. Please rephrase your question as a data lookup."
	msgDatabaseError  = "I encountered a database error while answering that. Please try rephrasing your question."
	msgDelegationFail = "I'm having trouble processing that right now. Please try again."
	msgInternalError  = "Something went wrong on my end. Please try again."
)

// Decider is the model surface the orchestrator needs: one call to choose an
// action for the turn and one to summarize query results.
type Decider interface {
	Decide(ctx context.Context, history []session.Turn, utterance string) (llm.Decision, error)
	Summarize(ctx context.Context, question string, rows []query.Row) (string, error)
}

// Runner executes validated SQL against the feedback database.
type Runner interface {
	ExecuteSafe(ctx context.Context, sql string) (query.Outcome, error)
}

// Result is the outcome of one conversation turn.
type Result struct {
	Type     string `json:"type"`
	Response string `json:"response"`
	Debug    *Debug `json:"debug,omitempty"`
}

// Debug carries diagnostic detail about how the turn was handled.
type Debug struct {
	FunctionCalled string      `json:"functionCalled,omitempty"`
	SQLQuery       string      `json:"sqlQuery,omitempty"`
	SQLResults     []query.Row `json:"sqlResults,omitempty"`
	ResultCount    int         `json:"resultCount"`
	Error          string      `json:"error,omitempty"`
}

// Orchestrator processes conversation turns for all sessions.
type Orchestrator struct {
	store        *session.Store
	model        Decider
	runner       Runner
	historyLimit int
	logger       *slog.Logger
}

func New(store *session.Store, model Decider, runner Runner, historyLimit int, logger *slog.Logger) *Orchestrator {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:        store,
		model:        model,
		runner:       runner,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// Process handles one user utterance for a session. It always appends exactly
// one user message and exactly one assistant message to the session, whether
// the turn succeeds or fails.
func (o *Orchestrator) Process(ctx context.Context, sessionID, message string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("panic during conversation turn",
				slog.String("session_id", sessionID),
				slog.Any("panic", r))
			o.appendAssistant(sessionID, msgInternalError, nil)
			result = Result{Type: TypeError, Response: msgInternalError}
		}
	}()

	history := o.store.History(sessionID, o.historyLimit)
	o.store.Append(sessionID, session.RoleUser, message, nil)

	decision, err := o.model.Decide(ctx, history, message)
	if err != nil {
		o.logger.Error("model delegation failed",
			slog.String("session_id", sessionID),
			slog.Any("error", err))
		o.appendAssistant(sessionID, msgDelegationFail, nil)
		return Result{
			Type:     TypeError,
			Response: msgDelegationFail,
			Debug:    &Debug{Error: err.Error()},
		}
	}

	switch decision.Action {
	case llm.ActionRespondDirectly:
		return o.respondDirectly(sessionID, decision.Message)
	case llm.ActionExecuteSQL:
		return o.runQuery(ctx, sessionID, message, decision.Query)
	default:
		// The model signaled an action outside the contract. Not a data
		// problem, so it is logged apart from execution errors.
		o.logger.Error("unrecognized model action",
			slog.String("session_id", sessionID),
			slog.String("action", decision.Action))
		o.appendAssistant(sessionID, msgInternalError, nil)
		return Result{
			Type:     TypeError,
			Response: msgInternalError,
			Debug:    &Debug{Error: fmt.Sprintf("unrecognized action %q", decision.Action)},
		}
	}
}

func (o *Orchestrator) respondDirectly(sessionID, reply string) Result {
	o.appendAssistant(sessionID, reply, nil)
	return Result{
		Type:     TypeDirect,
		Response: reply,
		Debug:    &Debug{FunctionCalled: llm.ActionRespondDirectly},
	}
}

func (o *Orchestrator) runQuery(ctx context.Context, sessionID, question, sql string) Result {
	outcome, err := o.runner.ExecuteSafe(ctx, sql)
	if err != nil {
		response := msgDatabaseError
		if errors.Is(err, query.ErrRejected) {
			response = msgRejectedQuery
		}
		o.logger.Error("query failed",
			slog.String("session_id", sessionID),
			slog.String("sql", sql),
			slog.Any("error", err))
		o.appendAssistant(sessionID, response, nil)
		return Result{
			Type:     TypeDatabaseError,
			Response: response,
			Debug: &Debug{
				FunctionCalled: llm.ActionExecuteSQL,
				SQLQuery:       sql,
				Error:          err.Error(),
			},
		}
	}

	summary, err := o.model.Summarize(ctx, question, outcome.Rows)
	if err != nil {
		// The data is already in hand, so a failed summary call degrades to
		// a deterministic local rendering instead of failing the turn.
		o.logger.Warn("summarization failed, using fallback formatter",
			slog.String("session_id", sessionID),
			slog.Any("error", err))
		summary = fallbackSummary(outcome.Rows)
	}

	o.appendAssistant(sessionID, summary, &session.Metadata{
		Query:   sql,
		Results: outcome.Rows,
	})
	return Result{
		Type:     TypeSQLAnalysis,
		Response: summary,
		Debug: &Debug{
			FunctionCalled: llm.ActionExecuteSQL,
			SQLQuery:       sql,
			SQLResults:     outcome.Rows,
			ResultCount:    len(outcome.Rows),
		},
	}
}

func (o *Orchestrator) appendAssistant(sessionID, content string, meta *session.Metadata) {
	o.store.Append(sessionID, session.RoleAssistant, content, meta)
}
