package convo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/llm"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/query"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/session"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/sqlguard"
)

// stubModel scripts the Decide and Summarize calls for a test.
type stubModel struct {
	decision     llm.Decision
	decideErr    error
	summary      string
	summarizeErr error

	decideHistory []session.Turn
	decideCalls   int
}

func (m *stubModel) Decide(_ context.Context, history []session.Turn, _ string) (llm.Decision, error) {
	m.decideCalls++
	m.decideHistory = history
	return m.decision, m.decideErr
}

func (m *stubModel) Summarize(context.Context, string, []query.Row) (string, error) {
	return m.summary, m.summarizeErr
}

// stubRunner gates SQL like the real executor but never touches a database.
type stubRunner struct {
	gate    *sqlguard.Gate
	outcome query.Outcome
	err     error

	executions int
}

func (r *stubRunner) ExecuteSafe(_ context.Context, sql string) (query.Outcome, error) {
	if err := r.gate.Check(sql); err != nil {
		return query.Outcome{}, errors.Join(query.ErrRejected, err)
	}
	r.executions++
	return r.outcome, r.err
}

func newTestOrchestrator(model Decider, runner Runner) (*Orchestrator, *session.Store) {
	store := session.New(0, nil)
	return New(store, model, runner, 0, nil), store
}

func assertTurnCounts(t *testing.T, store *session.Store, sessionID string, wantMessages int) {
	t.Helper()
	info := store.Info(sessionID)
	if info.MessageCount != wantMessages {
		t.Errorf("session holds %d messages, want %d", info.MessageCount, wantMessages)
	}
}

func TestProcessDirectReply(t *testing.T) {
	model := &stubModel{decision: llm.Decision{
		Action:  llm.ActionRespondDirectly,
		Message: "Hi! How can I help?",
	}}
	runner := &stubRunner{gate: sqlguard.New(nil)}
	orch, store := newTestOrchestrator(model, runner)

	result := orch.Process(context.Background(), "s1", "hey")

	if result.Type != TypeDirect {
		t.Errorf("Type = %q, want %q", result.Type, TypeDirect)
	}
	if result.Response != "Hi! How can I help?" {
		t.Errorf("Response = %q", result.Response)
	}
	if runner.executions != 0 {
		t.Errorf("executor ran %d times for a direct reply", runner.executions)
	}
	assertTurnCounts(t, store, "s1", 2)

	turns := store.History("s1", 0)
	if turns[0].Role != session.RoleUser || turns[1].Role != session.RoleAssistant {
		t.Errorf("history roles = %q, %q; want user, assistant", turns[0].Role, turns[1].Role)
	}
}

func TestProcessQueryAndSummarize(t *testing.T) {
	rows := []query.Row{
		{"Employee": "Eric", "Snippet": "Thanks!"},
		{"Employee": "Eric", "Snippet": "Confirmed."},
	}
	model := &stubModel{
		decision: llm.Decision{Action: llm.ActionExecuteSQL, Query: `SELECT "Employee" FROM "openphone_gmail_ai"`},
		summary:  "Found 2 emails.",
	}
	runner := &stubRunner{gate: sqlguard.New(nil), outcome: query.Outcome{Rows: rows, HasRows: true}}
	orch, store := newTestOrchestrator(model, runner)

	result := orch.Process(context.Background(), "s1", "show me emails from Eric")

	if result.Type != TypeSQLAnalysis {
		t.Fatalf("Type = %q, want %q", result.Type, TypeSQLAnalysis)
	}
	if result.Response != "Found 2 emails." {
		t.Errorf("Response = %q", result.Response)
	}
	if result.Debug == nil || result.Debug.ResultCount != 2 {
		t.Errorf("Debug = %+v, want ResultCount 2", result.Debug)
	}
	assertTurnCounts(t, store, "s1", 2)

	// The assistant message must carry the query and results verbatim.
	gotQuery, ok := store.LastQuery("s1")
	if !ok || gotQuery != model.decision.Query {
		t.Errorf("LastQuery() = %q, %v", gotQuery, ok)
	}
	gotRows, ok := store.LastResults("s1")
	if !ok || len(gotRows) != 2 || gotRows[0]["Snippet"] != "Thanks!" {
		t.Errorf("LastResults() = %v, %v", gotRows, ok)
	}
}

func TestProcessRejectedQueryNeverExecutes(t *testing.T) {
	model := &stubModel{decision: llm.Decision{Action: llm.ActionExecuteSQL, Query: "DROP TABLE t"}}
	runner := &stubRunner{gate: sqlguard.New(nil)}
	orch, store := newTestOrchestrator(model, runner)

	result := orch.Process(context.Background(), "s1", "drop everything")

	if result.Type != TypeDatabaseError {
		t.Errorf("Type = %q, want %q", result.Type, TypeDatabaseError)
	}
	if runner.executions != 0 {
		t.Errorf("executor ran %d times for a rejected query", runner.executions)
	}
	if result.Debug == nil || result.Debug.SQLQuery != "DROP TABLE t" {
		t.Errorf("Debug = %+v", result.Debug)
	}
	assertTurnCounts(t, store, "s1", 2)
}

func TestProcessExecutionError(t *testing.T) {
	execErr := errors.Join(query.ErrExecution, errors.New(`relation "nope" does not exist`))
	model := &stubModel{decision: llm.Decision{Action: llm.ActionExecuteSQL, Query: `SELECT "x" FROM "nope"`}}
	runner := &stubRunner{gate: sqlguard.New(nil), err: execErr}
	orch, store := newTestOrchestrator(model, runner)

	result := orch.Process(context.Background(), "s1", "show me nope")

	if result.Type != TypeDatabaseError {
		t.Errorf("Type = %q, want %q", result.Type, TypeDatabaseError)
	}
	// The raw database error is logged, not surfaced.
	if strings.Contains(result.Response, "does not exist") {
		t.Errorf("Response leaks raw error: %q", result.Response)
	}
	assertTurnCounts(t, store, "s1", 2)
}

func TestProcessUnrecognizedAction(t *testing.T) {
	model := &stubModel{decision: llm.Decision{Action: "summon_dragon"}}
	runner := &stubRunner{gate: sqlguard.New(nil)}
	orch, store := newTestOrchestrator(model, runner)

	result := orch.Process(context.Background(), "s1", "hello?")

	if result.Type != TypeError {
		t.Errorf("Type = %q, want %q", result.Type, TypeError)
	}
	if runner.executions != 0 {
		t.Errorf("executor ran %d times for an unrecognized action", runner.executions)
	}
	assertTurnCounts(t, store, "s1", 2)
}

func TestProcessDecisionFailure(t *testing.T) {
	model := &stubModel{decideErr: errors.Join(llm.ErrDecision, errors.New("upstream timeout"))}
	runner := &stubRunner{gate: sqlguard.New(nil)}
	orch, store := newTestOrchestrator(model, runner)

	result := orch.Process(context.Background(), "s1", "show me calls")

	if result.Type != TypeError {
		t.Errorf("Type = %q, want %q", result.Type, TypeError)
	}
	if strings.Contains(result.Response, "upstream timeout") {
		t.Errorf("Response leaks raw error: %q", result.Response)
	}
	assertTurnCounts(t, store, "s1", 2)
}

func TestProcessSummarizeFailureFallsBack(t *testing.T) {
	rows := []query.Row{{"n": int64(42)}}
	model := &stubModel{
		decision:     llm.Decision{Action: llm.ActionExecuteSQL, Query: "SELECT COUNT(*) AS n FROM t"},
		summarizeErr: errors.Join(llm.ErrSummary, errors.New("rate limited")),
	}
	runner := &stubRunner{gate: sqlguard.New(nil), outcome: query.Outcome{Rows: rows, HasRows: true}}
	orch, store := newTestOrchestrator(model, runner)

	result := orch.Process(context.Background(), "s1", "how many calls?")

	if result.Type != TypeSQLAnalysis {
		t.Fatalf("Type = %q, want %q", result.Type, TypeSQLAnalysis)
	}
	if result.Response != "Result: 42" {
		t.Errorf("Response = %q, want %q", result.Response, "Result: 42")
	}
	// The turn still records query metadata despite the degraded summary.
	if _, ok := store.LastQuery("s1"); !ok {
		t.Error("LastQuery() missing after fallback summary")
	}
	assertTurnCounts(t, store, "s1", 2)
}

func TestProcessPassesRecentHistoryToModel(t *testing.T) {
	model := &stubModel{decision: llm.Decision{Action: llm.ActionRespondDirectly, Message: "sure"}}
	runner := &stubRunner{gate: sqlguard.New(nil)}
	orch, store := newTestOrchestrator(model, runner)

	orch.Process(context.Background(), "s1", "first")
	orch.Process(context.Background(), "s1", "second")

	// The second turn sees the first exchange but not its own user message.
	if len(model.decideHistory) != 2 {
		t.Fatalf("history passed to model has %d turns, want 2", len(model.decideHistory))
	}
	if model.decideHistory[0].Content != "first" || model.decideHistory[1].Content != "sure" {
		t.Errorf("history = %+v", model.decideHistory)
	}
	assertTurnCounts(t, store, "s1", 4)
}

func TestFallbackSummary(t *testing.T) {
	tests := []struct {
		name string
		rows []query.Row
		want string
	}{
		{"empty", nil, "No matching results found."},
		{"single scalar", []query.Row{{"count": 7}}, "Result: 7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fallbackSummary(tt.rows); got != tt.want {
				t.Errorf("fallbackSummary() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("multi row preview", func(t *testing.T) {
		rows := []query.Row{{"a": 1}, {"a": 2}, {"a": 3}, {"a": 4}}
		got := fallbackSummary(rows)
		if !strings.HasPrefix(got, "Found 4 results.") {
			t.Errorf("fallbackSummary() = %q", got)
		}
		if strings.Count(got, `"a"`) != previewRows {
			t.Errorf("preview should contain %d rows: %q", previewRows, got)
		}
	})
}
