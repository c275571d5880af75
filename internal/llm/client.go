// Package llm wraps the generative model behind two narrow operations:
// deciding how to handle a user message and summarizing query results.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/query"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/session"
)

// Sentinel errors for model delegation failures.
var (
	ErrDecision = errors.New("decision call failed")
	ErrSummary  = errors.New("summary call failed")
)

// Known decision actions. Anything else is passed through for the caller
// to treat as a contract violation.
const (
	ActionExecuteSQL      = "execute_sql"
	ActionRespondDirectly = "respond_directly"
)

// maxDecisionBytes limits model response size before JSON parsing (10 KB).
const maxDecisionBytes = 10 * 1024

// maxSummaryRows caps how many rows are serialized into the summary prompt.
const maxSummaryRows = 50

// Decision is the model's verdict for a single user message: either a SQL
// query to run or a direct conversational reply.
type Decision struct {
	Action  string `json:"action"`
	Query   string `json:"query,omitempty"`
	Message string `json:"message,omitempty"`
}

// Client talks to the configured model via Genkit.
type Client struct {
	g      *genkit.Genkit
	model  string
	logger *slog.Logger
}

func NewClient(g *genkit.Genkit, model string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{g: g, model: model, logger: logger}
}

// Decide asks the model whether to run a query or reply directly, given the
// recent conversation history and the new user message. The returned Decision
// may carry an unknown Action; callers decide how to handle that.
func (c *Client) Decide(ctx context.Context, history []session.Turn, utterance string) (Decision, error) {
	messages := make([]*ai.Message, 0, len(history)+1)
	for _, turn := range history {
		if turn.Role == session.RoleUser {
			messages = append(messages, ai.NewUserMessage(ai.NewTextPart(turn.Content)))
		} else {
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(turn.Content)))
		}
	}
	messages = append(messages, ai.NewUserMessage(ai.NewTextPart(utterance)))

	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.model),
		ai.WithSystem(decisionPrompt),
		ai.WithMessages(messages...),
	)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrDecision, err)
	}

	decision, err := parseDecision(resp.Text())
	if err != nil {
		return Decision{}, err
	}

	c.logger.Debug("model decision",
		slog.String("action", decision.Action),
		slog.Int("query_len", len(decision.Query)))
	return decision, nil
}

// parseDecision extracts the JSON decision envelope from raw model output.
func parseDecision(raw string) (Decision, error) {
	text := stripCodeFences(strings.TrimSpace(raw))
	if text == "" {
		return Decision{}, fmt.Errorf("%w: empty response", ErrDecision)
	}
	if len(text) > maxDecisionBytes {
		return Decision{}, fmt.Errorf("%w: response too large: %d bytes", ErrDecision, len(text))
	}

	var d Decision
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return Decision{}, fmt.Errorf("%w: parsing envelope: %w (raw: %q)", ErrDecision, err, truncate(text, 200))
	}
	if d.Action == "" {
		return Decision{}, fmt.Errorf("%w: envelope missing action", ErrDecision)
	}
	switch d.Action {
	case ActionExecuteSQL:
		if strings.TrimSpace(d.Query) == "" {
			return Decision{}, fmt.Errorf("%w: execute_sql without query", ErrDecision)
		}
	case ActionRespondDirectly:
		if strings.TrimSpace(d.Message) == "" {
			return Decision{}, fmt.Errorf("%w: respond_directly without message", ErrDecision)
		}
	}
	return d, nil
}

// summaryPayload is the result envelope serialized into the summary prompt.
type summaryPayload struct {
	TotalRows    int         `json:"total_rows"`
	IncludedRows int         `json:"included_rows"`
	Rows         []query.Row `json:"rows"`
}

// Summarize turns query results into a natural-language answer to the
// user's question.
func (c *Client) Summarize(ctx context.Context, question string, rows []query.Row) (string, error) {
	included := rows
	if len(included) > maxSummaryRows {
		included = included[:maxSummaryRows]
	}

	payload, err := json.Marshal(summaryPayload{
		TotalRows:    len(rows),
		IncludedRows: len(included),
		Rows:         included,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encoding results: %w", ErrSummary, err)
	}

	prompt := fmt.Sprintf("Question: %s\n\nDatabase results:\n%s", question, payload)

	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.model),
		ai.WithSystem(summaryPrompt),
		ai.WithMessages(ai.NewUserMessage(ai.NewTextPart(prompt))),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSummary, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrSummary)
	}
	return text, nil
}

// stripCodeFences removes ```json ... ``` wrapping from model output.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

// truncate shortens s to at most n bytes for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
