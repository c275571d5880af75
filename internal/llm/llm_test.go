package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Decision
		wantErr bool
	}{
		{
			name: "execute_sql envelope",
			raw:  `{"action": "execute_sql", "query": "SELECT \"Employee\" FROM \"openphone_gmail_ai\""}`,
			want: Decision{Action: ActionExecuteSQL, Query: `SELECT "Employee" FROM "openphone_gmail_ai"`},
		},
		{
			name: "respond_directly envelope",
			raw:  `{"action": "respond_directly", "message": "Hi! How can I help?"}`,
			want: Decision{Action: ActionRespondDirectly, Message: "Hi! How can I help?"},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"action\": \"respond_directly\", \"message\": \"hello\"}\n```",
			want: Decision{Action: ActionRespondDirectly, Message: "hello"},
		},
		{
			name: "surrounding whitespace",
			raw:  "\n\n  {\"action\": \"execute_sql\", \"query\": \"SELECT 1\"}  \n",
			want: Decision{Action: ActionExecuteSQL, Query: "SELECT 1"},
		},
		{
			name: "unknown action survives parsing",
			raw:  `{"action": "summon_dragon"}`,
			want: Decision{Action: "summon_dragon"},
		},
		{
			name:    "empty response",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "malformed json",
			raw:     `{"action": "execute_sql",`,
			wantErr: true,
		},
		{
			name:    "missing action",
			raw:     `{"query": "SELECT 1"}`,
			wantErr: true,
		},
		{
			name:    "execute_sql without query",
			raw:     `{"action": "execute_sql", "query": "   "}`,
			wantErr: true,
		},
		{
			name:    "respond_directly without message",
			raw:     `{"action": "respond_directly"}`,
			wantErr: true,
		},
		{
			name:    "oversized response",
			raw:     `{"action": "execute_sql", "query": "` + strings.Repeat("x", maxDecisionBytes) + `"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDecision(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseDecision(%q) error = nil, want error", tt.raw)
				}
				if !errors.Is(err, ErrDecision) {
					t.Errorf("parseDecision() error = %v, want ErrDecision", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDecision() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseDecision() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{`{"a": 1}`, `{"a": 1}`},
		{"  plain text  ", "plain text"},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
