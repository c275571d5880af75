package query

import (
	"context"
	"errors"
	"testing"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/sqlguard"
)

// Rejection happens before any pool access, so a nil pool is fine here.
func TestExecuteSafeRejectsBeforeExecution(t *testing.T) {
	e := New(nil, sqlguard.New(nil), nil)

	tests := []struct {
		name string
		sql  string
	}{
		{"drop statement", "DROP TABLE clients"},
		{"mutating statement", `UPDATE "openphone_gmail_ai" SET "Employee" = 'x'`},
		{"non-select shape", "SHOW TABLES"},
		{"keyword in literal", `SELECT * FROM t WHERE name = 'DROPBOX'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ExecuteSafe(context.Background(), tt.sql)
			if !errors.Is(err, ErrRejected) {
				t.Fatalf("ExecuteSafe(%q) error = %v, want ErrRejected", tt.sql, err)
			}
			if errors.Is(err, ErrExecution) {
				t.Errorf("ExecuteSafe(%q) should not carry ErrExecution", tt.sql)
			}

			var rej *sqlguard.Rejection
			if !errors.As(err, &rej) {
				t.Errorf("ExecuteSafe(%q) should wrap the gate rejection, got %v", tt.sql, err)
			}
		})
	}
}
