// Package sqlguard restricts executable SQL to read-only statement shapes.
//
// The gate is advisory defense-in-depth in front of the query executor, not
// a substitute for least-privilege database credentials. It deliberately
// uses a raw substring scan rather than a SQL tokenizer: a literal value
// that happens to contain a deny-listed word (e.g. 'DROPBOX') is rejected
// too. That false-positive surface is an accepted limitation.
package sqlguard

import (
	"fmt"
	"log/slog"
	"strings"
)

// denyList contains statement and keyword tokens that must never reach the
// database, matched case-insensitively as substrings.
var denyList = []string{
	"DROP", "DELETE", "INSERT", "UPDATE", "CREATE", "ALTER",
	"TRUNCATE", "GRANT", "REVOKE", "EXEC", "EXECUTE",
}

// Rejection describes why a statement failed validation.
type Rejection struct {
	// Keyword is the deny-listed token that triggered the rejection,
	// empty when the statement was rejected for its leading shape.
	Keyword string
}

func (r *Rejection) Error() string {
	if r.Keyword != "" {
		return fmt.Sprintf("statement contains blocked keyword %s", r.Keyword)
	}
	return "statement must start with SELECT or WITH"
}

// Gate validates candidate SQL before execution.
type Gate struct {
	logger *slog.Logger
}

// New creates a Gate. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{logger: logger}
}

// Check validates sql and returns a *Rejection describing the first
// violation found, or nil when the statement is acceptable. Only the
// normalized copy is inspected; the original text is what gets executed.
// Every rejection is logged for audit purposes.
func (g *Gate) Check(sql string) error {
	normalized := strings.ToUpper(strings.TrimSpace(sql))

	for _, keyword := range denyList {
		if strings.Contains(normalized, keyword) {
			g.logger.Warn("blocked sql statement", "keyword", keyword)
			return &Rejection{Keyword: keyword}
		}
	}

	if !strings.HasPrefix(normalized, "SELECT") && !strings.HasPrefix(normalized, "WITH") {
		g.logger.Warn("blocked sql statement", "reason", "must start with SELECT or WITH")
		return &Rejection{}
	}

	return nil
}

// Validate reports whether sql passes the gate.
func (g *Gate) Validate(sql string) bool {
	return g.Check(sql) == nil
}
