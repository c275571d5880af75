package sqlguard

import (
	"errors"
	"testing"
)

func TestValidateAcceptsReadOnlyStatements(t *testing.T) {
	g := New(nil)

	tests := []struct {
		name string
		sql  string
	}{
		{"simple select", `SELECT "Employee" FROM "openphone_gmail_ai"`},
		{"lowercase select", `select "Snippet" from "openphone_gmail_ai" limit 5`},
		{"leading whitespace", "  \n\tSELECT 1"},
		{"cte", `WITH recent AS (SELECT "Date" FROM "openphone_call_ai") SELECT * FROM recent`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !g.Validate(tt.sql) {
				t.Errorf("Validate(%q) = false, want true", tt.sql)
			}
		})
	}
}

func TestValidateRejectsDeniedKeywords(t *testing.T) {
	g := New(nil)

	tests := []struct {
		name    string
		sql     string
		keyword string
	}{
		{"drop table", "DROP TABLE clients", "DROP"},
		{"delete", "DELETE FROM clients", "DELETE"},
		{"lowercase insert", "insert into clients values (1)", "INSERT"},
		{"update inside select", "SELECT * FROM t WHERE note = 'update me'", "UPDATE"},
		{"keyword as literal substring", `SELECT * FROM t WHERE name = 'DROPBOX'`, "DROP"},
		{"truncate", "TRUNCATE TABLE t", "TRUNCATE"},
		{"grant", "GRANT ALL ON t TO public", "GRANT"},
		{"exec", "EXEC sp_who", "EXEC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Check(tt.sql)
			if err == nil {
				t.Fatalf("Check(%q) = nil, want rejection", tt.sql)
			}

			var rej *Rejection
			if !errors.As(err, &rej) {
				t.Fatalf("Check(%q) error type = %T, want *Rejection", tt.sql, err)
			}
			if rej.Keyword != tt.keyword {
				t.Errorf("Check(%q) keyword = %q, want %q", tt.sql, rej.Keyword, tt.keyword)
			}
		})
	}
}

func TestValidateRejectsNonSelectPrefix(t *testing.T) {
	g := New(nil)

	for _, sql := range []string{
		"SHOW TABLES",
		"EXPLAIN SELECT 1",
		"",
		"   ",
	} {
		err := g.Check(sql)
		if err == nil {
			t.Errorf("Check(%q) = nil, want rejection", sql)
			continue
		}

		var rej *Rejection
		if !errors.As(err, &rej) {
			t.Errorf("Check(%q) error type = %T, want *Rejection", sql, err)
			continue
		}
		if rej.Keyword != "" {
			t.Errorf("Check(%q) keyword = %q, want empty (shape rejection)", sql, rej.Keyword)
		}
	}
}
