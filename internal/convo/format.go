package convo

import (
	"encoding/json"
	"fmt"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/query"
)

// previewRows is how many rows the fallback formatter includes verbatim.
const previewRows = 3

// fallbackSummary renders query results without the model. Used when the
// summarization call fails after a successful query.
func fallbackSummary(rows []query.Row) string {
	if len(rows) == 0 {
		return "No matching results found."
	}

	if len(rows) == 1 && len(rows[0]) == 1 {
		for _, v := range rows[0] {
			return fmt.Sprintf("Result: %v", v)
		}
	}

	preview := rows
	if len(preview) > previewRows {
		preview = preview[:previewRows]
	}
	encoded, err := json.MarshalIndent(preview, "", "  ")
	if err != nil {
		return fmt.Sprintf("Found %d results.", len(rows))
	}
	return fmt.Sprintf("Found %d results. %s", len(rows), encoded)
}
