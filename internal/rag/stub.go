package rag

import (
	"fmt"
	"time"
)

// stubResults is the fixed, recognisable result set returned in degraded
// mode. It honors the date bounds and the limit.
func stubResults(query string, after, before *time.Time, limit int) []Result {
	all := []Result{
		{
			Path:    "journal/2025/07/21.md",
			Date:    time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC),
			Score:   0.95,
			Snippet: fmt.Sprintf("Found '%s' in context: discussing Rust RAG implementation...", query),
		},
		{
			Path:    "journal/2025/07/20.md",
			Date:    time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
			Score:   0.87,
			Snippet: fmt.Sprintf("Another match for '%s': working on performance optimization...", query),
		},
	}

	results := make([]Result, 0, len(all))
	for _, r := range all {
		if after != nil && r.Date.Before(*after) {
			continue
		}
		if before != nil && r.Date.After(*before) {
			continue
		}
		results = append(results, r)
	}
	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
