package core

import (
	"fmt"
	"strings"

	"schema-check/internal/types"
)

// summaryChangeLimit caps how many change lines a summary renders.
const summaryChangeLimit = 100

// RenderSummary produces the human-readable report of a comparison run:
// a one-line verdict with per-severity counts, followed by one line per
// change, capped at summaryChangeLimit entries.
func RenderSummary(name string, changes []types.Change) string {
	var out strings.Builder
	counts := map[types.Severity]int{}
	for _, change := range changes {
		counts[change.Severity]++
	}
	fmt.Fprintf(&out, "%s: %d change(s) detected", name, len(changes))
	if len(changes) > 0 {
		fmt.Fprintf(&out, " (%d breaking, %d dangerous, %d safe)",
			counts[types.SeverityBreaking],
			counts[types.SeverityDangerous],
			counts[types.SeveritySafe])
	}
	limit := len(changes)
	if limit > summaryChangeLimit {
		limit = summaryChangeLimit
	}
	for _, change := range changes[:limit] {
		fmt.Fprintf(&out, "\n- [%s] %s", change.Severity, change.Message)
	}
	if len(changes) > limit {
		fmt.Fprintf(&out, "\n... and %d more", len(changes)-limit)
	}
	return out.String()
}
