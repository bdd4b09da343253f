package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"schema-check/internal/types"
)

func TestRenderSummaryCountsBySeverity(t *testing.T) {
	changes := []types.Change{
		{Severity: types.SeverityBreaking, Message: "Field 'Query.a' was removed"},
		{Severity: types.SeverityDangerous, Message: "Enum value 'Role.X' was added"},
		{Severity: types.SeveritySafe, Message: "Type 'Fresh' was added"},
	}
	summary := RenderSummary("GraphQL Inspector", changes)
	assert.Contains(t, summary, "GraphQL Inspector: 3 change(s) detected")
	assert.Contains(t, summary, "(1 breaking, 1 dangerous, 1 safe)")
	assert.Contains(t, summary, "- [breaking] Field 'Query.a' was removed")
}

func TestRenderSummaryEmpty(t *testing.T) {
	summary := RenderSummary("GraphQL Inspector", nil)
	assert.Equal(t, "GraphQL Inspector: 0 change(s) detected", summary)
}

func TestRenderSummaryCapsChangeLines(t *testing.T) {
	changes := make([]types.Change, summaryChangeLimit+25)
	for i := range changes {
		changes[i] = types.Change{Severity: types.SeveritySafe, Message: fmt.Sprintf("change %d", i)}
	}
	summary := RenderSummary("GraphQL Inspector", changes)
	lines := strings.Split(summary, "\n")
	// Header, the capped change lines, and the overflow line.
	assert.Len(t, lines, summaryChangeLimit+2)
	assert.Equal(t, "... and 25 more", lines[len(lines)-1])
}
