package ports

import (
	"context"

	"schema-check/internal/core"
	"schema-check/internal/types"
)

// DiffPort runs the comparison between the two built schemas, applies
// the resolved rules, and returns the raw verdict with the ordered
// change list.
type DiffPort interface {
	Compare(ctx context.Context, pair core.SchemaPair, rules []core.Rule) (types.DiffResult, error)
}
