package adapters

import (
	"context"

	"schema-check/internal/core"
	"schema-check/internal/types"
)

// DiffEngineAdapter wires the in-process diff engine behind the diff
// port: it runs the comparison, applies the rules in order, and derives
// the raw conclusion. The verdict is Failure iff at least one breaking
// change survives the rules.
type DiffEngineAdapter struct {
	Engine core.DiffEngine
}

func NewDiffEngineAdapter() DiffEngineAdapter {
	return DiffEngineAdapter{Engine: core.NewDiffEngine()}
}

func (a DiffEngineAdapter) Compare(ctx context.Context, pair core.SchemaPair, rules []core.Rule) (types.DiffResult, error) {
	changes := a.Engine.Compare(ctx, pair.Old.Schema, pair.New.Schema)
	changes = core.ApplyRules(ctx, changes, rules)
	conclusion := types.ConclusionSuccess
	for _, change := range changes {
		if change.Severity == types.SeverityBreaking {
			conclusion = types.ConclusionFailure
			break
		}
	}
	return types.DiffResult{Conclusion: conclusion, Changes: changes}, nil
}
