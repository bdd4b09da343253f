package policies

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"schema-check/internal/types"
)

// ConclusionPolicy turns the diff engine's raw verdict into the final
// one. The only transition is a downgrade: a Failure becomes a Success
// when breaking-change enforcement is disabled, or when the associated
// pull request carries the approval label. A Success is never raised to
// a Failure.
type ConclusionPolicy struct {
	FailOnBreaking bool
	ApproveLabel   string
}

func NewConclusionPolicy(failOnBreaking bool, approveLabel string) ConclusionPolicy {
	return ConclusionPolicy{
		FailOnBreaking: failOnBreaking,
		ApproveLabel:   approveLabel,
	}
}

// Outcome is the policy's decision plus the notice explaining an
// override, when one happened.
type Outcome struct {
	Conclusion types.Conclusion
	Overridden bool
	Notice     string
}

func (p ConclusionPolicy) Resolve(ctx context.Context, raw types.Conclusion, pr *types.PullRequest) Outcome {
	if raw != types.ConclusionFailure {
		return Outcome{Conclusion: raw}
	}
	if !p.FailOnBreaking {
		log.Ctx(ctx).Debug().Msg("breaking change enforcement disabled")
		return Outcome{
			Conclusion: types.ConclusionSuccess,
			Overridden: true,
			Notice:     "breaking changes detected, but fail-on-breaking is disabled",
		}
	}
	if pr != nil && p.ApproveLabel != "" && pr.HasLabel(p.ApproveLabel) {
		return Outcome{
			Conclusion: types.ConclusionSuccess,
			Overridden: true,
			Notice:     fmt.Sprintf("breaking changes approved via the %q label", p.ApproveLabel),
		}
	}
	return Outcome{Conclusion: types.ConclusionFailure}
}
