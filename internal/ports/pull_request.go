package ports

import (
	"context"

	"schema-check/internal/types"
)

// PullRequestPort looks up the pull request a commit belongs to. A nil
// result with a nil error means the commit is not associated with one.
type PullRequestPort interface {
	AssociatedPullRequest(ctx context.Context, commitSHA string) (*types.PullRequest, error)
}
