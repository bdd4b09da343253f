package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"schema-check/internal/types"
)

// ParseSchemaPointer splits a "ref:path" pointer on the first colon. The
// path segment is mandatory; a pointer without one fails before any I/O
// happens.
func ParseSchemaPointer(raw string) (types.SchemaPointer, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.SchemaPointer{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("schema pointer is required")
	}
	ref, path, found := strings.Cut(trimmed, ":")
	if !found || strings.TrimSpace(path) == "" {
		return types.SchemaPointer{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("schema pointer %q is missing a path segment, expected ref:path", trimmed))
	}
	return types.SchemaPointer{
		Ref:  strings.TrimSpace(ref),
		Path: strings.TrimSpace(path),
	}, nil
}

// Targets is the resolved pair of load targets for one comparison run.
// BaseRef names the revision of the old schema, HeadRef the revision of
// the new one. When Workspace is true the head file is read from the
// checked-out workspace instead of the remote ref.
type Targets struct {
	BaseRef   string
	HeadRef   string
	Workspace bool
}

// ResolveTargets applies the merge-mode substitution. With merge mode
// enabled and an open pull request, the head side becomes the synthetic
// merge ref of the pull request and is fetched remotely, and the base
// side becomes the pull request's actual target branch when known.
func ResolveTargets(ptr types.SchemaPointer, commitSHA string, pr *types.PullRequest, mergeEnabled bool) Targets {
	targets := Targets{
		BaseRef:   ptr.Ref,
		HeadRef:   commitSHA,
		Workspace: true,
	}
	if !mergeEnabled || pr == nil || pr.State != types.PullRequestStateOpen {
		return targets
	}
	targets.HeadRef = fmt.Sprintf("refs/pull/%d/merge", pr.Number)
	targets.Workspace = false
	if pr.BaseRef != "" {
		targets.BaseRef = pr.BaseRef
	}
	return targets
}
