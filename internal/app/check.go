package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"schema-check/internal/core"
	"schema-check/internal/policies"
	"schema-check/internal/types"
)

const failureMessage = "Something is wrong with your schema"

// Check runs one comparison: resolve the pointer and the rules, find the
// associated pull request, load both schema revisions, diff them, apply
// the conclusion policy, and report. Configuration and build problems
// abort before the diff engine runs; a Failure conclusion is returned as
// an error so the caller maps it to a failed exit.
func (s Service) Check(ctx context.Context, req CheckRequest) (CheckResult, error) {
	if strings.TrimSpace(req.Token) == "" {
		return CheckResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("github token is required")
	}
	if strings.TrimSpace(req.Workspace) == "" {
		return CheckResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("workspace directory is not set")
	}

	ptr, err := core.ParseSchemaPointer(req.SchemaPointer)
	if err != nil {
		return CheckResult{}, err
	}

	// The usage hook is optional tooling: a failed load means no usage
	// check, never a failed run.
	var usage *core.UsageList
	if req.UsageHook != "" {
		loaded, err := s.Usage.Load(ctx, req.UsageHook)
		if err != nil {
			log.Ctx(ctx).Debug().Str("hook", req.UsageHook).Err(err).Msg("usage hook not loaded")
		} else {
			usage = loaded
		}
	}

	rules, err := core.ResolveRules(ctx, req.Rules, usage)
	if err != nil {
		return CheckResult{}, err
	}

	s.Reporter.Notice(fmt.Sprintf("%s check started", req.Name))

	pr, err := s.PullRequests.AssociatedPullRequest(ctx, req.CommitSHA)
	if err != nil {
		return CheckResult{}, err
	}

	targets := core.ResolveTargets(ptr, req.CommitSHA, pr, req.MergeEnabled)
	s.Reporter.Notice(fmt.Sprintf("comparing %s against %s", targets.HeadRef, targets.BaseRef))

	oldText, newText, err := s.loadPair(ctx, ptr, targets)
	if err != nil {
		return CheckResult{}, err
	}

	pair, err := s.Builder.Build(ctx, ptr, targets.BaseRef, oldText, newText)
	if err != nil {
		return CheckResult{}, err
	}

	result, err := s.Diff.Compare(ctx, pair, rules)
	if err != nil {
		return CheckResult{}, err
	}

	if err := s.Reporter.SetOutput("changes", strconv.Itoa(len(result.Changes))); err != nil {
		return CheckResult{}, err
	}
	log.Ctx(ctx).Info().Int("changes", len(result.Changes)).Msg("comparison finished")

	policy := policies.NewConclusionPolicy(req.FailOnBreaking, req.ApproveLabel)
	outcome := policy.Resolve(ctx, result.Conclusion, pr)
	if outcome.Overridden {
		s.Reporter.Notice(outcome.Notice)
	}
	s.Reporter.Notice(fmt.Sprintf("conclusion: %s", outcome.Conclusion))

	summary := core.RenderSummary(req.Name, result.Changes)
	checkResult := CheckResult{
		Conclusion: outcome.Conclusion,
		Changes:    len(result.Changes),
		Summary:    summary,
	}
	if outcome.Conclusion == types.ConclusionFailure {
		s.Reporter.Error(summary)
		return checkResult, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(failureMessage)
	}
	s.Reporter.Notice(summary)
	return checkResult, nil
}

// loadPair fetches both schema revisions concurrently. Either failure
// aborts the run; there is no partial-success path and no retry.
func (s Service) loadPair(ctx context.Context, ptr types.SchemaPointer, targets core.Targets) (string, string, error) {
	var (
		wg               sync.WaitGroup
		oldText, newText string
		oldErr, newErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		oldText, oldErr = s.RemoteFiles.Load(ctx, targets.BaseRef, ptr.Path)
	}()
	go func() {
		defer wg.Done()
		if targets.Workspace {
			newText, newErr = s.WorkspaceFiles.Load(ctx, ptr.Path)
		} else {
			newText, newErr = s.RemoteFiles.Load(ctx, targets.HeadRef, ptr.Path)
		}
	}()
	wg.Wait()
	if oldErr != nil {
		return "", "", oldErr
	}
	if newErr != nil {
		return "", "", newErr
	}
	return oldText, newText, nil
}
