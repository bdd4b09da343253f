package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schema-check/internal/adapters"
	"schema-check/internal/core"
	"schema-check/internal/types"
)

const oldSchemaSDL = `
type Query {
  legacy: String @deprecated(reason: "use fresh")
  stable: String
}
`

const newSchemaSDL = `
type Query {
  stable: String
  fresh: String
}
`

type fakeRemote struct {
	files map[string]string
	calls []string
}

func (f *fakeRemote) Load(_ context.Context, ref string, path string) (string, error) {
	key := ref + ":" + path
	f.calls = append(f.calls, key)
	text, ok := f.files[key]
	if !ok {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("schema file " + key + " not found")
	}
	return text, nil
}

type fakeWorkspace struct {
	files map[string]string
	calls int
}

func (f *fakeWorkspace) Load(_ context.Context, path string) (string, error) {
	f.calls++
	text, ok := f.files[path]
	if !ok {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("schema file " + path + " not found in workspace")
	}
	return text, nil
}

type fakePulls struct {
	pr *types.PullRequest
}

func (f fakePulls) AssociatedPullRequest(_ context.Context, _ string) (*types.PullRequest, error) {
	return f.pr, nil
}

type recordingDiff struct {
	inner  adapters.DiffEngineAdapter
	called bool
}

func (d *recordingDiff) Compare(ctx context.Context, pair core.SchemaPair, rules []core.Rule) (types.DiffResult, error) {
	d.called = true
	return d.inner.Compare(ctx, pair, rules)
}

type fakeReporter struct {
	notices []string
	errors  []string
	outputs map[string]string
}

func (r *fakeReporter) Notice(message string) { r.notices = append(r.notices, message) }
func (r *fakeReporter) Error(message string)  { r.errors = append(r.errors, message) }
func (r *fakeReporter) SetOutput(name string, value string) error {
	if r.outputs == nil {
		r.outputs = map[string]string{}
	}
	r.outputs[name] = value
	return nil
}

type testHarness struct {
	service   Service
	remote    *fakeRemote
	workspace *fakeWorkspace
	diff      *recordingDiff
	reporter  *fakeReporter
}

func newTestHarness(pr *types.PullRequest) *testHarness {
	files := map[string]string{}
	files["master:schema.graphql"] = oldSchemaSDL
	files["develop:schema.graphql"] = oldSchemaSDL
	files["refs/pull/42/merge:schema.graphql"] = newSchemaSDL
	remote := &fakeRemote{files: files}
	workspace := &fakeWorkspace{files: map[string]string{
		"schema.graphql": newSchemaSDL,
	}}
	diff := &recordingDiff{inner: adapters.NewDiffEngineAdapter()}
	reporter := &fakeReporter{}
	return &testHarness{
		service: Service{
			RemoteFiles:    remote,
			WorkspaceFiles: workspace,
			PullRequests:   fakePulls{pr: pr},
			Diff:           diff,
			Usage:          adapters.NewUsageFileAdapter(),
			Reporter:       reporter,
			Builder:        core.NewSchemaBuilder(),
		},
		remote:    remote,
		workspace: workspace,
		diff:      diff,
		reporter:  reporter,
	}
}

func baseRequest() CheckRequest {
	return CheckRequest{
		Token:         "token",
		Name:          "GraphQL Inspector",
		SchemaPointer: "master:schema.graphql",
		MergeEnabled:  true,
		ApproveLabel:  "approved-breaking-change",
		CommitSHA:     "abc123",
		Workspace:     "/workspace",
	}
}

func TestCheckDetectsChanges(t *testing.T) {
	h := newTestHarness(nil)
	result, err := h.service.Check(t.Context(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, types.ConclusionSuccess, result.Conclusion)
	assert.Equal(t, 2, result.Changes)
	assert.Equal(t, "2", h.reporter.outputs["changes"])
	assert.Equal(t, 1, h.workspace.calls, "head side loads from the workspace without a pull request")
	assert.Contains(t, h.remote.calls, "master:schema.graphql")
}

func TestCheckMergeModeSubstitutesRefs(t *testing.T) {
	pr := &types.PullRequest{Number: 42, State: types.PullRequestStateOpen, BaseRef: "develop"}
	h := newTestHarness(pr)

	result, err := h.service.Check(t.Context(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Changes)
	assert.Equal(t, 0, h.workspace.calls, "merge mode loads the head remotely")
	assert.Contains(t, h.remote.calls, "develop:schema.graphql", "base comes from the pull request target branch")
	assert.Contains(t, h.remote.calls, "refs/pull/42/merge:schema.graphql")
}

func TestCheckMergeModeDisabledKeepsPointerRef(t *testing.T) {
	pr := &types.PullRequest{Number: 42, State: types.PullRequestStateOpen, BaseRef: "develop"}
	h := newTestHarness(pr)

	req := baseRequest()
	req.MergeEnabled = false
	_, err := h.service.Check(t.Context(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, h.workspace.calls)
	assert.Equal(t, []string{"master:schema.graphql"}, h.remote.calls)
}

func TestCheckUnresolvedRuleNeverInvokesDiff(t *testing.T) {
	h := newTestHarness(nil)
	req := baseRequest()
	req.Rules = []string{"no-such-rule"}

	_, err := h.service.Check(t.Context(), req)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.False(t, h.diff.called)
	assert.Empty(t, h.remote.calls, "no file load is attempted")
}

func TestCheckMissingPathFailsBeforeAnyLoad(t *testing.T) {
	h := newTestHarness(nil)
	req := baseRequest()
	req.SchemaPointer = "master"

	_, err := h.service.Check(t.Context(), req)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.Empty(t, h.remote.calls)
	assert.Equal(t, 0, h.workspace.calls)
}

func TestCheckFailOnBreaking(t *testing.T) {
	h := newTestHarness(nil)
	req := baseRequest()
	req.FailOnBreaking = true

	result, err := h.service.Check(t.Context(), req)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.Equal(t, types.ConclusionFailure, result.Conclusion)
	require.NotEmpty(t, h.reporter.errors, "summary is surfaced as an error")
	assert.Contains(t, h.reporter.errors[0], "2 change(s) detected")
}

func TestCheckApproveLabelOverridesFailure(t *testing.T) {
	pr := &types.PullRequest{
		Number:  42,
		State:   types.PullRequestStateOpen,
		BaseRef: "develop",
		Labels:  []string{"approved-breaking-change"},
	}
	h := newTestHarness(pr)
	req := baseRequest()
	req.FailOnBreaking = true

	result, err := h.service.Check(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, types.ConclusionSuccess, result.Conclusion)

	overrideSeen := false
	for _, notice := range h.reporter.notices {
		if notice == `breaking changes approved via the "approved-breaking-change" label` {
			overrideSeen = true
		}
	}
	assert.True(t, overrideSeen, "override notice is reported")
}

func TestCheckCustomRuleInfluencesConclusion(t *testing.T) {
	pack := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(pack, []byte("rules:\n  - match: FIELD_REMOVED\n    severity: dangerous\n"), 0o644))

	h := newTestHarness(nil)
	req := baseRequest()
	req.FailOnBreaking = true
	req.Rules = []string{pack}

	result, err := h.service.Check(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, types.ConclusionSuccess, result.Conclusion)
	assert.Equal(t, 2, result.Changes)
}

func TestCheckUsageHookFailureIsSoft(t *testing.T) {
	h := newTestHarness(nil)
	req := baseRequest()
	req.UsageHook = filepath.Join(t.TempDir(), "missing.yaml")

	result, err := h.service.Check(t.Context(), req)
	require.NoError(t, err, "a failed usage hook load never fails the run")
	assert.Equal(t, types.ConclusionSuccess, result.Conclusion)
}

func TestCheckRequiresToken(t *testing.T) {
	h := newTestHarness(nil)
	req := baseRequest()
	req.Token = ""
	_, err := h.service.Check(t.Context(), req)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestCheckRequiresWorkspace(t *testing.T) {
	h := newTestHarness(nil)
	req := baseRequest()
	req.Workspace = ""
	_, err := h.service.Check(t.Context(), req)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestCheckFailedLoadAbortsRun(t *testing.T) {
	h := newTestHarness(nil)
	req := baseRequest()
	req.SchemaPointer = "gone:schema.graphql"

	_, err := h.service.Check(t.Context(), req)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	assert.False(t, h.diff.called)
}
