package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schema-check/internal/types"
)

func TestResolveRulesBuiltins(t *testing.T) {
	refs := []string{RuleDangerousBreaking, RuleIgnoreDescriptionChanges}
	rules, err := ResolveRules(t.Context(), refs, nil)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	// Input order is preserved.
	assert.Equal(t, RuleDangerousBreaking, rules[0].Name())
	assert.Equal(t, RuleIgnoreDescriptionChanges, rules[1].Name())
}

func TestResolveRulesSkipsBlankEntries(t *testing.T) {
	rules, err := ResolveRules(t.Context(), []string{"", "  ", RuleDangerousBreaking}, nil)
	require.NoError(t, err)
	require.Len(t, rules, 1)
}

func TestResolveRulesAllOrNothing(t *testing.T) {
	refs := []string{RuleDangerousBreaking, "no-such-rule"}
	_, err := ResolveRules(t.Context(), refs, nil)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "no-such-rule")
}

func TestResolveRulesLoadsRulePack(t *testing.T) {
	path := writeRulePack(t, `
rules:
  - match: FIELD_REMOVED
    severity: dangerous
`)
	rules, err := ResolveRules(t.Context(), []string{path}, nil)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, path, rules[0].Name())
}

func TestRulePackReclassifies(t *testing.T) {
	path := writeRulePack(t, `
rules:
  - match: FIELD_REMOVED
    severity: dangerous
`)
	rule, err := LoadRulePack(path)
	require.NoError(t, err)

	changes := rule.Apply(t.Context(), []types.Change{
		{Code: CodeFieldRemoved, Severity: types.SeverityBreaking},
		{Code: CodeFieldAdded, Severity: types.SeveritySafe},
	})
	require.Len(t, changes, 2)
	assert.Equal(t, types.SeverityDangerous, changes[0].Severity)
	assert.Equal(t, types.SeveritySafe, changes[1].Severity)
}

func TestRulePackPrefixMatchAndDrop(t *testing.T) {
	path := writeRulePack(t, `
rules:
  - match: "FIELD_ARGUMENT_*"
    severity: safe
  - match: TYPE_DESCRIPTION_CHANGED
    drop: true
`)
	rule, err := LoadRulePack(path)
	require.NoError(t, err)

	changes := rule.Apply(t.Context(), []types.Change{
		{Code: CodeFieldArgumentRemoved, Severity: types.SeverityBreaking},
		{Code: CodeTypeDescriptionChanged, Severity: types.SeveritySafe},
		{Code: CodeFieldRemoved, Severity: types.SeverityBreaking},
	})
	require.Len(t, changes, 2)
	assert.Equal(t, types.SeveritySafe, changes[0].Severity)
	assert.Equal(t, CodeFieldRemoved, changes[1].Code)
}

func TestLoadRulePackRejectsInvalidSeverity(t *testing.T) {
	path := writeRulePack(t, `
rules:
  - match: FIELD_REMOVED
    severity: fatal
`)
	_, err := LoadRulePack(path)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestLoadRulePackMissingFile(t *testing.T) {
	_, err := LoadRulePack(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestSuppressRemovalOfDeprecatedField(t *testing.T) {
	rules, err := ResolveRules(t.Context(), []string{RuleSuppressRemovalOfDeprecatedField}, nil)
	require.NoError(t, err)

	changes := ApplyRules(t.Context(), []types.Change{
		{Code: CodeFieldRemoved, Severity: types.SeverityBreaking, Deprecated: true},
		{Code: CodeFieldRemoved, Severity: types.SeverityBreaking},
	}, rules)
	assert.Equal(t, types.SeverityDangerous, changes[0].Severity)
	assert.Equal(t, types.SeverityBreaking, changes[1].Severity)
}

func TestIgnoreDescriptionChanges(t *testing.T) {
	rules, err := ResolveRules(t.Context(), []string{RuleIgnoreDescriptionChanges}, nil)
	require.NoError(t, err)

	changes := ApplyRules(t.Context(), []types.Change{
		{Code: CodeFieldDescriptionChanged, Severity: types.SeveritySafe},
		{Code: CodeTypeDescriptionChanged, Severity: types.SeveritySafe},
		{Code: CodeFieldAdded, Severity: types.SeveritySafe},
	}, rules)
	require.Len(t, changes, 1)
	assert.Equal(t, CodeFieldAdded, changes[0].Code)
}

func TestConsiderUsage(t *testing.T) {
	usagePath := filepath.Join(t.TempDir(), "usage.yaml")
	require.NoError(t, os.WriteFile(usagePath, []byte("- Query.user\n"), 0o644))
	usage, err := LoadUsageList(usagePath)
	require.NoError(t, err)

	rules, err := ResolveRules(t.Context(), []string{RuleConsiderUsage}, usage)
	require.NoError(t, err)

	changes := ApplyRules(t.Context(), []types.Change{
		{Code: CodeFieldRemoved, Path: "Query.user", Severity: types.SeverityBreaking},
		{Code: CodeFieldRemoved, Path: "Query.stale", Severity: types.SeverityBreaking},
	}, rules)
	assert.Equal(t, types.SeverityBreaking, changes[0].Severity, "used coordinate stays breaking")
	assert.Equal(t, types.SeverityDangerous, changes[1].Severity, "unused coordinate is downgraded")
}

func TestConsiderUsageWithoutListIsInert(t *testing.T) {
	rules, err := ResolveRules(t.Context(), []string{RuleConsiderUsage}, nil)
	require.NoError(t, err)
	changes := ApplyRules(t.Context(), []types.Change{
		{Code: CodeFieldRemoved, Path: "Query.user", Severity: types.SeverityBreaking},
	}, rules)
	assert.Equal(t, types.SeverityBreaking, changes[0].Severity)
}

func TestBuiltinsListsEveryRuleOnce(t *testing.T) {
	names := Builtins()
	seen := map[string]int{}
	for _, name := range names {
		seen[name]++
	}
	for _, name := range []string{
		RuleSuppressRemovalOfDeprecatedField,
		RuleIgnoreDescriptionChanges,
		RuleDangerousBreaking,
		RuleConsiderUsage,
	} {
		assert.Equal(t, 1, seen[name], "rule %s", name)
	}
}

func writeRulePack(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
