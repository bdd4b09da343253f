package core

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"schema-check/internal/types"
)

// Rule post-processes the diff engine's change list. Rules run in the
// order they were referenced and may reclassify or drop changes.
type Rule interface {
	Name() string
	Apply(ctx context.Context, changes []types.Change) []types.Change
}

const (
	RuleSuppressRemovalOfDeprecatedField = "suppress-removal-of-deprecated-field"
	RuleIgnoreDescriptionChanges         = "ignore-description-changes"
	RuleDangerousBreaking                = "dangerous-breaking"
	RuleConsiderUsage                    = "consider-usage"
)

// Builtins lists the names of the builtin rule registry, sorted.
func Builtins() []string {
	names := []string{
		RuleSuppressRemovalOfDeprecatedField,
		RuleIgnoreDescriptionChanges,
		RuleDangerousBreaking,
		RuleConsiderUsage,
	}
	sort.Strings(names)
	return names
}

// ResolveRules maps an ordered list of rule references to rule objects,
// preserving order. A reference is either a builtin name or a path to a
// YAML rule pack. Resolution is all-or-nothing: one unresolved reference
// rejects the whole set.
func ResolveRules(ctx context.Context, refs []string, usage *UsageList) ([]Rule, error) {
	supplied := 0
	resolved := make([]Rule, 0, len(refs))
	var unresolved []string
	for _, raw := range refs {
		ref := strings.TrimSpace(raw)
		if ref == "" {
			continue
		}
		supplied++
		if rule := builtinRule(ref, usage); rule != nil {
			resolved = append(resolved, rule)
			continue
		}
		rule, err := LoadRulePack(ref)
		if err != nil {
			log.Ctx(ctx).Debug().Str("rule", ref).Err(err).Msg("rule reference did not resolve")
			unresolved = append(unresolved, ref)
			continue
		}
		resolved = append(resolved, rule)
	}
	if len(resolved) < supplied {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("not all rules were recognized, unresolved: %s", strings.Join(unresolved, ", ")))
	}
	return resolved, nil
}

func builtinRule(name string, usage *UsageList) Rule {
	switch name {
	case RuleSuppressRemovalOfDeprecatedField:
		return suppressRemovalOfDeprecatedField{}
	case RuleIgnoreDescriptionChanges:
		return ignoreDescriptionChanges{}
	case RuleDangerousBreaking:
		return dangerousBreaking{}
	case RuleConsiderUsage:
		return considerUsage{usage: usage}
	default:
		return nil
	}
}

// ApplyRules runs every rule over the change list, in order.
func ApplyRules(ctx context.Context, changes []types.Change, rules []Rule) []types.Change {
	for _, rule := range rules {
		before := len(changes)
		changes = rule.Apply(ctx, changes)
		log.Ctx(ctx).Debug().Str("rule", rule.Name()).Int("before", before).Int("after", len(changes)).Msg("rule applied")
	}
	return changes
}

type suppressRemovalOfDeprecatedField struct{}

func (suppressRemovalOfDeprecatedField) Name() string {
	return RuleSuppressRemovalOfDeprecatedField
}

func (suppressRemovalOfDeprecatedField) Apply(_ context.Context, changes []types.Change) []types.Change {
	out := make([]types.Change, len(changes))
	for i, change := range changes {
		if change.Severity == types.SeverityBreaking && change.Deprecated {
			change.Severity = types.SeverityDangerous
		}
		out[i] = change
	}
	return out
}

type ignoreDescriptionChanges struct{}

func (ignoreDescriptionChanges) Name() string {
	return RuleIgnoreDescriptionChanges
}

func (ignoreDescriptionChanges) Apply(_ context.Context, changes []types.Change) []types.Change {
	out := make([]types.Change, 0, len(changes))
	for _, change := range changes {
		if strings.HasSuffix(change.Code, "_DESCRIPTION_CHANGED") {
			continue
		}
		out = append(out, change)
	}
	return out
}

type dangerousBreaking struct{}

func (dangerousBreaking) Name() string {
	return RuleDangerousBreaking
}

func (dangerousBreaking) Apply(_ context.Context, changes []types.Change) []types.Change {
	out := make([]types.Change, len(changes))
	for i, change := range changes {
		if change.Severity == types.SeverityDangerous {
			change.Severity = types.SeverityBreaking
		}
		out[i] = change
	}
	return out
}

// considerUsage downgrades breaking changes on coordinates that no
// consumer uses. Without a loaded usage list the rule is inert.
type considerUsage struct {
	usage *UsageList
}

func (considerUsage) Name() string {
	return RuleConsiderUsage
}

func (r considerUsage) Apply(_ context.Context, changes []types.Change) []types.Change {
	if r.usage == nil {
		return changes
	}
	out := make([]types.Change, len(changes))
	for i, change := range changes {
		if change.Severity == types.SeverityBreaking && !r.usage.InUse(change.Path) {
			change.Severity = types.SeverityDangerous
		}
		out[i] = change
	}
	return out
}

type rulePackFile struct {
	Rules []rulePackEntry `yaml:"rules"`
}

type rulePackEntry struct {
	Match    string `yaml:"match"`
	Severity string `yaml:"severity"`
	Drop     bool   `yaml:"drop"`
}

type rulePack struct {
	name    string
	entries []rulePackEntry
}

// LoadRulePack reads a custom rule from a YAML file. Each entry matches a
// change code (exact, or prefix with a trailing '*') and either drops the
// change or reclassifies its severity.
func LoadRulePack(path string) (Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("rule pack not found").
			WithCause(err)
	}
	var pack rulePackFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse rule pack yaml").
			WithCause(err)
	}
	if len(pack.Rules) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("rule pack defines no rules")
	}
	for _, entry := range pack.Rules {
		if strings.TrimSpace(entry.Match) == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("rule pack entry is missing a match pattern")
		}
		if entry.Drop {
			continue
		}
		switch types.Severity(entry.Severity) {
		case types.SeverityBreaking, types.SeverityDangerous, types.SeveritySafe:
		default:
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("rule pack entry has invalid severity %q", entry.Severity))
		}
	}
	return rulePack{name: path, entries: pack.Rules}, nil
}

func (p rulePack) Name() string {
	return p.name
}

func (p rulePack) Apply(_ context.Context, changes []types.Change) []types.Change {
	out := make([]types.Change, 0, len(changes))
	for _, change := range changes {
		dropped := false
		for _, entry := range p.entries {
			if !matchesCode(entry.Match, change.Code) {
				continue
			}
			if entry.Drop {
				dropped = true
			} else {
				change.Severity = types.Severity(entry.Severity)
			}
			break
		}
		if !dropped {
			out = append(out, change)
		}
	}
	return out
}

func matchesCode(pattern string, code string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(code, prefix)
	}
	return pattern == code
}
