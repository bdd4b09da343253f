package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vektah/gqlparser/v2/ast"

	"schema-check/internal/types"
)

// Change codes emitted by the diff engine. Rule packs match on these.
const (
	CodeTypeRemoved                = "TYPE_REMOVED"
	CodeTypeAdded                  = "TYPE_ADDED"
	CodeTypeKindChanged            = "TYPE_KIND_CHANGED"
	CodeTypeDescriptionChanged     = "TYPE_DESCRIPTION_CHANGED"
	CodeFieldRemoved               = "FIELD_REMOVED"
	CodeFieldAdded                 = "FIELD_ADDED"
	CodeFieldTypeChanged           = "FIELD_TYPE_CHANGED"
	CodeFieldDescriptionChanged    = "FIELD_DESCRIPTION_CHANGED"
	CodeFieldDeprecationAdded      = "FIELD_DEPRECATION_ADDED"
	CodeFieldDeprecationRemoved    = "FIELD_DEPRECATION_REMOVED"
	CodeFieldArgumentRemoved       = "FIELD_ARGUMENT_REMOVED"
	CodeFieldArgumentAdded         = "FIELD_ARGUMENT_ADDED"
	CodeFieldArgumentTypeChanged   = "FIELD_ARGUMENT_TYPE_CHANGED"
	CodeInputFieldRemoved          = "INPUT_FIELD_REMOVED"
	CodeInputFieldAdded            = "INPUT_FIELD_ADDED"
	CodeInputFieldTypeChanged      = "INPUT_FIELD_TYPE_CHANGED"
	CodeEnumValueRemoved           = "ENUM_VALUE_REMOVED"
	CodeEnumValueAdded             = "ENUM_VALUE_ADDED"
	CodeUnionMemberRemoved         = "UNION_MEMBER_REMOVED"
	CodeUnionMemberAdded           = "UNION_MEMBER_ADDED"
	CodeObjectTypeInterfaceRemoved = "OBJECT_TYPE_INTERFACE_REMOVED"
	CodeObjectTypeInterfaceAdded   = "OBJECT_TYPE_INTERFACE_ADDED"
)

// DiffEngine detects differences between two schema representations. The
// walk is deterministic: type names in lexical order, members in the
// order the new side declares them (old-side order for removals).
type DiffEngine struct{}

func NewDiffEngine() DiffEngine {
	return DiffEngine{}
}

func (e DiffEngine) Compare(ctx context.Context, oldSchema *ast.Schema, newSchema *ast.Schema) []types.Change {
	changes := []types.Change{}
	for _, name := range unionOfTypeNames(oldSchema, newSchema) {
		oldDef := namedType(oldSchema, name)
		newDef := namedType(newSchema, name)
		switch {
		case oldDef != nil && newDef == nil:
			changes = append(changes, types.Change{
				Code:     CodeTypeRemoved,
				Message:  fmt.Sprintf("Type '%s' was removed", name),
				Path:     name,
				Severity: types.SeverityBreaking,
			})
		case oldDef == nil && newDef != nil:
			changes = append(changes, types.Change{
				Code:     CodeTypeAdded,
				Message:  fmt.Sprintf("Type '%s' was added", name),
				Path:     name,
				Severity: types.SeveritySafe,
			})
		default:
			changes = append(changes, e.compareType(oldDef, newDef)...)
		}
	}
	log.Ctx(ctx).Debug().Int("changes", len(changes)).Msg("schemas compared")
	return changes
}

func (e DiffEngine) compareType(oldDef *ast.Definition, newDef *ast.Definition) []types.Change {
	if oldDef.Kind != newDef.Kind {
		return []types.Change{{
			Code:     CodeTypeKindChanged,
			Message:  fmt.Sprintf("Type '%s' changed kind from %s to %s", oldDef.Name, kindName(oldDef.Kind), kindName(newDef.Kind)),
			Path:     oldDef.Name,
			Severity: types.SeverityBreaking,
		}}
	}
	var changes []types.Change
	if oldDef.Description != newDef.Description {
		changes = append(changes, types.Change{
			Code:     CodeTypeDescriptionChanged,
			Message:  fmt.Sprintf("Description of type '%s' changed", oldDef.Name),
			Path:     oldDef.Name,
			Severity: types.SeveritySafe,
		})
	}
	switch oldDef.Kind {
	case ast.Object, ast.Interface:
		changes = append(changes, e.compareInterfaces(oldDef, newDef)...)
		changes = append(changes, e.compareFields(oldDef, newDef)...)
	case ast.InputObject:
		changes = append(changes, e.compareInputFields(oldDef, newDef)...)
	case ast.Enum:
		changes = append(changes, e.compareEnumValues(oldDef, newDef)...)
	case ast.Union:
		changes = append(changes, e.compareUnionMembers(oldDef, newDef)...)
	}
	return changes
}

func (e DiffEngine) compareFields(oldDef *ast.Definition, newDef *ast.Definition) []types.Change {
	var changes []types.Change
	for _, oldField := range oldDef.Fields {
		coordinate := oldDef.Name + "." + oldField.Name
		newField := newDef.Fields.ForName(oldField.Name)
		if newField == nil {
			changes = append(changes, types.Change{
				Code:       CodeFieldRemoved,
				Message:    fmt.Sprintf("Field '%s' was removed from %s '%s'", oldField.Name, strings.ToLower(kindName(oldDef.Kind)), oldDef.Name),
				Path:       coordinate,
				Severity:   types.SeverityBreaking,
				Deprecated: isDeprecated(oldField.Directives),
			})
			continue
		}
		if oldField.Type.String() != newField.Type.String() {
			changes = append(changes, types.Change{
				Code:     CodeFieldTypeChanged,
				Message:  fmt.Sprintf("Field '%s' changed type from %s to %s", coordinate, oldField.Type.String(), newField.Type.String()),
				Path:     coordinate,
				Severity: types.SeverityBreaking,
			})
		}
		if oldField.Description != newField.Description {
			changes = append(changes, types.Change{
				Code:     CodeFieldDescriptionChanged,
				Message:  fmt.Sprintf("Description of field '%s' changed", coordinate),
				Path:     coordinate,
				Severity: types.SeveritySafe,
			})
		}
		changes = append(changes, e.compareDeprecation(coordinate, oldField, newField)...)
		changes = append(changes, e.compareArguments(coordinate, oldField, newField)...)
	}
	for _, newField := range newDef.Fields {
		if oldDef.Fields.ForName(newField.Name) == nil {
			changes = append(changes, types.Change{
				Code:     CodeFieldAdded,
				Message:  fmt.Sprintf("Field '%s' was added to %s '%s'", newField.Name, strings.ToLower(kindName(newDef.Kind)), newDef.Name),
				Path:     newDef.Name + "." + newField.Name,
				Severity: types.SeveritySafe,
			})
		}
	}
	return changes
}

func (e DiffEngine) compareDeprecation(coordinate string, oldField *ast.FieldDefinition, newField *ast.FieldDefinition) []types.Change {
	oldDeprecated := isDeprecated(oldField.Directives)
	newDeprecated := isDeprecated(newField.Directives)
	switch {
	case !oldDeprecated && newDeprecated:
		return []types.Change{{
			Code:       CodeFieldDeprecationAdded,
			Message:    fmt.Sprintf("Field '%s' is deprecated", coordinate),
			Path:       coordinate,
			Severity:   types.SeverityDangerous,
			Deprecated: true,
		}}
	case oldDeprecated && !newDeprecated:
		return []types.Change{{
			Code:     CodeFieldDeprecationRemoved,
			Message:  fmt.Sprintf("Field '%s' is no longer deprecated", coordinate),
			Path:     coordinate,
			Severity: types.SeveritySafe,
		}}
	}
	return nil
}

func (e DiffEngine) compareArguments(coordinate string, oldField *ast.FieldDefinition, newField *ast.FieldDefinition) []types.Change {
	var changes []types.Change
	for _, oldArg := range oldField.Arguments {
		argCoordinate := coordinate + "." + oldArg.Name
		newArg := newField.Arguments.ForName(oldArg.Name)
		if newArg == nil {
			changes = append(changes, types.Change{
				Code:     CodeFieldArgumentRemoved,
				Message:  fmt.Sprintf("Argument '%s' was removed from field '%s'", oldArg.Name, coordinate),
				Path:     argCoordinate,
				Severity: types.SeverityBreaking,
			})
			continue
		}
		if oldArg.Type.String() != newArg.Type.String() {
			changes = append(changes, types.Change{
				Code:     CodeFieldArgumentTypeChanged,
				Message:  fmt.Sprintf("Argument '%s' changed type from %s to %s", argCoordinate, oldArg.Type.String(), newArg.Type.String()),
				Path:     argCoordinate,
				Severity: types.SeverityBreaking,
			})
		}
	}
	for _, newArg := range newField.Arguments {
		if oldField.Arguments.ForName(newArg.Name) != nil {
			continue
		}
		severity := types.SeverityDangerous
		if newArg.Type.NonNull && newArg.DefaultValue == nil {
			severity = types.SeverityBreaking
		}
		changes = append(changes, types.Change{
			Code:     CodeFieldArgumentAdded,
			Message:  fmt.Sprintf("Argument '%s: %s' was added to field '%s'", newArg.Name, newArg.Type.String(), coordinate),
			Path:     coordinate + "." + newArg.Name,
			Severity: severity,
		})
	}
	return changes
}

func (e DiffEngine) compareInputFields(oldDef *ast.Definition, newDef *ast.Definition) []types.Change {
	var changes []types.Change
	for _, oldField := range oldDef.Fields {
		coordinate := oldDef.Name + "." + oldField.Name
		newField := newDef.Fields.ForName(oldField.Name)
		if newField == nil {
			changes = append(changes, types.Change{
				Code:       CodeInputFieldRemoved,
				Message:    fmt.Sprintf("Input field '%s' was removed from '%s'", oldField.Name, oldDef.Name),
				Path:       coordinate,
				Severity:   types.SeverityBreaking,
				Deprecated: isDeprecated(oldField.Directives),
			})
			continue
		}
		if oldField.Type.String() != newField.Type.String() {
			changes = append(changes, types.Change{
				Code:     CodeInputFieldTypeChanged,
				Message:  fmt.Sprintf("Input field '%s' changed type from %s to %s", coordinate, oldField.Type.String(), newField.Type.String()),
				Path:     coordinate,
				Severity: types.SeverityBreaking,
			})
		}
	}
	for _, newField := range newDef.Fields {
		if oldDef.Fields.ForName(newField.Name) != nil {
			continue
		}
		severity := types.SeveritySafe
		if newField.Type.NonNull && newField.DefaultValue == nil {
			severity = types.SeverityBreaking
		}
		changes = append(changes, types.Change{
			Code:     CodeInputFieldAdded,
			Message:  fmt.Sprintf("Input field '%s: %s' was added to '%s'", newField.Name, newField.Type.String(), newDef.Name),
			Path:     newDef.Name + "." + newField.Name,
			Severity: severity,
		})
	}
	return changes
}

func (e DiffEngine) compareEnumValues(oldDef *ast.Definition, newDef *ast.Definition) []types.Change {
	var changes []types.Change
	for _, oldValue := range oldDef.EnumValues {
		if newDef.EnumValues.ForName(oldValue.Name) == nil {
			changes = append(changes, types.Change{
				Code:       CodeEnumValueRemoved,
				Message:    fmt.Sprintf("Enum value '%s' was removed from enum '%s'", oldValue.Name, oldDef.Name),
				Path:       oldDef.Name + "." + oldValue.Name,
				Severity:   types.SeverityBreaking,
				Deprecated: isDeprecated(oldValue.Directives),
			})
		}
	}
	for _, newValue := range newDef.EnumValues {
		if oldDef.EnumValues.ForName(newValue.Name) == nil {
			changes = append(changes, types.Change{
				Code:     CodeEnumValueAdded,
				Message:  fmt.Sprintf("Enum value '%s' was added to enum '%s'", newValue.Name, newDef.Name),
				Path:     newDef.Name + "." + newValue.Name,
				Severity: types.SeverityDangerous,
			})
		}
	}
	return changes
}

func (e DiffEngine) compareUnionMembers(oldDef *ast.Definition, newDef *ast.Definition) []types.Change {
	var changes []types.Change
	newMembers := stringSet(newDef.Types)
	oldMembers := stringSet(oldDef.Types)
	for _, member := range oldDef.Types {
		if _, ok := newMembers[member]; !ok {
			changes = append(changes, types.Change{
				Code:     CodeUnionMemberRemoved,
				Message:  fmt.Sprintf("Member '%s' was removed from union '%s'", member, oldDef.Name),
				Path:     oldDef.Name,
				Severity: types.SeverityBreaking,
			})
		}
	}
	for _, member := range newDef.Types {
		if _, ok := oldMembers[member]; !ok {
			changes = append(changes, types.Change{
				Code:     CodeUnionMemberAdded,
				Message:  fmt.Sprintf("Member '%s' was added to union '%s'", member, newDef.Name),
				Path:     newDef.Name,
				Severity: types.SeverityDangerous,
			})
		}
	}
	return changes
}

func (e DiffEngine) compareInterfaces(oldDef *ast.Definition, newDef *ast.Definition) []types.Change {
	var changes []types.Change
	newInterfaces := stringSet(newDef.Interfaces)
	oldInterfaces := stringSet(oldDef.Interfaces)
	for _, iface := range oldDef.Interfaces {
		if _, ok := newInterfaces[iface]; !ok {
			changes = append(changes, types.Change{
				Code:     CodeObjectTypeInterfaceRemoved,
				Message:  fmt.Sprintf("'%s' no longer implements interface '%s'", oldDef.Name, iface),
				Path:     oldDef.Name,
				Severity: types.SeverityBreaking,
			})
		}
	}
	for _, iface := range newDef.Interfaces {
		if _, ok := oldInterfaces[iface]; !ok {
			changes = append(changes, types.Change{
				Code:     CodeObjectTypeInterfaceAdded,
				Message:  fmt.Sprintf("'%s' now implements interface '%s'", newDef.Name, iface),
				Path:     newDef.Name,
				Severity: types.SeverityDangerous,
			})
		}
	}
	return changes
}

func unionOfTypeNames(oldSchema *ast.Schema, newSchema *ast.Schema) []string {
	seen := map[string]struct{}{}
	for name, def := range oldSchema.Types {
		if comparableType(name, def) {
			seen[name] = struct{}{}
		}
	}
	for name, def := range newSchema.Types {
		if comparableType(name, def) {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func comparableType(name string, def *ast.Definition) bool {
	return !def.BuiltIn && !strings.HasPrefix(name, "__")
}

func namedType(schema *ast.Schema, name string) *ast.Definition {
	def, ok := schema.Types[name]
	if !ok || !comparableType(name, def) {
		return nil
	}
	return def
}

func isDeprecated(directives ast.DirectiveList) bool {
	return directives.ForName("deprecated") != nil
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

func kindName(kind ast.DefinitionKind) string {
	switch kind {
	case ast.Object:
		return "Object"
	case ast.Interface:
		return "Interface"
	case ast.Union:
		return "Union"
	case ast.Enum:
		return "Enum"
	case ast.InputObject:
		return "InputObject"
	case ast.Scalar:
		return "Scalar"
	default:
		return string(kind)
	}
}
