package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Introspection results arrive either as a bare {"__schema": ...} object
// or wrapped in a {"data": ...} envelope, depending on how the result was
// captured.
type introspectionPayload struct {
	Data   *introspectionData   `json:"data"`
	Schema *introspectionSchema `json:"__schema"`
}

type introspectionData struct {
	Schema *introspectionSchema `json:"__schema"`
}

type introspectionSchema struct {
	QueryType        *introspectionTypeRef `json:"queryType"`
	MutationType     *introspectionTypeRef `json:"mutationType"`
	SubscriptionType *introspectionTypeRef `json:"subscriptionType"`
	Types            []introspectionType   `json:"types"`
}

type introspectionType struct {
	Kind          string                   `json:"kind"`
	Name          string                   `json:"name"`
	Description   string                   `json:"description"`
	Fields        []introspectionField     `json:"fields"`
	InputFields   []introspectionInput     `json:"inputFields"`
	Interfaces    []introspectionTypeRef   `json:"interfaces"`
	EnumValues    []introspectionEnumValue `json:"enumValues"`
	PossibleTypes []introspectionTypeRef   `json:"possibleTypes"`
}

type introspectionField struct {
	Name              string                `json:"name"`
	Description       string                `json:"description"`
	Args              []introspectionInput  `json:"args"`
	Type              *introspectionTypeRef `json:"type"`
	IsDeprecated      bool                  `json:"isDeprecated"`
	DeprecationReason *string               `json:"deprecationReason"`
}

type introspectionInput struct {
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Type         *introspectionTypeRef `json:"type"`
	DefaultValue *string               `json:"defaultValue"`
}

type introspectionEnumValue struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

type introspectionTypeRef struct {
	Kind   string                `json:"kind"`
	Name   string                `json:"name"`
	OfType *introspectionTypeRef `json:"ofType"`
}

var builtinScalars = map[string]struct{}{
	"String":  {},
	"Int":     {},
	"Float":   {},
	"Boolean": {},
	"ID":      {},
}

// IntrospectionToSDL decodes an introspection result and renders it as
// canonical SDL: types sorted by name, built-in and introspection types
// omitted. The rendered text is what the comparison uses as its source,
// so two structurally equal schemas always render identically.
func IntrospectionToSDL(data string) (string, error) {
	var payload introspectionPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse introspection result").
			WithCause(err)
	}
	schema := payload.Schema
	if schema == nil && payload.Data != nil {
		schema = payload.Data.Schema
	}
	if schema == nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("introspection result has no __schema object")
	}
	return renderSDL(schema), nil
}

func renderSDL(schema *introspectionSchema) string {
	var out strings.Builder
	if block := renderSchemaBlock(schema); block != "" {
		out.WriteString(block)
	}
	typesByName := make([]introspectionType, 0, len(schema.Types))
	for _, def := range schema.Types {
		if strings.HasPrefix(def.Name, "__") {
			continue
		}
		if _, builtin := builtinScalars[def.Name]; builtin {
			continue
		}
		typesByName = append(typesByName, def)
	}
	sort.Slice(typesByName, func(i, j int) bool { return typesByName[i].Name < typesByName[j].Name })
	for _, def := range typesByName {
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		renderType(&out, def)
	}
	return out.String()
}

// The schema block is only needed when a root operation type deviates
// from its conventional name.
func renderSchemaBlock(schema *introspectionSchema) string {
	roots := []struct {
		op           string
		conventional string
		ref          *introspectionTypeRef
	}{
		{"query", "Query", schema.QueryType},
		{"mutation", "Mutation", schema.MutationType},
		{"subscription", "Subscription", schema.SubscriptionType},
	}
	custom := false
	for _, root := range roots {
		if root.ref != nil && root.ref.Name != root.conventional {
			custom = true
		}
	}
	if !custom {
		return ""
	}
	var out strings.Builder
	out.WriteString("schema {\n")
	for _, root := range roots {
		if root.ref != nil {
			fmt.Fprintf(&out, "  %s: %s\n", root.op, root.ref.Name)
		}
	}
	out.WriteString("}\n")
	return out.String()
}

func renderType(out *strings.Builder, def introspectionType) {
	renderDescription(out, def.Description, "")
	switch def.Kind {
	case "SCALAR":
		fmt.Fprintf(out, "scalar %s\n", def.Name)
	case "OBJECT":
		fmt.Fprintf(out, "type %s%s {\n", def.Name, renderInterfaces(def.Interfaces))
		renderFields(out, def.Fields)
		out.WriteString("}\n")
	case "INTERFACE":
		fmt.Fprintf(out, "interface %s%s {\n", def.Name, renderInterfaces(def.Interfaces))
		renderFields(out, def.Fields)
		out.WriteString("}\n")
	case "UNION":
		members := make([]string, 0, len(def.PossibleTypes))
		for _, member := range def.PossibleTypes {
			members = append(members, member.Name)
		}
		sort.Strings(members)
		fmt.Fprintf(out, "union %s = %s\n", def.Name, strings.Join(members, " | "))
	case "ENUM":
		fmt.Fprintf(out, "enum %s {\n", def.Name)
		for _, value := range def.EnumValues {
			renderDescription(out, value.Description, "  ")
			fmt.Fprintf(out, "  %s%s\n", value.Name, renderDeprecation(value.IsDeprecated, value.DeprecationReason))
		}
		out.WriteString("}\n")
	case "INPUT_OBJECT":
		fmt.Fprintf(out, "input %s {\n", def.Name)
		for _, field := range def.InputFields {
			renderDescription(out, field.Description, "  ")
			fmt.Fprintf(out, "  %s\n", renderInput(field))
		}
		out.WriteString("}\n")
	}
}

func renderInterfaces(interfaces []introspectionTypeRef) string {
	if len(interfaces) == 0 {
		return ""
	}
	names := make([]string, 0, len(interfaces))
	for _, iface := range interfaces {
		names = append(names, iface.Name)
	}
	sort.Strings(names)
	return " implements " + strings.Join(names, " & ")
}

func renderFields(out *strings.Builder, fields []introspectionField) {
	for _, field := range fields {
		renderDescription(out, field.Description, "  ")
		fmt.Fprintf(out, "  %s%s: %s%s\n",
			field.Name,
			renderArgs(field.Args),
			renderTypeRef(field.Type),
			renderDeprecation(field.IsDeprecated, field.DeprecationReason))
	}
}

func renderArgs(args []introspectionInput) string {
	if len(args) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(args))
	for _, arg := range args {
		rendered = append(rendered, renderInput(arg))
	}
	return "(" + strings.Join(rendered, ", ") + ")"
}

func renderInput(input introspectionInput) string {
	rendered := fmt.Sprintf("%s: %s", input.Name, renderTypeRef(input.Type))
	if input.DefaultValue != nil {
		rendered += " = " + *input.DefaultValue
	}
	return rendered
}

func renderTypeRef(ref *introspectionTypeRef) string {
	if ref == nil {
		return ""
	}
	switch ref.Kind {
	case "NON_NULL":
		return renderTypeRef(ref.OfType) + "!"
	case "LIST":
		return "[" + renderTypeRef(ref.OfType) + "]"
	default:
		return ref.Name
	}
}

func renderDeprecation(deprecated bool, reason *string) string {
	if !deprecated {
		return ""
	}
	if reason == nil || *reason == "" {
		return " @deprecated"
	}
	return fmt.Sprintf(" @deprecated(reason: %q)", *reason)
}

func renderDescription(out *strings.Builder, description string, indent string) {
	if description == "" {
		return
	}
	fmt.Fprintf(out, "%s\"\"\"%s\"\"\"\n", indent, description)
}
