package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"schema-check/internal/types"
)

// BuiltSchema pairs a parsed schema with the textual source it was built
// from. Source is what the diff summary and engine refer back to.
type BuiltSchema struct {
	Schema *ast.Schema
	Source string
	Name   string
}

// SchemaPair holds the two independently built sides of a comparison.
type SchemaPair struct {
	Old BuiltSchema
	New BuiltSchema
}

type SchemaBuilder struct{}

func NewSchemaBuilder() SchemaBuilder {
	return SchemaBuilder{}
}

// Build constructs both sides of the comparison from raw file contents.
// A ".json" extension selects the introspection path: the blob is decoded
// and re-rendered as canonical SDL, which then serves as the comparison
// source. Anything else is treated as SDL directly. The old side is named
// "{ref}:{path}", the new side just "{path}".
func (b SchemaBuilder) Build(ctx context.Context, ptr types.SchemaPointer, baseRef string, oldText string, newText string) (SchemaPair, error) {
	assert.NotEmpty(ctx, ptr.Path, "schema path must be set")

	oldName := fmt.Sprintf("%s:%s", baseRef, ptr.Path)
	newName := ptr.Path

	oldSource, newSource := oldText, newText
	if isIntrospectionPath(ptr.Path) {
		var err error
		if oldSource, err = IntrospectionToSDL(oldText); err != nil {
			return SchemaPair{}, buildError("old", oldName, err)
		}
		if newSource, err = IntrospectionToSDL(newText); err != nil {
			return SchemaPair{}, buildError("new", newName, err)
		}
	}

	oldSchema, err := gqlparser.LoadSchema(&ast.Source{Name: oldName, Input: oldSource})
	if err != nil {
		return SchemaPair{}, buildError("old", oldName, err)
	}
	newSchema, err := gqlparser.LoadSchema(&ast.Source{Name: newName, Input: newSource})
	if err != nil {
		return SchemaPair{}, buildError("new", newName, err)
	}

	log.Ctx(ctx).Debug().Str("old", oldName).Str("new", newName).Msg("schemas built")
	return SchemaPair{
		Old: BuiltSchema{Schema: oldSchema, Source: oldSource, Name: oldName},
		New: BuiltSchema{Schema: newSchema, Source: newSource, Name: newName},
	}, nil
}

func isIntrospectionPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func buildError(side string, name string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("failed to build %s schema from %s", side, name)).
		WithCause(err)
}
