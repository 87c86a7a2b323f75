package typetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamalang/llamac/internal/ast"
	"github.com/llamalang/llamac/internal/errcode"
)

func TestNewPrePopulatesBuiltins(t *testing.T) {
	table := New()
	for _, name := range ast.BuiltinNames {
		assert.True(t, table.typeKnown(name), "builtin %s should be known", name)
	}
	assert.False(t, table.typeKnown("nope"))
}

func TestValidateRejectsArrayOfArray(t *testing.T) {
	table := New()
	ty := &ast.Array{Elem: &ast.Array{Elem: ast.Int, Dims: 1}, Dims: 1}
	err := table.Validate(ty)
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, errcode.ValArrayOfArray, ve.Code)
}

func TestValidateRejectsRefOfArray(t *testing.T) {
	table := New()
	ty := &ast.Ref{Elem: &ast.Array{Elem: ast.Int, Dims: 1}}
	err := table.Validate(ty)
	require.Error(t, err)
	assert.Equal(t, errcode.ValRefOfArray, err.(*ValidationError).Code)
}

func TestValidateRejectsFunctionReturningArray(t *testing.T) {
	table := New()
	ty := &ast.Function{From: ast.Int, To: &ast.Array{Elem: ast.Int, Dims: 1}}
	err := table.Validate(ty)
	require.Error(t, err)
	assert.Equal(t, errcode.ValArrayReturn, err.(*ValidationError).Code)
}

func TestValidateRejectsUndefinedUserType(t *testing.T) {
	table := New()
	err := table.Validate(&ast.User{Name: "tree"})
	require.Error(t, err)
	assert.Equal(t, errcode.TypUndefType, err.(*ValidationError).Code)
}

func TestValidateAcceptsNestedRefAndArray(t *testing.T) {
	table := New()
	assert.NoError(t, table.Validate(&ast.Ref{Elem: &ast.Ref{Elem: ast.Int}}))
	assert.NoError(t, table.Validate(&ast.Array{Elem: &ast.Ref{Elem: ast.Int}, Dims: 2}))
}

func TestProcessRegistersMutuallyRecursiveTypes(t *testing.T) {
	table := New()
	group := &ast.TypeDef{
		Types: []*ast.TDef{
			{
				TypeName: "tree",
				Constructors: []*ast.Constructor{
					{Name: "Leaf"},
					{Name: "Node", ArgTypes: []ast.Type{&ast.User{Name: "forest"}}},
				},
			},
			{
				TypeName: "forest",
				Constructors: []*ast.Constructor{
					{Name: "Nil"},
					{Name: "Cons", ArgTypes: []ast.Type{&ast.User{Name: "tree"}, &ast.User{Name: "forest"}}},
				},
			},
		},
	}

	errs := table.Process(group)
	require.Empty(t, errs)

	ctor, owner, ok := table.LookupConstructor("Cons")
	require.True(t, ok)
	assert.Equal(t, "forest", owner.Name)
	assert.Len(t, ctor.ArgTypes, 2)

	ctors, ok := table.Constructors("tree")
	require.True(t, ok)
	assert.Len(t, ctors, 2)
}

func TestProcessRejectsRedefinedBuiltinType(t *testing.T) {
	table := New()
	group := &ast.TypeDef{Types: []*ast.TDef{{TypeName: "int"}}}
	errs := table.Process(group)
	require.Len(t, errs, 1)
	assert.Equal(t, errcode.TypRedefBuiltinType, errs[0].(*ValidationError).Code)
}

func TestProcessRejectsDuplicateConstructorNames(t *testing.T) {
	table := New()
	group := &ast.TypeDef{
		Types: []*ast.TDef{
			{TypeName: "a", Constructors: []*ast.Constructor{{Name: "Same"}}},
			{TypeName: "b", Constructors: []*ast.Constructor{{Name: "Same"}}},
		},
	}
	errs := table.Process(group)
	require.Len(t, errs, 1)
	assert.Equal(t, errcode.TypRedefConstructor, errs[0].(*ValidationError).Code)
}

func TestProcessRejectsConstructorWithUndefinedArgType(t *testing.T) {
	table := New()
	group := &ast.TypeDef{
		Types: []*ast.TDef{
			{TypeName: "a", Constructors: []*ast.Constructor{
				{Name: "Wrap", ArgTypes: []ast.Type{&ast.User{Name: "nosuch"}}},
			}},
		},
	}
	errs := table.Process(group)
	require.Len(t, errs, 1)
	assert.Equal(t, errcode.TypUndefType, errs[0].(*ValidationError).Code)
}

func TestIsArray(t *testing.T) {
	table := New()
	assert.True(t, table.IsArray(&ast.Array{Elem: ast.Int, Dims: 1}))
	assert.False(t, table.IsArray(ast.Int))
}

func TestLookupConstructorUnknown(t *testing.T) {
	table := New()
	_, _, ok := table.LookupConstructor("Nope")
	assert.False(t, ok)
}

func TestIdentifierNormalizationUnifiesConfusableSpellings(t *testing.T) {
	table := New()
	precomposed := "caf\u00e9"   // NFC: e-acute as a single rune
	decomposed := "cafe\u0301" // NFD: e followed by a combining acute accent
	group := &ast.TypeDef{Types: []*ast.TDef{{TypeName: precomposed}}}
	errs := table.Process(group)
	require.Empty(t, errs)
	assert.True(t, table.typeKnown(decomposed))
}
