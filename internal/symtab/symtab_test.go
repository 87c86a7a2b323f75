package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamalang/llamac/internal/ast"
)

func constDef(name string) *ast.ConstantDef {
	return &ast.ConstantDef{Name: name}
}

func TestInsertAndLookupInCurrentScope(t *testing.T) {
	table := New()
	table.OpenScope()
	require.NoError(t, table.InsertSymbol(constDef("x")))

	def, ok := table.LookupInCurrentScope("x")
	require.True(t, ok)
	assert.Equal(t, "x", def.DefName())

	_, ok = table.LookupInCurrentScope("y")
	assert.False(t, ok)
}

func TestInsertRejectsRedefinitionInSameScope(t *testing.T) {
	table := New()
	table.OpenScope()
	require.NoError(t, table.InsertSymbol(constDef("x")))

	err := table.InsertSymbol(constDef("x"))
	require.Error(t, err)
	var redef *RedefIdentifierError
	require.ErrorAs(t, err, &redef)
	assert.Equal(t, "x", redef.Prev.DefName())
}

func TestShadowingAcrossScopesIsAllowed(t *testing.T) {
	table := New()
	table.OpenScope()
	require.NoError(t, table.InsertSymbol(constDef("x")))
	table.OpenScope()
	require.NoError(t, table.InsertSymbol(constDef("x")))

	def, ok := table.LookupLiveDef("x")
	require.True(t, ok)
	assert.Same(t, table.CurrentScope().entries["x"], def)
}

func TestLookupLiveDefSkipsInvisibleScopes(t *testing.T) {
	table := New()
	table.OpenScope()
	require.NoError(t, table.InsertSymbol(constDef("x")))

	inner := table.OpenScope()
	inner.Visible = false

	def, ok := table.LookupLiveDef("x")
	require.True(t, ok)
	assert.Equal(t, "x", def.DefName())
}

func TestInvisibleScopeStillBlocksSameScopeRedefinition(t *testing.T) {
	table := New()
	scope := table.OpenScope()
	scope.Visible = false
	require.NoError(t, table.InsertSymbol(constDef("x")))

	err := table.InsertSymbol(constDef("x"))
	assert.Error(t, err, "visibility must not affect same-scope redefinition checks")
}

func TestCloseScopeIsGracefulWhenEmpty(t *testing.T) {
	table := New()
	assert.Equal(t, 0, table.Depth())
	table.CloseScope()
	table.CloseScope()
	assert.Equal(t, 0, table.Depth())
}

func TestDepthTracksOpenScopes(t *testing.T) {
	table := New()
	table.OpenScope()
	table.OpenScope()
	assert.Equal(t, 2, table.Depth())
	table.CloseScope()
	assert.Equal(t, 1, table.Depth())
}

func TestInsertSymbolPanicsWithNoOpenScope(t *testing.T) {
	table := New()
	assert.Panics(t, func() {
		_ = table.InsertSymbol(constDef("x"))
	})
}

func TestIdentifierNormalizationUnifiesLookup(t *testing.T) {
	table := New()
	table.OpenScope()
	require.NoError(t, table.InsertSymbol(constDef("café")))

	_, ok := table.LookupLiveDef("café")
	assert.True(t, ok)
}
