package infer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamalang/llamac/internal/ast"
	"github.com/llamalang/llamac/internal/diag"
	"github.com/llamalang/llamac/internal/errcode"
	"github.com/llamalang/llamac/internal/typetable"
)

// node is a minimal ast.DataNode test double, standing in for whichever
// real AST node would carry a type slot in the Analyzer.
type node struct {
	ast.Typed
}

func newNode(line int) *node {
	return &node{Typed: ast.Typed{Pos: ast.Pos{Line: line, Column: 1}}}
}

func newInferer() (*Inferer, *diag.MockLogger) {
	logger := diag.NewMockLogger()
	return New(typetable.New(), logger), logger
}

func TestGetTypeHandleIsIdempotent(t *testing.T) {
	inf, _ := newInferer()
	n := newNode(1)

	h1 := inf.GetTypeHandle(n)
	h2 := inf.GetTypeHandle(n)
	assert.Equal(t, h1.Id, h2.Id)
}

func TestConstrainTypeResolvesToConcrete(t *testing.T) {
	inf, logger := newInferer()
	n := newNode(1)
	inf.ConstrainType(n, ast.Int)
	inf.Resolve()

	require.True(t, logger.Success())
	assert.Equal(t, ast.Int, n.GetType())
}

func TestConstrainEqualUnifiesTwoHandles(t *testing.T) {
	inf, logger := newInferer()
	a, b := newNode(1), newNode(2)
	inf.ConstrainEqual(a, b)
	inf.ConstrainType(b, ast.Bool)
	inf.Resolve()

	require.True(t, logger.Success())
	assert.Equal(t, ast.Bool, a.GetType())
	assert.Equal(t, ast.Bool, b.GetType())
}

func TestUnifyIncompatibleBuiltinsReportsError(t *testing.T) {
	inf, logger := newInferer()
	n := newNode(1)
	inf.ConstrainType(n, ast.Int)
	inf.ConstrainType(n, ast.Bool)
	inf.Resolve()

	require.False(t, logger.Success())
	assert.Contains(t, logger.Codes(), errcode.UniIncompatibleTypes)
}

func TestUnifyArrayDecomposesElementTypes(t *testing.T) {
	inf, logger := newInferer()
	n := newNode(1)
	elem := inf.MakeNewType(n.Position())
	inf.ConstrainType(n, &ast.Array{Elem: elem, Dims: 1})
	inf.ConstrainType(n, &ast.Array{Elem: ast.Char, Dims: 1})
	inf.Resolve()

	require.True(t, logger.Success())
	arr, ok := n.GetType().(*ast.Array)
	require.True(t, ok)
	if diff := cmp.Diff(&ast.Array{Elem: ast.Char, Dims: 1}, arr); diff != "" {
		t.Errorf("resolved array type mismatch (-want +got):\n%s", diff)
	}
}

func TestUnifyArrayDimensionMismatch(t *testing.T) {
	inf, logger := newInferer()
	n := newNode(1)
	inf.ConstrainType(n, &ast.Array{Elem: ast.Int, Dims: 1})
	inf.ConstrainType(n, &ast.Array{Elem: ast.Int, Dims: 2})
	inf.Resolve()

	require.False(t, logger.Success())
	assert.Contains(t, logger.Codes(), errcode.UniIncompatibleArrayDim)
}

func TestOccursCheckRejectsInfiniteType(t *testing.T) {
	inf, logger := newInferer()
	n := newNode(1)
	p := inf.GetTypeHandle(n)
	inf.unify(p, &ast.Ref{Elem: p}, n.Position())

	require.False(t, logger.Success())
	assert.Contains(t, logger.Codes(), errcode.UniOccursIn)
}

func TestUnresolvedPartialReportsAbstractType(t *testing.T) {
	inf, logger := newInferer()
	n := newNode(1)
	inf.GetTypeHandle(n) // never constrained to anything concrete
	inf.Resolve()

	require.False(t, logger.Success())
	assert.Contains(t, logger.Codes(), errcode.CstAbstractType)
}

func TestConstrainOneOfRejectsTypeOutsideSet(t *testing.T) {
	inf, logger := newInferer()
	n := newNode(1)
	inf.ConstrainType(n, ast.Bool)
	inf.ConstrainOneOf(n, ast.Char, ast.Int, ast.Float)
	inf.Resolve()

	require.False(t, logger.Success())
	assert.Contains(t, logger.Codes(), errcode.CstBadSetType)
}

func TestConstrainOneOfAcceptsMemberType(t *testing.T) {
	inf, logger := newInferer()
	n := newNode(1)
	inf.ConstrainType(n, ast.Int)
	inf.ConstrainOneOf(n, ast.Char, ast.Int, ast.Float)
	inf.Resolve()

	assert.True(t, logger.Success())
}

func TestConstrainNotFunctionRejectsFunction(t *testing.T) {
	inf, logger := newInferer()
	n := newNode(1)
	inf.ConstrainType(n, &ast.Function{From: ast.Int, To: ast.Int})
	inf.ConstrainNotFunction(n)
	inf.Resolve()

	require.False(t, logger.Success())
	assert.Contains(t, logger.Codes(), errcode.CstTypeIsFunction)
}

func TestConstrainNotArrayRejectsArray(t *testing.T) {
	inf, logger := newInferer()
	n := newNode(1)
	inf.ConstrainType(n, &ast.Array{Elem: ast.Int, Dims: 1})
	inf.ConstrainNotArray(n)
	inf.Resolve()

	require.False(t, logger.Success())
	assert.Contains(t, logger.Codes(), errcode.CstTypeIsArray)
}

func TestConstrainArrayDimGERejectsTooFewDimensions(t *testing.T) {
	inf, logger := newInferer()
	n := newNode(1)
	inf.ConstrainType(n, &ast.Array{Elem: ast.Int, Dims: 1})
	inf.ConstrainArrayDimGE(n, 2)
	inf.Resolve()

	require.False(t, logger.Success())
	assert.Contains(t, logger.Codes(), errcode.CstArrayDimension)
}

func TestWeightedUnionCompressesChains(t *testing.T) {
	inf, logger := newInferer()
	a, b, c, d := newNode(1), newNode(2), newNode(3), newNode(4)
	inf.ConstrainEqual(a, b)
	inf.ConstrainEqual(b, c)
	inf.ConstrainEqual(c, d)
	inf.ConstrainType(d, ast.Float)
	inf.Resolve()

	require.True(t, logger.Success())
	assert.Equal(t, ast.Float, a.GetType())
	assert.Equal(t, ast.Float, b.GetType())
	assert.Equal(t, ast.Float, c.GetType())
}

func TestFindCompressesPathToRoot(t *testing.T) {
	inf, _ := newInferer()
	a, b, c := newNode(1), newNode(2), newNode(3)
	ha, hb, hc := inf.GetTypeHandle(a), inf.GetTypeHandle(b), inf.GetTypeHandle(c)
	inf.link(ha, hb)
	inf.link(hb, hc)

	root := inf.find(ha)
	_, isPartial := root.(*ast.Partial)
	assert.True(t, isPartial)
	assert.Equal(t, root, inf.find(hb))
	assert.Equal(t, root, inf.find(hc))
}
