package infer

import "github.com/llamalang/llamac/internal/ast"

// equConstraint is a constructive equality between two type terms
// (partial or concrete). Decomposing an equality over a compound
// concrete term (Array/Function/Ref) produces more equConstraints, which
// are pushed to the front of the queue so structural sub-equalities are
// discharged before later user constraints, per spec.md §4.3.3.
type equConstraint struct {
	A, B ast.Type
	Pos  ast.Pos
}

// setConstraint is a non-constructive "must be one of these concrete
// types" constraint, used only by comparison operators.
type setConstraint struct {
	Handle ast.Type
	Good   []ast.Type
	Pos    ast.Pos
}

type notFuncConstraint struct {
	Handle ast.Type
	Pos    ast.Pos
}

type notArrayConstraint struct {
	Handle ast.Type
	Pos    ast.Pos
}

type arrayDimConstraint struct {
	Handle ast.Type
	Dim    int
	Pos    ast.Pos
}
