// Package analyzer implements the Analyzer component from spec.md §4.4:
// a dispatch-driven AST walker that wires the Type Table, Symbol Table,
// and Inferer together. Analyze walks the program once, emitting
// constraints and symbol-table mutations; Resolve (called internally at
// the end of Analyze) then runs unification to fixpoint, checks
// non-constructive constraints, and writes concrete types back onto the
// AST.
package analyzer

import (
	"fmt"

	"github.com/llamalang/llamac/internal/ast"
	"github.com/llamalang/llamac/internal/diag"
	"github.com/llamalang/llamac/internal/errcode"
	"github.com/llamalang/llamac/internal/infer"
	"github.com/llamalang/llamac/internal/symtab"
	"github.com/llamalang/llamac/internal/typetable"
)

// Analyzer owns one Type Table, one Symbol Table, and one Inferer for
// the lifetime of a single compilation-unit analysis.
type Analyzer struct {
	Logger  diag.Logger
	Types   *typetable.Table
	Symbols *symtab.Table
	Infer   *infer.Inferer
}

// New creates an Analyzer reporting diagnostics to logger.
func New(logger diag.Logger) *Analyzer {
	types := typetable.New()
	return &Analyzer{
		Logger:  logger,
		Types:   types,
		Symbols: symtab.New(),
		Infer:   infer.New(types, logger),
	}
}

// Analyze walks prog's top-level definitions in source order, then
// resolves every emitted constraint. Top-level `let` groups each open a
// scope that stays open for the remainder of the program (later
// top-level bindings see earlier ones), so once the walk is done the
// Analyzer pops every scope it opened to restore the scope-hygiene
// invariant (spec.md §8.4): the stack is empty again once Analyze
// returns, the same as it would be after a `let x = ... in let y = ...
// in e` chain closes each of its own scopes.
func (a *Analyzer) Analyze(prog *ast.Program) {
	for _, def := range prog.Defs {
		a.dispatchTop(def)
	}
	for a.Symbols.Depth() > 0 {
		a.Symbols.CloseScope()
	}
	a.Infer.Resolve()
}

func (a *Analyzer) dispatchTop(node ast.Node) {
	switch n := node.(type) {
	case *ast.LetDef:
		a.analyzeLetDef(n)
	case *ast.TypeDef:
		a.analyzeTypeDef(n)
	}
}

// ===== Diagnostics helpers =====

func (a *Analyzer) errorAt(code string, pos ast.Pos, format string, args ...any) {
	a.Logger.Error(diag.Diagnostic{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (a *Analyzer) logValidationErr(err error, fallback ast.Pos) {
	ve, ok := err.(*typetable.ValidationError)
	if !ok {
		a.errorAt("", fallback, "%s", err.Error())
		return
	}
	pos := fallback
	if ve.Node != nil {
		pos = ve.Node.Position()
	}
	a.Logger.Error(diag.Diagnostic{
		Code:        ve.Code,
		Pos:         pos,
		Message:     ve.Message,
		PrevPos:     ve.PrevPos,
		PrevMessage: ve.PrevMsg,
	})
}

func (a *Analyzer) undefIdentifier(name string, pos ast.Pos) {
	a.errorAt(errcode.SymUndefIdentifier, pos, "undefined identifier %s", name)
}

func (a *Analyzer) undefConstructor(name string, pos ast.Pos) {
	a.errorAt(errcode.SymUndefConstructor, pos, "undefined constructor %s", name)
}

func (a *Analyzer) argumentCountMismatch(pos ast.Pos, name string, actual, expected int, prevPos ast.Pos) {
	a.Logger.Error(diag.Diagnostic{
		Code:        errcode.CstArgumentCountMismatch,
		Pos:         pos,
		Message:     fmt.Sprintf("argument count mismatch for %s: actual %d, expected %d", name, actual, expected),
		PrevPos:     prevPos,
		PrevMessage: "constructor declared here",
	})
}

// ===== Type definitions =====

func (a *Analyzer) analyzeTypeDef(td *ast.TypeDef) {
	for _, err := range a.Types.Process(td) {
		a.logValidationErr(err, td.Pos)
	}
}

// ===== Let definitions =====

func (a *Analyzer) insertSymbol(def ast.Def) {
	if err := a.Symbols.InsertSymbol(def); err != nil {
		re := err.(*symtab.RedefIdentifierError)
		a.Logger.Error(diag.Diagnostic{
			Code:        errcode.SymRedefIdentifier,
			Pos:         re.Def.Position(),
			Message:     "redefinition of identifier " + re.Def.DefName(),
			PrevPos:     re.Prev.Position(),
			PrevMessage: "previous definition of " + re.Prev.DefName(),
		})
	}
}

func (a *Analyzer) insertSymbols(defs []ast.Def) {
	for _, d := range defs {
		a.insertSymbol(d)
	}
}

// analyzeLetDef handles both `let [rec] ... in e` and bare top-level
// `let [rec] ...`. For a non-recursive group, a scope is opened
// invisible so the bodies cannot see the names being defined, then
// flipped visible before the new symbols are inserted. For a recursive
// group, the scope is visible from the start and the symbols are
// inserted before any body is walked, so mutually recursive definitions
// can all see each other. Neither branch closes the scope it opens; the
// caller (Analyze for top-level, analyzeLetIn for `let ... in`)
// owns that.
func (a *Analyzer) analyzeLetDef(ld *ast.LetDef) {
	if ld.IsRec {
		a.Symbols.OpenScope()
		a.insertSymbols(ld.Defs)
		for _, d := range ld.Defs {
			a.dispatchDef(d)
		}
		return
	}

	scope := a.Symbols.OpenScope()
	scope.Visible = false
	for _, d := range ld.Defs {
		a.dispatchDef(d)
	}
	scope.Visible = true
	a.insertSymbols(ld.Defs)
}

func (a *Analyzer) dispatchDef(d ast.Def) {
	switch x := d.(type) {
	case *ast.ConstantDef:
		a.analyzeConstantDef(x)
	case *ast.FunctionDef:
		a.analyzeFunctionDef(x)
	case *ast.VariableDef:
		a.analyzeVariableDef(x)
	case *ast.ArrayVariableDef:
		a.analyzeArrayVariableDef(x)
	}
}

func (a *Analyzer) analyzeConstantDef(d *ast.ConstantDef) {
	a.Infer.ConstrainEqual(d, d.Body)
	a.dispatchExpr(d.Body)
}

func (a *Analyzer) analyzeFunctionDef(d *ast.FunctionDef) {
	funType := ast.Type(a.Infer.GetTypeHandle(d.Body))
	for i := len(d.Arguments) - 1; i >= 0; i-- {
		funType = &ast.Function{From: a.Infer.GetTypeHandle(d.Arguments[i]), To: funType}
	}
	a.Infer.ConstrainType(d, funType)
	a.Infer.ConstrainNotFunction(d.Body)

	a.Symbols.OpenScope()
	for _, p := range d.Arguments {
		a.insertSymbol(p)
	}
	a.dispatchExpr(d.Body)
	a.Symbols.CloseScope()
}

func (a *Analyzer) analyzeVariableDef(d *ast.VariableDef) {
	if d.GetType() == nil {
		d.SetType(&ast.Ref{Elem: a.Infer.MakeNewType(d.Position())})
	}
	a.Infer.ConstrainType(d, d.GetType())
}

func (a *Analyzer) analyzeArrayVariableDef(d *ast.ArrayVariableDef) {
	if d.GetType() == nil {
		d.SetType(&ast.Array{Elem: a.Infer.MakeNewType(d.Position()), Dims: d.Dims})
	}
	a.Infer.ConstrainType(d, d.GetType())
}

// ===== Expressions =====

func (a *Analyzer) dispatchExpr(e ast.Expr) {
	switch x := e.(type) {
	case *ast.ConstExpr:
		// Intentionally empty: the parser has already filled in the type.
	case *ast.NameRef:
		a.analyzeNameRef(x)
	case *ast.ConstructorRef:
		a.analyzeConstructorRef(x)
	case *ast.UnaryExpr:
		a.analyzeUnary(x)
	case *ast.BinaryExpr:
		a.analyzeBinary(x)
	case *ast.CallExpr:
		a.analyzeCall(x)
	case *ast.ConstructorCallExpr:
		a.analyzeConstructorCall(x)
	case *ast.ArrayIndexExpr:
		a.analyzeArrayIndex(x)
	case *ast.DimExpr:
		a.analyzeDim(x)
	case *ast.NewExpr:
		a.analyzeNew(x)
	case *ast.DeleteExpr:
		a.analyzeDelete(x)
	case *ast.IfExpr:
		a.analyzeIf(x)
	case *ast.ForExpr:
		a.analyzeFor(x)
	case *ast.WhileExpr:
		a.analyzeWhile(x)
	case *ast.LetInExpr:
		a.analyzeLetIn(x)
	case *ast.SeqExpr:
		a.analyzeSeq(x)
	case *ast.MatchExpr:
		a.analyzeMatch(x)
	default:
		panic(fmt.Sprintf("analyzer: unhandled expression node %T", e))
	}
}

func (a *Analyzer) analyzeNameRef(e *ast.NameRef) {
	def, ok := a.Symbols.LookupLiveDef(e.Name)
	if !ok {
		a.undefIdentifier(e.Name, e.Position())
		return
	}
	e.DefLink = def
	a.Infer.ConstrainEqual(e, def)
}

func (a *Analyzer) analyzeConstructorRef(e *ast.ConstructorRef) {
	ctor, owner, ok := a.Types.LookupConstructor(e.Name)
	if !ok {
		a.undefConstructor(e.Name, e.Position())
		return
	}
	e.DefLink = ctor
	a.Infer.ConstrainType(e, owner)
}

// Unary operator groups, keyed by spelling, per spec.md §4.4.1.
func (a *Analyzer) analyzeUnary(e *ast.UnaryExpr) {
	switch e.Operator {
	case "!":
		a.Infer.ConstrainType(e.Operand, &ast.Ref{Elem: a.Infer.GetTypeHandle(e)})
	case "not":
		a.constrainUnarySame(e, ast.Bool)
	case "+", "-":
		a.constrainUnarySame(e, ast.Int)
	case "+.", "-.":
		a.constrainUnarySame(e, ast.Float)
	default:
		panic("analyzer: unknown unary operator " + e.Operator)
	}
	a.dispatchExpr(e.Operand)
}

func (a *Analyzer) constrainUnarySame(e *ast.UnaryExpr, t ast.Type) {
	a.Infer.ConstrainType(e, t)
	a.Infer.ConstrainType(e.Operand, t)
}

// Binary operator groups, keyed by spelling, per spec.md §4.4.1.
func (a *Analyzer) analyzeBinary(e *ast.BinaryExpr) {
	switch e.Operator {
	case "+", "-", "*", "/", "mod":
		a.binarySame(e, ast.Int)
	case "+.", "-.", "*.", "/.", "**":
		a.binarySame(e, ast.Float)
	case "||", "&&":
		a.binarySame(e, ast.Bool)
	case "=", "<>", "==", "!=":
		a.binaryEquality(e)
	case "<", "<=", ">", ">=":
		a.binaryEquality(e)
		a.Infer.ConstrainOneOf(e.Left, ast.Char, ast.Int, ast.Float)
	case ";":
		a.Infer.ConstrainEqual(e, e.Right)
	case ":=":
		a.Infer.ConstrainType(e, ast.Unit)
		a.Infer.ConstrainType(e.Left, &ast.Ref{Elem: a.Infer.GetTypeHandle(e.Right)})
	default:
		panic("analyzer: unknown binary operator " + e.Operator)
	}
	a.dispatchExpr(e.Left)
	a.dispatchExpr(e.Right)
}

func (a *Analyzer) binarySame(e *ast.BinaryExpr, t ast.Type) {
	a.Infer.ConstrainType(e, t)
	a.Infer.ConstrainType(e.Left, t)
	a.Infer.ConstrainType(e.Right, t)
}

func (a *Analyzer) binaryEquality(e *ast.BinaryExpr) {
	a.Infer.ConstrainType(e, ast.Bool)
	a.Infer.ConstrainEqual(e.Left, e.Right)
	a.Infer.ConstrainNotFunction(e.Left)
	a.Infer.ConstrainNotArray(e.Left)
}

func (a *Analyzer) analyzeCall(e *ast.CallExpr) {
	result := ast.Type(a.Infer.MakeNewType(e.Position()))
	a.Infer.ConstrainType(e, result)
	a.Infer.ConstrainNotFunction(e)

	funType := result
	for i := len(e.Args) - 1; i >= 0; i-- {
		funType = &ast.Function{From: a.Infer.GetTypeHandle(e.Args[i]), To: funType}
	}
	a.Infer.ConstrainType(e.Callee, funType)

	a.dispatchExpr(e.Callee)
	for _, arg := range e.Args {
		a.dispatchExpr(arg)
	}
}

func (a *Analyzer) analyzeConstructorCall(e *ast.ConstructorCallExpr) {
	ctor, owner, ok := a.Types.LookupConstructor(e.Name)
	if !ok {
		a.undefConstructor(e.Name, e.Position())
		for _, arg := range e.Args {
			a.dispatchExpr(arg)
		}
		return
	}
	e.DefLink = ctor
	a.Infer.ConstrainType(e, owner)

	if len(e.Args) != len(ctor.ArgTypes) {
		a.argumentCountMismatch(e.Position(), e.Name, len(e.Args), len(ctor.ArgTypes), ctor.Position())
	} else {
		for i, arg := range e.Args {
			a.Infer.ConstrainType(arg, ctor.ArgTypes[i])
		}
	}

	for _, arg := range e.Args {
		a.dispatchExpr(arg)
	}
}

func (a *Analyzer) analyzeArrayIndex(e *ast.ArrayIndexExpr) {
	elem := ast.Type(a.Infer.MakeNewType(e.Position()))
	a.Infer.ConstrainType(e, &ast.Ref{Elem: elem})

	if def, ok := a.Symbols.LookupLiveDef(e.Name); ok {
		a.Infer.ConstrainType(def, &ast.Array{Elem: elem, Dims: len(e.Indices)})
	} else {
		a.undefIdentifier(e.Name, e.Position())
	}

	for _, idx := range e.Indices {
		a.Infer.ConstrainType(idx, ast.Int)
		a.dispatchExpr(idx)
	}
}

func (a *Analyzer) analyzeDim(e *ast.DimExpr) {
	a.Infer.ConstrainType(e, ast.Int)

	dim := e.Dimension
	if dim == 0 {
		dim = 1
	}
	if def, ok := a.Symbols.LookupLiveDef(e.Name); ok {
		a.Infer.ConstrainArrayDimGE(def, dim)
	} else {
		a.undefIdentifier(e.Name, e.Position())
	}
}

func (a *Analyzer) analyzeNew(e *ast.NewExpr) {
	if a.Types.IsArray(e.AllocType) {
		a.errorAt(errcode.ValRefOfArray, e.Position(), "cannot allocate a reference to an array")
		return
	}
	if err := a.Types.Validate(e.AllocType); err != nil {
		a.logValidationErr(err, e.Position())
		return
	}
	a.Infer.ConstrainType(e, &ast.Ref{Elem: e.AllocType})
}

func (a *Analyzer) analyzeDelete(e *ast.DeleteExpr) {
	a.Infer.ConstrainType(e.Operand, &ast.Ref{Elem: a.Infer.MakeNewType(e.Position())})
	a.Infer.ConstrainType(e, ast.Unit)
	a.dispatchExpr(e.Operand)
}

func (a *Analyzer) analyzeIf(e *ast.IfExpr) {
	a.Infer.ConstrainType(e.Cond, ast.Bool)
	a.Infer.ConstrainEqual(e, e.Then)

	a.dispatchExpr(e.Cond)
	a.dispatchExpr(e.Then)

	if e.Else == nil {
		a.Infer.ConstrainType(e.Then, ast.Unit)
		return
	}
	a.Infer.ConstrainEqual(e.Then, e.Else)
	a.dispatchExpr(e.Else)
}

func (a *Analyzer) analyzeFor(e *ast.ForExpr) {
	a.Infer.ConstrainType(e.Start, ast.Int)
	a.Infer.ConstrainType(e.Stop, ast.Int)
	a.Infer.ConstrainType(e.Counter, ast.Int)
	a.Infer.ConstrainType(e.Body, ast.Unit)
	a.Infer.ConstrainType(e, ast.Unit)

	a.dispatchExpr(e.Start)
	a.dispatchExpr(e.Stop)

	a.Symbols.OpenScope()
	a.insertSymbol(e.Counter)
	a.dispatchExpr(e.Body)
	a.Symbols.CloseScope()
}

func (a *Analyzer) analyzeWhile(e *ast.WhileExpr) {
	a.Infer.ConstrainType(e, ast.Unit)
	a.Infer.ConstrainType(e.Cond, ast.Bool)
	a.Infer.ConstrainType(e.Body, ast.Unit)

	a.dispatchExpr(e.Cond)
	a.dispatchExpr(e.Body)
}

func (a *Analyzer) analyzeLetIn(e *ast.LetInExpr) {
	a.analyzeLetDef(e.LetDef)
	a.dispatchExpr(e.Body)
	a.Symbols.CloseScope()

	a.Infer.ConstrainEqual(e, e.Body)
}

func (a *Analyzer) analyzeSeq(e *ast.SeqExpr) {
	a.Infer.ConstrainEqual(e, e.Right)
	a.dispatchExpr(e.Left)
	a.dispatchExpr(e.Right)
}

func (a *Analyzer) analyzeMatch(e *ast.MatchExpr) {
	for _, cl := range e.Clauses {
		if dn, ok := cl.Pattern.(ast.DataNode); ok {
			a.Infer.ConstrainEqual(dn, e.Scrutinee)
		}
		a.Infer.ConstrainEqual(cl.Body, e)
	}

	a.dispatchExpr(e.Scrutinee)
	for _, cl := range e.Clauses {
		a.analyzeClause(cl)
	}
}

func (a *Analyzer) analyzeClause(cl *ast.Clause) {
	a.Symbols.OpenScope()
	a.dispatchPattern(cl.Pattern)
	a.dispatchExpr(cl.Body)
	a.Symbols.CloseScope()
}

// ===== Patterns =====

func (a *Analyzer) dispatchPattern(p ast.PatternNode) {
	switch x := p.(type) {
	case *ast.ConPattern:
		a.analyzeConPattern(x)
	case *ast.GenidPattern:
		a.insertSymbol(x)
	case *ast.LiteralPattern:
		// Intentionally empty: the parser has already filled in the type.
	default:
		panic(fmt.Sprintf("analyzer: unhandled pattern node %T", p))
	}
}

func (a *Analyzer) analyzeConPattern(p *ast.ConPattern) {
	ctor, owner, ok := a.Types.LookupConstructor(p.Name)
	if !ok {
		a.undefConstructor(p.Name, p.Position())
		return
	}
	p.DefLink = ctor
	a.Infer.ConstrainType(p, owner)

	if len(p.Args) != len(ctor.ArgTypes) {
		a.argumentCountMismatch(p.Position(), p.Name, len(p.Args), len(ctor.ArgTypes), ctor.Position())
		return
	}

	for i, sub := range p.Args {
		if dn, ok := sub.(ast.DataNode); ok {
			a.Infer.ConstrainType(dn, ctor.ArgTypes[i])
		}
		a.dispatchPattern(sub)
	}
}
