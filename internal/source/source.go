// Package source loads Llama compilation units from YAML fixtures into
// internal/ast trees. This module carries no lexer or parser of its own
// (spec Non-goal); a "program" is instead described as a literal YAML
// tree, the way the teacher's internal/eval_harness decodes benchmark
// specs directly into Go structs with gopkg.in/yaml.v3, rather than
// parsing a textual surface syntax.
package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/llamalang/llamac/internal/ast"
)

// Load reads and decodes a program fixture from path.
func Load(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a program fixture from raw YAML bytes.
func Parse(data []byte) (*ast.Program, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("source: parse: %w", err)
	}
	b := &builder{}
	return b.buildProgram(&doc)
}

// ParseFragment decodes a single top-level expression, for the REPL,
// wrapping it as `let it = <expr>` so it flows through the same
// analyzer path as a normal top-level binding.
func ParseFragment(data []byte) (*ast.Program, error) {
	var e exprDoc
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("source: parse fragment: %w", err)
	}
	b := &builder{}
	body, err := b.buildExpr(&e)
	if err != nil {
		return nil, err
	}
	return &ast.Program{
		Defs: []ast.Node{
			&ast.LetDef{
				Pos: body.Position(),
				Defs: []ast.Def{
					&ast.ConstantDef{Typed: ast.Typed{Pos: body.Position()}, Name: "it", Body: body},
				},
			},
		},
	}, nil
}

// builder accumulates errors encountered while walking a decoded
// document so Load can report every malformed fixture node at once,
// mirroring how internal/typetable.Process accumulates rather than
// aborts on the first bad declaration.
type builder struct {
	errs []error
}

func (b *builder) fail(pos ast.Pos, format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf("%s: %s", pos, fmt.Sprintf(format, args...)))
}

func (b *builder) buildProgram(doc *fileDoc) (*ast.Program, error) {
	prog := &ast.Program{}
	for _, d := range doc.Decls {
		switch {
		case d.Type != nil:
			prog.Defs = append(prog.Defs, b.buildTypeDef(d.Type))
		case d.Let != nil:
			prog.Defs = append(prog.Defs, b.buildLetDef(d.Let))
		default:
			b.fail(d.pos, "decl must set either 'type' or 'let'")
		}
	}
	if len(b.errs) > 0 {
		return prog, joinErrors(b.errs)
	}
	return prog, nil
}

func joinErrors(errs []error) error {
	msg := fmt.Sprintf("%d error(s) decoding program", len(errs))
	for _, e := range errs {
		msg += "\n" + e.Error()
	}
	return fmt.Errorf("%s", msg)
}

// ===== Type declarations =====

func (b *builder) buildTypeDef(d *typeDeclDoc) *ast.TypeDef {
	td := &ast.TypeDef{Pos: d.pos}
	for _, t := range d.Types {
		td.Types = append(td.Types, b.buildTDef(&t))
	}
	return td
}

func (b *builder) buildTDef(d *tdefDoc) *ast.TDef {
	t := &ast.TDef{Pos: d.pos, TypeName: d.Name}
	for _, c := range d.Constructors {
		t.Constructors = append(t.Constructors, b.buildConstructor(&c))
	}
	return t
}

func (b *builder) buildConstructor(d *ctorDoc) *ast.Constructor {
	c := &ast.Constructor{Pos: d.pos, Name: d.Name}
	for _, a := range d.Args {
		c.ArgTypes = append(c.ArgTypes, b.buildType(&a))
	}
	return c
}

func (b *builder) buildType(d *typeExprDoc) ast.Type {
	switch d.Kind {
	case "builtin":
		if !ast.IsBuiltinName(d.Name) {
			b.fail(d.pos, "unknown builtin type %q", d.Name)
			return ast.NewBuiltin(d.Name)
		}
		return ast.NewBuiltin(d.Name)
	case "user":
		return &ast.User{Name: d.Name}
	case "ref":
		return &ast.Ref{Elem: b.buildType(d.Elem)}
	case "array":
		dims := d.Dims
		if dims == 0 {
			dims = 1
		}
		return &ast.Array{Elem: b.buildType(d.Elem), Dims: dims}
	case "function":
		return &ast.Function{From: b.buildType(d.From), To: b.buildType(d.To)}
	default:
		b.fail(d.pos, "unknown type kind %q", d.Kind)
		return ast.Unit
	}
}

// ===== Let declarations =====

func (b *builder) buildLetDef(d *letDeclDoc) *ast.LetDef {
	ld := &ast.LetDef{Pos: d.pos, IsRec: d.Rec}
	for _, def := range d.Defs {
		if def := b.buildDef(&def); def != nil {
			ld.Defs = append(ld.Defs, def)
		}
	}
	return ld
}

func (b *builder) buildDef(d *defDoc) ast.Def {
	switch d.Kind {
	case "const":
		body, err := b.buildExpr(d.Body)
		if err != nil {
			b.errs = append(b.errs, err)
			return nil
		}
		return &ast.ConstantDef{Typed: ast.Typed{Pos: d.pos}, Name: d.Name, Body: body}
	case "function":
		fn := &ast.FunctionDef{Typed: ast.Typed{Pos: d.pos}, Name: d.Name}
		for _, p := range d.Params {
			fn.Arguments = append(fn.Arguments, &ast.Param{Typed: ast.Typed{Pos: p.pos}, Name: p.Name})
		}
		body, err := b.buildExpr(d.Body)
		if err != nil {
			b.errs = append(b.errs, err)
			return nil
		}
		fn.Body = body
		return fn
	case "variable":
		def := &ast.VariableDef{Typed: ast.Typed{Pos: d.pos}, Name: d.Name}
		if d.Type != nil {
			def.Type = &ast.Ref{Elem: b.buildType(d.Type)}
		}
		return def
	case "array_variable":
		dims := d.Dims
		if dims == 0 {
			dims = 1
		}
		return &ast.ArrayVariableDef{Typed: ast.Typed{Pos: d.pos}, Name: d.Name, Dims: dims}
	default:
		b.fail(d.pos, "unknown def kind %q", d.Kind)
		return nil
	}
}

// ===== Expressions =====

func (b *builder) buildExpr(d *exprDoc) (ast.Expr, error) {
	if d == nil {
		return nil, nil
	}
	switch d.Kind {
	case "const":
		return &ast.ConstExpr{Typed: ast.Typed{Pos: d.pos}, Value: d.Value}, nil
	case "name":
		return &ast.NameRef{Typed: ast.Typed{Pos: d.pos}, Name: d.Name}, nil
	case "constructor_ref":
		return &ast.ConstructorRef{Typed: ast.Typed{Pos: d.pos}, Name: d.Name}, nil
	case "unary":
		operand, err := b.buildExpr(d.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Typed: ast.Typed{Pos: d.pos}, Operator: d.Operator, Operand: operand}, nil
	case "binary":
		left, err := b.buildExpr(d.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.buildExpr(d.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Typed: ast.Typed{Pos: d.pos}, Left: left, Operator: d.Operator, Right: right}, nil
	case "call":
		callee, err := b.buildExpr(d.Callee)
		if err != nil {
			return nil, err
		}
		args, err := b.buildExprs(d.Args)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Typed: ast.Typed{Pos: d.pos}, Callee: callee, Args: args}, nil
	case "constructor_call":
		args, err := b.buildExprs(d.Args)
		if err != nil {
			return nil, err
		}
		return &ast.ConstructorCallExpr{Typed: ast.Typed{Pos: d.pos}, Name: d.Name, Args: args}, nil
	case "array_index":
		indices, err := b.buildExprs(d.Args)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayIndexExpr{Typed: ast.Typed{Pos: d.pos}, Name: d.Name, Indices: indices}, nil
	case "dim":
		dim := d.Dimension
		if dim == 0 {
			dim = 1
		}
		return &ast.DimExpr{Typed: ast.Typed{Pos: d.pos}, Name: d.Name, Dimension: dim}, nil
	case "new":
		return &ast.NewExpr{Typed: ast.Typed{Pos: d.pos}, AllocType: b.buildType(d.Type)}, nil
	case "delete":
		operand, err := b.buildExpr(d.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.DeleteExpr{Typed: ast.Typed{Pos: d.pos}, Operand: operand}, nil
	case "if":
		cond, err := b.buildExpr(d.Cond)
		if err != nil {
			return nil, err
		}
		then, err := b.buildExpr(d.Then)
		if err != nil {
			return nil, err
		}
		els, err := b.buildExpr(d.Else)
		if err != nil {
			return nil, err
		}
		return &ast.IfExpr{Typed: ast.Typed{Pos: d.pos}, Cond: cond, Then: then, Else: els}, nil
	case "for":
		start, err := b.buildExpr(d.Start)
		if err != nil {
			return nil, err
		}
		stop, err := b.buildExpr(d.Stop)
		if err != nil {
			return nil, err
		}
		body, err := b.buildExpr(d.Body)
		if err != nil {
			return nil, err
		}
		counter := &ast.Param{Typed: ast.Typed{Pos: d.pos}, Name: d.Name}
		return &ast.ForExpr{Typed: ast.Typed{Pos: d.pos}, Counter: counter, Start: start, Stop: stop, Body: body, IsDown: d.Down}, nil
	case "while":
		cond, err := b.buildExpr(d.Cond)
		if err != nil {
			return nil, err
		}
		body, err := b.buildExpr(d.Body)
		if err != nil {
			return nil, err
		}
		return &ast.WhileExpr{Typed: ast.Typed{Pos: d.pos}, Cond: cond, Body: body}, nil
	case "let_in":
		if d.Let == nil {
			b.fail(d.pos, "let_in expression missing 'let'")
			return nil, fmt.Errorf("%s: let_in missing let", d.pos)
		}
		letDef := b.buildLetDef(d.Let)
		body, err := b.buildExpr(d.Body)
		if err != nil {
			return nil, err
		}
		return &ast.LetInExpr{Typed: ast.Typed{Pos: d.pos}, LetDef: letDef, Body: body}, nil
	case "seq":
		left, err := b.buildExpr(d.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.buildExpr(d.Right)
		if err != nil {
			return nil, err
		}
		return &ast.SeqExpr{Typed: ast.Typed{Pos: d.pos}, Left: left, Right: right}, nil
	case "match":
		scrutinee, err := b.buildExpr(d.Scrutinee)
		if err != nil {
			return nil, err
		}
		m := &ast.MatchExpr{Typed: ast.Typed{Pos: d.pos}, Scrutinee: scrutinee}
		for _, c := range d.Clauses {
			clause, err := b.buildClause(&c)
			if err != nil {
				return nil, err
			}
			m.Clauses = append(m.Clauses, clause)
		}
		return m, nil
	default:
		b.fail(d.pos, "unknown expr kind %q", d.Kind)
		return nil, fmt.Errorf("%s: unknown expr kind %q", d.pos, d.Kind)
	}
}

func (b *builder) buildExprs(docs []exprDoc) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(docs))
	for i := range docs {
		e, err := b.buildExpr(&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (b *builder) buildClause(d *clauseDoc) (*ast.Clause, error) {
	pattern := b.buildPattern(&d.Pattern)
	body, err := b.buildExpr(d.Body)
	if err != nil {
		return nil, err
	}
	return &ast.Clause{Pos: d.pos, Pattern: pattern, Body: body}, nil
}

func (b *builder) buildPattern(d *patternDoc) ast.PatternNode {
	switch d.Kind {
	case "con":
		p := &ast.ConPattern{Typed: ast.Typed{Pos: d.pos}, Name: d.Name}
		for _, a := range d.Args {
			p.Args = append(p.Args, b.buildPattern(&a))
		}
		return p
	case "literal":
		return &ast.LiteralPattern{Typed: ast.Typed{Pos: d.pos}, Value: d.Value}
	case "genid":
		return &ast.GenidPattern{Typed: ast.Typed{Pos: d.pos}, Name: d.Name}
	default:
		b.fail(d.pos, "unknown pattern kind %q", d.Kind)
		return &ast.GenidPattern{Typed: ast.Typed{Pos: d.pos}, Name: "_"}
	}
}
