package source

import (
	"gopkg.in/yaml.v3"

	"github.com/llamalang/llamac/internal/ast"
)

// Every doc type below captures its own YAML node position (Line/Column)
// via a custom UnmarshalYAML, so diagnostics on a loaded program point at
// the fixture file itself rather than a synthetic Pos{}. Each follows the
// same pattern: decode into a same-shape "raw" type (a distinct defined
// type, so it does not inherit the UnmarshalYAML method and recurse),
// then convert back and stamp pos from the node.

type fileDoc struct {
	Decls []declDoc `yaml:"decls"`
}

type declDoc struct {
	Type *typeDeclDoc `yaml:"type"`
	Let  *letDeclDoc  `yaml:"let"`
	pos  ast.Pos
}

type rawDeclDoc declDoc

func (d *declDoc) UnmarshalYAML(value *yaml.Node) error {
	var raw rawDeclDoc
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*d = declDoc(raw)
	d.pos = nodePos(value)
	return nil
}

type typeDeclDoc struct {
	Types []tdefDoc `yaml:"types"`
	pos   ast.Pos
}

type rawTypeDeclDoc typeDeclDoc

func (d *typeDeclDoc) UnmarshalYAML(value *yaml.Node) error {
	var raw rawTypeDeclDoc
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*d = typeDeclDoc(raw)
	d.pos = nodePos(value)
	return nil
}

type tdefDoc struct {
	Name         string    `yaml:"name"`
	Constructors []ctorDoc `yaml:"constructors"`
	pos          ast.Pos
}

type rawTdefDoc tdefDoc

func (d *tdefDoc) UnmarshalYAML(value *yaml.Node) error {
	var raw rawTdefDoc
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*d = tdefDoc(raw)
	d.pos = nodePos(value)
	return nil
}

type ctorDoc struct {
	Name string        `yaml:"name"`
	Args []typeExprDoc `yaml:"args"`
	pos  ast.Pos
}

type rawCtorDoc ctorDoc

func (d *ctorDoc) UnmarshalYAML(value *yaml.Node) error {
	var raw rawCtorDoc
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*d = ctorDoc(raw)
	d.pos = nodePos(value)
	return nil
}

type typeExprDoc struct {
	Kind string       `yaml:"kind"`
	Name string       `yaml:"name"`
	Elem *typeExprDoc `yaml:"elem"`
	Dims int          `yaml:"dims"`
	From *typeExprDoc `yaml:"from"`
	To   *typeExprDoc `yaml:"to"`
	pos  ast.Pos
}

type rawTypeExprDoc typeExprDoc

func (d *typeExprDoc) UnmarshalYAML(value *yaml.Node) error {
	var raw rawTypeExprDoc
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*d = typeExprDoc(raw)
	d.pos = nodePos(value)
	return nil
}

type letDeclDoc struct {
	Rec  bool      `yaml:"rec"`
	Defs []defDoc  `yaml:"defs"`
	pos  ast.Pos
}

type rawLetDeclDoc letDeclDoc

func (d *letDeclDoc) UnmarshalYAML(value *yaml.Node) error {
	var raw rawLetDeclDoc
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*d = letDeclDoc(raw)
	d.pos = nodePos(value)
	return nil
}

type defDoc struct {
	Kind   string       `yaml:"kind"`
	Name   string       `yaml:"name"`
	Params []paramDoc   `yaml:"params"`
	Body   *exprDoc     `yaml:"body"`
	Type   *typeExprDoc `yaml:"type"`
	Dims   int          `yaml:"dims"`
	pos    ast.Pos
}

type rawDefDoc defDoc

func (d *defDoc) UnmarshalYAML(value *yaml.Node) error {
	var raw rawDefDoc
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*d = defDoc(raw)
	d.pos = nodePos(value)
	return nil
}

type paramDoc struct {
	Name string `yaml:"name"`
	pos  ast.Pos
}

type rawParamDoc paramDoc

func (d *paramDoc) UnmarshalYAML(value *yaml.Node) error {
	var raw rawParamDoc
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*d = paramDoc(raw)
	d.pos = nodePos(value)
	return nil
}

// exprDoc covers every expression kind in one flat shape; buildExpr
// reads only the fields relevant to d.Kind, the way a dynamically-typed
// decode-then-dispatch loader does when there is no separate parser
// producing a precisely-typed tree per node kind.
type exprDoc struct {
	Kind      string       `yaml:"kind"`
	Value     any          `yaml:"value"`
	Name      string       `yaml:"name"`
	Operator  string       `yaml:"op"`
	Operand   *exprDoc     `yaml:"operand"`
	Left      *exprDoc     `yaml:"left"`
	Right     *exprDoc     `yaml:"right"`
	Callee    *exprDoc     `yaml:"callee"`
	Args      []exprDoc    `yaml:"args"`
	Dimension int          `yaml:"dimension"`
	Type      *typeExprDoc `yaml:"type"`
	Cond      *exprDoc     `yaml:"cond"`
	Then      *exprDoc     `yaml:"then"`
	Else      *exprDoc     `yaml:"else"`
	Start     *exprDoc     `yaml:"start"`
	Stop      *exprDoc     `yaml:"stop"`
	Down      bool         `yaml:"down"`
	Let       *letDeclDoc  `yaml:"let"`
	Body      *exprDoc     `yaml:"body"`
	Scrutinee *exprDoc     `yaml:"scrutinee"`
	Clauses   []clauseDoc  `yaml:"clauses"`
	pos       ast.Pos
}

type rawExprDoc exprDoc

func (d *exprDoc) UnmarshalYAML(value *yaml.Node) error {
	var raw rawExprDoc
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*d = exprDoc(raw)
	d.pos = nodePos(value)
	return nil
}

type clauseDoc struct {
	Pattern patternDoc `yaml:"pattern"`
	Body    *exprDoc   `yaml:"body"`
	pos     ast.Pos
}

type rawClauseDoc clauseDoc

func (d *clauseDoc) UnmarshalYAML(value *yaml.Node) error {
	var raw rawClauseDoc
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*d = clauseDoc(raw)
	d.pos = nodePos(value)
	return nil
}

type patternDoc struct {
	Kind string       `yaml:"kind"`
	Name string       `yaml:"name"`
	Args []patternDoc `yaml:"args"`
	Value any         `yaml:"value"`
	pos  ast.Pos
}

type rawPatternDoc patternDoc

func (d *patternDoc) UnmarshalYAML(value *yaml.Node) error {
	var raw rawPatternDoc
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*d = patternDoc(raw)
	d.pos = nodePos(value)
	return nil
}

func nodePos(value *yaml.Node) ast.Pos {
	return ast.Pos{Line: value.Line, Column: value.Column}
}
