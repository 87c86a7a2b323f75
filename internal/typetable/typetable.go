// Package typetable implements the Type Table component from spec.md
// §4.1: registration of user-defined ADTs and their constructors, plus
// structural validation of type expressions.
package typetable

import (
	"golang.org/x/text/unicode/norm"

	"github.com/llamalang/llamac/internal/ast"
	"github.com/llamalang/llamac/internal/errcode"
	"github.com/llamalang/llamac/internal/smartmap"
)

// typeEntry is what knownTypes maps a normalized type name to.
type typeEntry struct {
	IsBuiltin    bool
	DeclPos      ast.Pos
	DeclName     string // spelling as declared, pre-normalization
	Constructors []*ast.Constructor
}

// Table is the registry of known types and constructors.
type Table struct {
	knownTypes        *smartmap.Map[string, *typeEntry]
	knownConstructors *smartmap.Map[string, *ctorEntry]
}

type ctorEntry struct {
	Ctor  *ast.Constructor
	Owner *ast.User
}

// ValidationError is returned by Validate, and collected by Process
// (one per failing type or constructor, without stopping the group); it
// does not propagate past the Analyzer.
type ValidationError struct {
	Code    string
	Node    ast.Node
	PrevPos ast.Pos
	PrevMsg string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func normalizeName(name string) string { return norm.NFC.String(name) }

// New creates a Table pre-populated with the five builtin types and no
// constructors.
func New() *Table {
	t := &Table{
		knownTypes:        smartmap.New[string, *typeEntry](),
		knownConstructors: smartmap.New[string, *ctorEntry](),
	}
	for _, name := range ast.BuiltinNames {
		t.knownTypes.Set(normalizeName(name), &typeEntry{IsBuiltin: true, DeclName: name})
	}
	return t
}

// IsArray is a pure predicate: does t denote an array type?
func (t *Table) IsArray(ty ast.Type) bool {
	_, ok := ty.(*ast.Array)
	return ok
}

// typeKnown reports whether a type name (builtin or user) is registered.
func (t *Table) typeKnown(name string) bool {
	return t.knownTypes.Has(normalizeName(name))
}

// Validate structurally walks t and enforces the validity invariants of
// spec.md §3.1, failing fast on the first violation.
func (t *Table) Validate(ty ast.Type) error {
	switch x := ty.(type) {
	case *ast.Builtin, *ast.Partial:
		return nil
	case *ast.User:
		if !t.typeKnown(x.Name) {
			return &ValidationError{Code: errcode.TypUndefType, Message: "undefined type " + x.Name}
		}
		return nil
	case *ast.Ref:
		if t.IsArray(x.Elem) {
			return &ValidationError{Code: errcode.ValRefOfArray, Message: "ref of array is forbidden"}
		}
		return t.Validate(x.Elem)
	case *ast.Array:
		if t.IsArray(x.Elem) {
			return &ValidationError{Code: errcode.ValArrayOfArray, Message: "array of array is forbidden"}
		}
		return t.Validate(x.Elem)
	case *ast.Function:
		if t.IsArray(x.To) {
			return &ValidationError{Code: errcode.ValArrayReturn, Message: "function cannot return an array"}
		}
		if err := t.Validate(x.From); err != nil {
			return err
		}
		return t.Validate(x.To)
	default:
		return nil
	}
}

// Process ingests a mutually-recursive group of ADT definitions: all
// declared type names are registered first (pass 1), then every
// constructor is checked and registered (pass 2), so that mutually
// recursive types can reference each other's names.
func (t *Table) Process(group *ast.TypeDef) []error {
	var errs []error

	for _, tdef := range group.Types {
		if err := t.insertNewType(tdef); err != nil {
			errs = append(errs, err)
		}
	}

	for _, tdef := range group.Types {
		owner := &ast.User{Name: tdef.TypeName}
		for _, ctor := range tdef.Constructors {
			if err := t.insertNewConstructor(owner, ctor); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errs
}

func (t *Table) insertNewType(tdef *ast.TDef) error {
	key := normalizeName(tdef.TypeName)
	if existing, ok := t.knownTypes.Get(key); ok {
		if existing.IsBuiltin {
			return &ValidationError{
				Code:    errcode.TypRedefBuiltinType,
				Node:    tdef,
				Message: "cannot redefine builtin type " + tdef.TypeName,
			}
		}
		return &ValidationError{
			Code:    errcode.TypRedefUserType,
			Node:    tdef,
			PrevPos: existing.DeclPos,
			PrevMsg: "previous definition of type " + existing.DeclName,
			Message: "redefinition of type " + tdef.TypeName,
		}
	}
	t.knownTypes.Set(key, &typeEntry{DeclPos: tdef.Pos, DeclName: tdef.TypeName})
	return nil
}

func (t *Table) insertNewConstructor(owner *ast.User, ctor *ast.Constructor) error {
	key := normalizeName(ctor.Name)
	if existing, ok := t.knownConstructors.Get(key); ok {
		return &ValidationError{
			Code:    errcode.TypRedefConstructor,
			Node:    ctor,
			PrevPos: existing.Ctor.Pos,
			PrevMsg: "previous definition of constructor " + existing.Ctor.Name,
			Message: "redefinition of constructor " + ctor.Name,
		}
	}

	for _, argType := range ctor.ArgTypes {
		if u, ok := argType.(*ast.User); ok {
			if !t.typeKnown(u.Name) {
				return &ValidationError{
					Code:    errcode.TypUndefType,
					Node:    ctor,
					Message: "undefined type " + u.Name + " in constructor " + ctor.Name,
				}
			}
		}
	}

	ownerKey := normalizeName(owner.Name)
	entry, ok := t.knownTypes.Get(ownerKey)
	if !ok {
		// The owning type itself failed to register (e.g. it shadowed a
		// builtin); there is nothing to attach the constructor to.
		return nil
	}
	entry.Constructors = append(entry.Constructors, ctor)
	t.knownConstructors.Set(key, &ctorEntry{Ctor: ctor, Owner: owner})
	return nil
}

// LookupConstructor returns the constructor definition and its owning
// user type, or (nil, nil, false) if name is not a known constructor.
func (t *Table) LookupConstructor(name string) (*ast.Constructor, *ast.User, bool) {
	entry, ok := t.knownConstructors.Get(normalizeName(name))
	if !ok {
		return nil, nil, false
	}
	return entry.Ctor, entry.Owner, true
}

// Constructors returns the constructors registered for a type name, in
// declaration order.
func (t *Table) Constructors(typeName string) ([]*ast.Constructor, bool) {
	entry, ok := t.knownTypes.Get(normalizeName(typeName))
	if !ok {
		return nil, false
	}
	return entry.Constructors, true
}
