package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestBuiltinString(t *testing.T) {
	tests := []struct {
		name string
		ty   Type
		want string
	}{
		{"bool", Bool, "bool"},
		{"char", Char, "char"},
		{"float", Float, "float"},
		{"int", Int, "int"},
		{"unit", Unit, "unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ty.String())
		})
	}
}

func TestIsBuiltinName(t *testing.T) {
	assert.True(t, IsBuiltinName("int"))
	assert.False(t, IsBuiltinName("intlist"))
}

func TestArrayString(t *testing.T) {
	one := &Array{Elem: Int, Dims: 1}
	assert.Equal(t, "array of int", one.String())

	three := &Array{Elem: Float, Dims: 3}
	assert.Equal(t, "array [*, *] of float", three.String())
}

func TestStringIsArrayOfChar(t *testing.T) {
	s := String()
	assert.Equal(t, 1, s.Dims)
	assert.Same(t, Char, s.Elem)
}

func TestFunctionString(t *testing.T) {
	f := &Function{From: Int, To: Bool}
	assert.Equal(t, "(int -> bool)", f.String())
}

// Nested composite terms (array of ref of function) compare structurally
// field-by-field under cmp.Diff, and a change deep inside the term shows
// up as a diff.
func TestNestedCompositeTypeTermsCompareStructurally(t *testing.T) {
	want := &Array{Elem: &Ref{Elem: &Function{From: Int, To: Bool}}, Dims: 1}
	got := &Array{Elem: &Ref{Elem: &Function{From: Int, To: Bool}}, Dims: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("composite type term mismatch (-want +got):\n%s", diff)
	}

	mutated := &Array{Elem: &Ref{Elem: &Function{From: Int, To: Int}}, Dims: 1}
	if diff := cmp.Diff(want, mutated); diff == "" {
		t.Error("expected a diff between distinct composite type terms, got none")
	}
}

func TestSameType(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same builtin", NewBuiltin("int"), NewBuiltin("int"), true},
		{"different builtin", NewBuiltin("int"), NewBuiltin("bool"), false},
		{"same user", &User{Name: "list"}, &User{Name: "list"}, true},
		{"different user", &User{Name: "list"}, &User{Name: "tree"}, false},
		{"same ref", &Ref{Elem: Int}, &Ref{Elem: Int}, true},
		{"different ref elem", &Ref{Elem: Int}, &Ref{Elem: Bool}, false},
		{"same array", &Array{Elem: Int, Dims: 2}, &Array{Elem: Int, Dims: 2}, true},
		{"different array dims", &Array{Elem: Int, Dims: 1}, &Array{Elem: Int, Dims: 2}, false},
		{"same function", &Function{From: Int, To: Bool}, &Function{From: Int, To: Bool}, true},
		{"different function", &Function{From: Int, To: Bool}, &Function{From: Bool, To: Int}, false},
		{"same partial", &Partial{Id: 1}, &Partial{Id: 1}, true},
		{"different partial", &Partial{Id: 1}, &Partial{Id: 2}, false},
		{"mismatched kinds", Int, &Partial{Id: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameType(tt.a, tt.b))
		})
	}
}
