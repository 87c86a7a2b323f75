// Package ast defines the typed AST and type-term algebra that the
// analyzer walks and annotates. Nodes are owned by the parser (out of
// scope here) and passed in by shared reference; analysis only ever
// writes the Type, DefLink, and position-derived fields.
package ast

import "fmt"

// Pos is a source position. The zero value means "no position known".
type Pos struct {
	Line   int
	Column int
}

func (p Pos) known() bool { return p.Line != 0 || p.Column != 0 }

// String renders "line:col:" the way the original compiler's
// pos_to_str does, or "" if the position is unknown.
func (p Pos) String() string {
	if !p.known() {
		return ""
	}
	return fmt.Sprintf("%d:%d:", p.Line, p.Column)
}

// Node is the base interface implemented by every AST node.
type Node interface {
	Position() Pos
}

// NameNode is a node carrying a user-level identifier.
type NameNode interface {
	Node
	IdentName() string
}
