// Package infer implements the Inferer component from spec.md §4.3: a
// Hindley-Milner-style constraint solver built on union-find with path
// compression and weighted union, extended with set-membership,
// not-function, not-array, and array-dimension constraints.
package infer

import (
	"container/list"
	"fmt"

	"github.com/llamalang/llamac/internal/ast"
	"github.com/llamalang/llamac/internal/diag"
	"github.com/llamalang/llamac/internal/errcode"
	"github.com/llamalang/llamac/internal/typetable"
)

// ufEntry is one union-find node: Parent is nil for a root, otherwise
// either another *ast.Partial (an internal union-find edge) or a
// concrete type (the partial has been resolved).
type ufEntry struct {
	Parent ast.Type
	Weight int
}

// Inferer owns the type_map and all five constraint buckets.
type Inferer struct {
	types  *typetable.Table
	logger diag.Logger

	nextID  int
	typeMap map[int]*ufEntry
	posOf   map[int]ast.Pos      // position of the node each partial was spawned for
	anchors map[int]ast.DataNode // node whose type slot holds this partial, if any

	constructive *list.List // of equConstraint

	setConstraints      []setConstraint
	notFuncConstraints  []notFuncConstraint
	notArrayConstraints []notArrayConstraint
	arrayDimConstraints []arrayDimConstraint
}

// New creates an Inferer over the given Type Table, reporting through
// logger.
func New(types *typetable.Table, logger diag.Logger) *Inferer {
	return &Inferer{
		types:        types,
		logger:       logger,
		typeMap:      make(map[int]*ufEntry),
		posOf:        make(map[int]ast.Pos),
		anchors:      make(map[int]ast.DataNode),
		constructive: list.New(),
	}
}

// ===== 4.3.1 Type handles =====

// GetTypeHandle returns node's canonical Partial handle. If node's type
// slot already holds a Partial it is returned as-is; otherwise a fresh
// Partial is created, entered into type_map pointing at node's prior
// type (concrete or nil), and written back onto node's type slot. This
// uniformly wraps both annotated and un-annotated nodes (spec.md §4.3.1,
// §9 OQ3).
func (inf *Inferer) GetTypeHandle(node ast.DataNode) *ast.Partial {
	if p, ok := node.GetType().(*ast.Partial); ok {
		return p
	}
	p := inf.freshPartial(node.Position())
	inf.typeMap[p.Id] = &ufEntry{Parent: node.GetType(), Weight: 1}
	inf.anchors[p.Id] = node
	node.SetType(p)
	return p
}

// MakeNewType creates a fresh, unanchored Partial (a root with no prior
// type), used whenever the analyzer needs a type variable that is not
// directly the handle of an existing AST node (e.g. array element types).
func (inf *Inferer) MakeNewType(pos ast.Pos) *ast.Partial {
	p := inf.freshPartial(pos)
	inf.typeMap[p.Id] = &ufEntry{Parent: nil, Weight: 1}
	return p
}

func (inf *Inferer) freshPartial(pos ast.Pos) *ast.Partial {
	inf.nextID++
	p := &ast.Partial{Id: inf.nextID}
	inf.posOf[p.Id] = pos
	return p
}

// ===== 4.3.2 Constraint API =====

// ConstrainEqual requires n1 and n2 to end up with the same type.
func (inf *Inferer) ConstrainEqual(n1, n2 ast.DataNode) {
	inf.constructive.PushBack(equConstraint{
		A:   inf.GetTypeHandle(n1),
		B:   inf.GetTypeHandle(n2),
		Pos: n1.Position(),
	})
}

// ConstrainType requires n's type to equal the concrete term concrete.
func (inf *Inferer) ConstrainType(n ast.DataNode, concrete ast.Type) {
	inf.constructive.PushBack(equConstraint{
		A:   inf.GetTypeHandle(n),
		B:   concrete,
		Pos: n.Position(),
	})
}

// ConstrainOneOf requires n's final resolved type to be one of good.
func (inf *Inferer) ConstrainOneOf(n ast.DataNode, good ...ast.Type) {
	inf.setConstraints = append(inf.setConstraints, setConstraint{
		Handle: inf.GetTypeHandle(n),
		Good:   good,
		Pos:    n.Position(),
	})
}

// ConstrainNotFunction forbids n's final type from being a Function.
func (inf *Inferer) ConstrainNotFunction(n ast.DataNode) {
	inf.notFuncConstraints = append(inf.notFuncConstraints, notFuncConstraint{
		Handle: inf.GetTypeHandle(n),
		Pos:    n.Position(),
	})
}

// ConstrainNotArray forbids n's final type from being an Array.
func (inf *Inferer) ConstrainNotArray(n ast.DataNode) {
	inf.notArrayConstraints = append(inf.notArrayConstraints, notArrayConstraint{
		Handle: inf.GetTypeHandle(n),
		Pos:    n.Position(),
	})
}

// ConstrainArrayDimGE requires n's final type to be an array of at least
// k dimensions.
func (inf *Inferer) ConstrainArrayDimGE(n ast.DataNode, k int) {
	inf.arrayDimConstraints = append(inf.arrayDimConstraints, arrayDimConstraint{
		Handle: inf.GetTypeHandle(n),
		Dim:    k,
		Pos:    n.Position(),
	})
}

// ===== 4.3.3 Resolution =====

// Resolve runs the four resolution phases in strict order: constructive
// unification, concreteness check, non-constructive checks, write-back.
func (inf *Inferer) Resolve() {
	inf.resolveConstructive()
	inf.ensureConcreteMappings()
	inf.resolveNonConstructive()
	inf.writeBack()
}

func (inf *Inferer) resolveConstructive() {
	for inf.constructive.Len() > 0 {
		front := inf.constructive.Front()
		inf.constructive.Remove(front)
		c := front.Value.(equConstraint)
		inf.unify(c.A, c.B, c.Pos)
	}
}

func (inf *Inferer) pushFront(a, b ast.Type, pos ast.Pos) {
	inf.constructive.PushFront(equConstraint{A: a, B: b, Pos: pos})
}

func (inf *Inferer) unify(t1, t2 ast.Type, pos ast.Pos) {
	f1, f2 := inf.find(t1), inf.find(t2)
	p1, ok1 := f1.(*ast.Partial)
	p2, ok2 := f2.(*ast.Partial)

	switch {
	case ok1 && ok2:
		inf.unifyPartialPartial(p1, p2)
	case ok1 && !ok2:
		inf.unifyPartialConcrete(p1, f2, pos)
	case !ok1 && ok2:
		inf.unifyPartialConcrete(p2, f1, pos)
	default:
		inf.unifyConcreteConcrete(f1, f2, pos)
	}
}

func (inf *Inferer) unifyPartialPartial(t1, t2 *ast.Partial) {
	if t1.Id == t2.Id {
		return
	}
	inf.link(t1, t2)
}

// link performs weighted union: the smaller-weight root links under the
// larger; ties link t1 under t2.
func (inf *Inferer) link(t1, t2 *ast.Partial) {
	e1, e2 := inf.typeMap[t1.Id], inf.typeMap[t2.Id]
	if e1.Weight <= e2.Weight {
		inf.typeMap[t1.Id] = &ufEntry{Parent: t2, Weight: e1.Weight}
		inf.typeMap[t2.Id] = &ufEntry{Parent: nil, Weight: e1.Weight + e2.Weight}
	} else {
		inf.typeMap[t2.Id] = &ufEntry{Parent: t1, Weight: e2.Weight}
		inf.typeMap[t1.Id] = &ufEntry{Parent: nil, Weight: e1.Weight + e2.Weight}
	}
}

func (inf *Inferer) unifyPartialConcrete(p *ast.Partial, concrete ast.Type, pos ast.Pos) {
	if inf.occursIn(p, concrete) {
		inf.logger.Error(diag.Diagnostic{
			Code:    errcode.UniOccursIn,
			Pos:     pos,
			Message: fmt.Sprintf("infinite type: %s cannot be unified with %s", p, inf.upgradeToReps(concrete)),
		})
		return
	}
	e := inf.typeMap[p.Id]
	inf.typeMap[p.Id] = &ufEntry{Parent: concrete, Weight: e.Weight}
}

func (inf *Inferer) unifyConcreteConcrete(t1, t2 ast.Type, pos ast.Pos) {
	switch x := t1.(type) {
	case *ast.Builtin:
		y, ok := t2.(*ast.Builtin)
		if !ok || x.Name != y.Name {
			inf.incompatible(t1, t2, pos)
		}
	case *ast.User:
		y, ok := t2.(*ast.User)
		if !ok || x.Name != y.Name {
			inf.incompatible(t1, t2, pos)
		}
	case *ast.Array:
		y, ok := t2.(*ast.Array)
		if !ok {
			inf.incompatible(t1, t2, pos)
			return
		}
		if x.Dims != y.Dims {
			inf.logger.Error(diag.Diagnostic{
				Code:    errcode.UniIncompatibleArrayDim,
				Pos:     pos,
				Message: fmt.Sprintf("dimension mismatch: cannot unify %s with %s", x, y),
			})
			return
		}
		inf.pushFront(x.Elem, y.Elem, pos)
	case *ast.Function:
		y, ok := t2.(*ast.Function)
		if !ok {
			inf.incompatible(t1, t2, pos)
			return
		}
		inf.pushFront(x.From, y.From, pos)
		inf.pushFront(x.To, y.To, pos)
	case *ast.Ref:
		y, ok := t2.(*ast.Ref)
		if !ok {
			inf.incompatible(t1, t2, pos)
			return
		}
		inf.pushFront(x.Elem, y.Elem, pos)
	default:
		inf.incompatible(t1, t2, pos)
	}
}

func (inf *Inferer) incompatible(t1, t2 ast.Type, pos ast.Pos) {
	inf.logger.Error(diag.Diagnostic{
		Code:    errcode.UniIncompatibleTypes,
		Pos:     pos,
		Message: fmt.Sprintf("type %s cannot be unified with %s", t1, t2),
	})
}

func (inf *Inferer) ensureConcreteMappings() {
	ids := inf.sortedPartialIDs()
	for _, id := range ids {
		root := inf.find(&ast.Partial{Id: id})
		if _, stillPartial := root.(*ast.Partial); stillPartial {
			inf.logger.Error(diag.Diagnostic{
				Code:    errcode.CstAbstractType,
				Pos:     inf.posOf[id],
				Message: fmt.Sprintf("cannot infer concrete instance for type @%d", id),
			})
		}
	}
}

func (inf *Inferer) resolveNonConstructive() {
	for _, c := range inf.setConstraints {
		root := inf.find(c.Handle)
		if !containsType(c.Good, root) {
			inf.logger.Error(diag.Diagnostic{
				Code:    errcode.CstBadSetType,
				Pos:     c.Pos,
				Message: fmt.Sprintf("type %s is outside allowed set (%s)", root, joinTypes(c.Good)),
			})
		}
	}
	for _, c := range inf.notFuncConstraints {
		root := inf.find(c.Handle)
		if _, ok := root.(*ast.Function); ok {
			inf.logger.Error(diag.Diagnostic{
				Code:    errcode.CstTypeIsFunction,
				Pos:     c.Pos,
				Message: "function type is forbidden here",
			})
		}
	}
	for _, c := range inf.notArrayConstraints {
		root := inf.find(c.Handle)
		if _, ok := root.(*ast.Array); ok {
			inf.logger.Error(diag.Diagnostic{
				Code:    errcode.CstTypeIsArray,
				Pos:     c.Pos,
				Message: "array type is forbidden here",
			})
		}
	}
	for _, c := range inf.arrayDimConstraints {
		root := inf.find(c.Handle)
		arr, ok := root.(*ast.Array)
		if !ok || arr.Dims < c.Dim {
			inf.logger.Error(diag.Diagnostic{
				Code:    errcode.CstArrayDimension,
				Pos:     c.Pos,
				Message: fmt.Sprintf("type %s has fewer than %d dimensions", root, c.Dim),
			})
		}
	}
}

func (inf *Inferer) writeBack() {
	for _, id := range inf.sortedPartialIDs() {
		entry := inf.typeMap[id]
		if entry.Parent == nil {
			continue // unresolved; already reported in phase (b)
		}
		root := inf.find(&ast.Partial{Id: id})
		if _, stillPartial := root.(*ast.Partial); stillPartial {
			continue
		}
		root = inf.upgradeToReps(root)
		if err := inf.types.Validate(root); err != nil {
			if ve, ok := err.(*typetable.ValidationError); ok {
				inf.logger.Error(diag.Diagnostic{Code: ve.Code, Pos: inf.posOf[id], Message: ve.Message})
			}
			continue
		}
		if node, ok := inf.anchors[id]; ok {
			node.SetType(root)
		}
	}
}

// sortedPartialIDs returns every partial id currently in type_map, in
// ascending (creation) order, for deterministic error ordering.
func (inf *Inferer) sortedPartialIDs() []int {
	ids := make([]int, 0, len(inf.typeMap))
	for id := range inf.typeMap {
		ids = append(ids, id)
	}
	// Creation order is the same as ascending id order; a tiny
	// insertion sort is plenty at this scale and keeps this package
	// free of a sort import for a single call site.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

func containsType(set []ast.Type, t ast.Type) bool {
	for _, s := range set {
		if ast.SameType(s, t) {
			return true
		}
	}
	return false
}

func joinTypes(ts []ast.Type) string {
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s
}

// ===== Auxiliary: find, occurs check =====

// find returns t's canonical representative, compressing every
// intermediate partial on the path to point directly at it. If t is not
// a Partial, it is returned unchanged (it is its own representative).
func (inf *Inferer) find(t ast.Type) ast.Type {
	p, ok := t.(*ast.Partial)
	if !ok {
		return t
	}

	var chain []*ast.Partial
	cur := p
	for {
		entry, known := inf.typeMap[cur.Id]
		if !known || entry.Parent == nil {
			break // cur is a root
		}
		chain = append(chain, cur)
		next, stillPartial := entry.Parent.(*ast.Partial)
		if !stillPartial {
			root := entry.Parent
			for _, c := range chain {
				inf.typeMap[c.Id] = &ufEntry{Parent: root, Weight: inf.typeMap[c.Id].Weight}
			}
			return root
		}
		cur = next
	}

	root := ast.Type(cur)
	for _, c := range chain {
		inf.typeMap[c.Id] = &ufEntry{Parent: root, Weight: inf.typeMap[c.Id].Weight}
	}
	return root
}

func (inf *Inferer) occursIn(p *ast.Partial, t ast.Type) bool {
	fp := inf.find(p)
	for _, ft := range inf.freeTypes(t) {
		if SameRep(fp, inf.find(ft)) {
			return true
		}
	}
	return false
}

// SameRep compares two already-find'd representatives.
func SameRep(a, b ast.Type) bool {
	pa, aok := a.(*ast.Partial)
	pb, bok := b.(*ast.Partial)
	if aok && bok {
		return pa.Id == pb.Id
	}
	return ast.SameType(a, b)
}

func (inf *Inferer) freeTypes(t ast.Type) []*ast.Partial {
	switch x := t.(type) {
	case *ast.Partial:
		r := inf.find(x)
		if rp, ok := r.(*ast.Partial); ok {
			return []*ast.Partial{rp}
		}
		return inf.freeTypes(r)
	case *ast.Function:
		return append(inf.freeTypes(x.From), inf.freeTypes(x.To)...)
	case *ast.Ref:
		return inf.freeTypes(x.Elem)
	case *ast.Array:
		return inf.freeTypes(x.Elem)
	default:
		return nil
	}
}

// upgradeToReps rebuilds t with every partial replaced by its canonical
// representative, recursing into the term a bound partial resolves to,
// so only unbound partials remain. It renders readable OccursIn
// messages and produces the fully resolved terms that write-back stores.
func (inf *Inferer) upgradeToReps(t ast.Type) ast.Type {
	switch x := t.(type) {
	case *ast.Partial:
		r := inf.find(x)
		if _, ok := r.(*ast.Partial); ok {
			return r
		}
		return inf.upgradeToReps(r)
	case *ast.Function:
		return &ast.Function{From: inf.upgradeToReps(x.From), To: inf.upgradeToReps(x.To)}
	case *ast.Ref:
		return &ast.Ref{Elem: inf.upgradeToReps(x.Elem)}
	case *ast.Array:
		return &ast.Array{Elem: inf.upgradeToReps(x.Elem), Dims: x.Dims}
	default:
		return t
	}
}
