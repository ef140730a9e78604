package ast

import (
	"github.com/go-stc/stc/internal/ids"
	"github.com/go-stc/stc/internal/source"
)

// Builder is the centralized helper surface for creating synthesized
// nodes, so every rewriter produces the same node shapes with consistent
// ID allocation (spec §9 "Builders, not constructors": "The helper surface
// for creating synthesized nodes... must be centralized; every rewriter
// uses these to guarantee consistent shape and ID allocation").
//
// Grounded on the teacher's internal/parser.NodeBuilder, which centralizes
// node construction during parsing; here the equivalent concern is
// centralizing node construction during lowering, where the "current
// position" is always inherited from an origin node rather than tracked
// against a token cursor.
type Builder struct {
	IDs *ids.Provider
}

// NewBuilder creates a Builder backed by the given ID provider.
func NewBuilder(p *ids.Provider) *Builder {
	return &Builder{IDs: p}
}

func (b *Builder) base(pos source.Position) BaseNode {
	return BaseNode{NodeID: b.IDs.Next(), Position: pos}
}

// Member builds a synthesized `base.name` Reference Expression segment,
// inheriting pos from the node that triggered the rewrite.
func (b *Builder) Member(pos source.Position, base Expression, name string) *RefExpr {
	return &RefExpr{BaseNode: b.base(pos), Kind: RefMember, Base: base, Name: name}
}

// Deref builds a synthesized `base^` Reference Expression segment.
func (b *Builder) Deref(pos source.Position, base Expression) *RefExpr {
	return &RefExpr{BaseNode: b.base(pos), Kind: RefDeref, Base: base}
}

// Ident builds a synthesized bare identifier reference, e.g. `self`.
func (b *Builder) Ident(pos source.Position, name string) *Identifier {
	return &Identifier{BaseNode: b.base(pos), Name: name}
}

// Assign builds a synthesized `lhs := rhs` statement.
func (b *Builder) Assign(pos source.Position, lhs, rhs Expression) *AssignStatement {
	return &AssignStatement{BaseNode: b.base(pos), Kind: AssignDirect, LHS: lhs, RHS: rhs}
}

// RefAssign builds a synthesized `lhs REF= rhs` statement.
func (b *Builder) RefAssign(pos source.Position, lhs, rhs Expression) *AssignStatement {
	return &AssignStatement{BaseNode: b.base(pos), Kind: AssignRef, LHS: lhs, RHS: rhs}
}

// Call builds a synthesized call statement to callee(args...), used for
// constructor and FB_INIT invocations (spec §4.3 "Per-POU").
func (b *Builder) Call(pos source.Position, callee Expression, args ...Expression) *CallStatement {
	return &CallStatement{
		BaseNode: b.base(pos),
		Call: &CallExpr{
			BaseNode: b.base(pos),
			Callee:   callee,
			Args:     args,
		},
	}
}

// AdrOf builds a synthesized `ADR(target)` expression.
func (b *Builder) AdrOf(pos source.Position, target Expression) *AdrOfExpr {
	return &AdrOfExpr{BaseNode: b.base(pos), Target: target}
}

// RefOf builds a synthesized `REF(target)` expression.
func (b *Builder) RefOf(pos source.Position, target Expression) *RefOfExpr {
	return &RefOfExpr{BaseNode: b.base(pos), Target: target}
}

// SelfBase builds the canonical `self` identifier used as the base of
// every field reference emitted inside a stateful POU's constructor
// (spec §6 "Implicit base identifier inside a stateful POU method: self").
func (b *Builder) SelfBase(pos source.Position) *Identifier {
	return b.Ident(pos, "self")
}
