package lowering

import "github.com/go-stc/stc/internal/ast"

// RewritePropertyRead lowers a read of property prop on a value of static
// type ownerType to a call `__get_<prop>(base)`, dispatched to the
// nearest ancestor (possibly ownerType itself) that defines the getter
// (spec §4.2 "Property calls").
//
// ok is false when no ancestor defines a getter for prop, in which case
// expr is returned unchanged for a later resolution pass to diagnose.
func (r *InheritanceRewriter) RewritePropertyRead(base ast.Expression, ownerType, prop string) (ast.Expression, bool) {
	_, found := r.Oracle.FindPropertyGetter(ownerType, prop)
	if !found {
		return nil, false
	}
	return r.Builder.Call(base.Pos(), r.Builder.Ident(base.Pos(), "__get_"+prop), base).Call, true
}

// RewritePropertyWrite lowers `base.prop := rhs` to a call statement
// `__set_<prop>(base, rhs)`, dispatched independently of the getter — a
// partially overridden property may resolve its getter and setter to
// different ancestors (spec §4.2 "Property calls": "each accessor is
// dispatched to the nearest ancestor that defines it — not necessarily
// the same ancestor for getter and setter").
func (r *InheritanceRewriter) RewritePropertyWrite(base, rhs ast.Expression, ownerType, prop string) (*ast.CallStatement, bool) {
	_, found := r.Oracle.FindPropertySetter(ownerType, prop)
	if !found {
		return nil, false
	}
	return r.Builder.Call(base.Pos(), r.Builder.Ident(base.Pos(), "__set_"+prop), base, rhs), true
}
