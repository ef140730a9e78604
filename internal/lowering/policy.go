package lowering

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/oracle"
)

// Action is the emission instruction the Lowering Policy Table resolves a
// variable's initializer to (spec §4.3 "Lowering Policy Table").
type Action int

const (
	// ActionDirectAssign emits `v := init`.
	ActionDirectAssign Action = iota
	// ActionRefAssign emits `v REF= rhs`.
	ActionRefAssign
	// ActionStructDecompose emits `Ctor(v)` then one `v.fi := ei` per
	// listed literal field, recursively for nested struct literals.
	ActionStructDecompose
)

// Classify resolves the Lowering Policy Table's priority-ordered rule set
// for one variable against its declared type and initializer shape
// (spec §4.3 "Classify lowering policy via the table below").
//
// typeName is the variable's resolved type name (the TypeReference's
// Name, or empty for an inline type); info is the Oracle's capability
// flags for that type, when resolvable.
func Classify(v *ast.Variable, typeName string, info oracle.TypeInfo, hasInfo bool) Action {
	isAlias := v.At != nil && v.At.Kind == ast.AtSimpleIdent
	isReferenceTo := hasInfo && info.IsReferenceTo

	if isAlias || isReferenceTo {
		return ActionRefAssign
	}

	if _, ok := v.Initializer.(*ast.StructLiteral); ok {
		return ActionStructDecompose
	}

	// REF_TO/POINTER TO field initialized with REF(x) is a direct assign,
	// not a reference-bind — only declared REFERENCE TO/alias use REF=
	// (spec §4.3 "Notes").
	return ActionDirectAssign
}

// UnwrapREF strips a single REF(...) wrapper from init when the
// declared type is REFERENCE TO, so the synthesized REF= statement binds
// to the referent rather than re-wrapping it (spec §4.3 Lowering Policy
// Table: "rhs = unwrap_REF(init) when declared type is REFERENCE TO, else
// init as-is").
func UnwrapREF(init ast.Expression, declaredIsReferenceTo bool) ast.Expression {
	if !declaredIsReferenceTo {
		return init
	}
	if r, ok := init.(*ast.RefOfExpr); ok {
		return r.Target
	}
	return init
}

// EffectiveInitializer resolves the initializer to use for v, per spec
// §4.3 "Per-variable" step 3: v's own initializer if present, else — when
// v is an alias/reference with a simple-identifier AT target — a synthetic
// identifier naming that target; otherwise nil (no initializer to emit).
func EffectiveInitializer(b *ast.Builder, v *ast.Variable, hasInfo bool, info oracle.TypeInfo) ast.Expression {
	if v.Initializer != nil {
		return v.Initializer
	}
	isAliasOrRef := (v.At != nil && v.At.Kind == ast.AtSimpleIdent) || (hasInfo && info.IsReferenceTo)
	if isAliasOrRef && v.At != nil && v.At.Kind == ast.AtSimpleIdent {
		return b.Ident(v.Pos(), v.At.Ident)
	}
	return nil
}

// QualifyBareIdentifier implements spec §4.3 "Per-variable" step 4:
// rewrites a bare identifier initializer to `<base>.<name>` when it names
// a member of the current POU, so it refers to the instance field rather
// than a free variable of the same name. base is nil when the current
// scope has no instance (e.g. Temp/stateless), in which case the
// identifier is left untouched.
//
// The identifier need not be the initializer's outermost node: a
// `REF(i)`/`ADR(i)`/`(i)` wrapper is unwrapped and rewrapped around the
// qualified identifier, since those wrappers carry no scope of their own
// (spec §8 scenario 6: `pi:REF_TO INT := REF(i)` inside FB foo lowers to
// `self.pi := REF(self.i)`).
func QualifyBareIdentifier(b *ast.Builder, expr ast.Expression, base ast.Expression, currentType string, o oracle.Oracle) ast.Expression {
	if base == nil {
		return expr
	}
	switch e := expr.(type) {
	case *ast.Identifier:
		if !o.FindMember(currentType, e.Name) {
			return expr
		}
		return b.Member(e.Pos(), base, e.Name)
	case *ast.RefOfExpr:
		return &ast.RefOfExpr{BaseNode: e.BaseNode, Target: QualifyBareIdentifier(b, e.Target, base, currentType, o)}
	case *ast.AdrOfExpr:
		return &ast.AdrOfExpr{BaseNode: e.BaseNode, Target: QualifyBareIdentifier(b, e.Target, base, currentType, o)}
	case *ast.ParenExpr:
		return &ast.ParenExpr{BaseNode: e.BaseNode, Inner: QualifyBareIdentifier(b, e.Inner, base, currentType, o)}
	default:
		return expr
	}
}
