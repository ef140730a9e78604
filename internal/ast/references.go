package ast

// RefKind tags which of the four Reference Expression variants a RefExpr
// is (spec §3 "Reference Expression").
type RefKind int

const (
	// RefMember is `<base>.Name`.
	RefMember RefKind = iota
	// RefIndex is `<base>[Index]`.
	RefIndex
	// RefDeref is `<base>^`.
	RefDeref
	// RefCast is `<base>(AS CastType)` / a hard type cast of base.
	RefCast
)

// RefExpr is the four-variant Reference Expression node (spec §3). Every
// tail segment carries an optional Base, which is itself a Reference
// Expression (or, at the root, any other expression — an identifier, a
// call result, etc).
//
// The Inheritance Rewriter (internal/lowering) is the pass that walks
// chains of these and inserts synthetic `__<ancestor>` Member segments
// between Base and the unresolved tail (spec §4.2).
type RefExpr struct {
	BaseNode

	Kind RefKind
	Base Expression // nil at the root of a chain

	Name      string     // set when Kind == RefMember
	Index     Expression // set when Kind == RefIndex
	CastType  *TypeReference // set when Kind == RefCast
}

func (*RefExpr) expressionNode() {}
func (r *RefExpr) String() string {
	switch r.Kind {
	case RefMember:
		return "." + r.Name
	case RefIndex:
		return "[...]"
	case RefDeref:
		return "^"
	case RefCast:
		return "(AS " + r.CastType.String() + ")"
	default:
		return "?"
	}
}

// SuperExpr represents the `SUPER` keyword (spec §4.2 "SUPER").
//
// Derefed distinguishes `SUPER^` (true — lowers to a Member("__<parent>")
// reference) from bare `SUPER` (false — lowers to a REF of that member,
// "take the address of the parent sub-object"). A base is carried so that
// `SUPER^.SUPER^` chains can be preserved literally for validation instead
// of being rewritten (spec §4.2, §8 "Boundary behaviors").
type SuperExpr struct {
	BaseNode
	Base    Expression // nil unless nested, e.g. the inner SUPER^ of SUPER^.SUPER^
	Derefed bool
}

func (*SuperExpr) expressionNode() {}
func (s *SuperExpr) String() string {
	if s.Derefed {
		return "SUPER^"
	}
	return "SUPER"
}

// ThisExpr represents the `THIS` keyword: a pointer to the current
// instance, lowered to the POU's implicit self parameter (spec §4.2
// "THIS").
type ThisExpr struct {
	BaseNode
}

func (*ThisExpr) expressionNode() {}
func (*ThisExpr) String() string  { return "THIS" }

// GlobalExpr wraps a reference that is explicitly qualified with the
// `GLOBAL` keyword, preserved verbatim through lowering so that later
// validation can check it (spec §3 "Reference Expression").
type GlobalExpr struct {
	BaseNode
	Inner Expression
}

func (*GlobalExpr) expressionNode() {}
func (*GlobalExpr) String() string  { return "GLOBAL" }
