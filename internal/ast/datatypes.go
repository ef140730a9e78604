package ast

// DataType is the tagged-variant interface for ST datatypes (spec §3
// "DataType"). Each concrete type below implements dataTypeNode() purely
// as a marker, the way Expression/Statement are marked — match is done by
// type switch in internal/types.Realizer and internal/lowering, matching
// the teacher's exhaustive-match-over-a-closed-set style (spec §9
// "Polymorphism").
type DataType interface {
	dataTypeNode()
	String() string
}

// StructType is a named, ordered field list (spec §3 "DataType").
type StructType struct {
	Fields []*Variable
}

func (*StructType) dataTypeNode() {}
func (s *StructType) String() string {
	return "STRUCT"
}

// ArrayBound is one dimension's declared lower/upper bound.
type ArrayBound struct {
	Lower int64
	Upper int64
}

// ArrayType is a fixed-size array over one or more bounds (spec §3
// "DataType").
type ArrayType struct {
	Bounds  []ArrayBound
	Element DataType
}

func (*ArrayType) dataTypeNode() {}
func (a *ArrayType) String() string {
	return "ARRAY"
}

// EnumType is an enumeration with an explicit backing integer type
// (spec §3 "DataType").
type EnumType struct {
	Variants []string
	Backing  DataType
}

func (*EnumType) dataTypeNode()     {}
func (*EnumType) String() string { return "ENUM" }

// SubrangeBounds is the inclusive [Lo, Hi] range of a Subrange. A nil
// *SubrangeBounds on a SubrangeType means the type is a plain alias/typedef
// with no runtime bounds (spec §3 "DataType": "bounds=None means
// alias/typedef").
type SubrangeBounds struct {
	Lo int64
	Hi int64
}

// SubrangeType restricts Base to an inclusive range, or aliases Base when
// Bounds is nil (spec §3 "DataType", GLOSSARY "Subrange").
type SubrangeType struct {
	Base   DataType
	Bounds *SubrangeBounds
}

func (*SubrangeType) dataTypeNode() {}
func (*SubrangeType) String() string { return "SUBRANGE" }

// AutoDerefKind classifies why a pointer auto-dereferences on use
// (spec §4.6 "auto-dereferencing semantics").
type AutoDerefKind int

const (
	// DerefAlias is an `AT <ident>` alias binding.
	DerefAlias AutoDerefKind = iota
	// DerefReference is a first-class `REFERENCE TO` binding (GLOSSARY).
	DerefReference
	// DerefByRef is a by-reference (VAR_IN_OUT or `REFERENCE TO`) formal
	// parameter.
	DerefByRef
)

// NamedType is a reference to a declared type by name occupying a
// DataType position (currently only PointerType.Target), used when a
// pointer's pointee is a named struct rather than an inline one — e.g.
// `next : POINTER TO NODE` inside NODE's own declaration. Unlike
// Variable.TypeRef (a *TypeReference, resolved by the external Oracle at
// the variable-declaration level), this is the DataType-tagged-variant
// form the Realizer/Debug Info Builder switch on directly.
type NamedType struct {
	Name string
}

func (*NamedType) dataTypeNode() {}
func (n *NamedType) String() string { return n.Name }

// PointerType is either a first-class pointer (`POINTER TO`/`REF_TO`, no
// AutoDeref) or an auto-dereferencing alias/reference/by-ref pointer
// (spec §3 "DataType").
type PointerType struct {
	Target    DataType
	AutoDeref *AutoDerefKind // nil for a plain POINTER TO / REF_TO
}

func (*PointerType) dataTypeNode() {}
func (*PointerType) String() string { return "POINTER" }

// StringType is a fixed byte/word buffer: STRING (Width=8) or WSTRING
// (Width=16), with a declared Capacity (spec §3 "DataType", GLOSSARY).
type StringType struct {
	Width    int // 8 or 16
	Capacity int
}

func (*StringType) dataTypeNode() {}
func (*StringType) String() string { return "STRING" }

// VLAType is a variable-length array with Dims declared dimensions whose
// bounds are supplied at the call site (spec §3 "DataType").
type VLAType struct {
	Dims int
}

func (*VLAType) dataTypeNode() {}
func (*VLAType) String() string { return "ARRAY[*]" }

// FunctionPointerType is a vtable slot's type: a pointer to the body or
// method implementation belonging to POU (spec §4.4 "a vtable record type
// `__vtable_T`... holding its function pointer").
type FunctionPointerType struct {
	POU string
}

func (*FunctionPointerType) dataTypeNode() {}
func (*FunctionPointerType) String() string { return "FUNCTION_POINTER" }
