package ast

// POUKind enumerates the six executable-unit kinds IEC 61131-3 names
// (spec §3 "POU", GLOSSARY "POU").
type POUKind int

const (
	POUProgram POUKind = iota
	POUFunction
	POUFunctionBlock
	POUClass
	POUMethod
	POUAction
)

func (k POUKind) String() string {
	switch k {
	case POUProgram:
		return "PROGRAM"
	case POUFunction:
		return "FUNCTION"
	case POUFunctionBlock:
		return "FUNCTION_BLOCK"
	case POUClass:
		return "CLASS"
	case POUMethod:
		return "METHOD"
	case POUAction:
		return "ACTION"
	default:
		return "UNKNOWN"
	}
}

// VarBlockKind tags a variable block by its declaration section (spec §3
// "POU").
type VarBlockKind int

const (
	VarInput VarBlockKind = iota
	VarOutput
	VarInOut
	VarLocal
	VarTemp
	VarGlobal
	VarExternal
	VarReturn
)

func (k VarBlockKind) String() string {
	switch k {
	case VarInput:
		return "VAR_INPUT"
	case VarOutput:
		return "VAR_OUTPUT"
	case VarInOut:
		return "VAR_IN_OUT"
	case VarLocal:
		return "VAR"
	case VarTemp:
		return "VAR_TEMP"
	case VarGlobal:
		return "VAR_GLOBAL"
	case VarExternal:
		return "VAR_EXTERNAL"
	case VarReturn:
		return "VAR_RETURN"
	default:
		return "UNKNOWN"
	}
}

// POU is a named executable unit (spec §3 "POU").
type POU struct {
	BaseNode

	Name string
	Kind POUKind

	VarBlocks  []*VarBlock
	ReturnType *TypeReference // nil unless Kind == POUFunction/POUMethod with a result

	Base       *string   // EXTENDS target name, nil if none
	Implements []string  // IMPLEMENTS interface names
	Methods    []*POU    // nested methods (Kind == POUMethod); actions live alongside
	Body       []Statement

	IsGeneric bool
	// TypeParams holds the generic POU's declared nature-constrained type
	// parameters (spec §4.5); empty unless IsGeneric.
	TypeParams []GenericParam

	// StackConstructor holds the synthesized stack-constructor prelude for
	// stateless POUs, or is left nil for stateful POUs (whose constructor
	// Finalize appends to the unit as a separate `<Name>__ctor` POU instead
	// — spec §4.1 table).
	StackConstructor *Implementation
}

// IsStateful reports whether instances of this POU carry state that must
// be allocated per call-site (spec §3 "Flags").
func (p *POU) IsStateful() bool {
	switch p.Kind {
	case POUProgram, POUFunctionBlock, POUClass:
		return true
	default:
		return false
	}
}

func (p *POU) IsFunctionBlock() bool { return p.Kind == POUFunctionBlock }
func (p *POU) IsClass() bool         { return p.Kind == POUClass }
func (p *POU) IsProgram() bool       { return p.Kind == POUProgram }

// QualifiedName is a method's fully-qualified "<parent>.<method>" name
// (spec §3 "POU").
func (p *POU) QualifiedName(parent string) string {
	if parent == "" {
		return p.Name
	}
	return parent + "." + p.Name
}

func (p *POU) String() string { return p.Kind.String() + " " + p.Name }

// GenericParam is one type parameter of a generic POU, constrained by a
// nature (spec §4.5).
type GenericParam struct {
	Name   string
	Nature Nature
}

// VarBlock is one variable declaration block tagged with its section kind
// (spec §3 "POU").
type VarBlock struct {
	BaseNode
	Kind       VarBlockKind
	IsConstant bool
	Vars       []*Variable
}

func (b *VarBlock) String() string { return b.Kind.String() }

// AtBindingKind distinguishes an alias target from a hardware address
// literal (spec §3 "Variable", GLOSSARY "Alias").
type AtBindingKind int

const (
	// AtSimpleIdent binds to another variable's storage (an alias).
	AtSimpleIdent AtBindingKind = iota
	// AtHardwareAddress binds to an MMIO slot, e.g. `%IX1.2.1`.
	AtHardwareAddress
)

// AtBinding is a variable's `AT <address>` clause (spec §3 "Variable").
type AtBinding struct {
	Kind    AtBindingKind
	Ident   string // set when Kind == AtSimpleIdent
	Address string // set when Kind == AtHardwareAddress, e.g. "%IX1.2.1"
}

// Variable is one declared name within a VarBlock, or a struct field
// (spec §3 "Variable").
type Variable struct {
	BaseNode

	Name string

	// TypeRef is set when the variable's type is a reference to a named
	// type; InlineType is set when it is defined inline. Exactly one is
	// non-nil.
	TypeRef    *TypeReference
	InlineType DataType

	Initializer Expression // nil if none
	At          *AtBinding // nil if none
}

func (v *Variable) String() string { return v.Name }

// HasInlineType reports whether the variable's type is defined inline
// (InlineType set) rather than referenced by name through TypeRef.
func (v *Variable) HasInlineType() bool { return v.InlineType != nil }

// TypeReference is a named reference to a user or built-in type, resolved
// by the external Oracle (spec §6 Consumed).
type TypeReference struct {
	BaseNode
	Name string
}

func (t *TypeReference) String() string { return t.Name }
