// Package ast defines the node types for the IEC 61131-3 Structured Text
// AST consumed and produced by this module. The surface AST (built by the
// parser) and the lowered AST (rewritten in place by internal/lowering)
// share these same node types; lowering mutates nodes and splices in
// synthesized ones rather than building a second tree shape.
package ast

import "github.com/go-stc/stc/internal/source"

// Node is the base interface implemented by every AST node, surface or
// synthesized.
type Node interface {
	// ID is the node's identity, assigned by ids.Provider. Synthesized
	// nodes get a fresh ID; nodes copied from the surface AST keep theirs.
	ID() uint64
	// Pos is the node's source location, propagated to every synthesized
	// node from the node it was derived from (spec §6 Consumed).
	Pos() source.Position
	String() string
}

// Expression is any node that yields a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// BaseNode carries the fields common to every node and is embedded by every
// concrete node type, matching the teacher's Token-embedding convention
// (internal/ast.FieldDecl etc.) adapted to carry an explicit ID instead of
// a lexer token, since the lexer is out of scope here.
type BaseNode struct {
	NodeID   uint64
	Position source.Position
}

func (b BaseNode) ID() uint64          { return b.NodeID }
func (b BaseNode) Pos() source.Position { return b.Position }

// Linkage classifies how a CompilationUnit's symbols are exposed (spec §3).
type Linkage int

const (
	LinkageInternal Linkage = iota
	LinkageExternal
	LinkageInclude
	LinkageBuiltIn
)

func (l Linkage) String() string {
	switch l {
	case LinkageInternal:
		return "internal"
	case LinkageExternal:
		return "external"
	case LinkageInclude:
		return "include"
	case LinkageBuiltIn:
		return "builtin"
	default:
		return "unknown"
	}
}

// CompilationUnit is an ordered collection of POUs, user-defined types,
// global variable blocks, and hardware config bindings (spec §3).
type CompilationUnit struct {
	Name    string
	Linkage Linkage

	POUs      []*POU
	DataTypes []*TypeDecl
	Globals   []*VarBlock
	Configs   []*ConfigBinding

	// GlobalConstructor accumulates the statements the Initializer
	// Synthesizer appends for this unit's module-scoped state (spec §4.3
	// "Per-global-block"). Non-nil only after synthesis has run.
	GlobalConstructor *Implementation
}

// TypeDecl binds a name to a DataType definition (spec §3 DataType).
type TypeDecl struct {
	BaseNode
	Name string
	Type DataType

	// Constructor holds the synthesized per-type constructor, if one was
	// registered and emitted for this type (spec §4.3).
	Constructor *Implementation
}

// ConfigBinding is one VAR_CONFIG hardware-address assignment (spec §4.3
// "Per-global-block"): `<reference> := <hardware_address>`, emitted
// verbatim by the Initializer Synthesizer into the unit's global
// constructor.
type ConfigBinding struct {
	BaseNode
	Reference       Expression
	HardwareAddress string
}

// Implementation is the statement body backing a POU or a synthesized
// constructor (spec §3 "Constructor Body").
type Implementation struct {
	Owner string // POU or type name this implementation belongs to
	Body  ConstructorBody
}

// ConstructorBodyKind tags which of the three Constructor Body variants a
// ConstructorBody holds (spec §3).
type ConstructorBodyKind int

const (
	// BodyInternal holds statements with a definition to be emitted.
	BodyInternal ConstructorBodyKind = iota
	// BodyExternal holds statements that are still populated but emitted
	// as an `extern` declaration unless generate_externals is set.
	BodyExternal
	// BodyNone means no constructor was produced (generic, built-in, or
	// VLA type — spec §4.3 "Failure semantics").
	BodyNone
)

// ConstructorBody is the tagged body of a synthesized constructor.
type ConstructorBody struct {
	Kind  ConstructorBodyKind
	Stmts []Statement
}
