// Package lowering implements the AST Lowering Pipeline: the Inheritance
// Rewriter, Initializer Synthesizer, VTable Generator, and Generic
// Monomorphizer & Nature Validator that together turn a surface ST AST
// into the explicit, codegen-ready form (spec §1, §2, §4).
//
// Grounded on the teacher's internal/semantic/passes package for the
// overall shape of a pass operating against shared mutable state
// (pass_context.go's PassContext) and on
// internal/semantic/analyze_classes_inheritance.go for the specific
// inheritance/constructor-synthesis algorithms, re-expressed here for a
// statically-typed PLC language instead of DWScript's dynamic OOP model.
package lowering

import "github.com/go-stc/stc/internal/ast"

// ScopeKind tags what a ContextStack frame represents (spec §4.1 "Context
// Stack").
type ScopeKind int

const (
	ScopePOU ScopeKind = iota
	ScopeDatatype
	ScopeGlobalBlock
)

// Scope is one frame of the Context Stack.
type Scope struct {
	Kind      ScopeKind
	POU       *ast.POU        // set when Kind == ScopePOU
	Datatype  *ast.TypeDecl   // set when Kind == ScopeDatatype
	BlockKind ast.VarBlockKind // meaningful when Kind == ScopePOU
}

// ContextStack tracks the current POU / datatype / variable-block during
// AST traversal, pushed on entering a POU/datatype/block and popped on
// exit (spec §4.1, §9 "Context stack vs. visitor mutation": "Any
// deviation from strict LIFO pairing is a bug").
type ContextStack struct {
	frames []Scope
}

// NewContextStack returns an empty stack.
func NewContextStack() *ContextStack { return &ContextStack{} }

// PushPOU enters a POU scope.
func (c *ContextStack) PushPOU(p *ast.POU, block ast.VarBlockKind) {
	c.frames = append(c.frames, Scope{Kind: ScopePOU, POU: p, BlockKind: block})
}

// PushDatatype enters a datatype scope.
func (c *ContextStack) PushDatatype(t *ast.TypeDecl) {
	c.frames = append(c.frames, Scope{Kind: ScopeDatatype, Datatype: t})
}

// PushGlobalBlock enters the unit's global-block scope.
func (c *ContextStack) PushGlobalBlock() {
	c.frames = append(c.frames, Scope{Kind: ScopeGlobalBlock})
}

// Pop removes the innermost scope. Calling Pop on an empty stack is a
// programmer error and panics, matching strict LIFO discipline (spec §9).
func (c *ContextStack) Pop() {
	if len(c.frames) == 0 {
		panic("lowering: ContextStack.Pop on empty stack")
	}
	c.frames = c.frames[:len(c.frames)-1]
}

// Top returns the innermost scope and true, or the zero Scope and false
// when the stack is empty.
func (c *ContextStack) Top() (Scope, bool) {
	if len(c.frames) == 0 {
		return Scope{}, false
	}
	return c.frames[len(c.frames)-1], true
}

// Depth reports the number of active frames.
func (c *ContextStack) Depth() int { return len(c.frames) }

// EmissionTarget is what a Scope resolves to for initialization-statement
// placement (spec §4.1 table).
type EmissionTarget int

const (
	// TargetStackConstructor is the current POU's stack-constructor
	// prelude (stateless POUs, or Temp/InOut blocks of stateful ones).
	TargetStackConstructor EmissionTarget = iota
	// TargetPOUConstructor is the current stateful POU's constructor.
	TargetPOUConstructor
	// TargetDatatypeConstructor is the current datatype's constructor.
	TargetDatatypeConstructor
	// TargetGlobalConstructor is the unit's global constructor.
	TargetGlobalConstructor
	// TargetNone means no scope is active; the caller must drop the
	// statement with a debug log (spec §4.1 table "None | drop with debug
	// log").
	TargetNone
)

// Resolve implements the spec §4.1 emission-target table against the
// stack's current top frame.
func (c *ContextStack) Resolve() EmissionTarget {
	top, ok := c.Top()
	if !ok {
		return TargetNone
	}
	switch top.Kind {
	case ScopeGlobalBlock:
		return TargetGlobalConstructor
	case ScopeDatatype:
		return TargetDatatypeConstructor
	case ScopePOU:
		if top.POU == nil {
			return TargetNone
		}
		if !top.POU.IsStateful() {
			return TargetStackConstructor
		}
		switch top.BlockKind {
		case ast.VarTemp, ast.VarInOut:
			return TargetStackConstructor
		case ast.VarLocal, ast.VarInput, ast.VarOutput:
			return TargetPOUConstructor
		default:
			// VarGlobal/VarExternal/VarReturn inside a stateful POU carry no
			// per-instance initializer placement of their own; callers that
			// reach here for those kinds should already have special-cased
			// them before consulting Resolve.
			return TargetNone
		}
	default:
		return TargetNone
	}
}
