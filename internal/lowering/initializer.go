package lowering

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/oracle"
)

// Synthesizer turns declarative initializers into imperative constructor
// statements (spec §4.3 "Initializer Synthesizer").
//
// Grounded on the teacher's internal/semantic/analyze_classes_inheritance.go
// (synthesizeDefaultConstructor, inheritParentConstructors) for the overall
// shape of walking a type's fields and emitting constructor statements in a
// fixed call order; re-expressed here against the spec's own fixed order
// (base ctor → field ctors → direct assigns → vtable store → FB_INIT)
// rather than DWScript's.
type Synthesizer struct {
	Oracle  oracle.Oracle
	Builder *ast.Builder
	Stack   *ContextStack

	// typeCtors holds one constructor entry per stateful POU and per
	// user-defined struct type, keyed by type/POU name (spec §3
	// Invariants: "every stateful type... has exactly one constructor
	// registered under its type name").
	typeCtors map[string]*ast.Implementation

	// stackCtors holds one stack-constructor entry per non-stateful POU,
	// keyed by POU name (spec §3 Invariants: "every non-stateful POU has a
	// stack-constructor entry under its name").
	stackCtors map[string]*ast.Implementation

	// fbInit records, per stateful POU name, whether a user-defined
	// FB_INIT method exists (spec §4.3 "Per-POU" step 1).
	fbInit map[string]bool
}

// NewSynthesizer constructs a Synthesizer ready for PreRegister.
func NewSynthesizer(o oracle.Oracle, b *ast.Builder) *Synthesizer {
	return &Synthesizer{
		Oracle:     o,
		Builder:    b,
		Stack:      NewContextStack(),
		typeCtors:  make(map[string]*ast.Implementation),
		stackCtors: make(map[string]*ast.Implementation),
		fbInit:     make(map[string]bool),
	}
}

// HasConstructor reports whether name has a registered constructor entry
// (stateful POU or struct type), used by field/variable visits to decide
// whether to emit a type-constructor call (spec §4.3 "Pre-pass": "This
// ensures that when visiting a struct field of type T, the check 'is
// there a constructor for T?' is already authoritative").
func (s *Synthesizer) HasConstructor(name string) bool {
	_, ok := s.typeCtors[name]
	return ok
}

// PreRegister walks the unit and registers an (initially empty)
// constructor entry for every non-generic, non-built-in POU, and every
// user type, per spec §4.3 "Pre-pass".
func (s *Synthesizer) PreRegister(unit *ast.CompilationUnit) {
	for _, p := range unit.POUs {
		if p.IsGeneric {
			continue
		}
		s.registerPOU(p)
	}
	for _, t := range unit.DataTypes {
		if _, isVLA := t.Type.(*ast.VLAType); isVLA {
			continue
		}
		if _, isStruct := t.Type.(*ast.StructType); isStruct {
			s.typeCtors[t.Name] = &ast.Implementation{Owner: t.Name, Body: ast.ConstructorBody{Kind: ast.BodyInternal}}
		}
	}
}

func (s *Synthesizer) registerPOU(p *ast.POU) {
	for _, m := range p.Methods {
		if m.Name == "FB_INIT" {
			s.fbInit[p.Name] = true
		}
	}
	if p.IsStateful() {
		s.typeCtors[p.Name] = &ast.Implementation{Owner: p.Name, Body: ast.ConstructorBody{Kind: ast.BodyInternal}}
	} else {
		s.stackCtors[p.Name] = &ast.Implementation{Owner: p.Name, Body: ast.ConstructorBody{Kind: ast.BodyInternal}}
	}
}

func (s *Synthesizer) emit(target EmissionTarget, owner string, unit *ast.CompilationUnit, stmt ast.Statement) {
	switch target {
	case TargetPOUConstructor, TargetDatatypeConstructor:
		if impl, ok := s.typeCtors[owner]; ok {
			impl.Body.Stmts = append(impl.Body.Stmts, stmt)
		}
	case TargetStackConstructor:
		if impl, ok := s.stackCtors[owner]; ok {
			impl.Body.Stmts = append(impl.Body.Stmts, stmt)
		}
	case TargetGlobalConstructor:
		if unit.GlobalConstructor == nil {
			unit.GlobalConstructor = &ast.Implementation{Owner: unit.Name, Body: ast.ConstructorBody{Kind: ast.BodyInternal}}
		}
		unit.GlobalConstructor.Body.Stmts = append(unit.GlobalConstructor.Body.Stmts, stmt)
	case TargetNone:
		// Dropped: a debug-log event, never fatal (spec §4.3 "Failure
		// semantics"). No logging sink is wired at this layer; the driver
		// decides verbosity (spec §7 "Debug-log events... never surface to
		// the user unless a verbose flag is set").
	}
}

// SynthesizePOU implements spec §4.3 "Per-POU" steps 1-7 for one POU.
func (s *Synthesizer) SynthesizePOU(unit *ast.CompilationUnit, p *ast.POU) {
	if p.IsGeneric {
		return
	}

	pos := p.Pos()
	self := s.Builder.SelfBase(pos)

	if p.IsStateful() && p.Base != nil {
		baseCall := s.Builder.Call(pos, s.Builder.Ident(pos, *p.Base+"__ctor"),
			s.Builder.Member(pos, self, "__"+*p.Base))
		s.appendToOwnCtor(p, baseCall)
	}

	for _, block := range p.VarBlocks {
		s.Stack.PushPOU(p, block.Kind)
		for _, v := range block.Vars {
			s.synthesizeVariable(unit, p, block, v)
		}
		s.Stack.Pop()
	}

	if p.IsStateful() && (p.IsFunctionBlock() || p.IsClass()) {
		vtableStore := s.Builder.Assign(pos,
			s.Builder.Member(pos, self, "__vtable"),
			s.Builder.AdrOf(pos, s.Builder.Ident(pos, "__vtable_"+p.Name+"_instance")))
		s.appendToOwnCtor(p, vtableStore)
	}

	if p.IsStateful() && s.fbInit[p.Name] {
		fbInitCall := s.Builder.Call(pos, s.Builder.Member(pos, self, "FB_INIT"))
		s.appendToOwnCtor(p, fbInitCall)
	}

	if p.IsProgram() {
		call := s.Builder.Call(pos, s.Builder.Ident(pos, p.Name+"__ctor"), s.Builder.Ident(pos, p.Name))
		if unit.GlobalConstructor == nil {
			unit.GlobalConstructor = &ast.Implementation{Owner: unit.Name, Body: ast.ConstructorBody{Kind: ast.BodyInternal}}
		}
		unit.GlobalConstructor.Body.Stmts = append(unit.GlobalConstructor.Body.Stmts, call)
	}

	if !p.IsStateful() && p.ReturnType != nil && s.HasConstructor(p.ReturnType.Name) {
		call := s.Builder.Call(pos, s.Builder.Ident(pos, p.ReturnType.Name+"__ctor"), s.Builder.Ident(pos, p.Name))
		if impl, ok := s.stackCtors[p.Name]; ok {
			impl.Body.Stmts = append(impl.Body.Stmts, call)
		}
	}
}

// appendToOwnCtor appends stmt to p's own constructor entry (stateful) or
// stack-constructor entry (stateless), used for the steps of §4.3
// "Per-POU" that are not routed through the Context Stack's Resolve
// (base-ctor call, vtable store, FB_INIT call are always emitted against
// the POU itself, regardless of which block is currently being visited).
func (s *Synthesizer) appendToOwnCtor(p *ast.POU, stmt ast.Statement) {
	if p.IsStateful() {
		if impl, ok := s.typeCtors[p.Name]; ok {
			impl.Body.Stmts = append(impl.Body.Stmts, stmt)
		}
		return
	}
	if impl, ok := s.stackCtors[p.Name]; ok {
		impl.Body.Stmts = append(impl.Body.Stmts, stmt)
	}
}

// synthesizeVariable implements spec §4.3 "Per-variable" steps 1-5 for one
// variable inside a visited block.
func (s *Synthesizer) synthesizeVariable(unit *ast.CompilationUnit, p *ast.POU, block *ast.VarBlock, v *ast.Variable) {
	if block.IsConstant {
		return
	}

	pos := v.Pos()
	target := s.Stack.Resolve()

	// Step 1: choose the base.
	var base ast.Expression
	if p.IsStateful() && (block.Kind == ast.VarLocal || block.Kind == ast.VarInput || block.Kind == ast.VarOutput) {
		base = s.Builder.SelfBase(pos)
	}

	typeName := ""
	if v.TypeRef != nil {
		typeName = v.TypeRef.Name
	}
	info, hasInfo := oracle.TypeInfo{}, false
	if typeName != "" {
		info, hasInfo = s.Oracle.EffectiveTypeInfo(typeName)
	}

	// Step 2: type-constructor call, unless v is InOut.
	if block.Kind != ast.VarInOut && typeName != "" && s.HasConstructor(typeName) {
		var ctorTarget ast.Expression
		if base != nil {
			ctorTarget = s.Builder.Member(pos, base, v.Name)
		} else {
			ctorTarget = s.Builder.Ident(pos, v.Name)
		}
		call := s.Builder.Call(pos, s.Builder.Ident(pos, typeName+"__ctor"), ctorTarget)
		s.emit(target, s.ownerName(p), unit, call)
	}

	// Step 3: resolve effective initializer.
	init := EffectiveInitializer(s.Builder, v, hasInfo, info)
	if init == nil {
		return
	}

	// Step 4: qualify a bare identifier naming a member of the owner POU.
	init = QualifyBareIdentifier(s.Builder, init, base, p.Name, s.Oracle)

	// Step 5: classify and emit.
	s.emitByPolicy(unit, p, v, base, init, typeName, info, hasInfo, target)
}

func (s *Synthesizer) ownerName(p *ast.POU) string { return p.Name }

func (s *Synthesizer) emitByPolicy(unit *ast.CompilationUnit, p *ast.POU, v *ast.Variable, base ast.Expression, init ast.Expression, typeName string, info oracle.TypeInfo, hasInfo bool, target EmissionTarget) {
	pos := v.Pos()
	var lhs ast.Expression
	if base != nil {
		lhs = s.Builder.Member(pos, base, v.Name)
	} else {
		lhs = s.Builder.Ident(pos, v.Name)
	}

	action := Classify(v, typeName, info, hasInfo)
	switch action {
	case ActionRefAssign:
		rhs := UnwrapREF(init, hasInfo && info.IsReferenceTo)
		s.emit(target, s.ownerName(p), unit, s.Builder.RefAssign(pos, lhs, rhs))
	case ActionStructDecompose:
		// The type-constructor call (if any) was already emitted by Step 2
		// above; here we only emit the per-field direct assigns.
		lit := init.(*ast.StructLiteral)
		s.emitStructLiteralFields(unit, p, lhs, lit, target)
	default:
		s.emit(target, s.ownerName(p), unit, s.Builder.Assign(pos, lhs, init))
	}
}

// emitStructLiteralFields emits one `lhs.fi := ei` per listed field in
// declaration order of the literal, recursing for nested struct literals
// (spec §8 invariant: "the emitted sequence is exactly (inner-ctor call)
// followed by per-field direct assigns in declaration order of the
// literal").
func (s *Synthesizer) emitStructLiteralFields(unit *ast.CompilationUnit, p *ast.POU, lhs ast.Expression, lit *ast.StructLiteral, target EmissionTarget) {
	pos := lhs.Pos()
	for _, f := range lit.Fields {
		fieldLHS := s.Builder.Member(pos, lhs, f.Field)
		if nested, ok := f.Value.(*ast.StructLiteral); ok {
			s.emitStructLiteralFields(unit, p, fieldLHS, nested, target)
			continue
		}
		s.emit(target, s.ownerName(p), unit, s.Builder.Assign(pos, fieldLHS, f.Value))
	}
}
