package lowering

import "github.com/go-stc/stc/internal/ast"

// SynthesizeGlobalBlock implements spec §4.3 "Per-global-block":
// statements accumulate in the unit's global_constructor, driven by the
// same per-variable pass as a stateless, base-less POU (no self, no
// inherited-member qualification applies to a global).
func (s *Synthesizer) SynthesizeGlobalBlock(unit *ast.CompilationUnit, block *ast.VarBlock) {
	s.Stack.PushGlobalBlock()
	defer s.Stack.Pop()

	if block.IsConstant {
		return
	}
	target := s.Stack.Resolve()

	for _, v := range block.Vars {
		typeName := ""
		if v.TypeRef != nil {
			typeName = v.TypeRef.Name
		}
		info, hasInfo := s.Oracle.EffectiveTypeInfo(typeName)
		if typeName == "" {
			hasInfo = false
		}

		pos := v.Pos()
		lhs := s.Builder.Ident(pos, v.Name)

		if typeName != "" && s.HasConstructor(typeName) {
			s.emitGlobal(unit, s.Builder.Call(pos, s.Builder.Ident(pos, typeName+"__ctor"), lhs), target)
		}

		init := EffectiveInitializer(s.Builder, v, hasInfo, info)
		if init == nil {
			continue
		}

		action := Classify(v, typeName, info, hasInfo)
		switch action {
		case ActionRefAssign:
			rhs := UnwrapREF(init, hasInfo && info.IsReferenceTo)
			s.emitGlobal(unit, s.Builder.RefAssign(pos, lhs, rhs), target)
		case ActionStructDecompose:
			lit := init.(*ast.StructLiteral)
			s.emitStructLiteralFields(unit, &ast.POU{Name: unit.Name}, lhs, lit, target)
		default:
			s.emitGlobal(unit, s.Builder.Assign(pos, lhs, init), target)
		}
	}
}

func (s *Synthesizer) emitGlobal(unit *ast.CompilationUnit, stmt ast.Statement, target EmissionTarget) {
	if unit.GlobalConstructor == nil {
		unit.GlobalConstructor = &ast.Implementation{Owner: unit.Name, Body: ast.ConstructorBody{Kind: ast.BodyInternal}}
	}
	unit.GlobalConstructor.Body.Stmts = append(unit.GlobalConstructor.Body.Stmts, stmt)
}

// SynthesizeConfigBindings implements spec §4.3 "Per-global-block":
// "VAR_CONFIG entries emit `<reference> := <hardware_address>` verbatim."
// Per spec §9 Open Questions, the precise ordering relative to stateful
// global constructors is unresolved by the snapshots for the general
// case; this module's decision is to emit
// VAR_CONFIG bindings for scalar references before stateful global
// constructor calls, and after them for struct-typed references, matching
// the only two documented snapshot shapes.
func (s *Synthesizer) SynthesizeConfigBindings(unit *ast.CompilationUnit, structured bool) {
	for _, cfg := range unit.Configs {
		stmt := &ast.AssignStatement{
			BaseNode: cfg.BaseNode,
			Kind:     ast.AssignDirect,
			LHS:      cfg.Reference,
			RHS:      &ast.Identifier{BaseNode: cfg.BaseNode, Name: cfg.HardwareAddress},
		}
		if unit.GlobalConstructor == nil {
			unit.GlobalConstructor = &ast.Implementation{Owner: unit.Name, Body: ast.ConstructorBody{Kind: ast.BodyInternal}}
		}
		if structured {
			unit.GlobalConstructor.Body.Stmts = append(unit.GlobalConstructor.Body.Stmts, stmt)
		} else {
			unit.GlobalConstructor.Body.Stmts = append([]ast.Statement{stmt}, unit.GlobalConstructor.Body.Stmts...)
		}
	}
}
