package lowering

import "github.com/go-stc/stc/internal/ast"

// Finalize implements spec §4.3 "After traversal": appends every
// non-empty constructor as a new POU+Implementation, splices each
// stack-constructor's statements at position 0 of its POU's body, and
// synthesizes the unit global constructor when applicable.
//
// generateExternals mirrors the `generate_externals` configuration switch
// (spec §6 "Configuration switches"). It has no observable effect here:
// the unit global constructor of an Internal- or External-linkage unit is
// named `__unit_<name>__ctor` whichever value is passed, and every
// synthesized constructor keeps its body; none is reduced to a
// declaration-only extern.
func (s *Synthesizer) Finalize(unit *ast.CompilationUnit, generateExternals bool) {
	linkage := unit.Linkage
	if linkage == ast.LinkageExternal && generateExternals {
		linkage = ast.LinkageInternal
	}

	for owner, impl := range s.typeCtors {
		if len(impl.Body.Stmts) == 0 {
			continue
		}
		if pou, ok := s.Oracle.FindPOU(owner); ok {
			unit.POUs = append(unit.POUs, ctorPOU(pou.Name, impl))
			continue
		}
		for _, t := range unit.DataTypes {
			if t.Name == owner {
				t.Constructor = impl
				break
			}
		}
	}

	for owner, impl := range s.stackCtors {
		if len(impl.Body.Stmts) == 0 {
			continue
		}
		for _, p := range unit.POUs {
			if p.Name == owner {
				p.StackConstructor = impl
				p.Body = append(append([]ast.Statement{}, impl.Body.Stmts...), p.Body...)
				break
			}
		}
	}

	if unit.GlobalConstructor != nil && len(unit.GlobalConstructor.Body.Stmts) > 0 {
		if linkage == ast.LinkageInternal || linkage == ast.LinkageExternal {
			unit.GlobalConstructor.Owner = "__unit_" + unit.Name + "__ctor"
		}
	}
}

// ctorPOU wraps a synthesized constructor's statements as a standalone
// callable unit, named "<TypeName>__ctor" (spec §6 "Synthesized Symbol
// Names").
func ctorPOU(typeName string, impl *ast.Implementation) *ast.POU {
	return &ast.POU{
		Name: typeName + "__ctor",
		Kind: ast.POUFunction,
		Body: impl.Body.Stmts,
	}
}
