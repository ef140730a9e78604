package codegen

import (
	"github.com/llir/llvm/ir/types"

	"github.com/go-stc/stc/internal/ast"
)

// selfLayout is a stateful POU's instance layout: the vtable pointer (if
// one was synthesized for it), the inherited-parent sub-object (if any),
// and its own declared variables, in that order — "extending base layouts
// by single inheritance so that T's vtable pointer shadows base's in the
// first slot" (spec §4.4).
type selfLayout struct {
	named      *types.NamedType
	typ        *types.StructType
	fieldIndex map[string]int
	fieldType  []types.Type
	// fieldTypeName carries the declared named-type of each field (the
	// parent POU name for "__<parent>", or a field's own TypeRef name),
	// "" where the field has no further-chainable named type — this is
	// what lets Member-chain address resolution keep walking past one
	// hop (spec §4.2's Reference Expression chains).
	fieldTypeName []string
}

// selfLayout builds (and caches) pouName's instance struct. Safe against
// re-entrant recursion through an inheritance chain because the map entry
// is written before recursing into VarBlocks, the same cycle-avoidance
// shape internal/types.Realizer.Named uses for self-referential structs.
func (g *Generator) selfLayout(pouName string) *selfLayout {
	if l, ok := g.selfLayouts[pouName]; ok {
		return l
	}
	p, ok := g.Oracle.FindPOU(pouName)
	if !ok {
		return nil
	}

	l := &selfLayout{fieldIndex: map[string]int{}}
	g.selfLayouts[pouName] = l

	var fieldTypes []types.Type
	var fieldTypeNames []string
	idx := 0

	if _, hasVTable := g.typeDecls[vtableTypeName(pouName)]; hasVTable {
		fieldTypes = append(fieldTypes, types.NewPointer(g.realizer.Named(vtableTypeName(pouName))))
		fieldTypeNames = append(fieldTypeNames, "")
		l.fieldIndex["__vtable"] = idx
		idx++
	}
	if parent, ok := g.Oracle.Parent(pouName); ok {
		parentLayout := g.selfLayout(parent)
		fieldTypes = append(fieldTypes, parentLayout.named)
		fieldTypeNames = append(fieldTypeNames, parent)
		l.fieldIndex["__"+parent] = idx
		idx++
	}
	for _, block := range p.VarBlocks {
		if block.Kind == ast.VarGlobal || block.Kind == ast.VarExternal || block.Kind == ast.VarReturn {
			continue
		}
		for _, v := range block.Vars {
			fieldTypes = append(fieldTypes, g.variableType(v))
			name := ""
			if v.TypeRef != nil {
				name = v.TypeRef.Name
			}
			fieldTypeNames = append(fieldTypeNames, name)
			l.fieldIndex[v.Name] = idx
			idx++
		}
	}

	l.typ = types.NewStruct(fieldTypes...)
	l.fieldType = fieldTypes
	l.fieldTypeName = fieldTypeNames
	l.named = g.Module.NewTypeDef(pouName, l.typ)
	return l
}

func vtableTypeName(pouName string) string { return "__vtable_" + pouName }
