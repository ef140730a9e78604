package lowering

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/oracle"
)

// VTableField is one function-pointer slot in a synthesized vtable record:
// Name is "__body" or a visible method's name, Owner is the type currently
// supplying that slot's implementation — the overrider if the method was
// overridden, else the ancestor that declares it (spec §4.4).
type VTableField struct {
	Name  string
	Owner string
}

// VTableGenerator synthesizes, for a stateful type, the vtable record type,
// instance, field constructors, and vtable constructor described in spec
// §4.4. Grounded on the Initializer Synthesizer's own struct-field ctor
// pattern (`Inner__ctor(self.inner)`), reapplied here one level up: each
// vtable slot gets its own tiny ctor, and the vtable ctor calls each in
// slot order, exactly as a struct ctor calls each field's type ctor.
type VTableGenerator struct {
	Oracle  oracle.Oracle
	Builder *ast.Builder
}

// NewVTableGenerator constructs a VTableGenerator.
func NewVTableGenerator(o oracle.Oracle, b *ast.Builder) *VTableGenerator {
	return &VTableGenerator{Oracle: o, Builder: b}
}

// VTableTypeName, VTableInstanceName, VTableCtorName, and VTableFieldCtorName
// implement spec §6's bit-exact synthesized symbol names for vtables.
func VTableTypeName(typeName string) string     { return "__vtable_" + typeName }
func VTableInstanceName(typeName string) string { return "__vtable_" + typeName + "_instance" }
func VTableCtorName(typeName string) string     { return "__vtable_" + typeName + "__ctor" }

// VTableFieldCtorName names the per-slot helper ctor. The `__body` slot
// collapses the usual "_" separator with its own leading "__" into
// "___body", matching the special case spec §6 calls out explicitly
// (`____vtable_<TypeName>___body__ctor`); every other field follows the
// general `____vtable_<TypeName>_<FieldName>__ctor` pattern.
func VTableFieldCtorName(typeName, field string) string {
	return "____vtable_" + typeName + "_" + field + "__ctor"
}

// Fields computes T's vtable field list: `__body` first, then one entry
// per method visible in T (own or inherited), in root-to-T declaration
// order. A method's Owner is whichever ancestor (possibly T itself) is
// the most-derived declarer, so overriding a method updates its Owner in
// place without moving its slot (spec §4.4: "overridden methods point to
// the overrider, non-overridden methods point to the ancestor's
// function").
func (g *VTableGenerator) Fields(p *ast.POU) []VTableField {
	chain := g.ancestorChain(p)

	var order []string
	owner := make(map[string]string)
	for _, anc := range chain {
		for _, m := range anc.Methods {
			if _, seen := owner[m.Name]; !seen {
				order = append(order, m.Name)
			}
			owner[m.Name] = anc.Name
		}
	}

	fields := make([]VTableField, 0, len(order)+1)
	fields = append(fields, VTableField{Name: "__body", Owner: p.Name})
	for _, name := range order {
		fields = append(fields, VTableField{Name: name, Owner: owner[name]})
	}
	return fields
}

// ancestorChain returns p's ancestors from the root down to p itself,
// stopping at the first unresolvable or already-visited link (cycle-safe,
// mirroring InheritanceRewriter.ancestorChain).
func (g *VTableGenerator) ancestorChain(p *ast.POU) []*ast.POU {
	var rev []*ast.POU
	cur := p
	seen := make(map[string]bool)
	for cur != nil && !seen[cur.Name] {
		rev = append(rev, cur)
		seen[cur.Name] = true

		parentName, ok := g.Oracle.Parent(cur.Name)
		if !ok {
			break
		}
		parent, ok := g.Oracle.FindPOU(parentName)
		if !ok {
			break
		}
		cur = parent
	}

	chain := make([]*ast.POU, len(rev))
	for i, v := range rev {
		chain[len(rev)-1-i] = v
	}
	return chain
}

// TypeDecl builds the `__vtable_T` record type, one field per entry in
// fields, each typed as a pointer to its owner's implementation.
func (g *VTableGenerator) TypeDecl(p *ast.POU, fields []VTableField) *ast.TypeDecl {
	st := &ast.StructType{}
	for _, f := range fields {
		st.Fields = append(st.Fields, &ast.Variable{
			Name:       f.Name,
			InlineType: &ast.FunctionPointerType{POU: f.Owner},
		})
	}
	return &ast.TypeDecl{Name: VTableTypeName(p.Name), Type: st}
}

// FieldCtor builds the helper POU that stores one slot's function address
// into the instance pointer passed as its implicit self: `self := ADR(X)`
// where X is the owning type's body (for `__body`) or its qualified method
// (spec §6 "Vtable field ctors").
func (g *VTableGenerator) FieldCtor(p *ast.POU, f VTableField) *ast.POU {
	pos := p.Pos()
	self := g.Builder.SelfBase(pos)

	target := f.Owner + "." + f.Name
	if f.Name == "__body" {
		target = f.Owner
	}

	stmt := g.Builder.Assign(pos, self, g.Builder.AdrOf(pos, g.Builder.Ident(pos, target)))
	return &ast.POU{
		Name: VTableFieldCtorName(p.Name, f.Name),
		Kind: ast.POUFunction,
		Body: []ast.Statement{stmt},
	}
}

// Ctor builds the `__vtable_T__ctor` constructor: one call per field ctor,
// in slot order, each passed the matching field of self.
func (g *VTableGenerator) Ctor(p *ast.POU, fields []VTableField) *ast.Implementation {
	pos := p.Pos()
	self := g.Builder.SelfBase(pos)

	stmts := make([]ast.Statement, 0, len(fields))
	for _, f := range fields {
		lhs := g.Builder.Member(pos, self, f.Name)
		call := g.Builder.Call(pos, g.Builder.Ident(pos, VTableFieldCtorName(p.Name, f.Name)), lhs)
		stmts = append(stmts, call)
	}
	return &ast.Implementation{
		Owner: VTableTypeName(p.Name),
		Body:  ast.ConstructorBody{Kind: ast.BodyInternal, Stmts: stmts},
	}
}

// Instance builds the `__vtable_T_instance` global variable declaration
// (spec §4.4 "a vtable instance `__vtable_T_instance`").
func (g *VTableGenerator) Instance(p *ast.POU) *ast.Variable {
	return &ast.Variable{
		Name:    VTableInstanceName(p.Name),
		TypeRef: &ast.TypeReference{Name: VTableTypeName(p.Name)},
	}
}

// Synthesize runs the full §4.4 pipeline for one stateful FB/Class POU,
// appending its vtable type, instance global, field ctors, and vtable
// ctor into unit. Every stateful FB/Class gets a vtable even with no
// user-declared methods, since `__body` is always present and spec §8's
// invariant ("the constructor stores @__vtable_P_instance... before any
// user code runs") is unconditional on FB/Class, not on method count.
func (g *VTableGenerator) Synthesize(unit *ast.CompilationUnit, p *ast.POU) {
	if !p.IsFunctionBlock() && !p.IsClass() {
		return
	}

	fields := g.Fields(p)

	vtType := g.TypeDecl(p, fields)
	vtType.Constructor = g.Ctor(p, fields)
	unit.DataTypes = append(unit.DataTypes, vtType)

	for _, f := range fields {
		unit.POUs = append(unit.POUs, g.FieldCtor(p, f))
	}

	unit.Globals = append(unit.Globals, &ast.VarBlock{
		Kind: ast.VarGlobal,
		Vars: []*ast.Variable{g.Instance(p)},
	})
}
