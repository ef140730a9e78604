package lowering

import (
	"testing"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/ids"
	"github.com/go-stc/stc/internal/oracle"
)

func newVTableGenerator() (*VTableGenerator, *oracle.Static) {
	o := oracle.NewStatic()
	b := ast.NewBuilder(ids.New())
	return NewVTableGenerator(o, b), o
}

func TestVTableGenerator_Fields_BodyAlwaysFirst(t *testing.T) {
	g, o := newVTableGenerator()
	p := &ast.POU{Name: "base", Kind: ast.POUFunctionBlock}
	o.AddPOU(p)

	fields := g.Fields(p)
	if len(fields) != 1 || fields[0].Name != "__body" || fields[0].Owner != "base" {
		t.Fatalf("expected a single __body slot owned by base, got %+v", fields)
	}
}

func TestVTableGenerator_Fields_InheritedAndOverridden(t *testing.T) {
	g, o := newVTableGenerator()

	base := &ast.POU{Name: "base", Kind: ast.POUFunctionBlock, Methods: []*ast.POU{
		{Name: "Step", Kind: ast.POUMethod},
		{Name: "Reset", Kind: ast.POUMethod},
	}}
	child := &ast.POU{Name: "child", Kind: ast.POUFunctionBlock, Methods: []*ast.POU{
		{Name: "Step", Kind: ast.POUMethod}, // overrides base.Step
	}}
	o.AddPOU(base)
	o.AddPOU(child)
	o.SetParent("child", "base")

	fields := g.Fields(child)
	if len(fields) != 3 {
		t.Fatalf("expected __body + Step + Reset, got %+v", fields)
	}
	if fields[0].Name != "__body" || fields[0].Owner != "child" {
		t.Fatalf("slot 0 should be child's own __body, got %+v", fields[0])
	}
	// Slot order follows first declaration (base declares Step before Reset);
	// overriding Step must not move its slot, only update its owner.
	if fields[1].Name != "Step" || fields[1].Owner != "child" {
		t.Fatalf("Step should be slot 1, overridden by child, got %+v", fields[1])
	}
	if fields[2].Name != "Reset" || fields[2].Owner != "base" {
		t.Fatalf("Reset should be slot 2, still owned by base, got %+v", fields[2])
	}
}

func TestVTableGenerator_Synthesize_SkipsNonStateful(t *testing.T) {
	g, o := newVTableGenerator()
	fn := &ast.POU{Name: "compute", Kind: ast.POUFunction}
	o.AddPOU(fn)

	unit := &ast.CompilationUnit{Name: "u", POUs: []*ast.POU{fn}}
	g.Synthesize(unit, fn)

	if len(unit.DataTypes) != 0 || len(unit.Globals) != 0 {
		t.Fatalf("a stateless POU must not get a vtable")
	}
}

func TestVTableGenerator_Synthesize_BuildsTypeInstanceAndFieldCtors(t *testing.T) {
	g, o := newVTableGenerator()
	fb := &ast.POU{Name: "foo", Kind: ast.POUFunctionBlock, Methods: []*ast.POU{
		{Name: "Step", Kind: ast.POUMethod},
	}}
	o.AddPOU(fb)

	unit := &ast.CompilationUnit{Name: "u", POUs: []*ast.POU{fb}}
	g.Synthesize(unit, fb)

	if len(unit.DataTypes) != 1 {
		t.Fatalf("expected exactly one synthesized vtable type, got %d", len(unit.DataTypes))
	}
	vt := unit.DataTypes[0]
	if vt.Name != "__vtable_foo" {
		t.Fatalf("vtable type name = %s, want __vtable_foo", vt.Name)
	}
	st := vt.Type.(*ast.StructType)
	if len(st.Fields) != 2 || st.Fields[0].Name != "__body" || st.Fields[1].Name != "Step" {
		t.Fatalf("expected [__body, Step] fields, got %+v", st.Fields)
	}

	if vt.Constructor == nil {
		t.Fatalf("expected a vtable constructor")
	}
	ctorStmts := vt.Constructor.Body.Stmts
	if len(ctorStmts) != 2 {
		t.Fatalf("expected one call per field, got %d", len(ctorStmts))
	}
	call0 := ctorStmts[0].(*ast.CallStatement)
	if callee := call0.Call.Callee.(*ast.Identifier); callee.Name != "____vtable_foo___body__ctor" {
		t.Fatalf("field ctor call 0 = %s, want ____vtable_foo___body__ctor", callee.Name)
	}
	call1 := ctorStmts[1].(*ast.CallStatement)
	if callee := call1.Call.Callee.(*ast.Identifier); callee.Name != "____vtable_foo_Step__ctor" {
		t.Fatalf("field ctor call 1 = %s, want ____vtable_foo_Step__ctor", callee.Name)
	}

	if len(unit.POUs) != 3 { // foo itself + 2 field ctors
		t.Fatalf("expected foo plus 2 field-ctor POUs, got %d", len(unit.POUs))
	}
	bodyCtor := unit.POUs[1]
	if bodyCtor.Name != "____vtable_foo___body__ctor" {
		t.Fatalf("field ctor POU 0 name = %s", bodyCtor.Name)
	}
	bodyAssign := bodyCtor.Body[0].(*ast.AssignStatement)
	bodyRHS := bodyAssign.RHS.(*ast.AdrOfExpr)
	bodyTarget := bodyRHS.Target.(*ast.Identifier)
	if bodyTarget.Name != "foo" {
		t.Fatalf("__body field ctor should take ADR(foo), got ADR(%s)", bodyTarget.Name)
	}

	stepCtor := unit.POUs[2]
	stepAssign := stepCtor.Body[0].(*ast.AssignStatement)
	stepRHS := stepAssign.RHS.(*ast.AdrOfExpr)
	stepTarget := stepRHS.Target.(*ast.Identifier)
	if stepTarget.Name != "foo.Step" {
		t.Fatalf("Step field ctor should take ADR(foo.Step), got ADR(%s)", stepTarget.Name)
	}

	if len(unit.Globals) != 1 {
		t.Fatalf("expected one global block for the vtable instance, got %d", len(unit.Globals))
	}
	instanceBlock := unit.Globals[0]
	if instanceBlock.Kind != ast.VarGlobal || len(instanceBlock.Vars) != 1 {
		t.Fatalf("expected a single global vtable-instance var")
	}
	inst := instanceBlock.Vars[0]
	if inst.Name != "__vtable_foo_instance" || inst.TypeRef.Name != "__vtable_foo" {
		t.Fatalf("instance = %+v, want __vtable_foo_instance : __vtable_foo", inst)
	}
}
