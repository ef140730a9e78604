package lowering

import (
	"testing"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/ids"
	"github.com/go-stc/stc/internal/oracle"
)

func newSynth() (*Synthesizer, *oracle.Static) {
	o := oracle.NewStatic()
	b := ast.NewBuilder(ids.New())
	return NewSynthesizer(o, b), o
}

func intLit(v int64) *ast.IntegerLiteral   { return &ast.IntegerLiteral{Value: v} }
func realLit(v float64) *ast.RealLiteral   { return &ast.RealLiteral{Value: v} }
func boolLit(v bool) *ast.BoolLiteral      { return &ast.BoolLiteral{Value: v} }
func typeRef(name string) *ast.TypeReference { return &ast.TypeReference{Name: name} }

func assignStmts(stmts []ast.Statement) []*ast.AssignStatement {
	var out []*ast.AssignStatement
	for _, s := range stmts {
		if a, ok := s.(*ast.AssignStatement); ok {
			out = append(out, a)
		}
	}
	return out
}

// Scenario 1: simple struct with scalar defaults (spec §8).
func TestSynthesizer_Scenario1_SimpleStructDefaults(t *testing.T) {
	syn, _ := newSynth()

	s := &ast.TypeDecl{Name: "S", Type: &ast.StructType{Fields: []*ast.Variable{
		{Name: "a", TypeRef: typeRef("INT"), Initializer: intLit(5)},
		{Name: "b", TypeRef: typeRef("REAL"), Initializer: realLit(3.14)},
		{Name: "c", TypeRef: typeRef("BOOL"), Initializer: boolLit(true)},
	}}}

	unit := &ast.CompilationUnit{Name: "u", DataTypes: []*ast.TypeDecl{s}}
	syn.PreRegister(unit)
	syn.SynthesizeStructType(s)

	stmts := assignStmts(syn.typeCtors["S"].Body.Stmts)
	if len(stmts) != 3 {
		t.Fatalf("expected 3 assign statements, got %d", len(stmts))
	}
	wantFields := []string{"a", "b", "c"}
	for i, st := range stmts {
		lhs := st.LHS.(*ast.RefExpr)
		if lhs.Name != wantFields[i] {
			t.Fatalf("field %d = %s, want %s", i, lhs.Name, wantFields[i])
		}
		self := lhs.Base.(*ast.Identifier)
		if self.Name != "self" {
			t.Fatalf("expected self-relative lhs, got base %s", self.Name)
		}
	}
}

// Scenario 2: nested struct literal (spec §8).
func TestSynthesizer_Scenario2_NestedStructLiteral(t *testing.T) {
	syn, _ := newSynth()

	inner := &ast.TypeDecl{Name: "Inner", Type: &ast.StructType{Fields: []*ast.Variable{
		{Name: "x", TypeRef: typeRef("INT"), Initializer: intLit(10)},
		{Name: "y", TypeRef: typeRef("INT"), Initializer: intLit(20)},
	}}}
	outer := &ast.TypeDecl{Name: "Outer", Type: &ast.StructType{Fields: []*ast.Variable{
		{Name: "inner", TypeRef: typeRef("Inner"), Initializer: &ast.StructLiteral{
			Fields: []ast.FieldInit{{Field: "y", Value: intLit(3)}},
		}},
	}}}

	unit := &ast.CompilationUnit{Name: "u", DataTypes: []*ast.TypeDecl{inner, outer}}
	syn.PreRegister(unit)
	syn.SynthesizeStructType(inner)
	syn.SynthesizeStructType(outer)

	stmts := syn.typeCtors["Outer"].Body.Stmts
	if len(stmts) != 2 {
		t.Fatalf("expected ctor-call + 1 field assign, got %d stmts", len(stmts))
	}
	call, ok := stmts[0].(*ast.CallStatement)
	if !ok {
		t.Fatalf("expected first stmt to be the inner ctor call, got %T", stmts[0])
	}
	if callee := call.Call.Callee.(*ast.Identifier); callee.Name != "Inner__ctor" {
		t.Fatalf("callee = %s, want Inner__ctor", callee.Name)
	}
	assign := stmts[1].(*ast.AssignStatement)
	lhs := assign.LHS.(*ast.RefExpr)
	if lhs.Name != "y" {
		t.Fatalf("expected field y assigned, got %s", lhs.Name)
	}
	innerMember := lhs.Base.(*ast.RefExpr)
	if innerMember.Name != "inner" {
		t.Fatalf("expected self.inner.y, got base segment %s", innerMember.Name)
	}
}

// Scenario 3: global program (spec §8).
func TestSynthesizer_Scenario3_GlobalProgram(t *testing.T) {
	syn, o := newSynth()
	p := &ast.POU{Name: "P", Kind: ast.POUProgram}
	o.AddPOU(p)

	unit := &ast.CompilationUnit{Name: "u", POUs: []*ast.POU{p}}
	syn.PreRegister(unit)
	syn.SynthesizePOU(unit, p)

	if unit.GlobalConstructor == nil || len(unit.GlobalConstructor.Body.Stmts) != 1 {
		t.Fatalf("expected exactly one statement in the global constructor")
	}
	call := unit.GlobalConstructor.Body.Stmts[0].(*ast.CallStatement)
	callee := call.Call.Callee.(*ast.Identifier)
	if callee.Name != "P__ctor" {
		t.Fatalf("callee = %s, want P__ctor", callee.Name)
	}
	arg := call.Call.Args[0].(*ast.Identifier)
	if arg.Name != "P" {
		t.Fatalf("arg = %s, want P", arg.Name)
	}
}

// Scenario 4: child with FB_INIT (spec §8).
func TestSynthesizer_Scenario4_ChildWithFBInit(t *testing.T) {
	syn, o := newSynth()
	base := "baseFb"
	child := &ast.POU{
		Name: "child", Kind: ast.POUFunctionBlock, Base: &base,
		Methods: []*ast.POU{{Name: "FB_INIT", Kind: ast.POUMethod}},
	}
	o.AddPOU(child)
	o.SetParent("child", "baseFb")

	unit := &ast.CompilationUnit{Name: "u", POUs: []*ast.POU{child}}
	syn.PreRegister(unit)
	syn.SynthesizePOU(unit, child)

	stmts := syn.typeCtors["child"].Body.Stmts
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}

	baseCall := stmts[0].(*ast.CallStatement)
	if callee := baseCall.Call.Callee.(*ast.Identifier); callee.Name != "baseFb__ctor" {
		t.Fatalf("stmt0 callee = %s, want baseFb__ctor", callee.Name)
	}
	arg := baseCall.Call.Args[0].(*ast.RefExpr)
	if arg.Name != "__baseFb" {
		t.Fatalf("expected self.__baseFb argument, got %s", arg.Name)
	}

	vtableStore := stmts[1].(*ast.AssignStatement)
	lhs := vtableStore.LHS.(*ast.RefExpr)
	if lhs.Name != "__vtable" {
		t.Fatalf("stmt1 should store the vtable pointer, got lhs %s", lhs.Name)
	}
	rhs := vtableStore.RHS.(*ast.AdrOfExpr)
	target := rhs.Target.(*ast.Identifier)
	if target.Name != "__vtable_child_instance" {
		t.Fatalf("expected ADR(__vtable_child_instance), got %s", target.Name)
	}

	fbInitCall := stmts[2].(*ast.CallStatement)
	callee := fbInitCall.Call.Callee.(*ast.RefExpr)
	if callee.Name != "FB_INIT" {
		t.Fatalf("stmt2 should call FB_INIT, got %s", callee.Name)
	}
}

// Scenario 6: reference qualification inside a stateful POU (spec §8).
func TestSynthesizer_Scenario6_ReferenceQualification(t *testing.T) {
	syn, o := newSynth()
	o.AddMember("foo", "i")
	o.AddMember("foo", "pi")

	foo := &ast.POU{
		Name: "foo", Kind: ast.POUFunctionBlock,
		VarBlocks: []*ast.VarBlock{{
			Kind: ast.VarLocal,
			Vars: []*ast.Variable{
				{Name: "i", TypeRef: typeRef("INT")},
				{Name: "pi", TypeRef: typeRef("PT_INT"), Initializer: &ast.RefOfExpr{Target: &ast.Identifier{Name: "i"}}},
			},
		}},
	}
	o.AddPOU(foo)

	unit := &ast.CompilationUnit{Name: "u", POUs: []*ast.POU{foo}}
	syn.PreRegister(unit)
	syn.SynthesizePOU(unit, foo)

	stmts := syn.typeCtors["foo"].Body.Stmts
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements (pi's initializer, then the FB's vtable store), got %d", len(stmts))
	}
	assign := stmts[0].(*ast.AssignStatement)
	if assign.Kind != ast.AssignDirect {
		t.Fatalf("REF_TO field initialized with REF(x) must be DirectAssign, not RefAssign")
	}
	lhs := assign.LHS.(*ast.RefExpr)
	if lhs.Name != "pi" {
		t.Fatalf("lhs = %s, want pi", lhs.Name)
	}
	rhs := assign.RHS.(*ast.RefOfExpr)
	qualifiedI := rhs.Target.(*ast.RefExpr)
	if qualifiedI.Name != "i" {
		t.Fatalf("expected REF(self.i), got REF(%s)", qualifiedI.Name)
	}
	selfBase := qualifiedI.Base.(*ast.Identifier)
	if selfBase.Name != "self" {
		t.Fatalf("expected self as the qualified base")
	}
}

func TestSynthesizer_Finalize_AppendsCtorPOUAndSplicesStack(t *testing.T) {
	syn, o := newSynth()
	fn := &ast.POU{Name: "compute", Kind: ast.POUFunction, Body: []ast.Statement{&ast.ReturnStatement{}}}
	o.AddPOU(fn)

	unit := &ast.CompilationUnit{Name: "u", Linkage: ast.LinkageInternal, POUs: []*ast.POU{fn}}
	syn.PreRegister(unit)
	// Manually seed a stack-constructor statement as if synthesized.
	syn.stackCtors["compute"].Body.Stmts = []ast.Statement{&ast.AssignStatement{Kind: ast.AssignDirect}}

	syn.Finalize(unit, false)

	if len(fn.Body) != 2 {
		t.Fatalf("expected stack-ctor statement spliced at position 0, got %d statements", len(fn.Body))
	}
	if _, ok := fn.Body[0].(*ast.AssignStatement); !ok {
		t.Fatalf("expected the spliced statement first, got %T", fn.Body[0])
	}
	if _, ok := fn.Body[1].(*ast.ReturnStatement); !ok {
		t.Fatalf("expected the original body statement preserved after splice")
	}
}
