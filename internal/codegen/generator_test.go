package codegen

import (
	"strings"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/errors"
	"github.com/go-stc/stc/internal/oracle"
)

func newGen(o oracle.Oracle) *Generator {
	return NewGenerator(ir.NewModule(), o, &errors.Bag{}, Config{BoundsChecks: true})
}

func dint() *ast.TypeReference { return &ast.TypeReference{Name: "DINT"} }

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

// A function FB_ADD(a, b : DINT) : DINT; FB_ADD := a + b; END_FUNCTION
func addFunction() *ast.POU {
	return &ast.POU{
		Name:       "FB_ADD",
		Kind:       ast.POUFunction,
		ReturnType: dint(),
		VarBlocks: []*ast.VarBlock{
			{Kind: ast.VarInput, Vars: []*ast.Variable{
				{Name: "a", TypeRef: dint()},
				{Name: "b", TypeRef: dint()},
			}},
			{Kind: ast.VarReturn, Vars: []*ast.Variable{
				{Name: "FB_ADD", TypeRef: dint()},
			}},
		},
		Body: []ast.Statement{
			&ast.AssignStatement{
				Kind: ast.AssignDirect,
				LHS:  ident("FB_ADD"),
				RHS: &ast.BinaryExpr{
					Op:    ast.OpAdd,
					Left:  ident("a"),
					Right: ident("b"),
				},
			},
		},
	}
}

func TestEmitPOU_FunctionReturnsSumOfInputs(t *testing.T) {
	o := oracle.NewStatic()
	g := newGen(o)
	fn := addFunction()
	o.AddPOU(fn)

	g.declarePOU(fn)
	g.emitPOU(fn)

	out := g.Module.String()
	if !strings.Contains(out, "define i32 @FB_ADD(i32 %a, i32 %b)") {
		t.Fatalf("expected an i32 FB_ADD(i32,i32) definition, got:\n%s", out)
	}
	if !strings.Contains(out, "add i32") {
		t.Fatalf("expected an add instruction, got:\n%s", out)
	}
}

// A stateful FUNCTION_BLOCK Counter with a parent and a synthesized
// vtable TypeDecl, to exercise selfLayout's vtable-ptr + parent-sub-object
// + own-fields ordering.
func TestSelfLayout_OrdersVTablePtrThenParentThenOwnFields(t *testing.T) {
	o := oracle.NewStatic()
	g := newGen(o)

	base := &ast.POU{
		Name: "Base",
		Kind: ast.POUFunctionBlock,
		VarBlocks: []*ast.VarBlock{
			{Kind: ast.VarLocal, Vars: []*ast.Variable{{Name: "id", TypeRef: dint()}}},
		},
	}
	child := &ast.POU{
		Name: "Child",
		Kind: ast.POUFunctionBlock,
		VarBlocks: []*ast.VarBlock{
			{Kind: ast.VarLocal, Vars: []*ast.Variable{{Name: "count", TypeRef: dint()}}},
		},
	}
	o.AddPOU(base)
	o.AddPOU(child)
	o.SetParent("Child", "Base")

	g.typeDecls["__vtable_Child"] = &ast.TypeDecl{Name: "__vtable_Child", Type: &ast.StructType{}}

	l := g.selfLayout("Child")
	if l == nil {
		t.Fatalf("selfLayout(Child) returned nil")
	}

	wantOrder := []string{"__vtable", "__Base", "count"}
	for i, name := range wantOrder {
		if l.fieldIndex[name] != i {
			t.Fatalf("field %q at index %d, want %d (fieldIndex=%v)", name, l.fieldIndex[name], i, l.fieldIndex)
		}
	}
	if len(l.typ.Fields) != 3 {
		t.Fatalf("Child layout has %d fields, want 3", len(l.typ.Fields))
	}
	if l.fieldTypeName[l.fieldIndex["__Base"]] != "Base" {
		t.Fatalf("__Base field should chain to type name \"Base\", got %q", l.fieldTypeName[l.fieldIndex["__Base"]])
	}

	baseLayout := g.selfLayout("Base")
	if len(baseLayout.typ.Fields) != 1 {
		t.Fatalf("Base layout has %d fields, want 1 (no vtable, no parent)", len(baseLayout.typ.Fields))
	}
}

// FOR i := 1 TO 3 DO IF i = 2 THEN CONTINUE; END_IF; x := x + i; END_FOR
// exercises the dedicated for.incr block: CONTINUE must branch there, not
// straight back to for.cond, so the loop variable still advances.
func TestEmitFor_ContinueBranchesToIncrementBlock(t *testing.T) {
	o := oracle.NewStatic()
	g := newGen(o)

	fn := &ast.POU{
		Name: "PRG_LOOP",
		Kind: ast.POUProgram,
		VarBlocks: []*ast.VarBlock{
			{Kind: ast.VarLocal, Vars: []*ast.Variable{
				{Name: "i", TypeRef: dint()},
				{Name: "x", TypeRef: dint()},
			}},
		},
		Body: []ast.Statement{
			&ast.ForStatement{
				Variable: ident("i"),
				From:     &ast.IntegerLiteral{Value: 1},
				To:       &ast.IntegerLiteral{Value: 3},
				Body: []ast.Statement{
					&ast.IfStatement{
						Branches: []ast.IfBranch{{
							Condition: &ast.BinaryExpr{Op: ast.OpEQ, Left: ident("i"), Right: &ast.IntegerLiteral{Value: 2}},
							Body:      []ast.Statement{&ast.ContinueStatement{}},
						}},
					},
					&ast.AssignStatement{
						Kind: ast.AssignDirect,
						LHS:  ident("x"),
						RHS:  &ast.BinaryExpr{Op: ast.OpAdd, Left: ident("x"), Right: ident("i")},
					},
				},
			},
		},
	}
	o.AddPOU(fn)

	g.declarePOU(fn)
	g.emitPOU(fn)

	out := g.Module.String()
	if strings.Count(out, "for.incr") < 2 {
		t.Fatalf("expected the CONTINUE branch and the body fallthrough to both target for.incr, got:\n%s", out)
	}
	if !strings.Contains(out, "for.cond") || !strings.Contains(out, "for.body") || !strings.Contains(out, "for.end") {
		t.Fatalf("expected the standard for.cond/for.body/for.end blocks, got:\n%s", out)
	}
}

// emitAssign consults funcContext.subrangeBounds directly (populated by
// registerVarMeta ahead of any body statement), so this drives it
// straight rather than through a full POU declaration — a bounded
// subrange's assignment must emit the bounds.trap/bounds.ok pair.
func TestEmitAssign_SubrangeAssignmentEmitsBoundsTrap(t *testing.T) {
	o := oracle.NewStatic()
	g := newGen(o)

	fn := g.Module.NewFunc("PRG_RANGE", types.Void)
	entry := fn.NewBlock("entry")
	alloca := entry.NewAlloca(types.I32)
	alloca.SetName("pct")

	g.cur = &funcContext{
		fn:             fn,
		block:          entry,
		locals:         map[string]value.Value{"pct": alloca},
		declTypeName:   map[string]string{},
		autoDeref:      map[string]bool{},
		subrangeBounds: map[string]*ast.SubrangeBounds{"pct": {Lo: 0, Hi: 100}},
	}
	g.emitAssign(&ast.AssignStatement{
		Kind: ast.AssignDirect,
		LHS:  ident("pct"),
		RHS:  &ast.IntegerLiteral{Value: 50},
	})
	if g.cur.block.Term == nil {
		g.cur.block.NewRet(nil)
	}

	out := g.Module.String()
	if !strings.Contains(out, "bounds.trap") || !strings.Contains(out, "bounds.ok") {
		t.Fatalf("expected a bounds.trap/bounds.ok pair, got:\n%s", out)
	}
	if !strings.Contains(out, "call void @llvm.trap()") {
		t.Fatalf("expected the trap block to call llvm.trap, got:\n%s", out)
	}
	if !strings.Contains(out, "unreachable") {
		t.Fatalf("expected the trap block to end unreachable, got:\n%s", out)
	}
}

// CALL FB_SET(out := x); where FB_SET's sole parameter is VAR_OUTPUT DINT
// and the call site passes a bare local: the scalar output argument must
// be auto-addressed, not loaded by value.
func TestEmitCall_AutoAddressesScalarOutputParameter(t *testing.T) {
	o := oracle.NewStatic()
	g := newGen(o)

	setter := &ast.POU{
		Name: "FB_SET",
		Kind: ast.POUFunction,
		VarBlocks: []*ast.VarBlock{
			{Kind: ast.VarOutput, Vars: []*ast.Variable{{Name: "out", TypeRef: dint()}}},
		},
		Body: []ast.Statement{},
	}
	caller := &ast.POU{
		Name: "PRG_CALLER",
		Kind: ast.POUProgram,
		VarBlocks: []*ast.VarBlock{
			{Kind: ast.VarLocal, Vars: []*ast.Variable{{Name: "x", TypeRef: dint()}}},
		},
		Body: []ast.Statement{
			&ast.CallStatement{Call: &ast.CallExpr{
				Callee: ident("FB_SET"),
				Args:   []ast.Expression{ident("x")},
			}},
		},
	}
	o.AddPOU(setter)
	o.AddPOU(caller)

	g.declarePOUSignatures([]*ast.POU{setter, caller})
	g.emitPOU(setter)
	g.emitPOU(caller)

	out := g.Module.String()
	if !strings.Contains(out, "call void @FB_SET(i32* %x") {
		t.Fatalf("expected the call to pass %%x's address, not its loaded value, got:\n%s", out)
	}
}
