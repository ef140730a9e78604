package lowering

import (
	"testing"

	"github.com/go-stc/stc/internal/ast"
)

func TestContextStack_ResolveTable(t *testing.T) {
	fn := &ast.POU{Kind: ast.POUFunction}
	fb := &ast.POU{Kind: ast.POUFunctionBlock}

	cases := []struct {
		name  string
		setup func(c *ContextStack)
		want  EmissionTarget
	}{
		{"empty", func(c *ContextStack) {}, TargetNone},
		{"stateless function local", func(c *ContextStack) { c.PushPOU(fn, ast.VarLocal) }, TargetStackConstructor},
		{"stateless function temp", func(c *ContextStack) { c.PushPOU(fn, ast.VarTemp) }, TargetStackConstructor},
		{"stateful FB temp", func(c *ContextStack) { c.PushPOU(fb, ast.VarTemp) }, TargetStackConstructor},
		{"stateful FB inout", func(c *ContextStack) { c.PushPOU(fb, ast.VarInOut) }, TargetStackConstructor},
		{"stateful FB local", func(c *ContextStack) { c.PushPOU(fb, ast.VarLocal) }, TargetPOUConstructor},
		{"stateful FB input", func(c *ContextStack) { c.PushPOU(fb, ast.VarInput) }, TargetPOUConstructor},
		{"stateful FB output", func(c *ContextStack) { c.PushPOU(fb, ast.VarOutput) }, TargetPOUConstructor},
		{"datatype", func(c *ContextStack) { c.PushDatatype(&ast.TypeDecl{}) }, TargetDatatypeConstructor},
		{"global block", func(c *ContextStack) { c.PushGlobalBlock() }, TargetGlobalConstructor},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewContextStack()
			tc.setup(c)
			if got := c.Resolve(); got != tc.want {
				t.Fatalf("Resolve() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestContextStack_LIFO(t *testing.T) {
	c := NewContextStack()
	c.PushGlobalBlock()
	c.PushDatatype(&ast.TypeDecl{Name: "S"})
	if c.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", c.Depth())
	}
	top, ok := c.Top()
	if !ok || top.Kind != ScopeDatatype {
		t.Fatalf("expected datatype on top")
	}
	c.Pop()
	top, ok = c.Top()
	if !ok || top.Kind != ScopeGlobalBlock {
		t.Fatalf("expected global block after pop")
	}
	c.Pop()
	if c.Depth() != 0 {
		t.Fatalf("expected empty stack")
	}
}

func TestContextStack_PopEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic popping an empty stack")
		}
	}()
	NewContextStack().Pop()
}
