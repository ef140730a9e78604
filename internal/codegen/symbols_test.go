package codegen

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/oracle"
)

func TestSymbolsJSON_ReportsGlobalCtorsVTablesAndTypeConstructors(t *testing.T) {
	o := oracle.NewStatic()
	g := newGen(o)

	g.typeDecls["__vtable_Counter"] = &ast.TypeDecl{Name: "__vtable_Counter", Type: &ast.StructType{}}
	g.typeDecls["Point"] = &ast.TypeDecl{
		Name:        "Point",
		Type:        &ast.StructType{},
		Constructor: &ast.Implementation{Owner: "Point"},
	}
	g.ctorNames = []string{"__unit_smoke__ctor"}

	doc, err := g.SymbolsJSON()
	if err != nil {
		t.Fatalf("SymbolsJSON: %v", err)
	}

	if got := gjson.Get(doc, "global_ctor_priority").Int(); got != 65535 {
		t.Fatalf("global_ctor_priority = %d, want 65535", got)
	}
	if got := gjson.Get(doc, "global_ctors.0").String(); got != "__unit_smoke__ctor" {
		t.Fatalf("global_ctors.0 = %q, want __unit_smoke__ctor", got)
	}
	if got := gjson.Get(doc, "vtables.0").String(); got != "__vtable_Counter" {
		t.Fatalf("vtables.0 = %q, want __vtable_Counter", got)
	}
	if got := gjson.Get(doc, "type_constructors.0").String(); got != "Point__ctor" {
		t.Fatalf("type_constructors.0 = %q, want Point__ctor", got)
	}
}
