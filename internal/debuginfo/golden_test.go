package debuginfo

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/go-stc/stc/internal/ast"
)

// Golden-file coverage for the debug metadata a module accumulates,
// the same snapshot-the-textual-form approach as
// internal/codegen/golden_test.go (itself grounded on the teacher's
// internal/interp/fixture_test.go snapshot usage).
func TestBuilder_GoldenModuleMetadata(t *testing.T) {
	m := ir.NewModule()
	b := NewBuilder(m, "plc.st", "/src", 4)

	nodeStruct := &ast.StructType{
		Fields: []*ast.Variable{
			{Name: "id", TypeRef: dintRef()},
			{Name: "next", TypeRef: &ast.TypeReference{Name: "Node"}},
		},
	}
	decls := map[string]*ast.TypeDecl{
		"Node": {Name: "Node", Type: nodeStruct},
	}
	b.Named("Node", decls)
	b.stringType(&ast.StringType{Width: 8, Capacity: 80})

	fn := m.NewFunc("PRG_MAIN", types.Void)
	b.Subprogram("PRG_MAIN", fn, 1, nil, nil)

	snaps.MatchSnapshot(t, "module_metadata", m.String())
}
