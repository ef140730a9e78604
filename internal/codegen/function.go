package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/metadata"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/go-stc/stc/internal/ast"
)

// loopFrame names the two blocks EXIT/CONTINUE jump to inside the
// innermost enclosing loop (spec §4.6 "Case/If/While/For/Repeat").
type loopFrame struct {
	continueTarget *ir.Block
	breakTarget    *ir.Block
}

// funcContext is the per-function emission cursor: the current insertion
// block, the local variable storage map (name -> alloca pointer, the same
// alloca-per-variable shape the teacher reference uses throughout), and
// the implicit self pointer for stateful POUs.
type funcContext struct {
	fn     *ir.Func
	block  *ir.Block
	locals map[string]value.Value
	self   value.Value // nil for stateless POUs
	pou    *ast.POU
	// selfType names the layout self points at: the POU's own name for a
	// top-level POU, or the owning FB/Class's name for a method (whose own
	// p.Name would be wrong for Member-chain/SUPER resolution).
	selfType string
	loops    []loopFrame

	// declTypeName carries the named-type of each local whose declaration
	// names one (VAR x : T), so Member-chain address resolution can keep
	// walking past a bare Identifier (mirrors Generator.globalTypeName).
	declTypeName map[string]string
	// autoDeref marks locals/params declared REFERENCE TO / AT-aliased /
	// VAR_IN_OUT, whose plain `:=` assigns through the pointer rather than
	// rebinding it (spec §4.6 "auto-dereferencing semantics"). Tracked only
	// for bare-Identifier targets; a deeper member chain ending in such a
	// variable is a known simplification left for a future pass.
	autoDeref map[string]bool
	// subrangeBounds marks locals/params declared as a bounded subrange,
	// for the optional bounds-check trap on assignment (spec §4.6
	// "Arithmetic on subranges... an optional bounds-check trap").
	subrangeBounds map[string]*ast.SubrangeBounds
}

func (fc *funcContext) pushLoop(cont, brk *ir.Block) { fc.loops = append(fc.loops, loopFrame{cont, brk}) }
func (fc *funcContext) popLoop()                     { fc.loops = fc.loops[:len(fc.loops)-1] }
func (fc *funcContext) currentLoop() (loopFrame, bool) {
	if len(fc.loops) == 0 {
		return loopFrame{}, false
	}
	return fc.loops[len(fc.loops)-1], true
}

// emitPOU emits one function body, given its signature was already
// declared by declarePOU. VAR/VAR_TEMP/return variables and scalar
// VAR_INPUT parameters are materialized as allocas, never kept as SSA
// values directly in the variable map; VAR_OUTPUT/VAR_IN_OUT and
// aggregate VAR_INPUT parameters already arrive as pointers and are used
// directly as the variable's storage. Either way later assignment/
// address-of lowering has a uniform pointer to work from.
func (g *Generator) emitPOU(p *ast.POU) {
	g.emitFuncBody(g.declarePOU(p), p, p.IsStateful(), p.Name)
}

// emitMethod emits a method's body under owner's qualified self type.
// Always carries a self param regardless of the method's own (stateless)
// POUKind, mirroring declareMethod.
func (g *Generator) emitMethod(owner string, method *ast.POU) {
	g.emitFuncBody(g.declareMethod(owner, method), method, true, owner)
}

func (g *Generator) emitFuncBody(fn *ir.Func, p *ast.POU, hasSelf bool, selfType string) {
	if g.DebugInfo != nil {
		var retType metadata.Field
		if p.ReturnType != nil {
			retType = g.DebugInfo.Named(p.ReturnType.Name, g.typeDecls)
		}
		g.DebugInfo.Subprogram(fn.Name(), fn, int64(p.Pos().Line), nil, retType)
	}

	entry := fn.NewBlock("entry")

	fc := &funcContext{
		fn:             fn,
		block:          entry,
		locals:         map[string]value.Value{},
		declTypeName:   map[string]string{},
		autoDeref:      map[string]bool{},
		subrangeBounds: map[string]*ast.SubrangeBounds{},
		pou:            p,
		selfType:       selfType,
	}
	g.cur = fc

	paramIdx := 0
	if hasSelf {
		fc.self = fn.Params[0]
		paramIdx = 1
	}

	for _, block := range p.VarBlocks {
		switch block.Kind {
		case ast.VarInput, ast.VarOutput, ast.VarInOut:
			for _, v := range block.Vars {
				param := fn.Params[paramIdx]
				paramIdx++
				g.registerVarMeta(fc, v, block.Kind)
				if isAggregate(g.variableType(v)) || block.Kind != ast.VarInput {
					// Already a pointer: keep it directly as the variable's
					// storage instead of allocating a second indirection.
					fc.locals[v.Name] = param
					continue
				}
				alloca := entry.NewAlloca(param.Type())
				alloca.SetName(v.Name + ".addr")
				entry.NewStore(param, alloca)
				fc.locals[v.Name] = alloca
			}
		case ast.VarLocal, ast.VarTemp, ast.VarReturn:
			for _, v := range block.Vars {
				t := g.variableType(v)
				alloca := entry.NewAlloca(t)
				alloca.SetName(v.Name)
				fc.locals[v.Name] = alloca
				g.registerVarMeta(fc, v, block.Kind)
				if v.Initializer != nil {
					entry.NewStore(g.emitExpr(v.Initializer), alloca)
				} else {
					entry.NewStore(g.zeroValue(t), alloca)
				}
			}
		}
	}

	g.emitBlock(p.Body)

	if g.cur.block.Term == nil {
		g.emitImplicitReturn(p)
	}
	g.cur = nil
}

// registerVarMeta records v's named type (for Member-chain resolution) and
// whether it auto-dereferences on plain assignment: VAR_IN_OUT is always
// by-reference, and REFERENCE TO / AT-aliased variables carry their own
// AutoDeref marker on the declared PointerType (spec §4.6).
func (g *Generator) registerVarMeta(fc *funcContext, v *ast.Variable, kind ast.VarBlockKind) {
	if v.TypeRef != nil {
		fc.declTypeName[v.Name] = v.TypeRef.Name
	}
	dt := g.variableDataType(v)
	if pt, ok := dt.(*ast.PointerType); ok && pt.AutoDeref != nil {
		fc.autoDeref[v.Name] = true
	}
	if kind == ast.VarInOut {
		fc.autoDeref[v.Name] = true
	}
	if st, ok := dt.(*ast.SubrangeType); ok && st.Bounds != nil {
		fc.subrangeBounds[v.Name] = st.Bounds
	}
}

// variableDataType resolves v's full DataType, following a named TypeRef
// to its TypeDecl when present.
func (g *Generator) variableDataType(v *ast.Variable) ast.DataType {
	if v.TypeRef != nil {
		if td, ok := g.typeDecls[v.TypeRef.Name]; ok {
			return td.Type
		}
		return nil
	}
	return v.InlineType
}

func (g *Generator) emitImplicitReturn(p *ast.POU) {
	if p.ReturnType == nil {
		g.cur.block.NewRet(nil)
		return
	}
	// A FUNCTION's result lives in the implicit variable named after the
	// POU itself, if the body assigned it; otherwise fall back to the
	// type's zero value (mirrors the teacher-reference's
	// "lastValue-or-zero" fallback).
	if alloca, ok := g.cur.locals[p.Name]; ok {
		retType := g.realizer.Named(p.ReturnType.Name)
		g.cur.block.NewRet(g.cur.block.NewLoad(retType, alloca))
		return
	}
	g.cur.block.NewRet(g.zeroValue(g.realizer.Named(p.ReturnType.Name)))
}

// zeroValue returns t's default-initialized constant, recursing through
// aggregate fields (grounded on the teacher-reference's getZeroValue).
func (g *Generator) zeroValue(t types.Type) value.Value {
	switch tt := t.(type) {
	case *types.IntType:
		return zeroInt(tt)
	case *types.FloatType:
		return zeroFloat(tt)
	case *types.PointerType:
		return zeroPointer(tt)
	case *types.ArrayType:
		return zeroArray(g, tt)
	case *types.StructType:
		return zeroStruct(g, tt)
	case *types.NamedType:
		return g.zeroValue(tt.Def)
	default:
		return zeroInt(types.I8)
	}
}
