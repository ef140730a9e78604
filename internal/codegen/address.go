package codegen

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/errors"
)

// emitAddr computes the pointer value.Value for an lvalue expression —
// the one address-of operation every assignment LHS, ADR/REF operand, and
// rvalue load for a non-scalar ultimately goes through.
func (g *Generator) emitAddr(expr ast.Expression) value.Value {
	ptr, _ := g.typedAddr(expr)
	return ptr
}

// typedAddr resolves expr to (pointer, static-type-name). The type name
// lets Member-chain resolution keep walking a Reference Expression chain
// (spec §4.2) past more than one hop; it is "" once the chain reaches a
// scalar, an anonymous inline type, or a point this module doesn't track
// further (e.g. past a Deref) — a Member immediately following such a
// point fails with a resolution diagnostic instead of guessing.
func (g *Generator) typedAddr(expr ast.Expression) (value.Value, string) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return g.resolveIdentAddr(e)
	case *ast.ThisExpr:
		if g.cur == nil || g.cur.self == nil {
			return g.addrError(e, "THIS used outside a stateful POU")
		}
		return g.cur.self, g.cur.selfType
	case *ast.GlobalExpr:
		return g.typedAddr(e.Inner)
	case *ast.ParenExpr:
		return g.typedAddr(e.Inner)
	case *ast.RefExpr:
		return g.typedRefAddr(e)
	case *ast.SuperExpr:
		// Reachable only when the Inheritance Rewriter left SUPER
		// unresolved (spec §4.2 "Failure semantics": preserved verbatim
		// for validation when resolution fails) — address it as the
		// parent sub-object on a best-effort basis.
		if g.cur == nil || g.cur.self == nil {
			return g.addrError(e, "SUPER used outside a stateful POU")
		}
		parent, ok := g.Oracle.Parent(g.cur.selfType)
		if !ok {
			return g.addrError(e, "SUPER used in a POU with no parent")
		}
		return g.emitMemberAddrOn(e, g.cur.self, g.cur.selfType, "__"+parent)
	default:
		return g.addrError(expr, "expression is not addressable")
	}
}

func (g *Generator) addrError(expr ast.Expression, msg string) (value.Value, string) {
	g.Diagnostics.Addf(errors.KindIR, errors.Error, expr.Pos(), "%s", msg)
	return constant.NewNull(types.NewPointer(types.I8)), ""
}

func (g *Generator) resolveIdentAddr(e *ast.Identifier) (value.Value, string) {
	if g.cur != nil {
		if v, ok := g.cur.locals[e.Name]; ok {
			return v, g.cur.declTypeName[e.Name]
		}
	}
	if fn, ok := g.functions[e.Name]; ok {
		// A function value is already pointer-typed in LLVM IR; ADR/REF of
		// a dotted function-symbol Identifier (the vtable field-ctor
		// convention, spec §4.4) needs no further indirection.
		return fn, ""
	}
	if gv, ok := g.globals[e.Name]; ok {
		return gv, g.globalTypeName[e.Name]
	}
	g.Diagnostics.Addf(errors.KindResolution, errors.Error, e.Pos(), "unresolved identifier %q", e.Name)
	return constant.NewNull(types.NewPointer(types.I8)), ""
}

func (g *Generator) typedRefAddr(e *ast.RefExpr) (value.Value, string) {
	switch e.Kind {
	case ast.RefMember:
		base, baseType := g.typedAddr(e.Base)
		return g.emitMemberAddrOn(e, base, baseType, e.Name)
	case ast.RefIndex:
		return g.emitIndexAddr(e)
	case ast.RefDeref:
		// The base is itself a pointer *value* (e.g. a REFERENCE TO
		// variable holding an address), so its rvalue load, not its
		// address, becomes the new address.
		return g.emitExpr(e.Base), ""
	case ast.RefCast:
		baseAddr := g.emitAddr(e.Base)
		target := g.realizer.Named(e.CastType.Name)
		bc := g.cur.block.NewBitCast(baseAddr, types.NewPointer(target))
		return bc, e.CastType.Name
	default:
		return g.addrError(e, "unsupported reference expression kind")
	}
}

// emitMemberAddrOn resolves a `.field` step given the base pointer and the
// base's static type name, via whichever layout (POU self-layout or
// TypeDecl struct) that name names.
func (g *Generator) emitMemberAddrOn(site ast.Expression, base value.Value, baseType, field string) (value.Value, string) {
	if baseType == "" {
		return g.addrError(site, "cannot resolve field \""+field+"\": base has no statically known named type")
	}

	idx, nextType, ok := g.fieldLookup(baseType, field)
	if !ok {
		return g.addrError(site, "type \""+baseType+"\" has no field \""+field+"\"")
	}

	structType := g.structTypeOf(baseType)
	gep := g.cur.block.NewGetElementPtr(structType, base,
		constant.NewInt(types.I32, 0),
		constant.NewInt(types.I32, int64(idx)),
	)
	return gep, nextType
}

// fieldLookup finds field's index and chainable type name within typeName,
// checking a POU self-layout first (the common case inside method/action
// bodies) and falling back to an ordinary struct TypeDecl.
func (g *Generator) fieldLookup(typeName, field string) (idx int, nextType string, ok bool) {
	if _, isPOU := g.Oracle.FindPOU(typeName); isPOU {
		l := g.selfLayout(typeName)
		if l == nil {
			return 0, "", false
		}
		if i, ok := l.fieldIndex[field]; ok {
			return i, l.fieldTypeName[i], true
		}
		return 0, "", false
	}
	if td, ok := g.typeDecls[typeName]; ok {
		if st, ok := td.Type.(*ast.StructType); ok {
			for i, v := range st.Fields {
				if v.Name != field {
					continue
				}
				next := ""
				if v.TypeRef != nil {
					next = v.TypeRef.Name
				}
				return i, next, true
			}
		}
	}
	return 0, "", false
}

// structTypeOf returns the realized struct type behind typeName, whichever
// of the two layouts (POU self-layout or TypeDecl) it names.
func (g *Generator) structTypeOf(typeName string) *types.StructType {
	if _, isPOU := g.Oracle.FindPOU(typeName); isPOU {
		return g.selfLayout(typeName).typ
	}
	t := g.realizer.Named(typeName)
	if named, ok := t.(*types.NamedType); ok {
		t = named.Def
	}
	if st, ok := t.(*types.StructType); ok {
		return st
	}
	return types.NewStruct()
}

// emitIndexAddr lowers `<base>[index]` for a single index expression,
// subtracting the first dimension's declared lower bound before the GEP
// (spec §4.6 "Array index: GEP with lower-bound subtraction"). The bound
// is found only when the base's static type names an array TypeDecl;
// otherwise the lower bound is taken as 0. Bounds of further dimensions
// are not applied.
func (g *Generator) emitIndexAddr(e *ast.RefExpr) (value.Value, string) {
	base, baseType := g.typedAddr(e.Base)
	bounds := g.arrayBoundsOf(baseType)

	lower := int64(0)
	if len(bounds) > 0 {
		lower = bounds[0].Lower
	}
	idxVal := g.widenToI64(g.emitExpr(e.Index))
	adjusted := g.cur.block.NewSub(idxVal, constant.NewInt(types.I64, lower))

	pt, ok := base.Type().(*types.PointerType)
	if !ok {
		return g.addrError(e, "indexed base is not a pointer")
	}
	if at, ok := pt.ElemType.(*types.ArrayType); ok {
		gep := g.cur.block.NewGetElementPtr(at, base, constant.NewInt(types.I64, 0), adjusted)
		return gep, ""
	}
	gep := g.cur.block.NewGetElementPtr(pt.ElemType, base, adjusted)
	return gep, ""
}

// widenToI64 sign-extends an index value up to the i64 width array
// arithmetic is always performed at, a no-op when it already is one.
func (g *Generator) widenToI64(v value.Value) value.Value {
	it, ok := v.Type().(*types.IntType)
	if !ok || it.BitSize == 64 {
		return v
	}
	return g.cur.block.NewSExt(v, types.I64)
}

func (g *Generator) arrayBoundsOf(baseType string) []ast.ArrayBound {
	if baseType == "" {
		return nil
	}
	if td, ok := g.typeDecls[baseType]; ok {
		if at, ok := td.Type.(*ast.ArrayType); ok {
			return at.Bounds
		}
	}
	return nil
}
