package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/errors"
	stctypes "github.com/go-stc/stc/internal/types"
)

// emitExpr lowers an rvalue expression to the SSA value it produces. An
// aggregate (struct/array/string-buffer) rvalue is always its own address
// — the teacher-reference convention this module's isAggregate/paramType
// already rely on (spec §4.6 "If RHS is a struct or string, emit a memory
// copy of the declared size" presupposes the RHS is itself a pointer).
func (g *Generator) emitExpr(expr ast.Expression) value.Value {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return constant.NewInt(types.I32, e.Value)
	case *ast.RealLiteral:
		return constant.NewFloat(types.Double, e.Value)
	case *ast.BoolLiteral:
		v := int64(0)
		if e.Value {
			v = 1
		}
		return constant.NewInt(types.I1, v)
	case *ast.StringLiteral:
		return g.emitStringLiteral(e)
	case *ast.ParenExpr:
		return g.emitExpr(e.Inner)
	case *ast.BinaryExpr:
		return g.emitBinary(e)
	case *ast.UnaryExpr:
		return g.emitUnary(e)
	case *ast.CallExpr:
		return g.emitCall(e)
	case *ast.RefOfExpr:
		return g.emitAddr(e.Target)
	case *ast.AdrOfExpr:
		return g.emitAddr(e.Target)
	case *ast.StructLiteral:
		g.Diagnostics.Addf(errors.KindIR, errors.Error, e.Pos(),
			"struct literal has no addressable assignment target here")
		return constant.NewNull(types.NewPointer(types.I8))
	default:
		// Identifier, RefExpr, ThisExpr, SuperExpr, GlobalExpr: all
		// resolve to an address first, then load unless aggregate.
		ptr := g.emitAddr(expr)
		return g.loadFromAddr(ptr)
	}
}

// loadFromAddr loads a scalar through ptr, or passes an aggregate pointer
// through unchanged (the uniform by-pointer convention for struct/array/
// string values, spec §4.6).
func (g *Generator) loadFromAddr(ptr value.Value) value.Value {
	pt, ok := ptr.Type().(*types.PointerType)
	if !ok {
		return ptr
	}
	elem := pt.ElemType
	if named, ok := elem.(*types.NamedType); ok {
		elem = named.Def
	}
	if isAggregate(elem) {
		return ptr
	}
	return g.cur.block.NewLoad(elem, ptr)
}

// emitStringLiteral builds a constant array of the literal's text at its
// declared width (spec §4.6 "String literal. Written once as a constant
// of the target width (u8 or u16)"), reusing the Type Realizer's
// capacity-checked transcoding with the literal's own length as capacity
// (a literal always exactly fits itself).
func (g *Generator) emitStringLiteral(e *ast.StringLiteral) value.Value {
	st := &ast.StringType{Width: e.Width, Capacity: len(e.Value)}
	raw, err := stctypes.EncodeLiteral(st, e.Value)
	if err != nil {
		g.Diagnostics.Addf(errors.KindIR, errors.Error, e.Pos(), "%v", err)
		return constant.NewCharArrayFromString("")
	}
	if e.Width != 16 {
		return constant.NewCharArrayFromString(string(raw))
	}
	elems := make([]constant.Constant, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		v := int64(raw[i]) | int64(raw[i+1])<<8
		elems = append(elems, constant.NewInt(types.I16, v))
	}
	return constant.NewArray(types.NewArray(uint64(len(elems)), types.I16), elems...)
}

func isFloatType(t types.Type) bool {
	_, ok := t.(*types.FloatType)
	return ok
}

func (g *Generator) emitBinary(e *ast.BinaryExpr) value.Value {
	l := g.emitExpr(e.Left)
	r := g.emitExpr(e.Right)
	block := g.cur.block
	isFloat := isFloatType(l.Type()) || isFloatType(r.Type())

	switch e.Op {
	case ast.OpAdd:
		if isFloat {
			return block.NewFAdd(l, r)
		}
		return block.NewAdd(l, r)
	case ast.OpSub:
		if isFloat {
			return block.NewFSub(l, r)
		}
		return block.NewSub(l, r)
	case ast.OpMul:
		if isFloat {
			return block.NewFMul(l, r)
		}
		return block.NewMul(l, r)
	case ast.OpDiv:
		if isFloat {
			return block.NewFDiv(l, r)
		}
		return block.NewSDiv(l, r)
	case ast.OpMod:
		if isFloat {
			return block.NewFRem(l, r)
		}
		return block.NewSRem(l, r)
	case ast.OpEQ:
		if isFloat {
			return block.NewFCmp(enum.FPredOEQ, l, r)
		}
		return block.NewICmp(enum.IPredEQ, l, r)
	case ast.OpNE:
		if isFloat {
			return block.NewFCmp(enum.FPredONE, l, r)
		}
		return block.NewICmp(enum.IPredNE, l, r)
	case ast.OpLT:
		if isFloat {
			return block.NewFCmp(enum.FPredOLT, l, r)
		}
		return block.NewICmp(enum.IPredSLT, l, r)
	case ast.OpLE:
		if isFloat {
			return block.NewFCmp(enum.FPredOLE, l, r)
		}
		return block.NewICmp(enum.IPredSLE, l, r)
	case ast.OpGT:
		if isFloat {
			return block.NewFCmp(enum.FPredOGT, l, r)
		}
		return block.NewICmp(enum.IPredSGT, l, r)
	case ast.OpGE:
		if isFloat {
			return block.NewFCmp(enum.FPredOGE, l, r)
		}
		return block.NewICmp(enum.IPredSGE, l, r)
	case ast.OpAnd:
		return block.NewAnd(l, r)
	case ast.OpOr:
		return block.NewOr(l, r)
	case ast.OpXor:
		return block.NewXor(l, r)
	default:
		g.Diagnostics.Addf(errors.KindIR, errors.Error, e.Pos(), "unsupported binary operator")
		return l
	}
}

func (g *Generator) emitUnary(e *ast.UnaryExpr) value.Value {
	v := g.emitExpr(e.Operand)
	block := g.cur.block
	switch e.Op {
	case ast.OpNeg:
		if isFloatType(v.Type()) {
			return block.NewFNeg(v)
		}
		it, ok := v.Type().(*types.IntType)
		if !ok {
			g.Diagnostics.Addf(errors.KindIR, errors.Error, e.Pos(), "negation of non-numeric value")
			return v
		}
		return block.NewSub(constant.NewInt(it, 0), v)
	case ast.OpNot:
		it, ok := v.Type().(*types.IntType)
		if !ok {
			g.Diagnostics.Addf(errors.KindIR, errors.Error, e.Pos(), "NOT of non-integer value")
			return v
		}
		return block.NewXor(v, constant.NewInt(it, -1))
	default:
		g.Diagnostics.Addf(errors.KindIR, errors.Error, e.Pos(), "unsupported unary operator")
		return v
	}
}

// emitCall lowers a direct call (by function symbol) or an indirect call
// through a loaded function-pointer value (vtable dispatch, spec §4.4).
// VAR_OUTPUT/VAR_IN_OUT scalar arguments are automatically passed by
// address when the callee's declared parameter is a pointer-to-scalar and
// the call site didn't already write REF/ADR explicitly; this
// introspection only runs for a direct callee, since an indirectly loaded
// function value carries no accessible *ir.Func.Params to inspect.
func (g *Generator) emitCall(e *ast.CallExpr) value.Value {
	callee := g.resolveCallee(e.Callee)
	fn, isDirect := callee.(*ir.Func)

	skipSelf := 0
	if isDirect && len(fn.Params) > 0 && fn.Params[0].Name() == "self" {
		skipSelf = 1
	}

	args := make([]value.Value, 0, len(e.Args))
	for i, a := range e.Args {
		if isDirect {
			pi := i + skipSelf
			if pi < len(fn.Params) {
				if pt, ok := fn.Params[pi].Type().(*types.PointerType); ok &&
					!isAggregate(pt.ElemType) && !isExplicitAddressExpr(a) {
					args = append(args, g.emitAddr(a))
					continue
				}
			}
		}
		args = append(args, g.emitExpr(a))
	}
	return g.cur.block.NewCall(callee, args...)
}

func isExplicitAddressExpr(e ast.Expression) bool {
	switch e.(type) {
	case *ast.RefOfExpr, *ast.AdrOfExpr:
		return true
	default:
		return false
	}
}

func (g *Generator) resolveCallee(expr ast.Expression) value.Value {
	if id, ok := expr.(*ast.Identifier); ok {
		if fn, ok := g.functions[id.Name]; ok {
			return fn
		}
	}
	addr, _ := g.typedAddr(expr)
	if pt, ok := addr.Type().(*types.PointerType); ok {
		return g.cur.block.NewLoad(pt.ElemType, addr)
	}
	return addr
}
