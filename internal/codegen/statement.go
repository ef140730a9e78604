package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/errors"
)

// emitBlock lowers a statement sequence, stopping early once a statement
// terminates the current block (LLVM forbids instructions after a
// terminator; a RETURN/EXIT/CONTINUE mid-block makes the remainder dead).
func (g *Generator) emitBlock(stmts []ast.Statement) {
	for _, s := range stmts {
		if g.cur.block.Term != nil {
			return
		}
		g.emitStatement(s)
	}
}

func (g *Generator) emitStatement(s ast.Statement) {
	switch st := s.(type) {
	case *ast.BlockStatement:
		g.emitBlock(st.Statements)
	case *ast.AssignStatement:
		g.emitAssign(st)
	case *ast.CallStatement:
		g.emitCall(st.Call)
	case *ast.ReturnStatement:
		g.emitReturn(st)
	case *ast.IfStatement:
		g.emitIf(st)
	case *ast.CaseStatement:
		g.emitCase(st)
	case *ast.WhileStatement:
		g.emitWhile(st)
	case *ast.RepeatStatement:
		g.emitRepeat(st)
	case *ast.ForStatement:
		g.emitFor(st)
	case *ast.ExitStatement:
		g.emitExit(st)
	case *ast.ContinueStatement:
		g.emitContinue(st)
	default:
		g.Diagnostics.Addf(errors.KindIR, errors.Error, s.Pos(), "unsupported statement")
	}
}

// derefNamed unwraps a NamedType to the struct/array it wraps, so
// isAggregate sees through it (spec §4.6's struct/string memcpy test
// operates on the underlying shape, not the name).
func derefNamed(t types.Type) types.Type {
	if named, ok := t.(*types.NamedType); ok {
		return named.Def
	}
	return t
}

// emitAssign lowers `LHS := RHS` / `LHS REF= RHS` (spec §4.3, §4.6):
// REF= stores the RHS address directly into LHS's own storage; plain :=
// auto-derefs a REFERENCE TO/VAR_IN_OUT/AT-aliased LHS (storing through
// the pointer it holds instead of rebinding it), memcpys when the target
// is an aggregate, and otherwise stores the scalar value, with an
// optional bounds-check trap when the target is a bounded subrange.
func (g *Generator) emitAssign(s *ast.AssignStatement) {
	if s.Kind == ast.AssignRef {
		lhsAddr := g.emitAddr(s.LHS)
		rhsAddr := g.emitAddr(s.RHS)
		g.cur.block.NewStore(rhsAddr, lhsAddr)
		return
	}

	lhsAddr := g.emitAddr(s.LHS)
	if id, ok := s.LHS.(*ast.Identifier); ok && g.cur.autoDeref[id.Name] {
		if pt, ok := lhsAddr.Type().(*types.PointerType); ok {
			lhsAddr = g.cur.block.NewLoad(pt.ElemType, lhsAddr)
		}
	}

	target, isPtr := lhsAddr.Type().(*types.PointerType)
	if isPtr && isAggregate(derefNamed(target.ElemType)) {
		rhsAddr := g.emitAddr(s.RHS)
		g.emitMemcpy(lhsAddr, rhsAddr, target.ElemType)
		return
	}

	rhs := g.emitExpr(s.RHS)
	if id, ok := s.LHS.(*ast.Identifier); ok {
		if bounds, ok := g.cur.subrangeBounds[id.Name]; ok {
			g.emitBoundsCheck(rhs, bounds)
		}
	}
	g.cur.block.NewStore(rhs, lhsAddr)
}

// emitMemcpy copies sizeof(t) bytes from src to dst via the declared
// llvm.memcpy intrinsic (spec §4.6 "emit a memory copy of the declared
// size"). sizeOfBestEffort computes a byte size from the type's own
// shape since this module carries no target DataLayout.
func (g *Generator) emitMemcpy(dst, src value.Value, t types.Type) {
	size := g.sizeOfBestEffort(t)
	dstI8 := g.cur.block.NewBitCast(dst, types.NewPointer(types.I8))
	srcI8 := g.cur.block.NewBitCast(src, types.NewPointer(types.I8))
	g.cur.block.NewCall(g.memcpyFunc, dstI8, srcI8,
		constant.NewInt(types.I64, int64(size)),
		constant.NewInt(types.I1, 0),
	)
}

func (g *Generator) sizeOfBestEffort(t types.Type) uint64 {
	switch tt := derefNamed(t).(type) {
	case *types.IntType:
		return (tt.BitSize + 7) / 8
	case *types.FloatType:
		return 8 // best-effort without a real DataLayout
	case *types.PointerType:
		return 8
	case *types.ArrayType:
		return tt.Len * g.sizeOfBestEffort(tt.ElemType)
	case *types.StructType:
		var total uint64
		for _, f := range tt.Fields {
			total += g.sizeOfBestEffort(f)
		}
		return total
	default:
		return 0
	}
}

// emitBoundsCheck traps when v falls outside [bounds.Lo, bounds.Hi],
// gated by Config.BoundsChecks (spec §6 "bounds_checks").
func (g *Generator) emitBoundsCheck(v value.Value, bounds *ast.SubrangeBounds) {
	if !g.Config.BoundsChecks {
		return
	}
	it, ok := v.Type().(*types.IntType)
	if !ok {
		return
	}
	fn := g.cur.fn
	trapBlock := fn.NewBlock("bounds.trap")
	okBlock := fn.NewBlock("bounds.ok")

	lo := g.cur.block.NewICmp(enum.IPredSLT, v, constant.NewInt(it, bounds.Lo))
	hi := g.cur.block.NewICmp(enum.IPredSGT, v, constant.NewInt(it, bounds.Hi))
	outOfRange := g.cur.block.NewOr(lo, hi)
	g.cur.block.NewCondBr(outOfRange, trapBlock, okBlock)

	g.cur.block = trapBlock
	g.cur.block.NewCall(g.trapFunc)
	g.cur.block.NewUnreachable()

	g.cur.block = okBlock
}

func (g *Generator) emitReturn(s *ast.ReturnStatement) {
	if s.Value != nil && g.cur.pou != nil {
		if alloca, ok := g.cur.locals[g.cur.pou.Name]; ok {
			g.cur.block.NewStore(g.emitExpr(s.Value), alloca)
		}
	}
	if g.cur.pou != nil {
		g.emitImplicitReturn(g.cur.pou)
		return
	}
	g.cur.block.NewRet(nil)
}

// emitIf lowers IF/ELSIF*/ELSE into the standard if.then/if.else/if.end
// CFG shape (spec §4.6 "Standard CFG shapes"), recursing one ELSIF per
// else-block.
func (g *Generator) emitIf(s *ast.IfStatement) {
	end := g.cur.fn.NewBlock("if.end")
	g.emitIfChain(s.Branches, s.Else, end)
	if g.cur.block.Term == nil {
		g.cur.block.NewBr(end)
	}
	g.cur.block = end
}

func (g *Generator) emitIfChain(branches []ast.IfBranch, elseBody []ast.Statement, end *ir.Block) {
	if len(branches) == 0 {
		g.emitBlock(elseBody)
		return
	}
	br := branches[0]
	thenBlock := g.cur.fn.NewBlock("if.then")
	elseBlock := g.cur.fn.NewBlock("if.else")

	cond := g.emitExpr(br.Condition)
	g.cur.block.NewCondBr(cond, thenBlock, elseBlock)

	g.cur.block = thenBlock
	g.emitBlock(br.Body)
	if g.cur.block.Term == nil {
		g.cur.block.NewBr(end)
	}

	g.cur.block = elseBlock
	g.emitIfChain(branches[1:], elseBody, end)
}

// emitCase lowers CASE...OF to a predicate chain: one equality-or-chain
// test per arm, falling through to the next arm's test on mismatch and
// finally to ELSE (spec §4.6 "Standard CFG shapes").
func (g *Generator) emitCase(s *ast.CaseStatement) {
	fn := g.cur.fn
	end := fn.NewBlock("case.end")
	selector := g.emitExpr(s.Selector)

	elseBlock := fn.NewBlock("case.else")
	armBlocks := make([]*ir.Block, len(s.Arms))
	for i := range s.Arms {
		armBlocks[i] = fn.NewBlock("case.arm")
	}

	testBlock := g.cur.block
	for i, arm := range s.Arms {
		next := elseBlock
		if i+1 < len(s.Arms) {
			next = fn.NewBlock("case.test")
		}
		g.cur.block = testBlock
		cond := g.emitCaseLabelsMatch(selector, arm.Labels)
		g.cur.block.NewCondBr(cond, armBlocks[i], next)
		testBlock = next
	}

	for i, arm := range s.Arms {
		g.cur.block = armBlocks[i]
		g.emitBlock(arm.Body)
		if g.cur.block.Term == nil {
			g.cur.block.NewBr(end)
		}
	}

	g.cur.block = elseBlock
	g.emitBlock(s.Else)
	if g.cur.block.Term == nil {
		g.cur.block.NewBr(end)
	}

	g.cur.block = end
}

func (g *Generator) emitCaseLabelsMatch(selector value.Value, labels []ast.Expression) value.Value {
	var result value.Value
	for _, lbl := range labels {
		eq := g.cur.block.NewICmp(enum.IPredEQ, selector, g.emitExpr(lbl))
		if result == nil {
			result = eq
			continue
		}
		result = g.cur.block.NewOr(result, eq)
	}
	if result == nil {
		return constant.NewInt(types.I1, 0)
	}
	return result
}

func (g *Generator) emitWhile(s *ast.WhileStatement) {
	fn := g.cur.fn
	cond := fn.NewBlock("while.cond")
	body := fn.NewBlock("while.body")
	end := fn.NewBlock("while.end")

	g.cur.block.NewBr(cond)

	g.cur.block = cond
	c := g.emitExpr(s.Condition)
	g.cur.block.NewCondBr(c, body, end)

	g.cur.block = body
	g.cur.pushLoop(cond, end)
	g.emitBlock(s.Body)
	g.cur.popLoop()
	if g.cur.block.Term == nil {
		g.cur.block.NewBr(cond)
	}

	g.cur.block = end
}

// emitRepeat lowers REPEAT...UNTIL: body runs once unconditionally, then
// loops back while the condition is false (spec §4.6: "body runs at least
// once").
func (g *Generator) emitRepeat(s *ast.RepeatStatement) {
	fn := g.cur.fn
	body := fn.NewBlock("repeat.body")
	cond := fn.NewBlock("repeat.cond")
	end := fn.NewBlock("repeat.end")

	g.cur.block.NewBr(body)

	g.cur.block = body
	g.cur.pushLoop(cond, end)
	g.emitBlock(s.Body)
	g.cur.popLoop()
	if g.cur.block.Term == nil {
		g.cur.block.NewBr(cond)
	}

	g.cur.block = cond
	c := g.emitExpr(s.Condition)
	g.cur.block.NewCondBr(c, end, body)

	g.cur.block = end
}

// emitFor lowers FOR...TO/DOWNTO...DO, choosing predicate-LE or
// predicate-GE by the statically known sign of the step expression (spec
// §4.6), with a dedicated increment block so CONTINUE still advances the
// loop variable before rechecking the bound.
func (g *Generator) emitFor(s *ast.ForStatement) {
	fn := g.cur.fn
	addr := g.emitAddr(s.Variable)
	g.cur.block.NewStore(g.emitExpr(s.From), addr)

	step := int64(1)
	stepVal := value.Value(constant.NewInt(types.I32, 1))
	if s.Step != nil {
		if lit, ok := s.Step.(*ast.IntegerLiteral); ok {
			step = lit.Value
		}
		stepVal = g.emitExpr(s.Step)
	}

	cond := fn.NewBlock("for.cond")
	body := fn.NewBlock("for.body")
	incr := fn.NewBlock("for.incr")
	end := fn.NewBlock("for.end")

	g.cur.block.NewBr(cond)

	g.cur.block = cond
	toVal := g.emitExpr(s.To)
	cur := g.loadThrough(addr)
	pred := enum.IPredSLE
	if step < 0 {
		pred = enum.IPredSGE
	}
	c := g.cur.block.NewICmp(pred, cur, toVal)
	g.cur.block.NewCondBr(c, body, end)

	g.cur.block = body
	g.cur.pushLoop(incr, end)
	g.emitBlock(s.Body)
	g.cur.popLoop()
	if g.cur.block.Term == nil {
		g.cur.block.NewBr(incr)
	}

	g.cur.block = incr
	next := g.cur.block.NewAdd(g.loadThrough(addr), stepVal)
	g.cur.block.NewStore(next, addr)
	g.cur.block.NewBr(cond)

	g.cur.block = end
}

func (g *Generator) loadThrough(addr value.Value) value.Value {
	pt := addr.Type().(*types.PointerType)
	return g.cur.block.NewLoad(pt.ElemType, addr)
}

func (g *Generator) emitExit(s *ast.ExitStatement) {
	loop, ok := g.cur.currentLoop()
	if !ok {
		g.Diagnostics.Addf(errors.KindIR, errors.Error, s.Pos(), "EXIT used outside a loop")
		return
	}
	g.cur.block.NewBr(loop.breakTarget)
}

func (g *Generator) emitContinue(s *ast.ContinueStatement) {
	loop, ok := g.cur.currentLoop()
	if !ok {
		g.Diagnostics.Addf(errors.KindIR, errors.Error, s.Pos(), "CONTINUE used outside a loop")
		return
	}
	g.cur.block.NewBr(loop.continueTarget)
}
