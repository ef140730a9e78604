package codegen

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

func zeroInt(t *types.IntType) *constant.Int    { return constant.NewInt(t, 0) }
func zeroFloat(t *types.FloatType) *constant.Float { return constant.NewFloat(t, 0) }
func zeroPointer(t *types.PointerType) *constant.Null { return constant.NewNull(t) }

func zeroArray(g *Generator, t *types.ArrayType) *constant.Array {
	elems := make([]constant.Constant, t.Len)
	elem := g.zeroValue(t.ElemType).(constant.Constant)
	for i := range elems {
		elems[i] = elem
	}
	return constant.NewArray(t, elems...)
}

func zeroStruct(g *Generator, t *types.StructType) *constant.Struct {
	fields := make([]constant.Constant, len(t.Fields))
	for i, ft := range t.Fields {
		fields[i] = g.zeroValue(ft).(constant.Constant)
	}
	return constant.NewStruct(t, fields...)
}
