package lowering

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/oracle"
)

// SynthesizeStructType implements spec §4.3 "Per-struct-type": emits one
// constructor per struct, field by field applying the same Lowering
// Policy Table used for POU variables.
func (s *Synthesizer) SynthesizeStructType(t *ast.TypeDecl) {
	st, ok := t.Type.(*ast.StructType)
	if !ok {
		return
	}

	s.Stack.PushDatatype(t)
	defer s.Stack.Pop()

	for _, f := range st.Fields {
		s.synthesizeStructField(t, f)
	}
}

func (s *Synthesizer) synthesizeStructField(t *ast.TypeDecl, f *ast.Variable) {
	pos := f.Pos()
	self := s.Builder.SelfBase(pos)
	lhs := s.Builder.Member(pos, self, f.Name)

	typeName := ""
	if f.TypeRef != nil {
		typeName = f.TypeRef.Name
	}
	var info oracle.TypeInfo
	var hasInfo bool
	if typeName != "" {
		info, hasInfo = s.Oracle.EffectiveTypeInfo(typeName)
	}

	if typeName != "" && s.HasConstructor(typeName) {
		s.emitDatatypeStmt(t, s.Builder.Call(pos, s.Builder.Ident(pos, typeName+"__ctor"), lhs))
	}

	init := EffectiveInitializer(s.Builder, f, hasInfo, info)
	if init == nil {
		return
	}

	action := Classify(f, typeName, info, hasInfo)
	switch action {
	case ActionRefAssign:
		rhs := UnwrapREF(init, hasInfo && info.IsReferenceTo)
		s.emitDatatypeStmt(t, s.Builder.RefAssign(pos, lhs, rhs))
	case ActionStructDecompose:
		// The type-constructor call (if any) was already emitted above.
		lit := init.(*ast.StructLiteral)
		s.emitStructLiteralFieldsOnType(t, lhs, lit)
	default:
		s.emitDatatypeStmt(t, s.Builder.Assign(pos, lhs, init))
	}
}

func (s *Synthesizer) emitDatatypeStmt(t *ast.TypeDecl, stmt ast.Statement) {
	if impl, ok := s.typeCtors[t.Name]; ok {
		impl.Body.Stmts = append(impl.Body.Stmts, stmt)
	}
}

func (s *Synthesizer) emitStructLiteralFieldsOnType(t *ast.TypeDecl, lhs ast.Expression, lit *ast.StructLiteral) {
	pos := lhs.Pos()
	for _, fi := range lit.Fields {
		fieldLHS := s.Builder.Member(pos, lhs, fi.Field)
		if nested, ok := fi.Value.(*ast.StructLiteral); ok {
			s.emitStructLiteralFieldsOnType(t, fieldLHS, nested)
			continue
		}
		s.emitDatatypeStmt(t, s.Builder.Assign(pos, fieldLHS, fi.Value))
	}
}
