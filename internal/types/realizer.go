// Package types lowers ST datatypes to LLVM backend types (spec §4.6 "Type
// Realizer" in spec.md's module table): structs, arrays, pointers,
// subranges, and fixed-width string buffers.
//
// Grounded on the teacher's internal/types package (ClassType/RecordType
// field-layout construction walks a field list once and caches the
// resulting shape by name) for the realize-and-cache-by-name pattern,
// re-targeted at llir/llvm's ir/types API instead of an interpreter value
// representation.
package types

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"golang.org/x/text/encoding/unicode"

	"github.com/go-stc/stc/internal/ast"
)

// Elementary maps an IEC elementary type name to its LLVM scalar type.
func Elementary(name string) (types.Type, bool) {
	switch name {
	case "BOOL":
		return types.I1, true
	case "BYTE", "SINT", "USINT", "CHAR":
		return types.I8, true
	case "WORD", "INT", "UINT", "WCHAR":
		return types.I16, true
	case "DWORD", "DINT", "UDINT", "TIME", "DATE":
		return types.I32, true
	case "LWORD", "LINT", "ULINT", "LTIME", "DATE_AND_TIME", "DT", "TIME_OF_DAY", "TOD":
		return types.I64, true
	case "REAL":
		return types.Float, true
	case "LREAL":
		return types.Double, true
	default:
		return nil, false
	}
}

// Realizer realizes ast.DataType values into llir/llvm types, registering
// named struct types on Module exactly once (spec §4.7's canonical-name
// caching applies to debug info; this is its type-system counterpart).
type Realizer struct {
	Module    *ir.Module
	TypeDecls map[string]*ast.TypeDecl

	cache    map[string]types.Type
	visiting map[string]bool // cycle guard: a struct referencing itself through a pointer field
}

// NewRealizer constructs a Realizer bound to m, resolving named types
// against decls (the compilation unit's own DataTypes, keyed by name).
func NewRealizer(m *ir.Module, decls map[string]*ast.TypeDecl) *Realizer {
	return &Realizer{
		Module:    m,
		TypeDecls: decls,
		cache:     make(map[string]types.Type),
		visiting:  make(map[string]bool),
	}
}

// Realize lowers one inline DataType node to its llir type.
func (r *Realizer) Realize(dt ast.DataType) types.Type {
	switch t := dt.(type) {
	case nil:
		return types.Void
	case *ast.StructType:
		return r.realizeStructFields(t)
	case *ast.ArrayType:
		return r.realizeArray(t)
	case *ast.EnumType:
		return r.Realize(t.Backing)
	case *ast.SubrangeType:
		// Subranges are stored at their base type's width; the bounds
		// check is a codegen-time branch, not a distinct storage shape
		// (spec §4.6 "Arithmetic on subranges... Load and operate at the
		// base type width").
		return r.Realize(t.Base)
	case *ast.PointerType:
		return types.NewPointer(r.Realize(t.Target))
	case *ast.NamedType:
		return r.Named(t.Name)
	case *ast.StringType:
		return r.realizeString(t)
	case *ast.VLAType:
		// { i64 len, i8* data } — bounds supplied at the call site, so the
		// fixed part of the layout carries only a length and a data
		// pointer (spec §3 "DataType": VLAType dims supplied at call site).
		return types.NewStruct(types.I64, types.NewPointer(types.I8))
	case *ast.FunctionPointerType:
		// Slots are stored as opaque i8* and cast at call sites, the same
		// convention the vtable-generation reference uses to sidestep
		// exact-signature matching in global initializers.
		return types.NewPointer(types.I8)
	default:
		return types.I8
	}
}

// Named resolves a type reference by name: an elementary IEC type, or a
// declared struct/alias type realized (and cached) on first request. A
// name still being realized when requested again gets a forward
// declaration instead of recursing, the same cycle-breaking shape the
// Debug Info Builder uses for `next: REF_TO Node` (spec §4.7 "Cycle
// handling").
func (r *Realizer) Named(name string) types.Type {
	if t, ok := Elementary(name); ok {
		return t
	}
	if t, ok := r.cache[name]; ok {
		return t
	}
	decl, ok := r.TypeDecls[name]
	if !ok {
		return types.I8
	}
	if r.visiting[name] {
		fwd := r.Module.NewTypeDef(name, types.NewStruct())
		r.cache[name] = fwd
		return fwd
	}

	r.visiting[name] = true
	realized := r.Realize(decl.Type)
	def := r.Module.NewTypeDef(name, realized)
	r.cache[name] = def
	delete(r.visiting, name)
	return def
}

func (r *Realizer) realizeStructFields(st *ast.StructType) types.Type {
	fields := make([]types.Type, 0, len(st.Fields))
	for _, f := range st.Fields {
		fields = append(fields, r.fieldType(f))
	}
	return types.NewStruct(fields...)
}

func (r *Realizer) fieldType(v *ast.Variable) types.Type {
	if v.TypeRef != nil {
		return r.Named(v.TypeRef.Name)
	}
	return r.Realize(v.InlineType)
}

func (r *Realizer) realizeArray(a *ast.ArrayType) types.Type {
	elem := r.Realize(a.Element)
	n := uint64(1)
	for _, b := range a.Bounds {
		n *= uint64(b.Upper - b.Lower + 1)
	}
	return types.NewArray(n, elem)
}

func (r *Realizer) realizeString(s *ast.StringType) types.Type {
	elem := types.Type(types.I8)
	if s.Width == 16 {
		elem = types.I16
	}
	return types.NewArray(uint64(s.Capacity+1), elem)
}

// EncodeLiteral transcodes a string literal's text into the fixed-width
// byte buffer matching st's declared width, validating it fits within
// Capacity (spec §4.6 "String literal. Written once as a constant of the
// target width (u8 or u16)").
func EncodeLiteral(st *ast.StringType, text string) ([]byte, error) {
	if st.Width == 8 {
		b := []byte(text)
		if len(b) > st.Capacity {
			return nil, fmt.Errorf("string literal %q exceeds capacity %d", text, st.Capacity)
		}
		return b, nil
	}

	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String(text)
	if err != nil {
		return nil, fmt.Errorf("encode WSTRING literal %q: %w", text, err)
	}
	if len(encoded)/2 > st.Capacity {
		return nil, fmt.Errorf("wstring literal %q exceeds capacity %d", text, st.Capacity)
	}
	return []byte(encoded), nil
}
