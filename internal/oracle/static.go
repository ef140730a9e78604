package oracle

import (
	"strings"

	"github.com/go-stc/stc/internal/ast"
)

// Static is a hand-populated, case-insensitive in-memory Oracle used only
// by this module's own tests, grounded on the teacher's
// internal/interp/types.ClassRegistry lowercase-keyed registry pattern.
// Production wiring feeds lowering a real symbol-index oracle instead.
type Static struct {
	pous    map[string]*ast.POU
	parents map[string]string // lowercase type name -> parent type name (original case)
	members map[string]map[string]bool
	methods map[string]map[string]bool // lowercase type -> lowercase method -> defined here
	getters map[string]map[string]bool
	setters map[string]map[string]bool
	typeInf map[string]TypeInfo
}

// NewStatic creates an empty Static oracle ready for Add* calls.
func NewStatic() *Static {
	return &Static{
		pous:    make(map[string]*ast.POU),
		parents: make(map[string]string),
		members: make(map[string]map[string]bool),
		methods: make(map[string]map[string]bool),
		getters: make(map[string]map[string]bool),
		setters: make(map[string]map[string]bool),
		typeInf: make(map[string]TypeInfo),
	}
}

func key(s string) string { return strings.ToLower(s) }

// AddPOU registers a POU by name.
func (s *Static) AddPOU(p *ast.POU) { s.pous[key(p.Name)] = p }

// SetParent records typeName's immediate EXTENDS target.
func (s *Static) SetParent(typeName, parent string) { s.parents[key(typeName)] = parent }

// AddMember records that typeName directly declares a field/member named
// name (not inherited).
func (s *Static) AddMember(typeName, name string) {
	m := s.members[key(typeName)]
	if m == nil {
		m = make(map[string]bool)
		s.members[key(typeName)] = m
	}
	m[key(name)] = true
}

// AddMethod records that typeName directly declares method name.
func (s *Static) AddMethod(typeName, name string) {
	m := s.methods[key(typeName)]
	if m == nil {
		m = make(map[string]bool)
		s.methods[key(typeName)] = m
	}
	m[key(name)] = true
}

// AddGetter/AddSetter record that typeName directly declares the named
// property's getter/setter, allowing the two to resolve to different
// ancestors (spec §4.2 "Property calls").
func (s *Static) AddGetter(typeName, prop string) {
	m := s.getters[key(typeName)]
	if m == nil {
		m = make(map[string]bool)
		s.getters[key(typeName)] = m
	}
	m[key(prop)] = true
}

func (s *Static) AddSetter(typeName, prop string) {
	m := s.setters[key(typeName)]
	if m == nil {
		m = make(map[string]bool)
		s.setters[key(typeName)] = m
	}
	m[key(prop)] = true
}

// SetTypeInfo records the effective TypeInfo for name, with
// InheritanceChain computed from the recorded Parent links if left empty.
func (s *Static) SetTypeInfo(name string, info TypeInfo) {
	if len(info.InheritanceChain) == 0 {
		info.InheritanceChain = s.chain(name)
	}
	s.typeInf[key(name)] = info
}

func (s *Static) chain(typeName string) []string {
	var chain []string
	cur := typeName
	seen := make(map[string]bool)
	for cur != "" && !seen[key(cur)] {
		chain = append(chain, cur)
		seen[key(cur)] = true
		cur = s.parents[key(cur)]
	}
	return chain
}

func (s *Static) FindPOU(name string) (*ast.POU, bool) {
	p, ok := s.pous[key(name)]
	return p, ok
}

func (s *Static) FindMember(typeName, name string) bool {
	m, ok := s.members[key(typeName)]
	return ok && m[key(name)]
}

func (s *Static) resolveUpChain(table map[string]map[string]bool, typeName, name string) (string, bool) {
	cur := typeName
	seen := make(map[string]bool)
	for cur != "" && !seen[key(cur)] {
		seen[key(cur)] = true
		if m, ok := table[key(cur)]; ok && m[key(name)] {
			return cur, true
		}
		cur = s.parents[key(cur)]
	}
	return "", false
}

func (s *Static) FindMethod(typeName, method string) (string, bool) {
	return s.resolveUpChain(s.methods, typeName, method)
}

func (s *Static) FindPropertyGetter(typeName, prop string) (string, bool) {
	return s.resolveUpChain(s.getters, typeName, prop)
}

func (s *Static) FindPropertySetter(typeName, prop string) (string, bool) {
	return s.resolveUpChain(s.setters, typeName, prop)
}

func (s *Static) EffectiveTypeInfo(name string) (TypeInfo, bool) {
	info, ok := s.typeInf[key(name)]
	return info, ok
}

func (s *Static) Parent(typeName string) (string, bool) {
	p, ok := s.parents[key(typeName)]
	return p, ok
}

var _ Oracle = (*Static)(nil)
