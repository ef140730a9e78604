// Package oracle defines the Type & Index Oracle contract this module
// consumes (spec §6 "Consumed"). The oracle itself — name resolution
// across the scope chain — is an external collaborator (spec §1); this
// package only states the interface the lowering and codegen passes call
// against, plus a small in-memory Static implementation used by this
// module's own tests in place of the real resolver.
package oracle

import "github.com/go-stc/stc/internal/ast"

// TypeInfo is the capability-flag bundle the Oracle returns for a type
// name, used by the Inheritance Rewriter and Initializer Synthesizer to
// decide how to treat a variable without re-deriving type shape themselves
// (spec §6: "find_effective_type_info(name) (returns capability flags...)").
type TypeInfo struct {
	IsStruct      bool
	IsReferenceTo bool
	IsAlias       bool
	IsVLA         bool
	IsPOU         bool
	IsStateful    bool

	// InheritanceChain runs from the type itself to the root ancestor,
	// e.g. ["child", "parent", "grandparent"] (spec §4.2 "Contract").
	InheritanceChain []string
}

// Oracle resolves names to declarations and answers "what is the effective
// type of this name in this scope?" (spec §2 table).
type Oracle interface {
	// FindPOU looks up a POU by name.
	FindPOU(name string) (*ast.POU, bool)

	// FindMember reports whether name resolves directly as a field of
	// typeName, without walking the inheritance chain (spec §4.2
	// "Contract": "If name resolves directly in T, leave as-is").
	FindMember(typeName, name string) bool

	// FindMethod reports whether typeName (or an ancestor) defines method
	// name, and names the owner in the chain that defines it.
	FindMethod(typeName, method string) (owner string, ok bool)

	// FindPropertyGetter/FindPropertySetter each independently report the
	// nearest ancestor (possibly typeName itself) that defines the named
	// property's accessor — getter and setter may resolve to different
	// ancestors when a property is partially overridden (spec §4.2
	// "Property calls").
	FindPropertyGetter(typeName, prop string) (owner string, ok bool)
	FindPropertySetter(typeName, prop string) (owner string, ok bool)

	// EffectiveTypeInfo resolves name (usually the static type of a Base
	// expression) to its capability flags.
	EffectiveTypeInfo(name string) (TypeInfo, bool)

	// Parent returns the immediate EXTENDS target of typeName, if any.
	Parent(typeName string) (string, bool)
}
