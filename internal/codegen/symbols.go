package codegen

import (
	"strings"

	"github.com/tidwall/sjson"
)

// SymbolsJSON builds the optional `--emit-symbols-json` symbol map
// SPEC_FULL.md §3 names: type constructor names, vtable names, and the
// global-constructor priority every `@llvm.global_ctors` entry is emitted
// at, for downstream tooling (a linker wrapper, a debugger front end) that
// wants this without re-parsing emitted IR text.
func (g *Generator) SymbolsJSON() (string, error) {
	doc := "{}"
	var err error

	doc, err = sjson.Set(doc, "global_ctor_priority", 65535)
	if err != nil {
		return "", err
	}

	ctorNames := append([]string{}, g.ctorNames...)
	doc, err = sjson.Set(doc, "global_ctors", ctorNames)
	if err != nil {
		return "", err
	}

	var typeCtors []string
	var vtables []string
	for name, td := range g.typeDecls {
		if td.Constructor != nil {
			typeCtors = append(typeCtors, td.Constructor.Owner+"__ctor")
		}
		if strings.HasPrefix(name, "__vtable_") {
			vtables = append(vtables, name)
		}
	}
	doc, err = sjson.Set(doc, "type_constructors", typeCtors)
	if err != nil {
		return "", err
	}
	doc, err = sjson.Set(doc, "vtables", vtables)
	if err != nil {
		return "", err
	}

	return doc, nil
}
