package lowering

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/errors"
	"github.com/go-stc/stc/internal/source"
)

// ArgTypeResolver resolves a call argument expression to its concrete
// static type name. The Monomorphizer does not infer expression types
// itself — that is the Oracle/type-checker's job (spec §6 "Consumed");
// this is the seam through which that resolution is injected, since the
// Oracle interface this module consumes has no such call (spec §6 only
// names name-based lookups, not expression typing).
type ArgTypeResolver func(ast.Expression) (typeName string, ok bool)

// Monomorphizer implements spec §4.5: for each call site of a generic
// POU, resolve each declared type parameter to a concrete type from the
// corresponding positional argument and verify it satisfies the
// parameter's declared nature, accumulating a diagnostic for every
// violation or unresolved parameter (spec §8 "∀ generic call-site:
// resolved concrete type satisfies the declared nature per §4.5 lattice"
// and "A generic type parameter left unresolved after analysis is also
// diagnosed").
type Monomorphizer struct {
	ResolveArgType ArgTypeResolver
	Diagnostics    *errors.Bag
}

// NewMonomorphizer constructs a Monomorphizer reporting into bag.
func NewMonomorphizer(resolve ArgTypeResolver, bag *errors.Bag) *Monomorphizer {
	return &Monomorphizer{ResolveArgType: resolve, Diagnostics: bag}
}

type paramResolution struct {
	concrete string
	pos      source.Position
}

// Validate checks one call site against the generic POU p it invokes. The
// positional alignment is p's VAR_INPUT parameters against call.Args: a
// formal parameter whose TypeRef names one of p's declared TypeParams is
// a generic slot, resolved from the argument at the same position.
func (m *Monomorphizer) Validate(p *ast.POU, call *ast.CallExpr) {
	natures := make(map[string]ast.Nature, len(p.TypeParams))
	for _, tp := range p.TypeParams {
		natures[tp.Name] = tp.Nature
	}
	if len(natures) == 0 {
		return
	}

	inputs := formalInputs(p)
	resolved := make(map[string]paramResolution, len(natures))

	for i, arg := range call.Args {
		if i >= len(inputs) || inputs[i].TypeRef == nil {
			continue
		}
		paramName := inputs[i].TypeRef.Name
		if _, isGeneric := natures[paramName]; !isGeneric {
			continue
		}
		if concrete, ok := m.ResolveArgType(arg); ok {
			resolved[paramName] = paramResolution{concrete: concrete, pos: arg.Pos()}
		}
	}

	for name, nature := range natures {
		r, ok := resolved[name]
		if !ok {
			m.Diagnostics.Addf(errors.KindGeneric, errors.Error, call.Pos(),
				"unresolved type parameter %q of %s", name, p.Name)
			continue
		}
		if !ast.Satisfies(r.concrete, nature) {
			m.Diagnostics.Add(errors.NewNatureViolation(r.pos, r.concrete, nature.DisplayName()))
		}
	}
}

// formalInputs flattens p's VAR_INPUT blocks into a single positional
// parameter list, in declaration order.
func formalInputs(p *ast.POU) []*ast.Variable {
	var inputs []*ast.Variable
	for _, block := range p.VarBlocks {
		if block.Kind == ast.VarInput {
			inputs = append(inputs, block.Vars...)
		}
	}
	return inputs
}
