package ast

import "strings"

// Nature is a generic type-parameter constraint from the IEC 61131-3 ANY
// lattice (spec §4.5 "Generic Monomorphization & Nature Validator").
// It lives in this package, not internal/lowering, because GenericParam
// is part of the POU's declared shape and internal/lowering imports
// internal/ast, not the other way round.
type Nature string

const (
	NatureAny         Nature = "ANY"
	NatureDerived     Nature = "ANY_DERIVED"
	NatureElementary  Nature = "ANY_ELEMENTARY"
	NatureMagnitude   Nature = "ANY_MAGNITUDE"
	NatureBit         Nature = "ANY_BIT"
	NatureString      Nature = "ANY_STRING"
	NatureChars       Nature = "ANY_CHARS"
	NatureChar        Nature = "ANY_CHAR"
	NatureDate        Nature = "ANY_DATE"
	NatureNum         Nature = "ANY_NUM"
	NatureDuration    Nature = "ANY_DURATION"
	NatureReal        Nature = "ANY_REAL"
	NatureInt         Nature = "ANY_INT"
	NatureSigned      Nature = "ANY_SIGNED"
	NatureUnsigned    Nature = "ANY_UNSIGNED"
)

// natureParents maps each nature to the natures it is immediately nested
// within, per spec §4.5's lattice:
//
//	ANY
//	├── ANY_DERIVED
//	└── ANY_ELEMENTARY
//	    ├── ANY_MAGNITUDE
//	    │   ├── ANY_NUM
//	    │   │   ├── ANY_REAL
//	    │   │   └── ANY_INT
//	    │   │       ├── ANY_SIGNED
//	    │   │       └── ANY_UNSIGNED
//	    │   └── ANY_DURATION
//	    ├── ANY_BIT
//	    ├── ANY_CHARS
//	    │   ├── ANY_STRING
//	    │   └── ANY_CHAR
//	    └── ANY_DATE
var natureParents = map[Nature][]Nature{
	NatureDerived:    {NatureAny},
	NatureElementary: {NatureAny},
	NatureMagnitude:  {NatureElementary},
	NatureBit:        {NatureElementary},
	NatureChars:      {NatureElementary},
	NatureDate:       {NatureElementary},
	NatureString:     {NatureChars},
	NatureChar:       {NatureChars},
	NatureNum:        {NatureMagnitude},
	NatureDuration:   {NatureMagnitude},
	NatureReal:       {NatureNum},
	NatureInt:        {NatureNum},
	NatureSigned:     {NatureInt},
	NatureUnsigned:   {NatureInt},
}

// elementaryNatureOf names the leaf nature each concrete IEC elementary
// type belongs to. Only the leaves that matter for subtype checks are
// listed; struct/array/pointer/POU types are never ANY_ELEMENTARY and are
// checked separately against ANY/ANY_DERIVED.
var elementaryNatureOf = map[string]Nature{
	"SINT": NatureSigned, "INT": NatureSigned, "DINT": NatureSigned, "LINT": NatureSigned,
	"USINT": NatureUnsigned, "UINT": NatureUnsigned, "UDINT": NatureUnsigned, "ULINT": NatureUnsigned,
	"REAL": NatureReal, "LREAL": NatureReal,
	"BOOL": NatureBit, "BYTE": NatureBit, "WORD": NatureBit, "DWORD": NatureBit, "LWORD": NatureBit,
	"STRING": NatureString, "WSTRING": NatureString,
	"CHAR": NatureChar, "WCHAR": NatureChar,
	"TIME": NatureDuration, "LTIME": NatureDuration,
	"DATE": NatureDate, "TIME_OF_DAY": NatureDate, "TOD": NatureDate, "DATE_AND_TIME": NatureDate, "DT": NatureDate,
}

// Satisfies reports whether the concrete elementary type named typeName
// satisfies nature n, walking the lattice upward from the type's leaf
// nature. Non-elementary types (structs, POUs, arrays) are not in the
// table and satisfy no nature here, NatureAny included; deciding those is
// left to the caller.
func Satisfies(typeName string, n Nature) bool {
	leaf, ok := elementaryNatureOf[typeName]
	if !ok {
		return false
	}
	if n == NatureAny {
		return true
	}
	return leaf.satisfiesNature(n)
}

func (leaf Nature) satisfiesNature(n Nature) bool {
	if leaf == n {
		return true
	}
	for _, parent := range natureParents[leaf] {
		if parent.satisfiesNature(n) {
			return true
		}
	}
	return false
}

// DisplayName renders n the way a diagnostic shows it to a user: the
// "ANY_" lattice prefix stripped and the remainder title-cased, e.g.
// NatureInt ("ANY_INT") -> "Int", NatureMagnitude ("ANY_MAGNITUDE") ->
// "Magnitude". Matches the short form the original implementation's
// validation diagnostics use (spec §8 scenario 5: invalid_type_nature
// reports the nature as "Int", not the raw lattice constant).
func (n Nature) DisplayName() string {
	s := strings.TrimPrefix(string(n), "ANY_")
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
