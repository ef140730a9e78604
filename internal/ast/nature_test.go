package ast

import "testing"

func TestSatisfies_SignedWalksToNum(t *testing.T) {
	if !Satisfies("DINT", NatureSigned) {
		t.Fatalf("DINT should satisfy ANY_SIGNED")
	}
	if !Satisfies("DINT", NatureInt) {
		t.Fatalf("DINT should satisfy ANY_INT via ANY_SIGNED")
	}
	if !Satisfies("DINT", NatureNum) {
		t.Fatalf("DINT should satisfy ANY_NUM")
	}
	if !Satisfies("DINT", NatureMagnitude) {
		t.Fatalf("DINT should satisfy ANY_MAGNITUDE")
	}
	if Satisfies("DINT", NatureUnsigned) {
		t.Fatalf("DINT must not satisfy ANY_UNSIGNED")
	}
}

func TestSatisfies_RealDoesNotSatisfyInt(t *testing.T) {
	if !Satisfies("REAL", NatureReal) {
		t.Fatalf("REAL should satisfy ANY_REAL")
	}
	if Satisfies("REAL", NatureInt) {
		t.Fatalf("REAL must not satisfy ANY_INT (spec §8 scenario 5)")
	}
}

func TestSatisfies_StringVsChar(t *testing.T) {
	if !Satisfies("STRING", NatureString) || !Satisfies("STRING", NatureChars) {
		t.Fatalf("STRING should satisfy ANY_STRING and ANY_CHARS")
	}
	if Satisfies("STRING", NatureChar) {
		t.Fatalf("STRING must not satisfy ANY_CHAR")
	}
	if !Satisfies("CHAR", NatureChars) {
		t.Fatalf("CHAR should satisfy ANY_CHARS")
	}
}

func TestSatisfies_DateFamily(t *testing.T) {
	for _, tn := range []string{"DATE", "TIME_OF_DAY", "DATE_AND_TIME"} {
		if !Satisfies(tn, NatureDate) {
			t.Fatalf("%s should satisfy ANY_DATE", tn)
		}
	}
	if Satisfies("TIME", NatureDate) {
		t.Fatalf("TIME (a duration) must not satisfy ANY_DATE")
	}
	if !Satisfies("TIME", NatureDuration) {
		t.Fatalf("TIME should satisfy ANY_DURATION")
	}
}

func TestSatisfies_UnknownTypeName(t *testing.T) {
	if Satisfies("TMyFB", NatureAny) {
		t.Fatalf("non-elementary type names are not resolved by Satisfies; the caller must decide them separately")
	}
}
