package oracle

import "testing"

func TestStatic_InheritanceChainWalk(t *testing.T) {
	s := NewStatic()
	s.SetParent("child", "parent")
	s.SetParent("parent", "grandparent")
	s.AddMember("grandparent", "z")
	s.AddMethod("parent", "FB_INIT")
	s.AddGetter("grandparent", "p")
	s.AddSetter("parent", "p")

	if s.FindMember("child", "z") {
		t.Fatalf("z should not resolve directly on child")
	}
	if !s.FindMember("grandparent", "z") {
		t.Fatalf("z should resolve directly on grandparent")
	}

	owner, ok := s.FindMethod("child", "FB_INIT")
	if !ok || owner != "parent" {
		t.Fatalf("expected FB_INIT owner parent, got %q ok=%v", owner, ok)
	}

	getterOwner, ok := s.FindPropertyGetter("child", "p")
	if !ok || getterOwner != "grandparent" {
		t.Fatalf("expected getter owner grandparent, got %q", getterOwner)
	}
	setterOwner, ok := s.FindPropertySetter("child", "p")
	if !ok || setterOwner != "parent" {
		t.Fatalf("expected setter owner parent, got %q", setterOwner)
	}

	s.SetTypeInfo("child", TypeInfo{IsPOU: true, IsStateful: true})
	info, ok := s.EffectiveTypeInfo("child")
	if !ok {
		t.Fatalf("expected type info for child")
	}
	want := []string{"child", "parent", "grandparent"}
	if len(info.InheritanceChain) != len(want) {
		t.Fatalf("chain = %v, want %v", info.InheritanceChain, want)
	}
	for i := range want {
		if info.InheritanceChain[i] != want[i] {
			t.Fatalf("chain = %v, want %v", info.InheritanceChain, want)
		}
	}
}
