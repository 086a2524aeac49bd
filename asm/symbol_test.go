package asm

import "testing"

func TestSymbolDefineInsertsNew(t *testing.T) {
	s := newSymbolStore()
	sym, err := s.define(defineRequest{name: "foo", value: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sym.value != 42 {
		t.Errorf("got %d, want 42", sym.value)
	}
	if !sym.flags.has(symDefined) {
		t.Errorf("expected symDefined to be set")
	}
}

func TestSymbolLookupIsCaseInsensitive(t *testing.T) {
	s := newSymbolStore()
	s.define(defineRequest{name: "Foo", value: 1})
	if s.lookup("FOO") == nil {
		t.Errorf("expected case-insensitive lookup to find the symbol")
	}
	if s.lookup("foo") == nil {
		t.Errorf("expected case-insensitive lookup to find the symbol")
	}
}

func TestSymbolDefineOverwritesNonConstant(t *testing.T) {
	s := newSymbolStore()
	s.define(defineRequest{name: "foo", value: 1})
	sym, err := s.define(defineRequest{name: "foo", value: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sym.value != 2 {
		t.Errorf("got %d, want 2", sym.value)
	}
}

func TestSymbolDefineRejectsDuplicateConstant(t *testing.T) {
	s := newSymbolStore()
	s.define(defineRequest{name: "foo", value: 1, flags: symConstant})
	_, err := s.define(defineRequest{name: "foo", value: 2})
	if err != errDuplicateConstant {
		t.Errorf("got %v, want errDuplicateConstant", err)
	}
}

func TestSymbolDefineForceOverwritesConstant(t *testing.T) {
	s := newSymbolStore()
	s.define(defineRequest{name: "foo", value: 1, flags: symConstant})
	sym, err := s.define(defineRequest{name: "foo", value: 2, force: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sym.value != 2 {
		t.Errorf("got %d, want 2", sym.value)
	}
	if sym.flags.has(symConstant) {
		t.Errorf("expected symConstant to be cleared by a forced redefine")
	}
}

func TestSymbolReferenceCreatesPlaceholder(t *testing.T) {
	s := newSymbolStore()
	sym := s.reference("bar")
	if sym == nil {
		t.Fatalf("expected a placeholder symbol")
	}
	if sym.flags.has(symDefined) {
		t.Errorf("a referenced-but-undefined symbol must not be marked defined")
	}
	if !sym.flags.has(symReferenced) {
		t.Errorf("expected symReferenced to be set")
	}
	// A later define on the same name must reuse the placeholder's identity.
	defd, _ := s.define(defineRequest{name: "bar", value: 7})
	if defd != sym {
		t.Errorf("expected define to reuse the referenced placeholder")
	}
	if !defd.flags.has(symReferenced) {
		t.Errorf("expected symReferenced to survive the later define")
	}
}

func TestMangleLocalWithZone(t *testing.T) {
	got := mangleLocal(".loop", "myzone")
	want := "myzone.loop"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMangleLocalWithoutZone(t *testing.T) {
	got := mangleLocal(".loop", "")
	want := "_global.loop"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
