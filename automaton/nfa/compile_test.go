package nfa

import "testing"

// TestCompileLiteral tests compiling a plain literal pattern.
func TestCompileLiteral(t *testing.T) {
	n, err := NewDefaultCompiler().Compile("abc")
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", "abc", err)
	}
	if n.Start() == InvalidState {
		t.Fatalf("Compile(%q) start state is invalid", "abc")
	}
	if n.States() == 0 {
		t.Fatalf("Compile(%q) produced zero states", "abc")
	}
}

// TestCompileCharClass tests a character class compiles without error and
// produces a reachable match state.
func TestCompileCharClass(t *testing.T) {
	tests := []string{"[a-z]", "[a-zA-Z_]", "[0-9]+", "[^a-z]"}
	for _, pattern := range tests {
		t.Run(pattern, func(t *testing.T) {
			n, err := NewDefaultCompiler().Compile(pattern)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", pattern, err)
			}
			if n.Start() == InvalidState {
				t.Fatalf("Compile(%q) start state is invalid", pattern)
			}
		})
	}
}

// TestCompileQuantifiers exercises star, plus, quest and bounded repeat.
func TestCompileQuantifiers(t *testing.T) {
	tests := []string{"a*", "a+", "a?", "a{2,4}", "[a-zA-Z_]*"}
	for _, pattern := range tests {
		t.Run(pattern, func(t *testing.T) {
			if _, err := NewDefaultCompiler().Compile(pattern); err != nil {
				t.Fatalf("Compile(%q) error: %v", pattern, err)
			}
		})
	}
}

// TestCompileAlternate tests alternation compiles to a valid NFA.
func TestCompileAlternate(t *testing.T) {
	n, err := NewDefaultCompiler().Compile("foo|bar")
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if n.Start() == InvalidState {
		t.Fatal("start state is invalid")
	}
}

// TestCompileAnchors tests that anchors compile via Look states rather than
// erroring.
func TestCompileAnchors(t *testing.T) {
	tests := []string{`^abc$`, `\babc\b`, `\Babc\B`}
	for _, pattern := range tests {
		t.Run(pattern, func(t *testing.T) {
			if _, err := NewDefaultCompiler().Compile(pattern); err != nil {
				t.Fatalf("Compile(%q) error: %v", pattern, err)
			}
		})
	}
}

// TestCompileUnicode tests that multi-byte UTF-8 ranges compile.
func TestCompileUnicode(t *testing.T) {
	tests := []string{"héllo", "日本語", `\p{L}+`}
	for _, pattern := range tests {
		t.Run(pattern, func(t *testing.T) {
			if _, err := NewDefaultCompiler().Compile(pattern); err != nil {
				t.Fatalf("Compile(%q) error: %v", pattern, err)
			}
		})
	}
}

// TestCompileCaptureGroupsPassThrough verifies that a parenthesized group
// compiles as plain grouping rather than failing or producing capture
// bookkeeping: "(ab)+" must behave identically to "(?:ab)+".
func TestCompileCaptureGroupsPassThrough(t *testing.T) {
	withGroup, err := NewDefaultCompiler().Compile("(ab)+")
	if err != nil {
		t.Fatalf("Compile((ab)+) error: %v", err)
	}
	withoutGroup, err := NewDefaultCompiler().Compile("(?:ab)+")
	if err != nil {
		t.Fatalf("Compile((?:ab)+) error: %v", err)
	}
	if withGroup.States() != withoutGroup.States() {
		t.Errorf("capturing and non-capturing group compiled to different state counts: %d vs %d",
			withGroup.States(), withoutGroup.States())
	}
}

// TestCompileInvalidPattern tests that a malformed regex surfaces as an
// error rather than panicking.
func TestCompileInvalidPattern(t *testing.T) {
	if _, err := NewDefaultCompiler().Compile("[a-"); err == nil {
		t.Fatal("expected an error for malformed character class")
	}
}

// TestCompileEmptyPattern tests that the empty regex compiles to an NFA
// whose start state is an epsilon transition straight to the match state.
func TestCompileEmptyPattern(t *testing.T) {
	n, err := NewDefaultCompiler().Compile("")
	if err != nil {
		t.Fatalf("Compile(\"\") error: %v", err)
	}
	if start := n.State(n.Start()); start == nil || !n.IsMatch(start.Epsilon()) {
		t.Error("empty pattern's start state should lead to a match state by one epsilon transition")
	}
}
