package mask

import (
	"testing"

	"github.com/syncode-go/dfamask/automaton/dfa"
)

func newBuilder(t *testing.T) *DFABuilder {
	t.Helper()
	return NewDFABuilder(dfa.DefaultConfig())
}

// TestDMatchCase1LivePrefix verifies "[ab]*cd" advanced over "abba" with no
// lookahead is a live continuation.
func TestDMatchCase1LivePrefix(t *testing.T) {
	b := newBuilder(t)
	start, err := b.Build("[ab]*cd")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	ok, err := dmatch(b, "abba", start, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("dmatch error: %v", err)
	}
	if !ok {
		t.Error("expected true: \"abba\" is a live prefix of [ab]*cd")
	}
}

// TestDMatchCase2Overapproximation verifies "[ab]*" over "abbacdd" with no
// lookahead accepts via the maximal-munch overapproximation.
func TestDMatchCase2Overapproximation(t *testing.T) {
	b := newBuilder(t)
	start, err := b.Build("[ab]*")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	ok, err := dmatch(b, "abbacdd", start, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("dmatch error: %v", err)
	}
	if !ok {
		t.Error("expected true: \"abba\" is a maximal match, lookahead is empty")
	}
}

// TestDMatchCase2StrictRejects verifies Strict mode disables the
// maximal-munch overapproximation TestDMatchCase2Overapproximation relies on.
func TestDMatchCase2StrictRejects(t *testing.T) {
	b := newBuilder(t)
	start, err := b.Build("[ab]*")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	ok, err := dmatch(b, "abbacdd", start, nil, DefaultConfig().WithStrict(true))
	if err != nil {
		t.Fatalf("dmatch error: %v", err)
	}
	if ok {
		t.Error("expected false in strict mode: trailing \"cdd\" is not consumed")
	}
}

// TestDMatchCase3SpillIntoLookahead verifies the identifier class advanced
// over "is", given "_prime():" and lookahead [\(, \)], spills correctly
// across both lookahead terminals with trailing input tolerated by the
// maximal-munch overapproximation.
func TestDMatchCase3SpillIntoLookahead(t *testing.T) {
	b := newBuilder(t)
	start, err := b.Build("[a-zA-Z_]*")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	state := start.Advance("is")

	ok, err := dmatch(b, "_prime():", state, []string{`\(`, `\)`}, DefaultConfig())
	if err != nil {
		t.Fatalf("dmatch error: %v", err)
	}
	if !ok {
		t.Error("expected true: spill-into-lookahead scenario")
	}
}

// TestDMatchCase4RejectionDeadAtByteZero verifies a leading character the
// identifier class immediately rejects has consumed nothing, so no case
// can fire.
func TestDMatchCase4RejectionDeadAtByteZero(t *testing.T) {
	b := newBuilder(t)
	start, err := b.Build("[a-zA-Z_]*")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	ok, err := dmatch(b, "'not an id", start, []string{`\(`, `\)`}, DefaultConfig())
	if err != nil {
		t.Fatalf("dmatch error: %v", err)
	}
	if ok {
		t.Error("expected false: leading quote is immediately dead")
	}
}

// TestDMatchCase5UTF8Rejection verifies a multi-byte scalar rejected by the
// identifier class must not confuse character-boundary slicing.
func TestDMatchCase5UTF8Rejection(t *testing.T) {
	b := newBuilder(t)
	start, err := b.Build("[a-zA-Z_]*")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	ok, err := dmatch(b, "³Ġt", start, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("dmatch error: %v", err)
	}
	if ok {
		t.Error("expected false: leading multi-byte scalar is not in [a-zA-Z_]")
	}
}

// TestDMatchEmptyString verifies case 1's trivial empty-string rule: an
// empty string dmatches iff the starting state is live.
func TestDMatchEmptyString(t *testing.T) {
	b := newBuilder(t)
	start, err := b.Build("abc")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	ok, err := dmatch(b, "", start, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("dmatch error: %v", err)
	}
	if !ok {
		t.Error("empty string should dmatch against a live start state")
	}
}

// TestDMatchUniversalProperty1FullMatch verifies a string fully in the
// terminal's language dmatches with empty lookahead.
func TestDMatchUniversalProperty1FullMatch(t *testing.T) {
	b := newBuilder(t)
	start, err := b.Build("[a-z]+")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	ok, err := dmatch(b, "hello", start, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("dmatch error: %v", err)
	}
	if !ok {
		t.Error("fully matched string should dmatch with empty lookahead")
	}
}

// TestDMatchUniversalProperty4Monotonicity verifies a case-1 true result
// holds for any lookahead, since the string was merely a live prefix and
// never needed to spill.
func TestDMatchUniversalProperty4Monotonicity(t *testing.T) {
	b := newBuilder(t)
	start, err := b.Build("[a-z]+")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	withoutLookahead, err := dmatch(b, "hel", start, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("dmatch error: %v", err)
	}
	withLookahead, err := dmatch(b, "hel", start, []string{`\d+`}, DefaultConfig())
	if err != nil {
		t.Fatalf("dmatch error: %v", err)
	}
	if !withoutLookahead || !withLookahead {
		t.Error("a live-prefix case-1 match must hold regardless of lookahead")
	}
}
