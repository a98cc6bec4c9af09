package dfa

import (
	"testing"

	"github.com/syncode-go/dfamask/automaton/nfa"
)

func compileDFA(t *testing.T, pattern string) *DFA {
	t.Helper()
	n, err := nfa.NewDefaultCompiler().Compile(pattern)
	if err != nil {
		t.Fatalf("nfa.Compile(%q) error: %v", pattern, err)
	}
	d, err := Compile(n)
	if err != nil {
		t.Fatalf("dfa.Compile(%q) error: %v", pattern, err)
	}
	return d
}

func step(t *testing.T, d *DFA, s StateID, input string) StateID {
	t.Helper()
	cur := s
	for i := 0; i < len(input); i++ {
		next, err := d.NextState(cur, input[i])
		if err != nil {
			t.Fatalf("NextState error: %v", err)
		}
		cur = next
	}
	return cur
}

// TestLiteralMatch verifies a plain literal reaches a match state at
// end-of-input and nowhere earlier.
func TestLiteralMatch(t *testing.T) {
	d := compileDFA(t, "abc")
	mid := step(t, d, d.Start(), "ab")
	if d.IsMatchState(mid) {
		t.Error("state after \"ab\" should not be a match")
	}
	full := step(t, d, d.Start(), "abc")
	if d.NextEOIState(full) != EOIMatchState {
		t.Error("state after \"abc\" should match at end-of-input")
	}
}

// TestDeadStateOnRejectingByte verifies a byte the pattern cannot consume
// transitions to DeadState and stays there.
func TestDeadStateOnRejectingByte(t *testing.T) {
	d := compileDFA(t, "abc")
	s := step(t, d, d.Start(), "x")
	if !d.IsDeadState(s) {
		t.Fatalf("expected dead state after rejecting byte, got %d", s)
	}
	s2 := step(t, d, s, "abc")
	if !d.IsDeadState(s2) {
		t.Error("dead state should self-loop on further input")
	}
}

// TestStarIsLiveAtEmptyString verifies a star-quantified pattern accepts
// the empty string and remains live after repeated matches.
func TestStarIsLiveAtEmptyString(t *testing.T) {
	d := compileDFA(t, "[a-zA-Z_]*")
	if d.NextEOIState(d.Start()) != EOIMatchState {
		t.Error("[a-zA-Z_]* should match empty string at end-of-input")
	}
	s := step(t, d, d.Start(), "hello_world")
	if d.IsDeadState(s) {
		t.Fatal("identifier class should remain live over its own alphabet")
	}
	if d.NextEOIState(s) != EOIMatchState {
		t.Error("identifier class should match at end-of-input after consuming only its own alphabet")
	}
}

// TestIsQuitStateAlwaysFalse verifies this engine's classifier surface never
// reports a quit state.
func TestIsQuitStateAlwaysFalse(t *testing.T) {
	d := compileDFA(t, "a+")
	if d.IsQuitState(d.Start()) || d.IsQuitState(DeadState) || d.IsQuitState(EOIMatchState) {
		t.Error("IsQuitState must always be false for this engine")
	}
}

// TestIsSpecialState verifies DeadState and EOIMatchState are flagged
// special while ordinary determinized states are not.
func TestIsSpecialState(t *testing.T) {
	d := compileDFA(t, "ab")
	if !d.IsSpecialState(DeadState) {
		t.Error("DeadState should be special")
	}
	if !d.IsSpecialState(EOIMatchState) {
		t.Error("EOIMatchState should be special")
	}
	if d.IsSpecialState(d.Start()) {
		t.Error("start state should not be special")
	}
}

// TestWordBoundaryAnchor exercises a \b-anchored pattern to confirm the
// determinizer resolves pending word-boundary looks correctly on both
// sides of the transition.
func TestWordBoundaryAnchor(t *testing.T) {
	d := compileDFA(t, `\bfoo\b`)
	s := step(t, d, d.Start(), "foo")
	if d.NextEOIState(s) != EOIMatchState {
		t.Error(`\bfoo\b should match "foo" at end-of-input`)
	}
}
