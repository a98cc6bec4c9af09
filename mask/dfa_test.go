package mask

import "testing"

// TestDFAStateEqualityIgnoresDFAReference verifies two DFAStates with the
// same (terminal_regex, state_id) are equal regardless of which *dfa.DFA
// pointer they carry, even if those pointers happen to differ (e.g. two
// independent compilations of the same regex string).
func TestDFAStateEqualityIgnoresDFAReference(t *testing.T) {
	b1 := newBuilder(t)
	b2 := newBuilder(t)

	s1, err := b1.Build("[a-z]+")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	s2, err := b2.Build("[a-z]+")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if s1.DFA == s2.DFA {
		t.Fatal("test setup invalid: expected two distinct *dfa.DFA instances")
	}
	if !s1.Equal(s2) {
		t.Error("DFAStates with the same (terminal_regex, state_id) should be equal across DFA instances")
	}
	if s1.Key() != s2.Key() {
		t.Error("DFAStateKey should be identical across DFA instances")
	}
}

// TestDFAStateStatesClosed verifies every state reached via States() is
// closed under NextState (for byte-class representatives) and NextEOIState.
func TestDFAStateStatesClosed(t *testing.T) {
	b := newBuilder(t)
	start, err := b.Build("[ab]*cd")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	ids := start.States()
	set := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		set[uint32(id)] = true
	}

	reps := start.DFA.ByteClasses().Representatives()
	for _, id := range ids {
		for _, b := range reps {
			next, err := start.DFA.NextState(id, b)
			if err != nil {
				t.Fatalf("NextState error: %v", err)
			}
			if !set[uint32(next)] {
				t.Errorf("NextState(%d, %q) = %d not present in States()", id, b, next)
			}
		}
		eoi := start.DFA.NextEOIState(id)
		if !set[uint32(eoi)] {
			t.Errorf("NextEOIState(%d) = %d not present in States()", id, eoi)
		}
	}
}

// TestDFAStateAdvanceAndConsumeCharacterAgree verifies that stepping
// character-by-character via ConsumeCharacter reaches the same state as
// Advance over the same text.
func TestDFAStateAdvanceAndConsumeCharacterAgree(t *testing.T) {
	b := newBuilder(t)
	start, err := b.Build("héllo")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	viaAdvance := start.Advance("héllo")

	cur := start
	for _, r := range "héllo" {
		cur = cur.ConsumeCharacter(r)
	}

	if cur.StateID != viaAdvance.StateID {
		t.Errorf("ConsumeCharacter loop ended at %d, Advance ended at %d", cur.StateID, viaAdvance.StateID)
	}
}

// TestDFAStateStringIncludesTerminalAndStateID exercises the debug
// rendering used for logging and test failure messages.
func TestDFAStateStringIncludesTerminalAndStateID(t *testing.T) {
	b := newBuilder(t)
	start, err := b.Build("abc")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	s := start.String()
	if s == "" {
		t.Fatal("String() should not be empty")
	}
}
