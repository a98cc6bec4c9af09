package mask

import "testing"

// TestStoreLookupMatchesComputeMask verifies that, with terminals
// [\(, \), [a-zA-Z_]*] and alpha=2, the mask stored for (identifier state
// advanced by "is", lookahead [\(, \)]) equals the mask computed directly
// for that same state and lookahead.
func TestStoreLookupMatchesComputeMask(t *testing.T) {
	terminals := []string{`\(`, `\)`, "[a-zA-Z_]*"}
	vocabulary := []string{"_prime():", ":#", "'''", " hi", "indeed", "n0pe"}

	builder := newBuilder(t)
	cfg := DefaultConfig().WithAlpha(2)

	store, err := BuildStore(builder, terminals, vocabulary, cfg)
	if err != nil {
		t.Fatalf("BuildStore error: %v", err)
	}

	identifierStart, err := builder.Build("[a-zA-Z_]*")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	state := identifierStart.Advance("is")

	got, ok := store.Lookup(state, []string{`\(`, `\)`})
	if !ok {
		t.Fatal("expected a stored mask for this key")
	}

	want, err := computeMask(builder, state, []string{`\(`, `\)`}, vocabulary, cfg)
	if err != nil {
		t.Fatalf("computeMask error: %v", err)
	}

	if !got.Equal(want) {
		t.Errorf("stored mask %s != directly computed mask %s", got, want)
	}
}

// TestStoreStatesOfNonEmpty verifies StatesOf returns every state the
// builder enumerated for a terminal, with the anchored start among them.
func TestStoreStatesOfNonEmpty(t *testing.T) {
	terminals := []string{"[a-z]+"}
	vocabulary := []string{"abc"}

	builder := newBuilder(t)
	store, err := BuildStore(builder, terminals, vocabulary, DefaultConfig())
	if err != nil {
		t.Fatalf("BuildStore error: %v", err)
	}

	states := store.StatesOf("[a-z]+")
	if len(states) == 0 {
		t.Fatal("expected at least one state for [a-z]+")
	}

	start, err := builder.Build("[a-z]+")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	found := false
	for _, s := range states {
		if s.Equal(start) {
			found = true
			break
		}
	}
	if !found {
		t.Error("StatesOf should include the anchored start state")
	}
}

// TestEstimateSizeScalesWithAlpha verifies the size estimate grows with the
// accept-sequence exponent, since sequences scale as terminals^alpha.
func TestEstimateSizeScalesWithAlpha(t *testing.T) {
	terminals := []string{"a", "b", "c"}
	bits1, states1 := EstimateSize(terminals, 100, 1)
	bits2, states2 := EstimateSize(terminals, 100, 2)

	if states1 != states2 {
		t.Errorf("state estimate should not depend on alpha: %d vs %d", states1, states2)
	}
	if bits2 <= bits1 {
		t.Errorf("bits estimate should grow with alpha: alpha=1 -> %d, alpha=2 -> %d", bits1, bits2)
	}
}

// TestBuildStoreBudgetExceeded verifies BuildStore fails fast with
// ErrBudgetExceeded before compiling anything, when the estimate exceeds a
// configured budget.
func TestBuildStoreBudgetExceeded(t *testing.T) {
	terminals := []string{"[a-zA-Z_]*", "[0-9]+"}
	vocabulary := make([]string, 1000)
	for i := range vocabulary {
		vocabulary[i] = "x"
	}

	builder := newBuilder(t)
	cfg := DefaultConfig().WithMaskBudgetBits(1)

	_, err := BuildStore(builder, terminals, vocabulary, cfg)
	if err == nil {
		t.Fatal("expected ErrBudgetExceeded")
	}
	maskErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *mask.Error, got %T", err)
	}
	if maskErr.Kind != ErrBudgetExceeded {
		t.Errorf("expected ErrBudgetExceeded, got %v", maskErr.Kind)
	}
	if builder.Len() != 0 {
		t.Error("budget check should reject before compiling any terminal")
	}
}
