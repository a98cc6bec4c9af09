package mask

// dmatch decides whether text can be a live continuation of the terminal at
// state, possibly spilling into the accept-sequence lambda. It implements
// the three cases of the core predicate:
//
//  1. Live continuation: text is consumed entirely and the DFA is still
//     alive (not dead, not quit) — text is a prefix of the terminal.
//  2. Full current terminal, no lookahead required: some non-empty prefix
//     of text reaches a match state and lambda is empty. This is the
//     overapproximating "grammar is willing to terminate here" branch;
//     cfg.Strict disables it.
//  3. Spill into lookahead: the prefix up to the character that kills the
//     match is itself a match state, and the remaining suffix dmatches
//     against lambda[0]'s DFA with the rest of lambda.
//
// state is never mutated: every step produces a new DFAState value, per the
// snapshot-by-value discipline the predicate requires (dfa_mask evaluates
// many vocabulary tokens against the same starting state and must not let
// one token's walk leak into the next).
func dmatch(builder *DFABuilder, text string, state DFAState, lambda []string, cfg Config) (bool, error) {
	// Case 1: feed the whole string and check liveness.
	advanced := state.Advance(text)
	if advanced.IsLive() {
		return true, nil
	}

	cur := state
	matchByteIdx := -1
	deadByteIdx := -1

	for idx, r := range text {
		next := cur.ConsumeCharacter(r)
		if !next.IsLive() {
			deadByteIdx = idx
			break
		}
		cur = next
		if cur.IsMatch() {
			matchByteIdx = idx + runeByteLen(r)
		}
	}

	// Case 2: maximal match seen anywhere, no lookahead required.
	if !cfg.Strict && matchByteIdx != -1 && len(lambda) == 0 {
		return true, nil
	}

	// Case 3: the character that killed the match becomes the first
	// character of the lookahead's input; only valid when the prefix right
	// up to that character was itself a match state (deadByteIdx>0 also
	// guarantees at least one character was consumed).
	if deadByteIdx > 0 && matchByteIdx == deadByteIdx && len(lambda) > 0 {
		suffix := text[deadByteIdx:]
		next0, err := builder.Build(lambda[0])
		if err != nil {
			return false, err
		}
		return dmatch(builder, suffix, next0, lambda[1:], cfg)
	}

	return false, nil
}

// runeByteLen returns the UTF-8 encoded length of r.
func runeByteLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}
