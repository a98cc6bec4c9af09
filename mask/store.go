package mask

import (
	"math"
	"strings"

	"github.com/projectdiscovery/gologger"
)

// sequenceKey canonicalizes an accept sequence into a map-safe string. NUL
// is not a valid byte within a regex source string in this corpus, so it's
// a safe separator.
func sequenceKey(sequence []string) string {
	return strings.Join(sequence, "\x00")
}

// storeKey is the canonical (DFAState, accept sequence) key.
type storeKey struct {
	state    DFAStateKey
	sequence string
}

// Store is the precomputed mapping from (DFAState, accept sequence) to
// Mask. It is immutable and referentially transparent once BuildStore
// returns: the same key always yields the same Mask, and concurrent reads
// need no synchronization.
type Store struct {
	vocabulary []string
	alpha      int
	entries    map[storeKey]Mask
	statesOf   map[string][]DFAState
}

// Lookup returns the mask for (state, sequence). Absence (ok=false)
// indicates a key never populated at construction time — a programming
// error in the caller, not a recoverable condition this package retries.
func (s *Store) Lookup(state DFAState, sequence []string) (Mask, bool) {
	m, ok := s.entries[storeKey{state: state.Key(), sequence: sequenceKey(sequence)}]
	return m, ok
}

// StatesOf returns every DFAState enumerated for terminal, in BFS discovery
// order, so a host can iterate every key this store covers for that
// terminal.
func (s *Store) StatesOf(terminal string) []DFAState {
	return s.statesOf[terminal]
}

// Vocabulary returns the vocabulary this store's masks are indexed against.
func (s *Store) Vocabulary() []string {
	return s.vocabulary
}

// EstimateSize returns a pre-construction estimate of the store's size
// without compiling any terminal: states is a heuristic state-count (each
// terminal contributes roughly twice its source length in DFA states, the
// typical blowup for small lexical patterns), and bits is
// states * len(terminals)^alpha * vocabLen — the size of the entry table
// itself, which dominates the store's total memory footprint since every
// (state, accept-sequence) pair carries its own vocabLen-bit mask. Build
// fails fast against Config.MaskBudgetBits using this estimate before
// compiling anything, so a regex that would exceed budget never costs a
// compilation pass.
func EstimateSize(terminals []string, vocabLen int, alpha int) (bits uint64, states int) {
	for _, t := range terminals {
		states += 2*len(t) + 1
	}
	sequences := int(math.Pow(float64(len(terminals)), float64(alpha)))
	bits = uint64(states) * uint64(sequences) * uint64(vocabLen)
	return bits, states
}

// sequences returns the Cartesian product terminals^alpha in stable,
// input-order-derived order, so that repeated builds produce identical
// store keys.
func sequences(terminals []string, alpha int) [][]string {
	if alpha <= 0 {
		return nil
	}
	result := [][]string{{}}
	for i := 0; i < alpha; i++ {
		var next [][]string
		for _, prefix := range result {
			for _, t := range terminals {
				seq := make([]string, len(prefix)+1)
				copy(seq, prefix)
				seq[len(prefix)] = t
				next = append(next, seq)
			}
		}
		result = next
	}
	return result
}

// BuildStore enumerates every (state, accept sequence) pair across
// terminals and populates the mask store. Terminals are compiled at most
// once via builder's cache.
func BuildStore(builder *DFABuilder, terminals []string, vocabulary []string, cfg Config) (*Store, error) {
	estBits, estStates := EstimateSize(terminals, len(vocabulary), cfg.Alpha)
	gologger.DefaultLogger.Verbose().Msgf(
		"mask store estimate: ~%d states, ~%d bits (%d terminals, alpha=%d, vocab=%d)",
		estStates, estBits, len(terminals), cfg.Alpha, len(vocabulary))
	if cfg.MaskBudgetBits > 0 && estBits > cfg.MaskBudgetBits {
		return nil, &Error{
			Kind:    ErrBudgetExceeded,
			Message: "estimated mask store size exceeds configured budget",
			Cause:   errBudget(estBits, cfg.MaskBudgetBits),
		}
	}

	statesOf := make(map[string][]DFAState, len(terminals))
	var allStates []DFAState

	for _, terminal := range terminals {
		start, err := builder.Build(terminal)
		if err != nil {
			return nil, err
		}

		ids := start.States()
		terminalStates := make([]DFAState, len(ids))
		for i, id := range ids {
			terminalStates[i] = DFAState{TerminalRegex: terminal, DFA: start.DFA, StateID: id}
		}
		statesOf[terminal] = terminalStates
		allStates = append(allStates, terminalStates...)

		gologger.DefaultLogger.Verbose().Msgf("terminal %q: %d states", terminal, len(terminalStates))
	}

	if len(allStates) > 1<<20 {
		gologger.DefaultLogger.Warning().Msgf("mask store state count unusually large: %d", len(allStates))
	}

	seqs := sequences(terminals, cfg.Alpha)
	entries := make(map[storeKey]Mask, len(allStates)*len(seqs))

	for _, state := range allStates {
		for _, seq := range seqs {
			m, err := computeMask(builder, state, seq, vocabulary, cfg)
			if err != nil {
				return nil, err
			}
			entries[storeKey{state: state.Key(), sequence: sequenceKey(seq)}] = m
		}
	}

	return &Store{
		vocabulary: vocabulary,
		alpha:      cfg.Alpha,
		entries:    entries,
		statesOf:   statesOf,
	}, nil
}
