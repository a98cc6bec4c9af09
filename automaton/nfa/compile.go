package nfa

import (
	"fmt"
	"regexp/syntax"
)

// CompilerConfig configures terminal-regex compilation.
type CompilerConfig struct {
	// UTF8 determines whether the NFA respects UTF-8 boundaries.
	UTF8 bool

	// DotNewline determines whether '.' matches '\n'.
	DotNewline bool

	// MaxRecursionDepth limits recursion during compilation to prevent stack overflow.
	// Default: 100.
	MaxRecursionDepth int
}

// DefaultCompilerConfig returns a compiler configuration with sensible defaults.
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		UTF8:              true,
		DotNewline:        false,
		MaxRecursionDepth: 100,
	}
}

// Compiler compiles regexp/syntax.Regexp patterns into anchored Thompson NFAs.
//
// Every terminal is always anchored: the DFA built from it never searches,
// it only steps a fixed start state byte by byte. Capture groups are not
// tracked — parenthesized groups compile through as plain grouping.
type Compiler struct {
	config  CompilerConfig
	builder *Builder
	depth   int
}

// NewCompiler creates a new compiler with the given configuration.
func NewCompiler(config CompilerConfig) *Compiler {
	if config.MaxRecursionDepth == 0 {
		config.MaxRecursionDepth = 100
	}
	return &Compiler{config: config, builder: NewBuilder()}
}

// NewDefaultCompiler creates a new compiler with default configuration.
func NewDefaultCompiler() *Compiler {
	return NewCompiler(DefaultCompilerConfig())
}

// Compile compiles a terminal regex source string into an anchored NFA.
func (c *Compiler) Compile(pattern string) (*NFA, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	return c.CompileRegexp(re)
}

// CompileRegexp compiles a parsed syntax.Regexp into an anchored NFA.
func (c *Compiler) CompileRegexp(re *syntax.Regexp) (*NFA, error) {
	c.builder = NewBuilder()
	c.depth = 0

	start, end, err := c.compileRegexp(re)
	if err != nil {
		return nil, err
	}

	matchID := c.builder.AddMatch()
	if err := c.builder.Patch(end, matchID); err != nil {
		epsilonID := c.builder.AddEpsilon(matchID)
		if patchErr := c.builder.Patch(end, epsilonID); patchErr != nil {
			return nil, &CompileError{Err: fmt.Errorf("failed to connect to match state: %w", patchErr)}
		}
	}

	c.builder.SetStart(start)

	n, err := c.builder.Build(WithUTF8(c.config.UTF8))
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	return n, nil
}

// compileRegexp recursively compiles a syntax.Regexp node.
// Returns (start, end) state IDs; end must be patched to continue the automaton.
func (c *Compiler) compileRegexp(re *syntax.Regexp) (start, end StateID, err error) {
	c.depth++
	if c.depth > c.config.MaxRecursionDepth {
		return InvalidState, InvalidState, &CompileError{Err: ErrTooComplex}
	}
	defer func() { c.depth-- }()

	switch re.Op {
	case syntax.OpLiteral:
		return c.compileLiteral(re)
	case syntax.OpCharClass:
		return c.compileCharClass(re.Rune)
	case syntax.OpAnyChar:
		return c.compileAnyChar()
	case syntax.OpAnyCharNotNL:
		return c.compileAnyCharNotNL()
	case syntax.OpConcat:
		return c.compileConcat(re.Sub)
	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)
	case syntax.OpStar:
		return c.compileStar(re.Sub[0], re.Flags&syntax.NonGreedy != 0)
	case syntax.OpPlus:
		return c.compilePlus(re.Sub[0], re.Flags&syntax.NonGreedy != 0)
	case syntax.OpQuest:
		return c.compileQuest(re.Sub[0], re.Flags&syntax.NonGreedy != 0)
	case syntax.OpRepeat:
		return c.compileRepeat(re.Sub[0], re.Min, re.Max, re.Flags&syntax.NonGreedy != 0)
	case syntax.OpCapture:
		// Groups are not tracked; compile the body as plain grouping.
		return c.compileRegexp(re.Sub[0])
	case syntax.OpBeginText:
		id := c.builder.AddLook(LookStartText, InvalidState)
		return id, id, nil
	case syntax.OpEndText:
		id := c.builder.AddLook(LookEndText, InvalidState)
		return id, id, nil
	case syntax.OpBeginLine:
		id := c.builder.AddLook(LookStartLine, InvalidState)
		return id, id, nil
	case syntax.OpEndLine:
		id := c.builder.AddLook(LookEndLine, InvalidState)
		return id, id, nil
	case syntax.OpWordBoundary:
		id := c.builder.AddLook(LookWordBoundary, InvalidState)
		return id, id, nil
	case syntax.OpNoWordBoundary:
		id := c.builder.AddLook(LookNoWordBoundary, InvalidState)
		return id, id, nil
	case syntax.OpEmptyMatch:
		return c.compileEmptyMatch()
	default:
		return InvalidState, InvalidState, &CompileError{
			Err: fmt.Errorf("unsupported regex operation in terminal: %v", re.Op),
		}
	}
}

// compileLiteral compiles a literal string (sequence of runes), honoring
// case-insensitive matching when FoldCase is set.
func (c *Compiler) compileLiteral(re *syntax.Regexp) (start, end StateID, err error) {
	runes := re.Rune
	if len(runes) == 0 {
		return c.compileEmptyMatch()
	}

	foldCase := re.Flags&syntax.FoldCase != 0

	var prev = InvalidState
	var first = InvalidState

	for _, r := range runes {
		if foldCase && isASCIILetter(r) {
			nextState, ferr := c.compileFoldCaseRune(r, prev, &first)
			if ferr != nil {
				return InvalidState, InvalidState, ferr
			}
			prev = nextState
		} else {
			prev, err = c.compileCaseSensitiveRune(r, prev, &first)
			if err != nil {
				return InvalidState, InvalidState, err
			}
		}
	}

	return first, prev, nil
}

// compileFoldCaseRune compiles a case-insensitive ASCII letter via alternation
// between its upper and lower case byte sequences.
func (c *Compiler) compileFoldCaseRune(r rune, prev StateID, first *StateID) (StateID, error) {
	upper := toUpperASCII(r)
	lower := toLowerASCII(r)

	upperStart, upperEnd, err := c.compileSingleRune(upper)
	if err != nil {
		return InvalidState, err
	}
	lowerStart, lowerEnd, err := c.compileSingleRune(lower)
	if err != nil {
		return InvalidState, err
	}

	nextState := c.builder.AddEpsilon(InvalidState)

	if err := c.builder.Patch(upperEnd, nextState); err != nil {
		return InvalidState, err
	}
	if err := c.builder.Patch(lowerEnd, nextState); err != nil {
		return InvalidState, err
	}

	split := c.builder.AddSplit(upperStart, lowerStart)

	if prev == InvalidState {
		*first = split
	} else if err := c.builder.Patch(prev, split); err != nil {
		return InvalidState, err
	}

	return nextState, nil
}

// compileCaseSensitiveRune compiles a single rune by converting it to UTF-8
// bytes and chaining ByteRange states.
func (c *Compiler) compileCaseSensitiveRune(r rune, prev StateID, first *StateID) (StateID, error) {
	buf := make([]byte, 4)
	n := encodeRune(buf, r)

	for i := 0; i < n; i++ {
		b := buf[i]
		id := c.builder.AddByteRange(b, b, InvalidState)
		if *first == InvalidState {
			*first = id
		}
		if prev != InvalidState {
			if err := c.builder.Patch(prev, id); err != nil {
				return InvalidState, err
			}
		}
		prev = id
	}

	return prev, nil
}

// compileSingleRune compiles a single rune to its UTF-8 byte sequence.
func (c *Compiler) compileSingleRune(r rune) (start, end StateID, err error) {
	buf := make([]byte, 4)
	n := encodeRune(buf, r)

	var prev = InvalidState
	var first = InvalidState

	for i := 0; i < n; i++ {
		b := buf[i]
		id := c.builder.AddByteRange(b, b, InvalidState)
		if first == InvalidState {
			first = id
		}
		if prev != InvalidState {
			if err := c.builder.Patch(prev, id); err != nil {
				return InvalidState, InvalidState, err
			}
		}
		prev = id
	}

	return first, prev, nil
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func toUpperASCII(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r - 'A' + 'a'
	}
	return r
}

// compileCharClass compiles a character class like [a-zA-Z0-9].
func (c *Compiler) compileCharClass(ranges []rune) (start, end StateID, err error) {
	if len(ranges) == 0 {
		return c.compileNoMatch()
	}

	allASCII := true
	for _, r := range ranges {
		if r > 127 {
			allASCII = false
			break
		}
	}

	if allASCII && len(ranges) >= 2 {
		var transitions []Transition
		for i := 0; i < len(ranges); i += 2 {
			transitions = append(transitions, Transition{
				Lo: byte(ranges[i]), Hi: byte(ranges[i+1]), Next: InvalidState,
			})
		}

		if len(transitions) == 1 {
			t := transitions[0]
			id := c.builder.AddByteRange(t.Lo, t.Hi, InvalidState)
			return id, id, nil
		}

		target := c.builder.AddEpsilon(InvalidState)
		for i := range transitions {
			transitions[i].Next = target
		}
		id := c.builder.AddSparse(transitions)
		return id, target, nil
	}

	return c.compileUnicodeClass(ranges)
}

// compileUnicodeClass builds UTF-8 byte automata for a (possibly non-ASCII)
// character class.
func (c *Compiler) compileUnicodeClass(ranges []rune) (start, end StateID, err error) {
	if len(ranges) == 0 {
		return c.compileNoMatch()
	}

	totalChars := int64(0)
	for i := 0; i < len(ranges); i += 2 {
		totalChars += int64(ranges[i+1] - ranges[i] + 1)
		if totalChars > 256 {
			return c.compileUnicodeClassLarge(ranges)
		}
	}

	var alts []*syntax.Regexp
	for i := 0; i < len(ranges); i += 2 {
		lo, hi := ranges[i], ranges[i+1]
		for r := lo; r <= hi; r++ {
			alts = append(alts, &syntax.Regexp{Op: syntax.OpLiteral, Rune: []rune{r}})
		}
	}

	if len(alts) == 1 {
		return c.compileRegexp(alts[0])
	}
	return c.compileAlternate(alts)
}

// compileUnicodeClassLarge handles wide Unicode classes (e.g. negated ASCII
// classes like [^,]) by building precise UTF-8 byte ranges instead of
// enumerating every codepoint.
func (c *Compiler) compileUnicodeClassLarge(ranges []rune) (start, end StateID, err error) {
	var asciiRanges []Transition
	var nonASCIIRanges [][2]rune

	for i := 0; i < len(ranges); i += 2 {
		lo, hi := ranges[i], ranges[i+1]
		switch {
		case hi < 0x80:
			asciiRanges = append(asciiRanges, Transition{Lo: byte(lo), Hi: byte(hi), Next: InvalidState})
		case lo >= 0x80:
			nonASCIIRanges = append(nonASCIIRanges, [2]rune{lo, hi})
		default:
			asciiRanges = append(asciiRanges, Transition{Lo: byte(lo), Hi: 0x7F, Next: InvalidState})
			nonASCIIRanges = append(nonASCIIRanges, [2]rune{0x80, hi})
		}
	}

	coversAllNonASCII := len(nonASCIIRanges) == 1 &&
		nonASCIIRanges[0][0] <= 0x80 && nonASCIIRanges[0][1] >= 0x10FFFF

	target := c.builder.AddEpsilon(InvalidState)
	var altStarts []StateID

	if len(asciiRanges) > 0 {
		for i := range asciiRanges {
			asciiRanges[i].Next = target
		}
		if len(asciiRanges) == 1 {
			altStarts = append(altStarts, c.builder.AddByteRange(asciiRanges[0].Lo, asciiRanges[0].Hi, target))
		} else {
			altStarts = append(altStarts, c.builder.AddSparse(asciiRanges))
		}
	}

	if len(nonASCIIRanges) > 0 {
		if coversAllNonASCII {
			multiByteStarts := c.buildUTF8NonASCIIBranches(target)
			altStarts = append(altStarts, multiByteStarts...)

			// Invalid UTF-8 bytes also satisfy a negated ASCII class, matching
			// how Go's own regexp treats a lone invalid byte as one character.
			invalidUTF8 := c.builder.AddByteRange(0x80, 0xFF, target)
			altStarts = append(altStarts, invalidUTF8)
		} else {
			for _, rng := range nonASCIIRanges {
				altStarts = append(altStarts, c.compileUTF8Range(rng[0], rng[1], target)...)
			}
		}
	}

	if len(altStarts) == 0 {
		return c.compileNoMatch()
	}
	if len(altStarts) == 1 {
		return altStarts[0], target, nil
	}

	return c.buildSplitChain(altStarts), target, nil
}

// compileUTF8Range builds NFA states for a Unicode range [lo, hi], split by
// UTF-8 byte-length boundaries (1/2/3/4-byte encodings).
func (c *Compiler) compileUTF8Range(lo, hi rune, endState StateID) []StateID {
	var starts []StateID

	if lo <= 0x7F {
		asciiHi := hi
		if asciiHi > 0x7F {
			asciiHi = 0x7F
		}
		starts = append(starts, c.compileUTF81ByteRange(lo, asciiHi, endState))
		lo = 0x80
	}
	if lo > hi {
		return starts
	}

	if lo <= 0x7FF {
		twoByteHi := hi
		if twoByteHi > 0x7FF {
			twoByteHi = 0x7FF
		}
		starts = append(starts, c.compileUTF82ByteRange(lo, twoByteHi, endState)...)
		lo = 0x800
	}
	if lo > hi {
		return starts
	}

	if lo <= 0xFFFF {
		threeByteHi := hi
		if threeByteHi > 0xFFFF {
			threeByteHi = 0xFFFF
		}
		starts = append(starts, c.compileUTF83ByteRange(lo, threeByteHi, endState)...)
		lo = 0x10000
	}
	if lo > hi {
		return starts
	}

	return append(starts, c.compileUTF84ByteRange(lo, hi, endState)...)
}

func (c *Compiler) compileUTF81ByteRange(lo, hi rune, endState StateID) StateID {
	return c.builder.AddByteRange(byte(lo), byte(hi), endState)
}

// compileUTF82ByteRange builds NFA for 2-byte UTF-8 range [lo, hi] (U+0080-U+07FF).
func (c *Compiler) compileUTF82ByteRange(lo, hi rune, endState StateID) []StateID {
	var starts []StateID

	loLead := byte(0xC0 | (lo >> 6))
	loCont := byte(0x80 | (lo & 0x3F))
	hiLead := byte(0xC0 | (hi >> 6))
	hiCont := byte(0x80 | (hi & 0x3F))

	if loLead == hiLead {
		cont := c.builder.AddByteRange(loCont, hiCont, endState)
		starts = append(starts, c.builder.AddByteRange(loLead, loLead, cont))
		return starts
	}

	cont1 := c.builder.AddByteRange(loCont, 0xBF, endState)
	starts = append(starts, c.builder.AddByteRange(loLead, loLead, cont1))

	if hiLead > loLead+1 {
		contM := c.builder.AddByteRange(0x80, 0xBF, endState)
		starts = append(starts, c.builder.AddByteRange(loLead+1, hiLead-1, contM))
	}

	cont2 := c.builder.AddByteRange(0x80, hiCont, endState)
	starts = append(starts, c.builder.AddByteRange(hiLead, hiLead, cont2))

	return starts
}

// compileUTF83ByteRange builds NFA for 3-byte UTF-8 range [lo, hi] (U+0800-U+FFFF),
// excluding the surrogate gap U+D800-U+DFFF which is invalid in UTF-8.
func (c *Compiler) compileUTF83ByteRange(lo, hi rune, endState StateID) []StateID {
	var starts []StateID

	if lo <= 0xD7FF && hi >= 0xE000 {
		starts = append(starts, c.compileUTF83ByteRangeSimple(lo, 0xD7FF, endState)...)
		starts = append(starts, c.compileUTF83ByteRangeSimple(0xE000, hi, endState)...)
		return starts
	}
	if lo >= 0xD800 && hi <= 0xDFFF {
		return starts
	}
	if lo >= 0xD800 && lo <= 0xDFFF {
		lo = 0xE000
	}
	if hi >= 0xD800 && hi <= 0xDFFF {
		hi = 0xD7FF
	}
	if lo > hi {
		return starts
	}

	return c.compileUTF83ByteRangeSimple(lo, hi, endState)
}

func (c *Compiler) compileUTF83ByteRangeSimple(lo, hi rune, endState StateID) []StateID {
	var starts []StateID

	loLead := byte(0xE0 | (lo >> 12))
	loCont1 := byte(0x80 | ((lo >> 6) & 0x3F))
	loCont2 := byte(0x80 | (lo & 0x3F))
	hiLead := byte(0xE0 | (hi >> 12))
	hiCont1 := byte(0x80 | ((hi >> 6) & 0x3F))
	hiCont2 := byte(0x80 | (hi & 0x3F))

	switch {
	case loLead == hiLead && loCont1 == hiCont1:
		cont2 := c.builder.AddByteRange(loCont2, hiCont2, endState)
		cont1 := c.builder.AddByteRange(loCont1, loCont1, cont2)
		starts = append(starts, c.builder.AddByteRange(loLead, loLead, cont1))

	case loLead == hiLead:
		for cont1Val := loCont1; cont1Val <= hiCont1; cont1Val++ {
			c2Lo := c.utf8Cont2Lo(cont1Val, loCont1, loCont2)
			c2Hi := c.utf8Cont2Hi(cont1Val, hiCont1, hiCont2)
			cont2 := c.builder.AddByteRange(c2Lo, c2Hi, endState)
			cont1 := c.builder.AddByteRange(cont1Val, cont1Val, cont2)
			starts = append(starts, c.builder.AddByteRange(loLead, loLead, cont1))
		}

	default:
		for leadVal := loLead; leadVal <= hiLead; leadVal++ {
			c1Lo := c.utf8Cont1Lo3Byte(leadVal, loLead, loCont1)
			c1Hi := c.utf8Cont1Hi3Byte(leadVal, hiLead, hiCont1)

			for cont1Val := c1Lo; cont1Val <= c1Hi; cont1Val++ {
				c2Lo := c.utf8Cont2LoFull(leadVal, cont1Val, loLead, loCont1, loCont2)
				c2Hi := c.utf8Cont2HiFull(leadVal, cont1Val, hiLead, hiCont1, hiCont2)
				cont2 := c.builder.AddByteRange(c2Lo, c2Hi, endState)
				cont1 := c.builder.AddByteRange(cont1Val, cont1Val, cont2)
				starts = append(starts, c.builder.AddByteRange(leadVal, leadVal, cont1))
			}
		}
	}

	return starts
}

// compileUTF84ByteRange builds NFA for 4-byte UTF-8 range [lo, hi] (U+10000-U+10FFFF).
func (c *Compiler) compileUTF84ByteRange(lo, hi rune, endState StateID) []StateID {
	var starts []StateID

	if hi > 0x10FFFF {
		hi = 0x10FFFF
	}
	if lo < 0x10000 {
		lo = 0x10000
	}
	if lo > hi {
		return starts
	}

	loLead := byte(0xF0 | (lo >> 18))
	hiLead := byte(0xF0 | (hi >> 18))

	for leadVal := loLead; leadVal <= hiLead; leadVal++ {
		var c1Lo, c1Hi byte
		if leadVal == 0xF0 {
			c1Lo = 0x90
		} else {
			c1Lo = 0x80
		}
		if leadVal == 0xF4 {
			c1Hi = 0x8F
		} else {
			c1Hi = 0xBF
		}

		cont3 := c.builder.AddByteRange(0x80, 0xBF, endState)
		cont2 := c.builder.AddByteRange(0x80, 0xBF, cont3)
		cont1 := c.builder.AddByteRange(c1Lo, c1Hi, cont2)
		starts = append(starts, c.builder.AddByteRange(leadVal, leadVal, cont1))
	}

	return starts
}

// buildUTF8NonASCIIBranches builds branches matching every valid UTF-8
// multi-byte (2/3/4-byte) sequence, used when a negated ASCII class like
// [^,] needs to accept all of non-ASCII Unicode.
func (c *Compiler) buildUTF8NonASCIIBranches(endState StateID) []StateID {
	var branches []StateID

	cont := func(next StateID) StateID {
		return c.builder.AddByteRange(0x80, 0xBF, next)
	}

	{
		cont1 := cont(endState)
		branches = append(branches, c.builder.AddByteRange(0xC2, 0xDF, cont1))
	}
	{
		cont2 := cont(endState)
		cont1 := c.builder.AddByteRange(0xA0, 0xBF, cont2)
		branches = append(branches, c.builder.AddByteRange(0xE0, 0xE0, cont1))
	}
	{
		cont2 := cont(endState)
		cont1 := cont(cont2)
		branches = append(branches, c.builder.AddByteRange(0xE1, 0xEC, cont1))
	}
	{
		cont2 := cont(endState)
		cont1 := c.builder.AddByteRange(0x80, 0x9F, cont2)
		branches = append(branches, c.builder.AddByteRange(0xED, 0xED, cont1))
	}
	{
		cont2 := cont(endState)
		cont1 := cont(cont2)
		branches = append(branches, c.builder.AddByteRange(0xEE, 0xEF, cont1))
	}
	{
		cont3 := cont(endState)
		cont2 := cont(cont3)
		cont1 := c.builder.AddByteRange(0x90, 0xBF, cont2)
		branches = append(branches, c.builder.AddByteRange(0xF0, 0xF0, cont1))
	}
	{
		cont3 := cont(endState)
		cont2 := cont(cont3)
		cont1 := cont(cont2)
		branches = append(branches, c.builder.AddByteRange(0xF1, 0xF3, cont1))
	}
	{
		cont3 := cont(endState)
		cont2 := cont(cont3)
		cont1 := c.builder.AddByteRange(0x80, 0x8F, cont2)
		branches = append(branches, c.builder.AddByteRange(0xF4, 0xF4, cont1))
	}

	return branches
}

func (c *Compiler) utf8Cont2Lo(cont1Val, loCont1, loCont2 byte) byte {
	if cont1Val == loCont1 {
		return loCont2
	}
	return 0x80
}

func (c *Compiler) utf8Cont2Hi(cont1Val, hiCont1, hiCont2 byte) byte {
	if cont1Val == hiCont1 {
		return hiCont2
	}
	return 0xBF
}

func (c *Compiler) utf8Cont1Lo3Byte(leadVal, loLead, loCont1 byte) byte {
	switch {
	case leadVal == loLead:
		return loCont1
	case leadVal == 0xE0:
		return 0xA0
	default:
		return 0x80
	}
}

func (c *Compiler) utf8Cont1Hi3Byte(leadVal, hiLead, hiCont1 byte) byte {
	switch {
	case leadVal == hiLead:
		return hiCont1
	case leadVal == 0xED:
		return 0x9F
	default:
		return 0xBF
	}
}

func (c *Compiler) utf8Cont2LoFull(leadVal, cont1Val, loLead, loCont1, loCont2 byte) byte {
	if leadVal == loLead && cont1Val == loCont1 {
		return loCont2
	}
	return 0x80
}

func (c *Compiler) utf8Cont2HiFull(leadVal, cont1Val, hiLead, hiCont1, hiCont2 byte) byte {
	if leadVal == hiLead && cont1Val == hiCont1 {
		return hiCont2
	}
	return 0xBF
}

// compileAnyChar compiles '.' matching any character including newlines.
func (c *Compiler) compileAnyChar() (start, end StateID, err error) {
	return c.compileUTF8Any(true)
}

// compileAnyCharNotNL compiles '.' matching any character except '\n'.
func (c *Compiler) compileAnyCharNotNL() (start, end StateID, err error) {
	return c.compileUTF8Any(false)
}

// compileUTF8Any compiles an NFA matching any single UTF-8 codepoint, with
// continuation-byte suffix sharing to keep state count down.
func (c *Compiler) compileUTF8Any(includeNL bool) (start, end StateID, err error) {
	endState := c.builder.AddEpsilon(InvalidState)
	cache := newUtf8SuffixCache()

	type byteRange struct{ lo, hi byte }
	sequences := [][]byteRange{
		{{0xC2, 0xDF}, {0x80, 0xBF}},
		{{0xE0, 0xE0}, {0xA0, 0xBF}, {0x80, 0xBF}},
		{{0xE1, 0xEC}, {0x80, 0xBF}, {0x80, 0xBF}},
		{{0xED, 0xED}, {0x80, 0x9F}, {0x80, 0xBF}},
		{{0xEE, 0xEF}, {0x80, 0xBF}, {0x80, 0xBF}},
		{{0xF0, 0xF0}, {0x90, 0xBF}, {0x80, 0xBF}, {0x80, 0xBF}},
		{{0xF1, 0xF3}, {0x80, 0xBF}, {0x80, 0xBF}, {0x80, 0xBF}},
		{{0xF4, 0xF4}, {0x80, 0x8F}, {0x80, 0xBF}, {0x80, 0xBF}},
	}

	var branches []StateID

	if includeNL {
		branches = append(branches, c.builder.AddByteRange(0x00, 0x7F, endState))
	} else {
		asciiTrans := []Transition{
			{Lo: 0x00, Hi: 0x09, Next: endState},
			{Lo: 0x0B, Hi: 0x7F, Next: endState},
		}
		branches = append(branches, c.builder.AddSparse(asciiTrans))
	}

	for _, seq := range sequences {
		target := endState
		for i := len(seq) - 1; i >= 0; i-- {
			br := seq[i]
			target = cache.getOrCreate(c.builder, target, br.lo, br.hi)
		}
		branches = append(branches, target)
	}

	// A lone invalid byte also counts as one character, matching stdlib
	// behavior for '.' over malformed UTF-8.
	invalidTrans := []Transition{
		{Lo: 0x80, Hi: 0xBF, Next: endState},
		{Lo: 0xC0, Hi: 0xC1, Next: endState},
		{Lo: 0xF5, Hi: 0xFF, Next: endState},
	}
	branches = append(branches, c.builder.AddSparse(invalidTrans))

	startState := c.buildSplitChain(branches)
	return startState, endState, nil
}

// compileConcat compiles concatenation (e.g. "abc").
func (c *Compiler) compileConcat(subs []*syntax.Regexp) (start, end StateID, err error) {
	if len(subs) == 0 {
		return c.compileEmptyMatch()
	}
	if len(subs) == 1 {
		return c.compileRegexp(subs[0])
	}

	start, end, err = c.compileRegexp(subs[0])
	if err != nil {
		return InvalidState, InvalidState, err
	}

	for i := 1; i < len(subs); i++ {
		nextStart, nextEnd, serr := c.compileRegexp(subs[i])
		if serr != nil {
			return InvalidState, InvalidState, serr
		}
		if err := c.builder.Patch(end, nextStart); err != nil {
			epsilon := c.builder.AddEpsilon(nextStart)
			if err := c.builder.Patch(end, epsilon); err != nil {
				return InvalidState, InvalidState, err
			}
		}
		end = nextEnd
	}

	return start, end, nil
}

// compileAlternate compiles alternation (e.g. "a|b|c").
func (c *Compiler) compileAlternate(subs []*syntax.Regexp) (start, end StateID, err error) {
	if len(subs) == 0 {
		return c.compileEmptyMatch()
	}
	if len(subs) == 1 {
		return c.compileRegexp(subs[0])
	}

	starts := make([]StateID, 0, len(subs))
	ends := make([]StateID, 0, len(subs))
	for _, sub := range subs {
		s, e, serr := c.compileRegexp(sub)
		if serr != nil {
			return InvalidState, InvalidState, serr
		}
		starts = append(starts, s)
		ends = append(ends, e)
	}

	split := c.buildSplitChain(starts)

	join := c.builder.AddEpsilon(InvalidState)
	for _, e := range ends {
		_ = c.builder.Patch(e, join)
	}

	return split, join, nil
}

// buildSplitChain builds a binary tree of split states for alternation.
func (c *Compiler) buildSplitChain(targets []StateID) StateID {
	if len(targets) == 1 {
		return targets[0]
	}
	if len(targets) == 2 {
		return c.builder.AddSplit(targets[0], targets[1])
	}
	right := c.buildSplitChain(targets[1:])
	return c.builder.AddSplit(targets[0], right)
}

// compileStar compiles a* (greedy) or a*? (non-greedy).
func (c *Compiler) compileStar(sub *syntax.Regexp, nonGreedy bool) (start, end StateID, err error) {
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}

	end = c.builder.AddEpsilon(InvalidState)
	var split StateID
	if nonGreedy {
		split = c.builder.AddSplit(end, subStart)
	} else {
		split = c.builder.AddQuantifierSplit(subStart, end)
	}

	if err := c.builder.Patch(subEnd, split); err != nil {
		epsilon := c.builder.AddEpsilon(split)
		if err := c.builder.Patch(subEnd, epsilon); err != nil {
			return InvalidState, InvalidState, err
		}
	}

	return split, end, nil
}

// compilePlus compiles a+ (greedy) or a+? (non-greedy).
func (c *Compiler) compilePlus(sub *syntax.Regexp, nonGreedy bool) (start, end StateID, err error) {
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}

	end = c.builder.AddEpsilon(InvalidState)
	var split StateID
	if nonGreedy {
		split = c.builder.AddSplit(end, subStart)
	} else {
		split = c.builder.AddQuantifierSplit(subStart, end)
	}

	if err := c.builder.Patch(subEnd, split); err != nil {
		epsilon := c.builder.AddEpsilon(split)
		if err := c.builder.Patch(subEnd, epsilon); err != nil {
			return InvalidState, InvalidState, err
		}
	}

	return subStart, end, nil
}

// compileQuest compiles a? (greedy) or a?? (non-greedy).
func (c *Compiler) compileQuest(sub *syntax.Regexp, nonGreedy bool) (start, end StateID, err error) {
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}

	end = c.builder.AddEpsilon(InvalidState)
	var split StateID
	if nonGreedy {
		split = c.builder.AddSplit(end, subStart)
	} else {
		split = c.builder.AddQuantifierSplit(subStart, end)
	}

	if err := c.builder.Patch(subEnd, end); err != nil {
		epsilon := c.builder.AddEpsilon(end)
		if err := c.builder.Patch(subEnd, epsilon); err != nil {
			return InvalidState, InvalidState, err
		}
	}

	return split, end, nil
}

// compileRepeat compiles a{m,n} (greedy) or a{m,n}? (non-greedy).
func (c *Compiler) compileRepeat(sub *syntax.Regexp, minCount, maxCount int, nonGreedy bool) (start, end StateID, err error) {
	if maxCount == -1 {
		return c.compileRepeatMin(sub, minCount, nonGreedy)
	}
	if minCount == maxCount {
		return c.compileRepeatExact(sub, minCount)
	}
	return c.compileRepeatRange(sub, minCount, maxCount, nonGreedy)
}

func (c *Compiler) compileRepeatExact(sub *syntax.Regexp, n int) (start, end StateID, err error) {
	if n == 0 {
		return c.compileEmptyMatch()
	}
	if n == 1 {
		return c.compileRegexp(sub)
	}

	subs := make([]*syntax.Regexp, n)
	for i := range subs {
		subs[i] = sub
	}
	return c.compileConcat(subs)
}

func (c *Compiler) compileRepeatMin(sub *syntax.Regexp, minCount int, nonGreedy bool) (start, end StateID, err error) {
	if minCount == 0 {
		return c.compileStar(sub, nonGreedy)
	}

	var subs []*syntax.Regexp
	for i := 0; i < minCount; i++ {
		subs = append(subs, sub)
	}
	starFlags := syntax.Flags(0)
	if nonGreedy {
		starFlags |= syntax.NonGreedy
	}
	subs = append(subs, &syntax.Regexp{Op: syntax.OpStar, Flags: starFlags, Sub: []*syntax.Regexp{sub}})
	return c.compileConcat(subs)
}

func (c *Compiler) compileRepeatRange(sub *syntax.Regexp, minCount, maxCount int, nonGreedy bool) (start, end StateID, err error) {
	if minCount > maxCount {
		return InvalidState, InvalidState, &CompileError{
			Err: fmt.Errorf("invalid repeat range {%d,%d}", minCount, maxCount),
		}
	}

	var subs []*syntax.Regexp
	for i := 0; i < minCount; i++ {
		subs = append(subs, sub)
	}
	questFlags := syntax.Flags(0)
	if nonGreedy {
		questFlags |= syntax.NonGreedy
	}
	for i := 0; i < maxCount-minCount; i++ {
		subs = append(subs, &syntax.Regexp{Op: syntax.OpQuest, Flags: questFlags, Sub: []*syntax.Regexp{sub}})
	}
	return c.compileConcat(subs)
}

// compileEmptyMatch compiles an epsilon transition (matches without consuming input).
func (c *Compiler) compileEmptyMatch() (start, end StateID, err error) {
	id := c.builder.AddEpsilon(InvalidState)
	return id, id, nil
}

// compileNoMatch compiles a fragment that can never reach a match state, for
// logically empty character classes like [^\S\s].
func (c *Compiler) compileNoMatch() (start, end StateID, err error) {
	id := c.builder.AddByteRange(1, 0, InvalidState) // empty range: lo > hi, never matches
	return id, id, nil
}

// encodeRune writes the UTF-8 encoding of r into buf and returns its length.
func encodeRune(buf []byte, r rune) int {
	switch {
	case r < 0x80:
		buf[0] = byte(r)
		return 1
	case r < 0x800:
		buf[0] = byte(0xC0 | (r >> 6))
		buf[1] = byte(0x80 | (r & 0x3F))
		return 2
	case r < 0x10000:
		buf[0] = byte(0xE0 | (r >> 12))
		buf[1] = byte(0x80 | ((r >> 6) & 0x3F))
		buf[2] = byte(0x80 | (r & 0x3F))
		return 3
	default:
		buf[0] = byte(0xF0 | (r >> 18))
		buf[1] = byte(0x80 | ((r >> 12) & 0x3F))
		buf[2] = byte(0x80 | ((r >> 6) & 0x3F))
		buf[3] = byte(0x80 | (r & 0x3F))
		return 4
	}
}
