package nfa

import (
	"fmt"
	"math"
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// StateID uniquely identifies a state within a Registry.
// IDs are handed out in creation order and never reused.
type StateID uint32

// InvalidState marks an unset state reference (for example a next state that
// has not been wired yet).
const InvalidState StateID = 0xFFFFFFFF

// NoKind is the kind reported for a move that does not accept any token.
const NoKind = math.MaxInt32

// asciiLimit is the first codepoint handled by the non-ASCII tables.
const asciiLimit = 128

// Token is the token definition accepted by a final state.
// Lower ordinals are declared earlier and win ties.
type Token struct {
	Name    string
	Ordinal int
}

// Range is a closed interval of non-ASCII codepoints.
type Range struct {
	Lo rune
	Hi rune
}

// LowByteEntry pairs a block number (high byte of the codepoint) with the
// index of the bit vector holding that block's low-byte set.
type LowByteEntry struct {
	Block  int `json:"block"`
	Vector int `json:"vector"`
}

type closureStatus uint8

const (
	closureNotStarted closureStatus = iota
	closureInProgress
	closureDone
)

// State is one node of the NFA of a lexical context.
//
// A state consumes one character from its ASCII set or its non-ASCII ranges
// and moves to next; epsilon moves lead to other states of the same context
// without consuming input.
type State struct {
	id  StateID
	ctx *Context

	token *Token
	final bool

	epsilon *bitset.BitSet
	ascii   *bitset.BitSet
	ranges  []Range
	next    StateID

	closure  closureStatus
	index    int
	indexing bool

	nonASCIIMethod int
	blockIndices   []int
	lowByte        []LowByteEntry
	referencedBy   int
}

func newState(ctx *Context, id StateID) *State {
	return &State{
		id:             id,
		ctx:            ctx,
		epsilon:        bitset.New(0),
		ascii:          bitset.New(asciiLimit),
		next:           InvalidState,
		index:          -1,
		nonASCIIMethod: -1,
	}
}

// ID returns the registry-wide identifier of the state.
func (s *State) ID() StateID {
	return s.id
}

// Index returns the dense index within the context, or -1 if the state has
// not been indexed (states without transitions never are).
func (s *State) Index() int {
	return s.index
}

// Context returns the lexical context owning the state.
func (s *State) Context() *Context {
	return s.ctx
}

// Token returns the token type of the state, nil if none.
func (s *State) Token() *Token {
	return s.token
}

// SetToken sets the token type of the state.
func (s *State) SetToken(tok *Token) {
	s.token = tok
}

// IsFinal reports whether reaching this state accepts a token.
func (s *State) IsFinal() bool {
	return s.final
}

// SetFinal marks the state as accepting.
func (s *State) SetFinal(final bool) {
	s.final = final
}

// Next returns the state reached after consuming a character, or nil if the
// next state has not been wired.
func (s *State) Next() *State {
	if s.next == InvalidState {
		return nil
	}
	return s.ctx.reg.states[s.next]
}

// SetNext wires the destination of the state's character transitions.
// Panics if next belongs to another context.
func (s *State) SetNext(next *State) {
	s.mustShareContext(next)
	s.next = next.id
}

// AddEpsilon adds a zero-width move to other.
// Panics if other belongs to another context.
func (s *State) AddEpsilon(other *State) {
	s.mustShareContext(other)
	s.epsilon.Set(uint(other.id))
}

func (s *State) mustShareContext(other *State) {
	if other == nil || other.ctx != s.ctx {
		panic(fmt.Sprintf("state %d: %v", s.id, ErrForeignState))
	}
}

// AddChar adds a transition on a single codepoint.
func (s *State) AddChar(c rune) {
	s.AddRange(c, c)
}

// AddRange adds a transition on every codepoint in [lo, hi].
// The ASCII part goes to the ASCII set, the rest becomes a non-ASCII range.
// Panics if hi < lo or lo < 0: the caller translated a malformed class.
func (s *State) AddRange(lo, hi rune) {
	if hi < lo || lo < 0 {
		panic(fmt.Sprintf("nfa: invalid range [%d, %d] on state %d", lo, hi, s.id))
	}
	for c := lo; c <= hi && c < asciiLimit; c++ {
		s.ascii.Set(uint(c))
	}
	lo = max(lo, asciiLimit)
	if hi >= lo {
		s.addNonASCII(Range{Lo: lo, Hi: hi})
	}
}

// addNonASCII inserts r keeping ranges sorted, disjoint and merged.
func (s *State) addNonASCII(r Range) {
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Hi+1 >= r.Lo
	})
	j := i
	for j < len(s.ranges) && s.ranges[j].Lo <= r.Hi+1 {
		r.Lo = min(r.Lo, s.ranges[j].Lo)
		r.Hi = max(r.Hi, s.ranges[j].Hi)
		j++
	}
	s.ranges = append(s.ranges[:i], append([]Range{r}, s.ranges[j:]...)...)
}

// Ranges returns a copy of the non-ASCII ranges.
func (s *State) Ranges() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// ASCIIMoves returns the ASCII move set as two 64-bit words (codepoints
// 0-63 and 64-127).
func (s *State) ASCIIMoves() [2]uint64 {
	var words [2]uint64
	for i, ok := s.ascii.NextSet(0); ok && i < asciiLimit; i, ok = s.ascii.NextSet(i + 1) {
		words[i>>6] |= 1 << (i & 63)
	}
	return words
}

// HasASCIIMoves reports whether any ASCII codepoint moves out of the state.
func (s *State) HasASCIIMoves() bool {
	return s.ascii.Any()
}

// HasTransitions reports whether the state consumes any character.
func (s *State) HasTransitions() bool {
	return s.ascii.Any() || len(s.ranges) > 0
}

// IsUseful reports whether the state is accepting or consumes a character.
func (s *State) IsUseful() bool {
	return s.final || s.HasTransitions()
}

// Epsilons returns the epsilon successors in ID order.
func (s *State) Epsilons() []*State {
	out := make([]*State, 0, s.epsilon.Count())
	for i, ok := s.epsilon.NextSet(0); ok; i, ok = s.epsilon.NextSet(i + 1) {
		out = append(out, s.ctx.reg.states[i])
	}
	return out
}

// EpsilonCount returns the number of epsilon successors.
func (s *State) EpsilonCount() int {
	return int(s.epsilon.Count())
}

// HasEpsilon reports whether other is an epsilon successor of s.
func (s *State) HasEpsilon(other *State) bool {
	return s.epsilon.Test(uint(other.id))
}

// CanMove reports whether c moves out of the state.
func (s *State) CanMove(c rune) bool {
	if c < 0 {
		return false
	}
	if c < asciiLimit {
		return s.ascii.Test(uint(c))
	}
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Hi >= c
	})
	return i < len(s.ranges) && s.ranges[i].Lo <= c
}

// FirstValidPos returns the position of the first character of in[start:]
// that moves out of the state, or len(in) if there is none.
func (s *State) FirstValidPos(in []rune, start int) int {
	for i := start; i < len(in); i++ {
		if s.CanMove(in[i]) {
			return i
		}
	}
	return len(in)
}

// MoveFrom appends the epsilon successors of next to into when c moves out of
// the state and returns the kind accepted after the move, or NoKind.
func (s *State) MoveFrom(c rune, into []*State) ([]*State, int) {
	if !s.CanMove(c) {
		return into, NoKind
	}
	if next := s.Next(); next != nil {
		into = append(into, next.Epsilons()...)
	}
	return into, s.Kind()
}

// Kind returns the ordinal of the token accepted after consuming a character
// from this state, or NoKind.
func (s *State) Kind() int {
	next := s.Next()
	if next == nil || next.token == nil {
		return NoKind
	}
	return next.token.Ordinal
}

// NonASCIIMethod returns the index of the shared non-ASCII dispatch method,
// or -1 if the state has no non-ASCII moves (or they were not generated).
func (s *State) NonASCIIMethod() int {
	return s.nonASCIIMethod
}

// BlockIndices returns the bit vector indices of shared block groups, as
// (membership, content) pairs.
func (s *State) BlockIndices() []int {
	return s.blockIndices
}

// LowByteEntries returns the blocks compressed individually.
func (s *State) LowByteEntries() []LowByteEntry {
	return s.lowByte
}

// ReferencedBy returns how many successor sets mention the state.
func (s *State) ReferencedBy() int {
	return s.referencedBy
}

// String returns a human-readable representation of the state
func (s *State) String() string {
	tok := "-"
	if s.token != nil {
		tok = fmt.Sprintf("%s#%d", s.token.Name, s.token.Ordinal)
	}
	return fmt.Sprintf("State(%d, ctx=%s, index=%d, final=%v, token=%s, eps=%d, ranges=%d)",
		s.id, s.ctx.name, s.index, s.final, tok, s.epsilon.Count(), len(s.ranges))
}
