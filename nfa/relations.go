package nfa

import (
	"github.com/bits-and-blooms/bitset"
)

// ByteSelector picks the part of the alphabet a dispatch query is about.
type ByteSelector int

const (
	// SelectNonASCII selects codepoints >= 128 (dispatch methods)
	SelectNonASCII ByteSelector = -1
	// SelectLowByte selects ASCII codepoints 0-63
	SelectLowByte ByteSelector = 0
	// SelectHighByte selects ASCII codepoints 64-127
	SelectHighByte ByteSelector = 1
)

// String returns a human-readable representation of the selector
func (b ByteSelector) String() string {
	switch b {
	case SelectNonASCII:
		return "NonASCII"
	case SelectLowByte:
		return "LowByte"
	case SelectHighByte:
		return "HighByte"
	default:
		return "Unknown"
	}
}

// halfHasBit reports whether bs has a bit in the ASCII half chosen by sel.
func halfHasBit(bs *bitset.BitSet, sel ByteSelector) bool {
	i, ok := bs.NextSet(0)
	if !ok {
		return false
	}
	if sel == SelectLowByte {
		return i < 64
	}
	if i >= 64 {
		return i < asciiLimit
	}
	i, ok = bs.NextSet(64)
	return ok && i < asciiLimit
}

// sameBits compares two bitsets regardless of their allocated length.
func sameBits(a, b *bitset.BitSet) bool {
	return a.SymmetricDifferenceCardinality(b) == 0
}

// IsNeeded reports whether the state takes part in the dispatch selected by
// sel: it has a dispatch method, or ASCII moves in the selected half.
func (s *State) IsNeeded(sel ByteSelector) bool {
	if sel == SelectNonASCII {
		return s.nonASCIIMethod != -1
	}
	return halfHasBit(s.ascii, sel)
}

// RangesIntersect reports whether a non-ASCII range of a overlaps one of b.
func RangesIntersect(a, b *State) bool {
	i, j := 0, 0
	for i < len(a.ranges) && j < len(b.ranges) {
		ra, rb := a.ranges[i], b.ranges[j]
		if ra.Lo <= rb.Hi && rb.Lo <= ra.Hi {
			return true
		}
		if ra.Hi < rb.Hi {
			i++
		} else {
			j++
		}
	}
	return false
}

// EpsilonSuccessorsIntersect reports whether a and b share an epsilon
// successor.
func EpsilonSuccessorsIntersect(a, b *State) bool {
	return a.epsilon.IntersectionCardinality(b.epsilon) > 0
}

// IsEquivalentTransition reports whether a and b can share one generated
// branch: both moves accept the same token, match the same characters in the
// part of the alphabet chosen by sel, and continue with the same non-empty
// successor set.
func IsEquivalentTransition(a, b *State, sel ByteSelector) bool {
	an, bn := a.Next(), b.Next()
	if an == nil || bn == nil {
		return false
	}
	if an.token != bn.token {
		return false
	}
	if sel == SelectNonASCII {
		if a.nonASCIIMethod != b.nonASCIIMethod {
			return false
		}
	} else if !sameBits(a.ascii, b.ascii) {
		return false
	}
	if an.epsilon.None() || bn.epsilon.None() {
		return false
	}
	return sameBits(an.epsilon, bn.epsilon)
}

// IsOnlySignificantState reports whether no other indexed state needed for
// the dispatch chosen by sel competes with s on the same characters, in which
// case the dispatch for s needs no separate function.
func (s *State) IsOnlySignificantState(sel ByteSelector) bool {
	for _, t := range s.ctx.indexed {
		if t == s || !t.IsNeeded(sel) {
			continue
		}
		if sel == SelectNonASCII {
			if RangesIntersect(s, t) {
				return false
			}
			continue
		}
		if halfHasBit(s.ascii.Intersection(t.ascii), sel) {
			return false
		}
	}
	return true
}

// NextIntersects reports whether the epsilon successors of s overlap those of
// the next state of any other indexed state with a dispatch method.
func (s *State) NextIntersects() bool {
	for _, t := range s.ctx.indexed {
		if t == s || t.nonASCIIMethod == -1 {
			continue
		}
		if next := t.Next(); next != nil && EpsilonSuccessorsIntersect(s, next) {
			return true
		}
	}
	return false
}

// EquivalentStates returns the indexed states whose transitions are
// equivalent to those of s (see IsEquivalentTransition) and that are not yet
// in handled. The returned states are added to handled, keyed by index.
func (c *Context) EquivalentStates(s *State, sel ByteSelector, handled *bitset.BitSet) []*State {
	var out []*State
	for _, t := range c.indexed {
		if handled.Test(uint(t.index)) || !IsEquivalentTransition(s, t, sel) {
			continue
		}
		handled.Set(uint(t.index))
		out = append(out, t)
	}
	return out
}
