package nfa

import (
	"sort"
	"strconv"
	"strings"
)

// SuccessorSet is the sorted list of dense indices a state can continue with
// after an epsilon closure. Key is the canonical text form, shared by every
// state with the same set; the zero value stands for "no successors".
type SuccessorSet struct {
	Key     string
	Indices []int
}

// IsEmpty reports whether the set has no successors.
func (s SuccessorSet) IsEmpty() bool {
	return len(s.Indices) == 0
}

func successorKey(indices []int) string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, idx := range indices {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(idx))
	}
	sb.WriteString(" }")
	return sb.String()
}

// AssignIndex gives the state a dense index in its context if it has
// transitions. The next state is indexed first, and the successor set of next
// is materialised, which in turn indexes every member of it. States without
// transitions never get an index.
//
// Calling AssignIndex on an indexed state is a no-op.
func (s *State) AssignIndex() error {
	if s.index != -1 {
		return nil
	}
	next := s.Next()
	if next == nil && s.HasTransitions() {
		return s.buildError(ErrUnwiredNext, "")
	}

	s.indexing = true
	defer func() { s.indexing = false }()

	if next != nil && next.index == -1 {
		if next.indexing && next.nextChainLoops() {
			return next.buildError(ErrNextCycle, "")
		}
		if err := next.AssignIndex(); err != nil {
			return err
		}
	}

	// The successor walk below may have indexed s already.
	if s.index == -1 && s.HasTransitions() {
		s.index = len(s.ctx.indexed)
		s.ctx.indexed = append(s.ctx.indexed, s)
		if _, err := next.SuccessorSet(); err != nil {
			return err
		}
	}
	return nil
}

// nextChainLoops reports whether following next through unindexed states
// leads back to s.
func (s *State) nextChainLoops() bool {
	limit := len(s.ctx.reg.states)
	for t, steps := s.Next(), 0; t != nil && t.index == -1 && steps <= limit; t, steps = t.Next(), steps+1 {
		if t == s {
			return true
		}
	}
	return false
}

// SuccessorSet returns the indices of the useful epsilon successors of the
// state, indexing them as needed. Must be called after the context has been
// closed with OptimizeEpsilonMoves.
//
// The member list is memoized per state and identical sets share one index
// array in the context. Each call counts as one more reference to every
// member (see ReferencedBy).
func (s *State) SuccessorSet() (SuccessorSet, error) {
	if s.epsilon.None() {
		return SuccessorSet{}, nil
	}
	reg := s.ctx.reg
	members, ok := reg.successors[s.id]
	if !ok {
		for i, ok := s.epsilon.NextSet(0); ok; i, ok = s.epsilon.NextSet(i + 1) {
			if reg.states[i].HasTransitions() {
				members = append(members, StateID(i))
			}
		}
		reg.successors[s.id] = members
	}
	if len(members) == 0 {
		return SuccessorSet{}, nil
	}

	indices := make([]int, 0, len(members))
	for _, id := range members {
		m := reg.states[id]
		if m.index == -1 {
			if err := m.AssignIndex(); err != nil {
				return SuccessorSet{}, err
			}
		}
		m.referencedBy++
		indices = append(indices, m.index)
	}
	sort.Ints(indices)

	key := successorKey(indices)
	if shared, ok := s.ctx.nextStates[key]; ok {
		indices = shared
	} else {
		s.ctx.nextStates[key] = indices
	}
	return SuccessorSet{Key: key, Indices: indices}, nil
}

// Successors returns the memoized useful successors of the state, or nil if
// SuccessorSet has not been computed for it.
func (s *State) Successors() []*State {
	ids := s.ctx.reg.successors[s.id]
	out := make([]*State, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.ctx.reg.states[id])
	}
	return out
}

// IndexedSuccessors returns the successor set already materialised for the
// state, without counting a new reference. It is empty when SuccessorSet was
// never computed for the state.
func (s *State) IndexedSuccessors() SuccessorSet {
	ids := s.ctx.reg.successors[s.id]
	if len(ids) == 0 {
		return SuccessorSet{}
	}
	indices := make([]int, 0, len(ids))
	for _, id := range ids {
		indices = append(indices, s.ctx.reg.states[id].index)
	}
	sort.Ints(indices)
	key := successorKey(indices)
	if shared, ok := s.ctx.nextStates[key]; ok {
		indices = shared
	}
	return SuccessorSet{Key: key, Indices: indices}
}
