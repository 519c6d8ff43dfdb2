package nfa

import (
	"go.uber.org/zap"
)

// ComputeEpsilonClosure folds the epsilon closure of the state into its
// epsilon moves. Only the first call does any work; later calls, including
// re-entrant ones through an epsilon cycle, return false.
//
// Every directly reachable state is closed first. The state then adopts the
// token of a successor with a smaller ordinal (earlier rules win ties on
// equal-length matches) and takes over the useful successors of each
// successor. A state with transitions is its own successor.
//
// It returns true if the epsilon moves or the token changed.
func (s *State) ComputeEpsilonClosure() bool {
	if s.closure != closureNotStarted {
		return false
	}
	s.closure = closureInProgress

	changed := false
	direct := s.epsilon.Clone()
	for i, ok := direct.NextSet(0); ok; i, ok = direct.NextSet(i + 1) {
		t := s.ctx.reg.states[i]
		t.ComputeEpsilonClosure()
		if s.absorb(t) {
			changed = true
		}
	}
	if s.HasTransitions() && !s.epsilon.Test(uint(s.id)) {
		s.epsilon.Set(uint(s.id))
		changed = true
	}

	s.closure = closureDone
	return changed
}

// absorb merges the token priority and the useful successors of t into s.
func (s *State) absorb(t *State) bool {
	changed := false
	if t.token != nil && (s.token == nil || t.token.Ordinal < s.token.Ordinal) {
		s.token = t.token
		changed = true
	}
	for j, ok := t.epsilon.NextSet(0); ok; j, ok = t.epsilon.NextSet(j + 1) {
		if s.epsilon.Test(j) {
			continue
		}
		if s.ctx.reg.states[j].IsUseful() {
			s.epsilon.Set(j)
			changed = true
		}
	}
	return changed
}

// OptimizeEpsilonMoves closes every state of the context.
//
// Closures are mutually recursive through epsilon cycles, so after the
// one-shot pass the successors are re-absorbed until no state changes. The
// result does not depend on state order. Finally, successors without
// transitions are dropped: they only carried token and reachability
// information, which has been propagated by now.
func (c *Context) OptimizeEpsilonMoves() {
	for _, s := range c.states {
		s.ComputeEpsilonClosure()
	}

	passes := 0
	for changed := true; changed; passes++ {
		changed = false
		for _, s := range c.states {
			direct := s.epsilon.Clone()
			for i, ok := direct.NextSet(0); ok; i, ok = direct.NextSet(i + 1) {
				if StateID(i) == s.id {
					continue
				}
				if s.absorb(c.reg.states[i]) {
					changed = true
				}
			}
		}
	}

	pruned := 0
	for _, s := range c.states {
		for i, ok := s.epsilon.NextSet(0); ok; i, ok = s.epsilon.NextSet(i + 1) {
			if !c.reg.states[i].HasTransitions() {
				s.epsilon.Clear(i)
				pruned++
			}
		}
	}

	c.reg.logger.Debug("closed epsilon moves",
		zap.String("context", c.name),
		zap.Int("passes", passes),
		zap.Int("pruned", pruned))
}
