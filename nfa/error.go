// Package nfa builds the per-lexical-state NFAs of a generated lexer and
// turns them into compact transition tables.
//
// States are created inside a Context (one per lexical state) that belongs to
// a Registry (one per generation run). After construction the context is
// closed (OptimizeEpsilonMoves), its useful states get dense indices
// (AssignIndex) and their non-ASCII transitions are compressed into the
// grammar-wide Tables.
package nfa

import (
	"errors"
	"fmt"
)

// Common construction errors
var (
	// ErrUnwiredNext indicates a state has character transitions but no
	// destination state
	ErrUnwiredNext = errors.New("state has transitions but no next state")

	// ErrNextCycle indicates the next chain loops back onto a state that is
	// still being indexed
	ErrNextCycle = errors.New("cycle in next chain")

	// ErrForeignState indicates an operation mixed states of different
	// lexical contexts
	ErrForeignState = errors.New("state belongs to another lexical context")
)

// BuildError reports an invalid automaton detected while indexing or
// compressing it.
type BuildError struct {
	Message string
	Context string
	StateID StateID
	Err     error
}

// Error implements the error interface
func (e *BuildError) Error() string {
	var msg string
	if e.StateID != InvalidState {
		msg = fmt.Sprintf("NFA build error in %q at state %d", e.Context, e.StateID)
	} else {
		msg = fmt.Sprintf("NFA build error in %q", e.Context)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *BuildError) Unwrap() error {
	return e.Err
}

func (s *State) buildError(err error, msg string) *BuildError {
	return &BuildError{
		Message: msg,
		Context: s.ctx.name,
		StateID: s.id,
		Err:     err,
	}
}
