package nfa

import (
	"go.uber.org/zap"
)

// Context holds the automaton of one lexical state.
type Context struct {
	name    string
	ordinal int
	reg     *Registry

	// states in creation order
	states []*State
	// indexed holds the useful states in index order
	indexed []*State

	nextStates map[string][]int
	startSets  []SuccessorSet
	startKeys  map[string]struct{}
}

// Name returns the name of the lexical state.
func (c *Context) Name() string {
	return c.name
}

// Ordinal returns the position of the context in its registry.
func (c *Context) Ordinal() int {
	return c.ordinal
}

// Registry returns the registry owning the context.
func (c *Context) Registry() *Registry {
	return c.reg
}

// NewState creates a state in this context.
func (c *Context) NewState() *State {
	s := c.reg.newState(c)
	c.states = append(c.states, s)
	return s
}

// States returns all states in creation order.
func (c *Context) States() []*State {
	return c.states
}

// Indexed returns the indexed states in index order.
func (c *Context) Indexed() []*State {
	return c.indexed
}

// IndexedState returns the state with the given dense index, nil if out of range.
func (c *Context) IndexedState(index int) *State {
	if index < 0 || index >= len(c.indexed) {
		return nil
	}
	return c.indexed[index]
}

// SuccessorArray returns the index array registered under key.
func (c *Context) SuccessorArray(key string) ([]int, bool) {
	arr, ok := c.nextStates[key]
	return arr, ok
}

// SuccessorArrayCount returns the number of distinct successor sets.
func (c *Context) SuccessorArrayCount() int {
	return len(c.nextStates)
}

// StartSets returns the distinct start-state successor sets in
// registration order.
func (c *Context) StartSets() []SuccessorSet {
	return c.startSets
}

// AddStartState registers the successor set of start as an entry point of
// the context, indexing its members as needed. Sets already registered are
// not repeated.
func (c *Context) AddStartState(start *State) error {
	if start.ctx != c {
		return &BuildError{Context: c.name, StateID: start.id, Err: ErrForeignState}
	}
	set, err := start.SuccessorSet()
	if err != nil {
		return err
	}
	if _, ok := c.startKeys[set.Key]; ok {
		return nil
	}
	c.startKeys[set.Key] = struct{}{}
	c.startSets = append(c.startSets, set)
	return nil
}

// AssignIndices indexes every state in creation order.
func (c *Context) AssignIndices() error {
	for _, s := range c.states {
		if err := s.AssignIndex(); err != nil {
			return err
		}
	}
	return nil
}

// GenerateNonASCIIMoves compresses the non-ASCII moves of every indexed
// state, in index order, into the registry tables.
func (c *Context) GenerateNonASCIIMoves() {
	t := c.reg.tables
	vectors, methods := len(t.vectors), len(t.methods)
	for _, s := range c.indexed {
		s.GenerateNonASCIIMoves(t)
	}
	c.reg.logger.Debug("compressed non-ASCII moves",
		zap.String("context", c.name),
		zap.Int("newVectors", len(t.vectors)-vectors),
		zap.Int("newMethods", len(t.methods)-methods))
}

// Build runs the whole pipeline on the context: closure, indexing of every
// state, registration of the given start states and compression.
func (c *Context) Build(starts ...*State) error {
	c.OptimizeEpsilonMoves()
	if err := c.AssignIndices(); err != nil {
		return err
	}
	for _, s := range starts {
		if err := c.AddStartState(s); err != nil {
			return err
		}
	}
	c.GenerateNonASCIIMoves()
	c.reg.logger.Debug("built lexical context",
		zap.String("context", c.name),
		zap.Int("states", len(c.states)),
		zap.Int("indexed", len(c.indexed)),
		zap.Int("successorSets", len(c.nextStates)),
		zap.Int("startSets", len(c.startSets)))
	return nil
}
