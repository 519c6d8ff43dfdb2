package nfa

import (
	"go.uber.org/zap"

	"github.com/coregx/lexgen/internal/conv"
)

// Registry owns every state of one generation run, across all lexical
// contexts, together with the grammar-wide compression tables.
//
// A Registry is not safe for concurrent use: index and table assignment order
// is part of the output and must stay deterministic.
type Registry struct {
	states   []*State
	contexts []*Context
	byName   map[string]*Context

	// successors memoizes the useful epsilon successors of next states
	successors map[StateID][]StateID

	tables *Tables
	logger *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for construction diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithBlockSharing enables or disables the block-level sharing of non-ASCII
// bit vectors. Disabling it yields larger but equivalent tables.
func WithBlockSharing(enabled bool) Option {
	return func(r *Registry) {
		r.tables.blockSharing = enabled
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byName:     make(map[string]*Context),
		successors: make(map[StateID][]StateID),
		tables:     NewTables(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewContext creates the lexical context called name. Creating a context
// twice returns the existing one.
func (r *Registry) NewContext(name string) *Context {
	if ctx, ok := r.byName[name]; ok {
		return ctx
	}
	ctx := &Context{
		name:       name,
		ordinal:    len(r.contexts),
		reg:        r,
		nextStates: make(map[string][]int),
		startKeys:  make(map[string]struct{}),
	}
	r.contexts = append(r.contexts, ctx)
	r.byName[name] = ctx
	return ctx
}

// Context returns the context called name, nil if none.
func (r *Registry) Context(name string) *Context {
	return r.byName[name]
}

// Contexts returns the contexts in creation order.
func (r *Registry) Contexts() []*Context {
	return r.contexts
}

// State returns the state with the given ID, nil if the ID is invalid.
func (r *Registry) State(id StateID) *State {
	if id == InvalidState || int(id) >= len(r.states) {
		return nil
	}
	return r.states[id]
}

// StateCount returns the total number of states in the registry.
func (r *Registry) StateCount() int {
	return len(r.states)
}

// Tables returns the grammar-wide compression tables.
func (r *Registry) Tables() *Tables {
	return r.tables
}

// Logger returns the registry logger.
func (r *Registry) Logger() *zap.Logger {
	return r.logger
}

func (r *Registry) newState(ctx *Context) *State {
	s := newState(ctx, StateID(conv.IntToUint32(len(r.states))))
	r.states = append(r.states, s)
	return s
}
