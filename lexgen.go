// Package lexgen builds the compressed transition tables of a generated
// lexer from a grammar of token patterns grouped into lexical contexts.
//
// Generation runs once per grammar, single-threaded:
//   - every token pattern is translated into automaton states (lexspec)
//   - each context is closed, with token priority resolved by declaration order
//   - the states that consume input get dense indices
//   - non-ASCII moves are compressed into shared bit vector and dispatch
//     method tables
//
// Basic usage:
//
//	g, err := lexspec.LoadFile("grammar.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := lexgen.Generate(g, lexgen.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	toks, err := scanner.New(out, src).All()
//
// The Output tables are what a code emitter needs; the scanner package
// tokenizes input directly from them.
package lexgen

import (
	"slices"

	"github.com/pingcap/errors"
	"go.uber.org/zap"

	"github.com/coregx/lexgen/lexspec"
	"github.com/coregx/lexgen/nfa"
)

// Generate builds the tables of the validated grammar g. Any error aborts the
// run; no partial output is returned.
func Generate(g *lexspec.Grammar, config Config) (*Output, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := nfa.NewRegistry(
		nfa.WithLogger(logger),
		nfa.WithBlockSharing(config.BlockSharing),
	)
	compiler := lexspec.NewCompiler(g, reg, lexspec.CompilerConfig{
		MaxRecursionDepth: config.MaxRecursionDepth,
	})

	out := &Output{Initial: g.Initial}
	for _, decl := range g.Contexts {
		ctx, init, err := compiler.CompileContext(decl)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if err := ctx.Build(init); err != nil {
			return nil, errors.Annotatef(err, "build context %s", decl.Name)
		}
		out.Contexts = append(out.Contexts, newContextTables(ctx))
	}

	tables := reg.Tables()
	out.BitVectors = slices.Clone(tables.Vectors())
	out.Methods = tables.Methods()
	for _, decl := range g.Contexts {
		for _, t := range decl.Tokens {
			out.Tokens = append(out.Tokens, TokenInfo{
				Name:    t.Name,
				Ordinal: t.Ordinal(),
				Context: decl.Name,
				Skip:    t.Skip,
				Next:    t.Next,
			})
		}
	}

	logger.Debug("generated lexer tables",
		zap.Int("contexts", len(out.Contexts)),
		zap.Int("states", reg.StateCount()),
		zap.Int("bitVectors", len(out.BitVectors)),
		zap.Int("methods", len(out.Methods)),
		zap.Int("tokens", len(out.Tokens)))
	return out, nil
}
