package lexspec

import (
	"fmt"

	"github.com/pingcap/errors"
)

// Grammar validation errors
var (
	// ErrNoContexts indicates a grammar without any lexical context
	ErrNoContexts = errors.New("grammar declares no lexical context")

	// ErrDuplicateContext indicates two contexts with the same name
	ErrDuplicateContext = errors.New("duplicate lexical context")

	// ErrDuplicateToken indicates two tokens with the same name
	ErrDuplicateToken = errors.New("duplicate token")

	// ErrMissingName indicates a context or token without a name
	ErrMissingName = errors.New("missing name")

	// ErrUnknownContext indicates a reference to an undeclared context
	ErrUnknownContext = errors.New("unknown lexical context")

	// ErrMatchesEmpty indicates a token pattern that accepts the empty string
	ErrMatchesEmpty = errors.New("pattern matches the empty string")

	// ErrUnsupported indicates a pattern operator a lexer cannot express,
	// such as anchors and word boundaries
	ErrUnsupported = errors.New("unsupported pattern operator")

	// ErrTooComplex indicates a pattern nested deeper than the compiler allows
	ErrTooComplex = errors.New("pattern too complex")
)

// GrammarError reports a problem with one context or token of a grammar.
type GrammarError struct {
	Context string
	Token   string
	Err     error
}

// Error implements the error interface
func (e *GrammarError) Error() string {
	switch {
	case e.Token != "":
		return fmt.Sprintf("grammar error in context %q, token %q: %v", e.Context, e.Token, e.Err)
	case e.Context != "":
		return fmt.Sprintf("grammar error in context %q: %v", e.Context, e.Err)
	default:
		return fmt.Sprintf("grammar error: %v", e.Err)
	}
}

// Unwrap returns the underlying error
func (e *GrammarError) Unwrap() error {
	return e.Err
}
