package grammar

import "errors"

// ErrGrammarMissing is returned by Compile when the requested scope name is
// not present in the syntax table. Callers that want degraded highlighting
// (a single default-styled span per line) can catch this and substitute an
// empty Grammar rather than propagating the error; the bundle registry
// does this (see bundle.Registry.Grammar).
var ErrGrammarMissing = errors.New("grammar: scope not found in syntax table")
