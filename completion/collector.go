package completion

import "github.com/antlr4-go/antlr/v4"

// CandidateCollector wires a CandidateEngine to a GrammarIDs binding: it
// configures the engine's ignored-token and preferred-rule sets and folds
// grammar quirks (like MySQL's duplicate NOT token) out of the raw
// candidate collection before the result assembler sees it. Grounded on
// AutoCompletionContext.CollectCandidates in the teacher's
// mysql-completer.go, generalized away from a hardcoded mysql import.
type CandidateCollector struct {
	grammar *GrammarIDs
	engine  *CodeCompletionCore
}

// NewCandidateCollector builds a collector bound to parser and grammar.
func NewCandidateCollector(parser antlr.Parser, grammar *GrammarIDs) *CandidateCollector {
	engine := NewCodeCompletionCore(parser)
	engine.IgnoredTokens = grammar.IgnoredTokens
	engine.PreferredRules = grammar.PreferredRules
	return &CandidateCollector{grammar: grammar, engine: engine}
}

// Collect runs the engine for the given caret token index and parse
// context, then folds the grammar's secondary NOT token into the primary
// one so callers only ever see a single NOT candidate.
func (c *CandidateCollector) Collect(caretTokenIndex int, context antlr.ParserRuleContext) *CandidatesCollection {
	collection := c.engine.CollectCandidates(caretTokenIndex, context)
	c.foldSecondaryNot(collection)
	return collection
}

// foldSecondaryNot merges the grammar's secondary NOT token (MySQL's NOT2,
// used at a different operator precedence) into the primary one, so callers
// only ever see a single NOT candidate.
func (c *CandidateCollector) foldSecondaryNot(collection *CandidatesCollection) {
	if c.grammar.SecondaryNotToken == 0 {
		return
	}
	following, ok := collection.Tokens[c.grammar.SecondaryNotToken]
	if !ok {
		return
	}
	if _, exists := collection.Tokens[c.grammar.NotToken]; !exists {
		collection.Tokens[c.grammar.NotToken] = following
	}
	delete(collection.Tokens, c.grammar.SecondaryNotToken)
}
