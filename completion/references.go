package completion

import (
	"strings"

	"github.com/antlr4-go/antlr/v4"
)

// TableReference is a single table appearance in a FROM clause, including
// any alias. Identity is structural: two references with equal
// schema/table/alias (case-insensitively) are the same reference.
type TableReference struct {
	Schema string
	Table  string
	Alias  string
}

// DisplayName returns the alias if set, otherwise the table name — the
// precedence rule spec.md §3 assigns for showing a reference to the user.
func (r TableReference) DisplayName() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.Table
}

func sameReference(a, b TableReference) bool {
	return strings.EqualFold(a.Schema, b.Schema) &&
		strings.EqualFold(a.Table, b.Table) &&
		strings.EqualFold(a.Alias, b.Alias)
}

// ReferenceStack is an ordered sequence of per-scope reference vectors,
// innermost last. A new vector is pushed on entering a sub-select or other
// naming scope and popped on exit. A reference is visible to the caret iff
// it is on the stack at the moment the caret is parsed.
type ReferenceStack struct {
	levels [][]TableReference
}

// NewReferenceStack starts with one (root) level, mirroring the root-level
// vector AutoCompletionContext pushes before parsing begins.
func NewReferenceStack() *ReferenceStack {
	return &ReferenceStack{levels: [][]TableReference{{}}}
}

func (s *ReferenceStack) push() {
	s.levels = append(s.levels, []TableReference{})
}

// pop discards the innermost level: used when the scope being closed is a
// sub-select the caret is not inside, so its references aren't visible
// outside it.
func (s *ReferenceStack) pop() {
	if len(s.levels) > 1 {
		s.levels = s.levels[:len(s.levels)-1]
	}
}

// mergeUp folds the innermost level into the one below it instead of
// discarding it: used when the scope being closed is the one the caret
// is actually inside, so column completion run against the accumulated
// snapshot still sees that scope's own references.
func (s *ReferenceStack) mergeUp() {
	if len(s.levels) <= 1 {
		return
	}
	top := s.levels[len(s.levels)-1]
	below := len(s.levels) - 2
	s.levels[below] = append(s.levels[below], top...)
	s.levels = s.levels[:len(s.levels)-1]
}

func (s *ReferenceStack) addCurrent(ref TableReference) {
	top := len(s.levels) - 1
	s.levels[top] = append(s.levels[top], ref)
}

// Snapshot flattens every level on the stack into one sequence, in
// outermost-first order. The stack itself is left untouched, so a second
// snapshot can follow.
func (s *ReferenceStack) Snapshot() []TableReference {
	var flat []TableReference
	for _, level := range s.levels {
		flat = append(flat, level...)
	}
	return flat
}

// ReferenceSnapshot is the flat, deduplicated reference list used by the
// column-completion path (spec.md §3). Duplicate (schema, table, alias)
// triples, compared case-insensitively, are suppressed.
type ReferenceSnapshot struct {
	refs []TableReference
}

// Append merges more references into the snapshot, skipping case
// insensitive structural duplicates already present.
func (s *ReferenceSnapshot) Append(refs ...TableReference) {
	for _, r := range refs {
		duplicate := false
		for _, existing := range s.refs {
			if sameReference(existing, r) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			s.refs = append(s.refs, r)
		}
	}
}

func (s *ReferenceSnapshot) References() []TableReference {
	return s.refs
}

// extractReferences walks the whole statement from its first token,
// collecting FROM-clause table references, and returns the ones visible
// to a column completion at caretTokenIndex: every reference at the top
// level plus, for exactly the one (possibly nested) sub-select scope that
// contains the caret, that scope's own references too. Any other
// sub-select's references are scoped to itself and discarded once it
// closes — an inner query sees outer FROM tables, the reverse is never
// true. Pass a caretTokenIndex beyond the last token to disable scoping
// (every top-level reference is returned, sub-selects are always
// resolved as unrelated). Grounded on spec.md §4.4; the equivalent
// listener body in mysql-code-completion.cpp (TableRefListener) is an
// empty stub, so this is a from-scratch implementation of the documented
// algorithm, fail-soft on any token sequence it doesn't recognize.
func extractReferences(scanner *Scanner, grammar *GrammarIDs, caretTokenIndex int) []TableReference {
	restore := scanner.Save()
	defer restore()

	scanner.Seek(0)
	stack := NewReferenceStack()
	extractFromLevel(scanner, grammar, stack, caretTokenIndex)
	return stack.Snapshot()
}

// extractTriggerTargetTable scans the whole statement for a
// `CREATE TRIGGER name time event ON tbl_name` header and returns tbl_name.
// A trigger body's `ON tbl_name` never appears in a FROM clause, so
// extractFromLevel never sees it; assembleColumnRule's CreateTrigger branch
// still needs it to resolve NEW.col/OLD.col (spec.md's trigger scenario), so
// this is a second, independent scan for that one header shape. The
// original assembler comments that "the first reference in the list ... is
// the table to which this trigger belongs", but its own populating
// mechanism (mysql-code-completion.cpp's collectRemainingTableReferences,
// backed by an empty TableRefListener stub) never actually runs, so there's
// no original behavior to mirror here beyond the trigger_tail grammar shape
// itself (CREATE TRIGGER name time event ON tbl_name FOR EACH ROW ...).
func extractTriggerTargetTable(scanner *Scanner, grammar *GrammarIDs) (TableReference, bool) {
	restore := scanner.Save()
	defer restore()

	scanner.Seek(0)
	if !scanner.Is(grammar.CreateToken) {
		return TableReference{}, false
	}

	sawTrigger := false
	for {
		if scanner.Is(grammar.TriggerToken) {
			sawTrigger = true
		}
		if sawTrigger && scanner.Is(grammar.OnToken) {
			if !scanner.Next(true) || !grammar.isIdentifier(scanner.TokenType()) {
				return TableReference{}, false
			}
			ref, ok := parseOneTableReference(scanner, grammar)
			ref.Alias = "" // trigger headers never alias their target table
			return ref, ok
		}
		if grammar.ClauseTerminators[scanner.TokenType()] || scanner.TokenType() == antlr.TokenEOF {
			return TableReference{}, false
		}
		if !scanner.Next(true) {
			return TableReference{}, false
		}
	}
}

// extractFromLevel scans tokens at the scanner's current nesting level,
// recognizing FROM clauses and recursing into parenthesized sub-selects.
func extractFromLevel(scanner *Scanner, grammar *GrammarIDs, stack *ReferenceStack, caretTokenIndex int) {
	for {
		switch {
		case scanner.TokenType() == antlr.TokenEOF:
			return
		case scanner.Is(grammar.CloseParToken):
			return
		case scanner.Is(grammar.FromToken):
			if !scanner.Next(true) {
				return
			}
			if !parseTableReferenceList(scanner, grammar, stack, caretTokenIndex) {
				return
			}
			continue
		case scanner.Is(grammar.OpenParToken):
			if !closeScope(scanner, grammar, stack, caretTokenIndex) {
				return
			}
			continue
		}

		if !scanner.Next(true) {
			return
		}
	}
}

// closeScope consumes a full `( ... )` sub-select scope: pushes a new
// reference level, recurses, then either merges that level into the
// parent (if caretTokenIndex fell within the parens) or discards it.
// Returns whether the scope closed on an actual close-paren token with
// the scanner advanced past it (false on token-stream exhaustion or
// other malformed input).
func closeScope(scanner *Scanner, grammar *GrammarIDs, stack *ReferenceStack, caretTokenIndex int) bool {
	scopeStart := scanner.TokenIndex()
	ok := scanner.Next(true)
	if !ok {
		return false
	}

	stack.push()
	extractFromLevel(scanner, grammar, stack, caretTokenIndex)
	scopeEnd := scanner.TokenIndex() // on the close paren, or wherever the walk gave up.

	closed := scanner.Is(grammar.CloseParToken)
	if closed {
		closed = scanner.Next(true)
	}

	if caretTokenIndex >= scopeStart && caretTokenIndex <= scopeEnd {
		stack.mergeUp()
	} else {
		stack.pop()
	}

	return closed
}

// parseTableReferenceList parses table references (with JOIN/comma
// sequencing) until the clause terminates, per spec.md §4.4. Returns false
// on a token-stream end or unrecognized shape — callers stop extraction at
// that point; partial reference lists are acceptable (spec.md §7).
func parseTableReferenceList(scanner *Scanner, grammar *GrammarIDs, stack *ReferenceStack, caretTokenIndex int) bool {
	for {
		if scanner.TokenType() == antlr.TokenEOF {
			return false
		}
		if grammar.ClauseTerminators[scanner.TokenType()] || scanner.Is(grammar.CloseParToken) {
			return true
		}

		switch {
		case scanner.Is(grammar.OpenParToken):
			closedCleanly := closeScope(scanner, grammar, stack, caretTokenIndex)
			if !closedCleanly {
				return false
			}
			alias := consumeOptionalAlias(scanner, grammar)
			if alias != "" {
				stack.addCurrent(TableReference{Alias: alias})
			}

		case grammar.isIdentifier(scanner.TokenType()):
			ref, ok := parseOneTableReference(scanner, grammar)
			if !ok {
				return false
			}
			stack.addCurrent(ref)

		case scanner.Is(grammar.JoinToken), scanner.Is(grammar.CommaToken):
			if !scanner.Next(true) {
				return false
			}

		case scanner.Is(grammar.OnToken), scanner.Is(grammar.UsingToken):
			if !skipConditionClause(scanner, grammar) {
				return false
			}

		default:
			// Could be INNER/LEFT/RIGHT/CROSS before JOIN, or anything
			// else we don't special-case: skip forward and keep scanning
			// for the next reference or terminator.
			if !scanner.Next(true) {
				return false
			}
		}
	}
}

// skipConditionClause skips a JOIN's `ON <expr>` or `USING (<cols>)`
// clause, tracking paren nesting so a parenthesized boolean expression in
// an ON clause doesn't get mistaken for the end of an outer subquery.
// Leaves the scanner positioned on the boundary token (JOIN, comma, a
// clause terminator, or the enclosing close paren) without consuming it.
func skipConditionClause(scanner *Scanner, grammar *GrammarIDs) bool {
	if !scanner.Next(true) {
		return false
	}

	depth := 0
	for {
		switch {
		case scanner.TokenType() == antlr.TokenEOF:
			return false
		case scanner.Is(grammar.OpenParToken):
			depth++
		case scanner.Is(grammar.CloseParToken):
			if depth == 0 {
				return true
			}
			depth--
		case depth == 0 && (grammar.ClauseTerminators[scanner.TokenType()] ||
			scanner.Is(grammar.JoinToken) || scanner.Is(grammar.CommaToken)):
			return true
		}

		if !scanner.Next(true) {
			return false
		}
	}
}

// parseOneTableReference consumes `id`, `id.id`, optionally followed by
// `AS? id` for an alias.
func parseOneTableReference(scanner *Scanner, grammar *GrammarIDs) (TableReference, bool) {
	first := grammar.unquote(scanner.TokenText())
	if !scanner.Next(true) {
		return TableReference{Table: first}, true
	}

	var ref TableReference
	if scanner.Is(grammar.DotToken) {
		if !scanner.Next(true) || !grammar.isIdentifier(scanner.TokenType()) {
			return TableReference{}, false
		}
		second := grammar.unquote(scanner.TokenText())
		ref = TableReference{Schema: first, Table: second}
		scanner.Next(true)
	} else {
		ref = TableReference{Table: first}
	}

	ref.Alias = consumeOptionalAlias(scanner, grammar)
	return ref, true
}

// consumeOptionalAlias consumes an optional `AS? id` at the scanner's
// current position, leaving the scanner on the token right after the
// alias (or unchanged if there is none).
func consumeOptionalAlias(scanner *Scanner, grammar *GrammarIDs) string {
	restore := scanner.Save()

	if scanner.Is(grammar.AsToken) {
		if !scanner.Next(true) {
			restore()
			return ""
		}
	}

	if grammar.isIdentifier(scanner.TokenType()) &&
		!grammar.ClauseTerminators[scanner.TokenType()] &&
		!scanner.Is(grammar.CommaToken) && !scanner.Is(grammar.JoinToken) {
		alias := grammar.unquote(scanner.TokenText())
		scanner.Next(true)
		return alias
	}

	restore()
	return ""
}
