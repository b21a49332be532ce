package completion

// ObjectFlags drives which cache lookups the result assembler runs for a
// qualified identifier completion.
type ObjectFlags int

const (
	// For 3-part identifiers (schema.table.column).
	ShowSchemas ObjectFlags = 1 << iota
	ShowTables
	ShowColumns

	// For 2-part identifiers (schema.object).
	ShowFirst
	ShowSecond
)

func (f ObjectFlags) has(bit ObjectFlags) bool {
	return f&bit != 0
}

// DetermineQualifier inspects the token stream around the caret to decide
// what part of a dotted identifier of at most two parts (`a` or `a.b`) has
// already been typed. Grounded on determineQualifier in
// mysql-code-completion.cpp; see spec.md §4.2.1 for the five recognized
// caret positions.
func DetermineQualifier(scanner *Scanner, grammar *GrammarIDs) (ObjectFlags, string) {
	position := scanner.TokenIndex()
	restore := scanner.Save()
	defer restore()

	if scanner.TokenChannel() != 0 {
		scanner.Next(true)
	}

	if !scanner.Is(grammar.DotToken) && !grammar.isIdentifier(scanner.TokenType()) {
		// At the end of an incomplete identifier; step back so the tests
		// below land on real content.
		scanner.Previous(true)
	}

	// Go left until something unrelated to an id, or at most one dot.
	if position > 0 {
		if grammar.isIdentifier(scanner.TokenType()) && scanner.LookBack(true) == grammar.DotToken {
			scanner.Previous(true)
		}
		if scanner.Is(grammar.DotToken) && grammar.isIdentifier(scanner.LookBack(true)) {
			scanner.Previous(true)
		}
	}

	// Now on the leading identifier or dot (if there's no leading id).
	var temp string
	if grammar.isIdentifier(scanner.TokenType()) {
		temp = grammar.unquote(scanner.TokenText())
		scanner.Next(true)
	}

	if !scanner.Is(grammar.DotToken) || position <= scanner.TokenIndex() {
		return ShowFirst | ShowSecond, ""
	}

	return ShowSecond, temp
}

// DetermineSchemaTableQualifier is the three-part variant of
// DetermineQualifier, used for column references (schema.table.column) and
// table_wild (schema.table.*). Grounded on determineSchemaTableQualifier in
// mysql-code-completion.cpp; see spec.md §4.2.2 for the emission table.
//
// When only one dot has been typed it is unknowable whether the left side
// names a schema or a table, so both the returned schema and table carry
// the same text — callers try both, falling back to the default schema.
func DetermineSchemaTableQualifier(scanner *Scanner, grammar *GrammarIDs) (ObjectFlags, string, string) {
	position := scanner.TokenIndex()
	restore := scanner.Save()
	defer restore()

	if scanner.TokenChannel() != 0 {
		scanner.Next(true)
	}

	if !scanner.Is(grammar.DotToken) && !grammar.isIdentifier(scanner.TokenType()) {
		scanner.Previous(true)
	}

	// Go left until something unrelated to an id, or at most two dots.
	if position > 0 {
		if grammar.isIdentifier(scanner.TokenType()) && scanner.LookBack(true) == grammar.DotToken {
			scanner.Previous(true)
		}
		if scanner.Is(grammar.DotToken) && grammar.isIdentifier(scanner.LookBack(true)) {
			scanner.Previous(true)

			if scanner.LookBack(true) == grammar.DotToken {
				scanner.Previous(true)
				if grammar.isIdentifier(scanner.LookBack(true)) {
					scanner.Previous(true)
				}
			}
		}
	}

	var temp string
	if grammar.isIdentifier(scanner.TokenType()) {
		temp = grammar.unquote(scanner.TokenText())
		scanner.Next(true)
	}

	if !scanner.Is(grammar.DotToken) || position <= scanner.TokenIndex() {
		return ShowSchemas | ShowTables | ShowColumns, "", ""
	}

	scanner.Next(true) // Skip the dot.
	schema := temp
	table := temp // Ambiguous: until a third part shows up, schema == table.

	if grammar.isIdentifier(scanner.TokenType()) {
		second := grammar.unquote(scanner.TokenText())
		scanner.Next(true)

		if !scanner.Is(grammar.DotToken) || position <= scanner.TokenIndex() {
			// Schema only valid for tables; columns fall back to the
			// default schema. `table` intentionally stays == schema here:
			// with only one dot seen we can't tell schema.table from
			// table.column, so the caller tries both.
			return ShowTables | ShowColumns, schema, table
		}

		table = second
		return ShowColumns, schema, table
	}

	return ShowTables | ShowColumns, schema, table
}
