package completion

import (
	"fmt"
	"strings"

	"github.com/antlr4-go/antlr/v4"
)

// QueryType is a coarse classification of the statement under the caret,
// used only to drive the CreateTrigger special case in column completion
// (spec.md §4.7.3). Grounded on MySQLQueryType/determineQueryType in
// mysql-code-completion.cpp; only the one value the assembler actually
// branches on is modeled, the rest collapse to QueryTypeUnknown.
type QueryType int

const (
	QueryTypeUnknown QueryType = iota
	QueryTypeCreateTrigger
)

// Options configures one GetCodeCompletionList invocation.
type Options struct {
	// DefaultSchema is used whenever a qualifier is required but the user
	// hasn't typed one yet.
	DefaultSchema string
	// UppercaseKeywords renders keyword completions in upper case;
	// otherwise they are lower cased, mirroring base::tolower(entry) in
	// the original.
	UppercaseKeywords bool
	// FunctionNames is the list of runtime (builtin) function names
	// offered whenever the grammar's RuleRuntimeFunctionCall is a
	// preferred-rule candidate at the caret.
	FunctionNames []string
}

// Request bundles everything one completion call needs.
type Request struct {
	Parser      antlr.Parser
	ParseTree   antlr.ParserRuleContext // result of running the grammar's entry rule
	Grammar     *GrammarIDs
	Cache       CacheAdapter
	Synonyms    *SynonymTable
	// CaretLine is 0-based (spec.md §6's caret_line), unlike the scanner
	// and the underlying ANTLR token stream, which are 1-based. Converted
	// internally before touching the scanner.
	CaretLine   int
	CaretOffset int
	Options     Options
	// Logger receives one message for the only genuinely fatal failure
	// mode (an internal panic, e.g. a corrupted parser state) before it's
	// surfaced as an empty result. Defaults to a no-op: this module ships
	// no concrete logger, only the seam a caller wires into their own
	// (log, zap, zerolog, ...).
	Logger func(format string, args ...any)
}

// GetCodeCompletionList is the module's public entry point: given a
// parsed statement and a caret position, it returns the ranked,
// deduplicated list of completions valid at that position. It never
// panics outward — any internal failure is logged and converted to an
// empty result plus a non-nil error, per spec.md §7's fail-soft mandate.
func GetCodeCompletionList(req Request) (result []CompletionEntry, err error) {
	logger := req.Logger
	if logger == nil {
		logger = func(string, ...any) {}
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("completion: internal failure: %v", r)
			logger("completion: internal failure: %v", r)
		}
	}()

	tokenStream, ok := req.Parser.GetTokenStream().(*antlr.CommonTokenStream)
	if !ok {
		return nil, fmt.Errorf("completion: parser token stream is not buffered")
	}

	grammar := req.Grammar
	if grammar == nil {
		grammar = MySQLGrammar()
	}
	synonyms := req.Synonyms
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	cache := req.Cache
	if cache == nil {
		cache = NewMemoryCache()
	}

	scanner := NewScanner(tokenStream)
	// The scanner and the token stream it walks are 1-based (ANTLR's own
	// convention); Request.CaretLine is documented as 0-based (spec.md
	// §6), so the caller's line needs the +1 the original C++ assembler
	// applies before ever touching position-based lookup.
	if !scanner.AdvanceToPosition(req.CaretLine+1, req.CaretOffset) {
		return nil, nil
	}
	caretTokenIndex := scanner.TokenIndex()

	collector := NewCandidateCollector(req.Parser, grammar)
	candidates := collector.Collect(caretTokenIndex, req.ParseTree)

	references := extractReferences(scanner, grammar, caretTokenIndex)

	queryType := detectQueryType(scanner, grammar)
	if queryType == QueryTypeCreateTrigger {
		if target, ok := extractTriggerTargetTable(scanner, grammar); ok {
			references = append([]TableReference{target}, references...)
		}
	}

	a := &assembler{
		grammar:       grammar,
		cache:         cache,
		synonyms:      synonyms,
		scanner:       scanner,
		defaultSchema: req.Options.DefaultSchema,
		references:    references,
		queryType:     queryType,
		symbolicNames: req.Parser.GetSymbolicNames(),
		functionNames: req.Options.FunctionNames,

		keywordEntries:         newCompletionSet(KindKeyword),
		runtimeFunctionEntries: newCompletionSet(KindFunction),
		schemaEntries:          newCompletionSet(KindSchema),
		tableEntries:           newCompletionSet(KindTable),
		viewEntries:            newCompletionSet(KindView),
		columnEntries:          newCompletionSet(KindColumn),
		functionEntries:        newCompletionSet(KindRoutine),
		procedureEntries:       newCompletionSet(KindRoutine),
		triggerEntries:         newCompletionSet(KindTrigger),
		eventEntries:           newCompletionSet(KindEvent),
		engineEntries:          newCompletionSet(KindEngine),
		logfileGroupEntries:    newCompletionSet(KindLogfileGroup),
		tablespaceEntries:      newCompletionSet(KindTablespace),
		systemVarEntries:       newCompletionSet(KindSystemVar),
		userVarEntries:         newCompletionSet(KindUserVar),
		charsetEntries:         newCompletionSet(KindCharset),
		collationEntries:       newCompletionSet(KindCollation),
	}

	a.assembleTokens(candidates.Tokens, req.Options.UppercaseKeywords)
	a.assembleRules(candidates.Rules)

	return a.finalOrder(), nil
}

// detectQueryType scans the whole token stream (not just up to the caret)
// for a leading `CREATE ... TRIGGER`, the only classification the
// assembler needs. Fail-soft: any unexpected shape just yields
// QueryTypeUnknown.
func detectQueryType(scanner *Scanner, grammar *GrammarIDs) QueryType {
	restore := scanner.Save()
	defer restore()

	scanner.Seek(0)
	if !scanner.Is(grammar.CreateToken) {
		return QueryTypeUnknown
	}
	for {
		if scanner.Is(grammar.TriggerToken) {
			return QueryTypeCreateTrigger
		}
		if grammar.ClauseTerminators[scanner.TokenType()] || scanner.TokenType() == antlr.TokenEOF {
			return QueryTypeUnknown
		}
		if !scanner.Next(true) {
			return QueryTypeUnknown
		}
	}
}

// assembler holds the per-invocation completion-set groups the result is
// built from, mirroring the local CompletionSet variables in
// getCodeCompletionList.
type assembler struct {
	grammar       *GrammarIDs
	cache         CacheAdapter
	synonyms      *SynonymTable
	scanner       *Scanner
	defaultSchema string
	references    []TableReference
	queryType     QueryType
	symbolicNames []string
	functionNames []string

	keywordEntries         *completionSet
	runtimeFunctionEntries *completionSet
	schemaEntries          *completionSet
	tableEntries           *completionSet
	viewEntries            *completionSet
	columnEntries          *completionSet
	functionEntries        *completionSet
	procedureEntries       *completionSet
	triggerEntries         *completionSet
	eventEntries           *completionSet
	engineEntries          *completionSet
	logfileGroupEntries    *completionSet
	tablespaceEntries      *completionSet
	systemVarEntries       *completionSet
	userVarEntries         *completionSet
	charsetEntries         *completionSet
	collationEntries       *completionSet
}

// assembleTokens implements spec.md §4.7.1: every raw token candidate
// becomes either a runtime-function entry (if immediately followed by an
// open paren) or a keyword entry, using the "following tokens" hint to
// append trailing keywords (e.g. "IS NOT NULL"). A following token in
// GrammarIDs.NoSeparatorRequiredFor (punctuation like `{`/`}`, a param
// marker) is glued directly onto entry instead of space-joined, per
// spec.md §4.9 and c3.noSeparatorRequiredFor in mysql-code-completion.cpp.
func (a *assembler) assembleTokens(tokens map[int][]int, uppercase bool) {
	for tokenType, following := range tokens {
		entry := a.displayNameFor(tokenType)

		isFunctionCall := len(following) > 0 && following[0] == a.grammar.OpenParenToken
		if isFunctionCall {
			a.runtimeFunctionEntries.add(strings.ToLower(entry) + "()")
			continue
		}

		for _, sub := range following {
			if a.grammar.NoSeparatorRequiredFor[sub] {
				entry += a.displayNameFor(sub)
			} else {
				entry += " " + a.displayNameFor(sub)
			}
		}

		if !uppercase {
			entry = strings.ToLower(entry)
		} else {
			entry = strings.ToUpper(entry)
		}
		a.keywordEntries.add(entry)

		for _, alt := range a.synonyms.Alternates(tokenType) {
			if uppercase {
				alt = strings.ToUpper(alt)
			} else {
				alt = strings.ToLower(alt)
			}
			a.keywordEntries.add(alt)
		}
	}
}

// displayNameFor renders a token's vocabulary name, stripping a
// grammar's `_SYMBOL` naming convention (e.g. "SELECT_SYMBOL" ->
// "SELECT") or unquoting it if there is none (e.g. "'('" -> "("), per
// spec.md §4.7.1.
func (a *assembler) displayNameFor(tokenType int) string {
	name := ""
	if tokenType >= 0 && tokenType < len(a.symbolicNames) {
		name = a.symbolicNames[tokenType]
	}
	if name == "" {
		return fmt.Sprintf("<%d>", tokenType)
	}
	if strings.HasSuffix(name, "_SYMBOL") {
		return strings.TrimSuffix(name, "_SYMBOL")
	}
	return defaultUnquote(name)
}

// assembleRules implements spec.md §4.7.2/§4.7.3: dispatch every
// preferred-rule candidate to the completion classes it feeds, using the
// scanner (repositioned to the caret before each rule) to resolve
// qualifiers. Grounded on the switch in getCodeCompletionList.
func (a *assembler) assembleRules(rules map[int][]int) {
	g := a.grammar

	for rule := range rules {
		switch rule {
		case g.RuleRuntimeFunctionCall:
			for _, name := range a.functionNames {
				a.runtimeFunctionEntries.add(name + "()")
			}

		case g.RuleFunctionRef, g.RuleFunctionCall:
			flags, qualifier := a.qualifier()
			if qualifier == "" {
				a.runtimeFunctionEntries.addAll(mapSuffix(a.cache.MatchingUDFs(""), "()"))
			}
			if flags.has(ShowFirst) {
				a.schemaEntries.addAll(a.cache.MatchingSchemas(""))
			}
			if flags.has(ShowSecond) {
				schema := qualifier
				if schema == "" {
					schema = a.defaultSchema
				}
				a.functionEntries.addAll(a.cache.MatchingFunctions(schema, ""))
			}

		case g.RuleEngineRef:
			a.engineEntries.addAll(a.cache.MatchingEngines(""))

		case g.RuleSchemaRef:
			a.schemaEntries.addAll(a.cache.MatchingSchemas(""))

		case g.RuleProcedureRef:
			flags, qualifier := a.qualifier()
			if flags.has(ShowFirst) {
				a.schemaEntries.addAll(a.cache.MatchingSchemas(""))
			}
			if flags.has(ShowSecond) {
				schema := qualifier
				if schema == "" {
					schema = a.defaultSchema
				}
				a.procedureEntries.addAll(a.cache.MatchingProcedures(schema, ""))
			}

		case g.RuleTableRefWithWildcard:
			flags, schema, table := a.schemaTableQualifier()
			if flags.has(ShowSchemas) {
				a.schemaEntries.addAll(a.cache.MatchingSchemas(""))
			}
			effectiveSchema := schema
			if effectiveSchema == "" {
				effectiveSchema = a.defaultSchema
			}
			if flags.has(ShowTables) {
				_ = table
				a.tableEntries.addAll(a.cache.MatchingTables(effectiveSchema, ""))
				a.viewEntries.addAll(a.cache.MatchingViews(effectiveSchema, ""))
			}

		case g.RuleTableRef, g.RuleFilterTableRef, g.RuleTableRefNoDb:
			flags, qualifier := a.qualifier()
			if flags.has(ShowFirst) {
				a.schemaEntries.addAll(a.cache.MatchingSchemas(""))
			}
			if flags.has(ShowSecond) {
				schema := qualifier
				if schema == "" {
					schema = a.defaultSchema
				}
				a.tableEntries.addAll(a.cache.MatchingTables(schema, ""))
				a.viewEntries.addAll(a.cache.MatchingViews(schema, ""))
			}

		case g.RuleTableWild, g.RuleColumnRef, g.RuleColumnInternalRef:
			a.assembleColumnRule(rule)

		case g.RuleTriggerRef:
			flags, qualifier := a.qualifier()
			if flags.has(ShowFirst) {
				// Fixed from the original: table names belong in
				// tableEntries, not schemaEntries.
				a.tableEntries.addAll(a.cache.MatchingTables(a.defaultSchema, ""))
			}
			if flags.has(ShowSecond) {
				a.triggerEntries.addAll(a.cache.MatchingTriggers(a.defaultSchema, qualifier, ""))
			}

		case g.RuleViewRef:
			flags, qualifier := a.qualifier()
			if flags.has(ShowFirst) {
				a.schemaEntries.addAll(a.cache.MatchingSchemas(""))
			}
			if flags.has(ShowSecond) {
				schema := qualifier
				if schema == "" {
					schema = a.defaultSchema
				}
				a.viewEntries.addAll(a.cache.MatchingViews(schema, ""))
			}

		case g.RuleLogfileGroupRef:
			a.logfileGroupEntries.addAll(a.cache.MatchingLogfileGroups(""))

		case g.RuleTablespaceRef:
			a.tablespaceEntries.addAll(a.cache.MatchingTablespaces(""))

		case g.RuleUserVariable:
			a.userVarEntries.add("<user variable>")

		case g.RuleLabelRef:
			a.userVarEntries.add("<block labels>")

		case g.RuleSystemVariable:
			a.systemVarEntries.addAll(a.cache.MatchingVariables(""))

		case g.RuleCharsetName:
			a.charsetEntries.addAll(a.cache.MatchingCharsets(""))

		case g.RuleCollationName:
			a.collationEntries.addAll(a.cache.MatchingCollations(""))

		case g.RuleEventRef:
			flags, qualifier := a.qualifier()
			if flags.has(ShowFirst) {
				a.schemaEntries.addAll(a.cache.MatchingSchemas(""))
			}
			if flags.has(ShowSecond) {
				schema := qualifier
				if schema == "" {
					schema = a.defaultSchema
				}
				a.eventEntries.addAll(a.cache.MatchingEvents(schema, ""))
			}
		}
	}
}

// assembleColumnRule implements spec.md §4.7.3 in full, including the
// CreateTrigger old/new special case.
func (a *assembler) assembleColumnRule(rule int) {
	g := a.grammar
	flags, schema, table := a.schemaTableQualifier()

	if flags.has(ShowSchemas) {
		a.schemaEntries.addAll(a.cache.MatchingSchemas(""))
	}

	schemas := map[string]bool{}
	if schema != "" {
		schemas[schema] = true
	} else {
		for _, ref := range a.references {
			if ref.Schema != "" {
				schemas[ref.Schema] = true
			}
		}
	}
	if len(schemas) == 0 {
		schemas[a.defaultSchema] = true
	}

	if flags.has(ShowTables) {
		for s := range schemas {
			a.tableEntries.addAll(a.cache.MatchingTables(s, ""))
		}
		if rule == g.RuleColumnRef {
			for s := range schemas {
				a.viewEntries.addAll(a.cache.MatchingViews(s, ""))
			}
			for _, ref := range a.references {
				if (schema == "" && ref.Schema == "") || schemas[ref.Schema] {
					a.tableEntries.add(ref.DisplayName())
				}
			}
		}
	}

	if flags.has(ShowColumns) {
		if schema == table {
			// Ambiguous qualifier (see DetermineSchemaTableQualifier):
			// also try the default schema.
			schemas[a.defaultSchema] = true
		}

		tables := map[string]bool{}
		if table != "" {
			tables[table] = true
			for _, ref := range a.references {
				if strings.EqualFold(table, ref.Alias) {
					tables[ref.Table] = true
					break
				}
			}
		} else if len(a.references) > 0 && rule == g.RuleColumnRef {
			for _, ref := range a.references {
				tables[ref.Table] = true
			}
		}

		if len(tables) > 0 {
			for s := range schemas {
				for t := range tables {
					a.columnEntries.addAll(a.cache.MatchingColumns(s, t, ""))
				}
			}
		}

		if a.queryType == QueryTypeCreateTrigger && len(a.references) > 0 &&
			(strings.EqualFold(table, "old") || strings.EqualFold(table, "new")) {
			for s := range schemas {
				a.columnEntries.addAll(a.cache.MatchingColumns(s, a.references[0].Table, ""))
			}
		}
	}
}

// qualifier repositions the scanner to the caret and runs
// DetermineQualifier. Each rule branch calls this independently, mirroring
// scanner.pop()/scanner.push() around every switch case in the original —
// here achieved by DetermineQualifier's own Save/restore semantics.
func (a *assembler) qualifier() (ObjectFlags, string) {
	return DetermineQualifier(a.scanner, a.grammar)
}

func (a *assembler) schemaTableQualifier() (ObjectFlags, string, string) {
	return DetermineSchemaTableQualifier(a.scanner, a.grammar)
}

func mapSuffix(names []string, suffix string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n + suffix
	}
	return out
}

// finalOrder concatenates every completion-set group in the fixed
// emission order spec.md §4.7.4 mandates: most likely and most specific
// first.
func (a *assembler) finalOrder() []CompletionEntry {
	groups := []*completionSet{
		a.keywordEntries,
		a.columnEntries,
		a.tableEntries,
		a.viewEntries,
		a.schemaEntries,
		a.functionEntries,
		a.procedureEntries,
		a.triggerEntries,
		a.eventEntries,
		a.engineEntries,
		a.logfileGroupEntries,
		a.tablespaceEntries,
		a.charsetEntries,
		a.collationEntries,
		a.userVarEntries,
		a.runtimeFunctionEntries,
		a.systemVarEntries,
	}

	var result []CompletionEntry
	for _, group := range groups {
		result = append(result, group.entriesSorted()...)
	}
	return result
}
