package completion

import mysql "github.com/bytebase/mysql-parser"

// GrammarIDs centralizes every grammar-specific token and rule id the
// completion algorithm needs. A new grammar revision — or a different SQL
// dialect entirely — touches only the constructor that builds one of
// these, never the algorithm in collector.go, qualifier.go, references.go
// or assembler.go.
type GrammarIDs struct {
	// DotToken is the qualifier separator (e.g. `.`).
	DotToken int
	// OpenParenToken marks the start of a function-call argument list.
	OpenParenToken int
	// IdentifierTokens lists token types that should be treated as an
	// unquoted or quoted identifier by the qualifier analyzer.
	IdentifierTokens []int

	// NotToken/SecondaryNotToken: some grammars carry a duplicate NOT
	// token with different operator precedence (e.g. MySQL's NOT2). The
	// candidate collector folds the secondary form into the primary one.
	NotToken          int
	SecondaryNotToken int

	// IgnoredTokens are never offered as keyword completions: operators,
	// punctuation, literals, parameter markers.
	IgnoredTokens map[int]bool
	// PreferredRules are the grammar rules whose activation at the caret
	// should suppress their constituent tokens in favor of a semantic
	// completion class.
	PreferredRules map[int]bool
	// NoSeparatorRequiredFor lists tokens the candidate engine may emit
	// directly adjacent to an identifier (operators, punctuation).
	NoSeparatorRequiredFor map[int]bool

	// Rule ids consumed by the result assembler's rule dispatch (spec
	// §4.7.2). Named fields instead of a bare map so a missing binding is
	// a compile-time zero value, not a silent map-miss.
	RuleSchemaRef            int
	RuleEngineRef            int
	RuleLogfileGroupRef      int
	RuleTablespaceRef        int
	RuleSystemVariable       int
	RuleCharsetName          int
	RuleCollationName        int
	RuleUserVariable         int
	RuleLabelRef             int
	RuleRuntimeFunctionCall  int
	RuleFunctionRef          int
	RuleFunctionCall         int
	RuleProcedureRef         int
	RuleViewRef              int
	RuleTriggerRef           int
	RuleEventRef             int
	RuleTableRef             int
	RuleFilterTableRef       int
	RuleTableRefNoDb         int
	RuleTableRefWithWildcard int
	RuleTableWild            int
	RuleColumnRef            int
	RuleColumnInternalRef    int

	// IsIdentifierToken reports whether a token type can stand for an
	// (unquoted or quoted) identifier. Defaults to checking membership in
	// IdentifierTokens if left nil.
	IsIdentifierToken func(tokenType int) bool

	// Unquote strips quoting/escaping from an identifier's raw text.
	// Defaults to a backtick/double-quote/single-quote trim if left nil.
	Unquote func(text string) string

	// FROM-clause scanning tokens used by the reference extractor (C4).
	FromToken     int
	AsToken       int
	CommaToken    int
	JoinToken     int
	OnToken       int
	UsingToken    int
	OpenParToken  int
	CloseParToken int
	ClauseTerminators map[int]bool // WHERE, GROUP, HAVING, ORDER, LIMIT, UNION, ;

	// Query-type detection tokens, used only for the CreateTrigger special
	// case in the result assembler (spec §4.7.3).
	CreateToken  int
	TriggerToken int
}

func (g *GrammarIDs) isIdentifier(tokenType int) bool {
	if g.IsIdentifierToken != nil {
		return g.IsIdentifierToken(tokenType)
	}
	for _, t := range g.IdentifierTokens {
		if t == tokenType {
			return true
		}
	}
	return false
}

func (g *GrammarIDs) unquote(text string) string {
	if g.Unquote != nil {
		return g.Unquote(text)
	}
	return defaultUnquote(text)
}

func defaultUnquote(text string) string {
	if len(text) < 2 {
		return text
	}
	first, last := text[0], text[len(text)-1]
	switch {
	case first == '`' && last == '`':
		return text[1 : len(text)-1]
	case first == '"' && last == '"':
		return text[1 : len(text)-1]
	case first == '\'' && last == '\'':
		return text[1 : len(text)-1]
	default:
		return text
	}
}

// MySQLGrammar binds GrammarIDs to github.com/bytebase/mysql-parser,
// grounded on the ignored/preferred/no-separator sets the teacher wired
// directly into AutoCompletionContext.CollectCandidates.
func MySQLGrammar() *GrammarIDs {
	operatorsAndPunctuation := map[int]bool{
		mysql.MySQLLexerEQUAL_OPERATOR:            true,
		mysql.MySQLLexerASSIGN_OPERATOR:           true,
		mysql.MySQLLexerNULL_SAFE_EQUAL_OPERATOR:  true,
		mysql.MySQLLexerGREATER_OR_EQUAL_OPERATOR: true,
		mysql.MySQLLexerGREATER_THAN_OPERATOR:     true,
		mysql.MySQLLexerLESS_OR_EQUAL_OPERATOR:    true,
		mysql.MySQLLexerLESS_THAN_OPERATOR:        true,
		mysql.MySQLLexerNOT_EQUAL_OPERATOR:        true,
		mysql.MySQLLexerNOT_EQUAL2_OPERATOR:       true,
		mysql.MySQLLexerPLUS_OPERATOR:             true,
		mysql.MySQLLexerMINUS_OPERATOR:            true,
		mysql.MySQLLexerMULT_OPERATOR:             true,
		mysql.MySQLLexerDIV_OPERATOR:              true,
		mysql.MySQLLexerMOD_OPERATOR:              true,
		mysql.MySQLLexerLOGICAL_NOT_OPERATOR:      true,
		mysql.MySQLLexerBITWISE_NOT_OPERATOR:      true,
		mysql.MySQLLexerSHIFT_LEFT_OPERATOR:       true,
		mysql.MySQLLexerSHIFT_RIGHT_OPERATOR:      true,
		mysql.MySQLLexerLOGICAL_AND_OPERATOR:      true,
		mysql.MySQLLexerBITWISE_AND_OPERATOR:      true,
		mysql.MySQLLexerBITWISE_XOR_OPERATOR:      true,
		mysql.MySQLLexerLOGICAL_OR_OPERATOR:       true,
		mysql.MySQLLexerBITWISE_OR_OPERATOR:       true,
		mysql.MySQLLexerDOT_SYMBOL:                true,
		mysql.MySQLLexerCOMMA_SYMBOL:              true,
		mysql.MySQLLexerSEMICOLON_SYMBOL:          true,
		mysql.MySQLLexerCOLON_SYMBOL:              true,
		mysql.MySQLLexerOPEN_PAR_SYMBOL:           true,
		mysql.MySQLLexerCLOSE_PAR_SYMBOL:          true,
		mysql.MySQLLexerOPEN_CURLY_SYMBOL:         true,
		mysql.MySQLLexerCLOSE_CURLY_SYMBOL:        true,
		mysql.MySQLLexerPARAM_MARKER:               true,
	}

	ignored := map[int]bool{
		mysql.MySQLParserEOF:               true,
		mysql.MySQLLexerUNDERLINE_SYMBOL:   true,
		mysql.MySQLLexerAT_SIGN_SYMBOL:     true,
		mysql.MySQLLexerAT_AT_SIGN_SYMBOL:  true,
		mysql.MySQLLexerNULL2_SYMBOL:       true,
		mysql.MySQLLexerCONCAT_PIPES_SYMBOL: true,
		mysql.MySQLLexerAT_TEXT_SUFFIX:     true,
		mysql.MySQLLexerBACK_TICK_QUOTED_ID: true,
		mysql.MySQLLexerSINGLE_QUOTED_TEXT: true,
		mysql.MySQLLexerDOUBLE_QUOTED_TEXT: true,
		mysql.MySQLLexerNCHAR_TEXT:         true,
		mysql.MySQLLexerUNDERSCORE_CHARSET: true,
		mysql.MySQLLexerIDENTIFIER:         true,
		mysql.MySQLLexerINT_NUMBER:         true,
		mysql.MySQLLexerLONG_NUMBER:        true,
		mysql.MySQLLexerULONGLONG_NUMBER:   true,
		mysql.MySQLLexerDECIMAL_NUMBER:     true,
		mysql.MySQLLexerBIN_NUMBER:         true,
		mysql.MySQLLexerHEX_NUMBER:         true,
	}
	for t, v := range operatorsAndPunctuation {
		ignored[t] = v
	}

	preferred := map[int]bool{
		mysql.MySQLParserRULE_schemaRef:            true,
		mysql.MySQLParserRULE_tableRef:             true,
		mysql.MySQLParserRULE_tableRefWithWildcard: true,
		mysql.MySQLParserRULE_filterTableRef:       true,
		mysql.MySQLParserRULE_tableRefNoDb:         true,
		mysql.MySQLParserRULE_columnRef:            true,
		mysql.MySQLParserRULE_columnInternalRef:    true,
		mysql.MySQLParserRULE_tableWild:            true,
		mysql.MySQLParserRULE_functionRef:          true,
		mysql.MySQLParserRULE_functionCall:         true,
		mysql.MySQLParserRULE_runtimeFunctionCall:  true,
		mysql.MySQLParserRULE_triggerRef:           true,
		mysql.MySQLParserRULE_viewRef:              true,
		mysql.MySQLParserRULE_procedureRef:         true,
		mysql.MySQLParserRULE_logfileGroupRef:      true,
		mysql.MySQLParserRULE_tablespaceRef:        true,
		mysql.MySQLParserRULE_engineRef:            true,
		mysql.MySQLParserRULE_collationName:        true,
		mysql.MySQLParserRULE_charsetName:          true,
		mysql.MySQLParserRULE_eventRef:             true,
		mysql.MySQLParserRULE_serverRef:            true,
		mysql.MySQLParserRULE_user:                 true,
		mysql.MySQLParserRULE_userVariable:         true,
		mysql.MySQLParserRULE_systemVariable:       true,
		mysql.MySQLParserRULE_labelRef:             true,
		mysql.MySQLParserRULE_setSystemVariable:    true,
		mysql.MySQLParserRULE_parameterName:        true,
		mysql.MySQLParserRULE_procedureName:        true,
		mysql.MySQLParserRULE_identifier:           true,
		mysql.MySQLParserRULE_labelIdentifier:      true,
	}

	noSeparator := map[int]bool{}
	for t := range operatorsAndPunctuation {
		noSeparator[t] = true
	}
	delete(noSeparator, mysql.MySQLLexerOPEN_CURLY_SYMBOL)
	delete(noSeparator, mysql.MySQLLexerCLOSE_CURLY_SYMBOL)
	noSeparator[mysql.MySQLLexerOPEN_CURLY_SYMBOL] = true
	noSeparator[mysql.MySQLLexerCLOSE_CURLY_SYMBOL] = true
	noSeparator[mysql.MySQLLexerPARAM_MARKER] = true

	return &GrammarIDs{
		DotToken:       mysql.MySQLLexerDOT_SYMBOL,
		OpenParenToken: mysql.MySQLLexerOPEN_PAR_SYMBOL,
		// Real identifiers plus the non-reserved keywords MySQL's own
		// identifier grammar accepts unquoted in this position. NEW_SYMBOL/
		// OLD_SYMBOL specifically are what let DetermineSchemaTableQualifier
		// resolve `NEW.col`/`OLD.col` inside a trigger body to table "new"/
		// "old" (spec.md's CreateTrigger concrete scenario) — without them
		// the qualifier can never come back as anything but ShowSchemas|
		// ShowTables|ShowColumns, and the CreateTrigger special case in assembleColumnRule
		// is unreachable. Grounded on MySQLLexer::isIdentifier in the
		// original (mysql-code-completion.cpp's determineSchemaTableQualifier
		// depends on it); this is not the full non-reserved-keyword set that
		// function recognizes (that list runs into the hundreds and isn't
		// present in the retrieved C++ source, only its call sites), so
		// IsIdentifierToken is left overridable for a caller that needs more.
		IdentifierTokens: []int{
			mysql.MySQLLexerIDENTIFIER,
			mysql.MySQLLexerBACK_TICK_QUOTED_ID,
			mysql.MySQLLexerNEW_SYMBOL,
			mysql.MySQLLexerOLD_SYMBOL,
		},
		NotToken:                 mysql.MySQLLexerNOT_SYMBOL,
		SecondaryNotToken:        mysql.MySQLLexerNOT2_SYMBOL,
		IgnoredTokens:            ignored,
		PreferredRules:           preferred,
		NoSeparatorRequiredFor:   noSeparator,
		RuleSchemaRef:            mysql.MySQLParserRULE_schemaRef,
		RuleEngineRef:            mysql.MySQLParserRULE_engineRef,
		RuleLogfileGroupRef:      mysql.MySQLParserRULE_logfileGroupRef,
		RuleTablespaceRef:        mysql.MySQLParserRULE_tablespaceRef,
		RuleSystemVariable:       mysql.MySQLParserRULE_systemVariable,
		RuleCharsetName:          mysql.MySQLParserRULE_charsetName,
		RuleCollationName:        mysql.MySQLParserRULE_collationName,
		RuleUserVariable:         mysql.MySQLParserRULE_userVariable,
		RuleLabelRef:             mysql.MySQLParserRULE_labelRef,
		RuleRuntimeFunctionCall:  mysql.MySQLParserRULE_runtimeFunctionCall,
		RuleFunctionRef:          mysql.MySQLParserRULE_functionRef,
		RuleFunctionCall:         mysql.MySQLParserRULE_functionCall,
		RuleProcedureRef:         mysql.MySQLParserRULE_procedureRef,
		RuleViewRef:              mysql.MySQLParserRULE_viewRef,
		RuleTriggerRef:           mysql.MySQLParserRULE_triggerRef,
		RuleEventRef:             mysql.MySQLParserRULE_eventRef,
		RuleTableRef:             mysql.MySQLParserRULE_tableRef,
		RuleFilterTableRef:       mysql.MySQLParserRULE_filterTableRef,
		RuleTableRefNoDb:         mysql.MySQLParserRULE_tableRefNoDb,
		RuleTableRefWithWildcard: mysql.MySQLParserRULE_tableRefWithWildcard,
		RuleTableWild:            mysql.MySQLParserRULE_tableWild,
		RuleColumnRef:            mysql.MySQLParserRULE_columnRef,
		RuleColumnInternalRef:    mysql.MySQLParserRULE_columnInternalRef,

		FromToken:         mysql.MySQLLexerFROM_SYMBOL,
		AsToken:           mysql.MySQLLexerAS_SYMBOL,
		CommaToken:        mysql.MySQLLexerCOMMA_SYMBOL,
		JoinToken:         mysql.MySQLLexerJOIN_SYMBOL,
		OnToken:           mysql.MySQLLexerON_SYMBOL,
		UsingToken:        mysql.MySQLLexerUSING_SYMBOL,
		OpenParToken:      mysql.MySQLLexerOPEN_PAR_SYMBOL,
		CloseParToken:     mysql.MySQLLexerCLOSE_PAR_SYMBOL,
		ClauseTerminators: map[int]bool{
			mysql.MySQLLexerWHERE_SYMBOL:     true,
			mysql.MySQLLexerGROUP_SYMBOL:     true,
			mysql.MySQLLexerHAVING_SYMBOL:    true,
			mysql.MySQLLexerORDER_SYMBOL:     true,
			mysql.MySQLLexerLIMIT_SYMBOL:     true,
			mysql.MySQLLexerUNION_SYMBOL:     true,
			mysql.MySQLLexerSEMICOLON_SYMBOL: true,
		},
		CreateToken:  mysql.MySQLLexerCREATE_SYMBOL,
		TriggerToken: mysql.MySQLLexerTRIGGER_SYMBOL,
	}
}
