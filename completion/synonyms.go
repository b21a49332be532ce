package completion

import (
	"io"
	"strings"
	"sync"

	mysql "github.com/bytebase/mysql-parser"
	"gopkg.in/yaml.v3"
)

// SynonymTable maps a canonical keyword token to the alternate spellings
// MySQL accepts for it, so a completion for one form can also surface the
// others (spec.md §4.10). Grounded on the static `synonyms` map in
// mysql-code-completion.cpp's getCodeCompletionList, but made swappable
// and overridable at runtime instead of a compiled-in static, per
// spec.md's design note for a plugin-friendly keyword table.
type SynonymTable struct {
	mu    sync.RWMutex
	byKey map[int][]string
}

// synonymsFile is the shape LoadSynonyms expects: token id -> alternates.
// Token ids are grammar-specific (mysql.MySQLLexerXXX values), so the
// YAML keys are the numeric ids, not symbolic names.
type synonymsFile map[int][]string

// NewEmptySynonymTable returns a table with no entries — useful for
// callers that want to build their own from scratch via RegisterSynonym.
func NewEmptySynonymTable() *SynonymTable {
	return &SynonymTable{byKey: map[int][]string{}}
}

// DefaultSynonyms returns the table used by MySQLGrammar()-based
// collectors, a direct transcription of mysql-code-completion.cpp's
// synonyms map.
func DefaultSynonyms() *SynonymTable {
	t := NewEmptySynonymTable()
	add := func(token int, alternates ...string) {
		t.byKey[token] = append(t.byKey[token], alternates...)
	}

	add(mysql.MySQLLexerCHAR_SYMBOL, "CHARACTER")
	add(mysql.MySQLLexerNOW_SYMBOL, "CURRENT_TIMESTAMP", "LOCALTIME", "LOCALTIMESTAMP")
	add(mysql.MySQLLexerDAY_SYMBOL, "DAYOFMONTH", "SQL_TSI_DAY")
	add(mysql.MySQLLexerDECIMAL_SYMBOL, "DEC")
	add(mysql.MySQLLexerDISTINCT_SYMBOL, "DISTINCTROW")
	add(mysql.MySQLLexerCOLUMNS_SYMBOL, "FIELDS")
	add(mysql.MySQLLexerFLOAT_SYMBOL, "FLOAT4")
	add(mysql.MySQLLexerDOUBLE_SYMBOL, "FLOAT8")
	add(mysql.MySQLLexerINT_SYMBOL, "INTEGER", "INT4")
	add(mysql.MySQLLexerRELAY_THREAD_SYMBOL, "IO_THREAD")
	add(mysql.MySQLLexerSUBSTRING_SYMBOL, "MID", "SUBSTR")
	add(mysql.MySQLLexerMID_SYMBOL, "MEDIUMINT")
	add(mysql.MySQLLexerMEDIUMINT_SYMBOL, "MIDDLEINT", "INT3")
	add(mysql.MySQLLexerNDBCLUSTER_SYMBOL, "NDB")
	add(mysql.MySQLLexerREGEXP_SYMBOL, "RLIKE")
	add(mysql.MySQLLexerDATABASE_SYMBOL, "SCHEMA")
	add(mysql.MySQLLexerDATABASES_SYMBOL, "SCHEMAS")
	add(mysql.MySQLLexerUSER_SYMBOL, "SESSION_USER")
	add(mysql.MySQLLexerSTD_SYMBOL, "STDDEV")
	add(mysql.MySQLLexerVARCHAR_SYMBOL, "VARCHARACTER")
	add(mysql.MySQLLexerVARIANCE_SYMBOL, "VAR_POP")
	add(mysql.MySQLLexerTINYINT_SYMBOL, "INT1")
	add(mysql.MySQLLexerSMALLINT_SYMBOL, "INT2")
	add(mysql.MySQLLexerBIGINT_SYMBOL, "INT8")
	add(mysql.MySQLLexerFRAC_SECOND_SYMBOL, "SQL_TSI_FRAC_SECOND")
	add(mysql.MySQLLexerSECOND_SYMBOL, "SQL_TSI_SECOND")
	add(mysql.MySQLLexerMINUTE_SYMBOL, "SQL_TSI_MINUTE")
	add(mysql.MySQLLexerHOUR_SYMBOL, "SQL_TSI_HOUR")
	add(mysql.MySQLLexerWEEK_SYMBOL, "SQL_TSI_WEEK")
	add(mysql.MySQLLexerMONTH_SYMBOL, "SQL_TSI_MONTH")
	add(mysql.MySQLLexerQUARTER_SYMBOL, "SQL_TSI_QUARTER")
	add(mysql.MySQLLexerYEAR_SYMBOL, "SQL_TSI_YEAR")

	return t
}

// LoadSynonyms replaces the table's contents with the YAML document read
// from r. The expected shape is a mapping of numeric token id to a list
// of alternate spellings, letting a deployment ship its own table without
// a rebuild.
func (t *SynonymTable) LoadSynonyms(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	var parsed synonymsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.byKey = map[int][]string{}
	for token, alternates := range parsed {
		t.byKey[token] = append([]string{}, alternates...)
	}
	return nil
}

// RegisterSynonym adds one more alternate spelling for token, keeping any
// already registered and skipping a case-insensitive duplicate.
func (t *SynonymTable) RegisterSynonym(token int, alternate string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, existing := range t.byKey[token] {
		if strings.EqualFold(existing, alternate) {
			return
		}
	}
	t.byKey[token] = append(t.byKey[token], alternate)
}

// Alternates returns the registered alternate spellings for token, or nil
// if there are none.
func (t *SynonymTable) Alternates(token int) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.byKey[token]) == 0 {
		return nil
	}
	out := make([]string, len(t.byKey[token]))
	copy(out, t.byKey[token])
	return out
}
