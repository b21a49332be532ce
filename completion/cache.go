package completion

import (
	"sort"
	"strings"
	"sync"
)

// CacheAdapter is the narrow interface the completion engine uses to query
// a live cache of schema object names. Implementations must be safe for
// concurrent use: the core may call into the same cache from multiple
// completion invocations running on different goroutines (spec.md §5).
// The prefix parameter is reserved for future server-side filtering — the
// core always calls with an empty prefix today.
type CacheAdapter interface {
	MatchingSchemas(prefix string) []string
	MatchingTables(schema, prefix string) []string
	MatchingViews(schema, prefix string) []string
	MatchingColumns(schema, table, prefix string) []string
	MatchingProcedures(schema, prefix string) []string
	MatchingFunctions(schema, prefix string) []string
	MatchingUDFs(prefix string) []string
	MatchingTriggers(schema, table, prefix string) []string
	MatchingEvents(schema, prefix string) []string
	MatchingEngines(prefix string) []string
	MatchingLogfileGroups(prefix string) []string
	MatchingTablespaces(prefix string) []string
	MatchingVariables(prefix string) []string
	MatchingCharsets(prefix string) []string
	MatchingCollations(prefix string) []string
}

// MemoryCache is a small, thread-safe, in-memory CacheAdapter. It isn't the
// "background object-names cache" spec.md §1 declares out of scope (that
// one would be fed by live introspection of a server); it's a fixture
// shape useful standalone for small deployments and for tests, grounded on
// the catalog layout in tentacle-scylla-scql/pkg/schema (keyspace → table →
// column, adapted here to schema → table → column).
type MemoryCache struct {
	mu sync.RWMutex

	schemas   map[string]*schemaEntry
	udfs      []string
	engines   []string
	logfile   []string
	tablespace []string
	variables []string
	charsets  []string
	collations []string
}

type schemaEntry struct {
	tables     map[string][]string // table -> columns
	views      map[string][]string
	procedures []string
	functions  []string
	triggers   map[string][]string // table -> triggers
	events     []string
}

// NewMemoryCache returns an empty cache. Use the Add* methods to populate
// it before wiring it into GetCodeCompletionList.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{schemas: map[string]*schemaEntry{}}
}

func (c *MemoryCache) schemaFor(name string) *schemaEntry {
	e, ok := c.schemas[name]
	if !ok {
		e = &schemaEntry{
			tables:   map[string][]string{},
			views:    map[string][]string{},
			triggers: map[string][]string{},
		}
		c.schemas[name] = e
	}
	return e
}

func (c *MemoryCache) AddSchema(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemaFor(name)
}

func (c *MemoryCache) AddTable(schema, table string, columns ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.schemaFor(schema)
	e.tables[table] = append(e.tables[table], columns...)
}

func (c *MemoryCache) AddView(schema, view string, columns ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.schemaFor(schema)
	e.views[view] = append(e.views[view], columns...)
}

func (c *MemoryCache) AddProcedure(schema, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.schemaFor(schema)
	e.procedures = append(e.procedures, name)
}

func (c *MemoryCache) AddFunction(schema, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.schemaFor(schema)
	e.functions = append(e.functions, name)
}

func (c *MemoryCache) AddTrigger(schema, table, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.schemaFor(schema)
	e.triggers[table] = append(e.triggers[table], name)
}

func (c *MemoryCache) AddEvent(schema, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.schemaFor(schema)
	e.events = append(e.events, name)
}

func (c *MemoryCache) AddUDF(name string)         { c.mu.Lock(); defer c.mu.Unlock(); c.udfs = append(c.udfs, name) }
func (c *MemoryCache) AddEngine(name string)      { c.mu.Lock(); defer c.mu.Unlock(); c.engines = append(c.engines, name) }
func (c *MemoryCache) AddLogfileGroup(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logfile = append(c.logfile, name)
}
func (c *MemoryCache) AddTablespace(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tablespace = append(c.tablespace, name)
}
func (c *MemoryCache) AddVariable(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variables = append(c.variables, name)
}
func (c *MemoryCache) AddCharset(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.charsets = append(c.charsets, name)
}
func (c *MemoryCache) AddCollation(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collations = append(c.collations, name)
}

func filterPrefix(names []string, prefix string) []string {
	if prefix == "" {
		out := make([]string, len(names))
		copy(out, names)
		sort.Strings(out)
		return out
	}
	var out []string
	lowerPrefix := strings.ToLower(prefix)
	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), lowerPrefix) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

func keys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func (c *MemoryCache) MatchingSchemas(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.schemas))
	for name := range c.schemas {
		names = append(names, name)
	}
	return filterPrefix(names, prefix)
}

func (c *MemoryCache) MatchingTables(schema, prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.schemas[schema]
	if !ok {
		return nil
	}
	return filterPrefix(keys(e.tables), prefix)
}

func (c *MemoryCache) MatchingViews(schema, prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.schemas[schema]
	if !ok {
		return nil
	}
	return filterPrefix(keys(e.views), prefix)
}

func (c *MemoryCache) MatchingColumns(schema, table, prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.schemas[schema]
	if !ok {
		return nil
	}
	if cols, ok := e.tables[table]; ok {
		return filterPrefix(cols, prefix)
	}
	if cols, ok := e.views[table]; ok {
		return filterPrefix(cols, prefix)
	}
	return nil
}

func (c *MemoryCache) MatchingProcedures(schema, prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.schemas[schema]
	if !ok {
		return nil
	}
	return filterPrefix(e.procedures, prefix)
}

func (c *MemoryCache) MatchingFunctions(schema, prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.schemas[schema]
	if !ok {
		return nil
	}
	return filterPrefix(e.functions, prefix)
}

func (c *MemoryCache) MatchingUDFs(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterPrefix(c.udfs, prefix)
}

func (c *MemoryCache) MatchingTriggers(schema, table, prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.schemas[schema]
	if !ok {
		return nil
	}
	return filterPrefix(e.triggers[table], prefix)
}

func (c *MemoryCache) MatchingEvents(schema, prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.schemas[schema]
	if !ok {
		return nil
	}
	return filterPrefix(e.events, prefix)
}

func (c *MemoryCache) MatchingEngines(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterPrefix(c.engines, prefix)
}

func (c *MemoryCache) MatchingLogfileGroups(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterPrefix(c.logfile, prefix)
}

func (c *MemoryCache) MatchingTablespaces(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterPrefix(c.tablespace, prefix)
}

func (c *MemoryCache) MatchingVariables(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterPrefix(c.variables, prefix)
}

func (c *MemoryCache) MatchingCharsets(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterPrefix(c.charsets, prefix)
}

func (c *MemoryCache) MatchingCollations(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterPrefix(c.collations, prefix)
}
