package completion

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCacheMatchingSchemasAndTables(t *testing.T) {
	cache := NewMemoryCache()
	cache.AddSchema("db1")
	cache.AddTable("db1", "t1", "id", "name")
	cache.AddTable("db1", "t2", "id")
	cache.AddView("db1", "v1", "id")

	assert.Equal(t, []string{"db1"}, cache.MatchingSchemas(""))
	assert.ElementsMatch(t, []string{"t1", "t2"}, cache.MatchingTables("db1", ""))
	assert.Equal(t, []string{"v1"}, cache.MatchingViews("db1", ""))
	assert.ElementsMatch(t, []string{"id", "name"}, cache.MatchingColumns("db1", "t1", ""))
	assert.Equal(t, []string{"id"}, cache.MatchingColumns("db1", "v1", ""))
}

func TestMemoryCacheMatchingUnknownSchemaReturnsNil(t *testing.T) {
	cache := NewMemoryCache()
	assert.Nil(t, cache.MatchingTables("nope", ""))
	assert.Nil(t, cache.MatchingColumns("nope", "t1", ""))
}

func TestMemoryCacheFilterPrefixIsCaseInsensitive(t *testing.T) {
	cache := NewMemoryCache()
	cache.AddTable("db1", "Orders")
	cache.AddTable("db1", "orderlines")
	cache.AddTable("db1", "customers")

	assert.Equal(t, []string{"Orders", "orderlines"}, cache.MatchingTables("db1", "ord"))
}

func TestMemoryCacheTriggersAndEvents(t *testing.T) {
	cache := NewMemoryCache()
	cache.AddTrigger("db1", "t1", "before_insert_t1")
	cache.AddEvent("db1", "nightly_cleanup")

	assert.Equal(t, []string{"before_insert_t1"}, cache.MatchingTriggers("db1", "t1", ""))
	assert.Empty(t, cache.MatchingTriggers("db1", "t2", ""))
	assert.Equal(t, []string{"nightly_cleanup"}, cache.MatchingEvents("db1", ""))
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			cache.AddTable("db1", "t1", "col")
		}(i)
		go func() {
			defer wg.Done()
			cache.MatchingTables("db1", "")
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"t1"}, cache.MatchingTables("db1", ""))
}
