package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Cache
// ---------------------------------------------------------------------------

func Test_Cache_InsertionOrder(t *testing.T) {
	t.Parallel()

	c := New[string, int]()
	c.Set("b", 2)
	c.Set("a", 1)
	c.Set("c", 3)
	c.Set("b", 20) // replacing keeps position

	assert.Equal(t, []string{"b", "a", "c"}, c.Keys())
	assert.Equal(t, []int{20, 1, 3}, c.Values())

	first, ok := c.First()
	require.True(t, ok)
	assert.Equal(t, 20, first)

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, 3, last)
}

func Test_Cache_Limit_EvictsLeastRecentlyAdded(t *testing.T) {
	t.Parallel()

	var hooked []any
	c := New[string, int](WithLimit(2), WithEvictHook(func(k any) { hooked = append(hooked, k) }))

	assert.Empty(t, c.Set("one", 1))
	assert.Empty(t, c.Set("two", 2))
	assert.Empty(t, c.Set("one", 10), "re-setting an existing key must not evict")

	evicted := c.Set("three", 3)
	assert.Equal(t, []string{"one"}, evicted)
	assert.Equal(t, []any{"one"}, hooked)
	assert.Equal(t, []string{"two", "three"}, c.Keys())
	assert.Equal(t, 2, c.Limit())
}

func Test_Cache_Limit_ZeroIsUnbounded(t *testing.T) {
	t.Parallel()

	c := New[int, int](WithLimit(0))
	for i := 0; i < 500; i++ {
		c.Set(i, i)
	}
	assert.Equal(t, 500, c.Len())
}

func Test_Cache_FindFilterDelete(t *testing.T) {
	t.Parallel()

	c := New[string, int]()
	for i, k := range []string{"a", "b", "c", "d"} {
		c.Set(k, i)
	}

	v, ok := c.Find(func(v int) bool { return v > 1 })
	require.True(t, ok)
	assert.Equal(t, 2, v)

	assert.Equal(t, []int{1, 3}, c.Filter(func(v int) bool { return v%2 == 1 }))

	old, ok := c.Delete("b")
	require.True(t, ok)
	assert.Equal(t, 1, old)
	assert.False(t, c.Has("b"))

	_, ok = c.Delete("missing")
	assert.False(t, ok)
}

func Test_Cache_EachMayMutate(t *testing.T) {
	t.Parallel()

	c := New[string, int]()
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	var seen []string
	c.Each(func(k string, _ int) bool {
		seen = append(seen, k)
		c.Delete("c")
		return true
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func Test_Cache_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	c := New[string, int]()
	c.Set("a", 1)

	cp := c.Clone()
	c.Set("b", 2)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, []string{"a"}, cp.Keys())
}

// ---------------------------------------------------------------------------
// Store
// ---------------------------------------------------------------------------

type widgetData struct {
	ID   string
	Name string
}

type widget struct {
	id   string
	name string
}

func newWidgetStore(opts ...Option) *Store[widgetData, *widget] {
	return NewStore(
		func(d *widgetData) string { return d.ID },
		func(d *widgetData) *widget { return &widget{id: d.ID, name: d.Name} },
		func(w *widget, d *widgetData) { w.name = d.Name },
		opts...,
	)
}

func Test_Store_Add_PreservesIdentity(t *testing.T) {
	t.Parallel()

	s := newWidgetStore()
	first := s.Add(&widgetData{ID: "1", Name: "old"})
	second := s.Add(&widgetData{ID: "1", Name: "new"})

	assert.Same(t, first, second)
	assert.Equal(t, "new", first.name, "patch through the second add must be visible on the first reference")
	assert.Equal(t, 1, s.Len())
}

func Test_Store_Upsert_ReportsCreation(t *testing.T) {
	t.Parallel()

	s := newWidgetStore()
	_, created := s.Upsert(&widgetData{ID: "1"})
	assert.True(t, created)
	_, created = s.Upsert(&widgetData{ID: "1"})
	assert.False(t, created)
}

func Test_Store_ResolveRemove(t *testing.T) {
	t.Parallel()

	s := newWidgetStore()
	w := s.Add(&widgetData{ID: "7", Name: "seven"})

	got, ok := s.Resolve("7")
	require.True(t, ok)
	assert.Same(t, w, got)

	removed, ok := s.Remove("7")
	require.True(t, ok)
	assert.Same(t, w, removed)

	_, ok = s.Resolve("7")
	assert.False(t, ok)
}

func Test_Store_Bounded(t *testing.T) {
	t.Parallel()

	s := newWidgetStore(WithLimit(3))
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		s.Add(&widgetData{ID: id})
	}
	assert.Equal(t, []string{"3", "4", "5"}, s.Keys())
}
