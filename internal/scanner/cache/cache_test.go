package cache

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/scansync/internal/scanner/models"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func product(code, name string) models.Product {
	return models.Product{ID: "p-" + code, Barcode: code, Name: name, CaloriesPer100g: 100, ServingSizeG: 30}
}

func TestCache_FreshThenStaleThenGone(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	c := NewWithClock(5*time.Minute, 30*time.Minute, fixedClock(&now))

	c.Put("4006381333931", product("4006381333931", "Pens"), t0)

	// Inside the freshness window.
	now = t0.Add(4 * time.Minute)
	e, ok := c.Get("4006381333931")
	require.True(t, ok)
	require.True(t, c.Fresh(e))

	// Past freshness, before GC: present but stale.
	now = t0.Add(6 * time.Minute)
	e, ok = c.Get("4006381333931")
	require.True(t, ok)
	require.False(t, c.Fresh(e))

	// Past the GC horizon: gone.
	now = t0.Add(31 * time.Minute)
	_, ok = c.Get("4006381333931")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestCache_PutIsLastWriteWins(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	c := NewWithClock(5*time.Minute, 30*time.Minute, fixedClock(&now))

	c.Put("96385074", product("96385074", "Old"), t0.Add(-10*time.Minute))
	c.Put("96385074", product("96385074", "New"), t0)

	e, ok := c.Get("96385074")
	require.True(t, ok)
	require.Equal(t, "New", e.Product.Name)
	require.True(t, c.Fresh(e))
	require.Equal(t, 1, c.Len())
}

func TestCache_PrimeMany(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	c := NewWithClock(5*time.Minute, 30*time.Minute, fixedClock(&now))

	c.PrimeMany([]models.Product{
		product("4006381333931", "A"),
		product("96385074", "B"),
		{Name: "no barcode"}, // skipped
	})

	require.Equal(t, 2, c.Len())
	e, ok := c.Get("96385074")
	require.True(t, ok)
	require.True(t, c.Fresh(e))
}

func TestCache_PurgeExpired(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	c := NewWithClock(5*time.Minute, 30*time.Minute, fixedClock(&now))

	c.Put("4006381333931", product("4006381333931", "A"), t0.Add(-31*time.Minute))
	c.Put("96385074", product("96385074", "B"), t0)

	require.Equal(t, 1, c.PurgeExpired())
	require.Equal(t, 1, c.Len())
	_, ok := c.Get("96385074")
	require.True(t, ok)
}

func TestCache_DefaultWindows(t *testing.T) {
	c := New(0, 0)
	require.Equal(t, DefaultFreshFor, c.freshFor)
	require.Equal(t, DefaultGCAfter, c.gcAfter)
}
