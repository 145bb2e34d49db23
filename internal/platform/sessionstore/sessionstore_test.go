package sessionstore

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quoteswipe/internal/platform/cache"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestGetFromCache_RoundTrip(t *testing.T) {
	s := NewMemoryStorage(0)
	clock := cache.NewFakeClock(epoch)

	require.NoError(t, SetToCache(s, clock, KeyCardTheme, "midnight"))

	got := GetFromCache(s, clock, KeyCardTheme, time.Hour, "classic")
	assert.Equal(t, "midnight", got)

	_, ok := s.GetItem(KeyPrefix + KeyCardTheme)
	assert.True(t, ok, "entries live under the prefix")
}

func TestGetFromCache_StaleReturnsFallback(t *testing.T) {
	s := NewMemoryStorage(0)
	clock := cache.NewFakeClock(epoch)
	ttl := 30 * time.Minute

	stamp := epoch.Add(-ttl - time.Millisecond).UnixMilli()
	require.NoError(t, s.SetItem(KeyPrefix+KeyCardTheme,
		`{"data":"midnight","timestamp":`+strconv.FormatInt(stamp, 10)+`}`))

	assert.Equal(t, "classic", GetFromCache(s, clock, KeyCardTheme, ttl, "classic"))
}

func TestGetFromCache_BoundaryIsStale(t *testing.T) {
	s := NewMemoryStorage(0)
	clock := cache.NewFakeClock(epoch)

	require.NoError(t, SetToCache(s, clock, "k", 1))

	clock.Advance(time.Second - time.Millisecond)
	assert.Equal(t, 1, GetFromCache(s, clock, "k", time.Second, 0))

	clock.Advance(time.Millisecond)
	assert.Equal(t, 0, GetFromCache(s, clock, "k", time.Second, 0))
}

func TestGetFromCache_CorruptEntriesAreMisses(t *testing.T) {
	clock := cache.NewFakeClock(epoch)

	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{{{"},
		{"no data", `{"timestamp":1}`},
		{"wrong type", `{"data":{"x":1},"timestamp":` + strconv.FormatInt(epoch.UnixMilli(), 10) + `}`},
		{"plain string", "midnight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStorage(0)
			require.NoError(t, s.SetItem(KeyPrefix+"k", tt.raw))

			assert.NotPanics(t, func() {
				assert.Equal(t, "fallback", GetFromCache(s, clock, "k", time.Hour, "fallback"))
			})
		})
	}
}

func TestSetToCache_QuotaExceeded(t *testing.T) {
	s := NewMemoryStorage(32)
	clock := cache.NewFakeClock(epoch)

	err := SetToCache(s, clock, "quotes_all", []string{"a long enough value to overflow"})
	require.ErrorIs(t, err, ErrQuotaExceeded)

	_, ok := Lookup[[]string](s, clock, "quotes_all", time.Hour)
	assert.False(t, ok)
}

func TestMemoryStorage_SizeAccounting(t *testing.T) {
	s := NewMemoryStorage(0)

	require.NoError(t, s.SetItem("a", "123"))
	require.NoError(t, s.SetItem("a", "1"))
	assert.Equal(t, 2, s.Size())

	s.RemoveItem("a")
	assert.Equal(t, 0, s.Size())
	assert.Empty(t, s.Keys())
}

func TestClearCache(t *testing.T) {
	s := NewMemoryStorage(0)
	clock := cache.NewFakeClock(epoch)

	require.NoError(t, SetToCache(s, clock, QuotesKey("all"), []int{1}))
	require.NoError(t, SetToCache(s, clock, QuotesKey("love"), []int{2}))
	require.NoError(t, SetToCache(s, clock, KeyCardFont, "serif"))
	require.NoError(t, s.SetItem(KeyRecentSearches, `["x"]`))

	assert.Equal(t, 2, ClearCache(s, KeyQuotesPrefix))
	assert.Equal(t, []string{KeyPrefix + KeyCardFont, KeyRecentSearches}, s.Keys())

	assert.Equal(t, 1, ClearCache(s, ""))
	assert.Equal(t, []string{KeyRecentSearches}, s.Keys())
}

func TestRecentSearches(t *testing.T) {
	r := NewRecentSearches(NewMemoryStorage(0))

	assert.Empty(t, r.List())

	for _, term := range []string{"love", "life", "hope", "Love", "  ", "grit", "joy", "calm"} {
		r.Add(term)
	}

	assert.Equal(t, []string{"calm", "joy", "grit", "Love", "hope"}, r.List())

	r.Clear()
	assert.Empty(t, r.List())
}

func TestRecentSearches_CorruptReadsEmpty(t *testing.T) {
	s := NewMemoryStorage(0)
	require.NoError(t, s.SetItem(KeyRecentSearches, "not-json"))

	r := NewRecentSearches(s)
	assert.Empty(t, r.List())
	assert.Equal(t, []string{"wisdom"}, r.Add("wisdom"))
}

func TestVisitorTracked(t *testing.T) {
	s := NewMemoryStorage(0)

	assert.False(t, VisitorTracked(s))
	require.NoError(t, MarkVisitorTracked(s))
	assert.True(t, VisitorTracked(s))
}

func TestPromoGate(t *testing.T) {
	s := NewMemoryStorage(0)
	clock := cache.NewFakeClock(epoch)
	gate := NewPromoGate(s, clock, 24*time.Hour)

	assert.True(t, gate.CanShow())

	gate.MarkShown()
	assert.False(t, gate.CanShow())

	clock.Advance(24 * time.Hour)
	assert.True(t, gate.CanShow())

	require.NoError(t, s.SetItem(KeyPromoShown, "garbage"))
	assert.True(t, gate.CanShow())
}
