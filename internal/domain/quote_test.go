package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteID_AcceptsStringAndNumber(t *testing.T) {
	var quotes []Quote
	err := json.Unmarshal([]byte(`[{"id":7,"text":"a"},{"id":"abc","text":"b"},{"id":null,"text":"c"}]`), &quotes)
	require.NoError(t, err)

	assert.Equal(t, QuoteID("7"), quotes[0].ID)
	assert.Equal(t, QuoteID("abc"), quotes[1].ID)
	assert.Equal(t, QuoteID(""), quotes[2].ID)
}

func TestQuoteID_MarshalKeepsNumericShape(t *testing.T) {
	out, err := json.Marshal(struct {
		A QuoteID `json:"a"`
		B QuoteID `json:"b"`
	}{A: "12", B: "x-1"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"a":12,"b":"x-1"}`, string(out))
}

func TestQuoteID_NonCanonicalIntegersStayStrings(t *testing.T) {
	for _, id := range []QuoteID{"007", "+5", "-0", "99999999999999999999"} {
		t.Run(string(id), func(t *testing.T) {
			out, err := json.Marshal(Quote{ID: id, Text: "t"})
			require.NoError(t, err)

			var back Quote
			require.NoError(t, json.Unmarshal(out, &back))
			assert.Equal(t, id, back.ID)
		})
	}

	out, err := json.Marshal(QuoteID("-3"))
	require.NoError(t, err)
	assert.Equal(t, "-3", string(out))
}

func TestQuoteList_IndexOf(t *testing.T) {
	list := QuoteList{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	assert.Equal(t, 1, list.IndexOf("2"))
	assert.Equal(t, -1, list.IndexOf("9"))
	assert.True(t, list.Contains("3"))
}

func TestQuoteList_CloneIsIndependent(t *testing.T) {
	list := QuoteList{{ID: "1", LikesCount: 1}}
	clone := list.Clone()
	clone[0].LikesCount = 5

	assert.Equal(t, 1, list[0].LikesCount)
	assert.Nil(t, QuoteList(nil).Clone())
}

func TestQuoteSet(t *testing.T) {
	s := NewQuoteSet()

	assert.True(t, s.Add(Quote{ID: "1"}))
	assert.True(t, s.Add(Quote{ID: "2"}))
	assert.False(t, s.Add(Quote{ID: "1"}), "duplicates are rejected")
	assert.Equal(t, 2, s.Len())

	assert.True(t, s.Remove("1"))
	assert.False(t, s.Remove("1"))
	assert.False(t, s.Has("1"))

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, QuoteID("2"), list[0].ID)

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestCategorySelection_CacheKey(t *testing.T) {
	tests := []struct {
		name          string
		selection     CategorySelection
		authenticated bool
		first         string
		expected      string
	}{
		{"sorted and joined", CategorySelection{"wisdom", "love", "life"}, true, "", "life,love,wisdom"},
		{"dedup and trim", CategorySelection{" love", "love", ""}, true, "", "love"},
		{"empty authenticated", nil, true, "life", "all"},
		{"empty guest uses first category", nil, false, "life", "life"},
		{"empty guest without categories", nil, false, "", "all"},
		{"guest with selection", CategorySelection{"b", "a"}, false, "life", "a,b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.selection.CacheKey(tt.authenticated, tt.first))
		})
	}
}

func TestCategorySelection_IsMultiAndQuery(t *testing.T) {
	assert.True(t, CategorySelection{"a", "b"}.IsMulti())
	assert.False(t, CategorySelection{"a", "a"}.IsMulti())
	assert.False(t, CategorySelection{}.IsMulti())

	assert.Equal(t, "", CategorySelection{}.QueryValue(true, ""))
	assert.Equal(t, "a,b", CategorySelection{"b", "a"}.QueryValue(true, ""))
}

func TestPreferences_Merge(t *testing.T) {
	p := Preferences{Theme: "dark"}.Merge(DefaultPreferences())

	assert.Equal(t, Preferences{Theme: "dark", Font: DefaultFont, Background: DefaultBackground}, p)
}
