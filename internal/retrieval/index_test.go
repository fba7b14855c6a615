package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildColumnIndexWordsAndBigrams(t *testing.T) {
	idx := BuildColumnIndex([]string{"Country_Name", "Card-Network Type", "ID", "order_total"})

	assert.Equal(t, []string{"Country_Name"}, idx.Lookup("country"))
	assert.Equal(t, []string{"Country_Name"}, idx.Lookup("country name"))
	assert.Equal(t, []string{"Card-Network Type"}, idx.Lookup("card type"))
	assert.Equal(t, []string{"Card-Network Type"}, idx.Lookup("network type"))
	assert.Empty(t, idx.Lookup("id"), "two-rune words are not indexed")
	assert.Empty(t, idx.Lookup("name country"), "bigrams keep word order")

	assert.Equal(t, []string{"card", "network", "type"}, idx.Words("Card-Network Type"))
	assert.Equal(t, []string{"card network", "card type", "network type"}, idx.Bigrams("Card-Network Type"))
	assert.Contains(t, idx.Keys(), "order total")
}

func TestLookupSharedTokenKeepsColumnOrder(t *testing.T) {
	idx := BuildColumnIndex([]string{"order_date", "ship_date", "order_id"})
	assert.Equal(t, []string{"order_date", "ship_date"}, idx.Lookup("date"))
	assert.Equal(t, []string{"order_date", "order_id"}, idx.Lookup("ORDER"))
}

func TestMentioned(t *testing.T) {
	idx := BuildColumnIndex([]string{"Country", "Revenue", "OrderID"})
	assert.Equal(t, []string{"Country", "Revenue"}, idx.Mentioned("Revenue by country please"))
	assert.Empty(t, idx.Mentioned("국가별 매출"))
}

func TestSuggestAndResolve(t *testing.T) {
	idx := BuildColumnIndex([]string{"Country", "Revenue", "OrderID"})
	assert.Equal(t, "Revenue", idx.Suggest("revnue")[0])

	got, ok := idx.Resolve("country")
	assert.True(t, ok)
	assert.Equal(t, "Country", got)

	_, ok = idx.Resolve("region")
	assert.False(t, ok)
}
