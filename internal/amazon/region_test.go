package amazon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocaleFor(t *testing.T) {
	in := LocaleFor("IN")
	assert.Equal(t, "webservices.amazon.in", in.Host)
	assert.Equal(t, "eu-west-1", in.SigningRegion)
	assert.Equal(t, "INR", in.Currency)

	for _, code := range []string{"us", "", "uk", "de"} {
		assert.Equal(t, "USD", CurrencyFor(code), code)
	}
}

func TestAffiliateURL(t *testing.T) {
	assert.Equal(t, "https://www.amazon.in/dp/B08N5WRWNW?tag=bachat-21", AffiliateURL("B08N5WRWNW", "bachat-21", "in"))
	assert.Equal(t, "https://www.amazon.com/dp/B08N5WRWNW?tag=bachat-20", AffiliateURL("B08N5WRWNW", "bachat-20", "us"))
}

func TestSearchIndex(t *testing.T) {
	tests := map[string]string{
		"electronics": "Electronics",
		"Kitchen":     "HomeAndKitchen",
		"home":        "HomeAndKitchen",
		"groceries":   "GroceryAndGourmetFood",
		"":            "All",
		"jewellery":   "All",
	}
	for category, want := range tests {
		assert.Equal(t, want, SearchIndex(category), category)
	}
}
