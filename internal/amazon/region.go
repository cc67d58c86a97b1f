package amazon

import "strings"

// Locale holds everything derived from a marketplace region code.
type Locale struct {
	Code          string
	Host          string
	SigningRegion string
	Marketplace   string
	Currency      string
	TLD           string
}

var (
	localeIndia = Locale{
		Code:          "in",
		Host:          "webservices.amazon.in",
		SigningRegion: "eu-west-1",
		Marketplace:   "www.amazon.in",
		Currency:      "INR",
		TLD:           "in",
	}
	localeUS = Locale{
		Code:          "us",
		Host:          "webservices.amazon.com",
		SigningRegion: "us-east-1",
		Marketplace:   "www.amazon.com",
		Currency:      "USD",
		TLD:           "com",
	}
)

// LocaleFor maps a region code to its locale. Only India is recognised,
// every other code falls back to the US marketplace.
func LocaleFor(region string) Locale {
	if strings.EqualFold(strings.TrimSpace(region), "in") {
		return localeIndia
	}
	return localeUS
}

// CurrencyFor returns the currency code used for prices in region.
func CurrencyFor(region string) string {
	return LocaleFor(region).Currency
}

// AffiliateURL builds the tagged product page link for asin.
func AffiliateURL(asin, tag, region string) string {
	return "https://www.amazon." + LocaleFor(region).TLD + "/dp/" + asin + "?tag=" + tag
}

// ProductURL is the untagged product page link, used when the API omits DetailPageURL.
func ProductURL(asin, region string) string {
	return "https://www.amazon." + LocaleFor(region).TLD + "/dp/" + asin
}

var searchIndexes = map[string]string{
	"electronics": "Electronics",
	"computers":   "Computers",
	"books":       "Books",
	"fashion":     "Fashion",
	"home":        "HomeAndKitchen",
	"kitchen":     "HomeAndKitchen",
	"beauty":      "Beauty",
	"health":      "HealthPersonalCare",
	"toys":        "ToysAndGames",
	"games":       "VideoGames",
	"sports":      "SportsAndOutdoors",
	"automotive":  "Automotive",
	"tools":       "ToolsAndHomeImprovement",
	"garden":      "GardenAndOutdoor",
	"pet":         "PetSupplies",
	"baby":        "BabyProducts",
	"office":      "OfficeProducts",
	"groceries":   "GroceryAndGourmetFood",
	"music":       "Music",
	"movies":      "MoviesAndTV",
	"appliances":  "Appliances",
}

// SearchIndex maps a storefront category to a PA-API search index, "All" when unknown.
func SearchIndex(category string) string {
	if idx, ok := searchIndexes[strings.ToLower(strings.TrimSpace(category))]; ok {
		return idx
	}
	return "All"
}
