package notify

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names a template placeholder, written as {name} in a template.
type Field string

const (
	FieldTitle        Field = "title"
	FieldOldPrice     Field = "oldPrice"
	FieldNewPrice     Field = "newPrice"
	FieldPrice        Field = "price"
	FieldDiscount     Field = "discount"
	FieldShortDesc    Field = "shortDesc"
	FieldAffiliateURL Field = "affiliateUrl"
)

const (
	DefaultPriceDropTemplate = "🔔 *Price Drop Alert*\n\n*{title}*\n\n💰 *{oldPrice}* → *{newPrice}*\n\n{shortDesc}\n\n{affiliateUrl}"
	DefaultNewDealTemplate   = "🔥 *New Deal Alert*\n\n*{title}*\n\n💰 *{price}* ({discount}% off)\n\n{shortDesc}\n\n{affiliateUrl}"
	digestHeader             = "📢 *Daily Deal Digest*\n\n"
)

// Values maps placeholders to their substitutions.
type Values map[Field]string

// Render replaces every occurrence of each known placeholder in one pass.
// Placeholders without a value are left as they are.
func Render(tmpl string, values Values) string {
	fields := make([]string, 0, len(values))
	for f := range values {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)

	pairs := make([]string, 0, len(fields)*2)
	for _, f := range fields {
		pairs = append(pairs, "{"+f+"}", values[Field(f)])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// FormatPrice renders amount with the currency symbol and two decimals.
func FormatPrice(amount decimal.Decimal, currency string) string {
	return currencySymbol(currency) + amount.StringFixed(2)
}

func currencySymbol(currency string) string {
	switch strings.ToUpper(currency) {
	case "INR", "":
		return "₹"
	case "USD":
		return "$"
	default:
		return strings.ToUpper(currency) + " "
	}
}
