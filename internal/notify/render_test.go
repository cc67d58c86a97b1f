package notify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// A placeholder repeated in the template is substituted at every position.
func TestRender_ReplacesEveryOccurrence(t *testing.T) {
	got := Render("Price: {oldPrice} -> {newPrice}, was {oldPrice}", Values{
		FieldOldPrice: FormatPrice(decimal.NewFromInt(100), "INR"),
		FieldNewPrice: FormatPrice(decimal.NewFromInt(80), "INR"),
	})

	assert.Equal(t, "Price: ₹100.00 -> ₹80.00, was ₹100.00", got)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		tmpl   string
		values Values
		want   string
	}{
		{
			name:   "unknown placeholder is kept",
			tmpl:   "{title} {rating}",
			values: Values{FieldTitle: "Kettle"},
			want:   "Kettle {rating}",
		},
		{
			name:   "empty value",
			tmpl:   "{title}\n\n{shortDesc}",
			values: Values{FieldTitle: "Kettle", FieldShortDesc: ""},
			want:   "Kettle\n\n",
		},
		{
			name:   "values are not expanded again",
			tmpl:   "{title}",
			values: Values{FieldTitle: "{newPrice}", FieldNewPrice: "₹1"},
			want:   "{newPrice}",
		},
		{
			name: "default price drop template",
			tmpl: DefaultPriceDropTemplate,
			values: Values{
				FieldTitle:        "Echo Dot",
				FieldOldPrice:     "₹3499.00",
				FieldNewPrice:     "₹2999.00",
				FieldShortDesc:    "Smart speaker",
				FieldAffiliateURL: "https://www.amazon.in/dp/B0A?tag=bachat-21",
			},
			want: "🔔 *Price Drop Alert*\n\n*Echo Dot*\n\n💰 *₹3499.00* → *₹2999.00*\n\nSmart speaker\n\nhttps://www.amazon.in/dp/B0A?tag=bachat-21",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.tmpl, tt.values))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "₹1299.50", FormatPrice(decimal.RequireFromString("1299.5"), "INR"))
	assert.Equal(t, "$19.99", FormatPrice(decimal.RequireFromString("19.99"), "usd"))
	assert.Equal(t, "EUR 5.00", FormatPrice(decimal.NewFromInt(5), "EUR"))
}
