package amazon

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestPriceOf(t *testing.T) {
	tests := []struct {
		name   string
		offers *Offers
		want   string
	}{
		{name: "no offers"},
		{
			name: "listing price wins over lowest price",
			offers: &Offers{
				Listings:  []Listing{{Price: &Price{Amount: amount("1299.00")}}},
				Summaries: []Summary{{LowestPrice: &Price{Amount: amount("999.00")}}},
			},
			want: "1299",
		},
		{
			name: "falls back to lowest summary price",
			offers: &Offers{
				Listings:  []Listing{{}},
				Summaries: []Summary{{LowestPrice: &Price{Amount: amount("999.50")}}},
			},
			want: "999.5",
		},
		{
			name:   "listing without amount and no summary",
			offers: &Offers{Listings: []Listing{{Price: &Price{DisplayAmount: "₹1,299"}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := priceOf(Item{ASIN: "B000000001", Offers: tt.offers})
			if tt.want == "" {
				assert.False(t, got.Valid)
				return
			}
			require.True(t, got.Valid)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got.Decimal), "got %s", got.Decimal)
		})
	}
}

func TestImageOf(t *testing.T) {
	large := &Image{URL: "https://m.media-amazon.com/L.jpg"}
	medium := &Image{URL: "https://m.media-amazon.com/M.jpg"}
	small := &Image{URL: "https://m.media-amazon.com/S.jpg"}

	assert.Equal(t, large.URL, imageOf(Item{Images: &Images{Primary: &ImageSet{Small: small, Medium: medium, Large: large}}}))
	assert.Equal(t, medium.URL, imageOf(Item{Images: &Images{Primary: &ImageSet{Small: small, Medium: medium}}}))
	assert.Equal(t, small.URL, imageOf(Item{Images: &Images{Primary: &ImageSet{Small: small}}}))
	assert.Empty(t, imageOf(Item{Images: &Images{}}))
	assert.Empty(t, imageOf(Item{}))
}

func TestTitleOf(t *testing.T) {
	assert.Equal(t, "Echo Dot", titleOf(Item{ItemInfo: &ItemInfo{Title: &SingleValue{DisplayValue: "Echo Dot"}}}))
	assert.Equal(t, "Unknown Product", titleOf(Item{ItemInfo: &ItemInfo{}}))
	assert.Equal(t, "Unknown Product", titleOf(Item{}))
}

func TestProductURLOf(t *testing.T) {
	assert.Equal(t, "https://www.amazon.in/dp/B0X?tag=t", productURLOf(Item{ASIN: "B0X", DetailPageURL: "https://www.amazon.in/dp/B0X?tag=t"}, "in"))
	assert.Equal(t, "https://www.amazon.in/dp/B0X", productURLOf(Item{ASIN: "B0X"}, "in"))
	assert.Equal(t, "https://www.amazon.com/dp/B0X", productURLOf(Item{ASIN: "B0X"}, "us"))
}

func TestParseItems_FromJSON(t *testing.T) {
	body := `{
		"ItemsResult": {
			"Items": [
				{
					"ASIN": "B08N5WRWNW",
					"DetailPageURL": "https://www.amazon.in/dp/B08N5WRWNW?tag=bachat-21",
					"Images": {"Primary": {"Medium": {"URL": "https://m.media-amazon.com/images/I/medium.jpg", "Height": 160, "Width": 160}}},
					"ItemInfo": {
						"Title": {"DisplayValue": "Echo Dot (4th Gen)"},
						"Features": {"DisplayValues": ["Smart speaker", "Alexa built in"]}
					},
					"Offers": {"Listings": [{"Price": {"Amount": 3499, "Currency": "INR", "DisplayAmount": "₹3,499.00"}}]}
				},
				{"DetailPageURL": "https://www.amazon.in/dp/missing"},
				{"ASIN": "B07XJ8C8F5"}
			]
		}
	}`

	var resp response
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	products := ParseItems(resp.ItemsResult.Items, "in")
	require.Len(t, products, 2)

	echo := products[0]
	assert.Equal(t, "B08N5WRWNW", echo.ASIN)
	assert.Equal(t, "Echo Dot (4th Gen)", echo.Title)
	assert.Equal(t, "Smart speaker\nAlexa built in", echo.Description)
	assert.Equal(t, []string{"Smart speaker", "Alexa built in"}, echo.Features)
	assert.Equal(t, "INR", echo.Currency)
	assert.Equal(t, "https://m.media-amazon.com/images/I/medium.jpg", echo.ImageURL)
	require.True(t, echo.CurrentPrice.Valid)
	assert.Equal(t, "3499", echo.CurrentPrice.Decimal.String())
	assert.False(t, echo.OriginalPrice.Valid)

	bare := products[1]
	assert.Equal(t, "Unknown Product", bare.Title)
	assert.False(t, bare.CurrentPrice.Valid)
	assert.Equal(t, "https://www.amazon.in/dp/B07XJ8C8F5", bare.ProductURL)
}
