package amazon

import (
	"strings"

	"bachatlist/internal/models"

	"github.com/shopspring/decimal"
)

const unknownTitle = "Unknown Product"

// Wire shapes of the PA-API 5 response. Every nested object is optional.
type (
	response struct {
		ItemsResult  *itemsResult  `json:"ItemsResult"`
		SearchResult *searchResult `json:"SearchResult"`
		Errors       []ErrorDetail `json:"Errors"`
	}

	itemsResult struct {
		Items []Item `json:"Items"`
	}

	searchResult struct {
		Items            []Item `json:"Items"`
		TotalResultCount int    `json:"TotalResultCount"`
		SearchURL        string `json:"SearchURL"`
	}

	Item struct {
		ASIN          string    `json:"ASIN"`
		DetailPageURL string    `json:"DetailPageURL"`
		ParentASIN    string    `json:"ParentASIN"`
		Images        *Images   `json:"Images"`
		ItemInfo      *ItemInfo `json:"ItemInfo"`
		Offers        *Offers   `json:"Offers"`
	}

	Images struct {
		Primary *ImageSet `json:"Primary"`
	}

	ImageSet struct {
		Small  *Image `json:"Small"`
		Medium *Image `json:"Medium"`
		Large  *Image `json:"Large"`
	}

	Image struct {
		URL    string `json:"URL"`
		Height int    `json:"Height"`
		Width  int    `json:"Width"`
	}

	ItemInfo struct {
		Title    *SingleValue `json:"Title"`
		Features *MultiValue  `json:"Features"`
	}

	SingleValue struct {
		DisplayValue string `json:"DisplayValue"`
	}

	MultiValue struct {
		DisplayValues []string `json:"DisplayValues"`
	}

	Offers struct {
		Listings  []Listing `json:"Listings"`
		Summaries []Summary `json:"Summaries"`
	}

	Listing struct {
		Price *Price `json:"Price"`
	}

	Summary struct {
		LowestPrice  *Price `json:"LowestPrice"`
		HighestPrice *Price `json:"HighestPrice"`
		OfferCount   int    `json:"OfferCount"`
	}

	Price struct {
		Amount        *decimal.Decimal `json:"Amount"`
		Currency      string           `json:"Currency"`
		DisplayAmount string           `json:"DisplayAmount"`
	}
)

// ParseItem flattens one item node. ok is false for nodes without an ASIN.
func ParseItem(item Item, region string) (models.CatalogProduct, bool) {
	if item.ASIN == "" {
		return models.CatalogProduct{}, false
	}

	features := featuresOf(item)

	return models.CatalogProduct{
		ASIN:         item.ASIN,
		Title:        titleOf(item),
		Description:  strings.Join(features, "\n"),
		CurrentPrice: priceOf(item),
		Currency:     CurrencyFor(region),
		ImageURL:     imageOf(item),
		ProductURL:   productURLOf(item, region),
		Features:     features,
	}, true
}

// ParseItems flattens a list of item nodes, dropping the ones without an ASIN.
func ParseItems(items []Item, region string) []models.CatalogProduct {
	products := make([]models.CatalogProduct, 0, len(items))
	for _, item := range items {
		if p, ok := ParseItem(item, region); ok {
			products = append(products, p)
		}
	}
	return products
}

// priceOf prefers the first listing price, then the lowest summary price.
func priceOf(item Item) decimal.NullDecimal {
	if item.Offers == nil {
		return decimal.NullDecimal{}
	}
	if len(item.Offers.Listings) > 0 {
		if p := item.Offers.Listings[0].Price; p != nil && p.Amount != nil {
			return decimal.NewNullDecimal(*p.Amount)
		}
	}
	if len(item.Offers.Summaries) > 0 {
		if p := item.Offers.Summaries[0].LowestPrice; p != nil && p.Amount != nil {
			return decimal.NewNullDecimal(*p.Amount)
		}
	}
	return decimal.NullDecimal{}
}

// imageOf picks the largest primary image available.
func imageOf(item Item) string {
	if item.Images == nil || item.Images.Primary == nil {
		return ""
	}
	for _, img := range []*Image{item.Images.Primary.Large, item.Images.Primary.Medium, item.Images.Primary.Small} {
		if img != nil && img.URL != "" {
			return img.URL
		}
	}
	return ""
}

func titleOf(item Item) string {
	if item.ItemInfo != nil && item.ItemInfo.Title != nil && item.ItemInfo.Title.DisplayValue != "" {
		return item.ItemInfo.Title.DisplayValue
	}
	return unknownTitle
}

func featuresOf(item Item) []string {
	if item.ItemInfo == nil || item.ItemInfo.Features == nil {
		return nil
	}
	return item.ItemInfo.Features.DisplayValues
}

func productURLOf(item Item, region string) string {
	if item.DetailPageURL != "" {
		return item.DetailPageURL
	}
	return ProductURL(item.ASIN, region)
}
