package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogProduct is the locally cached view of an Amazon item, keyed by ASIN.
type CatalogProduct struct {
	ID            string
	ASIN          string
	Title         string
	Description   string
	CurrentPrice  decimal.NullDecimal
	OriginalPrice decimal.NullDecimal
	Currency      string
	ImageURL      string
	ProductURL    string
	Features      []string
	DealID        *string // deal this product backs, if any
	LastCheckedAt time.Time
	CreatedAt     time.Time
}

// HasPrice reports whether a current price is known.
func (p *CatalogProduct) HasPrice() bool {
	return p != nil && p.CurrentPrice.Valid
}

// Category groups deals on the storefront.
type Category struct {
	ID   string
	Name string
	Slug string
	Icon string
}
