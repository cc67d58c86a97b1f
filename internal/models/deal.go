package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DealStatus is the publication state of a deal.
type DealStatus string

const (
	DealDraft     DealStatus = "DRAFT"
	DealPublished DealStatus = "PUBLISHED"
	DealArchived  DealStatus = "ARCHIVED"
)

// Deal is a storefront listing. Price fields are written by the sync flow.
type Deal struct {
	ID            string
	Title         string
	Slug          string
	Description   string
	ShortDesc     string
	CurrentPrice  decimal.NullDecimal
	OriginalPrice decimal.NullDecimal
	Discount      *int
	Currency      string
	PrimaryImage  string
	ProductURL    string
	AffiliateURL  string
	Coupon        string
	Status        DealStatus
	CategoryID    *string
	IsExpired     bool
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DiscountPercent returns round((original-current)/original*100).
// The result is not clamped, a price above the original gives a negative value.
// ok is false when original is zero.
func DiscountPercent(original, current decimal.Decimal) (percent int, ok bool) {
	if original.IsZero() {
		return 0, false
	}
	d := original.Sub(current).Div(original).Mul(decimal.NewFromInt(100)).Round(0)
	return int(d.IntPart()), true
}
