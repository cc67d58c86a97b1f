package amazon

import (
	"time"

	"bachatlist/internal/catalog"
	"bachatlist/internal/models"

	"github.com/shopspring/decimal"
)

type Product struct {
	ASIN          string              `json:"asin"`
	Title         string              `json:"title"`
	Description   string              `json:"description,omitempty"`
	CurrentPrice  decimal.NullDecimal `json:"currentPrice"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	Currency      string              `json:"currency"`
	ImageURL      string              `json:"imageUrl,omitempty"`
	ProductURL    string              `json:"productUrl"`
	AffiliateURL  string              `json:"affiliateUrl,omitempty"`
	Features      []string            `json:"features,omitempty"`
	DealID        *string             `json:"dealId,omitempty"`
	LastCheckedAt *time.Time          `json:"lastCheckedAt,omitempty"`
	Cached        bool                `json:"cached"`
}

func productFrom(v catalog.ProductView) Product {
	p := Product{
		ASIN:          v.ASIN,
		Title:         v.Title,
		Description:   v.Description,
		CurrentPrice:  v.CurrentPrice,
		OriginalPrice: v.OriginalPrice,
		Currency:      v.Currency,
		ImageURL:      v.ImageURL,
		ProductURL:    v.ProductURL,
		AffiliateURL:  v.AffiliateURL,
		Features:      v.Features,
		DealID:        v.DealID,
		Cached:        v.Cached,
	}
	if !v.LastCheckedAt.IsZero() {
		t := v.LastCheckedAt
		p.LastCheckedAt = &t
	}
	return p
}

type Deal struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Slug          string              `json:"slug"`
	CurrentPrice  decimal.NullDecimal `json:"currentPrice"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	Discount      *int                `json:"discount"`
	AffiliateURL  string              `json:"affiliateUrl"`
	Status        models.DealStatus   `json:"status"`
}

func dealFrom(d *models.Deal) Deal {
	return Deal{
		ID:            d.ID,
		Title:         d.Title,
		Slug:          d.Slug,
		CurrentPrice:  d.CurrentPrice,
		OriginalPrice: d.OriginalPrice,
		Discount:      d.Discount,
		AffiliateURL:  d.AffiliateURL,
		Status:        d.Status,
	}
}

// Config never carries the keys themselves.
type Config struct {
	ID           string    `json:"id"`
	AssociateTag string    `json:"associateTag"`
	Region       string    `json:"region"`
	Marketplace  string    `json:"marketplace"`
	IsActive     bool      `json:"isActive"`
	HasKeys      bool      `json:"hasKeys"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func configFrom(c *models.AmazonConfig) Config {
	return Config{
		ID:           c.ID,
		AssociateTag: c.AssociateTag,
		Region:       c.Region,
		Marketplace:  c.Marketplace,
		IsActive:     c.IsActive,
		HasKeys:      c.AccessKey != "" && c.SecretKey != "",
		UpdatedAt:    c.UpdatedAt,
	}
}
