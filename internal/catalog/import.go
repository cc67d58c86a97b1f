package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bachatlist/internal/amazon"
	"bachatlist/internal/database"
	"bachatlist/internal/lib/slug"
	"bachatlist/internal/lib/text"
	"bachatlist/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const shortDescLen = 200

// ImportRequest turns a product into a deal. Empty fields fall back to the
// product's own data.
type ImportRequest struct {
	ASIN          string
	CategoryID    string
	Title         string
	Description   string
	ShortDesc     string
	CurrentPrice  decimal.NullDecimal
	OriginalPrice decimal.NullDecimal
}

// ImportAsDeal creates a DRAFT deal from a cached or freshly looked up
// product and links the product to it. Every attempt past validation is
// logged.
func (s *Service) ImportAsDeal(ctx context.Context, req ImportRequest) (*models.Deal, *models.CatalogProduct, error) {
	const op = "catalog.ImportAsDeal"

	req.ASIN = strings.TrimSpace(req.ASIN)
	if req.ASIN == "" {
		return nil, nil, ErrMissingASIN
	}

	deal, product, err := s.importAsDeal(ctx, req)
	if err != nil {
		s.appendLog(ctx, models.ActionImport, models.StatusFailed, err.Error())
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	s.appendLog(ctx, models.ActionImport, models.StatusSuccess,
		fmt.Sprintf("Imported product %s as deal %s", req.ASIN, deal.ID))
	s.log.Info("product imported", zap.String("asin", req.ASIN), zap.String("deal_id", deal.ID))

	return deal, product, nil
}

func (s *Service) importAsDeal(ctx context.Context, req ImportRequest) (*models.Deal, *models.CatalogProduct, error) {
	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return nil, nil, err
	}

	product, err := s.store.GetProductByASIN(ctx, req.ASIN)
	if errors.Is(err, database.ErrNotFound) {
		fresh, lookupErr := s.catalog.GetItem(ctx, amazon.CredentialsFrom(cfg), req.ASIN)
		if lookupErr != nil {
			return nil, nil, lookupErr
		}
		if fresh == nil {
			return nil, nil, ErrProductNotFound
		}
		product, err = s.store.UpsertProduct(ctx, *fresh, nil)
	}
	if err != nil {
		return nil, nil, err
	}

	categoryID, err := s.categoryFor(ctx, req.CategoryID)
	if err != nil {
		return nil, nil, err
	}

	title := firstNonEmpty(req.Title, product.Title)
	dealSlug, err := s.uniqueSlug(ctx, title)
	if err != nil {
		return nil, nil, err
	}

	deal := &models.Deal{
		Title:         title,
		Slug:          dealSlug,
		Description:   firstNonEmpty(req.Description, product.Description, req.ShortDesc),
		ShortDesc:     firstNonEmpty(req.ShortDesc, text.Truncate(product.Description, shortDescLen)),
		CurrentPrice:  firstPrice(req.CurrentPrice, product.CurrentPrice, decimal.NewNullDecimal(decimal.Zero)),
		OriginalPrice: firstPrice(req.OriginalPrice, product.OriginalPrice),
		Currency:      firstNonEmpty(product.Currency, amazon.CurrencyFor(cfg.Region)),
		PrimaryImage:  product.ImageURL,
		ProductURL:    product.ProductURL,
		AffiliateURL:  amazon.AffiliateURL(req.ASIN, cfg.AssociateTag, cfg.Region),
		Status:        models.DealDraft,
		CategoryID:    &categoryID,
	}
	if req.CurrentPrice.Valid && req.OriginalPrice.Valid {
		if pct, ok := models.DiscountPercent(req.OriginalPrice.Decimal, req.CurrentPrice.Decimal); ok {
			deal.Discount = &pct
		}
	}

	if err := s.store.CreateDeal(ctx, deal); err != nil {
		return nil, nil, err
	}
	if err := s.store.LinkProductToDeal(ctx, req.ASIN, deal.ID); err != nil {
		return nil, nil, err
	}
	product.DealID = &deal.ID

	return deal, product, nil
}

func (s *Service) categoryFor(ctx context.Context, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	c, err := s.store.FirstCategory(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return "", ErrNoCategory
	}
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// uniqueSlug suffixes the slug with the current unix millis when taken.
func (s *Service) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	taken, err := s.store.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, s.now().UnixMilli()), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPrice(values ...decimal.NullDecimal) decimal.NullDecimal {
	for _, v := range values {
		if v.Valid && !v.Decimal.IsZero() {
			return v
		}
	}
	if len(values) > 0 {
		return values[len(values)-1]
	}
	return decimal.NullDecimal{}
}
