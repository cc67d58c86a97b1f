package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bachatlist/internal/models"

	"github.com/google/uuid"
)

const productColumns = `id, asin, title, description, current_price, original_price, currency,
	image_url, product_url, features, deal_id, last_checked_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*models.CatalogProduct, error) {
	var (
		p        models.CatalogProduct
		features string
		dealID   sql.NullString
	)
	err := row.Scan(&p.ID, &p.ASIN, &p.Title, &p.Description, &p.CurrentPrice, &p.OriginalPrice, &p.Currency,
		&p.ImageURL, &p.ProductURL, &features, &dealID, &p.LastCheckedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if features != "" {
		if err := json.Unmarshal([]byte(features), &p.Features); err != nil {
			return nil, err
		}
	}
	p.DealID = stringPtr(dealID)
	return &p, nil
}

// UpsertProduct inserts or refreshes the cache row for p.ASIN and stamps
// last_checked_at. A nil dealID keeps the existing deal link.
func (db *DB) UpsertProduct(ctx context.Context, p models.CatalogProduct, dealID *string) (*models.CatalogProduct, error) {
	const op = "database.UpsertProduct"

	features, err := json.Marshal(nonNil(p.Features))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := db.tick()
	_, err = db.exec(ctx, `
		INSERT INTO amazon_products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (asin) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			current_price = excluded.current_price,
			original_price = COALESCE(excluded.original_price, amazon_products.original_price),
			currency = excluded.currency,
			image_url = excluded.image_url,
			product_url = excluded.product_url,
			features = excluded.features,
			deal_id = COALESCE(excluded.deal_id, amazon_products.deal_id),
			last_checked_at = excluded.last_checked_at`,
		uuid.NewString(), p.ASIN, p.Title, p.Description, p.CurrentPrice, p.OriginalPrice, p.Currency,
		p.ImageURL, p.ProductURL, string(features), nullString(dealID), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return db.GetProductByASIN(ctx, p.ASIN)
}

// GetProductByASIN returns the cached product or ErrNotFound.
func (db *DB) GetProductByASIN(ctx context.Context, asin string) (*models.CatalogProduct, error) {
	const op = "database.GetProductByASIN"

	p, err := scanProduct(db.queryRow(ctx, `SELECT `+productColumns+` FROM amazon_products WHERE asin = ?`, asin))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListLinkedProducts returns every cached product that backs a deal.
func (db *DB) ListLinkedProducts(ctx context.Context) ([]models.CatalogProduct, error) {
	const op = "database.ListLinkedProducts"

	rows, err := db.query(ctx, `SELECT `+productColumns+` FROM amazon_products WHERE deal_id IS NOT NULL ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var products []models.CatalogProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

// LinkProductToDeal attaches the cached product to a deal.
func (db *DB) LinkProductToDeal(ctx context.Context, asin, dealID string) error {
	const op = "database.LinkProductToDeal"

	res, err := db.exec(ctx, `UPDATE amazon_products SET deal_id = ? WHERE asin = ?`, dealID, asin)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountLinkedProducts counts cached products that back a deal.
func (db *DB) CountLinkedProducts(ctx context.Context) (int, error) {
	const op = "database.CountLinkedProducts"

	var n int
	if err := db.queryRow(ctx, `SELECT COUNT(*) FROM amazon_products WHERE deal_id IS NOT NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// CountProductsCheckedSince counts linked products refreshed at or after since.
func (db *DB) CountProductsCheckedSince(ctx context.Context, since time.Time) (int, error) {
	const op = "database.CountProductsCheckedSince"

	var n int
	if err := db.queryRow(ctx, `SELECT COUNT(*) FROM amazon_products WHERE deal_id IS NOT NULL AND last_checked_at >= ?`, since.UTC()).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
