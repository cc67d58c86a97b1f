package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bachatlist/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dealColumns = `id, title, slug, description, short_desc, current_price, original_price, discount,
	currency, primary_image, product_url, affiliate_url, coupon, status, category_id, is_expired,
	expires_at, created_at, updated_at`

func scanDeal(row scanner) (*models.Deal, error) {
	var (
		d          models.Deal
		discount   sql.NullInt64
		categoryID sql.NullString
		expiresAt  sql.NullTime
		status     string
	)
	err := row.Scan(&d.ID, &d.Title, &d.Slug, &d.Description, &d.ShortDesc, &d.CurrentPrice, &d.OriginalPrice, &discount,
		&d.Currency, &d.PrimaryImage, &d.ProductURL, &d.AffiliateURL, &d.Coupon, &status, &categoryID, &d.IsExpired,
		&expiresAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Discount = intPtr(discount)
	d.CategoryID = stringPtr(categoryID)
	d.ExpiresAt = timePtr(expiresAt)
	d.Status = models.DealStatus(status)
	return &d, nil
}

// CreateDeal inserts d, filling ID and timestamps. A taken slug gives ErrDuplicate.
func (db *DB) CreateDeal(ctx context.Context, d *models.Deal) error {
	const op = "database.CreateDeal"

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = models.DealDraft
	}
	now := db.tick()
	d.CreatedAt, d.UpdatedAt = now, now

	_, err := db.exec(ctx, `INSERT INTO deals (`+dealColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Slug, d.Description, d.ShortDesc, d.CurrentPrice, d.OriginalPrice, nullInt(d.Discount),
		d.Currency, d.PrimaryImage, d.ProductURL, d.AffiliateURL, d.Coupon, string(d.Status), nullString(d.CategoryID), d.IsExpired,
		nullTime(d.ExpiresAt), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateDeal overwrites the editable fields of an existing deal.
func (db *DB) UpdateDeal(ctx context.Context, d *models.Deal) error {
	const op = "database.UpdateDeal"

	d.UpdatedAt = db.tick()
	res, err := db.exec(ctx, `UPDATE deals SET
			title = ?, description = ?, short_desc = ?, current_price = ?, original_price = ?, discount = ?,
			primary_image = ?, product_url = ?, affiliate_url = ?, coupon = ?, status = ?, is_expired = ?,
			expires_at = ?, updated_at = ?
		WHERE id = ?`,
		d.Title, d.Description, d.ShortDesc, d.CurrentPrice, d.OriginalPrice, nullInt(d.Discount),
		d.PrimaryImage, d.ProductURL, d.AffiliateURL, d.Coupon, string(d.Status), d.IsExpired,
		nullTime(d.ExpiresAt), d.UpdatedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDeal returns the deal or ErrNotFound.
func (db *DB) GetDeal(ctx context.Context, id string) (*models.Deal, error) {
	const op = "database.GetDeal"

	d, err := scanDeal(db.queryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// PriceUpdate is the set of deal fields a price sync writes.
type PriceUpdate struct {
	CurrentPrice decimal.Decimal
	Discount     *int // nil leaves the stored discount alone
	ClearExpired bool
}

// ApplyPriceUpdate writes a synced price onto a deal.
func (db *DB) ApplyPriceUpdate(ctx context.Context, dealID string, u PriceUpdate) error {
	const op = "database.ApplyPriceUpdate"

	query := `UPDATE deals SET current_price = ?, updated_at = ?`
	args := []any{decimal.NewNullDecimal(u.CurrentPrice), db.tick()}
	if u.Discount != nil {
		query += `, discount = ?`
		args = append(args, *u.Discount)
	}
	if u.ClearExpired {
		query += `, is_expired = ?`
		args = append(args, false)
	}
	query += ` WHERE id = ?`
	args = append(args, dealID)

	res, err := db.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SlugExists reports whether a deal already uses slug.
func (db *DB) SlugExists(ctx context.Context, slug string) (bool, error) {
	const op = "database.SlugExists"

	var n int
	if err := db.queryRow(ctx, `SELECT COUNT(*) FROM deals WHERE slug = ?`, slug).Scan(&n); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// FindDealByTitleOrURL returns the first deal matching title or affiliate URL.
func (db *DB) FindDealByTitleOrURL(ctx context.Context, title, affiliateURL string) (*models.Deal, error) {
	const op = "database.FindDealByTitleOrURL"

	d, err := scanDeal(db.queryRow(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE title = ? OR (affiliate_url <> '' AND affiliate_url = ?) ORDER BY created_at LIMIT 1`,
		title, affiliateURL,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// ListRecentDeals returns unexpired deals created at or after since, newest first.
func (db *DB) ListRecentDeals(ctx context.Context, since time.Time, limit int) ([]models.Deal, error) {
	const op = "database.ListRecentDeals"

	rows, err := db.query(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE created_at >= ? AND is_expired = ? ORDER BY created_at DESC LIMIT ?`,
		since.UTC(), false, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		deals = append(deals, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return deals, nil
}

// EnsureCategory returns the category with slug, creating it when missing.
func (db *DB) EnsureCategory(ctx context.Context, name, slug, icon string) (*models.Category, error) {
	const op = "database.EnsureCategory"

	var c models.Category
	err := db.queryRow(ctx, `SELECT id, name, slug, icon FROM categories WHERE slug = ?`, slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Icon)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c = models.Category{ID: uuid.NewString(), Name: name, Slug: slug, Icon: icon}
	if _, err := db.exec(ctx, `INSERT INTO categories (id, name, slug, icon) VALUES (?, ?, ?, ?)`, c.ID, c.Name, c.Slug, c.Icon); err != nil {
		if isUniqueViolation(err) {
			return db.EnsureCategory(ctx, name, slug, icon)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// FirstCategory returns the alphabetically first category or ErrNotFound.
func (db *DB) FirstCategory(ctx context.Context) (*models.Category, error) {
	const op = "database.FirstCategory"

	var c models.Category
	err := db.queryRow(ctx, `SELECT id, name, slug, icon FROM categories ORDER BY name LIMIT 1`).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}
