package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bachatlist/internal/models"

	"github.com/google/uuid"
)

const amazonConfigColumns = `id, access_key, secret_key, associate_tag, region, marketplace, is_active, updated_at`

func scanAmazonConfig(row scanner) (*models.AmazonConfig, error) {
	var c models.AmazonConfig
	if err := row.Scan(&c.ID, &c.AccessKey, &c.SecretKey, &c.AssociateTag, &c.Region, &c.Marketplace, &c.IsActive, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ActiveAmazonConfig returns the active credential set or ErrNotFound.
func (db *DB) ActiveAmazonConfig(ctx context.Context) (*models.AmazonConfig, error) {
	return db.amazonConfig(ctx, "database.ActiveAmazonConfig", `WHERE is_active = ?`, true)
}

// LatestAmazonConfig returns the most recently written credential set, active or not.
func (db *DB) LatestAmazonConfig(ctx context.Context) (*models.AmazonConfig, error) {
	return db.amazonConfig(ctx, "database.LatestAmazonConfig", ``)
}

func (db *DB) amazonConfig(ctx context.Context, op, where string, args ...any) (*models.AmazonConfig, error) {
	c, err := scanAmazonConfig(db.queryRow(ctx,
		`SELECT `+amazonConfigColumns+` FROM amazon_configs `+where+` ORDER BY updated_at DESC LIMIT 1`, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// SaveAmazonConfig keeps a single credential row: the existing one is
// overwritten, otherwise a new one is created.
func (db *DB) SaveAmazonConfig(ctx context.Context, c *models.AmazonConfig) error {
	const op = "database.SaveAmazonConfig"

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var existingID string
	err = tx.QueryRowContext(ctx, db.rebind(`SELECT id FROM amazon_configs ORDER BY updated_at DESC LIMIT 1`)).Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := db.tick()
	c.UpdatedAt = now
	if existingID != "" {
		c.ID = existingID
		_, err = tx.ExecContext(ctx, db.rebind(`UPDATE amazon_configs SET
				access_key = ?, secret_key = ?, associate_tag = ?, region = ?, marketplace = ?, is_active = ?, updated_at = ?
			WHERE id = ?`),
			c.AccessKey, c.SecretKey, c.AssociateTag, c.Region, c.Marketplace, c.IsActive, now, c.ID)
	} else {
		c.ID = uuid.NewString()
		_, err = tx.ExecContext(ctx, db.rebind(`INSERT INTO amazon_configs
				(id, access_key, secret_key, associate_tag, region, marketplace, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			c.ID, c.AccessKey, c.SecretKey, c.AssociateTag, c.Region, c.Marketplace, c.IsActive, now, now)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, db.rebind(`DELETE FROM amazon_configs WHERE id <> ?`), c.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteAmazonConfigs removes every stored credential set.
func (db *DB) DeleteAmazonConfigs(ctx context.Context) (int64, error) {
	const op = "database.DeleteAmazonConfigs"

	res, err := db.exec(ctx, `DELETE FROM amazon_configs`)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
