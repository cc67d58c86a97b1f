package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bachatlist/internal/models"

	"github.com/google/uuid"
)

// AppendLog stores an audit entry. Entries are never updated.
func (db *DB) AppendLog(ctx context.Context, e models.SyncLogEntry) error {
	const op = "database.AppendLog"

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = db.tick()
	}

	_, err := db.exec(ctx,
		`INSERT INTO sync_logs (id, network_id, type, action, status, message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, nullString(e.NetworkID), string(e.Type), string(e.Action), string(e.Status), e.Message, e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func scanLog(row scanner) (*models.SyncLogEntry, error) {
	var (
		e                   models.SyncLogEntry
		networkID           sql.NullString
		typ, action, status string
	)
	if err := row.Scan(&e.ID, &networkID, &typ, &action, &status, &e.Message, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.NetworkID = stringPtr(networkID)
	e.Type = models.LogType(typ)
	e.Action = models.LogAction(action)
	e.Status = models.LogStatus(status)
	return &e, nil
}

// LastLog returns the newest entry of the given type and action.
func (db *DB) LastLog(ctx context.Context, typ models.LogType, action models.LogAction) (*models.SyncLogEntry, error) {
	const op = "database.LastLog"

	e, err := scanLog(db.queryRow(ctx,
		`SELECT id, network_id, type, action, status, message, created_at FROM sync_logs
		WHERE type = ? AND action = ? ORDER BY created_at DESC LIMIT 1`,
		string(typ), string(action),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// ListLogs returns the newest entries, optionally filtered by type.
func (db *DB) ListLogs(ctx context.Context, typ models.LogType, limit int) ([]models.SyncLogEntry, error) {
	const op = "database.ListLogs"

	query := `SELECT id, network_id, type, action, status, message, created_at FROM sync_logs`
	args := []any{}
	if typ != "" {
		query += ` WHERE type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []models.SyncLogEntry
	for rows.Next() {
		e, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}
