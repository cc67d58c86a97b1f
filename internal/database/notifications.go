package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bachatlist/internal/models"

	"github.com/google/uuid"
)

// CreateChannel registers a notification endpoint.
func (db *DB) CreateChannel(ctx context.Context, c *models.Channel) error {
	const op = "database.CreateChannel"

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = db.tick()

	_, err := db.exec(ctx,
		`INSERT INTO channels (id, name, type, token, target, active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Token, c.Target, c.Active, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetChannel returns a channel or ErrNotFound.
func (db *DB) GetChannel(ctx context.Context, id string) (*models.Channel, error) {
	const op = "database.GetChannel"

	var (
		c   models.Channel
		typ string
	)
	err := db.queryRow(ctx, `SELECT id, name, type, token, target, active, created_at FROM channels WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &typ, &c.Token, &c.Target, &c.Active, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.Type = models.ChannelType(typ)
	return &c, nil
}

// CreateRule attaches a notification rule to a channel.
func (db *DB) CreateRule(ctx context.Context, r *models.NotificationRule) error {
	const op = "database.CreateRule"

	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	_, err := db.exec(ctx,
		`INSERT INTO notification_rules (id, channel_id, kind, enabled, message_template) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.ChannelID, string(r.Kind), r.Enabled, r.MessageTemplate,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ChannelsWithRule returns active channels that have an enabled rule of kind,
// one entry per channel.
func (db *DB) ChannelsWithRule(ctx context.Context, kind models.RuleKind) ([]models.ChannelRule, error) {
	const op = "database.ChannelsWithRule"

	rows, err := db.query(ctx, `
		SELECT c.id, c.name, c.type, c.token, c.target, c.active, c.created_at,
			r.id, r.channel_id, r.kind, r.enabled, r.message_template
		FROM channels c
		JOIN notification_rules r ON r.channel_id = c.id
		WHERE c.active = ? AND r.enabled = ? AND r.kind = ?
		ORDER BY c.created_at, r.id`,
		true, true, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var result []models.ChannelRule
	for rows.Next() {
		var (
			cr           models.ChannelRule
			chanType, rk string
		)
		err := rows.Scan(&cr.Channel.ID, &cr.Channel.Name, &chanType, &cr.Channel.Token, &cr.Channel.Target, &cr.Channel.Active, &cr.Channel.CreatedAt,
			&cr.Rule.ID, &cr.Rule.ChannelID, &rk, &cr.Rule.Enabled, &cr.Rule.MessageTemplate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if seen[cr.Channel.ID] {
			continue
		}
		seen[cr.Channel.ID] = true
		cr.Channel.Type = models.ChannelType(chanType)
		cr.Rule.Kind = models.RuleKind(rk)
		result = append(result, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
