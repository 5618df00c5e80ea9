package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// ChannelStore implements store.ChannelStore backed by Postgres.
type ChannelStore struct {
	db *sql.DB
}

func NewChannelStore(db *sql.DB) *ChannelStore {
	return &ChannelStore{db: db}
}

func (s *ChannelStore) GetByServer(ctx context.Context, serverID string) ([]*store.Channel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, server_id, platform_id, name, kind, created_at, updated_at
		FROM channels WHERE server_id = $1 ORDER BY name`, serverID)
	if err != nil {
		return nil, fmt.Errorf("get channels by server: %w", err)
	}
	defer rows.Close()

	var out []*store.Channel
	for rows.Next() {
		var c store.Channel
		if err := rows.Scan(&c.ID, &c.ServerID, &c.PlatformID, &c.Name, &c.Kind, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *ChannelStore) GetByPlatformID(ctx context.Context, serverID, platformID string) (*store.Channel, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, server_id, platform_id, name, kind, created_at, updated_at
		FROM channels WHERE server_id = $1 AND platform_id = $2`, serverID, platformID)

	var c store.Channel
	err := row.Scan(&c.ID, &c.ServerID, &c.PlatformID, &c.Name, &c.Kind, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get channel by platform id: %w", err)
	}
	return &c, nil
}

func (s *ChannelStore) Create(ctx context.Context, c *store.Channel) error {
	if c.ID == "" {
		c.ID = uuid.Must(uuid.NewV7()).String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO channels (id, server_id, platform_id, name, kind)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.ServerID, c.PlatformID, c.Name, c.Kind)
	if err != nil {
		return fmt.Errorf("create channel: %w", classifyErr(err))
	}
	return nil
}

func (s *ChannelStore) Update(ctx context.Context, c *store.Channel) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE channels SET name = $2, kind = $3, updated_at = now() WHERE id = $1`,
		c.ID, c.Name, c.Kind)
	if err != nil {
		return fmt.Errorf("update channel: %w", err)
	}
	return nil
}

func (s *ChannelStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM channels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}
