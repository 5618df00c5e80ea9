package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// ServerStore implements store.ServerStore backed by Postgres.
type ServerStore struct {
	db *sql.DB
}

func NewServerStore(db *sql.DB) *ServerStore {
	return &ServerStore{db: db}
}

func (s *ServerStore) GetByPlatformID(ctx context.Context, platformID string) (*store.Server, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, platform_id, name, icon_url, member_count, is_connected, created_at, updated_at
		FROM servers WHERE platform_id = $1`, platformID)

	var srv store.Server
	err := row.Scan(&srv.ID, &srv.PlatformID, &srv.Name, &srv.IconURL, &srv.MemberCount,
		&srv.IsConnected, &srv.CreatedAt, &srv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get server by platform id: %w", err)
	}
	return &srv, nil
}

func (s *ServerStore) Create(ctx context.Context, srv *store.Server) error {
	if srv.ID == "" {
		srv.ID = uuid.Must(uuid.NewV7()).String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO servers (id, platform_id, name, icon_url, member_count, is_connected)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		srv.ID, srv.PlatformID, srv.Name, srv.IconURL, srv.MemberCount, srv.IsConnected)
	if err != nil {
		return fmt.Errorf("create server: %w", classifyErr(err))
	}
	return nil
}

func (s *ServerStore) Update(ctx context.Context, srv *store.Server) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE servers
		SET name = $2, icon_url = $3, member_count = $4, is_connected = $5, updated_at = now()
		WHERE id = $1`,
		srv.ID, srv.Name, srv.IconURL, srv.MemberCount, srv.IsConnected)
	if err != nil {
		return fmt.Errorf("update server: %w", err)
	}
	return nil
}
