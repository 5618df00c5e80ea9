package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

type serverStore struct{ d *data }

func (s serverStore) GetByPlatformID(ctx context.Context, platformID string) (*store.Server, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	for _, srv := range s.d.servers {
		if srv.PlatformID == platformID {
			cp := *srv
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s serverStore) Create(ctx context.Context, srv *store.Server) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	for _, existing := range s.d.servers {
		if existing.PlatformID == srv.PlatformID {
			return store.ErrConflict
		}
	}
	if srv.ID == "" {
		srv.ID = uuid.Must(uuid.NewV7()).String()
	}
	now := time.Now()
	srv.CreatedAt, srv.UpdatedAt = now, now
	cp := *srv
	s.d.servers[srv.ID] = &cp
	return nil
}

func (s serverStore) Update(ctx context.Context, srv *store.Server) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.servers[srv.ID]; !ok {
		return store.ErrNotFound
	}
	srv.UpdatedAt = time.Now()
	cp := *srv
	s.d.servers[srv.ID] = &cp
	return nil
}
