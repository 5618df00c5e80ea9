package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

type channelStore struct{ d *data }

func (c channelStore) findByPlatformIDLocked(serverID, platformID string) *store.Channel {
	for _, ch := range c.d.channels {
		if ch.ServerID == serverID && ch.PlatformID == platformID {
			return ch
		}
	}
	return nil
}

func (c channelStore) GetByServer(ctx context.Context, serverID string) ([]*store.Channel, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	var out []*store.Channel
	for _, ch := range c.d.channels {
		if ch.ServerID == serverID {
			cp := *ch
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (c channelStore) GetByPlatformID(ctx context.Context, serverID, platformID string) (*store.Channel, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if ch := c.findByPlatformIDLocked(serverID, platformID); ch != nil {
		cp := *ch
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (c channelStore) Create(ctx context.Context, ch *store.Channel) error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if existing := c.findByPlatformIDLocked(ch.ServerID, ch.PlatformID); existing != nil {
		return store.ErrConflict
	}
	if ch.ID == "" {
		ch.ID = uuid.Must(uuid.NewV7()).String()
	}
	now := time.Now()
	ch.CreatedAt, ch.UpdatedAt = now, now
	cp := *ch
	c.d.channels[ch.ID] = &cp
	return nil
}

func (c channelStore) Update(ctx context.Context, ch *store.Channel) error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if _, ok := c.d.channels[ch.ID]; !ok {
		return store.ErrNotFound
	}
	ch.UpdatedAt = time.Now()
	cp := *ch
	c.d.channels[ch.ID] = &cp
	return nil
}

func (c channelStore) Delete(ctx context.Context, id string) error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	delete(c.d.channels, id)
	return nil
}
