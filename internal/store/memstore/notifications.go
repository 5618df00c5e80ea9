package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

type notificationStore struct{ d *data }

func (n notificationStore) GetDue(ctx context.Context, asOf time.Time) ([]*store.DueNotification, error) {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	var out []*store.DueNotification
	for _, nn := range n.d.notifications {
		if !nn.IsActive || nn.NextScheduled == nil || nn.NextScheduled.After(asOf) {
			continue
		}
		srv := n.d.servers[nn.ServerID]
		ch := n.d.channels[nn.ChannelID]
		due := &store.DueNotification{Notification: *nn}
		if srv != nil {
			due.ServerPlatformID = srv.PlatformID
		}
		if ch != nil {
			due.ChannelPlatformID = ch.PlatformID
		}
		out = append(out, due)
	}
	return out, nil
}

func (n notificationStore) Update(ctx context.Context, id string, patch store.NotificationPatch) error {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	nn, ok := n.d.notifications[id]
	if !ok {
		return store.ErrNotFound
	}
	cp := *nn
	cp.LastSent = patch.LastSent
	cp.NextScheduled = patch.NextScheduled
	cp.IsActive = patch.IsActive
	cp.UpdatedAt = time.Now()
	n.d.notifications[id] = &cp
	return nil
}

func (n notificationStore) CreateLog(ctx context.Context, l *store.NotificationLog) error {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.Must(uuid.NewV7()).String()
	}
	cp := *l
	n.d.notificationLogs = append(n.d.notificationLogs, &cp)
	return nil
}
