// Package memstore is an in-memory implementation of the store contract,
// for use in tests that exercise scheduler/forwarder/topology logic
// without a live database.
package memstore

import (
	"sync"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// data is the shared, mutex-guarded state behind every per-interface view.
type data struct {
	mu sync.Mutex

	servers       map[string]*store.Server
	channels      map[string]*store.Channel
	notifications map[string]*store.Notification
	forwarders    map[string]*store.Forwarder
	settings      *store.BotSettings

	notificationLogs []*store.NotificationLog
	forwarderLogs    []*store.ForwarderLog
}

// Fixtures exposes direct seeding/inspection helpers for tests, bypassing
// the repository contract's conflict checks.
type Fixtures struct{ d *data }

// Stores builds a *store.Stores backed entirely by in-memory maps, and
// returns a Fixtures handle for seeding test data. settings seeds the
// singleton BotSettings row; pass nil to fall back to package defaults
// (UTC, Mon-Fri working days, 20 messages/minute).
func Stores(settings *store.BotSettings) (*store.Stores, *Fixtures) {
	if settings == nil {
		settings = &store.BotSettings{
			DefaultTimezone:      "UTC",
			MaxMessagesPerMinute: 20,
			WorkingDays:          []int{1, 2, 3, 4, 5},
		}
	}
	cp := *settings

	d := &data{
		servers:       map[string]*store.Server{},
		channels:      map[string]*store.Channel{},
		notifications: map[string]*store.Notification{},
		forwarders:    map[string]*store.Forwarder{},
		settings:      &cp,
	}

	return &store.Stores{
		Servers:       serverStore{d},
		Channels:      channelStore{d},
		Notifications: notificationStore{d},
		Forwarders:    forwarderStore{d},
		Settings:      settingsStore{d},
	}, &Fixtures{d: d}
}

func (f *Fixtures) PutServer(s *store.Server) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	cp := *s
	f.d.servers[s.ID] = &cp
}

func (f *Fixtures) PutChannel(c *store.Channel) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	cp := *c
	f.d.channels[c.ID] = &cp
}

func (f *Fixtures) PutForwarder(fw *store.Forwarder) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	cp := *fw
	f.d.forwarders[fw.ID] = &cp
}

func (f *Fixtures) PutNotification(n *store.Notification) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	cp := *n
	f.d.notifications[n.ID] = &cp
}

func (f *Fixtures) PutSettings(bs *store.BotSettings) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	cp := *bs
	f.d.settings = &cp
}

func (f *Fixtures) Notification(id string) *store.Notification {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if n, ok := f.d.notifications[id]; ok {
		cp := *n
		return &cp
	}
	return nil
}

func (f *Fixtures) NotificationLogs() []*store.NotificationLog {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	out := make([]*store.NotificationLog, len(f.d.notificationLogs))
	copy(out, f.d.notificationLogs)
	return out
}

func (f *Fixtures) ForwarderLogs() []*store.ForwarderLog {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	out := make([]*store.ForwarderLog, len(f.d.forwarderLogs))
	copy(out, f.d.forwarderLogs)
	return out
}
