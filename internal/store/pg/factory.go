package pg

import (
	"fmt"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// NewStores opens a Postgres connection and constructs every repository
// the runtime supervisor needs.
func NewStores(cfg store.Config) (*store.Stores, error) {
	db, err := OpenDB(cfg.PostgresDSN, cfg.MaxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	return &store.Stores{
		Servers:       NewServerStore(db),
		Channels:      NewChannelStore(db),
		Notifications: NewNotificationStore(db),
		Forwarders:    NewForwarderStore(db),
		Settings:      NewSettingsStore(db),
	}, nil
}
