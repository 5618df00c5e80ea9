package store

import (
	"context"
	"time"
)

// ServerStore covers server topology persistence (C3 dependency).
type ServerStore interface {
	GetByPlatformID(ctx context.Context, platformID string) (*Server, error)
	Create(ctx context.Context, s *Server) error
	Update(ctx context.Context, s *Server) error
}

// ChannelStore covers channel topology persistence (C3 dependency).
type ChannelStore interface {
	GetByServer(ctx context.Context, serverID string) ([]*Channel, error)
	GetByPlatformID(ctx context.Context, serverID, platformID string) (*Channel, error)
	Create(ctx context.Context, c *Channel) error
	Update(ctx context.Context, c *Channel) error
	Delete(ctx context.Context, id string) error
}

// NotificationPatch is the set of mutable fields the scheduler (C5) is
// allowed to write back; every other Notification field is owned by the
// API caller that created the row.
type NotificationPatch struct {
	LastSent      *time.Time
	NextScheduled *time.Time
	IsActive      bool
}

// NotificationStore covers scheduled notifications (C5 dependency).
type NotificationStore interface {
	// GetDue returns every active notification whose NextScheduled is at
	// or before asOf, joined with its server/channel platform IDs. Order
	// is unspecified; the scheduler is correct under any order.
	GetDue(ctx context.Context, asOf time.Time) ([]*DueNotification, error)
	Update(ctx context.Context, id string, patch NotificationPatch) error
	CreateLog(ctx context.Context, l *NotificationLog) error
}

// ForwarderStore covers keyword forwarders (C4 dependency).
type ForwarderStore interface {
	// GetActive returns every active forwarder joined with its source and
	// destination channel platform IDs.
	GetActive(ctx context.Context) ([]*ActiveForwarder, error)
	CreateLog(ctx context.Context, l *ForwarderLog) error
}

// SettingsStore covers the singleton BotSettings row.
type SettingsStore interface {
	GetBotSettings(ctx context.Context) (*BotSettings, error)
}

// Stores aggregates every repository the runtime supervisor wires into
// its components.
type Stores struct {
	Servers       ServerStore
	Channels      ChannelStore
	Notifications NotificationStore
	Forwarders    ForwarderStore
	Settings      SettingsStore
}

// Config holds the parameters needed to construct a Stores implementation.
type Config struct {
	PostgresDSN  string
	MaxOpenConns int
}
