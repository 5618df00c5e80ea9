package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

type forwarderStore struct{ d *data }

func (f forwarderStore) GetActive(ctx context.Context) ([]*store.ActiveForwarder, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	var out []*store.ActiveForwarder
	for _, fw := range f.d.forwarders {
		if !fw.IsActive {
			continue
		}
		af := &store.ActiveForwarder{Forwarder: *fw}
		if ch := f.d.channels[fw.SourceChannelID]; ch != nil {
			af.SourceChannelPlatformID = ch.PlatformID
		}
		if srv := f.d.servers[fw.DestinationServerID]; srv != nil {
			af.DestinationServerPlatformID = srv.PlatformID
		}
		if ch := f.d.channels[fw.DestinationChannelID]; ch != nil {
			af.DestinationChannelPlatformID = ch.PlatformID
		}
		out = append(out, af)
	}
	return out, nil
}

func (f forwarderStore) CreateLog(ctx context.Context, l *store.ForwarderLog) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.Must(uuid.NewV7()).String()
	}
	cp := *l
	f.d.forwarderLogs = append(f.d.forwarderLogs, &cp)
	return nil
}

type settingsStore struct{ d *data }

func (s settingsStore) GetBotSettings(ctx context.Context) (*store.BotSettings, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	cp := *s.d.settings
	return &cp, nil
}
