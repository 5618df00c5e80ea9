// Package topology mirrors Discord guild/channel state into the store,
// keeping Server and Channel rows current as the gateway client observes
// guild join/leave events and on-demand full syncs.
package topology

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// GatewayFetcher is the subset of the gateway client topology sync needs.
type GatewayFetcher interface {
	FetchGuild(guildID string) (*discordgo.Guild, error)
	FetchChannels(guildID string) ([]*discordgo.Channel, error)
}

// Synchronizer keeps store.Server/store.Channel rows aligned with the
// platform's topology.
type Synchronizer struct {
	gateway  GatewayFetcher
	servers  store.ServerStore
	channels store.ChannelStore
}

func New(gateway GatewayFetcher, servers store.ServerStore, channels store.ChannelStore) *Synchronizer {
	return &Synchronizer{gateway: gateway, servers: servers, channels: channels}
}

// SyncAll walks every guild the gateway session currently sees and
// reconciles it.
func (s *Synchronizer) SyncAll(ctx context.Context, platformGuildIDs []string) error {
	for _, guildID := range platformGuildIDs {
		if _, err := s.SyncServer(ctx, guildID); err != nil {
			slog.Error("topology: sync server failed", "guild_id", guildID, "error", err)
		}
	}
	return nil
}

// SyncServer upserts the Server row for guildID and refreshes its channels.
func (s *Synchronizer) SyncServer(ctx context.Context, guildID string) (*store.Server, error) {
	guild, err := s.gateway.FetchGuild(guildID)
	if err != nil {
		return nil, fmt.Errorf("fetch guild: %w", err)
	}

	var iconURL *string
	if guild.Icon != "" {
		url := guild.IconURL("256")
		iconURL = &url
	}
	memberCount := guild.ApproximateMemberCount

	srv, err := s.servers.GetByPlatformID(ctx, guildID)
	if errors.Is(err, store.ErrNotFound) {
		srv = &store.Server{
			PlatformID:  guildID,
			Name:        guild.Name,
			IconURL:     iconURL,
			MemberCount: &memberCount,
			IsConnected: true,
		}
		if err := s.servers.Create(ctx, srv); err != nil {
			return nil, fmt.Errorf("create server: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("lookup server: %w", err)
	} else {
		srv.Name = guild.Name
		srv.IconURL = iconURL
		srv.MemberCount = &memberCount
		srv.IsConnected = true
		if err := s.servers.Update(ctx, srv); err != nil {
			return nil, fmt.Errorf("update server: %w", err)
		}
	}

	if err := s.SyncChannels(ctx, srv); err != nil {
		return nil, fmt.Errorf("sync channels: %w", err)
	}

	return srv, nil
}

// SyncChannels upserts every text-like channel for srv and deletes local
// channels no longer present on the platform.
func (s *Synchronizer) SyncChannels(ctx context.Context, srv *store.Server) error {
	platformChannels, err := s.gateway.FetchChannels(srv.PlatformID)
	if err != nil {
		return fmt.Errorf("fetch channels: %w", err)
	}

	surviving := map[string]bool{}
	for _, pc := range platformChannels {
		kind, ok := textLikeKind(pc.Type)
		if !ok {
			continue
		}
		surviving[pc.ID] = true

		existing, err := s.channels.GetByPlatformID(ctx, srv.ID, pc.ID)
		if errors.Is(err, store.ErrNotFound) {
			ch := &store.Channel{ServerID: srv.ID, PlatformID: pc.ID, Name: pc.Name, Kind: kind}
			if err := s.channels.Create(ctx, ch); err != nil {
				return fmt.Errorf("create channel %s: %w", pc.ID, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("lookup channel %s: %w", pc.ID, err)
		}

		existing.Name = pc.Name
		existing.Kind = kind
		if err := s.channels.Update(ctx, existing); err != nil {
			return fmt.Errorf("update channel %s: %w", pc.ID, err)
		}
	}

	local, err := s.channels.GetByServer(ctx, srv.ID)
	if err != nil {
		return fmt.Errorf("list local channels: %w", err)
	}
	for _, ch := range local {
		if !surviving[ch.PlatformID] {
			if err := s.channels.Delete(ctx, ch.ID); err != nil {
				return fmt.Errorf("delete stale channel %s: %w", ch.ID, err)
			}
		}
	}
	return nil
}

// textLikeKind maps a discordgo channel type to this domain's ChannelKind,
// reporting ok=false for channel types the core does not mirror (voice,
// category, forum, etc.).
func textLikeKind(t discordgo.ChannelType) (store.ChannelKind, bool) {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return store.ChannelKindText, true
	case discordgo.ChannelTypeGuildNews:
		return store.ChannelKindAnnouncement, true
	default:
		return "", false
	}
}

// OnGuildCreate handles a gateway GuildCreate event (join, or reconnect
// resend) by syncing that guild's full topology.
func (s *Synchronizer) OnGuildCreate(ctx context.Context, guild *discordgo.Guild) {
	if _, err := s.SyncServer(ctx, guild.ID); err != nil {
		slog.Error("topology: sync on guild create failed", "guild_id", guild.ID, "error", err)
	}
}

// OnGuildDelete handles a gateway GuildDelete event (kicked, or guild
// deleted) by marking the server disconnected rather than deleting it or
// its channels (history/logs may still reference
// them).
func (s *Synchronizer) OnGuildDelete(ctx context.Context, guildID string) {
	srv, err := s.servers.GetByPlatformID(ctx, guildID)
	if err != nil {
		slog.Error("topology: guild delete lookup failed", "guild_id", guildID, "error", err)
		return
	}
	srv.IsConnected = false
	if err := s.servers.Update(ctx, srv); err != nil {
		slog.Error("topology: guild delete update failed", "guild_id", guildID, "error", err)
	}
}
