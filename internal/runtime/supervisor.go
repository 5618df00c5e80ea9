// Package runtime wires the gateway client (C1), topology synchronizer
// (C3), forwarder (C4), and scheduler (C5) into a single process lifecycle
// (C6).
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/beacon/internal/forwarder"
	"github.com/nextlevelbuilder/beacon/internal/gatewayclient"
	"github.com/nextlevelbuilder/beacon/internal/scheduler"
	"github.com/nextlevelbuilder/beacon/internal/store"
	"github.com/nextlevelbuilder/beacon/internal/topology"
)

// Supervisor owns the lifecycle of every long-running component and is the
// single object cmd/run.go starts and stops.
type Supervisor struct {
	gateway        *gatewayclient.Client
	synchronizer   *topology.Synchronizer
	forwarderCache *forwarder.Cache
	forwarderSvc   *forwarder.Forwarder
	scheduler      *scheduler.Scheduler
	stores         *store.Stores
}

// Options configures New.
type Options struct {
	Token                       string
	Stores                      *store.Stores
	SchedulerTickInterval       time.Duration
	DefaultMaxMessagesPerMinute int
}

// New assembles every component but does not start any of them; startup
// steps happen in Start, not in New. The gateway client
// is constructed first since the topology synchronizer and forwarder both
// depend on it (through the narrow topology.GatewayFetcher and
// forwarder.Sender interfaces); its event handlers are registered via
// method values bound to s, which is safe because s's fields are only read
// from those handlers after New returns.
func New(opts Options) *Supervisor {
	s := &Supervisor{stores: opts.Stores}

	s.gateway = gatewayclient.New(opts.Token, gatewayclient.Handlers{
		OnGuildCreate: func(ctx context.Context, g *discordgo.Guild) { s.synchronizer.OnGuildCreate(ctx, g) },
		OnGuildDelete: func(ctx context.Context, id string) { s.synchronizer.OnGuildDelete(ctx, id) },
		OnMessage:     s.handleMessage,
	})

	s.synchronizer = topology.New(s.gateway, opts.Stores.Servers, opts.Stores.Channels)
	s.forwarderCache = forwarder.NewCache(opts.Stores.Forwarders)
	s.forwarderSvc = forwarder.New(s.forwarderCache, s.gateway, opts.Stores.Forwarders)
	s.scheduler = scheduler.New(opts.Stores.Notifications, opts.Stores.Settings, s.gateway, opts.SchedulerTickInterval)

	if opts.DefaultMaxMessagesPerMinute > 0 {
		s.gateway.SetMaxMessagesPerMinute(opts.DefaultMaxMessagesPerMinute)
	}

	return s
}

// Start opens the gateway session (blocking until Ready), syncs the full
// guild topology the session reports, loads the forwarder cache, then
// starts the scheduler. Any failure in this sequence is returned and
// nothing partial is left running.
func (s *Supervisor) Start(ctx context.Context) error {
	if err := s.gateway.Start(ctx); err != nil {
		return fmt.Errorf("runtime: start gateway: %w", err)
	}

	if err := s.synchronizer.SyncAll(ctx, s.gateway.GuildIDs()); err != nil {
		_ = s.gateway.Stop(ctx)
		return fmt.Errorf("runtime: sync topology: %w", err)
	}

	if err := s.ReloadForwarders(ctx); err != nil {
		_ = s.gateway.Stop(ctx)
		return fmt.Errorf("runtime: load forwarder cache: %w", err)
	}

	s.scheduler.Start(ctx)

	slog.Info("runtime: supervisor started")
	return nil
}

// Stop runs the startup sequence in reverse: stop accepting new scheduler
// ticks first, then close the gateway session. No error in one stage
// prevents the next from running.
func (s *Supervisor) Stop(ctx context.Context) {
	s.scheduler.Stop()
	if err := s.gateway.Stop(ctx); err != nil {
		slog.Error("runtime: gateway stop failed", "error", err)
	}
	slog.Info("runtime: supervisor stopped")
}

// ReloadForwarders refreshes the forwarder cache from the store, used both
// at startup and whenever an API caller mutates a forwarder row.
func (s *Supervisor) ReloadForwarders(ctx context.Context) error {
	return s.forwarderCache.Load(ctx)
}

// Status is a pure projection of the gateway client's own status.
func (s *Supervisor) Status() (online bool, identityName string, identityID string, serverCount int) {
	return s.gateway.Status()
}

// handleMessage adapts a raw discordgo event into forwarder.InboundMessage,
// resolving thread/parent relationships via the gateway client's
// ChannelInfo (session state cache first, REST lookup on a miss).
func (s *Supervisor) handleMessage(ctx context.Context, m *discordgo.MessageCreate) {
	msg := forwarder.InboundMessage{
		Content:     m.Content,
		AuthorIsBot: m.Author != nil && m.Author.Bot,
		HasGuild:    m.GuildID != "",
		ChannelID:   m.ChannelID,
		MessageID:   m.ID,
	}

	if msg.HasGuild {
		isThread, parentID, err := s.gateway.ChannelInfo(m.ChannelID)
		if err != nil {
			slog.Error("runtime: resolve channel info failed", "channel_id", m.ChannelID, "error", err)
		} else if isThread {
			msg.IsThread = true
			msg.ParentID = parentID
		}
	}

	s.forwarderSvc.HandleMessage(ctx, msg)
}
