// Package gatewayclient wraps a discordgo session into the lifecycle shape
// the runtime supervisor expects: Start/Stop/Status plus typed event
// surfacing.
package gatewayclient

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// Handlers are the callbacks the topology synchronizer (C3) and forwarder
// matcher (C4) register to react to gateway events.
type Handlers struct {
	OnGuildCreate func(ctx context.Context, guild *discordgo.Guild)
	OnGuildDelete func(ctx context.Context, guildID string)
	OnMessage     func(ctx context.Context, msg *discordgo.MessageCreate)
}

// Client manages a single Discord gateway session.
type Client struct {
	token    string
	handlers Handlers

	mu       sync.RWMutex
	session  *discordgo.Session
	running  bool
	botID    string
	botName  string
	guildIDs []string

	limiterMu sync.Mutex
	limiter   *rate.Limiter
}

// New constructs a Client. The token may be empty, in which case Start
// logs a warning and leaves the client stopped rather than failing.
func New(token string, handlers Handlers) *Client {
	return &Client{
		token:    token,
		handlers: handlers,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/20), 20),
	}
}

// Start opens the gateway session, retrying the initial connection with a
// capped exponential backoff, and blocks until the session reaches Ready
// (or ctx is done). Steady-state reconnects are left to discordgo's own
// session management.
func (c *Client) Start(ctx context.Context) error {
	if c.token == "" {
		slog.Warn("gatewayclient: no token configured, staying offline")
		return nil
	}

	session, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return fmt.Errorf("construct session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	ready := make(chan *discordgo.Ready, 1)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		select {
		case ready <- r:
		default:
		}
	})
	session.AddHandler(c.handleGuildCreate)
	session.AddHandler(c.handleGuildDelete)
	session.AddHandler(c.handleMessageCreate)

	if err := openWithBackoff(ctx, session); err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	select {
	case r := <-ready:
		guildIDs := make([]string, 0, len(r.Guilds))
		for _, g := range r.Guilds {
			guildIDs = append(guildIDs, g.ID)
		}

		c.mu.Lock()
		c.session = session
		c.running = true
		c.botID = r.User.ID
		c.botName = r.User.Username
		c.guildIDs = guildIDs
		c.mu.Unlock()

		slog.Info("gatewayclient: ready", "bot_id", r.User.ID, "bot_username", r.User.Username, "guild_count", len(guildIDs))
		return nil
	case <-ctx.Done():
		session.Close()
		return fmt.Errorf("wait for ready: %w", ctx.Err())
	}
}

// Stop closes the gateway session.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.running = false
	c.session = nil
	return err
}

// Status reports whether the gateway session is open, the identity it
// authenticated as, and the number of guilds currently visible.
func (c *Client) Status() (online bool, identityName string, identityID string, serverCount int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running, c.botName, c.botID, len(c.guildIDs)
}

// GuildIDs returns the platform guild IDs visible as of the last Ready
// event, kept current by GuildCreate/GuildDelete as the session runs.
func (c *Client) GuildIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.guildIDs))
	copy(out, c.guildIDs)
	return out
}

// SetMaxMessagesPerMinute refreshes the outbound throttle. The runtime
// supervisor calls it once at construction with the configured default;
// the scheduler calls it on every tick with the singleton
// BotSettings.MaxMessagesPerMinute.
func (c *Client) SetMaxMessagesPerMinute(n int) {
	if n <= 0 {
		n = 1
	}
	c.limiterMu.Lock()
	defer c.limiterMu.Unlock()
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}

func (c *Client) sessionOrNil() *discordgo.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	c.mu.Lock()
	if !containsGuildID(c.guildIDs, g.Guild.ID) {
		c.guildIDs = append(c.guildIDs, g.Guild.ID)
	}
	c.mu.Unlock()

	if c.handlers.OnGuildCreate != nil {
		c.handlers.OnGuildCreate(context.Background(), g.Guild)
	}
}

func (c *Client) handleGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	c.mu.Lock()
	c.guildIDs = removeGuildID(c.guildIDs, g.ID)
	c.mu.Unlock()

	if c.handlers.OnGuildDelete != nil {
		c.handlers.OnGuildDelete(context.Background(), g.ID)
	}
}

func containsGuildID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func removeGuildID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func (c *Client) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author != nil && m.Author.Bot {
		return
	}
	if c.handlers.OnMessage != nil {
		c.handlers.OnMessage(context.Background(), m)
	}
}
