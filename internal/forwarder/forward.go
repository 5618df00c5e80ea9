package forwarder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// Sender is the subset of the gateway client the forwarder needs to
// deliver a forwarded message. The same call addresses either a standing
// channel or a thread; the platform distinguishes them only by ID.
type Sender interface {
	SendToChannel(ctx context.Context, platformChannelID, body string) error
}

// InboundMessage is the platform-agnostic shape of a MessageCreate event,
// decoupling the matcher from any particular gateway library.
type InboundMessage struct {
	Content     string
	AuthorIsBot bool
	HasGuild    bool
	IsThread    bool
	ChannelID   string // platform ID of the channel or thread the message was posted in
	ParentID    string // platform ID of the thread's parent channel; empty unless IsThread
	MessageID   string
}

const forwardedBodyPrefix = "**Forwarded Message**\n-----\n"

// maxLoggedMessageLen bounds the stored length of ForwarderLog.OriginalMessage.
const maxLoggedMessageLen = 500

// Forwarder matches inbound messages against the active cache and
// dispatches matching bodies to each rule's destination channel or thread.
type Forwarder struct {
	cache  *Cache
	sender Sender
	logs   store.ForwarderStore
}

func New(cache *Cache, sender Sender, logs store.ForwarderStore) *Forwarder {
	return &Forwarder{cache: cache, sender: sender, logs: logs}
}

// HandleMessage runs the inbound pipeline: bot and DM filtering,
// candidate-rule lookup, ordered keyword matching, and per-rule delivery
// with provenance logging. It never panics and never blocks the caller
// past whatever the configured Sender blocks for.
func (f *Forwarder) HandleMessage(ctx context.Context, msg InboundMessage) {
	if msg.AuthorIsBot || !msg.HasGuild {
		return
	}

	var candidates []*store.ActiveForwarder
	if msg.IsThread {
		candidates = f.cache.Candidates(msg.ParentID, msg.ChannelID)
	} else {
		candidates = f.cache.Candidates(msg.ChannelID, "")
	}

	for _, rule := range candidates {
		keyword, ok := Match(&rule.Forwarder, msg.Content)
		if !ok {
			continue
		}
		f.forward(ctx, rule, keyword, msg)
	}
}

func (f *Forwarder) forward(ctx context.Context, rule *store.ActiveForwarder, keyword string, msg InboundMessage) {
	target := rule.DestinationChannelPlatformID
	if rule.DestinationThreadID != nil && *rule.DestinationThreadID != "" {
		target = *rule.DestinationThreadID
	}

	logEntry := &store.ForwarderLog{
		ID:              uuid.Must(uuid.NewV7()).String(),
		ForwarderID:     rule.ID,
		ForwardedAt:     time.Now(),
		OriginalMessage: truncate(msg.Content, maxLoggedMessageLen),
		MatchedKeyword:  &keyword,
	}

	if target == "" {
		errMsg := "destination channel not found/accessible"
		logEntry.Status = store.ForwarderFailed
		logEntry.Error = &errMsg
		slog.Error("forwarder: destination unresolved", "forwarder_id", rule.ID)
	} else if err := f.sender.SendToChannel(ctx, target, forwardedBodyPrefix+msg.Content); err != nil {
		errMsg := err.Error()
		logEntry.Status = store.ForwarderFailed
		logEntry.Error = &errMsg
		slog.Error("forwarder: delivery failed", "forwarder_id", rule.ID, "error", err)
	} else {
		logEntry.Status = store.ForwarderSuccess
	}

	if err := f.logs.CreateLog(ctx, logEntry); err != nil {
		slog.Error("forwarder: log write failed", "forwarder_id", rule.ID, "error", err)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
