package forwarder

import (
	"context"
	"errors"
	"testing"

	"github.com/nextlevelbuilder/beacon/internal/store"
	"github.com/nextlevelbuilder/beacon/internal/store/memstore"
)

type fakeSender struct {
	sent []sentMessage
	err  error
}

type sentMessage struct {
	channelID string
	body      string
}

func (f *fakeSender) SendToChannel(ctx context.Context, channelID, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, body: body})
	return nil
}

func setupForwarderFixture(t *testing.T) (*store.Stores, *memstore.Fixtures) {
	t.Helper()
	stores, fixtures := memstore.Stores(nil)
	fixtures.PutChannel(&store.Channel{ID: "ch-src", PlatformID: "platform-src"})
	fixtures.PutServer(&store.Server{ID: "srv-dst", PlatformID: "platform-srv-dst"})
	fixtures.PutChannel(&store.Channel{ID: "ch-dst", PlatformID: "platform-dst"})
	return stores, fixtures
}

func TestHandleMessageForwardsOnMatch(t *testing.T) {
	stores, fixtures := setupForwarderFixture(t)
	fixtures.PutForwarder(&store.Forwarder{
		ID:                   "f1",
		SourceChannelID:      "ch-src",
		DestinationServerID:  "srv-dst",
		DestinationChannelID: "ch-dst",
		Keywords:             []string{"deploy"},
		MatchType:            store.MatchContains,
		IsActive:             true,
	})

	cache := NewCache(stores.Forwarders)
	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	sender := &fakeSender{}
	f := New(cache, sender, stores.Forwarders)

	f.HandleMessage(context.Background(), InboundMessage{
		Content:   "we are about to deploy",
		HasGuild:  true,
		ChannelID: "platform-src",
	})

	if len(sender.sent) != 1 {
		t.Fatalf("want 1 forwarded message, got %d", len(sender.sent))
	}
	if sender.sent[0].channelID != "platform-dst" {
		t.Fatalf("want destination platform-dst, got %s", sender.sent[0].channelID)
	}

	logs := fixtures.ForwarderLogs()
	if len(logs) != 1 || logs[0].Status != store.ForwarderSuccess {
		t.Fatalf("want one success log, got %v", logs)
	}
}

func TestHandleMessageIgnoresBotAuthorsAndDMs(t *testing.T) {
	stores, fixtures := setupForwarderFixture(t)
	fixtures.PutForwarder(&store.Forwarder{
		ID:                   "f1",
		SourceChannelID:      "ch-src",
		DestinationServerID:  "srv-dst",
		DestinationChannelID: "ch-dst",
		Keywords:             []string{"deploy"},
		MatchType:            store.MatchContains,
		IsActive:             true,
	})
	cache := NewCache(stores.Forwarders)
	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	sender := &fakeSender{}
	f := New(cache, sender, stores.Forwarders)

	f.HandleMessage(context.Background(), InboundMessage{Content: "deploy now", AuthorIsBot: true, HasGuild: true, ChannelID: "platform-src"})
	f.HandleMessage(context.Background(), InboundMessage{Content: "deploy now", HasGuild: false, ChannelID: "platform-src"})

	if len(sender.sent) != 0 {
		t.Fatalf("want no forwarded messages, got %d", len(sender.sent))
	}
}

func TestHandleMessageLogsFailureOnSendError(t *testing.T) {
	stores, fixtures := setupForwarderFixture(t)
	fixtures.PutForwarder(&store.Forwarder{
		ID:                   "f1",
		SourceChannelID:      "ch-src",
		DestinationServerID:  "srv-dst",
		DestinationChannelID: "ch-dst",
		Keywords:             []string{"deploy"},
		MatchType:            store.MatchContains,
		IsActive:             true,
	})
	cache := NewCache(stores.Forwarders)
	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	sender := &fakeSender{err: errors.New("rate limited")}
	f := New(cache, sender, stores.Forwarders)

	f.HandleMessage(context.Background(), InboundMessage{Content: "deploy now", HasGuild: true, ChannelID: "platform-src"})

	logs := fixtures.ForwarderLogs()
	if len(logs) != 1 || logs[0].Status != store.ForwarderFailed || logs[0].Error == nil {
		t.Fatalf("want one failed log with error set, got %v", logs)
	}
}
