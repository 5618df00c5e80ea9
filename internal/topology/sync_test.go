package topology

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/beacon/internal/store"
	"github.com/nextlevelbuilder/beacon/internal/store/memstore"
)

type fakeGateway struct {
	guild    *discordgo.Guild
	channels []*discordgo.Channel
	errOn    string
}

func (f *fakeGateway) FetchGuild(guildID string) (*discordgo.Guild, error) {
	if f.errOn != "" && guildID == f.errOn {
		return nil, errors.New("fetch guild failed")
	}
	return f.guild, nil
}
func (f *fakeGateway) FetchChannels(guildID string) ([]*discordgo.Channel, error) {
	return f.channels, nil
}

func TestSyncServerCreatesServerAndChannels(t *testing.T) {
	stores, _ := memstore.Stores(nil)
	gw := &fakeGateway{
		guild: &discordgo.Guild{ID: "g1", Name: "Acme Corp"},
		channels: []*discordgo.Channel{
			{ID: "c1", Name: "general", Type: discordgo.ChannelTypeGuildText},
			{ID: "c2", Name: "announcements", Type: discordgo.ChannelTypeGuildNews},
			{ID: "c3", Name: "general-voice", Type: discordgo.ChannelTypeGuildVoice},
		},
	}
	sync := New(gw, stores.Servers, stores.Channels)

	srv, err := sync.SyncServer(context.Background(), "g1")
	if err != nil {
		t.Fatalf("SyncServer: %v", err)
	}
	if srv.Name != "Acme Corp" || !srv.IsConnected {
		t.Fatalf("unexpected server: %+v", srv)
	}

	channels, err := stores.Channels.GetByServer(context.Background(), srv.ID)
	if err != nil {
		t.Fatalf("GetByServer: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("want 2 text-like channels (voice excluded), got %d: %v", len(channels), channels)
	}
}

func TestSyncChannelsDeletesStaleChannels(t *testing.T) {
	stores, fixtures := memstore.Stores(nil)
	srv := &store.Server{ID: "srv1", PlatformID: "g1", Name: "Acme"}
	fixtures.PutServer(srv)
	fixtures.PutChannel(&store.Channel{ID: "stale", ServerID: "srv1", PlatformID: "gone", Kind: store.ChannelKindText})

	gw := &fakeGateway{
		guild:    &discordgo.Guild{ID: "g1", Name: "Acme"},
		channels: []*discordgo.Channel{{ID: "fresh", Name: "general", Type: discordgo.ChannelTypeGuildText}},
	}
	sync := New(gw, stores.Servers, stores.Channels)

	if err := sync.SyncChannels(context.Background(), srv); err != nil {
		t.Fatalf("SyncChannels: %v", err)
	}

	channels, err := stores.Channels.GetByServer(context.Background(), "srv1")
	if err != nil {
		t.Fatalf("GetByServer: %v", err)
	}
	if len(channels) != 1 || channels[0].PlatformID != "fresh" {
		t.Fatalf("want only the surviving channel, got %v", channels)
	}
}

func TestSyncAllSyncsEveryGuildIDAndSkipsFailures(t *testing.T) {
	stores, _ := memstore.Stores(nil)
	gw := &fakeGateway{
		guild:    &discordgo.Guild{ID: "placeholder", Name: "Acme"},
		channels: []*discordgo.Channel{{ID: "c1", Name: "general", Type: discordgo.ChannelTypeGuildText}},
		errOn:    "g2",
	}
	sync := New(gw, stores.Servers, stores.Channels)

	if err := sync.SyncAll(context.Background(), []string{"g1", "g2", "g3"}); err != nil {
		t.Fatalf("SyncAll: %v", err)
	}

	for _, id := range []string{"g1", "g3"} {
		srv, err := stores.Servers.GetByPlatformID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByPlatformID(%s): %v", id, err)
		}
		if srv.Name != "Acme" {
			t.Fatalf("unexpected server %+v", srv)
		}
	}

	if _, err := stores.Servers.GetByPlatformID(context.Background(), "g2"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want g2 left unsynced after its fetch failure, got err=%v", err)
	}
}

func TestOnGuildDeleteMarksDisconnectedWithoutDeleting(t *testing.T) {
	stores, fixtures := memstore.Stores(nil)
	fixtures.PutServer(&store.Server{ID: "srv1", PlatformID: "g1", IsConnected: true})

	sync := New(&fakeGateway{}, stores.Servers, stores.Channels)
	sync.OnGuildDelete(context.Background(), "g1")

	srv, err := stores.Servers.GetByPlatformID(context.Background(), "g1")
	if err != nil {
		t.Fatalf("GetByPlatformID: %v", err)
	}
	if srv.IsConnected {
		t.Fatal("want server marked disconnected")
	}
}
