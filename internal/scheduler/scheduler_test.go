package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nextlevelbuilder/beacon/internal/store"
	"github.com/nextlevelbuilder/beacon/internal/store/memstore"
)

type fakeSender struct {
	sent            []string
	err             error
	maxPerMinute    int
	maxPerMinuteLog []int
}

func (f *fakeSender) SendToChannel(ctx context.Context, channelID, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, channelID+"|"+body)
	return nil
}

func (f *fakeSender) SetMaxMessagesPerMinute(n int) {
	f.maxPerMinute = n
	f.maxPerMinuteLog = append(f.maxPerMinuteLog, n)
}

func TestProcessTickSendsAndAdvancesDaily(t *testing.T) {
	stores, fixtures := memstore.Stores(nil)
	fixtures.PutServer(&store.Server{ID: "srv1", PlatformID: "platform-srv1"})
	fixtures.PutChannel(&store.Channel{ID: "ch1", ServerID: "srv1", PlatformID: "platform-ch1"})

	tick := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fixtures.PutNotification(&store.Notification{
		ID:            "n1",
		ServerID:      "srv1",
		ChannelID:     "ch1",
		Message:       "standup in 5",
		RepeatType:    store.RepeatDaily,
		IsActive:      true,
		NextScheduled: ptrTime(tick),
	})

	sender := &fakeSender{}
	s := New(stores.Notifications, stores.Settings, sender, time.Minute)
	s.processTick(context.Background(), tick)

	if len(sender.sent) != 1 || sender.sent[0] != "platform-ch1|standup in 5" {
		t.Fatalf("want one delivery to platform-ch1, got %v", sender.sent)
	}

	updated := fixtures.Notification("n1")
	if !updated.IsActive {
		t.Fatal("daily notification should remain active")
	}
	wantNext := tick.AddDate(0, 0, 1)
	if updated.NextScheduled == nil || !updated.NextScheduled.Equal(wantNext) {
		t.Fatalf("want next scheduled %v, got %v", wantNext, updated.NextScheduled)
	}
	if updated.LastSent == nil || !updated.LastSent.Equal(tick) {
		t.Fatalf("want last sent %v, got %v", tick, updated.LastSent)
	}

	logs := fixtures.NotificationLogs()
	if len(logs) != 1 || logs[0].Status != store.NotificationSuccess {
		t.Fatalf("want one success log, got %v", logs)
	}
}

func TestProcessTickOnceDeactivatesAfterFire(t *testing.T) {
	stores, fixtures := memstore.Stores(nil)
	fixtures.PutServer(&store.Server{ID: "srv1", PlatformID: "platform-srv1"})
	fixtures.PutChannel(&store.Channel{ID: "ch1", ServerID: "srv1", PlatformID: "platform-ch1"})

	tick := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fixtures.PutNotification(&store.Notification{
		ID:            "n1",
		ServerID:      "srv1",
		ChannelID:     "ch1",
		Message:       "one-off reminder",
		RepeatType:    store.RepeatOnce,
		IsActive:      true,
		NextScheduled: ptrTime(tick),
	})

	sender := &fakeSender{}
	s := New(stores.Notifications, stores.Settings, sender, time.Minute)
	s.processTick(context.Background(), tick)

	updated := fixtures.Notification("n1")
	if updated.IsActive {
		t.Fatal("a once notification must deactivate after firing (invariant N1)")
	}
	if updated.NextScheduled != nil {
		t.Fatalf("want nil NextScheduled once deactivated, got %v", updated.NextScheduled)
	}
}

func TestProcessTickFailedChannelStillAdvancesAndLogsFailure(t *testing.T) {
	stores, fixtures := memstore.Stores(nil)
	fixtures.PutServer(&store.Server{ID: "srv1", PlatformID: "platform-srv1"})
	// No channel fixture: the DueNotification's ChannelPlatformID resolves empty.

	tick := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fixtures.PutNotification(&store.Notification{
		ID:            "n1",
		ServerID:      "srv1",
		ChannelID:     "missing-channel",
		Message:       "gone",
		RepeatType:    store.RepeatOnce,
		IsActive:      true,
		NextScheduled: ptrTime(tick),
	})

	sender := &fakeSender{}
	s := New(stores.Notifications, stores.Settings, sender, time.Minute)
	s.processTick(context.Background(), tick)

	if len(sender.sent) != 0 {
		t.Fatalf("want no delivery attempt, got %v", sender.sent)
	}

	logs := fixtures.NotificationLogs()
	if len(logs) != 1 || logs[0].Status != store.NotificationFailed || logs[0].Error == nil {
		t.Fatalf("want one failed log, got %v", logs)
	}

	updated := fixtures.Notification("n1")
	if updated.IsActive {
		t.Fatal("a failed once notification must still deactivate")
	}
}

func TestProcessTickSendErrorStillAdvancesRecurrence(t *testing.T) {
	stores, fixtures := memstore.Stores(nil)
	fixtures.PutServer(&store.Server{ID: "srv1", PlatformID: "platform-srv1"})
	fixtures.PutChannel(&store.Channel{ID: "ch1", ServerID: "srv1", PlatformID: "platform-ch1"})

	tick := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fixtures.PutNotification(&store.Notification{
		ID:            "n1",
		ServerID:      "srv1",
		ChannelID:     "ch1",
		Message:       "standup",
		RepeatType:    store.RepeatDaily,
		IsActive:      true,
		NextScheduled: ptrTime(tick),
	})

	sender := &fakeSender{err: errors.New("discord unavailable")}
	s := New(stores.Notifications, stores.Settings, sender, time.Minute)
	s.processTick(context.Background(), tick)

	logs := fixtures.NotificationLogs()
	if len(logs) != 1 || logs[0].Status != store.NotificationFailed {
		t.Fatalf("want one failed log, got %v", logs)
	}

	updated := fixtures.Notification("n1")
	if !updated.IsActive || updated.NextScheduled == nil {
		t.Fatal("a failed daily send must still advance to the next occurrence")
	}
}

func TestProcessTickWorkingDaysSkipEmitsNoLogOrSend(t *testing.T) {
	stores, fixtures := memstore.Stores(nil)
	fixtures.PutServer(&store.Server{ID: "srv1", PlatformID: "platform-srv1"})
	fixtures.PutChannel(&store.Channel{ID: "ch1", ServerID: "srv1", PlatformID: "platform-ch1"})
	fixtures.PutSettings(&store.BotSettings{WorkingDays: []int{1, 2, 3, 4, 5}})

	saturday := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	fixtures.PutNotification(&store.Notification{
		ID:            "n1",
		ServerID:      "srv1",
		ChannelID:     "ch1",
		Message:       "working days only",
		RepeatType:    store.RepeatWorkingDays,
		IsActive:      true,
		ScheduleDate:  time.Date(2000, 1, 1, 9, 0, 0, 0, time.UTC),
		NextScheduled: ptrTime(saturday),
	})

	sender := &fakeSender{}
	s := New(stores.Notifications, stores.Settings, sender, time.Minute)
	s.processTick(context.Background(), saturday)

	if len(sender.sent) != 0 {
		t.Fatalf("must not send on a non-working day, got %v", sender.sent)
	}
	if logs := fixtures.NotificationLogs(); len(logs) != 0 {
		t.Fatalf("must emit no log on a working-day skip, got %v", logs)
	}

	updated := fixtures.Notification("n1")
	if !updated.IsActive {
		t.Fatal("the notification must remain active across a working-day skip")
	}
	want := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC) // the following Monday
	if updated.NextScheduled == nil || !updated.NextScheduled.Equal(want) {
		t.Fatalf("want rescheduled to %v, got %v", want, updated.NextScheduled)
	}
}

func TestProcessTickRespectsEndDate(t *testing.T) {
	stores, fixtures := memstore.Stores(nil)
	fixtures.PutServer(&store.Server{ID: "srv1", PlatformID: "platform-srv1"})
	fixtures.PutChannel(&store.Channel{ID: "ch1", ServerID: "srv1", PlatformID: "platform-ch1"})

	tick := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	endDate := tick.Add(12 * time.Hour) // before the next daily occurrence
	fixtures.PutNotification(&store.Notification{
		ID:            "n1",
		ServerID:      "srv1",
		ChannelID:     "ch1",
		Message:       "ending soon",
		RepeatType:    store.RepeatDaily,
		IsActive:      true,
		EndDate:       &endDate,
		NextScheduled: ptrTime(tick),
	})

	sender := &fakeSender{}
	s := New(stores.Notifications, stores.Settings, sender, time.Minute)
	s.processTick(context.Background(), tick)

	updated := fixtures.Notification("n1")
	if updated.IsActive {
		t.Fatal("a recurrence landing after EndDate must deactivate the notification")
	}
	if updated.NextScheduled != nil {
		t.Fatalf("want nil NextScheduled past EndDate, got %v", updated.NextScheduled)
	}
}

func TestProcessTickRefreshesSenderRateLimitFromSettings(t *testing.T) {
	stores, fixtures := memstore.Stores(nil)
	fixtures.PutSettings(&store.BotSettings{MaxMessagesPerMinute: 42, WorkingDays: []int{1, 2, 3, 4, 5}})

	sender := &fakeSender{}
	s := New(stores.Notifications, stores.Settings, sender, time.Minute)
	s.processTick(context.Background(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	if len(sender.maxPerMinuteLog) != 1 || sender.maxPerMinute != 42 {
		t.Fatalf("want sender rate limit refreshed to 42, got log %v", sender.maxPerMinuteLog)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
