// Package scheduler implements the notification scheduler (C5): a
// per-minute tick that selects due notifications, delivers them, and
// advances their recurrence.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// Sender is the subset of the gateway client the scheduler needs to
// deliver a notification and govern its outbound rate.
type Sender interface {
	SendToChannel(ctx context.Context, platformChannelID, body string) error
	SetMaxMessagesPerMinute(n int)
}

// Scheduler owns the per-minute tick loop that selects, delivers, and
// reschedules due notifications.
type Scheduler struct {
	notifications store.NotificationStore
	settings      store.SettingsStore
	sender        Sender
	tickInterval  time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New constructs a Scheduler. tickInterval overrides the default 1-minute
// cadence; pass 0 to use the default (production callers should always
// pass 0 or time.Minute; shorter intervals are for tests only).
func New(notifications store.NotificationStore, settings store.SettingsStore, sender Sender, tickInterval time.Duration) *Scheduler {
	if tickInterval <= 0 {
		tickInterval = time.Minute
	}
	return &Scheduler{
		notifications: notifications,
		settings:      settings,
		sender:        sender,
		tickInterval:  tickInterval,
	}
}

// Start begins the tick loop in the background. The first tick fires at
// the next whole-minute boundary (when tickInterval is the default
// 1-minute cadence); subsequent ticks are spaced tickInterval apart and
// never overlap — if one tick's processing outruns the interval, the next
// tick is coalesced rather than run concurrently.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(runCtx)
}

// Stop cancels the tick timer and blocks until the loop has exited, so
// that by the time Stop returns no further ticks will fire.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	initialDelay := s.tickInterval
	if s.tickInterval == time.Minute {
		initialDelay = time.Until(time.Now().Truncate(time.Minute).Add(time.Minute))
	}

	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case tickTime := <-timer.C:
			s.processTick(ctx, tickTime)
			timer.Reset(s.tickInterval)
		}
	}
}

// processTick runs one scheduler activation: it reads the current
// settings, refreshes the sender's outbound throttle from
// BotSettings.MaxMessagesPerMinute, fetches the due set, and processes
// each row sequentially so a failure in one never affects the others.
func (s *Scheduler) processTick(ctx context.Context, tickTime time.Time) {
	settings, err := s.settings.GetBotSettings(ctx)
	if err != nil {
		slog.Error("scheduler: load settings failed", "error", err)
		return
	}

	s.sender.SetMaxMessagesPerMinute(settings.MaxMessagesPerMinute)

	due, err := s.notifications.GetDue(ctx, tickTime)
	if err != nil {
		slog.Error("scheduler: get due notifications failed", "error", err)
		return
	}

	for _, n := range due {
		s.processDue(ctx, tickTime, n, settings.WorkingDays)
	}
}

// processDue handles one due notification: a working-days skip reschedules
// without sending; otherwise it delivers, logs the outcome, and advances
// the recurrence.
func (s *Scheduler) processDue(ctx context.Context, tickTime time.Time, n *store.DueNotification, workingDays []int) {
	if n.RepeatType == store.RepeatWorkingDays && !isWorkingDay(tickTime, workingDays) {
		next := nextWorkingDay(tickTime, n.ScheduleDate, workingDays)
		if err := s.notifications.Update(ctx, n.ID, store.NotificationPatch{
			LastSent:      n.LastSent,
			NextScheduled: &next,
			IsActive:      true,
		}); err != nil {
			slog.Error("scheduler: persist working-day skip failed", "notification_id", n.ID, "error", err)
		}
		return
	}

	status, sendErr := s.deliver(ctx, n)
	s.writeLog(ctx, n.ID, tickTime, status, sendErr)
	s.advance(ctx, n, tickTime, workingDays)
}

func (s *Scheduler) deliver(ctx context.Context, n *store.DueNotification) (store.NotificationStatus, error) {
	if n.ChannelPlatformID == "" {
		return store.NotificationFailed, fmt.Errorf("channel not found/accessible")
	}

	body := n.Message
	if n.MentionsEveryone {
		body = "@everyone " + body
	}

	if err := s.sender.SendToChannel(ctx, n.ChannelPlatformID, body); err != nil {
		return store.NotificationFailed, err
	}
	return store.NotificationSuccess, nil
}

func (s *Scheduler) writeLog(ctx context.Context, notificationID string, sentAt time.Time, status store.NotificationStatus, sendErr error) {
	log := &store.NotificationLog{
		NotificationID: notificationID,
		SentAt:         sentAt,
		Status:         status,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		log.Error = &msg
	}
	if err := s.notifications.CreateLog(ctx, log); err != nil {
		slog.Error("scheduler: write notification log failed", "notification_id", notificationID, "error", err)
	}
}

// advance computes and persists the next fire time, guaranteeing
// invariant N1: an active row always carries a non-nil NextScheduled.
func (s *Scheduler) advance(ctx context.Context, n *store.DueNotification, tickTime time.Time, workingDays []int) {
	base := tickTime
	if n.NextScheduled != nil && n.NextScheduled.After(base) {
		base = *n.NextScheduled
	}

	next, err := nextFire(n.RepeatType, base, workingDays)
	if err != nil {
		slog.Error("scheduler: compute recurrence failed", "notification_id", n.ID, "error", err)
		next = nil
	}

	patch := store.NotificationPatch{LastSent: &tickTime}
	if next == nil || (n.EndDate != nil && next.After(*n.EndDate)) {
		patch.NextScheduled = nil
		patch.IsActive = false
	} else {
		patch.NextScheduled = next
		patch.IsActive = true
	}

	if err := s.notifications.Update(ctx, n.ID, patch); err != nil {
		slog.Error("scheduler: persist recurrence advance failed", "notification_id", n.ID, "error", err)
	}
}

func isWorkingDay(t time.Time, workingDays []int) bool {
	wd := int(t.Weekday())
	for _, d := range workingDays {
		if d == wd {
			return true
		}
	}
	return false
}
