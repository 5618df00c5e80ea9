// Package store defines the repository contract (C2) for beacon's control
// plane entities, independent of any particular database backend.
package store

import "time"

// Server is a connected guild/workspace on the messaging platform.
type Server struct {
	ID          string
	PlatformID  string
	Name        string
	IconURL     *string
	MemberCount *int
	IsConnected bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChannelKind distinguishes the two text-like channel kinds the core
// mirrors; threads are addressed directly by platform ID and are never
// stored as Channel rows of their own.
type ChannelKind string

const (
	ChannelKindText         ChannelKind = "text"
	ChannelKindAnnouncement ChannelKind = "announcement"
)

// Channel is a text or announcement channel within a Server.
type Channel struct {
	ID         string
	ServerID   string
	PlatformID string
	Name       string
	Kind       ChannelKind
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RepeatType is the recurrence rule for a Notification.
type RepeatType string

const (
	RepeatOnce        RepeatType = "once"
	RepeatDaily       RepeatType = "daily"
	RepeatWeekly      RepeatType = "weekly"
	RepeatMonthly     RepeatType = "monthly"
	RepeatWorkingDays RepeatType = "working_days"
)

// Notification is a scheduled message targeting a channel. The
// core mutates only LastSent, NextScheduled and IsActive; every other
// field belongs to whoever created the row (invariant N1-N3).
type Notification struct {
	ID               string
	UserID           string
	ServerID         string
	ChannelID        string
	Title            *string
	Message          string
	ScheduleDate     time.Time
	RepeatType       RepeatType
	EndDate          *time.Time
	IsActive         bool
	Timezone         string
	MentionsEveryone bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastSent         *time.Time
	// NextScheduled is nil only when IsActive is false (invariant N1).
	NextScheduled *time.Time
}

// DueNotification is a Notification joined with the platform IDs needed to
// address its destination, as returned by NotificationStore.GetDue.
type DueNotification struct {
	Notification
	ServerPlatformID  string
	ChannelPlatformID string
}

// NotificationStatus is the outcome of one delivery attempt.
type NotificationStatus string

const (
	NotificationSuccess NotificationStatus = "success"
	NotificationFailed  NotificationStatus = "failed"
)

// NotificationLog records one delivery attempt of a Notification.
type NotificationLog struct {
	ID             string
	NotificationID string
	SentAt         time.Time
	Status         NotificationStatus
	Error          *string
}

// MatchType controls how Forwarder.Keywords are compared against inbound
// message content.
type MatchType string

const (
	MatchContains MatchType = "contains"
	MatchExact    MatchType = "exact"
)

// Forwarder mirrors inbound messages matching Keywords from a source
// channel/thread to a destination channel/thread (invariant F1: Keywords
// is non-empty).
type Forwarder struct {
	ID                   string
	UserID               string
	Name                 string
	SourceServerID       string
	SourceChannelID      string
	SourceThreadID       *string
	DestinationServerID  string
	DestinationChannelID string
	DestinationThreadID  *string
	// Keywords is ordered; the first entry that matches wins.
	Keywords  []string
	MatchType MatchType
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveForwarder is a Forwarder joined with the platform IDs of its
// source and destination channels/servers, as returned by
// ForwarderStore.GetActive.
type ActiveForwarder struct {
	Forwarder
	SourceChannelPlatformID      string
	DestinationServerPlatformID  string
	DestinationChannelPlatformID string
}

// ForwarderStatus is the outcome of one forward attempt.
type ForwarderStatus string

const (
	ForwarderSuccess ForwarderStatus = "success"
	ForwarderFailed  ForwarderStatus = "failed"
)

// ForwarderLog records one forwarded (or attempted) message.
type ForwarderLog struct {
	ID              string
	ForwarderID     string
	ForwardedAt     time.Time
	OriginalMessage string
	MatchedKeyword  *string
	Status          ForwarderStatus
	Error           *string
}

// BotSettings is the process-wide singleton of operational tuning knobs.
type BotSettings struct {
	DefaultTimezone      string
	MaxMessagesPerMinute int
	EnableAnalytics      bool
	AutoCleanupDays      int
	// WorkingDays holds weekday numbers, 0 (Sunday) through 6 (Saturday).
	WorkingDays []int
	UpdatedAt   time.Time
}
