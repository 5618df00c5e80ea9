package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// SettingsStore implements store.SettingsStore backed by Postgres, reading
// the singleton bot_settings row (pinned by its boolean primary key).
type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) GetBotSettings(ctx context.Context) (*store.BotSettings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT default_timezone, max_messages_per_minute, enable_analytics,
		       auto_cleanup_days, working_days, updated_at
		FROM bot_settings WHERE id = true`)

	var bs store.BotSettings
	var workingDays string
	err := row.Scan(&bs.DefaultTimezone, &bs.MaxMessagesPerMinute, &bs.EnableAnalytics,
		&bs.AutoCleanupDays, &workingDays, &bs.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get bot settings: %w", err)
	}
	bs.WorkingDays = decodeWorkingDays(workingDays)
	return &bs, nil
}

func decodeWorkingDays(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if v, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			out = append(out, v)
		}
	}
	return out
}
