package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// NotificationStore implements store.NotificationStore backed by Postgres.
type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) GetDue(ctx context.Context, asOf time.Time) ([]*store.DueNotification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.user_id, n.server_id, n.channel_id, n.title, n.message,
		       n.schedule_date, n.repeat_type, n.end_date, n.is_active, n.timezone,
		       n.mentions_everyone, n.last_sent, n.next_scheduled, n.created_at, n.updated_at,
		       srv.platform_id, ch.platform_id
		FROM notifications n
		JOIN servers srv ON srv.id = n.server_id
		LEFT JOIN channels ch ON ch.id = n.channel_id
		WHERE n.is_active AND n.next_scheduled <= $1`, asOf)
	if err != nil {
		return nil, fmt.Errorf("get due notifications: %w", err)
	}
	defer rows.Close()

	var out []*store.DueNotification
	for rows.Next() {
		var d store.DueNotification
		var channelID, channelPlatformID sql.NullString
		if err := rows.Scan(&d.ID, &d.UserID, &d.ServerID, &channelID, &d.Title, &d.Message,
			&d.ScheduleDate, &d.RepeatType, &d.EndDate, &d.IsActive, &d.Timezone,
			&d.MentionsEveryone, &d.LastSent, &d.NextScheduled, &d.CreatedAt, &d.UpdatedAt,
			&d.ServerPlatformID, &channelPlatformID); err != nil {
			return nil, fmt.Errorf("scan due notification: %w", err)
		}
		// A deleted channel leaves ChannelID/ChannelPlatformID empty; the
		// scheduler still needs the row so it can emit a failed-send log.
		d.ChannelID = channelID.String
		d.ChannelPlatformID = channelPlatformID.String
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (s *NotificationStore) Update(ctx context.Context, id string, patch store.NotificationPatch) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET last_sent = $2, next_scheduled = $3, is_active = $4, updated_at = now()
		WHERE id = $1`,
		id, patch.LastSent, patch.NextScheduled, patch.IsActive)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) CreateLog(ctx context.Context, l *store.NotificationLog) error {
	if l.ID == "" {
		l.ID = uuid.Must(uuid.NewV7()).String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_logs (id, notification_id, sent_at, status, error)
		VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.NotificationID, l.SentAt, l.Status, l.Error)
	if err != nil {
		return fmt.Errorf("create notification log: %w", err)
	}
	return nil
}
