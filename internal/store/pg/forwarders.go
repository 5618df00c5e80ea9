package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// ForwarderStore implements store.ForwarderStore backed by Postgres.
type ForwarderStore struct {
	db *sql.DB
}

func NewForwarderStore(db *sql.DB) *ForwarderStore {
	return &ForwarderStore{db: db}
}

func (s *ForwarderStore) GetActive(ctx context.Context) ([]*store.ActiveForwarder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.user_id, f.name, f.source_server_id, f.source_channel_id, f.source_thread_id,
		       f.destination_server_id, f.destination_channel_id, f.destination_thread_id,
		       f.keywords, f.match_type, f.is_active, f.created_at, f.updated_at,
		       srcch.platform_id, dstsrv.platform_id, dstch.platform_id
		FROM forwarders f
		LEFT JOIN channels srcch ON srcch.id = f.source_channel_id
		JOIN servers dstsrv ON dstsrv.id = f.destination_server_id
		LEFT JOIN channels dstch ON dstch.id = f.destination_channel_id
		WHERE f.is_active`)
	if err != nil {
		return nil, fmt.Errorf("get active forwarders: %w", err)
	}
	defer rows.Close()

	var out []*store.ActiveForwarder
	for rows.Next() {
		var af store.ActiveForwarder
		var keywords string
		var sourceChannelID, destinationChannelID sql.NullString
		var srcChannelPlatformID, dstChannelPlatformID sql.NullString
		if err := rows.Scan(&af.ID, &af.UserID, &af.Name, &af.SourceServerID, &sourceChannelID,
			&af.SourceThreadID, &af.DestinationServerID, &destinationChannelID, &af.DestinationThreadID,
			&keywords, &af.MatchType, &af.IsActive, &af.CreatedAt, &af.UpdatedAt,
			&srcChannelPlatformID, &af.DestinationServerPlatformID, &dstChannelPlatformID); err != nil {
			return nil, fmt.Errorf("scan forwarder: %w", err)
		}
		// A deleted source/destination channel leaves these empty instead of
		// failing the whole GetActive call: a channel-scoped rule then
		// matches no message, and a rule without a destination thread is
		// logged as undeliverable. A thread-scoped rule is still keyed by
		// its SourceThreadID.
		af.SourceChannelID = sourceChannelID.String
		af.DestinationChannelID = destinationChannelID.String
		af.SourceChannelPlatformID = srcChannelPlatformID.String
		af.DestinationChannelPlatformID = dstChannelPlatformID.String
		af.Keywords = decodeKeywords(keywords)
		out = append(out, &af)
	}
	return out, rows.Err()
}

func (s *ForwarderStore) CreateLog(ctx context.Context, l *store.ForwarderLog) error {
	if l.ID == "" {
		l.ID = uuid.Must(uuid.NewV7()).String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forwarder_logs (id, forwarder_id, forwarded_at, original_message, matched_keyword, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.ForwarderID, l.ForwardedAt, l.OriginalMessage, l.MatchedKeyword, l.Status, l.Error)
	if err != nil {
		return fmt.Errorf("create forwarder log: %w", err)
	}
	return nil
}

// decodeKeywords splits the keywords column, delimited by the ASCII unit
// separator (\x1f), back into an ordered slice. A control character is
// used rather than comma because keywords may legitimately contain
// commas; Postgres array scanning support varies
// across database/sql drivers, so this keeps the column driver-neutral.
func decodeKeywords(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\x1f")
}

// EncodeKeywords joins an ordered keyword list for storage. Exported for
// the API layer's writes, which this package does not otherwise perform.
func EncodeKeywords(keywords []string) string {
	return strings.Join(keywords, "\x1f")
}
