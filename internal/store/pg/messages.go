package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"inbox/internal/paging"
	"inbox/internal/store"
)

const defaultChunkSize = 100

// Messages reads the normalized message and status tables.
type Messages struct {
	DB        *pgxpool.Pool
	ChunkSize int
}

func NewMessages(db *pgxpool.Pool) *Messages { return &Messages{DB: db} }

func (m *Messages) chunkSize() int {
	if m.ChunkSize > 0 {
		return m.ChunkSize
	}
	return defaultChunkSize
}

// FindPage returns a chunked source over the recipient's messages, newest
// first, bounded by the optional maxID/minID cursors (both exclusive).
func (m *Messages) FindPage(recipient, maxID, minID string) paging.Source[store.MessageRecord] {
	return &recordSource{
		db:        m.DB,
		recipient: recipient,
		cursor:    maxID,
		minID:     minID,
		chunk:     m.chunkSize(),
	}
}

type recordSource struct {
	db        *pgxpool.Pool
	recipient string
	cursor    string
	minID     string
	chunk     int
	done      bool
}

func (s *recordSource) Next(ctx context.Context) ([]paging.Entry[store.MessageRecord], bool, error) {
	if s.done {
		return nil, false, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, recipient, created_at, sender_service_id, is_pending, time_to_live
		FROM messages
		WHERE recipient = $1
		  AND ($2 = '' OR id < $2)
		  AND ($3 = '' OR id > $3)
		ORDER BY id DESC
		LIMIT $4
	`, s.recipient, s.cursor, s.minID, s.chunk)
	if err != nil {
		return nil, false, fmt.Errorf("query messages page: %w", err)
	}
	defer rows.Close()

	var entries []paging.Entry[store.MessageRecord]
	var lastID string
	for rows.Next() {
		var r store.MessageRecord
		if err := rows.Scan(&r.ID, &r.Recipient, &r.CreatedAt, &r.SenderServiceID, &r.IsPending, &r.TimeToLive); err != nil {
			entries = append(entries, paging.Entry[store.MessageRecord]{Err: err})
			continue
		}
		lastID = r.ID
		entries = append(entries, paging.Entry[store.MessageRecord]{Value: r})
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate messages page: %w", err)
	}
	if len(entries) < s.chunk {
		s.done = true
	}
	if len(entries) == 0 {
		return nil, false, nil
	}
	if lastID != "" {
		s.cursor = lastID
	}
	return entries, true, nil
}

// BatchFindLatestStatus fetches the highest-version status row for each of
// the given message ids in a single round trip.
func (m *Messages) BatchFindLatestStatus(ctx context.Context, ids []string) (paging.Source[store.MessageStatus], error) {
	rows, err := m.DB.Query(ctx, `
		SELECT DISTINCT ON (message_id) message_id, version, is_read, is_archived, state
		FROM message_status
		WHERE message_id = ANY($1)
		ORDER BY message_id, version DESC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query latest statuses: %w", err)
	}
	defer rows.Close()

	var entries []paging.Entry[store.MessageStatus]
	for rows.Next() {
		var st store.MessageStatus
		if err := rows.Scan(&st.MessageID, &st.Version, &st.IsRead, &st.IsArchived, &st.State); err != nil {
			entries = append(entries, paging.Entry[store.MessageStatus]{Err: err})
			continue
		}
		entries = append(entries, paging.Entry[store.MessageStatus]{Value: st})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest statuses: %w", err)
	}
	return paging.FromChunks(entries), nil
}
