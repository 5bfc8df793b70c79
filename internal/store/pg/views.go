package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"inbox/internal/paging"
	"inbox/internal/store"
)

// Views reads the denormalized message view table using store-side cursor
// pagination: each chunk is one LIMIT-bounded keyset query.
type Views struct {
	DB *pgxpool.Pool
}

func NewViews(db *pgxpool.Pool) *Views { return &Views{DB: db} }

// QueryPage builds a chunked source over the recipient's message views,
// newest first, with chunks of pageSize. Invalid bounds fail here, before
// any row is read.
func (v *Views) QueryPage(recipient, maxID, minID string, pageSize int) (paging.Source[store.MessageView], error) {
	if recipient == "" {
		return nil, fmt.Errorf("queryPage: empty recipient")
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("queryPage: non-positive page size %d", pageSize)
	}
	for _, id := range []string{maxID, minID} {
		if id == "" {
			continue
		}
		if _, err := ulid.Parse(id); err != nil {
			return nil, fmt.Errorf("queryPage: invalid cursor %q: %w", id, err)
		}
	}
	return &viewSource{
		db:        v.DB,
		recipient: recipient,
		cursor:    maxID,
		minID:     minID,
		chunk:     pageSize,
	}, nil
}

type viewSource struct {
	db        *pgxpool.Pool
	recipient string
	cursor    string
	minID     string
	chunk     int
	done      bool
}

func (s *viewSource) Next(ctx context.Context) ([]paging.Entry[store.MessageView], bool, error) {
	if s.done {
		return nil, false, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, recipient, created_at, sender_service_id, time_to_live, message_title,
		       is_read, is_archived,
		       payment_has, COALESCE(payment_notice_number, ''),
		       legal_has, eu_covid_cert_has, attachments_has,
		       third_party_has, COALESCE(third_party_id, ''),
		       COALESCE(third_party_original_sender, ''), third_party_original_receipt_date,
		       COALESCE(third_party_summary, ''), third_party_has_attachments,
		       third_party_has_remote_content, third_party_has_precondition
		FROM message_views
		WHERE recipient = $1
		  AND ($2 = '' OR id < $2)
		  AND ($3 = '' OR id > $3)
		ORDER BY id DESC
		LIMIT $4
	`, s.recipient, s.cursor, s.minID, s.chunk)
	if err != nil {
		return nil, false, fmt.Errorf("query message views page: %w", err)
	}
	defer rows.Close()

	var entries []paging.Entry[store.MessageView]
	var lastID string
	for rows.Next() {
		var mv store.MessageView
		if err := rows.Scan(
			&mv.ID, &mv.Recipient, &mv.CreatedAt, &mv.SenderServiceID, &mv.TimeToLive, &mv.MessageTitle,
			&mv.Status.IsRead, &mv.Status.IsArchived,
			&mv.Components.Payment.Has, &mv.Components.Payment.NoticeNumber,
			&mv.Components.LegalData.Has, &mv.Components.EUCovidCert.Has, &mv.Components.Attachments.Has,
			&mv.Components.ThirdParty.Has, &mv.Components.ThirdParty.ID,
			&mv.Components.ThirdParty.OriginalSender, &mv.Components.ThirdParty.OriginalReceiptDate,
			&mv.Components.ThirdParty.Summary, &mv.Components.ThirdParty.HasAttachments,
			&mv.Components.ThirdParty.HasRemoteContent, &mv.Components.ThirdParty.HasPrecondition,
		); err != nil {
			entries = append(entries, paging.Entry[store.MessageView]{Err: err})
			continue
		}
		lastID = mv.ID
		entries = append(entries, paging.Entry[store.MessageView]{Value: mv})
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate message views page: %w", err)
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
