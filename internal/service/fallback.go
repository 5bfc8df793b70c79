package service

import (
	"context"
	"fmt"
	"log/slog"

	"inbox/internal/domain"
	"inbox/internal/observability"
	"inbox/internal/paging"
	"inbox/internal/store"
)

// listWithStatusJoin is the fallback path for deployments without the view
// projection. The page is drawn from raw records (pending ones never
// visible), then statuses are joined in one batched lookup and content is
// fetched per message. The page-size bound applies to the raw fetch; the
// archived filter runs afterwards, so a visible page may be shorter than
// requested while next still reflects the raw window.
func (s *MessageService) listWithStatusJoin(ctx context.Context, req domain.ListMessagesRequest) (domain.MessagePage, error) {
	src := s.Records.FindPage(req.Recipient, req.MaximumID, req.MinimumID)
	records, lookahead, err := paging.CollectPage(ctx, src,
		func(r store.MessageRecord) bool { return !r.IsPending },
		req.PageSize)
	if err != nil {
		slog.Error(fmt.Sprintf("getMessages|Error retrieving page data from store|%s", err))
		observability.PageRequests.WithLabelValues("fallback", "query_error").Inc()
		return domain.MessagePage{}, &domain.QueryError{Err: err}
	}

	var nextID string
	if lookahead != nil {
		nextID = lookahead.ID
	}

	if !req.Enrich {
		items := make([]domain.EnrichedMessage, 0, len(records))
		for _, r := range records {
			items = append(items, baseEnriched(r))
		}
		observability.PageRequests.WithLabelValues("fallback", "ok").Inc()
		return assemblePage(items, nextID), nil
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}

	statuses, err := s.latestStatuses(ctx, ids)
	if err != nil {
		slog.Error(fmt.Sprintf("Cannot enrich message status | Error: %s", err))
		observability.EnrichFailures.WithLabelValues("status").Inc()
		observability.PageRequests.WithLabelValues("fallback", "internal_error").Inc()
		return domain.MessagePage{}, &domain.InternalError{Err: err}
	}

	items := make([]domain.EnrichedMessage, 0, len(records))
	for _, r := range records {
		st, ok := statuses[r.ID]
		if !ok {
			err := fmt.Errorf("missing status for message %q", r.ID)
			slog.Error(fmt.Sprintf("Cannot enrich message status | Error: %s", err))
			observability.EnrichFailures.WithLabelValues("status").Inc()
			observability.PageRequests.WithLabelValues("fallback", "internal_error").Inc()
			return domain.MessagePage{}, &domain.InternalError{Err: err}
		}
		if st.IsArchived != req.Archived {
			continue
		}

		content, found, err := s.Content.GetContent(ctx, r.ID)
		if err == nil && !found {
			err = fmt.Errorf("content not found")
		}
		if err != nil {
			slog.Error(fmt.Sprintf("Cannot enrich message %q | Error: %s", r.ID, err))
			observability.EnrichFailures.WithLabelValues("content").Inc()
			observability.PageRequests.WithLabelValues("fallback", "internal_error").Inc()
			return domain.MessagePage{}, &domain.InternalError{Err: err}
		}

		md, found, err := s.Services.FindLatestByID(ctx, r.SenderServiceID)
		if err == nil && !found {
			err = fmt.Errorf("service not found")
		}
		if err != nil {
			slog.Error(fmt.Sprintf("Cannot enrich service data | Error: %s, ServiceId=%s", err, r.SenderServiceID))
			observability.EnrichFailures.WithLabelValues("service").Inc()
			observability.PageRequests.WithLabelValues("fallback", "internal_error").Inc()
			return domain.MessagePage{}, &domain.InternalError{Err: err}
		}

		m := baseEnriched(r)
		m.MessageTitle = content.Subject
		m.IsRead = st.IsRead
		m.IsArchived = st.IsArchived
		m.OrganizationName = md.OrganizationName
		m.ServiceName = md.ServiceName
		items = append(items, m)
	}

	observability.PageRequests.WithLabelValues("fallback", "ok").Inc()
	return assemblePage(items, nextID), nil
}

// latestStatuses drains the batched lookup into a by-message-id map.
func (s *MessageService) latestStatuses(ctx context.Context, ids []string) (map[string]store.MessageStatus, error) {
	if len(ids) == 0 {
		return map[string]store.MessageStatus{}, nil
	}
	src, err := s.Records.BatchFindLatestStatus(ctx, ids)
	if err != nil {
		return nil, err
	}
	all, err := paging.CollectAll(ctx, src)
	if err != nil {
		return nil, err
	}
	out := make(map[string]store.MessageStatus, len(all))
	for _, st := range all {
		out[st.MessageID] = st
	}
	return out, nil
}

// baseEnriched maps a raw record to the output shape with category GENERIC
// and no content or service fields. This is the whole of the un-enriched
// response.
func baseEnriched(r store.MessageRecord) domain.EnrichedMessage {
	return domain.EnrichedMessage{
		ID:              r.ID,
		Recipient:       r.Recipient,
		CreatedAt:       r.CreatedAt,
		SenderServiceID: r.SenderServiceID,
		TimeToLive:      r.TimeToLive,
		Category:        &domain.Category{Tag: domain.CategoryGeneric},
	}
}

func assemblePage(items []domain.EnrichedMessage, nextID string) domain.MessagePage {
	page := domain.MessagePage{Items: items, Next: nextID}
	if len(items) > 0 {
		page.Prev = items[0].ID
	}
	if page.Items == nil {
		page.Items = []domain.EnrichedMessage{}
	}
	return page
}
