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

// listFromView serves the page from the denormalized projection. The store
// applies the size bound per chunk and the archived filter runs inside the
// iteration, so the page fills up to the requested size with matching
// records before the lookahead is taken. No blob fetch happens here; title,
// status and component flags are inline.
func (s *MessageService) listFromView(ctx context.Context, req domain.ListMessagesRequest) (domain.MessagePage, error) {
	src, err := s.Views.QueryPage(req.Recipient, req.MaximumID, req.MinimumID, req.PageSize)
	if err != nil {
		slog.Error("getMessagesFromView|Error building queryPage iterator")
		observability.PageRequests.WithLabelValues("view", "query_error").Inc()
		return domain.MessagePage{}, &domain.QueryError{Err: err}
	}

	views, lookahead, err := paging.CollectPage(ctx, src,
		func(v store.MessageView) bool { return v.Status.IsArchived == req.Archived },
		req.PageSize)
	if err != nil {
		slog.Error(fmt.Sprintf("getMessagesFromView|Error retrieving page data from store|%s", err))
		observability.PageRequests.WithLabelValues("view", "query_error").Inc()
		return domain.MessagePage{}, &domain.QueryError{Err: err}
	}

	var nextID string
	if lookahead != nil {
		nextID = lookahead.ID
	}

	items := make([]domain.EnrichedMessage, 0, len(views))
	for _, v := range views {
		hasPrecondition, err := s.resolvePrecondition(ctx, v)
		if err != nil {
			slog.Error(fmt.Sprintf("Cannot enrich message status | Error: %s", err))
			observability.EnrichFailures.WithLabelValues("config").Inc()
			observability.PageRequests.WithLabelValues("view", "internal_error").Inc()
			return domain.MessagePage{}, &domain.InternalError{Err: err}
		}

		md, err := s.cachedServiceMetadata(ctx, v.SenderServiceID)
		if err != nil {
			slog.Error(fmt.Sprintf("Cannot enrich service data | Error: %s, ServiceId=%s", err, v.SenderServiceID))
			observability.EnrichFailures.WithLabelValues("service").Inc()
			observability.PageRequests.WithLabelValues("view", "internal_error").Inc()
			return domain.MessagePage{}, &domain.InternalError{Err: err}
		}

		items = append(items, s.enrichedFromView(v, hasPrecondition, md))
	}

	observability.PageRequests.WithLabelValues("view", "ok").Inc()
	return assemblePage(items, nextID), nil
}

// resolvePrecondition prefers the flag inlined by the projection; when the
// projection did not state one, the sender's cached remote-content
// configuration decides. Either way the flag is suppressed once the message
// has been read.
func (s *MessageService) resolvePrecondition(ctx context.Context, v store.MessageView) (bool, error) {
	tp := v.Components.ThirdParty
	var configured bool
	switch {
	case tp.Has && tp.HasPrecondition != nil:
		configured = *tp.HasPrecondition
	default:
		cfg, err := s.cachedRemoteContentConfig(ctx, v.SenderServiceID)
		if err != nil {
			return false, err
		}
		configured = cfg.HasPrecondition
	}
	return domain.EffectivePrecondition(configured, v.Status.IsRead), nil
}

func (s *MessageService) enrichedFromView(v store.MessageView, hasPrecondition bool, md store.ServiceMetadata) domain.EnrichedMessage {
	tp := v.Components.ThirdParty
	m := domain.EnrichedMessage{
		ID:               v.ID,
		Recipient:        v.Recipient,
		CreatedAt:        v.CreatedAt,
		SenderServiceID:  v.SenderServiceID,
		MessageTitle:     v.MessageTitle,
		IsRead:           v.Status.IsRead,
		IsArchived:       v.Status.IsArchived,
		TimeToLive:       v.TimeToLive,
		HasPrecondition:  hasPrecondition,
		OrganizationName: md.OrganizationName,
		ServiceName:      md.ServiceName,
		Category:         s.categoryOf(v),
	}
	if tp.Has {
		m.HasAttachments = tp.HasAttachments
		m.HasRemoteContent = tp.HasRemoteContent
	}
	return m
}

// categoryOf maps the view's components to a category. First matching
// component wins; the order is the tie-break when several flags are set.
func (s *MessageService) categoryOf(v store.MessageView) *domain.Category {
	c := v.Components
	switch {
	case c.EUCovidCert.Has:
		return &domain.Category{Tag: domain.CategoryEUCovidCert}
	case c.LegalData.Has:
		return &domain.Category{Tag: domain.CategoryLegalMessage}
	case c.ThirdParty.Has:
		tag := domain.CategoryThirdParty
		if t, ok := s.CategoryTags[v.SenderServiceID]; ok && t != "" {
			tag = domain.CategoryTag(t)
		}
		hasAttachments := c.ThirdParty.HasAttachments
		return &domain.Category{
			Tag:                 tag,
			HasAttachments:      &hasAttachments,
			ID:                  c.ThirdParty.ID,
			OriginalSender:      c.ThirdParty.OriginalSender,
			OriginalReceiptDate: c.ThirdParty.OriginalReceiptDate,
			Summary:             c.ThirdParty.Summary,
		}
	case c.Payment.Has:
		return &domain.Category{Tag: domain.CategoryPayment, NoticeNumber: c.Payment.NoticeNumber}
	default:
		return &domain.Category{Tag: domain.CategoryGeneric}
	}
}
