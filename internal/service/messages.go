// Package service implements the paginated message list operation: a page is
// drawn from either the normalized record store (status join) or the
// denormalized view store, enriched, and returned with prev/next cursors.
package service

import (
	"context"
	"time"

	"inbox/internal/cache"
	"inbox/internal/domain"
	"inbox/internal/paging"
	"inbox/internal/store"
)

type RecordStore interface {
	FindPage(recipient, maxID, minID string) paging.Source[store.MessageRecord]
	BatchFindLatestStatus(ctx context.Context, ids []string) (paging.Source[store.MessageStatus], error)
}

type ViewStore interface {
	QueryPage(recipient, maxID, minID string, pageSize int) (paging.Source[store.MessageView], error)
}

type ContentStore interface {
	GetContent(ctx context.Context, messageID string) (store.MessageContent, bool, error)
}

type ServiceStore interface {
	FindLatestByID(ctx context.Context, serviceID string) (store.ServiceMetadata, bool, error)
	FindRemoteContentConfig(ctx context.Context, serviceID string) (store.RemoteContentConfig, bool, error)
}

// Cache key namespaces. Service metadata and remote-content configuration
// share one resolver and TTL mechanism but never collide.
const (
	serviceKeyPrefix  = "inbox:service:"
	rcConfigKeyPrefix = "inbox:rcconfig:"
)

type MessageService struct {
	Records  RecordStore
	Views    ViewStore
	Content  ContentStore
	Services ServiceStore
	Cache    cache.Store

	ServiceCacheTTL  time.Duration
	RCConfigCacheTTL time.Duration

	// UseViewStore selects the view path; otherwise the status-join path.
	UseViewStore bool

	// CategoryTags overrides the THIRD_PARTY category tag per sender
	// service id.
	CategoryTags map[string]string
}

// ListMessages dispatches to whichever path this deployment runs on. Both
// paths honor the same request and response contract.
func (s *MessageService) ListMessages(ctx context.Context, req domain.ListMessagesRequest) (domain.MessagePage, error) {
	if req.PageSize <= 0 {
		req.PageSize = domain.DefaultPageSize
	}
	if s.UseViewStore {
		return s.listFromView(ctx, req)
	}
	return s.listWithStatusJoin(ctx, req)
}

func (s *MessageService) cachedServiceMetadata(ctx context.Context, serviceID string) (store.ServiceMetadata, error) {
	return cache.GetOrFetch(ctx, s.Cache, serviceKeyPrefix+serviceID, s.ServiceCacheTTL,
		func(ctx context.Context) (store.ServiceMetadata, bool, error) {
			return s.Services.FindLatestByID(ctx, serviceID)
		})
}

func (s *MessageService) cachedRemoteContentConfig(ctx context.Context, serviceID string) (store.RemoteContentConfig, error) {
	return cache.GetOrFetch(ctx, s.Cache, rcConfigKeyPrefix+serviceID, s.RCConfigCacheTTL,
		func(ctx context.Context) (store.RemoteContentConfig, bool, error) {
			return s.Services.FindRemoteContentConfig(ctx, serviceID)
		})
}
