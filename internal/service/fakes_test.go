package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"inbox/internal/paging"
	"inbox/internal/store"
)

type fakeRecords struct {
	chunks    [][]paging.Entry[store.MessageRecord]
	statuses  []store.MessageStatus
	statusErr error

	batchCalls int
	batchIDs   []string
}

func (f *fakeRecords) FindPage(recipient, maxID, minID string) paging.Source[store.MessageRecord] {
	return paging.FromChunks(f.chunks...)
}

func (f *fakeRecords) BatchFindLatestStatus(ctx context.Context, ids []string) (paging.Source[store.MessageStatus], error) {
	f.batchCalls++
	f.batchIDs = ids
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return paging.FromChunks(paging.Values(f.statuses...)), nil
}

type fakeViews struct {
	chunks   [][]paging.Entry[store.MessageView]
	buildErr error
	iterErr  error

	gotPageSize int
}

func (f *fakeViews) QueryPage(recipient, maxID, minID string, pageSize int) (paging.Source[store.MessageView], error) {
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	f.gotPageSize = pageSize
	if f.iterErr != nil {
		return &erroringViewSource{err: f.iterErr}, nil
	}
	return paging.FromChunks(f.chunks...), nil
}

type erroringViewSource struct {
	err error
}

func (s *erroringViewSource) Next(ctx context.Context) ([]paging.Entry[store.MessageView], bool, error) {
	return nil, false, s.err
}

type fakeContent struct {
	contents map[string]store.MessageContent
	failID   string
	failErr  error
	fetches  []string
}

func (f *fakeContent) GetContent(ctx context.Context, messageID string) (store.MessageContent, bool, error) {
	f.fetches = append(f.fetches, messageID)
	if messageID == f.failID {
		return store.MessageContent{}, false, f.failErr
	}
	c, ok := f.contents[messageID]
	return c, ok, nil
}

type fakeServices struct {
	services map[string]store.ServiceMetadata
	configs  map[string]store.RemoteContentConfig

	serviceErr error
	configErr  error

	serviceCalls int
	configCalls  int
}

func (f *fakeServices) FindLatestByID(ctx context.Context, serviceID string) (store.ServiceMetadata, bool, error) {
	f.serviceCalls++
	if f.serviceErr != nil {
		return store.ServiceMetadata{}, false, f.serviceErr
	}
	md, ok := f.services[serviceID]
	return md, ok, nil
}

func (f *fakeServices) FindRemoteContentConfig(ctx context.Context, serviceID string) (store.RemoteContentConfig, bool, error) {
	f.configCalls++
	if f.configErr != nil {
		return store.RemoteContentConfig{}, false, f.configErr
	}
	cfg, ok := f.configs[serviceID]
	return cfg, ok, nil
}

type mapCache struct {
	values map[string]string
}

func (c *mapCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *mapCache) SetWithExpiration(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.values == nil {
		c.values = map[string]string{}
	}
	c.values[key] = value
	return nil
}

// capturingHandler records slog messages so tests can assert the exact
// contract log lines.
type capturingHandler struct {
	mu   sync.Mutex
	msgs []string
}

func (h *capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, r.Message)
	return nil
}

func (h *capturingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *capturingHandler) WithGroup(string) slog.Handler      { return h }

func (h *capturingHandler) messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.msgs...)
}

func captureLogs(t *testing.T) *capturingHandler {
	t.Helper()
	h := &capturingHandler{}
	prev := slog.Default()
	slog.SetDefault(slog.New(h))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return h
}

// id yields message ids whose lexicographic order follows i, so higher i
// means newer.
func id(i int) string {
	return fmt.Sprintf("01ARZ3NDEKTSV4RRFFQ69G5F%02d", i)
}

func record(i int, serviceID string, pending bool) store.MessageRecord {
	return store.MessageRecord{
		ID:              id(i),
		Recipient:       "RCPT-001",
		CreatedAt:       time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC),
		SenderServiceID: serviceID,
		IsPending:       pending,
		TimeToLive:      3600,
	}
}

func view(i int, serviceID string) store.MessageView {
	return store.MessageView{
		ID:              id(i),
		Recipient:       "RCPT-001",
		CreatedAt:       time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC),
		SenderServiceID: serviceID,
		TimeToLive:      3600,
		MessageTitle:    "title " + id(i),
	}
}
