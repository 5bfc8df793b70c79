package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type snapshot struct {
	Name string `json:"name"`
}

func (s snapshot) Validate() error {
	if s.Name == "" {
		return errors.New("empty name")
	}
	return nil
}

type fakeStore struct {
	values map[string]string
	getErr error
	setErr error
	gets   int
	sets   int
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.gets++
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeStore) SetWithExpiration(ctx context.Context, key, value string, ttl time.Duration) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value
	return nil
}

func fetcher(v snapshot, found bool, err error) func(context.Context) (snapshot, bool, error) {
	return func(context.Context) (snapshot, bool, error) { return v, found, err }
}

func countingFetcher(calls *int, v snapshot) func(context.Context) (snapshot, bool, error) {
	return func(context.Context) (snapshot, bool, error) {
		*calls++
		return v, true, nil
	}
}

func TestGetOrFetchCachedValueSkipsStore(t *testing.T) {
	st := &fakeStore{values: map[string]string{"k": `{"name":"svc"}`}}
	calls := 0

	for i := 0; i < 2; i++ {
		got, err := GetOrFetch(context.Background(), st, "k", time.Minute, countingFetcher(&calls, snapshot{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "svc" {
			t.Fatalf("expected cached value, got %+v", got)
		}
	}
	if calls != 0 {
		t.Fatalf("expected zero store calls, got %d", calls)
	}
	if st.sets != 0 {
		t.Fatalf("expected no cache writes, got %d", st.sets)
	}
}

func TestGetOrFetchMissFetchesOnceAndWritesBack(t *testing.T) {
	st := &fakeStore{}
	calls := 0

	got, err := GetOrFetch(context.Background(), st, "k", time.Minute, countingFetcher(&calls, snapshot{Name: "svc"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "svc" {
		t.Fatalf("expected fetched value, got %+v", got)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one store call, got %d", calls)
	}
	if st.sets != 1 {
		t.Fatalf("expected exactly one cache write, got %d", st.sets)
	}
	if st.values["k"] != `{"name":"svc"}` {
		t.Fatalf("unexpected cached payload %q", st.values["k"])
	}
}

func TestGetOrFetchCorruptCacheFallsThrough(t *testing.T) {
	for _, raw := range []string{"{not json", `{"name":""}`} {
		st := &fakeStore{values: map[string]string{"k": raw}}

		got, err := GetOrFetch(context.Background(), st, "k", time.Minute, fetcher(snapshot{Name: "svc"}, true, nil))
		if err != nil {
			t.Fatalf("raw %q: unexpected error: %v", raw, err)
		}
		if got.Name != "svc" {
			t.Fatalf("raw %q: expected store value, got %+v", raw, got)
		}
	}
}

func TestGetOrFetchCacheWriteFailureIsSwallowed(t *testing.T) {
	st := &fakeStore{setErr: errors.New("redis down")}

	got, err := GetOrFetch(context.Background(), st, "k", time.Minute, fetcher(snapshot{Name: "svc"}, true, nil))
	if err != nil {
		t.Fatalf("cache write failure must not fail the call: %v", err)
	}
	if got.Name != "svc" {
		t.Fatalf("expected store value, got %+v", got)
	}
}

func TestGetOrFetchCacheReadFailureFallsThrough(t *testing.T) {
	st := &fakeStore{getErr: errors.New("redis down")}

	got, err := GetOrFetch(context.Background(), st, "k", time.Minute, fetcher(snapshot{Name: "svc"}, true, nil))
	if err != nil {
		t.Fatalf("cache read failure must not surface: %v", err)
	}
	if got.Name != "svc" {
		t.Fatalf("expected store value, got %+v", got)
	}
}

func TestGetOrFetchExhaustedBothSources(t *testing.T) {
	st := &fakeStore{}

	_, err := GetOrFetch(context.Background(), st, "k", time.Minute, fetcher(snapshot{}, false, nil))
	if !errors.Is(err, ErrNotFoundInCacheAndStore) {
		t.Fatalf("expected ErrNotFoundInCacheAndStore, got %v", err)
	}
	if st.sets != 0 {
		t.Fatalf("expected no cache write on not-found, got %d", st.sets)
	}
}

func TestGetOrFetchStoreErrorPropagates(t *testing.T) {
	st := &fakeStore{}
	boom := errors.New("pg down")

	_, err := GetOrFetch(context.Background(), st, "k", time.Minute, fetcher(snapshot{}, false, boom))
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if st.sets != 0 {
		t.Fatalf("expected no cache write on store error, got %d", st.sets)
	}
}
