package series

import (
	"context"
	"fmt"
	"time"
)

// Fetcher returns the raw contents of a source location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Store serves the historical series in one of the configured history modes.
type Store interface {
	LastObservedDate(ctx context.Context) (time.Time, error)
	// Snapshot returns the series a request would see right now.
	Snapshot(ctx context.Context) (*Series, error)
}

// Load fetches and parses the historical CSV at location.
func Load(ctx context.Context, fetcher Fetcher, location string, opts Options) (*Series, error) {
	data, err := fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	s, err := ParseBytes(data, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", location, err)
	}
	return s, nil
}

// MemoryStore serves a series loaded once. It is immutable and safe for concurrent use.
type MemoryStore struct {
	series *Series
}

// NewMemoryStore wraps an already loaded series.
func NewMemoryStore(s *Series) *MemoryStore {
	return &MemoryStore{series: s}
}

// LastObservedDate returns the cached series' maximum date.
func (m *MemoryStore) LastObservedDate(ctx context.Context) (time.Time, error) {
	return m.series.LastObservedDate(), nil
}

// Snapshot returns the cached series.
func (m *MemoryStore) Snapshot(ctx context.Context) (*Series, error) {
	return m.series, nil
}

// ReloadingStore re-reads the source on every call. Each call works on its own
// freshly parsed series, so concurrent callers never share mutable state.
type ReloadingStore struct {
	fetcher  Fetcher
	location string
	opts     Options
}

// NewReloadingStore creates a store that loads location on every request.
func NewReloadingStore(fetcher Fetcher, location string, opts Options) *ReloadingStore {
	return &ReloadingStore{
		fetcher:  fetcher,
		location: location,
		opts:     opts,
	}
}

// LastObservedDate loads the source and returns its maximum date.
func (r *ReloadingStore) LastObservedDate(ctx context.Context) (time.Time, error) {
	s, err := r.Snapshot(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return s.LastObservedDate(), nil
}

// Snapshot loads and parses the source.
func (r *ReloadingStore) Snapshot(ctx context.Context) (*Series, error) {
	return Load(ctx, r.fetcher, r.location, r.opts)
}
