package corpus

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Store owns the current corpus snapshot. Readers take the snapshot pointer
// under a short read lock and then work lock-free against the immutable
// snapshot; a refresh builds a whole new snapshot and swaps the pointer.
type Store struct {
	mu   sync.RWMutex
	snap *Snapshot
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the live snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Replace installs a complete new snapshot.
func (s *Store) Replace(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	slog.Info("corpus: snapshot replaced",
		"version", snap.Version(),
		"articles", snap.ArticleCount(),
		"stats", len(snap.statKeys),
		"wire_items", len(snap.wire),
	)
}

// Refresh carries the upsert set from the external refresh collaborator.
// Articles and statistics are keyed by ID/Key; wire items are append-only.
type Refresh struct {
	Articles   []Article
	Statistics []Statistic
	WireItems  []WireItem
}

// Apply merges a refresh into the current corpus and atomically swaps in
// the resulting snapshot. Statistics must carry a monotonically
// non-decreasing updated_at per key, and an article upsert may not move
// an existing id's published_at; either violation rejects the whole
// refresh so readers never see partially applied data.
func (s *Store) Apply(r Refresh) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		version  uint64 = 1
		articles []Article
		stats    []Statistic
		wire     []WireItem
	)
	if s.snap != nil {
		version = s.snap.version + 1
		articles = append(articles, s.snap.articles...)
		stats = append(stats, s.snap.Statistics()...)
		wire = append(wire, s.snap.wire...)
	}

	byID := make(map[string]int, len(articles))
	for i, a := range articles {
		byID[a.ID] = i
	}
	for _, a := range r.Articles {
		if i, ok := byID[a.ID]; ok {
			if !a.PublishedAt.Equal(articles[i].PublishedAt) {
				return fmt.Errorf("article %s: published_at is immutable (%s changed to %s)",
					a.ID, articles[i].PublishedAt.Format(time.RFC3339),
					a.PublishedAt.Format(time.RFC3339))
			}
			articles[i] = a
		} else {
			byID[a.ID] = len(articles)
			articles = append(articles, a)
		}
	}

	byKey := make(map[string]int, len(stats))
	for i, st := range stats {
		byKey[st.Key] = i
	}
	for _, st := range r.Statistics {
		if i, ok := byKey[st.Key]; ok {
			if st.UpdatedAt.Before(stats[i].UpdatedAt) {
				return fmt.Errorf("statistic %s: updated_at regression (%s before %s)",
					st.Key, st.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
					stats[i].UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			stats[i] = st
		} else {
			byKey[st.Key] = len(stats)
			stats = append(stats, st)
		}
	}

	wire = append(wire, r.WireItems...)

	snap, err := NewSnapshot(version, articles, stats, wire)
	if err != nil {
		return fmt.Errorf("refresh rejected: %w", err)
	}
	s.snap = snap
	slog.Info("corpus: refresh applied",
		"version", snap.Version(),
		"upserted_articles", len(r.Articles),
		"upserted_stats", len(r.Statistics),
		"new_wire_items", len(r.WireItems),
	)
	return nil
}
