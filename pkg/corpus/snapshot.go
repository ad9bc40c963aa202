package corpus

import (
	"fmt"
	"sort"
	"strings"
)

// Snapshot is an immutable view of the corpus at one version. All reads go
// against a snapshot, so a concurrent refresh can never be observed as a
// torn state. Slices returned by accessors are owned by the snapshot and
// must not be mutated by callers.
type Snapshot struct {
	version uint64

	// articles sorted by published_at descending, id ascending.
	articles  []Article
	byID      map[string]int
	bySection map[Section][]int

	// searchDocs[i] holds the lowercased headline, summary and joined tags
	// of articles[i], precomputed for substring matching.
	searchDocs [][3]string

	stats    map[string]Statistic
	statKeys []string // ascending

	// wire sorted by timestamp descending.
	wire []WireItem
}

// NewSnapshot validates the inputs, builds the read indexes and returns a
// sealed snapshot. Inputs are copied; the caller may reuse its slices.
func NewSnapshot(version uint64, articles []Article, stats []Statistic, wire []WireItem) (*Snapshot, error) {
	s := &Snapshot{
		version:   version,
		articles:  make([]Article, len(articles)),
		byID:      make(map[string]int, len(articles)),
		bySection: make(map[Section][]int),
		stats:     make(map[string]Statistic, len(stats)),
		wire:      make([]WireItem, len(wire)),
	}

	copy(s.articles, articles)
	sort.SliceStable(s.articles, func(i, j int) bool {
		if !s.articles[i].PublishedAt.Equal(s.articles[j].PublishedAt) {
			return s.articles[i].PublishedAt.After(s.articles[j].PublishedAt)
		}
		return s.articles[i].ID < s.articles[j].ID
	})

	s.searchDocs = make([][3]string, len(s.articles))
	for i, a := range s.articles {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate article id %q", a.ID)
		}
		s.byID[a.ID] = i
		s.bySection[a.Section] = append(s.bySection[a.Section], i)
		s.searchDocs[i] = [3]string{
			strings.ToLower(a.Headline),
			strings.ToLower(a.Summary),
			strings.ToLower(strings.Join(a.Tags, " ")),
		}
	}

	for _, st := range stats {
		if err := st.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.stats[st.Key]; dup {
			return nil, fmt.Errorf("duplicate statistic key %q", st.Key)
		}
		s.stats[st.Key] = st
		s.statKeys = append(s.statKeys, st.Key)
	}
	sort.Strings(s.statKeys)

	copy(s.wire, wire)
	for _, w := range s.wire {
		if err := w.Validate(); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(s.wire, func(i, j int) bool {
		return s.wire[i].Timestamp.After(s.wire[j].Timestamp)
	})

	return s, nil
}

// Version identifies the snapshot; strictly increasing across refreshes.
func (s *Snapshot) Version() uint64 { return s.version }

// Articles returns all articles sorted by published_at descending,
// id ascending.
func (s *Snapshot) Articles() []Article { return s.articles }

// ArticleCount reports the corpus size, used for limit clamping.
func (s *Snapshot) ArticleCount() int { return len(s.articles) }

// ArticleByID looks up a single article.
func (s *Snapshot) ArticleByID(id string) (Article, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Article{}, false
	}
	return s.articles[i], true
}

// ArticlesBySection returns the section's articles in the global recency
// order. An unknown or empty section yields an empty slice, never an error.
func (s *Snapshot) ArticlesBySection(sec Section) []Article {
	idx := s.bySection[sec]
	out := make([]Article, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.articles[i])
	}
	return out
}

// SearchDoc exposes the precomputed lowercased (headline, summary, tags)
// triple for the i-th article of Articles().
func (s *Snapshot) SearchDoc(i int) [3]string { return s.searchDocs[i] }

// Statistics returns all statistics ordered by key ascending.
func (s *Snapshot) Statistics() []Statistic {
	out := make([]Statistic, 0, len(s.statKeys))
	for _, k := range s.statKeys {
		out = append(out, s.stats[k])
	}
	return out
}

// StatisticByKey looks up a single statistic.
func (s *Snapshot) StatisticByKey(key string) (Statistic, bool) {
	st, ok := s.stats[key]
	return st, ok
}

// WireItems returns wire items newest first.
func (s *Snapshot) WireItems() []WireItem { return s.wire }
