// Package query implements the retrieval operations over a corpus
// snapshot. Every operation is a pure function of (snapshot, arguments):
// no hidden state, fully reproducible against the same snapshot.
package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/levslove/tat-mcp-server/pkg/corpus"
)

// Default result caps, matching the published tool contracts.
const (
	DefaultArticleLimit = 20
	DefaultWireLimit    = 50
)

// Engine resolves retrieval requests against the corpus store.
type Engine struct {
	store *corpus.Store
}

func NewEngine(store *corpus.Store) *Engine {
	return &Engine{store: store}
}

// ArticleList is an ordered article result pinned to one snapshot.
type ArticleList struct {
	SnapshotVersion uint64           `json:"snapshot_version"`
	Articles        []corpus.Article `json:"articles"`
}

// StatisticList is the data-terminal result, ordered by key ascending.
type StatisticList struct {
	SnapshotVersion uint64             `json:"snapshot_version"`
	Statistics      []corpus.Statistic `json:"statistics"`
}

// WireList is a wire feed result, newest first.
type WireList struct {
	SnapshotVersion uint64            `json:"snapshot_version"`
	Items           []corpus.WireItem `json:"items"`
}

func (e *Engine) snapshot() (*corpus.Snapshot, error) {
	snap := e.store.Current()
	if snap == nil {
		return nil, ErrCorpusUnavailable
	}
	return snap, nil
}

// clampLimit applies the default for an absent limit and clamps the rest
// to [1, size]. Negative limits are a caller bug, not a clamp case.
func clampLimit(limit, def, size int) (int, error) {
	if limit < 0 {
		return 0, fmt.Errorf("%w: limit %d is negative", ErrInvalidArgument, limit)
	}
	if limit == 0 {
		limit = def
	}
	if limit > size {
		limit = size
	}
	return limit, nil
}

// LatestArticles returns articles across all sections sorted by
// published_at descending, ties broken by id ascending. limit=0 means the
// default of 20.
func (e *Engine) LatestArticles(limit int) (*ArticleList, error) {
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	limit, err = clampLimit(limit, DefaultArticleLimit, snap.ArticleCount())
	if err != nil {
		return nil, err
	}
	all := snap.Articles()
	out := make([]corpus.Article, limit)
	copy(out, all[:limit])
	return &ArticleList{SnapshotVersion: snap.Version(), Articles: out}, nil
}

// SearchArticles matches query tokens case-insensitively as substrings of
// headline, summary or tags. Results rank by number of matching tokens
// descending, then recency, then id.
func (e *Engine) SearchArticles(query string, limit int) (*ArticleList, error) {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: search query is empty", ErrInvalidArgument)
	}
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	limit, err = clampLimit(limit, DefaultArticleLimit, snap.ArticleCount())
	if err != nil {
		return nil, err
	}

	type hit struct {
		index int
		score int
	}
	var hits []hit
	for i := range snap.Articles() {
		doc := snap.SearchDoc(i)
		score := 0
		for _, tok := range tokens {
			if strings.Contains(doc[0], tok) || strings.Contains(doc[1], tok) || strings.Contains(doc[2], tok) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, hit{index: i, score: score})
		}
	}

	// Articles() is already ordered by recency then id, so a stable sort
	// on score preserves the required tie-break order.
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]corpus.Article, 0, len(hits))
	for _, h := range hits {
		out = append(out, snap.Articles()[h.index])
	}
	return &ArticleList{SnapshotVersion: snap.Version(), Articles: out}, nil
}

// SectionArticles returns one section's articles in recency order.
func (e *Engine) SectionArticles(section string, limit int) (*ArticleList, error) {
	sec, err := corpus.ParseSection(section)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	articles := snap.ArticlesBySection(sec)
	limit, err = clampLimit(limit, DefaultArticleLimit, len(articles))
	if err != nil {
		return nil, err
	}
	out := make([]corpus.Article, limit)
	copy(out, articles[:limit])
	return &ArticleList{SnapshotVersion: snap.Version(), Articles: out}, nil
}

// EconomyStats returns the full statistics set ordered by key ascending.
func (e *Engine) EconomyStats() (*StatisticList, error) {
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return &StatisticList{SnapshotVersion: snap.Version(), Statistics: snap.Statistics()}, nil
}

// WireFeed returns wire items newest first. A non-nil since keeps only
// items strictly newer than it.
func (e *Engine) WireFeed(since *time.Time, limit int) (*WireList, error) {
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	all := snap.WireItems()
	limit, err = clampLimit(limit, DefaultWireLimit, len(all))
	if err != nil {
		return nil, err
	}
	out := make([]corpus.WireItem, 0, limit)
	for _, item := range all {
		if since != nil && !item.Timestamp.After(*since) {
			// Items are newest first, nothing later can match.
			break
		}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return &WireList{SnapshotVersion: snap.Version(), Items: out}, nil
}
