package corpus

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithArticles(t *testing.T, articles ...Article) *Store {
	t.Helper()
	snap, err := NewSnapshot(1, articles, nil, nil)
	require.NoError(t, err)
	store := NewStore()
	store.Replace(snap)
	return store
}

func TestStore_CurrentNilBeforeFirstLoad(t *testing.T) {
	assert.Nil(t, NewStore().Current())
}

func TestStore_ApplyUpsertsByID(t *testing.T) {
	store := newStoreWithArticles(t, validArticle("tat-001", tEarly))

	updated := validArticle("tat-001", tEarly)
	updated.Headline = "OpenClaw release notes, corrected"
	added := validArticle("tat-002", tLate)

	require.NoError(t, store.Apply(Refresh{Articles: []Article{updated, added}}))

	snap := store.Current()
	assert.Equal(t, uint64(2), snap.Version())
	assert.Equal(t, 2, snap.ArticleCount())
	got, _ := snap.ArticleByID("tat-001")
	assert.Equal(t, "OpenClaw release notes, corrected", got.Headline)
}

func TestStore_ApplyRejectsUpdatedAtRegression(t *testing.T) {
	stat := Statistic{
		Key: "moltbook_agent_count", Value: "1700000",
		Confidence: ConfidenceSelfReported, UpdatedAt: tLate,
		Source: Source{Label: "Moltbook", URL: "https://moltbook.example"},
	}
	snap, err := NewSnapshot(1, nil, []Statistic{stat}, nil)
	require.NoError(t, err)
	store := NewStore()
	store.Replace(snap)

	stale := stat
	stale.UpdatedAt = tEarly
	stale.Value = "1600000"
	err = store.Apply(Refresh{Statistics: []Statistic{stale}})
	require.ErrorContains(t, err, "updated_at regression")

	// Rejected refresh leaves the previous snapshot fully intact.
	got, _ := store.Current().StatisticByKey("moltbook_agent_count")
	assert.Equal(t, "1700000", got.Value)
	assert.Equal(t, uint64(1), store.Current().Version())
}

func TestStore_ApplyRejectsPublishedAtChange(t *testing.T) {
	store := newStoreWithArticles(t, validArticle("tat-001", tEarly))

	moved := validArticle("tat-001", tEarly.Add(time.Hour))
	moved.Headline = "OpenClaw release notes, backdated"
	err := store.Apply(Refresh{Articles: []Article{moved}})
	require.ErrorContains(t, err, "published_at is immutable")

	got, _ := store.Current().ArticleByID("tat-001")
	assert.True(t, got.PublishedAt.Equal(tEarly))
	assert.Equal(t, uint64(1), store.Current().Version())
}

func TestStore_ApplyRejectsInvalidUpsert(t *testing.T) {
	store := newStoreWithArticles(t, validArticle("tat-001", tEarly))

	bad := validArticle("tat-002", tLate)
	bad.Section = "front_page"
	assert.Error(t, store.Apply(Refresh{Articles: []Article{bad}}))
	assert.Equal(t, 1, store.Current().ArticleCount())
}

func TestStore_ConcurrentReadsDuringRefresh(t *testing.T) {
	store := newStoreWithArticles(t, validArticle("tat-001", tEarly))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Readers must always observe a whole snapshot: either 1 or 2 articles,
	// never a torn in-between state.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := store.Current()
				if snap == nil {
					t.Error("snapshot went nil mid-run")
					return
				}
				n := snap.ArticleCount()
				if n != 1 && n != 2 {
					t.Errorf("torn snapshot with %d articles", n)
					return
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		a := validArticle("tat-002", tLate)
		a.Headline = fmt.Sprintf("Clearing Loop funding, revision %d", i)
		if err := store.Apply(Refresh{Articles: []Article{a}}); err != nil {
			t.Errorf("refresh %d failed: %v", i, err)
			break
		}
	}
	close(stop)
	wg.Wait()
}
