package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levslove/tat-mcp-server/pkg/corpus"
	"github.com/levslove/tat-mcp-server/pkg/crypto"
	"github.com/levslove/tat-mcp-server/pkg/envelope"
	"github.com/levslove/tat-mcp-server/pkg/query"
	"github.com/levslove/tat-mcp-server/pkg/store"
)

var (
	pub1 = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	pub2 = time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC)
)

func seedStore(t *testing.T) *corpus.Store {
	t.Helper()
	src := []corpus.Source{{Label: "GitHub API", URL: "https://api.github.com"}}
	articles := []corpus.Article{
		{
			ID: "tat-001", Headline: "Moltbook crosses 1.7M registered agents",
			Summary: "Self-reported count keeps climbing.", Section: corpus.SectionPlatforms,
			Tags: []string{"Moltbook"}, Confidence: corpus.ConfidenceSelfReported, PublishedAt: pub1,
		},
		{
			ID: "tat-002", Headline: "OpenClaw tops GitHub trending",
			Summary: "Star growth outpaces rivals.", Section: corpus.SectionInfrastructure,
			Tags: []string{"OpenClaw"}, Confidence: corpus.ConfidenceVerified,
			Sources: src, PublishedAt: pub2,
		},
	}
	stats := []corpus.Statistic{{
		Key: "moltbook_agent_count", Label: "Moltbook registered agents", Value: "1700000",
		Category: "Platforms", Confidence: corpus.ConfidenceSelfReported,
		UpdatedAt: pub1, Source: corpus.Source{Label: "Moltbook", URL: "https://moltbook.example"},
	}}
	wire := []corpus.WireItem{{
		Timestamp: pub2, Text: "OpenClaw 2.0 released.",
		Sources: []corpus.Source{{Label: "Reuters", URL: "https://reuters.example"}},
	}}
	snap, err := corpus.NewSnapshot(1, articles, stats, wire)
	require.NoError(t, err)
	st := corpus.NewStore()
	st.Replace(snap)
	return st
}

func newTestServer(t *testing.T, corpusStore *corpus.Store, signer crypto.Signer, allowUnsigned bool) (*ToolServer, *store.ReceiptStore) {
	t.Helper()
	catalog := NewToolCatalog()
	require.NoError(t, RegisterNewsTools(context.Background(), catalog))

	receipts, err := store.OpenReceiptStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = receipts.Close() })

	srv := NewToolServer(
		query.NewEngine(corpusStore),
		envelope.NewSealer(signer, allowUnsigned),
		catalog,
		receipts,
		nil,
	)
	return srv, receipts
}

func decodePayload(t *testing.T, resp ToolExecutionResponse) envelope.SignedPayload {
	t.Helper()
	require.False(t, resp.IsError, "unexpected error response: %s", resp.Content)
	var p envelope.SignedPayload
	require.NoError(t, json.Unmarshal([]byte(resp.Content), &p))
	return p
}

func TestHandleToolCall_LatestArticlesSigned(t *testing.T) {
	signer, err := crypto.NewEd25519Signer("2026-01")
	require.NoError(t, err)
	srv, receipts := newTestServer(t, seedStore(t), signer, false)

	resp, err := srv.HandleToolCall(context.Background(), ToolExecutionRequest{
		ToolName:  ToolLatestArticles,
		Arguments: map[string]any{"limit": float64(1)},
	})
	require.NoError(t, err)
	assert.True(t, resp.Signed)

	p := decodePayload(t, resp)
	ok, err := envelope.Verify(&p, signer.PublicKey())
	require.NoError(t, err)
	assert.True(t, ok)

	var body struct {
		Tool     string           `json:"tool"`
		Articles []corpus.Article `json:"articles"`
		Text     string           `json:"text"`
	}
	require.NoError(t, json.Unmarshal(p.Body, &body))
	assert.Equal(t, ToolLatestArticles, body.Tool)
	require.Len(t, body.Articles, 1)
	assert.Equal(t, "tat-002", body.Articles[0].ID, "newest article first")
	assert.Contains(t, body.Text, "OpenClaw tops GitHub trending")

	// A receipt is written for the issued payload.
	r, err := receipts.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.BodyHash, r.BodyHash)
	assert.Equal(t, "2026-01", r.KeyID)
}

func TestHandleToolCall_SearchMatchesTagsCaseInsensitive(t *testing.T) {
	signer, err := crypto.NewEd25519Signer("k")
	require.NoError(t, err)
	srv, _ := newTestServer(t, seedStore(t), signer, false)

	resp, err := srv.HandleToolCall(context.Background(), ToolExecutionRequest{
		ToolName:  ToolSearchArticles,
		Arguments: map[string]any{"query": "openclaw"},
	})
	require.NoError(t, err)
	p := decodePayload(t, resp)

	var body struct {
		Articles []corpus.Article `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(p.Body, &body))
	require.Len(t, body.Articles, 1)
	assert.Equal(t, "tat-002", body.Articles[0].ID)
}

func TestHandleToolCall_InvalidArguments(t *testing.T) {
	signer, err := crypto.NewEd25519Signer("k")
	require.NoError(t, err)
	srv, _ := newTestServer(t, seedStore(t), signer, false)
	ctx := context.Background()

	tests := []struct {
		name string
		req  ToolExecutionRequest
	}{
		{"unknown tool", ToolExecutionRequest{ToolName: "get_stock_tips"}},
		{"bad section", ToolExecutionRequest{
			ToolName: ToolSectionArticles, Arguments: map[string]any{"section": "front_page"},
		}},
		{"missing query", ToolExecutionRequest{ToolName: ToolSearchArticles}},
		{"blank query", ToolExecutionRequest{
			ToolName: ToolSearchArticles, Arguments: map[string]any{"query": "   "},
		}},
		{"zero limit rejected by schema", ToolExecutionRequest{
			ToolName: ToolLatestArticles, Arguments: map[string]any{"limit": float64(0)},
		}},
		{"bad since", ToolExecutionRequest{
			ToolName: ToolWireFeed, Arguments: map[string]any{"since": "yesterday-ish"},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := srv.HandleToolCall(ctx, tc.req)
			require.NoError(t, err, "argument errors are responses, not transport failures")
			assert.True(t, resp.IsError)
			assert.NotEmpty(t, resp.Content)
		})
	}
}

func TestHandleToolCall_WireFeedSince(t *testing.T) {
	signer, err := crypto.NewEd25519Signer("k")
	require.NoError(t, err)
	srv, _ := newTestServer(t, seedStore(t), signer, false)

	resp, err := srv.HandleToolCall(context.Background(), ToolExecutionRequest{
		ToolName:  ToolWireFeed,
		Arguments: map[string]any{"since": pub2.Format(time.RFC3339)},
	})
	require.NoError(t, err)
	p := decodePayload(t, resp)

	var body struct {
		Items []corpus.WireItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(p.Body, &body))
	assert.Empty(t, body.Items, "since filter is strict")
}

func TestHandleToolCall_EditorialStandardsNeedsNoCorpus(t *testing.T) {
	signer, err := crypto.NewEd25519Signer("k")
	require.NoError(t, err)
	srv, _ := newTestServer(t, corpus.NewStore(), signer, false)

	resp, err := srv.HandleToolCall(context.Background(), ToolExecutionRequest{
		ToolName: ToolEditorialStandards,
	})
	require.NoError(t, err)
	p := decodePayload(t, resp)

	var body struct {
		Standards query.StandardsDoc `json:"standards"`
		Text      string             `json:"text"`
	}
	require.NoError(t, json.Unmarshal(p.Body, &body))
	assert.Len(t, body.Standards.ConfidenceLevels, 5)
	assert.Contains(t, body.Text, "Editorial Standards")
}

func TestHandleToolCall_CorpusUnavailable(t *testing.T) {
	signer, err := crypto.NewEd25519Signer("k")
	require.NoError(t, err)
	srv, _ := newTestServer(t, corpus.NewStore(), signer, false)

	_, err = srv.HandleToolCall(context.Background(), ToolExecutionRequest{ToolName: ToolLatestArticles})
	assert.ErrorIs(t, err, query.ErrCorpusUnavailable)
}

func TestHandleToolCall_SigningPolicy(t *testing.T) {
	t.Run("fail closed by default", func(t *testing.T) {
		srv, _ := newTestServer(t, seedStore(t), nil, false)
		_, err := srv.HandleToolCall(context.Background(), ToolExecutionRequest{ToolName: ToolLatestArticles})
		assert.ErrorIs(t, err, envelope.ErrSigningUnavailable)
	})

	t.Run("unsigned fallback when allowed", func(t *testing.T) {
		srv, _ := newTestServer(t, seedStore(t), nil, true)
		resp, err := srv.HandleToolCall(context.Background(), ToolExecutionRequest{ToolName: ToolLatestArticles})
		require.NoError(t, err)
		assert.False(t, resp.Signed)

		p := decodePayload(t, resp)
		assert.True(t, p.Unsigned)
		assert.Empty(t, p.Signature)
	})
}

func TestHandleToolCall_DeterministicBodies(t *testing.T) {
	signer, err := crypto.NewEd25519Signer("k")
	require.NoError(t, err)
	srv, _ := newTestServer(t, seedStore(t), signer, false)
	req := ToolExecutionRequest{ToolName: ToolAgentEconomyStats}

	first, err := srv.HandleToolCall(context.Background(), req)
	require.NoError(t, err)
	second, err := srv.HandleToolCall(context.Background(), req)
	require.NoError(t, err)

	p1 := decodePayload(t, first)
	p2 := decodePayload(t, second)
	assert.Equal(t, string(p1.Body), string(p2.Body), "same snapshot, byte-identical bodies")
	assert.Equal(t, p1.BodyHash, p2.BodyHash)
	assert.Equal(t, p1.Signature, p2.Signature, "Ed25519 is deterministic per key and message")
	assert.NotEqual(t, p1.ID, p2.ID, "payload ids are per-response")
}
