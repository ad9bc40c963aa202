package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/levslove/tat-mcp-server/pkg/envelope"
	"github.com/levslove/tat-mcp-server/pkg/query"
	"github.com/levslove/tat-mcp-server/pkg/store"
)

// ToolExecutionRequest represents a request to execute a tool.
type ToolExecutionRequest struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
	SessionID string         `json:"session_id,omitempty"`
}

// ToolExecutionResponse carries the signed payload (as JSON in Content)
// or a caller-visible error message.
type ToolExecutionResponse struct {
	Content string `json:"content"`
	IsError bool   `json:"is_error"`
	Signed  bool   `json:"signed"`
}

// ReceiptRecorder persists a record of every issued payload. nil disables
// recording; recording failures are logged, never fatal to the response.
type ReceiptRecorder interface {
	Record(ctx context.Context, r store.ResponseReceipt) error
}

// CallObserver receives per-call telemetry.
type CallObserver interface {
	RecordToolCall(ctx context.Context, tool string, duration time.Duration, err error)
}

// ToolServer dispatches tool calls to the query engine and seals results.
type ToolServer struct {
	engine   *query.Engine
	sealer   *envelope.Sealer
	catalog  *ToolCatalog
	receipts ReceiptRecorder
	observer CallObserver
}

func NewToolServer(engine *query.Engine, sealer *envelope.Sealer, catalog *ToolCatalog, receipts ReceiptRecorder, observer CallObserver) *ToolServer {
	return &ToolServer{
		engine:   engine,
		sealer:   sealer,
		catalog:  catalog,
		receipts: receipts,
		observer: observer,
	}
}

// Catalog exposes the registered tools for capability listings.
func (s *ToolServer) Catalog() *ToolCatalog { return s.catalog }

// HandleToolCall executes one tool call. Invalid arguments come back as an
// error response so the agent sees what it got wrong; infrastructure
// failures (no corpus, no signing key) are returned as errors for the
// transport to map.
func (s *ToolServer) HandleToolCall(ctx context.Context, req ToolExecutionRequest) (ToolExecutionResponse, error) {
	start := time.Now()
	resp, err := s.handle(ctx, req)
	if s.observer != nil {
		s.observer.RecordToolCall(ctx, req.ToolName, time.Since(start), err)
	}
	return resp, err
}

func (s *ToolServer) handle(ctx context.Context, req ToolExecutionRequest) (ToolExecutionResponse, error) {
	if _, ok := s.catalog.Get(req.ToolName); !ok {
		return errorResponse(fmt.Sprintf("Unknown tool: %s", req.ToolName)), nil
	}
	if err := s.catalog.ValidateArgs(req.ToolName, req.Arguments); err != nil {
		return errorResponse(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}

	body, err := s.dispatch(req)
	if err != nil {
		if errors.Is(err, query.ErrInvalidArgument) {
			return errorResponse(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		return ToolExecutionResponse{}, err
	}

	payload, err := s.sealer.Seal(body)
	if err != nil {
		return ToolExecutionResponse{}, err
	}
	s.record(ctx, req.ToolName, payload)

	content, err := json.Marshal(payload)
	if err != nil {
		return ToolExecutionResponse{}, fmt.Errorf("marshal payload: %w", err)
	}
	return ToolExecutionResponse{Content: string(content), Signed: !payload.Unsigned}, nil
}

func (s *ToolServer) dispatch(req ToolExecutionRequest) (any, error) {
	switch req.ToolName {
	case ToolLatestArticles:
		limit, err := intArg(req.Arguments, "limit")
		if err != nil {
			return nil, err
		}
		list, err := s.engine.LatestArticles(limit)
		if err != nil {
			return nil, err
		}
		return articlesBody{
			Tool:            req.ToolName,
			SnapshotVersion: list.SnapshotVersion,
			Articles:        list.Articles,
			Text:            renderArticleList(fmt.Sprintf("Latest %d Articles", len(list.Articles)), list),
		}, nil

	case ToolSectionArticles:
		section, _ := req.Arguments["section"].(string)
		limit, err := intArg(req.Arguments, "limit")
		if err != nil {
			return nil, err
		}
		list, err := s.engine.SectionArticles(section, limit)
		if err != nil {
			return nil, err
		}
		return articlesBody{
			Tool:            req.ToolName,
			SnapshotVersion: list.SnapshotVersion,
			Articles:        list.Articles,
			Text:            renderArticleList(section, list),
		}, nil

	case ToolSearchArticles:
		q, _ := req.Arguments["query"].(string)
		limit, err := intArg(req.Arguments, "limit")
		if err != nil {
			return nil, err
		}
		list, err := s.engine.SearchArticles(q, limit)
		if err != nil {
			return nil, err
		}
		return articlesBody{
			Tool:            req.ToolName,
			SnapshotVersion: list.SnapshotVersion,
			Articles:        list.Articles,
			Text:            renderArticleList(fmt.Sprintf("Search results for %q", q), list),
		}, nil

	case ToolAgentEconomyStats:
		list, err := s.engine.EconomyStats()
		if err != nil {
			return nil, err
		}
		return statsBody{
			Tool:            req.ToolName,
			SnapshotVersion: list.SnapshotVersion,
			Statistics:      list.Statistics,
			Text:            renderStats(list),
		}, nil

	case ToolWireFeed:
		since, err := timeArg(req.Arguments, "since")
		if err != nil {
			return nil, err
		}
		limit, err := intArg(req.Arguments, "limit")
		if err != nil {
			return nil, err
		}
		list, err := s.engine.WireFeed(since, limit)
		if err != nil {
			return nil, err
		}
		return wireBody{
			Tool:            req.ToolName,
			SnapshotVersion: list.SnapshotVersion,
			Items:           list.Items,
			Text:            renderWire(list),
		}, nil

	case ToolEditorialStandards:
		doc := query.EditorialStandards()
		return standardsBody{
			Tool:      req.ToolName,
			Standards: doc,
			Text:      doc.Markdown(),
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown tool %s", query.ErrInvalidArgument, req.ToolName)
	}
}

func (s *ToolServer) record(ctx context.Context, tool string, p *envelope.SignedPayload) {
	if s.receipts == nil {
		return
	}
	err := s.receipts.Record(ctx, store.ResponseReceipt{
		ID:        p.ID,
		Tool:      tool,
		BodyHash:  p.BodyHash,
		KeyID:     p.KeyID,
		Signed:    !p.Unsigned,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("mcp: receipt recording failed", "tool", tool, "payload_id", p.ID, "error", err)
	}
}

func errorResponse(msg string) ToolExecutionResponse {
	return ToolExecutionResponse{Content: msg, IsError: true}
}

// Signed body shapes. Text carries the markdown rendering inside the
// signed body so the human-readable form is covered by the signature too.
type articlesBody struct {
	Tool            string `json:"tool"`
	SnapshotVersion uint64 `json:"snapshot_version"`
	Articles        any    `json:"articles"`
	Text            string `json:"text"`
}

type statsBody struct {
	Tool            string `json:"tool"`
	SnapshotVersion uint64 `json:"snapshot_version"`
	Statistics      any    `json:"statistics"`
	Text            string `json:"text"`
}

type wireBody struct {
	Tool            string `json:"tool"`
	SnapshotVersion uint64 `json:"snapshot_version"`
	Items           any    `json:"items"`
	Text            string `json:"text"`
}

type standardsBody struct {
	Tool      string             `json:"tool"`
	Standards query.StandardsDoc `json:"standards"`
	Text      string             `json:"text"`
}

// intArg reads an optional integer argument; JSON numbers arrive as
// float64 over the wire.
func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", query.ErrInvalidArgument, key)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer", query.ErrInvalidArgument, key)
	}
}

// timeArg reads an optional RFC 3339 timestamp argument.
func timeArg(args map[string]any, key string) (*time.Time, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp", query.ErrInvalidArgument, key)
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", query.ErrInvalidArgument, key, err)
	}
	return &ts, nil
}
