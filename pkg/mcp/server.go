// Package mcp serves namegen tools to MCP clients as line-delimited JSON-RPC over stdio.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pario-ai/namegen/pkg/models"
)

// Generator is the orchestrator surface the tools call.
type Generator interface {
	Generate(ctx context.Context, req models.NamingRequest, scope string) (*models.Envelope, error)
	Stats(ctx context.Context, scope string) (models.BudgetStats, error)
}

// SpendSummarizer reports recorded spend per scope.
type SpendSummarizer interface {
	Summary(ctx context.Context, scope string) ([]models.SpendSummary, error)
}

// EventQuerier searches the generation event log.
type EventQuerier interface {
	Query(ctx context.Context, opts models.EventQueryOpts) ([]models.GenerationEvent, error)
}

// Server handles MCP requests.
type Server struct {
	gen     Generator
	spend   SpendSummarizer
	events  EventQuerier
	logger  *zap.Logger
	version string
}

// Option configures a Server.
type Option func(*Server)

// WithSpend enables the namegen_spend tool.
func WithSpend(s SpendSummarizer) Option { return func(srv *Server) { srv.spend = s } }

// WithEvents enables the namegen_events tool.
func WithEvents(e EventQuerier) Option { return func(srv *Server) { srv.events = e } }

// WithLogger sets the logger. Logs must not go to the protocol stream.
func WithLogger(l *zap.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// New creates a Server.
func New(gen Generator, version string, opts ...Option) *Server {
	s := &Server{gen: gen, version: version, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads one request per line from r and writes responses to w.
// It returns when r is exhausted or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(w, failure(nil, CodeParseError, "parse error"))
			continue
		}
		if req.JSONRPC != jsonrpcVersion {
			s.write(w, failure(req.ID, CodeInvalidRequest, "jsonrpc must be 2.0"))
			continue
		}

		if resp := s.dispatch(ctx, &req); resp != nil && !req.IsNotification() {
			s.write(w, resp)
		}
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return result(req.ID, InitializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      ServerInfo{Name: "namegen", Version: s.version},
			Capabilities:    map[string]any{"tools": map[string]any{}},
		})
	case "notifications/initialized", "ping":
		return result(req.ID, map[string]any{})
	case "tools/list":
		return result(req.ID, ToolsListResult{Tools: toolDefinitions()})
	case "tools/call":
		var params ToolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
			return failure(req.ID, CodeInvalidParams, "invalid params")
		}
		t, ok := lookupTool(params.Name)
		if !ok {
			return result(req.ID, errorResult(fmt.Sprintf("unknown tool: %s", params.Name)))
		}
		s.logger.Debug("tool call", zap.String("tool", params.Name))
		return result(req.ID, t.handle(ctx, s, params.Arguments))
	default:
		return failure(req.ID, CodeMethodNotFound, fmt.Sprintf("unknown method: %s", req.Method))
	}
}

func (s *Server) write(w io.Writer, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("mcp marshal failed", zap.Error(err))
		return
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		s.logger.Error("mcp write failed", zap.Error(err))
	}
}
