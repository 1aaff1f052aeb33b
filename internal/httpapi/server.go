// Package httpapi exposes the illustrator over HTTP for wikis that render out of process.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/park285/moin-chess/internal/game"
	"github.com/park285/moin-chess/internal/illustrator"
	"github.com/park285/moin-chess/internal/render"
	"github.com/park285/moin-chess/pkg/chessdto"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	requestIDHeader    = "X-Request-Id"
	defaultRenderLimit = 10 * time.Second
	maxRequestBody     = 64 * 1024
)

// Illustrator resolves one tag occurrence.
type Illustrator interface {
	Render(ctx context.Context, req illustrator.Request) *illustrator.Result
}

// Writer formats a result into page markup.
type Writer interface {
	Write(ctx context.Context, sink render.Sink, res *illustrator.Result)
}

type Server struct {
	svc     Illustrator
	writer  Writer
	logger  *zap.Logger
	timeout time.Duration
	srv     *fasthttp.Server
}

func NewServer(svc Illustrator, writer Writer, logger *zap.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("illustrator is required")
	}
	if writer == nil {
		return nil, errors.New("formatter is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, writer: writer, logger: logger, timeout: defaultRenderLimit}
	s.srv = &fasthttp.Server{
		Handler:            s.Handle,
		Name:               "chess-render",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		MaxRequestBodySize: maxRequestBody,
	}
	return s, nil
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("render server listening", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

// Handle routes requests. Exported for in-memory listeners in tests.
func (s *Server) Handle(ctx *fasthttp.RequestCtx) {
	reqID := strings.TrimSpace(string(ctx.Request.Header.Peek(requestIDHeader)))
	if reqID == "" {
		reqID = uuid.NewString()
	}
	ctx.Response.Header.Set(requestIDHeader, reqID)

	switch string(ctx.Path()) {
	case "/healthz":
		if !ctx.IsGet() && !ctx.IsHead() {
			ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
			return
		}
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBodyString("ok")
	case "/render":
		if !ctx.IsPost() {
			ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
			return
		}
		s.handleRender(ctx, reqID)
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

func (s *Server) handleRender(ctx *fasthttp.RequestCtx, reqID string) {
	var in chessdto.RenderRequest
	if err := json.Unmarshal(ctx.PostBody(), &in); err != nil {
		s.writeJSON(ctx, fasthttp.StatusBadRequest, chessdto.RenderResponse{
			RequestID: reqID,
			Error:     &chessdto.DomainError{Code: "bad_request", Message: "request body is not valid JSON"},
		})
		return
	}

	rctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	res := s.svc.Render(rctx, illustrator.Request{Args: in.Args, Body: in.Body, Page: in.Page})
	var sink render.HTMLSink
	s.writer.Write(rctx, &sink, res)

	out := chessdto.RenderResponse{RequestID: reqID, HTML: sink.String()}
	if res.Err != nil {
		kind := game.Kind(res.Err)
		out.Error = &chessdto.DomainError{
			Code:      kind,
			Message:   res.Err.Error(),
			Retryable: kind == "internal",
		}
	}
	s.logger.Debug("render request",
		zap.String("request_id", reqID),
		zap.String("args", in.Args),
		zap.String("page", in.Page),
		zap.Duration("elapsed", time.Since(started)),
	)
	status := fasthttp.StatusOK
	if out.Error != nil && out.Error.Retryable {
		status = fasthttp.StatusServiceUnavailable
	}
	s.writeJSON(ctx, status, out)
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", zap.Error(err))
		ctx.Error("internal error", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(payload)
}
