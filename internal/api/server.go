// Package api serves assembly, storage and inspection of containers over
// HTTP.
package api

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	digest "github.com/opencontainers/go-digest"

	"github.com/samcharles93/tmf/internal/convert"
	"github.com/samcharles93/tmf/internal/dump"
	"github.com/samcharles93/tmf/internal/logger"
	"github.com/samcharles93/tmf/pkg/asm"
	"github.com/samcharles93/tmf/pkg/tmf"
)

// DefaultMaxBody bounds request bodies.
const DefaultMaxBody = 64 << 20

type Server struct {
	store   Store
	conv    *convert.Converter
	metrics *Metrics
	log     logger.Logger
	clock   func() time.Time
	maxBody int64
}

type Option func(*Server)

func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func WithConverter(c *convert.Converter) Option {
	return func(s *Server) {
		if c != nil {
			s.conv = c
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithMaxBody(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

func NewServer(store Store, opts ...Option) *Server {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Server{
		store:   store,
		conv:    convert.New(),
		metrics: NewMetrics(),
		log:     logger.Discard(),
		clock:   time.Now,
		maxBody: DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the server's metric set.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/assemble", s.handleAssemble)
	e.GET("/v1/containers/:id", s.handleGetContainer)
	e.GET("/v1/containers/:id/dump", s.handleDumpContainer)
	e.DELETE("/v1/containers/:id", s.handleDeleteContainer)
	e.POST("/v1/inspect", s.handleInspect)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

func (s *Server) handleAssemble(c *echo.Context) error {
	const op = "assemble"
	ctx := c.Request().Context()

	src, err := readBody(c.Request().Body, s.maxBody)
	if err != nil {
		return s.fail(c, op, err)
	}
	data, res, err := s.conv.Assemble(ctx, bytes.NewReader(src))
	if err != nil {
		var perr *asm.ParseError
		if errors.As(err, &perr) {
			s.metrics.assembly("parse_error", 0, 0)
			s.metrics.request(op, http.StatusBadRequest)
			return writeError(c, http.StatusBadRequest, "parse_error", perr.Error(), perr.Pos.String(), parseErrorCode(err))
		}
		s.metrics.assembly("error", 0, 0)
		return s.fail(c, op, err)
	}
	s.metrics.assembly("ok", res.Size, res.Duration)

	ctr := Container{
		ID:        newContainerID(),
		Digest:    res.Digest,
		Size:      res.Size,
		Top:       res.Top,
		CreatedAt: s.clock().Unix(),
		Data:      data,
	}
	if err := s.store.Put(ctx, ctr); err != nil {
		return s.fail(c, op, err)
	}
	s.refreshStored(c)
	s.log.Info("assembled container", "id", ctr.ID, "size", ctr.Size, "digest", ctr.Digest)

	s.metrics.request(op, http.StatusOK)
	return writeJSON(c, http.StatusOK, AssembleResponse{
		ID:     ctr.ID,
		Object: "container",
		Digest: ctr.Digest,
		Size:   ctr.Size,
		Top:    ctr.Top,
	})
}

func (s *Server) handleGetContainer(c *echo.Context) error {
	const op = "get"
	ctr, err := s.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, op, err)
	}
	s.metrics.request(op, http.StatusOK)
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, ctr.Data)
}

func (s *Server) handleDumpContainer(c *echo.Context) error {
	const op = "dump"
	ctr, err := s.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, op, err)
	}
	doc, err := dump.Build(tmf.NewReader(ctr.Data))
	if err != nil {
		return s.fail(c, op, err)
	}
	s.metrics.request(op, http.StatusOK)
	return writeJSON(c, http.StatusOK, doc)
}

func (s *Server) handleDeleteContainer(c *echo.Context) error {
	const op = "delete"
	id := c.Param("id")
	if err := s.store.Delete(c.Request().Context(), id); err != nil {
		return s.fail(c, op, err)
	}
	s.refreshStored(c)
	s.metrics.request(op, http.StatusOK)
	return writeJSON(c, http.StatusOK, DeleteContainerResp{
		ID:      id,
		Object:  "container",
		Deleted: true,
	})
}

func (s *Server) handleInspect(c *echo.Context) error {
	const op = "inspect"
	data, err := readBody(c.Request().Body, s.maxBody)
	if err != nil {
		return s.fail(c, op, err)
	}
	r := tmf.NewReader(data)
	if err := r.Validate(); err != nil {
		s.metrics.request(op, http.StatusBadRequest)
		return writeError(c, http.StatusBadRequest, "invalid_container", err.Error(), "", containerErrorCode(err))
	}
	summary, err := dump.Summarize(r)
	if err != nil {
		return s.fail(c, op, err)
	}
	doc, err := dump.Build(r)
	if err != nil {
		return s.fail(c, op, err)
	}
	s.metrics.request(op, http.StatusOK)
	return writeJSON(c, http.StatusOK, InspectResponse{
		Object:   "inspection",
		Digest:   digest.FromBytes(data),
		Summary:  summary,
		Document: doc,
	})
}

// fail maps err to an error response and counts it.
func (s *Server) fail(c *echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		s.metrics.request(op, http.StatusNotFound)
		return writeNotFound(c, "container not found")
	case errors.Is(err, ErrInvalidRequest):
		s.metrics.request(op, http.StatusBadRequest)
		return writeBadRequest(c, err.Error())
	}
	s.log.Error("request failed", "op", op, "error", err)
	s.metrics.request(op, http.StatusInternalServerError)
	return writeServerError(c, err)
}

func (s *Server) refreshStored(c *echo.Context) {
	n, err := s.store.Len(c.Request().Context())
	if err != nil {
		s.log.Warn("count containers", "error", err)
		return
	}
	s.metrics.setStored(n)
}

func containerErrorCode(err error) string {
	switch {
	case errors.Is(err, tmf.ErrFlipped):
		return "flipped"
	case errors.Is(err, tmf.ErrBadMagic):
		return "bad_magic"
	case errors.Is(err, tmf.ErrTruncated):
		return "truncated"
	}
	return "not_container"
}
