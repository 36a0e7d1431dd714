// internal/httpapi/server.go
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/tamzrod/tag-ap/internal/ap"
	"github.com/tamzrod/tag-ap/internal/logger"
	"github.com/tamzrod/tag-ap/internal/proto"
)

// Source yields the most recently published engine snapshot.
// *ap.Engine satisfies it.
type Source interface {
	Snapshot() ap.Snapshot
}

// Server is the read-only diagnostics API.
type Server struct {
	src Source
	log logger.Logger
}

func NewServer(src Source, log logger.Logger) *Server {
	return &Server{src: src, log: log}
}

// Register mounts the routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/status", s.handleStatus)
	e.GET("/v1/pending", s.handlePending)
	e.GET("/v1/pending/:mac", s.handlePendingTag)
}

// New returns an echo instance with the diagnostics routes mounted.
func New(src Source, log logger.Logger) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Recover())
	NewServer(src, log).Register(e)
	return e
}

// Serve listens on addr until ctx is done.
func Serve(ctx context.Context, addr string, e *echo.Echo) error {
	sc := echo.StartConfig{
		Address: addr,
		BeforeServeFunc: func(srv *http.Server) error {
			srv.ReadHeaderTimeout = 5 * time.Second
			return nil
		},
	}
	return sc.Start(ctx, e)
}

// ---- handlers ----

func (s *Server) handleStatus(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, s.src.Snapshot())
}

func (s *Server) handlePending(c *echo.Context) error {
	snap := s.src.Snapshot()
	pending := snap.Pending
	if pending == nil {
		pending = []ap.PendingView{}
	}
	return writeJSON(c, http.StatusOK, map[string]any{
		"capacity": snap.Capacity,
		"live":     snap.LiveOffers,
		"pending":  pending,
	})
}

func (s *Server) handlePendingTag(c *echo.Context) error {
	mac, err := proto.ParseMAC(c.Param("mac"))
	if err != nil {
		s.log.Debug("httpapi: bad tag address", "param", c.Param("mac"), "err", err)
		return writeError(c, http.StatusBadRequest, err.Error())
	}
	tag := mac.String()
	for _, p := range s.src.Snapshot().Pending {
		if p.Tag == tag {
			return writeJSON(c, http.StatusOK, p)
		}
	}
	return writeError(c, http.StatusNotFound, "no pending offer for "+tag)
}

// ---- helpers ----

func writeError(c *echo.Context, status int, msg string) error {
	return writeJSON(c, status, map[string]string{"error": msg})
}

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res.WriteHeader(status)
	_, err = res.Write(b)
	return err
}
