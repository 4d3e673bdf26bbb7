// Package server exposes the HTTP trigger used when an external scheduler
// (cron service, serverless timer) invokes the dispatch job over HTTP instead
// of the in-process interval mode.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/hwnotify/internal/dispatcher"
)

// Server wraps a gin engine around the dispatcher.
type Server struct {
	engine       *gin.Engine
	dispatcher   *dispatcher.Dispatcher
	log          *zap.Logger
	triggerToken string
}

// New builds the router. If triggerToken is non-empty, dispatch requests must
// carry it in the X-Job-Token header.
func New(d *dispatcher.Dispatcher, log *zap.Logger, triggerToken string) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine:       gin.New(),
		dispatcher:   d,
		log:          log,
		triggerToken: triggerToken,
	}

	s.engine.Use(gin.Recovery())
	s.engine.GET("/healthz", s.health)
	s.engine.POST("/jobs/dispatch", s.dispatch)
	return s
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// dispatch runs one cycle synchronously and returns its report. The trigger
// has no structured consumer; the report body exists for operators poking the
// endpoint by hand.
func (s *Server) dispatch(c *gin.Context) {
	if s.triggerToken != "" && c.GetHeader("X-Job-Token") != s.triggerToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid job token"})
		return
	}

	report, err := s.dispatcher.RunCycle(c.Request.Context())
	if err != nil {
		if errors.Is(err, dispatcher.ErrCycleInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("dispatch cycle failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
