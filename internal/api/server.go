package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the JSON API
type Server struct {
	router     *gin.Engine
	analysis   *AnalysisHandler
	statements *StatementHandler
	events     *SSEHub
}

// NewServer wires the handlers into a gin engine. events may be nil.
func NewServer(analysis *AnalysisHandler, statements *StatementHandler, events *SSEHub) *Server {
	s := &Server{
		router:     gin.Default(),
		analysis:   analysis,
		statements: statements,
		events:     events,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.analysis.Status)

	api := s.router.Group("/api")
	api.GET("/statements", s.statements.List)
	api.GET("/statements/:tid", s.statements.Get)
	api.POST("/statements/:tid/votes", s.statements.Votes)
	api.POST("/analysis", s.analysis.Analyze)
	api.GET("/analysis/last", s.analysis.Last)
	if s.events != nil {
		api.GET("/analysis/events", s.events.HandleSSE)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// NewOpsRouter serves pprof under /debug and a liveness probe, on a port
// separate from the API
func NewOpsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/debug", middleware.Profiler())
	return r
}
