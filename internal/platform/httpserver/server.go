package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	contributionengine "paperportal/contexts/community-experience/contribution-engine"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "paperportal/internal/platform/httpserver/docs"
)

type Server struct {
	mux            *http.ServeMux
	logger         *slog.Logger
	addr           string
	contribution   contributionengine.Module
	metricsHandler http.Handler
}

func New(
	contribution contributionengine.Module,
	metricsHandler http.Handler,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:            http.NewServeMux(),
		logger:         logger,
		addr:           addr,
		contribution:   contribution,
		metricsHandler: metricsHandler,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the route table for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if s.metricsHandler != nil {
		s.mux.Handle("GET /metrics", s.metricsHandler)
	}

	s.mux.HandleFunc("POST /api/contribution/v1/events", s.handleContributionRecordEvent)
	s.mux.HandleFunc("POST /api/contribution/v1/votes", s.handleContributionVoteTransition)
	s.mux.HandleFunc("POST /api/contribution/v1/bookmarks", s.handleContributionBookmarkTransition)
	s.mux.HandleFunc("GET /api/contribution/v1/users/{user_id}", s.handleContributionGetUser)
	s.mux.HandleFunc("POST /api/contribution/v1/users/{user_id}/recalculate", s.handleContributionRecalculate)
	s.mux.HandleFunc("GET /api/contribution/v1/leaderboard", s.handleContributionLeaderboard)
	s.mux.HandleFunc("GET /api/contribution/v1/tiers", s.handleContributionTierBands)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
