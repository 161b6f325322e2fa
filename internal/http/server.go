package http

import (
	"net/http"

	"github.com/tennispal/tennispal/internal/config"
	"github.com/tennispal/tennispal/internal/league"
	"github.com/tennispal/tennispal/internal/metrics"
	"github.com/tennispal/tennispal/internal/processor"
	"github.com/tennispal/tennispal/internal/pubsub"
)

func NewServer(store league.Store, metricsSvc metrics.Metrics, metricsHandler http.Handler, metricsStore metrics.MetricsStore, cfg config.Config, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		MetricsStore:   metricsStore,
		Cfg:            cfg,
		Processor:      processor,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// API routes additionally require an authenticated player via authMiddleware.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/counters", Chain(s.CountersHandler(), paramsMiddleware))
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/process", Chain(s.ProcessMatchesHandler(), paramsMiddleware))

	s.Router.Handle("POST /api/players", Chain(s.RegisterPlayerHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("GET /api/players", Chain(s.ListPlayersHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("GET /api/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/players/stats", Chain(s.PlayerStatsHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/h2h/{opponentID}", Chain(s.HeadToHeadHandler(), paramsMiddleware, s.authMiddleware))

	s.Router.Handle("POST /api/availability", Chain(s.AddAvailabilityHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("GET /api/availability", Chain(s.GetAvailabilityHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("DELETE /api/availability/{id}", Chain(s.DeleteAvailabilityHandler(), paramsMiddleware, s.authMiddleware))

	s.Router.Handle("POST /api/posts", Chain(s.CreatePostHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("GET /api/posts", Chain(s.ListPostsHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("POST /api/posts/{id}/claim", Chain(s.ClaimPostHandler(), paramsMiddleware, s.authMiddleware))

	s.Router.Handle("POST /api/invites", Chain(s.CreateInviteHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("GET /api/invites", Chain(s.ListInvitesHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("POST /api/invites/{id}/accept", Chain(s.AcceptInviteHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("POST /api/invites/{id}/decline", Chain(s.DeclineInviteHandler(), paramsMiddleware, s.authMiddleware))

	s.Router.Handle("GET /api/matches", Chain(s.ListMatchesHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("GET /api/matches/{id}", Chain(s.GetMatchHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("POST /api/matches/{id}/score", Chain(s.SubmitScoreHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("POST /api/matches/{id}/confirm", Chain(s.ResolveScoreHandler(true), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("POST /api/matches/{id}/dispute", Chain(s.ResolveScoreHandler(false), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("POST /api/matches/{id}/cancel", Chain(s.CancelMatchHandler(), paramsMiddleware, s.authMiddleware))

	s.Router.Handle("GET /api/notifications", Chain(s.NotificationsHandler(), paramsMiddleware, s.authMiddleware))

	s.Router.Handle("/tasks/update-player-stats", Chain(s.UpdatePlayerStatsHandler(), paramsMiddleware))
	s.Router.Handle("/tasks/notify-result", Chain(s.NotifyResultHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
