package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ScoreSubmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tennis_score_submissions_total",
			Help: "The total number of score submissions accepted.",
		}),
		ScoreRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tennis_score_rejections_total",
			Help: "The total number of score submissions rejected by validation.",
		}),
		MatchesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tennis_matches_processed_total",
			Help: "The total number of matches processed by the state machine.",
		}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tennis_match_processing_duration_seconds",
			Help:    "The duration of individual match processing.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		PubSubPublishFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tennis_pubsub_publish_failed_total",
			Help: "The total number of pubsub messages that failed to publish.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tennis_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.ScoreSubmissions,
		s.ScoreRejections,
		s.MatchesProcessed,
		s.ProcessingDuration,
		s.PubSubPublishFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncScoreSubmissions() {
	s.ScoreSubmissions.Inc()
}

func (s *Service) IncScoreRejections() {
	s.ScoreRejections.Inc()
}

func (s *Service) IncMatchesProcessed() {
	s.MatchesProcessed.Inc()
}

func (s *Service) ObserveProcessingDuration(duration float64) {
	s.ProcessingDuration.Observe(duration)
}

func (s *Service) IncPubSubPublishFailed() {
	s.PubSubPublishFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
