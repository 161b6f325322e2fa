package http

import (
	"net/http"

	"github.com/tennispal/tennispal/internal/config"
	"github.com/tennispal/tennispal/internal/league"
	"github.com/tennispal/tennispal/internal/metrics"
	"github.com/tennispal/tennispal/internal/processor"
	"github.com/tennispal/tennispal/internal/pubsub"
)

type Server struct {
	Store          league.Store
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	MetricsStore   metrics.MetricsStore
	Cfg            config.Config
	Processor      *processor.Processor
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
