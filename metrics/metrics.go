package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orbflow_scans_total", Help: "Scan cycles by result"},
		[]string{"result"},
	)
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orbflow_decisions_total", Help: "Evaluation decisions by kind and reason"},
		[]string{"kind", "reason"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orbflow_signals_total", Help: "Signals emitted by action"},
		[]string{"action"},
	)
	DeliveryFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orbflow_delivery_failures_total", Help: "Signals the emitter failed to deliver"},
		[]string{"action"},
	)
	EvaluationErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "orbflow_evaluation_errors_total", Help: "Evaluations that failed or panicked"},
	)
	SentimentFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orbflow_sentiment_failures_total", Help: "Sentiment source calls that failed"},
		[]string{"source"},
	)
	OpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "orbflow_open_positions", Help: "Open positions after the last scan"},
	)
)

func init() {
	prometheus.MustRegister(ScansTotal, DecisionsTotal, SignalsTotal, DeliveryFailuresTotal,
		EvaluationErrorsTotal, SentimentFailuresTotal, OpenPositions)
}

// Serve exposes the registered metrics on the provided address.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
