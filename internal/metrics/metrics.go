// Package metrics exposes Prometheus collectors for HTTP traffic and the
// question bank.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "trivia"

// Metrics implements trivia.Recorder and observes HTTP requests.
type Metrics struct {
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	questionsCreated prometheus.Counter
	questionsDeleted prometheus.Counter
	quizRounds       *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		questionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_created_total",
			Help:      "Questions added to the bank.",
		}),
		questionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_deleted_total",
			Help:      "Questions removed from the bank.",
		}),
		quizRounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_rounds_total",
			Help:      "Quiz rounds served, by outcome (question or exhausted).",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.questionsCreated, m.questionsDeleted, m.quizRounds)
	return m
}

// ObserveRequest matches logging.RequestObserver.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) QuestionCreated() { m.questionsCreated.Inc() }

func (m *Metrics) QuestionDeleted() { m.questionsDeleted.Inc() }

func (m *Metrics) QuizServed(exhausted bool) {
	outcome := "question"
	if exhausted {
		outcome = "exhausted"
	}
	m.quizRounds.WithLabelValues(outcome).Inc()
}
