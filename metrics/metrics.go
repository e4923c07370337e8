package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "footroll"

const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
	OutcomeSkipped = "skipped"
)

var (
	PollCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_cycles_total",
		Help:      "Live poll cycles by outcome.",
	}, []string{"outcome"})

	EventsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_sent_total",
		Help:      "Notable events dispatched to the operator chat.",
	})

	LedgerDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_duplicates_total",
		Help:      "Notable events skipped because they were already notified.",
	})

	SearchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_requests_total",
		Help:      "Search provider requests by provider and outcome.",
	}, []string{"provider", "outcome"})

	CallbackActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "callback_actions_total",
		Help:      "Operator button presses by action.",
	}, []string{"action"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
