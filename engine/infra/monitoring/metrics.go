package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ExecutionsStarted counts executions handed to the run engine, by mode.
	ExecutionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodeflow_executions_started_total",
		Help: "Executions delegated to the run engine.",
	}, []string{"mode"})

	// ExecutionsWaiting counts executions suspended for a webhook event.
	ExecutionsWaiting = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodeflow_executions_waiting_total",
		Help: "Executions suspended waiting for an external trigger event.",
	})

	// ErrorWorkflowDispatches counts error-workflow invocations by result.
	ErrorWorkflowDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodeflow_error_workflow_dispatches_total",
		Help: "Error-workflow dispatch attempts.",
	}, []string{"result"})
)

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
