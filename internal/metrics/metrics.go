package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Flow names.
const (
	FlowRegister      = "register"
	FlowLogin         = "login"
	FlowVerifyEmail   = "verify_email"
	FlowResetRequest  = "reset_request"
	FlowResetPassword = "reset_password"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuthFlows counts completed auth flows by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var AuthFlows = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authd_flows_total",
		Help: "Total number of auth flows handled, by flow and outcome",
	},
	[]string{"flow", "outcome"},
)

// EmailsSent counts notification dispatch attempts by kind and result.
var EmailsSent = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authd_emails_total",
		Help: "Total number of emails dispatched, by kind and outcome",
	},
	[]string{"kind", "outcome"},
)

func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AuthFlows)
	reg.MustRegister(EmailsSent)
}

func RecordFlow(flow string, err error) {
	AuthFlows.WithLabelValues(flow, outcome(err)).Inc()
}

func RecordEmail(kind string, err error) {
	EmailsSent.WithLabelValues(kind, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
