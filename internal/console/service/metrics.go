package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forgeconsole_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	backendOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forgeconsole_backend_operations_total",
		Help: "Backend calls made on behalf of console screens.",
	}, []string{"entity", "operation", "outcome"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "forgeconsole_active_sessions",
		Help: "Console sessions that have not expired.",
	})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func observe(entity, op string, err error) {
	backendOperationsTotal.WithLabelValues(entity, op, outcome(err)).Inc()
}
