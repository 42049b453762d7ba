package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClaimSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claims_submitted_total",
		Help: "Number of warranty claims submitted",
	})

	ClaimTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claim_status_transitions_total",
		Help: "Number of claim status transitions by from/to status",
	}, []string{"from", "to"})

	RefundSettlements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claim_refund_settlements_total",
		Help: "Number of refund settlements executed",
	})

	RefundedAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claim_refunded_amount_total",
		Help: "Total amount credited back to users, in minor units",
	})
)
