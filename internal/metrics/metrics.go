package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PhaseTransitionsTotal counts phase lifecycle transitions by target status
	PhaseTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distributor_phase_transitions_total",
			Help: "Total number of phase lifecycle transitions",
		},
		[]string{"status"},
	)

	// PhaseFillRatio tracks the virtual fill of each phase (used_usd / target_usd)
	PhaseFillRatio = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "distributor_phase_fill_ratio",
			Help: "Virtual fill ratio of a phase",
		},
		[]string{"phase_no"},
	)

	// UnallocatedUSD tracks contribution USD beyond the capacity of the last phase
	UnallocatedUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "distributor_unallocated_usd",
			Help: "Contribution USD not covered by any phase",
		},
	)

	// SnapshotsTotal counts snapshot runs by result
	SnapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distributor_snapshots_total",
			Help: "Total number of phase snapshots",
		},
		[]string{"result"},
	)

	// FinalizeTotal counts finalize attempts by result
	FinalizeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distributor_finalize_total",
			Help: "Total number of finalize attempts",
		},
		[]string{"result"},
	)

	// ClaimsTotal counts claim requests by result (accepted or the rejection code)
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distributor_claims_total",
			Help: "Total number of claim requests",
		},
		[]string{"result"},
	)

	// ClaimedMEGY tracks the amount of reward units settled
	ClaimedMEGY = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "distributor_claimed_megy_total",
			Help: "Total reward units claimed",
		},
	)

	// ClaimAmount tracks the size of accepted claims
	ClaimAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "distributor_claim_amount",
			Help:    "Amount of reward units per accepted claim",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 100, 1000, 10000, 100000},
		},
	)

	// SessionsClosedTotal counts claim sessions closed because the wallet exhausted its balance
	SessionsClosedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "distributor_claim_sessions_closed_total",
			Help: "Total number of claim sessions auto-closed",
		},
	)

	// OperationDuration tracks service operation latency
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "distributor_operation_duration_seconds",
			Help:    "Service operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// PhaseLabel formats a phase number as a metric label.
func PhaseLabel(phaseNo int64) string {
	return strconv.FormatInt(phaseNo, 10)
}
