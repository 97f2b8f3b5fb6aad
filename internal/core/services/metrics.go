package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeAccepted         = "accepted"
	outcomeInvalidInput     = "invalid_input"
	outcomeRejected         = "rejected"
	outcomeInvalidCandidate = "invalid_candidate"
	outcomeAlreadyVoted     = "already_voted"
	outcomeFailed           = "failed"
)

// Metrics holds the service counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	votes           *prometheus.CounterVec
	submitDuration  prometheus.Histogram
	txIDTruncations prometheus.Counter
	txIDCollisions  prometheus.Counter
	auditDropped    prometheus.Counter
	auditFailed     prometheus.Counter
	orphans         prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ballot",
			Name:      "vote_submissions_total",
			Help:      "Vote submissions by terminal outcome.",
		}, []string{"outcome"}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ballot",
			Name:      "vote_submission_duration_seconds",
			Help:      "Time spent in the vote submission pipeline.",
			Buckets:   prometheus.DefBuckets,
		}),
		txIDTruncations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ballot",
			Name:      "transaction_id_truncations_total",
			Help:      "Generated transaction hashes that exceeded the ledger capacity.",
		}),
		txIDCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ballot",
			Name:      "transaction_id_collisions_total",
			Help:      "Ledger writes rejected by the transaction hash uniqueness constraint.",
		}),
		auditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ballot",
			Name:      "audit_events_dropped_total",
			Help:      "Audit events discarded because the recorder queue was full.",
		}),
		auditFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ballot",
			Name:      "audit_events_failed_total",
			Help:      "Audit events the store failed to persist.",
		}),
		orphans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ballot",
			Name:      "orphaned_transactions_total",
			Help:      "Confirmed transactions found without a vote record.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.votes, m.submitDuration, m.txIDTruncations, m.txIDCollisions, m.auditDropped, m.auditFailed, m.orphans)
	}
	return m
}

func (m *Metrics) observeSubmission(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.votes.WithLabelValues(outcome).Inc()
	m.submitDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) incTruncation() {
	if m != nil {
		m.txIDTruncations.Inc()
	}
}

func (m *Metrics) incCollision() {
	if m != nil {
		m.txIDCollisions.Inc()
	}
}

func (m *Metrics) incAuditDropped() {
	if m != nil {
		m.auditDropped.Inc()
	}
}

func (m *Metrics) incAuditFailed() {
	if m != nil {
		m.auditFailed.Inc()
	}
}

func (m *Metrics) incOrphans(n int) {
	if m != nil {
		m.orphans.Add(float64(n))
	}
}
