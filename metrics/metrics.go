package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CertificatesGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "certificates_generated_total",
			Help: "Total certificate pages rendered",
		},
	)

	GenerationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_failures_total",
			Help: "Failed generation requests by reason",
		},
		[]string{"reason"},
	)

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Time spent assembling one batch",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total emails sent",
		},
	)

	EmailFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "email_failures_total",
			Help: "Total failed emails",
		},
	)

	EmailsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_skipped_total",
			Help: "Rows without a recipient",
		},
	)

	EmailJobsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "email_jobs_active",
			Help: "Email jobs currently sending",
		},
	)
)

func Init() {
	prometheus.MustRegister(CertificatesGenerated)
	prometheus.MustRegister(GenerationFailures)
	prometheus.MustRegister(GenerationDuration)
	prometheus.MustRegister(EmailsSent)
	prometheus.MustRegister(EmailFailures)
	prometheus.MustRegister(EmailsSkipped)
	prometheus.MustRegister(EmailJobsActive)
}
