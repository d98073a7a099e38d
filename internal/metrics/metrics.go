package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campaign_emails_sent_total",
			Help: "Total emails handed to the transport successfully",
		},
	)

	EmailFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campaign_email_failures_total",
			Help: "Total emails the transport rejected",
		},
	)

	CallbacksReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_callbacks_received_total",
			Help: "Provider callback events received, by type",
		},
		[]string{"type"},
	)

	CampaignsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaigns_dispatched_total",
			Help: "Campaign dispatch runs finished, by outcome",
		},
		[]string{"outcome"},
	)
)

func Init() {
	prometheus.MustRegister(EmailsSent)
	prometheus.MustRegister(EmailFailures)
	prometheus.MustRegister(CallbacksReceived)
	prometheus.MustRegister(CampaignsDispatched)
}
