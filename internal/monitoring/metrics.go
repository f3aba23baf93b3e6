package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	StakesPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stakes_placed_total",
			Help: "Total stakes accepted",
		},
	)

	StakeRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stake_rejections_total",
			Help: "Total stakes rejected, by reason",
		},
		[]string{"reason"},
	)

	Repricings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "odds_repricings_total",
			Help: "Total odds repricing runs",
		},
	)

	StakeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stake_transaction_seconds",
			Help:    "Stake transaction duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func Init() {
	prometheus.MustRegister(StakesPlaced)
	prometheus.MustRegister(StakeRejections)
	prometheus.MustRegister(Repricings)
	prometheus.MustRegister(StakeDuration)
}
