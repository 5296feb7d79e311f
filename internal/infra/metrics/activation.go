package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	codesMinted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activation_codes_minted_total",
			Help: "Activation codes minted, by submission channel.",
		},
		[]string{"channel"}, // notify | chat
	)

	redemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activation_redemptions_total",
			Help: "Redemption attempts, by outcome.",
		},
		[]string{"outcome"}, // success | failure
	)

	mintRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activation_mint_rejections_total",
			Help: "Mint requests rejected before a row was created.",
		},
		[]string{"reason"}, // validation | rate_limited
	)

	codesExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activation_codes_expired_total",
			Help: "Pending codes marked expired by the sweep.",
		},
	)
)

func init() {
	register(codesMinted, redemptions, mintRejections, codesExpired)
}

func IncCodesMinted(channel string) { codesMinted.WithLabelValues(channel).Inc() }

func IncRedemption(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	redemptions.WithLabelValues(outcome).Inc()
}

func IncMintRejected(reason string) { mintRejections.WithLabelValues(reason).Inc() }

func AddCodesExpired(n int64) {
	if n > 0 {
		codesExpired.Add(float64(n))
	}
}
