package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LedgerApplies counts accounting-engine outcomes. The outcome label is
// "success" or one of the failure reason codes.
var LedgerApplies = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hive_timebank_applies_total",
		Help: "TimeBank ledger apply attempts by outcome.",
	},
	[]string{"outcome"},
)

// CompletionsFinalized counts services and transactions that reached COMPLETED.
var CompletionsFinalized = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hive_completions_finalized_total",
		Help: "Exchanges finalized through dual confirmation.",
	},
	[]string{"kind"},
)

// ExpiredServicesSwept counts services moved to EXPIRED by the deadline sweep.
var ExpiredServicesSwept = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "hive_expired_services_swept_total",
		Help: "Services expired by the deadline sweep.",
	},
)
