package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// authorizationsTotal counts decisions by external outcome. "undetermined"
// covers collaborator failures where no verdict was recorded.
var authorizationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cardauth",
	Name:      "authorizations_total",
	Help:      "Transaction authorization outcomes.",
}, []string{"outcome"})
