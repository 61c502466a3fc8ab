package roster

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Total number of layered store operations broken down by operation and result.",
	}, []string{"op", "result"})

	overlayPruned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roster",
		Subsystem: "overlay",
		Name:      "pruned_total",
		Help:      "Total number of overlay entries dropped because their id left the roster.",
	})

	hierarchyRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Subsystem: "hierarchy",
		Name:      "repairs_total",
		Help:      "Total number of direct report references removed broken down by reason.",
	}, []string{"reason"})
)

func recordStoreOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOperations.WithLabelValues(op, result).Inc()
}

func recordHierarchyRepair(reason string, removed int) {
	if removed <= 0 {
		return
	}
	hierarchyRepairs.WithLabelValues(reason).Add(float64(removed))
}
