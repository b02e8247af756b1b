package domain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TreesBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trees_built_total",
		Help: "The number of Merkle trees built by this service.",
	})

	TreeBuildTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "tree_build_seconds",
		Help: "The time it takes to build a Merkle tree.",
	})

	LeavesPerTree = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "leaves_per_tree",
		Help:    "The number of leaf items in each built tree.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tree_verifications_total",
		Help: "Verification outcomes, labelled valid or invalid.",
	}, []string{"result"})
)
