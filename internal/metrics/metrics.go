// Package metrics exposes prover counters and histograms to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// proofsTotal counts completed proofs.
	// Labels: verdict (valid, invalid), source (api, mcp, cli, workspace)
	proofsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "modalk",
		Subsystem: "prover",
		Name:      "proofs_total",
		Help:      "Completed proofs by verdict and source",
	}, []string{"verdict", "source"})

	// proofDuration measures parse-to-model latency.
	proofDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "modalk",
		Subsystem: "prover",
		Name:      "duration_seconds",
		Help:      "Time to prove one formula, including counter-model synthesis",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"verdict"})

	// proofNodes tracks derivation size.
	proofNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "modalk",
		Subsystem: "prover",
		Name:      "proof_nodes",
		Help:      "Number of nodes in each derivation tree",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	// modelWorlds tracks counter-model size.
	modelWorlds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "modalk",
		Subsystem: "kripke",
		Name:      "model_worlds",
		Help:      "Number of worlds in each synthesized counter-model",
		Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16, 32},
	})

	// unverifiedModels counts counter-models that do not falsify their formula.
	// Labels: successors (shallowest, all)
	unverifiedModels = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "modalk",
		Subsystem: "kripke",
		Name:      "unverified_models_total",
		Help:      "Counter-models that fail to falsify their formula at the root world",
	}, []string{"successors"})

	// parseErrors counts rejected input.
	parseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "modalk",
		Subsystem: "prover",
		Name:      "parse_errors_total",
		Help:      "Formulas rejected by the parser",
	}, []string{"source"})

	// expectationMismatches counts workspace entries whose verdict differs
	// from the file's declared expectation.
	expectationMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "modalk",
		Subsystem: "workspace",
		Name:      "expectation_mismatches_total",
		Help:      "Workspace formulas whose verdict contradicts the file's expect field",
	})

	// filesIndexed counts workspace files proved and recorded.
	filesIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "modalk",
		Subsystem: "workspace",
		Name:      "files_indexed_total",
		Help:      "Workspace files proved and recorded in the history index",
	})
)

// RecordProof records one completed proof.
func RecordProof(source string, valid bool, elapsed time.Duration, nodes int) {
	verdict := "invalid"
	if valid {
		verdict = "valid"
	}
	proofsTotal.WithLabelValues(verdict, source).Inc()
	proofDuration.WithLabelValues(verdict).Observe(elapsed.Seconds())
	proofNodes.Observe(float64(nodes))
}

// RecordModel records a synthesized counter-model and whether it was
// checked to falsify its formula.
func RecordModel(worlds int, verified bool, successors string) {
	modelWorlds.Observe(float64(worlds))
	if !verified {
		unverifiedModels.WithLabelValues(successors).Inc()
	}
}

// RecordParseError records a rejected formula.
func RecordParseError(source string) {
	parseErrors.WithLabelValues(source).Inc()
}

// RecordExpectationMismatch records a workspace verdict contradicting its file.
func RecordExpectationMismatch() {
	expectationMismatches.Inc()
}

// RecordFileIndexed records a workspace file sync.
func RecordFileIndexed() {
	filesIndexed.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
