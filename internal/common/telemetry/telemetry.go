// File path: internal/common/telemetry/telemetry.go

// Package telemetry publishes pipeline counters through expvar. Metrics are
// process-local and surface on the API server's /debug/vars route.
package telemetry

import (
	"expvar"
	"sync"
	"time"
)

var (
	initOnce sync.Once

	retrievalTotal     *expvar.Int
	retrievalLatencyMS *expvar.Int

	answerTotal    *expvar.Int
	answerFailures *expvar.Int
)

func ensureInit() {
	initOnce.Do(func() {
		retrievalTotal = expvar.NewInt("memberbot_retrieval_total")
		retrievalLatencyMS = expvar.NewInt("memberbot_retrieval_latency_ms_total")
		answerTotal = expvar.NewInt("memberbot_answer_total")
		answerFailures = expvar.NewInt("memberbot_answer_failures_total")
	})
}

// RecordRetrieval accumulates one retrieval call and its latency.
func RecordRetrieval(elapsed time.Duration) {
	ensureInit()
	retrievalTotal.Add(1)
	retrievalLatencyMS.Add(elapsed.Milliseconds())
}

// RecordAnswer accumulates one completed answer; degraded marks answers that
// were mapped to error strings rather than generated from context.
func RecordAnswer(degraded bool) {
	ensureInit()
	answerTotal.Add(1)
	if degraded {
		answerFailures.Add(1)
	}
}
