// Package metrics collects business metrics for the query orchestration
// pipeline, exported in Prometheus text format.
package metrics

import (
	"fmt"
	"sync"
	"time"

	obsmetrics "github.com/netrag/netrag/pkg/observability/metrics"
)

// RAGMetrics holds the query pipeline's business metrics, each backed by a
// primitive registered into the default observability registry so they
// appear in pkg/observability/metrics.Export's Prometheus output.
type RAGMetrics struct {
	queriesTotal       obsmetrics.Counter
	queriesCacheHits   obsmetrics.Counter
	queriesCacheMisses obsmetrics.Counter
	queriesErrors      obsmetrics.Counter

	retrievalTotal    obsmetrics.Counter
	retrievalDuration obsmetrics.Gauge
	retrievalErrors   obsmetrics.Counter

	llmCallsTotal       obsmetrics.Counter
	llmCallsDuration    obsmetrics.Gauge
	llmCallsErrors      obsmetrics.Counter
	llmCallsRetries     obsmetrics.Counter
	llmTokensPrompt     obsmetrics.Counter
	llmTokensCompletion obsmetrics.Counter

	circuitBreakerOpens obsmetrics.Counter
	circuitBreakerState obsmetrics.Gauge

	documentsIndexed obsmetrics.Counter
	chunksIndexed    obsmetrics.Counter
	indexErrors      obsmetrics.Counter

	startTime time.Time
}

var (
	globalRAGMetrics *RAGMetrics
	ragMetricsOnce   sync.Once
)

// GetRAGMetrics returns the process-wide RAGMetrics instance.
func GetRAGMetrics() *RAGMetrics {
	ragMetricsOnce.Do(func() {
		globalRAGMetrics = &RAGMetrics{startTime: time.Now()}
		globalRAGMetrics.register()
	})
	return globalRAGMetrics
}

// register creates fresh metric primitives and (re-)registers them in the
// default registry, overwriting any prior registration under the same name.
func (m *RAGMetrics) register() {
	m.queriesTotal = registerCounter("rag_queries_total", "Total number of RAG queries.")
	m.queriesCacheHits = registerCounter("rag_queries_cache_hits_total", "Number of cache hits.")
	m.queriesCacheMisses = registerCounter("rag_queries_cache_misses_total", "Number of cache misses.")
	m.queriesErrors = registerCounter("rag_queries_errors_total", "Number of query errors.")

	m.retrievalTotal = registerCounter("rag_retrieval_total", "Total number of retrievals.")
	m.retrievalDuration = registerGauge("rag_retrieval_duration_seconds_total", "Total retrieval duration in seconds.")
	m.retrievalErrors = registerCounter("rag_retrieval_errors_total", "Number of retrieval errors.")

	m.llmCallsTotal = registerCounter("rag_llm_calls_total", "Total number of LLM calls.")
	m.llmCallsDuration = registerGauge("rag_llm_calls_duration_seconds_total", "Total LLM call duration in seconds.")
	m.llmCallsErrors = registerCounter("rag_llm_calls_errors_total", "Number of LLM call errors.")
	m.llmCallsRetries = registerCounter("rag_llm_calls_retries_total", "Number of LLM call retries.")
	m.llmTokensPrompt = registerCounter("rag_llm_tokens_prompt_total", "Total prompt tokens.")
	m.llmTokensCompletion = registerCounter("rag_llm_tokens_completion_total", "Total completion tokens.")

	m.circuitBreakerOpens = registerCounter("rag_circuit_breaker_opens_total", "Number of circuit breaker opens.")
	m.circuitBreakerState = registerGauge("rag_circuit_breaker_state", "Circuit breaker state (0=closed, 1=open, 2=half-open).")

	m.documentsIndexed = registerCounter("rag_documents_indexed_total", "Total documents indexed.")
	m.chunksIndexed = registerCounter("rag_chunks_indexed_total", "Total chunks indexed.")
	m.indexErrors = registerCounter("rag_index_errors_total", "Number of indexing errors.")

	obsmetrics.Register(uptimeMetric{m: m})
}

// uptimeMetric exports rag_uptime_seconds, computed from startTime each time
// the registry is exported.
type uptimeMetric struct{ m *RAGMetrics }

func (u uptimeMetric) Name() string                { return "rag_uptime_seconds" }
func (u uptimeMetric) Help() string                { return "Seconds since the metrics were initialized." }
func (u uptimeMetric) Type() obsmetrics.MetricType { return obsmetrics.TypeGauge }
func (u uptimeMetric) Describe() string {
	return fmt.Sprintf("# HELP %s %s\n# TYPE %s %s\n%s %.6f\n",
		u.Name(), u.Help(), u.Name(), u.Type(), u.Name(), time.Since(u.m.startTime).Seconds())
}

func registerCounter(name, help string) obsmetrics.Counter {
	c := obsmetrics.NewCounter(name, help)
	obsmetrics.Register(c)
	return c
}

func registerGauge(name, help string) obsmetrics.Gauge {
	g := obsmetrics.NewGauge(name, help)
	obsmetrics.Register(g)
	return g
}

// RecordQuery records a completed query, cache hit or miss, and any error.
func (m *RAGMetrics) RecordQuery(cacheHit bool, err error) {
	m.queriesTotal.Inc()
	if err != nil {
		m.queriesErrors.Inc()
		return
	}
	if cacheHit {
		m.queriesCacheHits.Inc()
	} else {
		m.queriesCacheMisses.Inc()
	}
}

// RecordRetrieval records a retrieval attempt's duration and outcome.
func (m *RAGMetrics) RecordRetrieval(duration time.Duration, err error) {
	m.retrievalTotal.Inc()
	m.retrievalDuration.Add(duration.Seconds())
	if err != nil {
		m.retrievalErrors.Inc()
	}
}

// RecordLLMCall records an LLM invocation's duration, token usage, and outcome.
func (m *RAGMetrics) RecordLLMCall(duration time.Duration, promptTokens, completionTokens int, err error) {
	m.llmCallsTotal.Inc()
	m.llmCallsDuration.Add(duration.Seconds())
	if promptTokens > 0 {
		m.llmTokensPrompt.Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.llmTokensCompletion.Add(float64(completionTokens))
	}
	if err != nil {
		m.llmCallsErrors.Inc()
	}
}

// RecordLLMRetry counts an LLM call whose result did not arrive within the
// timeout budget; the orchestrator answers with its fallback and does not
// retry the call.
func (m *RAGMetrics) RecordLLMRetry() {
	m.llmCallsRetries.Inc()
}

// RecordCircuitBreakerOpen records a circuit breaker transitioning to open.
func (m *RAGMetrics) RecordCircuitBreakerOpen() {
	m.circuitBreakerOpens.Inc()
	m.circuitBreakerState.Set(1)
}

// RecordCircuitBreakerClosed records a circuit breaker transitioning to closed.
func (m *RAGMetrics) RecordCircuitBreakerClosed() {
	m.circuitBreakerState.Set(0)
}

// RecordCircuitBreakerHalfOpen records a circuit breaker transitioning to half-open.
func (m *RAGMetrics) RecordCircuitBreakerHalfOpen() {
	m.circuitBreakerState.Set(2)
}

// RecordIndexing records a document store indexing attempt.
func (m *RAGMetrics) RecordIndexing(documents, chunks int, err error) {
	if err != nil {
		m.indexErrors.Inc()
		return
	}
	m.documentsIndexed.Add(float64(documents))
	m.chunksIndexed.Add(float64(chunks))
}

// Stats returns a snapshot of the current metrics as nested maps, for
// in-process inspection rather than Prometheus scraping.
func (m *RAGMetrics) Stats() map[string]interface{} {
	cacheHits := m.queriesCacheHits.Get()
	cacheMisses := m.queriesCacheMisses.Get()
	cacheTotal := cacheHits + cacheMisses
	cacheHitRate := 0.0
	if cacheTotal > 0 {
		cacheHitRate = cacheHits / cacheTotal
	}

	retrievalTotal := m.retrievalTotal.Get()
	retrievalDuration := m.retrievalDuration.Get()
	avgRetrievalDuration := 0.0
	if retrievalTotal > 0 {
		avgRetrievalDuration = retrievalDuration / retrievalTotal
	}

	llmTotal := m.llmCallsTotal.Get()
	llmDuration := m.llmCallsDuration.Get()
	avgLLMDuration := 0.0
	if llmTotal > 0 {
		avgLLMDuration = llmDuration / llmTotal
	}

	cbStateStr := "closed"
	switch m.circuitBreakerState.Get() {
	case 1:
		cbStateStr = "open"
	case 2:
		cbStateStr = "half-open"
	}

	return map[string]interface{}{
		"queries": map[string]interface{}{
			"total":          uint64(m.queriesTotal.Get()),
			"cache_hits":     uint64(cacheHits),
			"cache_misses":   uint64(cacheMisses),
			"cache_hit_rate": cacheHitRate,
			"errors":         uint64(m.queriesErrors.Get()),
		},
		"retrieval": map[string]interface{}{
			"total":               uint64(retrievalTotal),
			"total_duration_secs": retrievalDuration,
			"avg_duration_secs":   avgRetrievalDuration,
			"errors":              uint64(m.retrievalErrors.Get()),
		},
		"llm": map[string]interface{}{
			"calls_total":         uint64(llmTotal),
			"total_duration_secs": llmDuration,
			"avg_duration_secs":   avgLLMDuration,
			"errors":              uint64(m.llmCallsErrors.Get()),
			"retries":             uint64(m.llmCallsRetries.Get()),
			"tokens_prompt":       uint64(m.llmTokensPrompt.Get()),
			"tokens_completion":   uint64(m.llmTokensCompletion.Get()),
		},
		"circuit_breaker": map[string]interface{}{
			"state": cbStateStr,
			"opens": uint64(m.circuitBreakerOpens.Get()),
		},
		"indexing": map[string]interface{}{
			"documents_indexed": uint64(m.documentsIndexed.Get()),
			"chunks_indexed":    uint64(m.chunksIndexed.Get()),
			"errors":            uint64(m.indexErrors.Get()),
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Reset zeroes every metric by re-registering fresh primitives under the
// same names. Test-only: production code never calls this.
func (m *RAGMetrics) Reset() {
	m.register()
	m.startTime = time.Now()
}
