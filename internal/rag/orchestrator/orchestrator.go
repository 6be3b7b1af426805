// Package orchestrator is the Query Orchestrator (component C8): the
// top-level entry point that runs the analyzer and context builder
// concurrently, dispatches on analysis type, composes a bounded LLM
// request, and falls back to a deterministic structured response when the
// LLM is unavailable.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"github.com/pkoukk/tiktoken-go"

	"github.com/netrag/netrag/internal/rag/analyzer"
	"github.com/netrag/netrag/internal/rag/datasource"
	"github.com/netrag/netrag/internal/rag/metrics"
	"github.com/netrag/netrag/internal/rag/quality"
	"github.com/netrag/netrag/internal/rag/rules"
	"github.com/netrag/netrag/internal/rag/schemacontext"
	"github.com/netrag/netrag/internal/rag/toolsurface"
	"github.com/netrag/netrag/pkg/infra/pool"
	"github.com/netrag/netrag/pkg/llm"
	"github.com/netrag/netrag/pkg/llm/resilience"
)

const (
	defaultMaxContextChars  = 16 * 1024
	defaultMaxContextTokens = 8192
	defaultLLMTimeout       = 120 * time.Second
	defaultMaxTokens        = 2048
	defaultListLimit        = 50
	systemInstruction       = "You are a network operations assistant. Answer using only the structured data and cited documents provided. Note any data quality caveats."
)

// Flags are caller-supplied dispatch hints (region/environment filters,
// pagination) included in the cache key.
type Flags struct {
	Region      string `json:"region,omitempty"`
	Environment string `json:"environment,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	WithHealth  bool   `json:"with_health,omitempty"`
}

// Response is the orchestrator's rendered output.
type Response struct {
	Query        string           `json:"query"`
	AnalysisType string           `json:"analysis_type"`
	Answer       string           `json:"answer"`
	Caveat       string           `json:"caveat,omitempty"`
	Degraded     bool             `json:"degraded"`
	CitedDocs    []string         `json:"cited_documents,omitempty"`
	Devices      []map[string]any `json:"devices,omitempty"`
}

// Orchestrator wires together the analyzer, context builder, rule engine,
// data source, LLM chat provider, result cache and LLM concurrency gate.
type Orchestrator struct {
	analyzer       *analyzer.Analyzer
	contextBuilder *schemacontext.Builder
	ruleEngine     *rules.Engine
	source         datasource.DataSource
	chat           llm.ChatProvider
	cache          *QueryCache
	llmPool        *pool.Pool
	encoder        *tiktoken.Tiktoken
	breaker        *resilience.CircuitBreaker

	maxContextChars int
	llmTimeout      time.Duration
	maxTokens       int
}

// Config bundles the construction dependencies for an Orchestrator.
type Config struct {
	Analyzer       *analyzer.Analyzer
	ContextBuilder *schemacontext.Builder
	RuleEngine     *rules.Engine
	Source         datasource.DataSource
	Chat           llm.ChatProvider
	Cache          *QueryCache
	LLMPool        *pool.Pool
}

// New builds an Orchestrator. LLMPool bounds LLM call concurrency (default
// width 4, configured by the caller via pool.Config.Capacity).
func New(cfg Config) *Orchestrator {
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warnw("tiktoken encoding unavailable, falling back to character bounding only", "error", err.Error())
	}

	return &Orchestrator{
		analyzer:        cfg.Analyzer,
		contextBuilder:  cfg.ContextBuilder,
		ruleEngine:      cfg.RuleEngine,
		source:          cfg.Source,
		chat:            cfg.Chat,
		cache:           cfg.Cache,
		llmPool:         cfg.LLMPool,
		encoder:         encoder,
		breaker:         resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
		maxContextChars: defaultMaxContextChars,
		llmTimeout:      defaultLLMTimeout,
		maxTokens:       defaultMaxTokens,
	}
}

// Execute is the orchestrator's sole entry point.
func (o *Orchestrator) Execute(ctx context.Context, query string, flags Flags) (*Response, error) {
	ragMetrics := metrics.GetRAGMetrics()

	if o.cache != nil {
		if cached, err := o.cache.Get(ctx, query, flags); err == nil && cached != nil {
			ragMetrics.RecordQuery(true, nil)
			return cached, nil
		}
	}
	ragMetrics.RecordQuery(false, nil)

	guidance, schemaCtx := o.analyzeAndBuildContext(ctx, query)

	analysisType := guidance.AnalysisType
	caveat := ""
	switch schemaCtx.WorstBand() {
	case quality.BandRed:
		caveat = "one or more data sources used for this answer are low quality; treat the result as indicative."
		analysisType = analyzer.AnalysisGeneralSearch
	case quality.BandYellow:
		caveat = "data quality for this answer is fair; consider validating against a live source."
	}

	resp := o.dispatch(ctx, query, analysisType, guidance, schemaCtx, flags)
	resp.Caveat = caveat

	if o.cache != nil {
		_ = o.cache.Set(ctx, query, flags, resp)
	}
	return resp, nil
}

func (o *Orchestrator) analyzeAndBuildContext(ctx context.Context, query string) (analyzer.Guidance, schemacontext.SchemaAwareContext) {
	type analyzeResult struct {
		guidance analyzer.Guidance
	}
	type contextResult struct {
		sc schemacontext.SchemaAwareContext
	}

	analyzeCh := make(chan analyzeResult, 1)
	contextCh := make(chan contextResult, 1)

	go func() { analyzeCh <- analyzeResult{guidance: o.analyzer.Analyze(ctx, query)} }()
	go func() { contextCh <- contextResult{sc: o.contextBuilder.Build(ctx, query)} }()

	return (<-analyzeCh).guidance, (<-contextCh).sc
}

func (o *Orchestrator) dispatch(ctx context.Context, query string, analysisType analyzer.AnalysisType, guidance analyzer.Guidance, schemaCtx schemacontext.SchemaAwareContext, flags Flags) *Response {
	limit := flags.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var structured strings.Builder
	var devices []map[string]any

	switch analysisType {
	case analyzer.AnalysisDeviceListing:
		schemaName := primarySchema(schemaCtx)
		filter := datasource.Filter{Region: flags.Region, Environment: flags.Environment}
		summaries, err := toolsurface.ListNetworkDevices(ctx, o.source, o.ruleEngine, schemaName, filter, limit, flags.WithHealth)
		if err != nil {
			structured.WriteString("device listing unavailable: " + err.Error() + "\n")
			break
		}
		devices = summaryRows(summaries)
		fmt.Fprintf(&structured, "%d %s devices returned\n", len(summaries), schemaName)

	case analyzer.AnalysisDeviceDetails:
		schemaName := primarySchema(schemaCtx)
		identifier := extractDeviceIdentifier(query)
		if identifier == "" {
			structured.WriteString("no device identifier found in query\n")
			break
		}
		summary, err := toolsurface.GetDeviceDetails(ctx, o.source, o.ruleEngine, schemaName, identifier, flags.WithHealth)
		if err != nil {
			structured.WriteString("device not found: " + identifier + "\n")
			break
		}
		devices = summaryRows([]toolsurface.DeviceSummary{summary})
		fmt.Fprintf(&structured, "device %s detail retrieved\n", identifier)

	default: // complex_analysis, general_search
		structured.WriteString(schemaCtx.Summary)
		structured.WriteString("\n")
		structured.WriteString(schemaCtx.BusinessContext)
	}

	answer, degraded := o.invokeLLM(ctx, query, guidance, structured.String())

	if devices == nil {
		devices = summaryRows([]toolsurface.DeviceSummary{toolsurface.NetworkQuery(answer, guidance.CitedDocumentIDs)})
	}

	return &Response{
		Query:        query,
		AnalysisType: string(analysisType),
		Answer:       answer,
		Degraded:     degraded,
		CitedDocs:    guidance.CitedDocumentIDs,
		Devices:      devices,
	}
}

func (o *Orchestrator) invokeLLM(ctx context.Context, query string, guidance analyzer.Guidance, structuredData string) (string, bool) {
	request := o.composeRequest(query, guidance, structuredData)

	if o.chat == nil {
		return fallbackAnswer(structuredData), true
	}

	type llmResult struct {
		text string
		err  error
	}
	resultCh := make(chan llmResult, 1)
	ragMetrics := metrics.GetRAGMetrics()

	submit := func() {
		llmCtx, cancel := context.WithTimeout(ctx, o.llmTimeout)
		defer cancel()
		start := time.Now()

		var text string
		prevState := o.breaker.State()
		err := o.breaker.Execute(func() error {
			var genErr error
			text, genErr = o.chat.Generate(llmCtx, request, systemInstruction)
			return genErr
		})
		o.reportBreakerTransition(ragMetrics, prevState)

		ragMetrics.RecordLLMCall(time.Since(start), len(request)/4, len(text)/4, err)
		resultCh <- llmResult{text: text, err: err}
	}

	var submitErr error
	if o.llmPool != nil {
		submitErr = o.llmPool.Submit(submit)
	} else {
		go submit()
	}
	if submitErr != nil {
		return fallbackAnswer(structuredData), true
	}

	select {
	case res := <-resultCh:
		if res.err != nil {
			logger.Warnw("llm call failed, returning fallback", "error", res.err.Error())
			return fallbackAnswer(structuredData), true
		}
		return res.text, false
	case <-time.After(o.llmTimeout + time.Second):
		ragMetrics.RecordLLMRetry()
		return fallbackAnswer(structuredData), true
	}
}

// reportBreakerTransition feeds the circuit breaker's state change, if any,
// into the business metrics so rag_circuit_breaker_state tracks the same
// state machine that is gating LLM calls.
func (o *Orchestrator) reportBreakerTransition(ragMetrics *metrics.RAGMetrics, prevState resilience.CircuitBreakerState) {
	switch newState := o.breaker.State(); newState {
	case prevState:
		return
	case resilience.StateOpen:
		ragMetrics.RecordCircuitBreakerOpen()
	case resilience.StateClosed:
		ragMetrics.RecordCircuitBreakerClosed()
	case resilience.StateHalfOpen:
		ragMetrics.RecordCircuitBreakerHalfOpen()
	}
}

func fallbackAnswer(structuredData string) string {
	return "the language model was unavailable; returning the structured data directly.\n\n" + structuredData
}

func (o *Orchestrator) composeRequest(query string, guidance analyzer.Guidance, structuredData string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", query)
	fmt.Fprintf(&b, "Guidance: %s (confidence %s)\n", guidance.Reasoning, guidance.Confidence)
	b.WriteString("Structured data:\n")
	b.WriteString(structuredData)

	text := b.String()
	if len(text) > o.maxContextChars {
		text = text[:o.maxContextChars]
	}
	return o.boundTokens(text)
}

// boundTokens additionally bounds text to a fixed defaultMaxContextTokens
// (cl100k_base tokens), independent of the character bound above.
func (o *Orchestrator) boundTokens(text string) string {
	if o.encoder == nil {
		return text
	}
	tokens := o.encoder.Encode(text, nil, nil)
	if len(tokens) <= defaultMaxContextTokens {
		return text
	}
	truncated := tokens[:defaultMaxContextTokens]
	return o.encoder.Decode(truncated)
}

func primarySchema(sc schemacontext.SchemaAwareContext) string {
	if len(sc.Schemas) == 0 {
		return "ftth_olt"
	}
	return sc.Schemas[0].Name
}

// summaryRows renders tool surface results into the response's device rows.
func summaryRows(summaries []toolsurface.DeviceSummary) []map[string]any {
	rows := make([]map[string]any, 0, len(summaries))
	for _, ds := range summaries {
		row := map[string]any{"record": ds.Fields}
		if ds.Health != nil {
			row["health"] = *ds.Health
		}
		rows = append(rows, row)
	}
	return rows
}

// extractDeviceIdentifier pulls an all-caps alphanumeric token (an OLT
// name, a modem serial) out of the query via the fixed lexicon the spec
// calls for: the first all-uppercase token longer than 4 characters.
func extractDeviceIdentifier(query string) string {
	for _, tok := range strings.Fields(query) {
		tok = strings.Trim(tok, ".,;:!?")
		if len(tok) > 4 && strings.ToUpper(tok) == tok {
			return tok
		}
	}
	return ""
}
