// Package analyzer is the RAG Fusion Analyzer (component C5): turns a
// free-text query into structured tool/analysis guidance by combining
// query-content keyword cues with a fused multi-rephrasing document
// retrieval pass.
//
// Grounded on rag_fusion_analyzer.py's analyze_query_for_tool_selection,
// _perform_fusion_search, _analyze_documents_for_guidance and
// _fallback_guidance — re-expressed as pure functions over a fixed cue
// table (cues.go) instead of the original's inline keyword lists.
package analyzer

import (
	"context"
	"sort"
	"strings"

	"github.com/netrag/netrag/internal/rag/docstore"
)

// AnalysisType is the dispatch key the Query Orchestrator branches on.
type AnalysisType string

const (
	AnalysisDeviceListing   AnalysisType = "device_listing"
	AnalysisDeviceDetails   AnalysisType = "device_details"
	AnalysisComplex         AnalysisType = "complex_analysis"
	AnalysisGeneralSearch   AnalysisType = "general_search"
)

// Confidence bands how much to trust Guidance.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// analysisPriority breaks argmax ties: list > detail > complex.
var analysisPriority = []string{"device_listing", "device_details", "complex_analysis"}
var toolPriority = []string{"list", "detail", "complex"}

// Guidance is the analyzer's output.
type Guidance struct {
	AnalysisType     AnalysisType
	Confidence       Confidence
	ToolRecommendation string
	Reasoning        string
	ExtractedTerms   []string
	CitedDocumentIDs []string
	Degraded         bool
}

// rephraseTemplates are the four pure, language-neutral rephrasings used to
// fan out the fusion search, mirroring _perform_fusion_search's
// search_strategies.
func rephraseTemplates(query string) []string {
	return []string{
		"tool selection for: " + query,
		"how to handle query: " + query,
		"MCP tool for " + query,
		"network analysis approach for: " + query,
	}
}

// Analyzer runs the fusion search against a Document Store.
type Analyzer struct {
	docs *docstore.Store
}

// New builds an Analyzer backed by docs.
func New(docs *docstore.Store) *Analyzer {
	return &Analyzer{docs: docs}
}

// Analyze is the component's sole entry point: a pure function of query and
// the current document corpus (as observed through docs).
func (a *Analyzer) Analyze(ctx context.Context, query string) Guidance {
	docs, err := a.fusionSearch(ctx, query)
	if err != nil || len(docs) == 0 {
		return a.fallback(query)
	}
	return a.analyzeDocuments(query, docs)
}

func (a *Analyzer) fusionSearch(ctx context.Context, query string) ([]docstore.Hit, error) {
	seen := make(map[string]bool)
	var all []docstore.Hit

	for _, rephrased := range rephraseTemplates(query) {
		hits, err := a.docs.Search(ctx, rephrased, 3, true)
		if err != nil {
			continue // one rephrasing failing doesn't sink the fusion pass
		}
		for _, h := range hits {
			if seen[h.Document.ID] {
				continue
			}
			seen[h.Document.ID] = true
			all = append(all, h)
		}
	}
	return all, nil
}

func (a *Analyzer) analyzeDocuments(query string, docs []docstore.Hit) Guidance {
	queryLower := strings.ToLower(query)
	toolTally := scoreCues(queryLower, toolCues)
	analysisTally := scoreCues(queryLower, analysisCues)

	var cited []string

	top := docs
	if len(top) > 5 {
		top = top[:5]
	}
	for _, hit := range top {
		content := strings.ToLower(hit.Document.Body)
		title := strings.ToLower(hit.Document.Title)

		for _, tool := range candidateTools {
			if strings.Contains(title, tool) || strings.Contains(content, tool) {
				toolTally[toolKeyFor(tool)] += 2
			}
		}

		for key, score := range scoreCues(content, documentCues) {
			analysisTally[key] += score
		}

		cited = append(cited, hit.Document.ID)
	}

	bestTool := argmax(toolTally, toolPriority)
	bestAnalysis := argmax(analysisTally, analysisPriority)

	confidence := confidenceFromScore(tallyMargin(analysisTally, analysisPriority), len(cited))

	return Guidance{
		AnalysisType:       AnalysisType(bestAnalysis),
		Confidence:         confidence,
		ToolRecommendation: toolName(bestTool),
		Reasoning:          reasoningFor(bestTool, bestAnalysis),
		ExtractedTerms:     strings.Fields(queryLower),
		CitedDocumentIDs:   cited,
	}
}

func (a *Analyzer) fallback(query string) Guidance {
	queryLower := strings.ToLower(query)
	toolTally := scoreCues(queryLower, toolCues)

	best := argmax(toolTally, toolPriority)
	score := toolTally[best]

	if score == 0 {
		return Guidance{
			AnalysisType:       AnalysisGeneralSearch,
			Confidence:         ConfidenceLow,
			ToolRecommendation: "query_network_resources",
			Reasoning:          "fusion search returned no documents; query requires intelligent analysis",
			ExtractedTerms:     strings.Fields(queryLower),
			Degraded:           true,
		}
	}

	analysisType := map[string]AnalysisType{
		"list":    AnalysisDeviceListing,
		"detail":  AnalysisDeviceDetails,
		"complex": AnalysisComplex,
	}[best]

	return Guidance{
		AnalysisType:       analysisType,
		Confidence:         ConfidenceMedium,
		ToolRecommendation: toolName(best),
		Reasoning:          "fusion search unavailable; query pattern suggests " + strings.ReplaceAll(string(analysisType), "_", " "),
		ExtractedTerms:     strings.Fields(queryLower),
		Degraded:           true,
	}
}

func argmax(scores map[string]int, priority []string) string {
	best := priority[0]
	bestScore := scores[priority[0]]
	for _, k := range priority[1:] {
		if scores[k] > bestScore {
			best, bestScore = k, scores[k]
		}
	}
	return best
}

// tallyMargin returns the gap between the winning and second-best entries of
// scores, restricted to the keys in priority.
func tallyMargin(scores map[string]int, priority []string) int {
	vals := make([]int, len(priority))
	for i, k := range priority {
		vals[i] = scores[k]
	}
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))
	return vals[0] - vals[1]
}

func confidenceFromScore(margin, docsCited int) Confidence {
	switch {
	case margin >= 3 && docsCited >= 1:
		return ConfidenceHigh
	case margin >= 1:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func toolKeyFor(tool string) string {
	switch tool {
	case "list_network_devices":
		return "list"
	case "get_device_details":
		return "detail"
	default:
		return "complex"
	}
}

func toolName(key string) string {
	switch key {
	case "list":
		return "list_network_devices"
	case "detail":
		return "get_device_details"
	default:
		return "query_network_resources"
	}
}

func reasoningFor(tool, analysisType string) string {
	switch tool {
	case "list":
		return "query requests device inventory or counts, best served by the listing tool"
	case "detail":
		return "query asks for specific device information, requires the detail tool"
	default:
		return "query requires cross-system analysis, suggests " + strings.ReplaceAll(analysisType, "_", " ")
	}
}
