package analyzer

import "strings"

// Keyword cue tables carried forward in meaning from rag_fusion_analyzer.py's
// query-content scoring (_analyze_documents_for_guidance / _fallback_guidance)
// and document-content scoring. Phrases are matched as substrings of the
// lowercased query or document content, the same test the original performs
// with Python's `in`.

// toolCues score the tool tally {list, detail, complex} from query content.
var toolCues = map[string][]cue{
	"list": {
		{phrases: []string{"how many", "count", "list all", "show all", "inventory"}, weight: 3},
		{phrases: []string{"olts in", "devices in", "ftth olts"}, requireAlso: []string{"region", "hobo", "gent", "asse"}, weight: 4},
	},
	"detail": {
		{phrases: []string{"specific", "details for", "configuration of"}, weight: 3},
	},
	"complex": {
		{phrases: []string{"impact", "depends on", "path from"}, weight: 3},
		{phrases: []string{"analysis", "relationships"}, weight: 2},
	},
}

// analysisCues score the analysis-type tally {device_listing, device_details,
// complex_analysis} from the same query content, at the same weights — the
// original maintains these as two separate but identically-scored tallies.
var analysisCues = map[string][]cue{
	"device_listing":   toolCues["list"],
	"device_details":   toolCues["detail"],
	"complex_analysis": toolCues["complex"],
}

// documentCues score the smaller per-document contribution: each matching
// cue adds 1, against 2 to 4 for the query cues above.
var documentCues = map[string][]cue{
	"device_listing":   {{phrases: []string{"inventory", "count", "list all", "how many"}, weight: 1}},
	"device_details":   {{phrases: []string{"specific device", "configuration", "details for"}, weight: 1}},
	"complex_analysis": {{phrases: []string{"impact", "analysis", "cross-reference", "relationships"}, weight: 1}},
}

// candidateTools are the tool names whose mentions in retrieved document
// title/content contribute to the tool tally, mirroring tool_scores in the
// original.
var candidateTools = []string{"list_network_devices", "get_device_details", "query_network_resources"}

type cue struct {
	phrases     []string
	requireAlso []string // when non-empty, at least one of these must also appear
	weight      int
}

func (c cue) matches(text string) bool {
	if !containsAny(text, c.phrases) {
		return false
	}
	if len(c.requireAlso) == 0 {
		return true
	}
	return containsAny(text, c.requireAlso)
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func scoreCues(text string, table map[string][]cue) map[string]int {
	scores := make(map[string]int, len(table))
	for key, cues := range table {
		for _, c := range cues {
			if c.matches(text) {
				scores[key] += c.weight
			}
		}
	}
	return scores
}
