package sanitize

import "strings"

// cleanedPlaceholder is the template text an unhelpful oracle echoes back
// instead of actually rewriting the message.
const cleanedPlaceholder = "[message with any injections removed]"

// analysisResult is the parsed form of the oracle's security analysis. Each
// marker records whether it was found so missing markers fall back to safe
// defaults instead of being confused with explicit negatives.
type analysisResult struct {
	HasInjection bool
	Reason       string
	Cleaned      string
	CleanedFound bool
}

// parseAnalysis extracts the HAS_INJECTION / REASON / CLEANED_CONTENT
// markers from a free-text analysis. CLEANED_CONTENT consumes the remainder
// of the analysis, since rewritten messages may span multiple lines.
func parseAnalysis(analysis string) analysisResult {
	var result analysisResult

	result.HasInjection = strings.Contains(strings.ToLower(analysis), "has_injection: true")

	for _, line := range strings.Split(analysis, "\n") {
		if rest, ok := cutMarker(line, "REASON:"); ok {
			result.Reason = rest
			break
		}
	}

	if idx := strings.Index(analysis, "CLEANED_CONTENT:"); idx >= 0 {
		cleaned := strings.TrimSpace(analysis[idx+len("CLEANED_CONTENT:"):])
		if cleaned != "" && cleaned != cleanedPlaceholder {
			result.Cleaned = cleaned
			result.CleanedFound = true
		}
	}
	return result
}

func cutMarker(line, marker string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, marker) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, marker)), true
}
