package reasonchain

import (
	"regexp"
	"strings"
)

// reasoningMarkers are tried in order; each captures up to the next blank line.
var reasoningMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?is)Let's think about this step by step:(.*?)(?:\n\n|$)`),
	regexp.MustCompile(`(?is)Here's my reasoning:(.*?)(?:\n\n|$)`),
	regexp.MustCompile(`(?is)Reasoning:(.*?)(?:\n\n|$)`),
	regexp.MustCompile(`(?is)Let me break this down:(.*?)(?:\n\n|$)`),
}

var causalConnectives = []string{"because", "therefore", "thus", "since", "as a result"}

// ExtractReasoning returns the first explicit reasoning section in text. Without an
// explicit marker it falls back to the first paragraph using a causal connective.
func ExtractReasoning(text string) (string, bool) {
	for _, re := range reasoningMarkers {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		lower := strings.ToLower(para)
		for _, word := range causalConnectives {
			if strings.Contains(lower, word) {
				return strings.TrimSpace(para), true
			}
		}
	}

	return "", false
}
