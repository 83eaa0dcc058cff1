package mindmap

import (
	"fmt"
	"strings"
)

const (
	historyFilterThreshold = 15
	recentHistoryCount     = 8
	relatedHistoryCount    = 7
	codePreviewLimit       = 1000
)

// FilterHistoryTopics trims an oversized history list down to the most recent
// entries plus any older ones sharing significant tokens with the topic.
// Lists at or under the threshold pass through untouched.
func FilterHistoryTopics(topics []string, topic string) []string {
	if len(topics) <= historyFilterThreshold {
		return topics
	}

	recent := topics[len(topics)-recentHistoryCount:]

	topicLower := strings.ToLower(topic)
	related := make([]string, 0, relatedHistoryCount)
	for _, point := range topics {
		if len(related) >= relatedHistoryCount {
			break
		}
		if tokensOverlap(topicLower, strings.ToLower(point)) {
			related = append(related, point)
		}
	}

	seen := make(map[string]bool, len(recent)+len(related))
	selected := make([]string, 0, len(recent)+len(related))
	for _, point := range append(append([]string{}, recent...), related...) {
		if !seen[point] {
			seen[point] = true
			selected = append(selected, point)
		}
	}
	return selected
}

// tokensOverlap reports whether either string contains a token longer than
// three characters taken from the other.
func tokensOverlap(a, b string) bool {
	for _, word := range strings.Fields(a) {
		if len(word) > 3 && strings.Contains(b, word) {
			return true
		}
	}
	for _, word := range strings.Fields(b) {
		if len(word) > 3 && strings.Contains(a, word) {
			return true
		}
	}
	return false
}

// GenerationPrompt composes the instruction for producing a fresh diagram.
// The topic is embedded verbatim so the model can echo it as the root label.
func GenerationPrompt(topic, background string, historyTopics []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Please create a Mermaid mind map about this main point.
Main point: %q (IMPORTANT: Use this exact text as the root node title)`, topic)

	if background = strings.TrimSpace(background); background != "" {
		fmt.Fprintf(&b, "\n\nIMPORTANT CONTEXT: %q\n", background)
		b.WriteString("Please use the above context information as the domain or subject area to better understand and organize the mind map content.")
	}

	if selected := FilterHistoryTopics(historyTopics, topic); len(selected) > 0 {
		quoted := make([]string, 0, len(selected))
		for _, point := range selected {
			quoted = append(quoted, fmt.Sprintf("%q", point))
		}
		fmt.Fprintf(&b, "\n\nUser's historical key topics: %s\n", strings.Join(quoted, ", "))
		b.WriteString("Consider these historical topics when organizing the mind map structure and try to establish connections where relevant.")
	}

	fmt.Fprintf(&b, `

The generated mind map should have these characteristics:
1. Use Mermaid syntax
2. Layout direction: Vertical (TD)
3. First line must be "mindmap"
4. CRITICAL: Second line must be the root node using the exact main point provided: "  root((%s))"
5. Extract 3-5 key concepts related to the main point, keep it concise
6. Each concept should have at most 1 child node for detail
7. Remove special characters like parentheses () and brackets []
8. Keep node text under 30 characters, be concise and clear
9. Return only the mind map code, without any explanation or Markdown markup

Output example:
mindmap
  root((%s))
    Key Concept 1
      Detail 1
    Key Concept 2
    Key Concept 3`, topic, topic)

	return b.String()
}

// ExpansionContext carries everything the expansion prompt embeds.
type ExpansionContext struct {
	NodeText   string
	Background string
	MainPoints []string
	Hierarchy  []string
	Code       string
}

// ExpansionPrompt composes the instruction for generating child node labels,
// asking for a strict JSON array of {"text": ...} objects.
func ExpansionPrompt(ec ExpansionContext) string {
	var parts []string

	if bg := strings.TrimSpace(ec.Background); bg != "" {
		parts = append(parts, "Background information:\n"+bg)
	}

	if len(ec.MainPoints) > 0 {
		numbered := make([]string, 0, len(ec.MainPoints))
		for i, point := range ec.MainPoints {
			numbered = append(numbered, fmt.Sprintf("%d. %s", i+1, point))
		}
		parts = append(parts, "Main points:\n"+strings.Join(numbered, "\n"))
	}

	if len(ec.Hierarchy) > 0 {
		parts = append(parts, "Current node hierarchy path: "+strings.Join(ec.Hierarchy, " → "))
	}

	if code := strings.TrimSpace(ec.Code); code != "" {
		if len(code) > codePreviewLimit {
			code = code[:codePreviewLimit] + "..."
		}
		parts = append(parts, "Current mind map structure:\n"+code)
	}

	contextSection := ""
	if len(parts) > 0 {
		contextSection = "Here is the relevant background and context:\n\n" + strings.Join(parts, "\n\n")
	}

	return fmt.Sprintf(`Please generate 3-5 related child nodes for the mind map node %q.
%s

Based on the node content and context, return a list of child nodes directly related to %q.
Response format requirements:
1. Return ONLY a JSON array, with no extra explanation
2. Each object contains only a "text" field with the node title
3. Node titles should be concise and clear, at most 30 characters
4. The JSON must be syntactically valid
5. Do not use Markdown formatting

Expected response format example:
[
  {"text": "Child node A"},
  {"text": "Child node B"},
  {"text": "Child node C"},
  {"text": "Child node D"}
]`, ec.NodeText, contextSection, ec.NodeText)
}
