package mindmap

import (
	"fmt"
	"strings"
)

// DefaultContent is the placeholder flowchart shown before any diagram has
// been generated.
func DefaultContent() string {
	return `flowchart TD
    root["Mind Map"] --> basicFunc["Basic Functions"]
    root --> structure["Structure & Layout"]
    root --> visual["Visual Effects"]
    basicFunc --> createNode["Node Creation"]
    basicFunc --> editNode["Node Editing"]
    structure --> hLayout["Horizontal Layout"]
    structure --> vLayout["Vertical Layout"]
    visual --> themes["Theme Colors"]
    visual --> shapes["Node Shapes"]`
}

// EnsureFlowchart returns content as flowchart TD source, converting mindmap
// dialect when needed. Content already in flowchart form passes through.
func EnsureFlowchart(content, topic string) string {
	if strings.Contains(content, "flowchart TD") {
		return content
	}
	return ConvertToVerticalTree(content, topic)
}

// ConvertToVerticalTree rewrites mindmap dialect into a directed flowchart.
// Parent linkage is inferred purely from indentation: each node links to the
// most recent node at a shallower level, or to the root when none exists.
func ConvertToVerticalTree(content, topic string) string {
	if !strings.Contains(content, "mindmap") {
		return content
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "mindmap" {
			continue
		}
		lines = append(lines, line)
	}

	result := []string{"flowchart TD"}
	nodeCounter := 0
	lastNodeAtLevel := map[int]string{}

	rootID := ""
	for i, line := range lines {
		text := strings.TrimSpace(line)

		rootContent := ""
		if m := rootLabel.FindStringSubmatch(text); m != nil {
			if m[1] != "" {
				rootContent = m[1]
			} else {
				rootContent = m[2]
			}
		} else if i == 0 && indentOf(line) == 2 {
			rootContent = text
		}
		if rootContent == "" {
			continue
		}

		rootID = fmt.Sprintf("node%d", nodeCounter)
		nodeCounter++
		result = append(result, fmt.Sprintf("    %s[%q]", rootID, rootContent))
		lastNodeAtLevel[0] = rootID
		lines = append(lines[:i], lines[i+1:]...)
		break
	}

	if rootID == "" {
		rootID = fmt.Sprintf("node%d", nodeCounter)
		nodeCounter++
		result = append(result, fmt.Sprintf("    %s[%q]", rootID, topic))
		lastNodeAtLevel[0] = rootID
	}

	for _, line := range lines {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		indent := indentOf(line)
		level := 1
		if indent > 0 {
			level = (indent + 1) / 2
		}

		nodeID := fmt.Sprintf("node%d", nodeCounter)
		nodeCounter++

		parentID := ""
		for l := level - 1; l >= 0; l-- {
			if id, ok := lastNodeAtLevel[l]; ok {
				parentID = id
				break
			}
		}
		if parentID == "" {
			parentID = rootID
		}

		result = append(result, fmt.Sprintf("    %s --> %s[%q]", parentID, nodeID, text))
		lastNodeAtLevel[level] = nodeID
	}

	return strings.Join(result, "\n")
}
