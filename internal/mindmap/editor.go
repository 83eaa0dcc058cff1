// Package mindmap implements the diagram text protocol: prompt assembly,
// generation, validation, incremental node expansion, and the flowchart
// conversion used by layout-oriented renderers.
package mindmap

import (
	"regexp"
	"strings"
)

var (
	labelCleaner  = regexp.MustCompile(`[()\[\]]`)
	spaceCollapse = regexp.MustCompile(`\s+`)
	nodeDecorator = strings.NewReplacer("((", "", "))", "", `"`, "", "'", "")
)

// CleanText strips parentheses and brackets from a node label and collapses
// whitespace. Labels containing these characters break the diagram syntax.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	cleaned := labelCleaner.ReplaceAllString(text, "")
	cleaned = spaceCollapse.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Node is one non-root diagram entry derived from the code by line scan.
type Node struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// ParsedMap is the structured view of a diagram document.
type ParsedMap struct {
	Root  string `json:"root"`
	Nodes []Node `json:"nodes"`
}

var rootLabel = regexp.MustCompile(`root\(\((.*?)\)\)|root\[(.*?)\]`)

// ParseCode scans diagram source into a root label plus a flat node list with
// indentation-derived levels.
func ParseCode(code string) ParsedMap {
	result := ParsedMap{}
	if code == "" {
		return result
	}

	lines := strings.Split(code, "\n")
	for _, line := range lines {
		if strings.Contains(line, "root((") || strings.Contains(line, "root[") {
			if m := rootLabel.FindStringSubmatch(line); m != nil {
				if m[1] != "" {
					result.Root = m[1]
				} else {
					result.Root = m[2]
				}
			}
			break
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.Contains(line, "mindmap") || strings.Contains(line, "root") {
			continue
		}
		indent := indentOf(line)
		result.Nodes = append(result.Nodes, Node{Level: indent / 2, Text: trimmed})
	}

	return result
}

// Splice replaces the subtree under the first node whose stripped text equals
// or contains target with one line per child, indented two spaces deeper than
// the target. Returns the updated code and whether an edit happened; when the
// target is not found the input comes back unchanged.
func Splice(code, target string, children []string) (string, bool) {
	if code == "" || target == "" || len(children) == 0 {
		return code, false
	}

	lines := strings.Split(code, "\n")

	targetIndex := -1
	targetIndent := 0
	for i, line := range lines {
		stripped := nodeDecorator.Replace(strings.TrimSpace(line))
		if stripped == target || strings.Contains(stripped, target) {
			targetIndex = i
			targetIndent = indentOf(line)
			break
		}
	}
	if targetIndex == -1 {
		return code, false
	}

	// Collect the existing subtree: non-blank lines strictly deeper than the
	// target, up to the first line at or above its indent.
	firstChild, lastChild := -1, -1
	for i := targetIndex + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if indentOf(lines[i]) <= targetIndent {
			break
		}
		if firstChild == -1 {
			firstChild = i
		}
		lastChild = i
	}

	childIndent := strings.Repeat(" ", targetIndent+2)
	childLines := make([]string, 0, len(children))
	for _, text := range children {
		childLines = append(childLines, childIndent+text)
	}

	insertAt := targetIndex + 1
	if firstChild != -1 {
		lines = append(lines[:firstChild], lines[lastChild+1:]...)
		insertAt = firstChild
	}

	updated := make([]string, 0, len(lines)+len(childLines))
	updated = append(updated, lines[:insertAt]...)
	updated = append(updated, childLines...)
	updated = append(updated, lines[insertAt:]...)

	return strings.Join(updated, "\n"), true
}

func indentOf(line string) int {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return i
		}
	}
	return len(line)
}
