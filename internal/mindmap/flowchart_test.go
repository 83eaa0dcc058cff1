package mindmap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToVerticalTree(t *testing.T) {
	code := strings.Join([]string{
		"mindmap",
		"  root((Topic))",
		"    A",
		"      A1",
		"    B",
	}, "\n")

	out := ConvertToVerticalTree(code, "Topic")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)

	assert.Equal(t, "flowchart TD", lines[0])
	assert.Equal(t, `    node0["Topic"]`, lines[1])
	assert.Equal(t, `    node0 --> node1["A"]`, lines[2])
	assert.Equal(t, `    node1 --> node2["A1"]`, lines[3])
	assert.Equal(t, `    node0 --> node3["B"]`, lines[4])
}

func TestConvertToVerticalTreeSynthesizesRoot(t *testing.T) {
	code := "mindmap\n    Orphan"

	out := ConvertToVerticalTree(code, "Fallback Title")
	assert.Contains(t, out, `node0["Fallback Title"]`)
	assert.Contains(t, out, `node0 --> node1["Orphan"]`)
}

func TestConvertToVerticalTreeIgnoresNonMindmap(t *testing.T) {
	code := "graph LR\n  a --> b"
	assert.Equal(t, code, ConvertToVerticalTree(code, "T"))
}

func TestEnsureFlowchartPassthrough(t *testing.T) {
	code := "flowchart TD\n    a --> b"
	assert.Equal(t, code, EnsureFlowchart(code, "T"))
}

func TestEnsureFlowchartConvertsMindmap(t *testing.T) {
	out := EnsureFlowchart("mindmap\n  root((T))\n    A", "T")
	assert.True(t, strings.HasPrefix(out, "flowchart TD"))
}

func TestDefaultContentIsFlowchart(t *testing.T) {
	assert.True(t, strings.HasPrefix(DefaultContent(), "flowchart TD"))
}
