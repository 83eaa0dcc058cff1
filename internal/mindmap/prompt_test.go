package mindmap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterHistoryTopicsPassthroughWhenSmall(t *testing.T) {
	topics := []string{"a", "b", "c"}
	assert.Equal(t, topics, FilterHistoryTopics(topics, "anything"))
}

func TestFilterHistoryTopicsCapsAndKeepsRecent(t *testing.T) {
	topics := make([]string, 20)
	for i := range topics {
		topics[i] = fmt.Sprintf("unrelated subject %02d", i)
	}

	selected := FilterHistoryTopics(topics, "zzz")
	assert.LessOrEqual(t, len(selected), 15)

	// the 8 most recent are always present
	for _, recent := range topics[12:] {
		assert.Contains(t, selected, recent)
	}
}

func TestFilterHistoryTopicsIncludesRelated(t *testing.T) {
	topics := make([]string, 20)
	for i := range topics {
		topics[i] = fmt.Sprintf("filler entry %02d", i)
	}
	topics[0] = "kubernetes networking deep dive"

	selected := FilterHistoryTopics(topics, "Kubernetes scheduling")
	assert.Contains(t, selected, "kubernetes networking deep dive")
}

func TestFilterHistoryTopicsDeduplicates(t *testing.T) {
	topics := make([]string, 20)
	for i := range topics {
		topics[i] = "repeated subject matter"
	}

	selected := FilterHistoryTopics(topics, "repeated subject")
	assert.Len(t, selected, 1)
}

func TestFilterHistoryTopicsShortTokensIgnored(t *testing.T) {
	topics := make([]string, 16)
	for i := range topics {
		topics[i] = fmt.Sprintf("xx yy %02d", i)
	}

	// tokens of length <= 3 never count as overlap
	selected := FilterHistoryTopics(topics, "xx yy")
	assert.Len(t, selected, recentHistoryCount)
}

func TestGenerationPromptEmbedsTopicVerbatim(t *testing.T) {
	prompt := GenerationPrompt("Distributed Consensus", "", nil)
	assert.Contains(t, prompt, `"Distributed Consensus"`)
	assert.Contains(t, prompt, "root((Distributed Consensus))")
	assert.NotContains(t, prompt, "IMPORTANT CONTEXT")
	assert.NotContains(t, prompt, "historical key topics")
}

func TestGenerationPromptIncludesBackgroundAndHistory(t *testing.T) {
	prompt := GenerationPrompt("Raft", "CS course on consensus", []string{"Paxos", "Leader election"})
	assert.Contains(t, prompt, `IMPORTANT CONTEXT: "CS course on consensus"`)
	assert.Contains(t, prompt, `"Paxos", "Leader election"`)
}

func TestExpansionPromptSections(t *testing.T) {
	prompt := ExpansionPrompt(ExpansionContext{
		NodeText:   "Log replication",
		Background: "consensus lecture",
		MainPoints: []string{"Raft", "Paxos"},
		Hierarchy:  []string{"Consensus", "Raft", "Log replication"},
		Code:       "mindmap\n  root((Consensus))",
	})

	assert.Contains(t, prompt, `"Log replication"`)
	assert.Contains(t, prompt, "Background information:\nconsensus lecture")
	assert.Contains(t, prompt, "1. Raft\n2. Paxos")
	assert.Contains(t, prompt, "Consensus → Raft → Log replication")
	assert.Contains(t, prompt, "mindmap\n  root((Consensus))")
	assert.Contains(t, prompt, `ONLY a JSON array`)
}

func TestExpansionPromptTruncatesCodePreview(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}

	prompt := ExpansionPrompt(ExpansionContext{NodeText: "N", Code: string(long)})
	require.Contains(t, prompt, "...")
	assert.NotContains(t, prompt, string(long))
}
