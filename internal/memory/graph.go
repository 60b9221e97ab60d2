package memory

import (
	"strings"
	"time"

	"github.com/memvault/memvault/internal/models"
)

// graphLinkThreshold is the number of significant words two nodes must
// share to be linked.
const graphLinkThreshold = 3

// minGraphWordLen filters short function words out of the overlap
// comparison.
const minGraphWordLen = 4

// GraphNode is one memory in the visualization graph.
type GraphNode struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // "episodic" or "fact"
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// GraphEdge links two nodes whose content overlaps.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"` // shared significant words
}

// Graph is the cross-linked view of a user's episodic and long-term
// memory.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// BuildGraph links memories that share at least three significant
// words. Pure; quadratic in the node count, which stays small because
// callers pass bounded recent memories.
func BuildGraph(episodic []models.EpisodicMemory, facts []models.LongTermFact) Graph {
	graph := Graph{Nodes: []GraphNode{}, Edges: []GraphEdge{}}

	var wordSets []map[string]bool
	for _, mem := range episodic {
		graph.Nodes = append(graph.Nodes, GraphNode{
			ID:        mem.ID,
			Kind:      "episodic",
			Label:     mem.Summary,
			CreatedAt: mem.CreatedAt,
		})
		wordSets = append(wordSets, significantWords(mem.Summary))
	}
	for _, fact := range facts {
		graph.Nodes = append(graph.Nodes, GraphNode{
			ID:        fact.ID,
			Kind:      "fact",
			Label:     fact.Content,
			CreatedAt: fact.CreatedAt,
		})
		wordSets = append(wordSets, significantWords(fact.Content))
	}

	for i := 0; i < len(graph.Nodes); i++ {
		for j := i + 1; j < len(graph.Nodes); j++ {
			shared := overlap(wordSets[i], wordSets[j])
			if shared >= graphLinkThreshold {
				graph.Edges = append(graph.Edges, GraphEdge{
					Source: graph.Nodes[i].ID,
					Target: graph.Nodes[j].ID,
					Weight: shared,
				})
			}
		}
	}

	return graph
}

func significantWords(text string) map[string]bool {
	words := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,:;!?\"'()-")
		if len(word) >= minGraphWordLen {
			words[word] = true
		}
	}
	return words
}

func overlap(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for word := range a {
		if b[word] {
			n++
		}
	}
	return n
}
