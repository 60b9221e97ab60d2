package memory

import (
	"testing"

	"github.com/memvault/memvault/internal/models"
)

func TestBuildGraph(t *testing.T) {
	t.Run("empty input yields empty non-nil graph", func(t *testing.T) {
		graph := BuildGraph(nil, nil)
		if graph.Nodes == nil || graph.Edges == nil {
			t.Fatal("graph slices must be non-nil")
		}
		if len(graph.Nodes) != 0 || len(graph.Edges) != 0 {
			t.Errorf("expected empty graph, got %+v", graph)
		}
	})

	t.Run("links nodes sharing three significant words", func(t *testing.T) {
		episodic := []models.EpisodicMemory{
			{ID: "e1", Summary: "user debugging database connection pooling in production"},
			{ID: "e2", Summary: "discussed database connection pooling strategies again"},
		}
		graph := BuildGraph(episodic, nil)

		if len(graph.Nodes) != 2 {
			t.Fatalf("expected 2 nodes, got %d", len(graph.Nodes))
		}
		if len(graph.Edges) != 1 {
			t.Fatalf("expected 1 edge, got %d", len(graph.Edges))
		}
		edge := graph.Edges[0]
		if edge.Source != "e1" || edge.Target != "e2" {
			t.Errorf("edge = %+v", edge)
		}
		if edge.Weight < 3 {
			t.Errorf("weight = %d, want >= 3", edge.Weight)
		}
	})

	t.Run("unrelated nodes stay unlinked", func(t *testing.T) {
		episodic := []models.EpisodicMemory{
			{ID: "e1", Summary: "talked about kubernetes deployment rollouts"},
			{ID: "e2", Summary: "favorite recipe involves fresh basil pasta"},
		}
		graph := BuildGraph(episodic, nil)
		if len(graph.Edges) != 0 {
			t.Errorf("expected no edges, got %+v", graph.Edges)
		}
	})

	t.Run("links across episodic and fact nodes", func(t *testing.T) {
		episodic := []models.EpisodicMemory{
			{ID: "e1", Summary: "user writes golang microservices using postgres databases"},
		}
		facts := []models.LongTermFact{
			{ID: "f1", Content: "stack: golang microservices with postgres databases"},
		}
		graph := BuildGraph(episodic, facts)

		if len(graph.Nodes) != 2 {
			t.Fatalf("expected 2 nodes, got %d", len(graph.Nodes))
		}
		kinds := map[string]string{}
		for _, node := range graph.Nodes {
			kinds[node.ID] = node.Kind
		}
		if kinds["e1"] != "episodic" || kinds["f1"] != "fact" {
			t.Errorf("node kinds = %v", kinds)
		}
		if len(graph.Edges) != 1 {
			t.Fatalf("expected 1 cross-tier edge, got %d", len(graph.Edges))
		}
	})

	t.Run("short words do not count toward overlap", func(t *testing.T) {
		episodic := []models.EpisodicMemory{
			{ID: "e1", Summary: "it is to be or not"},
			{ID: "e2", Summary: "it is to be as was"},
		}
		graph := BuildGraph(episodic, nil)
		if len(graph.Edges) != 0 {
			t.Errorf("short-word overlap produced edges: %+v", graph.Edges)
		}
	})
}
