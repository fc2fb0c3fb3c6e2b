package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeClusteringFile(t *testing.T, labels []int) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"labels": labels})
	if err != nil {
		t.Fatalf("marshal clustering: %v", err)
	}
	path := filepath.Join(t.TempDir(), "clustering.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write clustering: %v", err)
	}
	return path
}

func TestClustering_Summaries(t *testing.T) {
	c, err := LoadClustering(writeClusteringFile(t, []int{0, 1, 1, 4, 4, 4, 2}))
	if err != nil {
		t.Fatalf("load clustering: %v", err)
	}

	summaries := c.Summaries()
	if len(summaries) != 5 {
		t.Fatalf("expected 5 clusters, got %d", len(summaries))
	}

	expectedCounts := []int{1, 2, 1, 0, 3}
	for i, s := range summaries {
		if s.Cluster != i {
			t.Errorf("expected cluster index %d, got %d", i, s.Cluster)
		}
		if s.Count != expectedCounts[i] {
			t.Errorf("cluster %d: expected count %d, got %d", i, expectedCounts[i], s.Count)
		}
		if s.Description == "" {
			t.Errorf("cluster %d: empty description", i)
		}
	}
}

func TestClustering_DescribedEvenWhenEmpty(t *testing.T) {
	c, err := LoadClustering(writeClusteringFile(t, []int{}))
	if err != nil {
		t.Fatalf("load clustering: %v", err)
	}

	for _, s := range c.Summaries() {
		if s.Count != 0 {
			t.Errorf("cluster %d: expected zero count, got %d", s.Cluster, s.Count)
		}
	}
}

func TestLoadClustering_UnknownLabel(t *testing.T) {
	if _, err := LoadClustering(writeClusteringFile(t, []int{0, 9})); err == nil {
		t.Fatal("expected error for label without description")
	}
}
