package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// clusterDescriptions is the static human-readable table for the fitted
// clustering artifact's output indices.
var clusterDescriptions = map[int]string{
	0: "don't know",
	1: "competitor made better offer, better devices",
	2: "limited range, service dissatisfaction",
	3: "attitude support person",
	4: "offered data, higher speed, extra data charges",
}

// Clustering is a fitted clustering result: a fixed assignment of each
// training record to one of a small number of labeled clusters.
type Clustering struct {
	labels []int
}

type clusteringFile struct {
	Labels []int `json:"labels"`
}

// ClusterSummary is one row of the cluster breakdown served by the API.
type ClusterSummary struct {
	Cluster     int    `json:"cluster"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// LoadClustering reads a clustering artifact.
func LoadClustering(path string) (*Clustering, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clustering artifact: %w", err)
	}

	var f clusteringFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode clustering artifact %s: %w", path, err)
	}

	for _, l := range f.Labels {
		if _, ok := clusterDescriptions[l]; !ok {
			return nil, fmt.Errorf("clustering artifact %s: label %d has no description", path, l)
		}
	}

	return &Clustering{labels: append([]int(nil), f.Labels...)}, nil
}

// Summaries returns per-cluster record counts for every described cluster
// index, in index order. Clusters with no assigned records report zero.
func (c *Clustering) Summaries() []ClusterSummary {
	counts := make(map[int]int)
	for _, l := range c.labels {
		counts[l]++
	}

	out := make([]ClusterSummary, 0, len(clusterDescriptions))
	for i := 0; i < len(clusterDescriptions); i++ {
		out = append(out, ClusterSummary{
			Cluster:     i,
			Description: clusterDescriptions[i],
			Count:       counts[i],
		})
	}
	return out
}
