package model

import (
	"fmt"
	"path/filepath"
)

// Artifact filenames inside MODEL_DIR.
const (
	bundleFilename     = "bundle.json"
	clusteringFilename = "clustering.json"
	wordFreqFilename   = "wordfreq.json"
)

// Artifacts bundles everything loaded from MODEL_DIR at startup.
type Artifacts struct {
	Bundle     *Bundle
	Clustering *Clustering
	WordFreq   *WordFrequencies
}

// LoadArtifacts loads all three artifacts from dir, failing fast on the
// first unreadable or invalid one.
func LoadArtifacts(dir string) (*Artifacts, error) {
	bundle, err := LoadBundle(filepath.Join(dir, bundleFilename))
	if err != nil {
		return nil, fmt.Errorf("load classifier bundle: %w", err)
	}

	clustering, err := LoadClustering(filepath.Join(dir, clusteringFilename))
	if err != nil {
		return nil, fmt.Errorf("load clustering result: %w", err)
	}

	wordFreq, err := LoadWordFrequencies(filepath.Join(dir, wordFreqFilename))
	if err != nil {
		return nil, fmt.Errorf("load word frequencies: %w", err)
	}

	return &Artifacts{Bundle: bundle, Clustering: clustering, WordFreq: wordFreq}, nil
}
