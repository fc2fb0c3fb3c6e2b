package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// WordFrequencies is the word-frequency seed artifact, used to render the
// "model" word cloud without consulting the cumulative text store.
type WordFrequencies struct {
	words map[string]float64
}

type wordFreqFile struct {
	Words map[string]float64 `json:"words"`
}

// LoadWordFrequencies reads a word-frequency artifact.
func LoadWordFrequencies(path string) (*WordFrequencies, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word-frequency artifact: %w", err)
	}

	var f wordFreqFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode word-frequency artifact %s: %w", path, err)
	}
	if len(f.Words) == 0 {
		return nil, fmt.Errorf("word-frequency artifact %s has no words", path)
	}

	words := make(map[string]float64, len(f.Words))
	for w, freq := range f.Words {
		if freq <= 0 {
			return nil, fmt.Errorf("word-frequency artifact %s: %q has non-positive frequency", path, w)
		}
		words[w] = freq
	}
	return &WordFrequencies{words: words}, nil
}

// Words returns a copy of the word → relative frequency table.
func (w *WordFrequencies) Words() map[string]float64 {
	out := make(map[string]float64, len(w.words))
	for k, v := range w.words {
		out[k] = v
	}
	return out
}
