// Package wordcloud accumulates free text per user and renders it as a
// word-frequency image uploaded to object storage.
package wordcloud

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/staysense/predictor/internal/blob"
	"github.com/staysense/predictor/internal/metrics"
	"github.com/staysense/predictor/internal/model"
	"github.com/staysense/predictor/internal/store"
	"github.com/staysense/predictor/pkg/models"
)

// ErrNoText is returned when a request contributes no usable words.
var ErrNoText = errors.New("no text provided")

var reUnsafeObjectChar = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Service appends word-cloud contributions and regenerates images.
type Service struct {
	store      store.Store
	bucket     blob.Bucket
	seed       *model.WordFrequencies
	maxTextLen int
	renderer   *renderer
}

// NewService creates a word-cloud service. The render font is parsed once here.
func NewService(st store.Store, bucket blob.Bucket, seed *model.WordFrequencies, maxTextLen int) (*Service, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}
	return &Service{
		store:      st,
		bucket:     bucket,
		seed:       seed,
		maxTextLen: maxTextLen,
		renderer:   r,
	}, nil
}

// GenerateFromModel renders the word cloud of the pre-trained frequency
// artifact, without touching the cumulative text store.
func (s *Service) GenerateFromModel(ctx context.Context) (string, error) {
	data, err := s.renderer.Render(s.seed.Words())
	if err != nil {
		return "", fmt.Errorf("render model wordcloud: %w", err)
	}

	url, err := s.bucket.Upload(ctx, "wordclouds/wordcloud-model.png", "image/png", data)
	if err != nil {
		return "", err
	}

	metrics.WordcloudRendersTotal.WithLabelValues("model").Inc()
	return url, nil
}

// Append adds text to the user's cumulative document and regenerates the
// image from the whole accumulated text. The store append is atomic, so
// concurrent contributions for one user both land.
func (s *Service) Append(ctx context.Context, userID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}

	if err := s.store.AppendWordcloudText(ctx, userID, text, s.maxTextLen); err != nil {
		return "", err
	}

	full, err := s.store.GetWordcloudText(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			full = text
		} else {
			return "", err
		}
	}

	freqs := Frequencies(full)
	if len(freqs) == 0 {
		return "", ErrNoText
	}

	data, err := s.renderer.Render(freqs)
	if err != nil {
		return "", fmt.Errorf("render wordcloud: %w", err)
	}

	url, err := s.bucket.Upload(ctx, objectName(userID), "image/png", data)
	if err != nil {
		return "", err
	}

	metrics.WordcloudRendersTotal.WithLabelValues("text").Inc()
	return url, nil
}

func objectName(userID string) string {
	name := "global"
	if userID != models.GlobalWordcloudUser {
		name = reUnsafeObjectChar.ReplaceAllString(userID, "-")
	}
	return fmt.Sprintf("wordclouds/wordcloud-%s.png", name)
}
