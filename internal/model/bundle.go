// Package model loads the pre-trained artifacts the service scores with:
// the classifier bundle (weights + per-column category encoders + training
// column order), the fitted clustering result, and the word-frequency seed.
// Artifacts are loaded once at startup and are read-only afterwards, so they
// are safe to share across concurrent requests.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Bundle is the loaded classifier plus its paired category encoders and
// expected column order.
type Bundle struct {
	columns  []string
	encoders map[string]*CategoryEncoder
	weights  []float64
	bias     float64
}

type bundleFile struct {
	Columns  []string `json:"columns"`
	Encoders map[string]struct {
		Labels []string `json:"labels"`
	} `json:"encoders"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// LoadBundle reads and validates a classifier bundle artifact.
func LoadBundle(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle artifact: %w", err)
	}

	var f bundleFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode bundle artifact %s: %w", path, err)
	}

	if len(f.Columns) == 0 {
		return nil, fmt.Errorf("bundle artifact %s declares no columns", path)
	}
	if len(f.Weights) != len(f.Columns) {
		return nil, fmt.Errorf("bundle artifact %s: %d weights for %d columns",
			path, len(f.Weights), len(f.Columns))
	}

	known := make(map[string]bool, len(f.Columns))
	for _, c := range f.Columns {
		known[c] = true
	}

	encoders := make(map[string]*CategoryEncoder, len(f.Encoders))
	for col, enc := range f.Encoders {
		if !known[col] {
			return nil, fmt.Errorf("bundle artifact %s: encoder for undeclared column %q", path, col)
		}
		if len(enc.Labels) == 0 {
			return nil, fmt.Errorf("bundle artifact %s: encoder for %q has no labels", path, col)
		}
		encoders[col] = NewCategoryEncoder(enc.Labels)
	}

	return &Bundle{
		columns:  append([]string(nil), f.Columns...),
		encoders: encoders,
		weights:  append([]float64(nil), f.Weights...),
		bias:     f.Bias,
	}, nil
}

// Columns returns a copy of the expected column names in training order.
func (b *Bundle) Columns() []string {
	return append([]string(nil), b.columns...)
}

// Encoder returns the category encoder for a column, if the column is
// categorical.
func (b *Bundle) Encoder(column string) (*CategoryEncoder, bool) {
	enc, ok := b.encoders[column]
	return enc, ok
}

// ValidValues maps every categorical column to its accepted labels.
func (b *Bundle) ValidValues() map[string][]string {
	out := make(map[string][]string, len(b.encoders))
	for col, enc := range b.encoders {
		out[col] = enc.Labels()
	}
	return out
}

// EncodeRow turns a raw field map into the numeric vector the classifier
// expects. The vector order is exactly the bundle's column order; the
// classifier was trained on that order and nothing downstream re-checks it.
//
// Per column: absent value fails with ErrMissingField; categorical columns
// substitute the encoder's integer code or fail with ErrUnknownCategory;
// remaining columns accept numbers, yes/no booleans, and numeric strings,
// failing with ErrInvalidValue on anything unparseable.
func (b *Bundle) EncodeRow(fields map[string]any) ([]float64, error) {
	vec := make([]float64, len(b.columns))
	for i, col := range b.columns {
		raw, ok := fields[col]
		if !ok || raw == nil {
			return nil, missingField(col)
		}

		if enc, categorical := b.encoders[col]; categorical {
			label := stringify(raw)
			code, known := enc.Encode(label)
			if !known {
				return nil, unknownCategory(col, label, enc.Labels())
			}
			vec[i] = float64(code)
			continue
		}

		v, err := coerceNumeric(raw)
		if err != nil {
			return nil, invalidValue(col, stringify(raw))
		}
		vec[i] = v
	}
	return vec, nil
}

// PredictProba is the bundle's opaque scoring call: churn probability for an
// encoded input vector.
func (b *Bundle) PredictProba(vec []float64) (float64, error) {
	if len(vec) != len(b.weights) {
		return 0, fmt.Errorf("vector length %d does not match model dimension %d",
			len(vec), len(b.weights))
	}
	z := b.bias
	for i, w := range b.weights {
		z += w * vec[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}

func stringify(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func coerceNumeric(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes":
			return 1, nil
		case "no":
			return 0, nil
		}
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("unsupported value type %T", raw)
	}
}
