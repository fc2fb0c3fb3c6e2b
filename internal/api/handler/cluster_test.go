package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/staysense/predictor/internal/model"
)

func testClustering(t *testing.T) *model.Clustering {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"labels": []int{0, 1, 1, 4, 4, 4}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "clustering.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := model.LoadClustering(path)
	if err != nil {
		t.Fatalf("LoadClustering: %v", err)
	}
	return c
}

func TestClusterChart(t *testing.T) {
	h := NewClusterChartHandler(testClustering(t))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/cluster/chart", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body []struct {
		Cluster     int    `json:"cluster"`
		Description string `json:"description"`
		Count       int    `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 5 {
		t.Fatalf("got %d clusters, want all 5", len(body))
	}
	for i, row := range body {
		if row.Cluster != i {
			t.Errorf("row %d has cluster %d, want ascending order", i, row.Cluster)
		}
		if row.Description == "" {
			t.Errorf("cluster %d has no description", row.Cluster)
		}
	}
	if body[1].Count != 2 || body[4].Count != 3 {
		t.Errorf("counts = %+v", body)
	}
	if body[2].Count != 0 || body[3].Count != 0 {
		t.Error("empty clusters must still be listed with count 0")
	}
}

func TestValidValues(t *testing.T) {
	h := NewValidValuesHandler(map[string][]string{
		"contract": {"Month-to-month", "One year", "Two year"},
		"offer":    {"None", "Offer A"},
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/valid-values", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body["contract"]) != 3 || body["contract"][0] != "Month-to-month" {
		t.Errorf("contract labels = %v", body["contract"])
	}
}

func TestHealth(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("unreachable") }

	t.Run("all healthy", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{"database": ok, "cache": ok, "storage": ok})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("degraded", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{"database": ok, "cache": down})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		var body struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Status != "degraded" || body.Checks["cache"] != "unreachable" || body.Checks["database"] != "ok" {
			t.Errorf("body = %+v", body)
		}
	})
}

func TestRoot(t *testing.T) {
	h := NewRootHandler()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "StaySense API is running!" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
