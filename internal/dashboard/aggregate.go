// Package dashboard folds persisted prediction records into the aggregate
// views served by the dashboard endpoints.
package dashboard

import (
	"math"
	"sort"

	"github.com/staysense/predictor/pkg/models"
)

// Aggregate is the customer-weighted summary of a set of prediction records.
type Aggregate struct {
	TotalCustomers int          `json:"total_customers"`
	ChurnCount     int          `json:"churn_count"`
	NotChurnCount  int          `json:"not_churn_count"`
	ChurnRate      float64      `json:"churn_rate"`
	Months         []MonthPoint `json:"months"`
}

// MonthPoint is one month bucket of the churn-rate time series.
type MonthPoint struct {
	Month          string  `json:"month"`
	ChurnCount     int     `json:"churn_count"`
	TotalCustomers int     `json:"total_customers"`
	ChurnRate      float64 `json:"churn_rate"`
}

// Fold sums records into totals and a per-month churn-rate series. Every
// record contributes through the same two counters regardless of source, so
// single predictions and upload summaries aggregate compatibly. Months sort
// ascending; rates are percentages rounded to two decimals.
func Fold(records []*models.PredictionRecord) *Aggregate {
	agg := &Aggregate{}

	type bucket struct {
		churn int
		total int
	}
	perMonth := make(map[string]*bucket)

	for _, r := range records {
		if r.Month == "" {
			continue
		}
		agg.TotalCustomers += r.TotalCustomers
		agg.ChurnCount += r.ChurnCount

		b := perMonth[r.Month]
		if b == nil {
			b = &bucket{}
			perMonth[r.Month] = b
		}
		b.churn += r.ChurnCount
		b.total += r.TotalCustomers
	}

	agg.NotChurnCount = agg.TotalCustomers - agg.ChurnCount
	agg.ChurnRate = rate(agg.ChurnCount, agg.TotalCustomers)

	months := make([]string, 0, len(perMonth))
	for m := range perMonth {
		months = append(months, m)
	}
	// "YYYY-MM" sorts chronologically as text.
	sort.Strings(months)

	agg.Months = make([]MonthPoint, 0, len(months))
	for _, m := range months {
		b := perMonth[m]
		agg.Months = append(agg.Months, MonthPoint{
			Month:          m,
			ChurnCount:     b.churn,
			TotalCustomers: b.total,
			ChurnRate:      rate(b.churn, b.total),
		})
	}

	return agg
}

// GroupByMonth buckets records by their stored month, preserving each
// bucket's newest-first input order. Returns the sorted bucket keys too.
func GroupByMonth(records []*models.PredictionRecord) (map[string][]*models.PredictionRecord, []string) {
	grouped := make(map[string][]*models.PredictionRecord)
	for _, r := range records {
		if r.Month == "" {
			continue
		}
		grouped[r.Month] = append(grouped[r.Month], r)
	}

	months := make([]string, 0, len(grouped))
	for m := range grouped {
		months = append(months, m)
	}
	sort.Strings(months)

	return grouped, months
}

func rate(churn, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(churn)/float64(total)*100*100) / 100
}
