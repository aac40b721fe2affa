package app

import (
	"sort"

	"reviewpulse/internal/domain"
)

// AggregateTrends reduces the service's per-bucket trend records and ranked
// aspects into one dashboard summary.
//
// AverageSentiment is the arithmetic mean of the per-bucket means, not a
// review-count-weighted mean; existing consumers depend on that exact figure.
// Empty input returns a summary with HasData=false rather than zero-valued
// charts.
func AggregateTrends(trends []domain.TrendRecord, ranked []domain.RankedAspect) domain.DashboardSummary {
	if len(trends) == 0 {
		return domain.DashboardSummary{}
	}

	series := make([]domain.TrendRecord, len(trends))
	copy(series, trends)
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	sum := domain.DashboardSummary{HasData: true, Series: series}
	var meanTotal float64
	for _, t := range series {
		sum.TotalReviews += t.TotalReviews
		sum.Distribution.Positive += t.Distribution.Positive
		sum.Distribution.Neutral += t.Distribution.Neutral
		sum.Distribution.Negative += t.Distribution.Negative
		meanTotal += t.AvgSentiment
	}
	sum.AverageSentiment = meanTotal / float64(len(series))

	byCount := make([]domain.RankedAspect, len(ranked))
	copy(byCount, ranked)
	sort.SliceStable(byCount, func(i, j int) bool { return byCount[i].Count > byCount[j].Count })
	sum.TopAspects = topAspects(byCount, 10) // bar chart
	sum.AspectTable = topAspects(byCount, 5) // tabular view
	return sum
}

func topAspects(as []domain.RankedAspect, n int) []domain.RankedAspect {
	if len(as) > n {
		as = as[:n]
	}
	out := make([]domain.RankedAspect, len(as))
	copy(out, as)
	return out
}
