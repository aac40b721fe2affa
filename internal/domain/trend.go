package domain

import "time"

type SentimentDistribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

func (d SentimentDistribution) Total() int { return d.Positive + d.Neutral + d.Negative }

// TrendAspect is the per-bucket aspect entry carried inside a TrendRecord.
type TrendAspect struct {
	Aspect       string  `json:"aspect"`
	Count        int     `json:"count"`
	AvgSentiment float64 `json:"avg_sentiment"`
}

// TrendRecord is one pre-aggregated time bucket supplied by the analysis
// service. Read-only to this client.
type TrendRecord struct {
	Date         time.Time             `json:"date"`
	TotalReviews int                   `json:"total_reviews"`
	AvgSentiment float64               `json:"avg_sentiment"`
	Distribution SentimentDistribution `json:"sentiment_distribution"`
	TopAspects   []TrendAspect         `json:"top_aspects"`
}

// RankedAspect is a service-supplied aspect with overall mention statistics;
// the client only sorts and slices these.
type RankedAspect struct {
	Aspect       string  `json:"aspect"`
	Count        int     `json:"count"`
	AvgSentiment float64 `json:"avg_sentiment"`
	Label        Label   `json:"sentiment_label"`
}

// DashboardSummary is the reduced, chart-ready view over all trend records.
// HasData distinguishes "no buckets at all" from a legitimately zero-valued
// summary; consumers must branch on it before rendering.
type DashboardSummary struct {
	HasData          bool                  `json:"has_data"`
	TotalReviews     int                   `json:"total_reviews"`
	AverageSentiment float64               `json:"average_sentiment"`
	Distribution     SentimentDistribution `json:"sentiment_distribution"`
	Series           []TrendRecord         `json:"series"`
	TopAspects       []RankedAspect        `json:"top_aspects"`
	AspectTable      []RankedAspect        `json:"aspect_table"`
}
