package domain

import "time"

// Review is one unit of submitted text. The analysis service owns it; the
// client never invents review ids.
type Review struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Rating    *float64  `json:"rating,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type SentimentResult struct {
	ReviewID   int64   `json:"review_id"`
	Score      float64 `json:"sentiment_score"`
	Label      Label   `json:"sentiment_label"`
	Confidence float64 `json:"confidence"`
}

type AspectResult struct {
	ReviewID     int64   `json:"review_id"`
	Aspect       string  `json:"aspect"`
	Score        float64 `json:"sentiment_score"`
	Label        Label   `json:"sentiment_label"`
	Confidence   float64 `json:"confidence"`
	RelevantText string  `json:"relevant_text,omitempty"`
}

type ReviewSummary struct {
	ReviewID int64  `json:"review_id"`
	Text     string `json:"summary_text"`
}

// CombinedAnalysis joins a review with everything derived from it. It is the
// unit the analysis pipeline produces and the detail view consumes.
type CombinedAnalysis struct {
	Review    Review           `json:"review"`
	Sentiment *SentimentResult `json:"sentiment"`
	Aspects   []AspectResult   `json:"aspects"`
	Summary   *ReviewSummary   `json:"summary"`
}

// Complete reports whether all constituents arrived and reference the same
// review id. Partial results must never be presented as complete.
func (a CombinedAnalysis) Complete() bool {
	if a.Review.ID == 0 || a.Sentiment == nil || a.Summary == nil {
		return false
	}
	if a.Sentiment.ReviewID != a.Review.ID || a.Summary.ReviewID != a.Review.ID {
		return false
	}
	for _, asp := range a.Aspects {
		if asp.ReviewID != a.Review.ID {
			return false
		}
	}
	return true
}

// EnrichedReview is a listed review with its separately fetched sentiment
// attached. Sentiment stays nil when enrichment failed or has not run.
type EnrichedReview struct {
	Review    Review           `json:"review"`
	Sentiment *SentimentResult `json:"sentiment,omitempty"`
}

// ReviewPage is one loaded page of enriched reviews. Generation orders
// concurrent loads so callers can drop pages superseded by a newer request.
type ReviewPage struct {
	Items      []EnrichedReview `json:"items"`
	Generation uint64           `json:"generation"`
}

// UploadReceipt reports how many CSV rows the service accepted for
// out-of-band processing.
type UploadReceipt struct {
	Filename string `json:"filename"`
	Accepted int    `json:"reviews_processed"`
	Success  bool   `json:"success"`
}
