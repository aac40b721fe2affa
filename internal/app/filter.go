package app

import (
	"math"
	"strings"

	"reviewpulse/internal/domain"
)

// Query narrows an already-loaded page of reviews. Both predicates are ANDed;
// zero values pass everything through.
type Query struct {
	Text  string
	Label *domain.Label
}

type FilteredPage struct {
	Items     []domain.EnrichedReview
	PageCount int
}

// Apply filters page-locally. The text predicate is a case-insensitive
// substring match on the review text; the label predicate is an exact match,
// and items without sentiment never match a non-nil label filter.
//
// PageCount is ceil(len(filtered)/pageSize) over the loaded page only, not a
// server-side total: filtering narrows what was already fetched and never
// searches the full remote collection.
func Apply(items []domain.EnrichedReview, q Query, pageSize int) FilteredPage {
	needle := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]domain.EnrichedReview, 0, len(items))
	for _, it := range items {
		if needle != "" && !strings.Contains(strings.ToLower(it.Review.Text), needle) {
			continue
		}
		if q.Label != nil {
			if it.Sentiment == nil || it.Sentiment.Label != *q.Label {
				continue
			}
		}
		out = append(out, it)
	}

	if pageSize <= 0 {
		pageSize = 10
	}
	return FilteredPage{
		Items:     out,
		PageCount: int(math.Ceil(float64(len(out)) / float64(pageSize))),
	}
}
