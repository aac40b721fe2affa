package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"reviewpulse/internal/domain"
)

// BrowseService loads pages of reviews and enriches each item with its
// separately fetched sentiment.
type BrowseService struct {
	client  domain.AnalysisClient
	workers int64
	gen     atomic.Uint64
}

func NewBrowseService(client domain.AnalysisClient, workers int) *BrowseService {
	if workers <= 0 {
		workers = 8
	}
	return &BrowseService{client: client, workers: int64(workers)}
}

// LoadPage fetches one offset/limit page and fans out a bounded number of
// concurrent full-analysis lookups, one per item. The join is all-settled:
// an item whose lookup fails stays in the result without sentiment, and no
// page-level error is raised for it. Nothing is cached across calls; every
// call re-fetches.
func (s *BrowseService) LoadPage(ctx context.Context, page, size int) (domain.ReviewPage, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	gen := s.gen.Add(1)

	reviews, err := s.client.ListReviews(ctx, (page-1)*size, size)
	if err != nil {
		return domain.ReviewPage{}, err
	}

	items := make([]domain.EnrichedReview, len(reviews))
	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	for i, r := range reviews {
		items[i] = domain.EnrichedReview{Review: r}

		if err := sem.Acquire(ctx, 1); err != nil {
			break // context gone; remaining items stay unenriched
		}
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			defer sem.Release(1)
			full, err := s.client.FullAnalysis(ctx, id)
			if err != nil {
				// fail-soft: the item is listed without sentiment
				log.Debug().Int64("review_id", id).Err(err).Msg("enrichment skipped")
				return
			}
			items[i].Sentiment = full.Sentiment
		}(i, r.ID)
	}
	wg.Wait()

	return domain.ReviewPage{Items: items, Generation: gen}, nil
}

// Stale reports whether a page from generation g has been superseded by a
// newer LoadPage call. Callers drop stale pages instead of letting a late
// response overwrite newer state.
func (s *BrowseService) Stale(g uint64) bool { return g != s.gen.Load() }

// FullAnalysis returns the complete analysis for one review, for detail views.
func (s *BrowseService) FullAnalysis(ctx context.Context, id int64) (domain.CombinedAnalysis, error) {
	return s.client.FullAnalysis(ctx, id)
}
