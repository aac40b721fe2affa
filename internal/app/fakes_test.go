package app_test

import (
	"context"
	"io"
	"sync"

	"reviewpulse/internal/domain"
)

// fakeClient implements domain.AnalysisClient, recording every call so tests
// can assert exactly which remote operations were issued and in what order.
type fakeClient struct {
	mu     sync.Mutex
	calls  []string
	failOn map[string]error

	reviews     []domain.Review
	listSkip    int
	listLimit   int
	analyses    map[int64]domain.CombinedAnalysis
	analysisErr map[int64]error
	trends      []domain.TrendRecord
	ranked      []domain.RankedAspect
	receipt     domain.UploadReceipt

	createdID    int64
	sentimentIDs []int64
	aspectIDs    []int64
	summaryIDs   []int64
}

func (f *fakeClient) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if err, ok := f.failOn[name]; ok {
		return err
	}
	return nil
}

func (f *fakeClient) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeClient) CreateReview(ctx context.Context, text, source string) (domain.Review, error) {
	if err := f.record("CreateReview"); err != nil {
		return domain.Review{}, err
	}
	if f.createdID == 0 {
		f.createdID = 101
	}
	return domain.Review{ID: f.createdID, Text: text, Source: source}, nil
}

func (f *fakeClient) ListReviews(ctx context.Context, skip, limit int) ([]domain.Review, error) {
	if err := f.record("ListReviews"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.listSkip, f.listLimit = skip, limit
	f.mu.Unlock()
	return f.reviews, nil
}

func (f *fakeClient) FullAnalysis(ctx context.Context, id int64) (domain.CombinedAnalysis, error) {
	if err := f.record("FullAnalysis"); err != nil {
		return domain.CombinedAnalysis{}, err
	}
	if err, ok := f.analysisErr[id]; ok {
		return domain.CombinedAnalysis{}, err
	}
	if a, ok := f.analyses[id]; ok {
		return a, nil
	}
	sent := domain.SentimentResult{ReviewID: id, Score: 0.5, Label: domain.LabelPositive, Confidence: 0.9}
	return domain.CombinedAnalysis{Review: domain.Review{ID: id}, Sentiment: &sent}, nil
}

func (f *fakeClient) AnalyzeSentiment(ctx context.Context, id int64) (domain.SentimentResult, error) {
	if err := f.record("AnalyzeSentiment"); err != nil {
		return domain.SentimentResult{}, err
	}
	f.mu.Lock()
	f.sentimentIDs = append(f.sentimentIDs, id)
	f.mu.Unlock()
	return domain.SentimentResult{ReviewID: id, Score: 0.6, Label: domain.LabelPositive, Confidence: 0.95}, nil
}

func (f *fakeClient) ExtractAspects(ctx context.Context, id int64) ([]domain.AspectResult, error) {
	if err := f.record("ExtractAspects"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.aspectIDs = append(f.aspectIDs, id)
	f.mu.Unlock()
	return []domain.AspectResult{
		{ReviewID: id, Aspect: "battery", Score: 0.7, Label: domain.LabelPositive, Confidence: 0.8, RelevantText: "battery lasts"},
	}, nil
}

func (f *fakeClient) SummarizeReview(ctx context.Context, id int64) (domain.ReviewSummary, error) {
	if err := f.record("SummarizeReview"); err != nil {
		return domain.ReviewSummary{}, err
	}
	f.mu.Lock()
	f.summaryIDs = append(f.summaryIDs, id)
	f.mu.Unlock()
	return domain.ReviewSummary{ReviewID: id, Text: "liked the battery"}, nil
}

func (f *fakeClient) SentimentTrends(ctx context.Context) ([]domain.TrendRecord, error) {
	if err := f.record("SentimentTrends"); err != nil {
		return nil, err
	}
	return f.trends, nil
}

func (f *fakeClient) TopAspects(ctx context.Context) ([]domain.RankedAspect, error) {
	if err := f.record("TopAspects"); err != nil {
		return nil, err
	}
	return f.ranked, nil
}

func (f *fakeClient) UploadCSV(ctx context.Context, filename string, file io.Reader) (domain.UploadReceipt, error) {
	if err := f.record("UploadCSV"); err != nil {
		return domain.UploadReceipt{}, err
	}
	return f.receipt, nil
}

// fakeCache is an in-memory domain.Cache.
type fakeCache struct {
	mu    sync.Mutex
	store map[string]domain.DashboardSummary
	sets  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, isSummary := dst.(*domain.DashboardSummary); isSummary {
		*d = v
		return true, nil
	}
	return false, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]domain.DashboardSummary{}
	}
	if s, ok := v.(domain.DashboardSummary); ok {
		c.store[key] = s
		c.sets++
	}
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}
