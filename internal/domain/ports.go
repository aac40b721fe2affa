package domain

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// AnalysisClient is the typed boundary to the remote review-analysis service.
// It carries no business logic; implementations are pure transport.
type AnalysisClient interface {
	CreateReview(ctx context.Context, text, source string) (Review, error)
	ListReviews(ctx context.Context, skip, limit int) ([]Review, error)
	FullAnalysis(ctx context.Context, id int64) (CombinedAnalysis, error)
	AnalyzeSentiment(ctx context.Context, id int64) (SentimentResult, error)
	ExtractAspects(ctx context.Context, id int64) ([]AspectResult, error)
	SummarizeReview(ctx context.Context, id int64) (ReviewSummary, error)
	SentimentTrends(ctx context.Context) ([]TrendRecord, error)
	TopAspects(ctx context.Context) ([]RankedAspect, error)
	UploadCSV(ctx context.Context, filename string, file io.Reader) (UploadReceipt, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
