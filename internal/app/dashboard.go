package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"reviewpulse/internal/domain"
)

const dashboardKey = "dashboard:summary"

// DashboardService assembles the dashboard summary with a short-TTL
// cache-aside in front of the two upstream calls. Only this aggregate view is
// cached; browsing and the pipeline always hit the service directly.
type DashboardService struct {
	client domain.AnalysisClient
	cache  domain.Cache
	ttl    time.Duration
}

func NewDashboardService(c domain.AnalysisClient, cache domain.Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{client: c, cache: cache, ttl: ttl}
}

func (s *DashboardService) Summary(ctx context.Context) (domain.DashboardSummary, error) {
	if s.cache != nil {
		var cached domain.DashboardSummary
		if ok, _ := s.cache.Get(ctx, dashboardKey, &cached); ok {
			return cached, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the summary from the service and repopulates the cache.
// Both upstream calls must succeed; a dashboard from half the data would be
// misleading.
func (s *DashboardService) Refresh(ctx context.Context) (domain.DashboardSummary, error) {
	trends, err := s.client.SentimentTrends(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	ranked, err := s.client.TopAspects(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	sum := AggregateTrends(trends, ranked)
	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardKey, sum, int(s.ttl.Seconds())); err != nil {
			log.Debug().Err(err).Msg("dashboard cache set failed")
		}
	}
	return sum, nil
}
