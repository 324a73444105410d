package services

import (
	"context"

	"github.com/dayboard/dayboard/internal/cache"
	"github.com/dayboard/dayboard/internal/model"
	"github.com/dayboard/dayboard/internal/orchestrator"
)

// DashboardService is the use-case layer consumed by the HTTP handlers.
type DashboardService struct {
	orch  *orchestrator.Orchestrator
	cache *cache.Tiered
}

func NewDashboardService(orch *orchestrator.Orchestrator, c *cache.Tiered) *DashboardService {
	return &DashboardService{orch: orch, cache: c}
}

func (s *DashboardService) GetContent(ctx context.Context, scope string, ct model.ContentType, date model.Date) (*model.ContentRecord, error) {
	return s.orch.GetOrGenerate(ctx, scope, ct, date)
}

func (s *DashboardService) RegenerateContent(ctx context.Context, scope string, ct model.ContentType, date model.Date) (*model.ContentRecord, error) {
	return s.orch.Regenerate(ctx, scope, ct, date)
}

// GetArchive is the read-only archive lookup; archives live only in the
// authoritative tier.
func (s *DashboardService) GetArchive(ctx context.Context, scope string, date model.Date) (*model.ArchiveRecord, error) {
	return s.cache.Authoritative().Archives().Get(ctx, scope, date)
}
