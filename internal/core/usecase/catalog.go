package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/core/ports"
)

// CategoryGroup holds the definitions of one category in catalog order.
type CategoryGroup struct {
	Category   string                       `json:"category"`
	Parameters []domain.ParameterDefinition `json:"parameters"`
}

// CatalogService fetches the parameter catalog once and keeps the first
// successful load until Reload.
type CatalogService struct {
	backend ports.CatalogBackend

	mu     sync.Mutex
	loaded bool
	defs   []domain.ParameterDefinition
}

func NewCatalogService(backend ports.CatalogBackend) *CatalogService {
	return &CatalogService{backend: backend}
}

func (s *CatalogService) Parameters(ctx context.Context) ([]domain.ParameterDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return cloneDefinitions(s.defs), nil
	}
	return s.fetchLocked(ctx)
}

func (s *CatalogService) Reload(ctx context.Context) ([]domain.ParameterDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchLocked(ctx)
}

func (s *CatalogService) fetchLocked(ctx context.Context) ([]domain.ParameterDefinition, error) {
	defs, err := s.backend.Parameters(ctx)
	if err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}
	s.defs = cloneDefinitions(defs)
	s.loaded = true
	return cloneDefinitions(s.defs), nil
}

// GroupByCategory is a stable partition; groups follow first-seen order.
func GroupByCategory(defs []domain.ParameterDefinition) []CategoryGroup {
	groups := make([]CategoryGroup, 0)
	index := make(map[string]int)
	for _, def := range defs {
		i, ok := index[def.Category]
		if !ok {
			i = len(groups)
			index[def.Category] = i
			groups = append(groups, CategoryGroup{Category: def.Category})
		}
		groups[i].Parameters = append(groups[i].Parameters, def)
	}
	return groups
}

func cloneDefinitions(defs []domain.ParameterDefinition) []domain.ParameterDefinition {
	if defs == nil {
		return []domain.ParameterDefinition{}
	}
	out := make([]domain.ParameterDefinition, len(defs))
	copy(out, defs)
	return out
}
