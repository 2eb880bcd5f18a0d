package service

import (
	"context"
	"fmt"

	"github.com/Ly-yang/wechat-editor/internal/model"
	"github.com/Ly-yang/wechat-editor/internal/repository"
)

// StatsService reports aggregate numbers for the dashboard.
type StatsService struct {
	repo repository.StatsRepository
}

func NewStatsService(repo repository.StatsRepository) *StatsService {
	return &StatsService{repo: repo}
}

func (s *StatsService) Get(ctx context.Context, owner int64) (*model.Stats, error) {
	stats, err := s.repo.ArticleStats(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("loading stats: %w", err)
	}
	return stats, nil
}
