package services

import (
	"context"

	"voxarena/models"
)

type PromptLogService struct {
	logs PromptLogStore
}

func NewPromptLogService(logs PromptLogStore) *PromptLogService {
	return &PromptLogService{logs: logs}
}

func (s *PromptLogService) List(ctx context.Context, f models.PromptLogFilter) (*models.ListResult[models.AIPromptLog], error) {
	items, total, err := s.logs.List(ctx, f)
	if err != nil {
		return nil, err
	}
	page := f.Page.Normalize()
	return &models.ListResult[models.AIPromptLog]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}
