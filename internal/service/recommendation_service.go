package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
)

// maxRecommendations caps the personalized tip list.
const maxRecommendations = 3

type recommendationContentRepository interface {
	FindTips(ctx context.Context, categoryID int, level emissions.Level, limit int) ([]models.EducationalContent, error)
	FindGeneralTips(ctx context.Context, limit int) ([]models.EducationalContent, error)
}

// RecommendationService selects educational tips matching a user's footprint.
type RecommendationService struct {
	contents recommendationContentRepository
	logger   *zap.Logger
}

// NewRecommendationService constructs a RecommendationService instance.
func NewRecommendationService(contents recommendationContentRepository, logger *zap.Logger) *RecommendationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationService{contents: contents, logger: logger}
}

// Recommend walks the category IDs in descending-impact order and collects at
// most one tip per category: an exact category+level match wins, otherwise the
// category is relaxed to any level, preferring an exact level tag, then an
// untagged entry, then whatever remains. Categories without a match are
// skipped. Remaining slots are backfilled from the general pool. Duplicates
// never repeat.
func (s *RecommendationService) Recommend(ctx context.Context, categoryIDs []int, level emissions.Level) ([]dto.TipItem, error) {
	seen := make(map[string]bool)
	var tips []dto.TipItem

	for _, categoryID := range categoryIDs {
		if len(tips) >= maxRecommendations {
			break
		}
		if categoryID <= 0 {
			continue
		}
		picked, err := s.pickForCategory(ctx, categoryID, level, seen)
		if err != nil {
			return nil, err
		}
		if picked != nil {
			seen[picked.ID] = true
			tips = append(tips, *picked)
		}
	}

	if len(tips) < maxRecommendations {
		general, err := s.contents.FindGeneralTips(ctx, maxRecommendations)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load general tips")
		}
		for _, content := range general {
			if len(tips) >= maxRecommendations {
				break
			}
			if seen[content.ID] {
				continue
			}
			seen[content.ID] = true
			tips = append(tips, toTipItem(content))
		}
	}

	return tips, nil
}

// GeneralTips returns up to three untargeted tips for users without any
// recorded footprint.
func (s *RecommendationService) GeneralTips(ctx context.Context) ([]dto.TipItem, error) {
	general, err := s.contents.FindGeneralTips(ctx, maxRecommendations)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load general tips")
	}
	tips := make([]dto.TipItem, 0, maxRecommendations)
	for _, content := range general {
		if len(tips) >= maxRecommendations {
			break
		}
		tips = append(tips, toTipItem(content))
	}
	return tips, nil
}

func (s *RecommendationService) pickForCategory(ctx context.Context, categoryID int, level emissions.Level, seen map[string]bool) (*dto.TipItem, error) {
	exact, err := s.contents.FindTips(ctx, categoryID, level, maxRecommendations)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tips")
	}
	if item := pickPreferring(exact, level, seen); item != nil {
		return item, nil
	}

	relaxed, err := s.contents.FindTips(ctx, categoryID, "", maxRecommendations)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tips")
	}
	return pickPreferring(relaxed, level, seen), nil
}

// pickPreferring returns the first unseen entry, trying an exact level tag,
// then an untagged entry, then anything.
func pickPreferring(contents []models.EducationalContent, level emissions.Level, seen map[string]bool) *dto.TipItem {
	first := func(ok func(models.EducationalContent) bool) *dto.TipItem {
		for _, content := range contents {
			if seen[content.ID] || !ok(content) {
				continue
			}
			item := toTipItem(content)
			return &item
		}
		return nil
	}
	if item := first(func(c models.EducationalContent) bool { return c.EmissionsLevel == level }); item != nil {
		return item
	}
	if item := first(func(c models.EducationalContent) bool { return c.EmissionsLevel == "" }); item != nil {
		return item
	}
	return first(func(models.EducationalContent) bool { return true })
}

func toTipItem(content models.EducationalContent) dto.TipItem {
	item := dto.TipItem{
		ID:          content.ID,
		Title:       content.Title,
		Description: content.Description,
		ContentType: string(content.ContentType),
	}
	if content.CategoryName != nil {
		item.CategoryName = *content.CategoryName
	}
	return item
}
