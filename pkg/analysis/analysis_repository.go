package analysis

import (
	"context"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	AnalysisRepository interface {
		CreateAnalysis(ctx context.Context, analysis *entities.Analysis) error
		GetAnalysisByID(ctx context.Context, id uuid.UUID) (*entities.Analysis, error)
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Analysis, error)
	}

	analysisRepository struct {
		db *gorm.DB
	}
)

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) CreateAnalysis(ctx context.Context, analysis *entities.Analysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *analysisRepository) GetAnalysisByID(ctx context.Context, id uuid.UUID) (*entities.Analysis, error) {
	var analysis entities.Analysis
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error; err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *analysisRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Analysis, error) {
	var analyses []*entities.Analysis
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&analyses).Error
	return analyses, err
}
