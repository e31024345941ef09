package harvest

import (
	"context"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	HarvestRepository interface {
		CreateHarvest(ctx context.Context, harvest *entities.Harvest) error
		GetHarvestByID(ctx context.Context, id uuid.UUID) (*entities.Harvest, error)
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Harvest, error)
		ListAllWithDetails(ctx context.Context) ([]*entities.Harvest, error)
		UpdateHarvest(ctx context.Context, harvest *entities.Harvest) error
		DeleteHarvest(ctx context.Context, id, userID uuid.UUID) (int64, error)
		AnalysisOwnedBy(ctx context.Context, analysisID, userID uuid.UUID) (bool, error)
	}

	harvestRepository struct {
		db *gorm.DB
	}
)

func NewHarvestRepository(db *gorm.DB) HarvestRepository {
	return &harvestRepository{db: db}
}

func (r *harvestRepository) CreateHarvest(ctx context.Context, harvest *entities.Harvest) error {
	return r.db.WithContext(ctx).Omit("User", "Analysis").Create(harvest).Error
}

func (r *harvestRepository) GetHarvestByID(ctx context.Context, id uuid.UUID) (*entities.Harvest, error) {
	var harvest entities.Harvest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&harvest).Error; err != nil {
		return nil, err
	}
	return &harvest, nil
}

func (r *harvestRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Harvest, error) {
	var harvests []*entities.Harvest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc, created_at desc").
		Find(&harvests).Error
	return harvests, err
}

// ListAllWithDetails preloads owner and analysis; dangling references stay nil.
func (r *harvestRepository) ListAllWithDetails(ctx context.Context) ([]*entities.Harvest, error) {
	var harvests []*entities.Harvest
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Analysis").
		Order("date desc, created_at desc").
		Find(&harvests).Error
	return harvests, err
}

func (r *harvestRepository) UpdateHarvest(ctx context.Context, harvest *entities.Harvest) error {
	return r.db.WithContext(ctx).Omit("User", "Analysis").Save(harvest).Error
}

func (r *harvestRepository) DeleteHarvest(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.Harvest{})
	return res.RowsAffected, res.Error
}

func (r *harvestRepository) AnalysisOwnedBy(ctx context.Context, analysisID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Analysis{}).
		Where("id = ? AND user_id = ?", analysisID, userID).
		Count(&count).Error
	return count > 0, err
}
