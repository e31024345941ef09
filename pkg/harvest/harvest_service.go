package harvest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type (
	HarvestService interface {
		Create(ctx context.Context, userID string, req domain.CreateHarvestRequest) (domain.Harvest, error)
		ListByUser(ctx context.Context, userID string) ([]domain.Harvest, error)
		Update(ctx context.Context, harvestID, userID string, req domain.UpdateHarvestRequest) (domain.Harvest, error)
		Delete(ctx context.Context, harvestID, userID string) (string, error)
		ListAllWithDetails(ctx context.Context) ([]domain.HarvestDetails, error)
	}

	harvestService struct {
		harvestRepository HarvestRepository
	}
)

func NewHarvestService(harvestRepository HarvestRepository) HarvestService {
	return &harvestService{harvestRepository: harvestRepository}
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, domain.ErrInvalidHarvestDate
	}
	return date, nil
}

func (s *harvestService) analysisRef(ctx context.Context, raw string, owner uuid.UUID) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.ErrAnalysisNotFound
	}
	ok, err := s.harvestRepository.AnalysisOwnedBy(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAnalysisNotFound
	}
	return &id, nil
}

func (s *harvestService) Create(ctx context.Context, userID string, req domain.CreateHarvestRequest) (domain.Harvest, error) {
	if req.Quantity < 1 {
		return domain.Harvest{}, domain.ErrInvalidQuantity
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return domain.Harvest{}, domain.ErrParseUUID
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return domain.Harvest{}, err
	}
	analysisID, err := s.analysisRef(ctx, req.AnalysisID, owner)
	if err != nil {
		return domain.Harvest{}, err
	}

	harvest := &entities.Harvest{
		UserID:       owner,
		Date:         date,
		Quantity:     req.Quantity,
		Observations: strings.TrimSpace(req.Observations),
		AnalysisID:   analysisID,
	}
	if err := s.harvestRepository.CreateHarvest(ctx, harvest); err != nil {
		return domain.Harvest{}, err
	}
	return domain.ToHarvest(harvest), nil
}

func (s *harvestService) ListByUser(ctx context.Context, userID string) ([]domain.Harvest, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	harvests, err := s.harvestRepository.ListByUser(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Harvest, 0, len(harvests))
	for _, h := range harvests {
		out = append(out, domain.ToHarvest(h))
	}
	return out, nil
}

func (s *harvestService) Update(ctx context.Context, harvestID, userID string, req domain.UpdateHarvestRequest) (domain.Harvest, error) {
	id, err := uuid.Parse(harvestID)
	if err != nil {
		return domain.Harvest{}, domain.ErrHarvestNotFound
	}
	harvest, err := s.harvestRepository.GetHarvestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Harvest{}, domain.ErrHarvestNotFound
		}
		return domain.Harvest{}, err
	}
	if harvest.UserID.String() != userID {
		return domain.Harvest{}, domain.ErrUnauthorizedHarvest
	}

	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return domain.Harvest{}, err
		}
		harvest.Date = date
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return domain.Harvest{}, domain.ErrInvalidQuantity
		}
		harvest.Quantity = *req.Quantity
	}
	if req.Observations != nil {
		harvest.Observations = strings.TrimSpace(*req.Observations)
	}
	if req.AnalysisID != nil {
		analysisID, err := s.analysisRef(ctx, *req.AnalysisID, harvest.UserID)
		if err != nil {
			return domain.Harvest{}, err
		}
		harvest.AnalysisID = analysisID
	}

	if err := s.harvestRepository.UpdateHarvest(ctx, harvest); err != nil {
		return domain.Harvest{}, err
	}
	return domain.ToHarvest(harvest), nil
}

// Delete returns the removed id, or "" when the harvest does not exist or
// belongs to someone else.
func (s *harvestService) Delete(ctx context.Context, harvestID, userID string) (string, error) {
	id, err := uuid.Parse(harvestID)
	if err != nil {
		return "", nil
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return "", nil
	}
	deleted, err := s.harvestRepository.DeleteHarvest(ctx, id, owner)
	if err != nil {
		return "", err
	}
	if deleted == 0 {
		return "", nil
	}
	return id.String(), nil
}

func (s *harvestService) ListAllWithDetails(ctx context.Context) ([]domain.HarvestDetails, error) {
	harvests, err := s.harvestRepository.ListAllWithDetails(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HarvestDetails, 0, len(harvests))
	for _, h := range harvests {
		out = append(out, domain.HarvestDetails{
			Harvest:  domain.ToHarvest(h),
			User:     domain.ToPublicUserPtr(h.User),
			Analysis: h.Analysis,
		})
	}
	return out, nil
}
