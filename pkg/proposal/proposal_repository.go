package proposal

import (
	"context"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/logging"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/notification"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ProposalRepository interface {
		CreateProposal(ctx context.Context, proposal *entities.Proposal, notice *entities.Notification) error
		GetProposalByID(ctx context.Context, id uuid.UUID) (*entities.Proposal, error)
		ListReceived(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) ([]*entities.Proposal, error)
		ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*entities.Proposal, error)
		MarkViewed(ctx context.Context, id uuid.UUID) error
		DeleteProposal(ctx context.Context, id uuid.UUID) (int64, error)
		HarvestExists(ctx context.Context, id uuid.UUID) (bool, error)
	}

	proposalRepository struct {
		db *gorm.DB
	}
)

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

// CreateProposal stores the proposal and, if notice is set, enqueues it in
// the same transaction. A failed enqueue is logged and never blocks the offer.
func (r *proposalRepository) CreateProposal(ctx context.Context, proposal *entities.Proposal, notice *entities.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(proposal).Error; err != nil {
			return err
		}
		if notice == nil {
			return nil
		}
		if err := tx.SavePoint("proposal_notice").Error; err != nil {
			return err
		}
		if err := notification.Enqueue(tx, notice); err != nil {
			logging.LogError("proposal_notification", err, map[string]interface{}{
				"proposal_id": proposal.ID.String(),
			})
			return tx.RollbackTo("proposal_notice").Error
		}
		return nil
	})
}

func (r *proposalRepository) GetProposalByID(ctx context.Context, id uuid.UUID) (*entities.Proposal, error) {
	var proposal entities.Proposal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&proposal).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

// ListReceived returns proposals addressed to userID or to any of groupIDs,
// newest first.
func (r *proposalRepository) ListReceived(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) ([]*entities.Proposal, error) {
	var proposals []*entities.Proposal
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(groupIDs) > 0 {
		query = query.Or("group_id IN ?", groupIDs)
	}
	err := query.Order("created_at desc").Find(&proposals).Error
	return proposals, err
}

func (r *proposalRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*entities.Proposal, error) {
	var proposals []*entities.Proposal
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").
		Find(&proposals).Error
	return proposals, err
}

func (r *proposalRepository) MarkViewed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.Proposal{}).
		Where("id = ? AND viewed = ?", id, false).
		Update("viewed", true).Error
}

func (r *proposalRepository) DeleteProposal(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Proposal{})
	return res.RowsAffected, res.Error
}

func (r *proposalRepository) HarvestExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Harvest{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
