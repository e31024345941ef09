package group

import (
	"context"
	"errors"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/logging"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/notification"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errStockUnderflow = errors.New("stock underflow")

type (
	GroupRepository interface {
		CreateGroup(ctx context.Context, group *entities.Group, participantIDs []uuid.UUID) error
		GetGroupByID(ctx context.Context, id uuid.UUID) (*entities.Group, error)
		GetGroupsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Group, error)
		ListGroups(ctx context.Context) ([]*entities.Group, error)
		ListOwnedBy(ctx context.Context, userID uuid.UUID) ([]*entities.Group, error)
		ListParticipatingIn(ctx context.Context, userID uuid.UUID) ([]*entities.Group, error)
		GroupIDsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
		AddParticipant(ctx context.Context, groupID, userID uuid.UUID, notice *entities.Notification) (bool, error)
		RemoveParticipant(ctx context.Context, groupID, userID uuid.UUID) (int64, error)
		UpdateGroup(ctx context.Context, group *entities.Group, participantIDs *[]uuid.UUID) error
		AdjustStock(ctx context.Context, groupID uuid.UUID, delta int) error
		DeleteGroup(ctx context.Context, id uuid.UUID) (int64, error)
	}

	groupRepository struct {
		db *gorm.DB
	}
)

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func preloadParticipants(db *gorm.DB) *gorm.DB {
	return db.Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc, created_at asc")
	})
}

func insertParticipants(tx *gorm.DB, groupID uuid.UUID, userIDs []uuid.UUID) error {
	for i, userID := range userIDs {
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entities.GroupParticipant{
			GroupID:  groupID,
			UserID:   userID,
			Position: int64(i + 1),
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *groupRepository) CreateGroup(ctx context.Context, group *entities.Group, participantIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Participants").Create(group).Error; err != nil {
			return err
		}
		return insertParticipants(tx, group.ID, participantIDs)
	})
}

func (r *groupRepository) GetGroupByID(ctx context.Context, id uuid.UUID) (*entities.Group, error) {
	var group entities.Group
	if err := preloadParticipants(r.db.WithContext(ctx)).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// GetGroupsByIDs resolves ids in one query; deleted groups are absent from the map.
func (r *groupRepository) GetGroupsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Group, error) {
	out := make(map[uuid.UUID]*entities.Group, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var groups []*entities.Group
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&groups).Error; err != nil {
		return nil, err
	}
	for _, g := range groups {
		out[g.ID] = g
	}
	return out, nil
}

func (r *groupRepository) ListGroups(ctx context.Context) ([]*entities.Group, error) {
	var groups []*entities.Group
	err := preloadParticipants(r.db.WithContext(ctx)).Order("created_at desc").Find(&groups).Error
	return groups, err
}

func (r *groupRepository) ListOwnedBy(ctx context.Context, userID uuid.UUID) ([]*entities.Group, error) {
	var groups []*entities.Group
	err := preloadParticipants(r.db.WithContext(ctx)).
		Where("created_by = ?", userID).
		Order("created_at desc").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepository) ListParticipatingIn(ctx context.Context, userID uuid.UUID) ([]*entities.Group, error) {
	var groups []*entities.Group
	err := preloadParticipants(r.db.WithContext(ctx)).
		Where("id IN (?)", r.db.Model(&entities.GroupParticipant{}).Select("group_id").Where("user_id = ?", userID)).
		Where("created_by <> ?", userID).
		Order("created_at desc").
		Find(&groups).Error
	return groups, err
}

// GroupIDsOf returns the groups userID owns or belongs to.
func (r *groupRepository) GroupIDsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entities.Group{}).
		Where("created_by = ?", userID).
		Or("id IN (?)", r.db.Model(&entities.GroupParticipant{}).Select("group_id").Where("user_id = ?", userID)).
		Pluck("id", &ids).Error
	return ids, err
}

// AddParticipant inserts the membership row unless it already exists and
// reports whether a row was written. When it was, notice is enqueued in the
// same transaction; a failed enqueue is rolled back to a savepoint and logged
// so the join still commits.
func (r *groupRepository) AddParticipant(ctx context.Context, groupID, userID uuid.UUID, notice *entities.Notification) (bool, error) {
	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int64
		if err := tx.Model(&entities.GroupParticipant{}).
			Where("group_id = ?", groupID).
			Select("COALESCE(MAX(position), 0) + 1").
			Scan(&next).Error; err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entities.GroupParticipant{
			GroupID:  groupID,
			UserID:   userID,
			Position: next,
		})
		if res.Error != nil {
			return res.Error
		}
		added = res.RowsAffected > 0
		if !added || notice == nil {
			return nil
		}

		if err := tx.SavePoint("join_notice").Error; err != nil {
			return err
		}
		if err := notification.Enqueue(tx, notice); err != nil {
			logging.LogError("group_join_notification", err, map[string]interface{}{
				"group_id": groupID.String(),
				"user_id":  userID.String(),
			})
			return tx.RollbackTo("join_notice").Error
		}
		return nil
	})
	return added, err
}

func (r *groupRepository) RemoveParticipant(ctx context.Context, groupID, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&entities.GroupParticipant{})
	return res.RowsAffected, res.Error
}

// UpdateGroup saves the scalar fields and, when participantIDs is set,
// replaces the membership set.
func (r *groupRepository) UpdateGroup(ctx context.Context, group *entities.Group, participantIDs *[]uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Group{}).Where("id = ?", group.ID).Updates(map[string]interface{}{
			"name":        group.Name,
			"description": group.Description,
			"stock":       group.Stock,
		}).Error; err != nil {
			return err
		}
		if participantIDs == nil {
			return nil
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&entities.GroupParticipant{}).Error; err != nil {
			return err
		}
		return insertParticipants(tx, group.ID, *participantIDs)
	})
}

func (r *groupRepository) AdjustStock(ctx context.Context, groupID uuid.UUID, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Group{}).
		Where("id = ? AND stock + ? >= 0", groupID, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&entities.Group{}).Where("id = ?", groupID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return errStockUnderflow
	}
	return nil
}

func (r *groupRepository) DeleteGroup(ctx context.Context, id uuid.UUID) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&entities.GroupParticipant{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entities.Group{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}
