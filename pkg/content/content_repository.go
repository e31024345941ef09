package content

import (
	"context"
	"errors"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ContentRepository interface {
		CreateComment(ctx context.Context, comment *entities.Comment) error
		GetCommentByID(ctx context.Context, id uuid.UUID) (*entities.Comment, error)
		UpdateComment(ctx context.Context, comment *entities.Comment) error
		DeleteComment(ctx context.Context, id uuid.UUID) error
		ListComments(ctx context.Context, postID string) ([]*entities.Comment, error)
		ToggleLike(ctx context.Context, postID string, userID uuid.UUID) (bool, int64, error)
		CountLikes(ctx context.Context, postID string) (int64, error)
		HasLiked(ctx context.Context, postID string, userID uuid.UUID) (bool, error)
	}

	contentRepository struct {
		db *gorm.DB
	}
)

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) CreateComment(ctx context.Context, comment *entities.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(comment).Error
}

func (r *contentRepository) GetCommentByID(ctx context.Context, id uuid.UUID) (*entities.Comment, error) {
	var comment entities.Comment
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *contentRepository) UpdateComment(ctx context.Context, comment *entities.Comment) error {
	return r.db.WithContext(ctx).
		Model(&entities.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]interface{}{
			"content":   comment.Content,
			"edited_at": comment.EditedAt,
		}).Error
}

func (r *contentRepository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Comment{}).Error
}

func (r *contentRepository) ListComments(ctx context.Context, postID string) ([]*entities.Comment, error) {
	var comments []*entities.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at asc").
		Find(&comments).Error
	return comments, err
}

// ToggleLike flips the like inside one transaction and returns the new
// state with the post's like count.
func (r *contentRepository) ToggleLike(ctx context.Context, postID string, userID uuid.UUID) (bool, int64, error) {
	var (
		liked bool
		count int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entities.Like
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// a concurrent toggle may have inserted the same like; that still ends liked
			err := tx.Transaction(func(sp *gorm.DB) error {
				return sp.Create(&entities.Like{PostID: postID, UserID: userID}).Error
			})
			if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			liked = true
		default:
			return err
		}
		return tx.Model(&entities.Like{}).Where("post_id = ?", postID).Count(&count).Error
	})
	return liked, count, err
}

func (r *contentRepository) CountLikes(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *contentRepository) HasLiked(ctx context.Context, postID string, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}
