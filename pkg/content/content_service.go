package content

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ContentService interface {
		ListArticles(ctx context.Context, page, pageSize int, search string) (domain.ArticlePage, error)
		ListComments(ctx context.Context, postID string) ([]domain.Comment, error)
		AddComment(ctx context.Context, postID, userID, content string) (domain.Comment, error)
		EditComment(ctx context.Context, commentID, userID, content string) (domain.Comment, error)
		DeleteComment(ctx context.Context, commentID, userID string) error
		ToggleLike(ctx context.Context, postID, userID string) (domain.ToggleLikeResponse, error)
		LikeSummary(ctx context.Context, postID, userID string) (domain.LikeSummary, error)
	}

	contentService struct {
		contentRepository ContentRepository
		userRepository    user.UserRepository
		cms               CMSClient
	}
)

func NewContentService(contentRepository ContentRepository, userRepository user.UserRepository, cms CMSClient) ContentService {
	return &contentService{
		contentRepository: contentRepository,
		userRepository:    userRepository,
		cms:               cms,
	}
}

func normalizeComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", domain.ErrCommentEmpty
	}
	if utf8.RuneCountInString(content) > domain.MaxCommentLength {
		return "", domain.ErrCommentTooLong
	}
	return content, nil
}

func normalizePostID(postID string) (string, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return "", domain.ErrPostIDRequired
	}
	return postID, nil
}

func toComment(c *entities.Comment) domain.Comment {
	return domain.Comment{
		ID:        c.ID.String(),
		PostID:    c.PostID,
		Content:   c.Content,
		EditedAt:  c.EditedAt,
		CreatedAt: c.CreatedAt,
		Author:    domain.ToPublicUserPtr(c.User),
	}
}

func (s *contentService) ListArticles(ctx context.Context, page, pageSize int, search string) (domain.ArticlePage, error) {
	if s.cms == nil {
		return domain.ArticlePage{}, domain.ErrCMSNotConfigured
	}
	return s.cms.ListArticles(ctx, page, pageSize, search)
}

func (s *contentService) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	postID, err := normalizePostID(postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.contentRepository.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, toComment(c))
	}
	return out, nil
}

func (s *contentService) AddComment(ctx context.Context, postID, userID, content string) (domain.Comment, error) {
	postID, err := normalizePostID(postID)
	if err != nil {
		return domain.Comment{}, err
	}
	content, err = normalizeComment(content)
	if err != nil {
		return domain.Comment{}, err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return domain.Comment{}, domain.ErrUserNotFound
	}
	author, err := s.userRepository.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Comment{}, domain.ErrUserNotFound
		}
		return domain.Comment{}, err
	}

	comment := &entities.Comment{
		PostID:  postID,
		UserID:  author.ID,
		Content: content,
	}
	if err := s.contentRepository.CreateComment(ctx, comment); err != nil {
		return domain.Comment{}, err
	}
	comment.User = author
	return toComment(comment), nil
}

func (s *contentService) ownComment(ctx context.Context, commentID, userID string) (*entities.Comment, error) {
	id, err := uuid.Parse(commentID)
	if err != nil {
		return nil, domain.ErrCommentNotFound
	}
	comment, err := s.contentRepository.GetCommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}
	if comment.UserID.String() != userID {
		return nil, domain.ErrCommentNotOwner
	}
	return comment, nil
}

func (s *contentService) EditComment(ctx context.Context, commentID, userID, content string) (domain.Comment, error) {
	content, err := normalizeComment(content)
	if err != nil {
		return domain.Comment{}, err
	}
	comment, err := s.ownComment(ctx, commentID, userID)
	if err != nil {
		return domain.Comment{}, err
	}

	now := time.Now()
	comment.Content = content
	comment.EditedAt = &now
	if err := s.contentRepository.UpdateComment(ctx, comment); err != nil {
		return domain.Comment{}, err
	}
	return toComment(comment), nil
}

func (s *contentService) DeleteComment(ctx context.Context, commentID, userID string) error {
	comment, err := s.ownComment(ctx, commentID, userID)
	if err != nil {
		return err
	}
	return s.contentRepository.DeleteComment(ctx, comment.ID)
}

func (s *contentService) ToggleLike(ctx context.Context, postID, userID string) (domain.ToggleLikeResponse, error) {
	postID, err := normalizePostID(postID)
	if err != nil {
		return domain.ToggleLikeResponse{}, err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return domain.ToggleLikeResponse{}, domain.ErrUserNotFound
	}

	liked, count, err := s.contentRepository.ToggleLike(ctx, postID, uid)
	if err != nil {
		return domain.ToggleLikeResponse{}, err
	}
	transition := domain.LikeTransitionUnliked
	if liked {
		transition = domain.LikeTransitionLiked
	}
	return domain.ToggleLikeResponse{Transition: transition, Count: count}, nil
}

func (s *contentService) LikeSummary(ctx context.Context, postID, userID string) (domain.LikeSummary, error) {
	postID, err := normalizePostID(postID)
	if err != nil {
		return domain.LikeSummary{}, err
	}
	count, err := s.contentRepository.CountLikes(ctx, postID)
	if err != nil {
		return domain.LikeSummary{}, err
	}

	summary := domain.LikeSummary{Count: count}
	if uid, err := uuid.Parse(userID); err == nil {
		summary.Liked, err = s.contentRepository.HasLiked(ctx, postID, uid)
		if err != nil {
			return domain.LikeSummary{}, err
		}
	}
	return summary, nil
}
