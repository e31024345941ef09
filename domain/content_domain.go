package domain

import (
	"encoding/json"
	"time"
)

var (
	MessageSuccessGetArticles   = "articles retrieved successfully"
	MessageSuccessGetComments   = "comments retrieved successfully"
	MessageSuccessAddComment    = "comment added successfully"
	MessageSuccessEditComment   = "comment updated successfully"
	MessageSuccessDeleteComment = "comment deleted successfully"
	MessageSuccessToggleLike    = "like toggled successfully"
	MessageSuccessGetLikes      = "likes retrieved successfully"

	MessageFailedGetArticles   = "failed to retrieve articles"
	MessageFailedGetComments   = "failed to retrieve comments"
	MessageFailedAddComment    = "failed to add comment"
	MessageFailedEditComment   = "failed to update comment"
	MessageFailedDeleteComment = "failed to delete comment"
	MessageFailedToggleLike    = "failed to toggle like"
	MessageFailedGetLikes      = "failed to retrieve likes"

	ErrCommentNotFound     = newError(KindNotFound, "comment not found")
	ErrCommentEmpty        = newError(KindValidation, "comment cannot be empty")
	ErrCommentTooLong      = newError(KindValidation, "comment must be at most 500 characters")
	ErrCommentNotOwner     = newError(KindAuthorization, "only the author can change this comment")
	ErrPostIDRequired      = newError(KindValidation, "post id is required")
	ErrCMSNotConfigured    = newError(KindExternalService, "content service not configured")
	ErrInvalidArticlesPage = newError(KindValidation, "invalid pagination parameters")
)

const (
	MaxCommentLength = 500

	LikeTransitionLiked   = "liked"
	LikeTransitionUnliked = "unliked"
)

type (
	CommentRequest struct {
		Content string `json:"content" validate:"required"`
	}

	Comment struct {
		ID        string      `json:"id"`
		PostID    string      `json:"post_id"`
		Content   string      `json:"content"`
		EditedAt  *time.Time  `json:"edited_at,omitempty"`
		CreatedAt time.Time   `json:"created_at"`
		Author    *PublicUser `json:"author"`
	}

	ToggleLikeResponse struct {
		Transition string `json:"transition"`
		Count      int64  `json:"count"`
	}

	LikeSummary struct {
		Count int64 `json:"count"`
		Liked bool  `json:"liked"`
	}

	Pagination struct {
		Page      int `json:"page"`
		PageSize  int `json:"pageSize"`
		PageCount int `json:"pageCount"`
		Total     int `json:"total"`
	}

	// ArticlePage mirrors the CMS envelope; articles are passed through untouched.
	ArticlePage struct {
		Data []json.RawMessage `json:"data"`
		Meta struct {
			Pagination Pagination `json:"pagination"`
		} `json:"meta"`
	}
)
