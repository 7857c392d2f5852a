package views

import (
	"time"

	"github.com/siahsang/conduit/models"
)

type CommentView struct {
	ID        int64       `json:"id"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Body      string      `json:"body"`
	Author    ProfileView `json:"author"`
}

// NewCommentView attaches the author profile to a comment for display. The
// profile is built by the caller with NewProfileView, so the self-view rule
// applies when the viewer authored the comment.
func NewCommentView(comment *models.Comment, author ProfileView) CommentView {
	return CommentView{
		ID:        comment.ID,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
		Body:      comment.Body,
		Author:    author,
	}
}
