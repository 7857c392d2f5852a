package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/siahsang/conduit/models"
)

func TestNewCommentView(t *testing.T) {
	commentAuthor := newUser(2, "bob")
	comment := &models.Comment{
		ID:        7,
		Body:      "nice article",
		AuthorID:  commentAuthor.ID,
		ArticleID: 10,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	t.Run("viewer follows the comment author", func(t *testing.T) {
		viewer := newUser(1, "alice")
		viewer.FollowingIDs = []int64{commentAuthor.ID}

		view := NewCommentView(comment, NewProfileView(commentAuthor, viewer))

		assert.Equal(t, comment.ID, view.ID)
		assert.Equal(t, comment.Body, view.Body)
		assert.True(t, view.Author.Following)
	})

	t.Run("viewer is the comment author", func(t *testing.T) {
		// Same self-view rule as profiles: authors do not follow themselves.
		view := NewCommentView(comment, NewProfileView(commentAuthor, commentAuthor))

		assert.False(t, view.Author.Following)
		assert.Equal(t, "bob", view.Author.Username)
	})
}
