package core

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/auth"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/models"
)

func scanComment(rows *sql.Rows) (models.Comment, error) {
	var comment models.Comment
	if err := rows.Scan(
		&comment.ID,
		&comment.Body,
		&comment.AuthorID,
		&comment.ArticleID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return models.Comment{}, xerrors.New(err)
	}
	return comment, nil
}

func (c *Core) CreateComment(ctx context.Context, author *auth.User, slug string, body string) (*models.Comment, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*models.Comment, error) {
		article, err := c.GetArticleBySlug(txCtx, slug)
		if err != nil {
			return nil, xerrors.New(err)
		}

		insertSQL := `
			INSERT INTO comments (body, author_id, article_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			RETURNING id, body, author_id, article_id, created_at, updated_at
		`

		comment, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, txCtx, insertSQL, scanComment,
			body, author.ID, article.ID, time.Now())
		if err != nil {
			return nil, xerrors.New(err)
		}

		return &comment, nil
	})
}

// CommentsByArticleID returns the article's comments in insertion order.
func (c *Core) CommentsByArticleID(ctx context.Context, articleID int64) ([]models.Comment, error) {
	query := `
		SELECT id, body, author_id, article_id, created_at, updated_at
		FROM comments
		WHERE article_id = $1
		ORDER BY id
	`

	comments, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanComment, articleID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return comments, nil
}

func (c *Core) GetCommentByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := `
		SELECT id, body, author_id, article_id, created_at, updated_at
		FROM comments
		WHERE id = $1
	`

	comment, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanComment, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return &comment, nil
}

// DeleteComment removes a single comment. The comment's author may delete
// it, and so may the owner of the article it sits on; anyone else is
// forbidden, which is reported distinctly from the comment not existing.
func (c *Core) DeleteComment(ctx context.Context, user *auth.User, slug string, commentID int64) error {
	return c.session.DoTransactionally(ctx, func(txCtx context.Context) error {
		article, err := c.GetArticleBySlug(txCtx, slug)
		if err != nil {
			return xerrors.New(err)
		}

		comment, err := c.GetCommentByID(txCtx, commentID)
		if err != nil {
			return xerrors.New(err)
		}

		if comment.ArticleID != article.ID {
			return xerrors.New(NoRecordFound)
		}

		if comment.AuthorID != user.ID && article.AuthorID != user.ID {
			return xerrors.New(ErrForbidden)
		}

		deleteSQL := `DELETE FROM comments WHERE id = $1`
		if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, txCtx, deleteSQL, comment.ID); err != nil {
			return xerrors.New(err)
		}

		return nil
	})
}
