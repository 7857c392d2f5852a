package core

import (
	"context"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/auth"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/models"
)

// FavoriteArticle records the article in the user's favorite set. A repeat
// favorite is a no-op, so the membership-derived count can never be bumped
// twice for one user. The returned article carries the fresh count.
func (c *Core) FavoriteArticle(ctx context.Context, user *auth.User, slug string) (*models.Article, error) {
	article, err := c.GetArticleBySlug(ctx, slug)
	if err != nil {
		return nil, xerrors.New(err)
	}

	insertSQL := `
		INSERT INTO favorite_articles (user_id, article_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, article_id) DO NOTHING
	`

	affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, insertSQL, user.ID, article.ID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	user.FavoriteArticle(article.ID)
	article.FavoritesCount += affected
	return article, nil
}

// UnfavoriteArticle removes the article from the user's favorite set;
// removing an absent favorite is a no-op.
func (c *Core) UnfavoriteArticle(ctx context.Context, user *auth.User, slug string) (*models.Article, error) {
	article, err := c.GetArticleBySlug(ctx, slug)
	if err != nil {
		return nil, xerrors.New(err)
	}

	deleteSQL := `
		DELETE FROM favorite_articles
		WHERE user_id = $1 AND article_id = $2
	`

	affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, deleteSQL, user.ID, article.ID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	user.UnfavoriteArticle(article.ID)
	article.FavoritesCount -= affected
	return article, nil
}
