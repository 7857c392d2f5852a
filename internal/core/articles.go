package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/auth"
	"github.com/siahsang/conduit/internal/filter"
	"github.com/siahsang/conduit/internal/utils/collectionutils"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/models"
)

var (
	ErrDuplicatedSlug = xerrors.Message("Duplicate slug")
	ErrForbidden      = xerrors.Message("Operation not permitted for this user")
)

// articleColumns selects an article row with its favorites count derived
// from edge-table membership. The count is never stored, so it cannot drift
// from the favorite set.
const articleColumns = `
	a.id, a.slug, a.title, a.description, a.body, a.author_id,
	a.created_at, a.updated_at,
	(SELECT COUNT(*) FROM favorite_articles f WHERE f.article_id = a.id) AS favorites_count
`

func scanArticle(rows *sql.Rows) (*models.Article, error) {
	article := &models.Article{}
	if err := rows.Scan(
		&article.ID,
		&article.Slug,
		&article.Title,
		&article.Description,
		&article.Body,
		&article.AuthorID,
		&article.CreatedAt,
		&article.UpdatedAt,
		&article.FavoritesCount,
	); err != nil {
		return nil, xerrors.New(err)
	}
	return article, nil
}

// MakeSlug derives the URL-safe identifier from a title. The slug is fixed
// at creation time; later title edits never touch it.
func MakeSlug(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))

	slug = strings.ReplaceAll(slug, " ", "-")
	replacements := []string{".", ",", "!", "?", ":", ";", "'", "\"", "(", ")", "[", "]", "{", "}", "/", "\\"}
	for _, char := range replacements {
		slug = strings.ReplaceAll(slug, char, "")
	}

	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	slug = strings.Trim(slug, "-")

	return slug
}

// CreateArticle inserts the article and its tag links as one transaction.
// The tag list keeps first-appearance order with duplicates removed.
func (c *Core) CreateArticle(ctx context.Context, article *models.Article, tagNames []string) (*models.Article, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*models.Article, error) {
		insertSQL := `
			INSERT INTO articles (slug, title, description, body, author_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING id, created_at, updated_at
		`

		now := time.Now()
		created, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, txCtx, insertSQL, func(rows *sql.Rows) (*models.Article, error) {
			if err := rows.Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt); err != nil {
				return nil, xerrors.New(err)
			}
			return article, nil
		}, article.Slug, article.Title, article.Description, article.Body, article.AuthorID, now)

		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return nil, xerrors.New(ErrDuplicatedSlug)
			}
			return nil, xerrors.New(err)
		}

		tags, err := c.UpsertTags(txCtx, tagNames)
		if err != nil {
			return nil, xerrors.New(err)
		}

		if err := c.linkArticleTags(txCtx, created.ID, tags); err != nil {
			return nil, xerrors.New(err)
		}

		created.TagList = make([]string, len(tags))
		for i, tag := range tags {
			created.TagList[i] = tag.Name
		}

		return created, nil
	})
}

// GetArticleBySlug loads the article together with its tag list, its full
// comment list in insertion order, and the derived favorites count.
func (c *Core) GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM articles a
		WHERE a.slug = $1
	`, articleColumns)

	article, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanArticle, slug)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	if err := c.loadArticleAssociations(ctx, article); err != nil {
		return nil, xerrors.New(err)
	}

	return article, nil
}

func (c *Core) loadArticleAssociations(ctx context.Context, article *models.Article) error {
	tagsByArticle, err := c.TagsByArticleIDs(ctx, []int64{article.ID})
	if err != nil {
		return err
	}
	article.TagList = tagsByArticle[article.ID]
	if article.TagList == nil {
		article.TagList = []string{}
	}

	comments, err := c.CommentsByArticleID(ctx, article.ID)
	if err != nil {
		return err
	}
	article.Comments = comments

	return nil
}

// UpdateArticle applies the non-nil fields and bumps updated_at. Only the
// owner may update; the slug stays what it was at creation even when the
// title changes.
func (c *Core) UpdateArticle(ctx context.Context, user *auth.User, slug string, title, description, body *string) (*models.Article, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*models.Article, error) {
		article, err := c.GetArticleBySlug(txCtx, slug)
		if err != nil {
			return nil, xerrors.New(err)
		}

		if article.AuthorID != user.ID {
			return nil, xerrors.New(ErrForbidden)
		}

		if title != nil {
			article.Title = *title
		}
		if description != nil {
			article.Description = *description
		}
		if body != nil {
			article.Body = *body
		}

		updateSQL := `
			UPDATE articles
			SET title = $1, description = $2, body = $3, updated_at = $4
			WHERE id = $5
			RETURNING updated_at
		`

		_, err = databaseutils.ExecuteSingleQuery(c.sqlTemplate, txCtx, updateSQL, func(rows *sql.Rows) (*models.Article, error) {
			if err := rows.Scan(&article.UpdatedAt); err != nil {
				return nil, xerrors.New(err)
			}
			return article, nil
		}, article.Title, article.Description, article.Body, time.Now(), article.ID)

		if err != nil {
			return nil, xerrors.New(err)
		}

		return article, nil
	})
}

// DeleteArticle removes the article; its comments, tag links and favorite
// edges go with it through the schema's cascades. Only the owner may delete.
func (c *Core) DeleteArticle(ctx context.Context, user *auth.User, slug string) error {
	return c.session.DoTransactionally(ctx, func(txCtx context.Context) error {
		article, err := c.GetArticleBySlug(txCtx, slug)
		if err != nil {
			return xerrors.New(err)
		}

		if article.AuthorID != user.ID {
			return xerrors.New(ErrForbidden)
		}

		deleteSQL := `DELETE FROM articles WHERE id = $1`
		if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, txCtx, deleteSQL, article.ID); err != nil {
			return xerrors.New(err)
		}

		c.log.Info("article deleted", "slug", slug, "article_id", article.ID)
		return nil
	})
}

// GetArticles lists articles most recent first, optionally filtered by tag,
// author username, or the username of a user who favorited them. Tag lists
// are batch-loaded afterwards to keep the listing free of per-row queries.
func (c *Core) GetArticles(ctx context.Context, filters filter.Filter, tag, author, favoritedBy string) ([]*models.Article, error) {
	var conditions []string
	var args []any

	if tag != "" {
		args = append(args, tag)
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM article_tags at
			JOIN tags t ON t.id = at.tag_id
			WHERE at.article_id = a.id AND t.name = $%d
		)`, len(args)))
	}

	if author != "" {
		args = append(args, author)
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM users u
			WHERE u.id = a.author_id AND u.username = $%d
		)`, len(args)))
	}

	if favoritedBy != "" {
		args = append(args, favoritedBy)
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM favorite_articles f
			JOIN users u ON u.id = f.user_id
			WHERE f.article_id = a.id AND u.username = $%d
		)`, len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filters.Limit, filters.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM articles a
		%s
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $%d OFFSET $%d
	`, articleColumns, whereClause, len(args)-1, len(args))

	articles, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanArticle, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}

	if err := c.attachTagLists(ctx, articles); err != nil {
		return nil, xerrors.New(err)
	}

	return articles, nil
}

// GetFeed lists articles authored by users the viewer follows, most recent
// first.
func (c *Core) GetFeed(ctx context.Context, viewer *auth.User, filters filter.Filter) ([]*models.Article, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM articles a
		JOIN followers fl ON fl.user_id = a.author_id AND fl.follower_id = $1
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $2 OFFSET $3
	`, articleColumns)

	articles, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanArticle, viewer.ID, filters.Limit, filters.Offset)
	if err != nil {
		return nil, xerrors.New(err)
	}

	if err := c.attachTagLists(ctx, articles); err != nil {
		return nil, xerrors.New(err)
	}

	return articles, nil
}

func (c *Core) attachTagLists(ctx context.Context, articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	articleIDs := make([]int64, len(articles))
	for i, article := range articles {
		articleIDs[i] = article.ID
	}

	tagsByArticle, err := c.TagsByArticleIDs(ctx, articleIDs)
	if err != nil {
		return err
	}

	for _, article := range articles {
		article.TagList = collectionutils.GetOrDefault(tagsByArticle, article.ID, []string{})
	}

	return nil
}
