package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/utils/collectionutils"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/internal/utils/stringutils"
	"github.com/siahsang/conduit/models"
)

// UpsertTags inserts the named tags, reusing rows that already exist. The
// result keeps the first-appearance order of names with duplicates removed.
// Runs on the caller's executor, so it joins an enclosing transaction.
func (c *Core) UpsertTags(ctx context.Context, names []string) ([]models.Tag, error) {
	seen := make(map[string]bool, len(names))
	var uniqueNames []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		uniqueNames = append(uniqueNames, name)
	}

	if len(uniqueNames) == 0 {
		return []models.Tag{}, nil
	}

	// INSERT INTO tags (name) VALUES ($1), ($2), ... with an upsert so the
	// RETURNING clause yields ids for pre-existing names too.
	valueStrings := make([]string, len(uniqueNames))
	valueArgs := make([]any, len(uniqueNames))
	for i, name := range uniqueNames {
		valueStrings[i] = fmt.Sprintf("($%d)", i+1)
		valueArgs[i] = name
	}

	insertSQL := fmt.Sprintf(`
		INSERT INTO tags (name)
		VALUES %s
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`, strings.Join(valueStrings, ", "))

	returnedTags, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, insertSQL, func(rows *sql.Rows) (models.Tag, error) {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return models.Tag{}, xerrors.New(err)
		}
		return tag, nil
	}, valueArgs...)

	if err != nil {
		return nil, xerrors.New(err)
	}

	tagByName := collectionutils.Associate(returnedTags, func(tag models.Tag) (string, models.Tag) {
		return tag.Name, tag
	})

	resultTags := make([]models.Tag, 0, len(uniqueNames))
	for _, name := range uniqueNames {
		tag, exists := tagByName[name]
		if !exists {
			return nil, xerrors.Newf("tag %s not returned by upsert", name)
		}
		resultTags = append(resultTags, tag)
	}

	return resultTags, nil
}

func (c *Core) linkArticleTags(ctx context.Context, articleID int64, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	valueStrings := make([]string, len(tags))
	valueArgs := make([]any, 0, len(tags)+1)
	valueArgs = append(valueArgs, articleID)
	for i, tag := range tags {
		valueStrings[i] = fmt.Sprintf("($1, $%d)", i+2)
		valueArgs = append(valueArgs, tag.ID)
	}

	insertSQL := fmt.Sprintf(`
		INSERT INTO article_tags (article_id, tag_id)
		VALUES %s
		ON CONFLICT (article_id, tag_id) DO NOTHING
	`, strings.Join(valueStrings, ", "))

	if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, insertSQL, valueArgs...); err != nil {
		return xerrors.New(err)
	}

	return nil
}

// GetTags returns every tag name in use, alphabetically.
func (c *Core) GetTags(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM tags
		ORDER BY name
	`

	tags, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (string, error) {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", xerrors.New(err)
		}
		return name, nil
	})

	if err != nil {
		return nil, xerrors.New(err)
	}

	return tags, nil
}

// TagsByArticleIDs batch-loads tag names for the given articles, keyed by
// article id, each list in a deterministic order.
func (c *Core) TagsByArticleIDs(ctx context.Context, articleIDs []int64) (map[int64][]string, error) {
	if len(articleIDs) == 0 {
		return map[int64][]string{}, nil
	}

	placeholders, args := stringutils.INClause(articleIDs, 1)
	query := fmt.Sprintf(`
		SELECT at.article_id, t.name
		FROM article_tags at
		JOIN tags t ON t.id = at.tag_id
		WHERE at.article_id IN (%s)
		ORDER BY at.article_id, at.tag_id
	`, strings.Join(placeholders, ", "))

	type articleTag struct {
		articleID int64
		name      string
	}

	articleTags, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (articleTag, error) {
		var at articleTag
		if err := rows.Scan(&at.articleID, &at.name); err != nil {
			return articleTag{}, xerrors.New(err)
		}
		return at, nil
	}, args...)

	if err != nil {
		return nil, xerrors.New(err)
	}

	grouped := collectionutils.GroupBy(articleTags, func(at articleTag) int64 {
		return at.articleID
	})

	tagsByArticle := make(map[int64][]string, len(grouped))
	for articleID, items := range grouped {
		names := make([]string, len(items))
		for i, item := range items {
			names[i] = item.name
		}
		tagsByArticle[articleID] = names
	}

	return tagsByArticle, nil
}
