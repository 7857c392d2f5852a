package views

import (
	"time"

	"github.com/siahsang/conduit/internal/auth"
	"github.com/siahsang/conduit/models"
)

// ArticleView is the serialization-ready projection of an article for one
// viewer. Comments are attached verbatim in stored order; pagination of
// comments is not this layer's concern. Author is always a ProfileView,
// never the raw user.
type ArticleView struct {
	Slug           string           `json:"slug"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Body           string           `json:"body"`
	TagList        []string         `json:"tagList"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	Favorited      bool             `json:"favorited"`
	FavoritesCount int64            `json:"favoritesCount"`
	Author         ProfileView      `json:"author"`
	Comments       []models.Comment `json:"comments,omitempty"`
}

// newArticleView is the single construction path every entry point funnels
// through. FavoritesCount comes straight off the article snapshot, so
// projection stays O(1) per article regardless of popularity.
func newArticleView(article *models.Article, author ProfileView, favorited bool) ArticleView {
	return ArticleView{
		Slug:           article.Slug,
		Title:          article.Title,
		Description:    article.Description,
		Body:           article.Body,
		TagList:        article.TagList,
		CreatedAt:      article.CreatedAt,
		UpdatedAt:      article.UpdatedAt,
		Favorited:      favorited,
		FavoritesCount: article.FavoritesCount,
		Author:         author,
		Comments:       article.Comments,
	}
}

// ArticleViewForViewer projects an article for a generic, possibly
// anonymous viewer. Favorited is false for a nil viewer.
func ArticleViewForViewer(article *models.Article, author ProfileView, viewer *auth.User) ArticleView {
	favorited := viewer != nil && viewer.IsFavoriteArticle(article.ID)
	return newArticleView(article, author, favorited)
}

// OwnArticleView projects an article for its own author. The author profile
// goes through the self-view rule, while Favorited still reflects genuine
// self-favoriting, which behaves like any other viewer's favorite.
func OwnArticleView(article *models.Article, owner *auth.User) ArticleView {
	return ArticleViewForViewer(article, NewOwnProfileView(owner), owner)
}

// UnfavoredArticleView projects an article with no viewer context at all,
// e.g. a public listing without authentication. Favorited is forced false
// without consulting any user's favorite set.
func UnfavoredArticleView(article *models.Article, author ProfileView) ArticleView {
	return newArticleView(article, author, false)
}
