package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/auth"
	"github.com/siahsang/conduit/internal/core"
	"github.com/siahsang/conduit/internal/filter"
	"github.com/siahsang/conduit/internal/utils/collectionutils"
	"github.com/siahsang/conduit/internal/utils/functional"
	"github.com/siahsang/conduit/internal/validator"
	"github.com/siahsang/conduit/internal/views"
	"github.com/siahsang/conduit/models"
)

func articleResponse(view views.ArticleView) envelope {
	return envelope{"article": view}
}

// buildArticleView picks the projection entry point matching the viewer's
// relationship to the article: own-article for the author, viewer-aware for
// everyone logged in, anonymous otherwise.
func (app *application) buildArticleView(ctx context.Context, article *models.Article, viewer *auth.User) (views.ArticleView, error) {
	if viewer != nil && viewer.ID == article.AuthorID {
		return views.OwnArticleView(article, viewer), nil
	}

	author, err := app.core.GetUserByID(ctx, article.AuthorID)
	if err != nil {
		return views.ArticleView{}, xerrors.New(err)
	}

	authorProfile := views.NewProfileView(author, viewer)
	if viewer == nil {
		return views.UnfavoredArticleView(article, authorProfile), nil
	}
	return views.ArticleViewForViewer(article, authorProfile, viewer), nil
}

// multiArticleResponse builds the listing envelope with one batched author
// lookup, whatever the page size.
func (app *application) multiArticleResponse(ctx context.Context, articles []*models.Article, viewer *auth.User) (envelope, error) {
	authorIDs := functional.Map(articles, func(article *models.Article) int64 {
		return article.AuthorID
	})

	authors, err := app.core.GetUsersByIdList(ctx, authorIDs)
	if err != nil {
		return nil, xerrors.New(err)
	}

	authorByID := collectionutils.Associate(authors, func(user *auth.User) (int64, *auth.User) {
		return user.ID, user
	})

	articleViews := make([]views.ArticleView, 0, len(articles))
	for _, article := range articles {
		author, exists := authorByID[article.AuthorID]
		if !exists {
			return nil, xerrors.Newf("author %d missing for article %q", article.AuthorID, article.Slug)
		}

		authorProfile := views.NewProfileView(author, viewer)
		if viewer == nil {
			articleViews = append(articleViews, views.UnfavoredArticleView(article, authorProfile))
		} else {
			articleViews = append(articleViews, views.ArticleViewForViewer(article, authorProfile, viewer))
		}
	}

	return envelope{
		"articles":      articleViews,
		"articlesCount": len(articleViews),
	}, nil
}

func (app *application) createArticle(w http.ResponseWriter, r *http.Request) {
	type createArticlePayload struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Body        string   `json:"body"`
		TagList     []string `json:"tagList"`
	}

	type CreateArticleRequest struct {
		createArticlePayload `json:"article"`
	}

	var requestPayload CreateArticleRequest

	if err := app.readJSON(w, r, &requestPayload); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	v.CheckNotBlank(requestPayload.Title, "title", "must be provided")
	v.CheckNotBlank(requestPayload.Description, "description", "must be provided")
	v.CheckNotBlank(requestPayload.Body, "body", "must be provided")
	for _, tag := range requestPayload.TagList {
		v.CheckNotBlank(tag, "tagList", "must not contain blank tags")
	}

	if !v.IsValid() {
		app.unprocessableEntityResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	user := app.currentUser(r)
	article, err := app.core.CreateArticle(r.Context(), &models.Article{
		Title:       requestPayload.Title,
		Description: requestPayload.Description,
		Body:        requestPayload.Body,
		Slug:        core.MakeSlug(requestPayload.Title),
		AuthorID:    user.ID,
	}, requestPayload.TagList)

	if err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicatedSlug):
			v.AddError("title", "An article with this title already exists")
			app.unprocessableEntityResponse(w, r, &AppError{ErrorDetails: v.Errors, ErrorStack: err})
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	view := views.OwnArticleView(article, user)
	if err := app.writeJSON(w, http.StatusCreated, articleResponse(view), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getArticle(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	slug := params.ByName("slug")

	// httprouter cannot register the static feed route next to the slug
	// wildcard, so it lands here.
	if slug == "feed" {
		app.requireAuthenticatedUser(app.getFeed)(w, r)
		return
	}

	article, err := app.core.GetArticleBySlug(r.Context(), slug)
	if err != nil {
		app.coreErrorResponse(w, r, err)
		return
	}

	view, err := app.buildArticleView(r.Context(), article, app.currentUser(r))
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, articleResponse(view), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) updateArticle(w http.ResponseWriter, r *http.Request) {
	type updateArticlePayload struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Body        *string `json:"body"`
	}

	type UpdateArticleRequest struct {
		updateArticlePayload `json:"article"`
	}

	var requestPayload UpdateArticleRequest

	if err := app.readJSON(w, r, &requestPayload); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	if requestPayload.Title != nil {
		v.CheckNotBlank(*requestPayload.Title, "title", "must not be blank")
	}
	if requestPayload.Description != nil {
		v.CheckNotBlank(*requestPayload.Description, "description", "must not be blank")
	}
	if requestPayload.Body != nil {
		v.CheckNotBlank(*requestPayload.Body, "body", "must not be blank")
	}

	if !v.IsValid() {
		app.unprocessableEntityResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	params := httprouter.ParamsFromContext(r.Context())
	slug := params.ByName("slug")
	user := app.currentUser(r)

	article, err := app.core.UpdateArticle(r.Context(), user, slug,
		requestPayload.Title, requestPayload.Description, requestPayload.Body)
	if err != nil {
		app.coreErrorResponse(w, r, err)
		return
	}

	view := views.OwnArticleView(article, user)
	if err := app.writeJSON(w, http.StatusOK, articleResponse(view), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) deleteArticle(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	slug := params.ByName("slug")

	if err := app.core.DeleteArticle(r.Context(), app.currentUser(r), slug); err != nil {
		app.coreErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) getArticles(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	query := r.URL.Query()
	tag := app.readString(query, "tag", "")
	author := app.readString(query, "author", "")
	favorited := app.readString(query, "favorited", "")

	limit := app.readInt(query, "limit", 20, v)
	offset := app.readInt(query, "offset", 0, v)

	filters := filter.NewFilter(limit, offset)
	filter.ValidateFilters(filters, v)
	if !v.IsValid() {
		app.unprocessableEntityResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	articles, err := app.core.GetArticles(r.Context(), filters, tag, author, favorited)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	response, err := app.multiArticleResponse(r.Context(), articles, app.currentUser(r))
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getFeed(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	query := r.URL.Query()

	limit := app.readInt(query, "limit", 20, v)
	offset := app.readInt(query, "offset", 0, v)

	filters := filter.NewFilter(limit, offset)
	filter.ValidateFilters(filters, v)
	if !v.IsValid() {
		app.unprocessableEntityResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	viewer := app.currentUser(r)
	articles, err := app.core.GetFeed(r.Context(), viewer, filters)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	response, err := app.multiArticleResponse(r.Context(), articles, viewer)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) favoriteArticle(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	slug := params.ByName("slug")
	user := app.currentUser(r)

	article, err := app.core.FavoriteArticle(r.Context(), user, slug)
	if err != nil {
		app.coreErrorResponse(w, r, err)
		return
	}

	view, err := app.buildArticleView(r.Context(), article, user)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, articleResponse(view), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) unfavoriteArticle(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	slug := params.ByName("slug")
	user := app.currentUser(r)

	article, err := app.core.UnfavoriteArticle(r.Context(), user, slug)
	if err != nil {
		app.coreErrorResponse(w, r, err)
		return
	}

	view, err := app.buildArticleView(r.Context(), article, user)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, articleResponse(view), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}
