package main

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/auth"
	"github.com/siahsang/conduit/internal/utils/collectionutils"
	"github.com/siahsang/conduit/internal/utils/functional"
	"github.com/siahsang/conduit/internal/validator"
	"github.com/siahsang/conduit/internal/views"
	"github.com/siahsang/conduit/models"
)

func commentResponse(view views.CommentView) envelope {
	return envelope{"comment": view}
}

func (app *application) createComment(w http.ResponseWriter, r *http.Request) {
	type createCommentPayload struct {
		Body string `json:"body"`
	}

	type CreateCommentRequest struct {
		createCommentPayload `json:"comment"`
	}

	var requestPayload CreateCommentRequest

	if err := app.readJSON(w, r, &requestPayload); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	v.CheckNotBlank(requestPayload.Body, "body", "must be provided")
	if !v.IsValid() {
		app.unprocessableEntityResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	params := httprouter.ParamsFromContext(r.Context())
	slug := params.ByName("slug")
	author := app.currentUser(r)

	comment, err := app.core.CreateComment(r.Context(), author, slug, requestPayload.Body)
	if err != nil {
		app.coreErrorResponse(w, r, err)
		return
	}

	view := views.NewCommentView(comment, views.NewOwnProfileView(author))
	if err := app.writeJSON(w, http.StatusCreated, commentResponse(view), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getComments(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	slug := params.ByName("slug")

	article, err := app.core.GetArticleBySlug(r.Context(), slug)
	if err != nil {
		app.coreErrorResponse(w, r, err)
		return
	}

	authorIDs := functional.Map(article.Comments, func(comment models.Comment) int64 {
		return comment.AuthorID
	})

	authors, err := app.core.GetUsersByIdList(r.Context(), authorIDs)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	authorByID := collectionutils.Associate(authors, func(user *auth.User) (int64, *auth.User) {
		return user.ID, user
	})

	viewer := app.currentUser(r)
	commentViews := make([]views.CommentView, 0, len(article.Comments))
	for _, comment := range article.Comments {
		author, exists := authorByID[comment.AuthorID]
		if !exists {
			app.internalErrorResponse(w, r, xerrors.Newf("author %d missing for comment %d", comment.AuthorID, comment.ID))
			return
		}
		commentViews = append(commentViews, views.NewCommentView(&comment, views.NewProfileView(author, viewer)))
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"comments": commentViews}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) deleteComment(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	slug := params.ByName("slug")

	commentID, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	if err := app.core.DeleteComment(r.Context(), app.currentUser(r), slug, commentID); err != nil {
		app.coreErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
