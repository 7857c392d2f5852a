package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/siahsang/conduit/internal/core"
	"github.com/siahsang/conduit/internal/validator"
	"github.com/siahsang/conduit/internal/views"
)

func profileResponse(profile views.ProfileView) envelope {
	return envelope{"profile": profile}
}

func (app *application) getProfile(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	username := params.ByName("username")

	profile, err := app.core.GetProfile(r.Context(), username, app.currentUser(r))
	if err != nil {
		app.coreErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, profileResponse(profile), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) followUser(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	username := params.ByName("username")

	profile, err := app.core.FollowUser(r.Context(), app.currentUser(r), username)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrSelfFollow):
			v := validator.New()
			v.AddError("username", "You cannot follow yourself")
			app.unprocessableEntityResponse(w, r, &AppError{ErrorDetails: v.Errors, ErrorStack: err})
		default:
			app.coreErrorResponse(w, r, err)
		}
		return
	}

	if err := app.writeJSON(w, http.StatusOK, profileResponse(profile), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) unfollowUser(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	username := params.ByName("username")

	profile, err := app.core.UnfollowUser(r.Context(), app.currentUser(r), username)
	if err != nil {
		app.coreErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, profileResponse(profile), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}
