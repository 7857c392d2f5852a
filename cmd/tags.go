package main

import (
	"net/http"
)

func (app *application) getTags(w http.ResponseWriter, r *http.Request) {
	tags, err := app.core.GetTags(r.Context())
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"tags": tags}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}
