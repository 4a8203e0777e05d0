package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/appdirectory/pkg/errhttp"
	"github.com/ghuser/appdirectory/pkg/httpx"
	appsvcs "github.com/ghuser/appdirectory/services/application/application/services"
)

// DeleteApplicationHandler handles DELETE /applications/{id} requests.
type DeleteApplicationHandler struct {
	svc *appsvcs.Services
}

// NewDeleteApplicationHandler returns a DeleteApplicationHandler backed by the given services.
func NewDeleteApplicationHandler(svc *appsvcs.Services) *DeleteApplicationHandler {
	return &DeleteApplicationHandler{svc: svc}
}

// Execute deletes an application by id. Deleting an unknown id is a
// database error (400), not a 404.
//
//	@Summary		Delete application
//	@Tags			applications
//	@Produce		json
//	@Param			id	path	string	true	"Application id"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorBody	"Database error (unknown id)"
//	@Router			/applications/{id} [delete]
func (h *DeleteApplicationHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		errhttp.WriteError(w, errhttp.NewStatusError(http.StatusBadRequest, "Invalid path parameter %q", "id"))
		return
	}
	if err := h.svc.Application.Delete(r.Context(), id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}

// pathParam returns the decoded value of the chi URL parameter key. chi
// matches on r.URL.RawPath when it is set and leaves escapes such as %2F in
// the parameter.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}
