package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/ghuser/appdirectory/pkg/errhttp"
	"github.com/ghuser/appdirectory/pkg/httpx"
	appsvcs "github.com/ghuser/appdirectory/services/application/application/services"
)

// PostApplicationHandler handles POST /applications requests.
type PostApplicationHandler struct {
	svc *appsvcs.Services
}

// NewPostApplicationHandler returns a PostApplicationHandler backed by the given services.
func NewPostApplicationHandler(svc *appsvcs.Services) *PostApplicationHandler {
	return &PostApplicationHandler{svc: svc}
}

// Execute creates a new application.
//
//	@Summary		Create application
//	@Description	Validates and stores a new application. The id is chosen by the caller.
//	@Tags			applications
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateApplicationRequest	true	"Application to create"
//	@Success		201		{object}	ApplicationResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Invalid JSON or database error (duplicate id)"
//	@Failure		413		{object}	httpx.ErrorBody
//	@Failure		422		{object}	httpx.ErrorBody	"Invalid data"
//	@Router			/applications [post]
func (h *PostApplicationHandler) Execute(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			errhttp.WriteError(w, errhttp.NewStatusError(http.StatusRequestEntityTooLarge, "Request body too large"))
			return
		}
		errhttp.WriteError(w, errhttp.NewStatusError(http.StatusBadRequest, "Could not read request body"))
		return
	}
	if !gjson.ValidBytes(body) {
		errhttp.WriteError(w, errhttp.NewStatusError(http.StatusBadRequest, "Invalid JSON"))
		return
	}

	app, err := h.svc.Application.Create(r.Context(), body)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(app))
}
