package handlers

import (
	"net/http"

	"github.com/ghuser/appdirectory/pkg/errhttp"
	"github.com/ghuser/appdirectory/pkg/httpx"
	appsvcs "github.com/ghuser/appdirectory/services/application/application/services"
)

// ListApplicationsHandler handles GET /applications requests.
type ListApplicationsHandler struct {
	svc *appsvcs.Services
}

// NewListApplicationsHandler returns a ListApplicationsHandler backed by the given services.
func NewListApplicationsHandler(svc *appsvcs.Services) *ListApplicationsHandler {
	return &ListApplicationsHandler{svc: svc}
}

// Execute lists applications, optionally filtered by name.
//
//	@Summary		List applications
//	@Description	Returns applications whose name contains q (case-insensitive), ordered by name. Omit q to list all.
//	@Tags			applications
//	@Produce		json
//	@Param			q	query		string	false	"Name substring"
//	@Success		200	{array}		ApplicationResponse
//	@Failure		400	{object}	httpx.ErrorBody
//	@Failure		500	{object}	httpx.ErrorBody
//	@Router			/applications [get]
func (h *ListApplicationsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.Application.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := make([]ApplicationResponse, len(apps))
	for i, app := range apps {
		resp[i] = toResponse(app)
	}
	httpx.JSON(w, http.StatusOK, resp)
}
