package handlers

import "github.com/ghuser/appdirectory/services/application/domain/models"

// CreateApplicationRequest is the request body for POST /applications.
type CreateApplicationRequest struct {
	ID      string   `json:"id"      example:"a1"`
	Name    string   `json:"name"    example:"Alpha"`
	Domains []string `json:"domains" example:"alpha.com,alpha.io"`
} // @name CreateApplicationRequest

// ApplicationResponse is the wire form of an Application.
type ApplicationResponse struct {
	ID      string   `json:"id"      example:"a1"`
	Name    string   `json:"name"    example:"Alpha"`
	Domains []string `json:"domains" example:"alpha.com"`
} // @name ApplicationResponse

func toResponse(app *models.Application) ApplicationResponse {
	domains := app.Domains
	if domains == nil {
		domains = []string{}
	}
	return ApplicationResponse{ID: app.ID, Name: app.Name, Domains: domains}
}
