package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/services"
	"github.com/siadin-id/siadin/pkg/application"
	"github.com/siadin-id/siadin/pkg/composables"
)

// AgencyAPIController exposes the agency lifecycle and the scoped listing
// gateway over REST.
type AgencyAPIController struct {
	app         application.Application
	basePath    string
	agencies    *services.AgencyService
	territories *services.JurisdictionService
	access      *services.AccessService
	query       *services.QueryService
}

func NewAgencyAPIController(app application.Application) application.Controller {
	return &AgencyAPIController{
		app:         app,
		basePath:    "/api/v1/agencies",
		agencies:    app.Service(&services.AgencyService{}).(*services.AgencyService),
		territories: app.Service(&services.JurisdictionService{}).(*services.JurisdictionService),
		access:      app.Service(&services.AccessService{}).(*services.AccessService),
		query:       app.Service(&services.QueryService{}).(*services.QueryService),
	}
}

func (c *AgencyAPIController) Key() string {
	return c.basePath
}

func (c *AgencyAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/access", c.resolveAccess).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/territories/available", c.availableTerritories).Methods(http.MethodGet)
}

func (c *AgencyAPIController) list(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	limit, offset := pageParams(r)
	params := &agency.FindParams{
		Search: r.URL.Query().Get("search"),
		Status: agency.Status(r.URL.Query().Get("status")),
		SortBy: agency.SortBy(r.URL.Query().Get("sort_by")),
		Desc:   r.URL.Query().Get("order") == "desc",
		Limit:  limit,
		Offset: offset,
	}
	result, err := c.query.ListAgencies(r.Context(), principal, params)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("list agencies failed")
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(result, newAgencyResponse))
}

func (c *AgencyAPIController) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	dto := &agency.CreateDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	created, err := c.agencies.Create(r.Context(), dto, principal)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAgencyResponse(created))
}

func (c *AgencyAPIController) get(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid agency id")
		return
	}
	allowed, err := c.access.CanView(r.Context(), principal, services.EntityAgency, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !allowed {
		// Reads must not reveal whether the agency exists.
		respondServiceError(w, agency.ErrNotFound)
		return
	}
	found, err := c.agencies.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAgencyResponse(found))
}

func (c *AgencyAPIController) update(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid agency id")
		return
	}
	dto := &agency.UpdateDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	updated, err := c.agencies.Update(r.Context(), id, dto, principal)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAgencyResponse(updated))
}

func (c *AgencyAPIController) delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid agency id")
		return
	}
	deleted, err := c.agencies.Delete(r.Context(), id, principal)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAgencyResponse(deleted))
}

func (c *AgencyAPIController) resolveAccess(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid agency id")
		return
	}
	relation, err := c.access.Resolve(r.Context(), principal.ID, services.EntityAgency, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relation)
}

func (c *AgencyAPIController) availableTerritories(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid agency id")
		return
	}
	allowed, err := c.access.CanView(r.Context(), principal, services.EntityAgency, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !allowed {
		respondServiceError(w, agency.ErrNotFound)
		return
	}
	province := r.URL.Query().Get("province")
	if province == "" {
		writeJSONError(w, http.StatusBadRequest, "INVALID_PROVINCE", "province query parameter is required")
		return
	}
	territories, err := c.territories.AvailableTerritories(r.Context(), id, province)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTerritoryResponses(territories))
}
