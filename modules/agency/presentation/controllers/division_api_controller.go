package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/services"
	"github.com/siadin-id/siadin/pkg/application"
	"github.com/siadin-id/siadin/pkg/composables"
)

type DivisionAPIController struct {
	app         application.Application
	basePath    string
	divisions   *services.DivisionService
	territories *services.JurisdictionService
	access      *services.AccessService
	query       *services.QueryService
}

func NewDivisionAPIController(app application.Application) application.Controller {
	return &DivisionAPIController{
		app:         app,
		basePath:    "/api/v1/divisions",
		divisions:   app.Service(&services.DivisionService{}).(*services.DivisionService),
		territories: app.Service(&services.JurisdictionService{}).(*services.JurisdictionService),
		access:      app.Service(&services.AccessService{}).(*services.AccessService),
		query:       app.Service(&services.QueryService{}).(*services.QueryService),
	}
}

func (c *DivisionAPIController) Key() string {
	return c.basePath
}

func (c *DivisionAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/access", c.resolveAccess).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/jurisdictions", c.listJurisdictions).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/jurisdictions", c.assignJurisdictions).Methods(http.MethodPut)
}

func (c *DivisionAPIController) list(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	limit, offset := pageParams(r)
	params := &division.FindParams{
		Search: r.URL.Query().Get("search"),
		Status: division.Status(r.URL.Query().Get("status")),
		Type:   division.Type(r.URL.Query().Get("type")),
		SortBy: division.SortBy(r.URL.Query().Get("sort_by")),
		Desc:   r.URL.Query().Get("order") == "desc",
		Limit:  limit,
		Offset: offset,
	}
	if raw := r.URL.Query().Get("agency_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid agency id")
			return
		}
		params.AgencyID = id
	}
	result, err := c.query.ListDivisions(r.Context(), principal, params)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("list divisions failed")
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(result, newDivisionResponse))
}

func (c *DivisionAPIController) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	dto := &division.CreateDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	created, err := c.divisions.Create(r.Context(), dto, principal)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newDivisionResponse(created))
}

func (c *DivisionAPIController) get(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid division id")
		return
	}
	allowed, err := c.access.CanView(r.Context(), principal, services.EntityDivision, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !allowed {
		respondServiceError(w, division.ErrNotFound)
		return
	}
	found, err := c.divisions.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDivisionResponse(found))
}

func (c *DivisionAPIController) update(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid division id")
		return
	}
	dto := &division.UpdateDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	updated, err := c.divisions.Update(r.Context(), id, dto, principal)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDivisionResponse(updated))
}

func (c *DivisionAPIController) delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid division id")
		return
	}
	deleted, err := c.divisions.Delete(r.Context(), id, principal)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDivisionResponse(deleted))
}

func (c *DivisionAPIController) resolveAccess(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid division id")
		return
	}
	relation, err := c.access.Resolve(r.Context(), principal.ID, services.EntityDivision, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relation)
}

func (c *DivisionAPIController) listJurisdictions(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid division id")
		return
	}
	allowed, err := c.access.CanView(r.Context(), principal, services.EntityDivision, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !allowed {
		respondServiceError(w, division.ErrNotFound)
		return
	}
	assignments, err := c.territories.ListByDivision(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAssignmentResponses(assignments))
}

type assignRequest struct {
	Codes        []string `json:"codes"`
	PrimaryCodes []string `json:"primary_codes"`
}

func (c *DivisionAPIController) assignJurisdictions(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid division id")
		return
	}
	var payload assignRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	assignments, err := c.territories.Assign(r.Context(), id, payload.Codes, payload.PrimaryCodes, principal)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAssignmentResponses(assignments))
}
