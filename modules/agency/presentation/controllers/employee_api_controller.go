package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
	"github.com/siadin-id/siadin/modules/agency/services"
	"github.com/siadin-id/siadin/pkg/application"
	"github.com/siadin-id/siadin/pkg/composables"
)

type EmployeeAPIController struct {
	app       application.Application
	basePath  string
	employees *services.EmployeeService
	access    *services.AccessService
	query     *services.QueryService
}

func NewEmployeeAPIController(app application.Application) application.Controller {
	return &EmployeeAPIController{
		app:       app,
		basePath:  "/api/v1/employees",
		employees: app.Service(&services.EmployeeService{}).(*services.EmployeeService),
		access:    app.Service(&services.AccessService{}).(*services.AccessService),
		query:     app.Service(&services.QueryService{}).(*services.QueryService),
	}
}

func (c *EmployeeAPIController) Key() string {
	return c.basePath
}

func (c *EmployeeAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/access", c.resolveAccess).Methods(http.MethodGet)
}

func (c *EmployeeAPIController) list(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	limit, offset := pageParams(r)
	params := &employee.FindParams{
		Search: r.URL.Query().Get("search"),
		Status: employee.Status(r.URL.Query().Get("status")),
		SortBy: employee.SortBy(r.URL.Query().Get("sort_by")),
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
	if raw := r.URL.Query().Get("division_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid division id")
			return
		}
		params.DivisionID = id
	}
	result, err := c.query.ListEmployees(r.Context(), principal, params)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("list employees failed")
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(result, newEmployeeResponse))
}

func (c *EmployeeAPIController) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	dto := &employee.CreateDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	created, err := c.employees.Create(r.Context(), dto, principal)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEmployeeResponse(created))
}

func (c *EmployeeAPIController) get(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid employee id")
		return
	}
	allowed, err := c.access.CanView(r.Context(), principal, services.EntityEmployee, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !allowed {
		respondServiceError(w, employee.ErrNotFound)
		return
	}
	found, err := c.employees.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEmployeeResponse(found))
}

func (c *EmployeeAPIController) update(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid employee id")
		return
	}
	dto := &employee.UpdateDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	updated, err := c.employees.Update(r.Context(), id, dto, principal)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEmployeeResponse(updated))
}

func (c *EmployeeAPIController) delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid employee id")
		return
	}
	deleted, err := c.employees.Delete(r.Context(), id, principal)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEmployeeResponse(deleted))
}

func (c *EmployeeAPIController) resolveAccess(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ID", "invalid employee id")
		return
	}
	relation, err := c.access.Resolve(r.Context(), principal.ID, services.EntityEmployee, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relation)
}
