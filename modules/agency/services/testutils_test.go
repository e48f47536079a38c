package services

import (
	"context"
	"io"
	"maps"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
	"github.com/siadin-id/siadin/modules/agency/domain/entities/jurisdiction"
	"github.com/siadin-id/siadin/pkg/cache"
	"github.com/siadin-id/siadin/pkg/composables"
	"github.com/siadin-id/siadin/pkg/configuration"
	"github.com/siadin-id/siadin/pkg/eventbus"
	"github.com/siadin-id/siadin/pkg/geo"
	"github.com/siadin-id/siadin/pkg/identity"
	"github.com/siadin-id/siadin/pkg/rbac"
)

// stubTx satisfies pgx.Tx so InTx joins it instead of opening a pool
// transaction. The in-memory repositories never touch it.
type stubTx struct{}

func (stubTx) Begin(context.Context) (pgx.Tx, error) { return stubTx{}, nil }
func (stubTx) Commit(context.Context) error          { return nil }
func (stubTx) Rollback(context.Context) error        { return nil }
func (stubTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (stubTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (stubTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (stubTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (stubTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (stubTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (stubTx) Conn() *pgx.Conn                                         { return nil }

// nestedTxRecorder tracks nested Begin/Commit/Rollback calls so tests can
// assert how code uses savepoints.
type nestedTxRecorder struct {
	stubTx
	children   []*nestedTxRecorder
	rolledBack bool
	committed  bool
}

func (t *nestedTxRecorder) Begin(context.Context) (pgx.Tx, error) {
	child := &nestedTxRecorder{}
	t.children = append(t.children, child)
	return child, nil
}

func (t *nestedTxRecorder) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

func (t *nestedTxRecorder) Commit(context.Context) error {
	t.committed = true
	return nil
}

// snapshotStarter begins transactions that restore the in-memory repositories
// to their pre-transaction contents on rollback, standing in for the
// database's own transactional behavior.
type snapshotStarter struct {
	env  *testEnv
	last *snapshotTx
}

type snapshotTx struct {
	stubTx
	env         *testEnv
	agencies    map[uint]agency.Agency
	divisions   map[uint]division.Division
	employees   map[uint]employee.Employee
	assignments map[uint]jurisdiction.Assignment
	rolledBack  bool
}

func (s *snapshotStarter) Begin(context.Context) (pgx.Tx, error) {
	tx := &snapshotTx{
		env:         s.env,
		agencies:    maps.Clone(s.env.agencies.agencies),
		divisions:   maps.Clone(s.env.divisions.divisions),
		employees:   maps.Clone(s.env.employees.employees),
		assignments: maps.Clone(s.env.jurisdictions.assignments),
	}
	s.last = tx
	return tx, nil
}

func (t *snapshotTx) Rollback(context.Context) error {
	t.env.agencies.agencies = t.agencies
	t.env.divisions.divisions = t.divisions
	t.env.employees.employees = t.employees
	t.env.jurisdictions.assignments = t.assignments
	t.rolledBack = true
	return nil
}

type memAgencyRepo struct {
	nextID   uint
	agencies map[uint]agency.Agency
}

func newMemAgencyRepo() *memAgencyRepo {
	return &memAgencyRepo{nextID: 1, agencies: map[uint]agency.Agency{}}
}

func (r *memAgencyRepo) matches(a agency.Agency, params *agency.FindParams) bool {
	if params.Status != "" && a.Status() != params.Status {
		return false
	}
	if params.Owner != uuid.Nil && a.OwnerPrincipalID() != params.Owner {
		return false
	}
	if params.IDs != nil {
		found := false
		for _, id := range params.IDs {
			if a.ID() == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if params.Search != "" {
		needle := strings.ToLower(params.Search)
		if !strings.Contains(strings.ToLower(a.Name()), needle) && !strings.Contains(strings.ToLower(a.Code()), needle) {
			return false
		}
	}
	return true
}

func (r *memAgencyRepo) filtered(params *agency.FindParams) []agency.Agency {
	if params == nil {
		params = &agency.FindParams{}
	}
	var out []agency.Agency
	for _, a := range r.agencies {
		if r.matches(a, params) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (r *memAgencyRepo) GetPaginated(_ context.Context, params *agency.FindParams) ([]agency.Agency, error) {
	return r.filtered(params), nil
}

func (r *memAgencyRepo) Count(_ context.Context, params *agency.FindParams) (int64, error) {
	return int64(len(r.filtered(params))), nil
}

func (r *memAgencyRepo) GetByID(_ context.Context, id uint) (agency.Agency, error) {
	a, ok := r.agencies[id]
	if !ok {
		return agency.Agency{}, agency.ErrNotFound
	}
	return a, nil
}

func (r *memAgencyRepo) GetByCode(_ context.Context, code string) (agency.Agency, error) {
	for _, a := range r.agencies {
		if a.Code() == code {
			return a, nil
		}
	}
	return agency.Agency{}, agency.ErrNotFound
}

func (r *memAgencyRepo) GetAllByOwner(_ context.Context, owner uuid.UUID) ([]agency.Agency, error) {
	return r.filtered(&agency.FindParams{Owner: owner}), nil
}

func (r *memAgencyRepo) Create(_ context.Context, a agency.Agency) (agency.Agency, error) {
	for _, existing := range r.agencies {
		if existing.Code() == a.Code() {
			return agency.Agency{}, agency.ErrCodeTaken
		}
	}
	id := r.nextID
	r.nextID++
	out := agency.Hydrate(id, a.Code(), a.Name(), a.Status(), a.ProvinceCode(), a.RegencyCode(), a.OwnerPrincipalID(), a.CreatedBy(), time.Now(), time.Now())
	r.agencies[id] = out
	return out, nil
}

func (r *memAgencyRepo) Update(_ context.Context, a agency.Agency) (agency.Agency, error) {
	existing, ok := r.agencies[a.ID()]
	if !ok {
		return agency.Agency{}, agency.ErrNotFound
	}
	out := agency.Hydrate(a.ID(), existing.Code(), a.Name(), a.Status(), a.ProvinceCode(), a.RegencyCode(), existing.OwnerPrincipalID(), existing.CreatedBy(), existing.CreatedAt(), time.Now())
	r.agencies[a.ID()] = out
	return out, nil
}

func (r *memAgencyRepo) Delete(_ context.Context, id uint) error {
	delete(r.agencies, id)
	return nil
}

type memDivisionRepo struct {
	nextID    uint
	divisions map[uint]division.Division
}

func newMemDivisionRepo() *memDivisionRepo {
	return &memDivisionRepo{nextID: 1, divisions: map[uint]division.Division{}}
}

func (r *memDivisionRepo) matches(d division.Division, params *division.FindParams) bool {
	if params.Status != "" && d.Status() != params.Status {
		return false
	}
	if params.Type != "" && d.Type() != params.Type {
		return false
	}
	if params.AgencyID != 0 && d.AgencyID() != params.AgencyID {
		return false
	}
	if params.Admin != uuid.Nil && d.AdminPrincipalID() != params.Admin {
		return false
	}
	if params.IDs != nil {
		found := false
		for _, id := range params.IDs {
			if d.ID() == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if params.Search != "" {
		needle := strings.ToLower(params.Search)
		if !strings.Contains(strings.ToLower(d.Name()), needle) && !strings.Contains(strings.ToLower(d.Code()), needle) {
			return false
		}
	}
	return true
}

func (r *memDivisionRepo) filtered(params *division.FindParams) []division.Division {
	if params == nil {
		params = &division.FindParams{}
	}
	var out []division.Division
	for _, d := range r.divisions {
		if r.matches(d, params) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (r *memDivisionRepo) GetPaginated(_ context.Context, params *division.FindParams) ([]division.Division, error) {
	return r.filtered(params), nil
}

func (r *memDivisionRepo) Count(_ context.Context, params *division.FindParams) (int64, error) {
	return int64(len(r.filtered(params))), nil
}

func (r *memDivisionRepo) GetByID(_ context.Context, id uint) (division.Division, error) {
	d, ok := r.divisions[id]
	if !ok {
		return division.Division{}, division.ErrNotFound
	}
	return d, nil
}

func (r *memDivisionRepo) GetByAgency(_ context.Context, agencyID uint) ([]division.Division, error) {
	return r.filtered(&division.FindParams{AgencyID: agencyID}), nil
}

func (r *memDivisionRepo) GetAllByAdmin(_ context.Context, admin uuid.UUID) ([]division.Division, error) {
	return r.filtered(&division.FindParams{Admin: admin}), nil
}

func (r *memDivisionRepo) GetActivePusat(_ context.Context, agencyID uint) (division.Division, error) {
	for _, d := range r.divisions {
		if d.AgencyID() == agencyID && d.IsPusat() && d.IsActive() {
			return d, nil
		}
	}
	return division.Division{}, division.ErrNoPusat
}

func (r *memDivisionRepo) Create(_ context.Context, d division.Division) (division.Division, error) {
	for _, existing := range r.divisions {
		if existing.Code() == d.Code() {
			return division.Division{}, division.ErrCodeTaken
		}
	}
	id := r.nextID
	r.nextID++
	out := division.Hydrate(id, d.AgencyID(), d.Code(), d.Name(), d.Type(), d.ProvinceCode(), d.RegencyCode(), d.Address(), d.AdminPrincipalID(), d.Status(), time.Now(), time.Now())
	r.divisions[id] = out
	return out, nil
}

func (r *memDivisionRepo) Update(_ context.Context, d division.Division) (division.Division, error) {
	existing, ok := r.divisions[d.ID()]
	if !ok {
		return division.Division{}, division.ErrNotFound
	}
	out := division.Hydrate(d.ID(), existing.AgencyID(), existing.Code(), d.Name(), existing.Type(), d.ProvinceCode(), d.RegencyCode(), d.Address(), d.AdminPrincipalID(), d.Status(), existing.CreatedAt(), time.Now())
	r.divisions[d.ID()] = out
	return out, nil
}

func (r *memDivisionRepo) Delete(_ context.Context, id uint) error {
	delete(r.divisions, id)
	return nil
}

type memEmployeeRepo struct {
	nextID    uint
	employees map[uint]employee.Employee
}

func newMemEmployeeRepo() *memEmployeeRepo {
	return &memEmployeeRepo{nextID: 1, employees: map[uint]employee.Employee{}}
}

func (r *memEmployeeRepo) matches(e employee.Employee, params *employee.FindParams) bool {
	if params.Status != "" && e.Status() != params.Status {
		return false
	}
	if params.AgencyID != 0 && e.AgencyID() != params.AgencyID {
		return false
	}
	if params.DivisionID != 0 && e.DivisionID() != params.DivisionID {
		return false
	}
	if params.DivisionIDs != nil {
		found := false
		for _, id := range params.DivisionIDs {
			if e.DivisionID() == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if params.Search != "" {
		needle := strings.ToLower(params.Search)
		if !strings.Contains(strings.ToLower(e.Name()), needle) && !strings.Contains(strings.ToLower(e.Position()), needle) {
			return false
		}
	}
	return true
}

func (r *memEmployeeRepo) filtered(params *employee.FindParams) []employee.Employee {
	if params == nil {
		params = &employee.FindParams{}
	}
	var out []employee.Employee
	for _, e := range r.employees {
		if r.matches(e, params) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (r *memEmployeeRepo) GetPaginated(_ context.Context, params *employee.FindParams) ([]employee.Employee, error) {
	return r.filtered(params), nil
}

func (r *memEmployeeRepo) Count(_ context.Context, params *employee.FindParams) (int64, error) {
	return int64(len(r.filtered(params))), nil
}

func (r *memEmployeeRepo) GetByID(_ context.Context, id uint) (employee.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return e, nil
}

func (r *memEmployeeRepo) GetByDivision(_ context.Context, divisionID uint) ([]employee.Employee, error) {
	return r.filtered(&employee.FindParams{DivisionID: divisionID}), nil
}

func (r *memEmployeeRepo) GetByPrincipal(_ context.Context, agencyID uint, principalID uuid.UUID) (employee.Employee, error) {
	for _, e := range r.employees {
		if e.AgencyID() == agencyID && e.PrincipalID() == principalID && e.IsActive() {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (r *memEmployeeRepo) GetAllByPrincipal(_ context.Context, principalID uuid.UUID) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range r.employees {
		if e.PrincipalID() == principalID && e.IsActive() {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r *memEmployeeRepo) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	for _, existing := range r.employees {
		if existing.AgencyID() == e.AgencyID() && existing.PrincipalID() == e.PrincipalID() {
			return employee.Employee{}, employee.ErrPrincipalTaken
		}
	}
	id := r.nextID
	r.nextID++
	out := employee.Hydrate(id, e.AgencyID(), e.DivisionID(), e.PrincipalID(), e.Name(), e.Email(), e.Phone(), e.Position(), e.Status(), time.Now(), time.Now())
	r.employees[id] = out
	return out, nil
}

func (r *memEmployeeRepo) Update(_ context.Context, e employee.Employee) (employee.Employee, error) {
	existing, ok := r.employees[e.ID()]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	out := employee.Hydrate(e.ID(), existing.AgencyID(), e.DivisionID(), existing.PrincipalID(), e.Name(), e.Email(), e.Phone(), e.Position(), e.Status(), existing.CreatedAt(), time.Now())
	r.employees[e.ID()] = out
	return out, nil
}

func (r *memEmployeeRepo) Delete(_ context.Context, id uint) error {
	delete(r.employees, id)
	return nil
}

type memJurisdictionRepo struct {
	nextID      uint
	assignments map[uint]jurisdiction.Assignment
	divisions   *memDivisionRepo
}

func newMemJurisdictionRepo(divisions *memDivisionRepo) *memJurisdictionRepo {
	return &memJurisdictionRepo{nextID: 1, assignments: map[uint]jurisdiction.Assignment{}, divisions: divisions}
}

func (r *memJurisdictionRepo) ListByDivision(_ context.Context, divisionID uint) ([]jurisdiction.Assignment, error) {
	var out []jurisdiction.Assignment
	for _, a := range r.assignments {
		if a.DivisionID() == divisionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r *memJurisdictionRepo) ListByAgency(ctx context.Context, agencyID uint) ([]jurisdiction.Assignment, error) {
	divs, err := r.divisions.GetByAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	member := make(map[uint]struct{}, len(divs))
	for _, d := range divs {
		member[d.ID()] = struct{}{}
	}
	var out []jurisdiction.Assignment
	for _, a := range r.assignments {
		if _, ok := member[a.DivisionID()]; ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r *memJurisdictionRepo) CreateBatch(_ context.Context, assignments []jurisdiction.Assignment) ([]jurisdiction.Assignment, error) {
	out := make([]jurisdiction.Assignment, 0, len(assignments))
	for _, a := range assignments {
		for _, existing := range r.assignments {
			if existing.DivisionID() == a.DivisionID() && existing.TerritoryCode() == a.TerritoryCode() {
				return nil, jurisdiction.ErrCodeTaken.WithDetail("territory %q", a.TerritoryCode())
			}
		}
		id := r.nextID
		r.nextID++
		created := jurisdiction.Hydrate(id, a.DivisionID(), a.TerritoryCode(), a.IsPrimary(), a.CreatedBy(), time.Now())
		r.assignments[id] = created
		out = append(out, created)
	}
	return out, nil
}

func (r *memJurisdictionRepo) DeleteByDivision(_ context.Context, divisionID uint) error {
	for id, a := range r.assignments {
		if a.DivisionID() == divisionID {
			delete(r.assignments, id)
		}
	}
	return nil
}

type testEnv struct {
	agencies      *memAgencyRepo
	divisions     *memDivisionRepo
	employees     *memEmployeeRepo
	jurisdictions *memJurisdictionRepo
	directory     *identity.StaticDirectory
	bus           eventbus.EventBusWithError
	store         *cache.MemoryStore
	geoSvc        geo.Service

	access           *AccessService
	agencyService    *AgencyService
	divisionService  *DivisionService
	employeeService  *EmployeeService
	territoryService *JurisdictionService
	query            *QueryService

	sysAdmin identity.Principal
	owner    identity.Principal
	outsider identity.Principal
}

func newTestEnv(t *testing.T, deleteMode string) (*testEnv, context.Context) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	env := &testEnv{
		agencies:  newMemAgencyRepo(),
		divisions: newMemDivisionRepo(),
		employees: newMemEmployeeRepo(),
		bus:       eventbus.NewEventPublisher(log),
		store:     cache.NewMemoryStore(),
		sysAdmin:  identity.Principal{ID: uuid.New(), Name: "Root Admin", Roles: []rbac.Role{rbac.RoleSystemAdmin}},
		owner:     identity.Principal{ID: uuid.New(), Name: "Budi Santoso", Roles: []rbac.Role{rbac.RoleAgencyOwner}},
		outsider:  identity.Principal{ID: uuid.New(), Name: "Orang Lain", Roles: []rbac.Role{rbac.RoleEmployee}},
	}
	env.jurisdictions = newMemJurisdictionRepo(env.divisions)
	env.directory = identity.NewStaticDirectory(env.sysAdmin, env.owner, env.outsider)

	geoService := geo.NewStaticService(
		[]geo.Territory{{Code: "11", Name: "Aceh"}},
		[]geo.Territory{
			{Code: "1101", Name: "Kab. Aceh Selatan"},
			{Code: "1102", Name: "Kab. Aceh Tenggara"},
			{Code: "1103", Name: "Kab. Aceh Timur"},
		},
	)
	env.geoSvc = geoService

	env.access = NewAccessService(env.agencies, env.divisions, env.employees, env.directory, rbac.DefaultConfig(), env.store, 5*time.Minute)
	env.agencyService = NewAgencyService(env.agencies, geoService, env.access, env.bus, deleteMode)
	env.divisionService = NewDivisionService(env.divisions, env.agencies, geoService, env.access, env.bus, deleteMode)
	env.employeeService = NewEmployeeService(env.employees, env.divisions, env.agencies, env.access, env.bus, deleteMode)
	env.territoryService = NewJurisdictionService(env.jurisdictions, env.divisions, geoService, env.access, env.store)
	env.query = NewQueryService(env.agencies, env.divisions, env.employees, env.access)

	RegisterLifecycleCascades(env.bus, env.divisions, env.employees, env.jurisdictions, env.directory, log)

	ctx := composables.WithTx(context.Background(), stubTx{})
	return env, ctx
}

func softEnv(t *testing.T) (*testEnv, context.Context) {
	return newTestEnv(t, configuration.DeleteModeSoft)
}

func hardEnv(t *testing.T) (*testEnv, context.Context) {
	return newTestEnv(t, configuration.DeleteModeHard)
}
