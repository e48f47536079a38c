package application

import (
	"fmt"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/siadin-id/siadin/pkg/cache"
	"github.com/siadin-id/siadin/pkg/eventbus"
	"github.com/siadin-id/siadin/pkg/geo"
	"github.com/siadin-id/siadin/pkg/identity"
	"github.com/siadin-id/siadin/pkg/rbac"
)

// Controller is a HTTP controller registered on the router.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module is a pluggable unit wiring its repositories, services and
// controllers into the application.
type Module interface {
	Name() string
	Register(app Application) error
}

type Application interface {
	DB() *pgxpool.Pool
	EventPublisher() eventbus.EventBusWithError
	Logger() *logrus.Logger
	Cache() cache.Store
	Geo() geo.Service
	Directory() identity.Directory
	RBAC() *rbac.Config
	Migrations() *MigrationRegistry

	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc

	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterServices(services ...any)
	// Service returns the registered service with the same concrete type as
	// the given value. Panics when no such service was registered.
	Service(service any) any
}

type ApplicationOptions struct {
	Pool      *pgxpool.Pool
	EventBus  eventbus.EventBusWithError
	Logger    *logrus.Logger
	Cache     cache.Store
	Geo       geo.Service
	Directory identity.Directory
	RBAC      *rbac.Config
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:       opts.Pool,
		eventBus:   opts.EventBus,
		logger:     opts.Logger,
		cache:      opts.Cache,
		geo:        opts.Geo,
		directory:  opts.Directory,
		rbac:       opts.RBAC,
		migrations: &MigrationRegistry{},
		services:   make(map[reflect.Type]any),
	}
}

type application struct {
	pool       *pgxpool.Pool
	eventBus   eventbus.EventBusWithError
	logger     *logrus.Logger
	cache      cache.Store
	geo        geo.Service
	directory  identity.Directory
	rbac       *rbac.Config
	migrations *MigrationRegistry

	controllers []Controller
	middleware  []mux.MiddlewareFunc
	services    map[reflect.Type]any
}

func (a *application) DB() *pgxpool.Pool { return a.pool }

func (a *application) EventPublisher() eventbus.EventBusWithError { return a.eventBus }

func (a *application) Logger() *logrus.Logger { return a.logger }

func (a *application) Cache() cache.Store { return a.cache }

func (a *application) Geo() geo.Service { return a.geo }

func (a *application) Directory() identity.Directory { return a.directory }

func (a *application) RBAC() *rbac.Config { return a.rbac }

func (a *application) Migrations() *MigrationRegistry { return a.migrations }

func (a *application) Controllers() []Controller { return a.controllers }

func (a *application) Middleware() []mux.MiddlewareFunc { return a.middleware }

func (a *application) RegisterControllers(controllers ...Controller) {
	a.controllers = append(a.controllers, controllers...)
}

func (a *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	a.middleware = append(a.middleware, middleware...)
}

func (a *application) RegisterServices(services ...any) {
	for _, service := range services {
		a.services[reflect.TypeOf(service)] = service
	}
}

func (a *application) Service(service any) any {
	svc, ok := a.services[reflect.TypeOf(service)]
	if !ok {
		panic(fmt.Sprintf("service %T not registered", service))
	}
	return svc
}

// Load registers each module in order.
func Load(app Application, modules ...Module) error {
	for _, module := range modules {
		if err := module.Register(app); err != nil {
			return fmt.Errorf("register module %s: %w", module.Name(), err)
		}
	}
	return nil
}
