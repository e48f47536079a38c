package agency

import (
	"embed"

	"github.com/siadin-id/siadin/modules/agency/infrastructure/persistence"
	"github.com/siadin-id/siadin/modules/agency/presentation/controllers"
	"github.com/siadin-id/siadin/modules/agency/services"
	"github.com/siadin-id/siadin/pkg/application"
	"github.com/siadin-id/siadin/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/agency-schema.sql
var MigrationFiles embed.FS

type ModuleOptions struct {
	// NotificationSender overrides the default log-backed sender.
	NotificationSender services.NotificationSender
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Name() string {
	return "agency"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	app.Migrations().RegisterSchema(&MigrationFiles)

	agencyRepo := persistence.NewAgencyRepository()
	divisionRepo := persistence.NewDivisionRepository()
	employeeRepo := persistence.NewEmployeeRepository()
	jurisdictionRepo := persistence.NewJurisdictionRepository()

	accessService := services.NewAccessService(
		agencyRepo,
		divisionRepo,
		employeeRepo,
		app.Directory(),
		app.RBAC(),
		app.Cache(),
		conf.Cache.AccessTTL,
	)

	app.RegisterServices(
		accessService,
		services.NewAgencyService(agencyRepo, app.Geo(), accessService, app.EventPublisher(), conf.DeleteMode),
		services.NewDivisionService(divisionRepo, agencyRepo, app.Geo(), accessService, app.EventPublisher(), conf.DeleteMode),
		services.NewEmployeeService(employeeRepo, divisionRepo, agencyRepo, accessService, app.EventPublisher(), conf.DeleteMode),
		services.NewJurisdictionService(jurisdictionRepo, divisionRepo, app.Geo(), accessService, app.Cache()),
		services.NewQueryService(agencyRepo, divisionRepo, employeeRepo, accessService),
	)

	services.RegisterLifecycleCascades(
		app.EventPublisher(),
		divisionRepo,
		employeeRepo,
		jurisdictionRepo,
		app.Directory(),
		app.Logger(),
	)

	sender := m.options.NotificationSender
	if sender == nil {
		sender = services.NewLogSender(app.Logger())
	}
	services.RegisterNotifications(app.EventPublisher(), sender, app.Logger())

	if conf.Prometheus.Enabled {
		services.RegisterLifecycleMetrics(app.EventPublisher())
	}

	app.RegisterControllers(
		controllers.NewHealthController(app),
		controllers.NewAgencyAPIController(app),
		controllers.NewDivisionAPIController(app),
		controllers.NewEmployeeAPIController(app),
	)
	return nil
}
