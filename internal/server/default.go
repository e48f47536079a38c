package server

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/siadin-id/siadin/modules/agency/presentation/controllers"
	"github.com/siadin-id/siadin/pkg/application"
	"github.com/siadin-id/siadin/pkg/configuration"
	"github.com/siadin-id/siadin/pkg/constants"
	"github.com/siadin-id/siadin/pkg/metrics"
	"github.com/siadin-id/siadin/pkg/middleware"
	"github.com/siadin-id/siadin/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),
		middleware.OperationBudget(options.Configuration.OperationBudget),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.Principal(app.Directory()),
		middleware.RequestParams(),
		middleware.RequestToken(options.Configuration.RequestTokenSecret),
	}
	if options.Configuration.Prometheus.Enabled {
		middlewares = append(middlewares, metrics.HTTPMetrics())
	}
	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(
		app,
		controllers.NotFound(),
		controllers.MethodNotAllowed(),
	), nil
}
