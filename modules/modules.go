package modules

import (
	"github.com/siadin-id/siadin/modules/agency"
	"github.com/siadin-id/siadin/pkg/application"
)

var BuiltInModules = []application.Module{
	agency.NewModule(nil),
}

func Load(app application.Application, mods ...application.Module) error {
	return application.Load(app, mods...)
}
