package permissions

import (
	"github.com/siadin-id/siadin/pkg/rbac"
)

// RoleGrants is the capability matrix for the agency module. Only system
// admins may create agencies; owners manage everything inside their own
// agency through relation checks, so their global grants stay narrow.
var RoleGrants = map[rbac.Role][]rbac.Capability{
	rbac.RoleSystemAdmin: {
		rbac.CapViewInactive,
		rbac.CapManageAgencies,
		rbac.CapManageDivisions,
		rbac.CapManageEmployees,
		rbac.CapAssignTerritory,
	},
	rbac.RoleAgencyOwner: {
		rbac.CapManageDivisions,
		rbac.CapManageEmployees,
		rbac.CapAssignTerritory,
	},
	rbac.RoleDivisionAdmin: {
		rbac.CapManageEmployees,
	},
	rbac.RoleEmployee: {},
}

// Schema builds the module's role-to-capability configuration.
func Schema() *rbac.Config {
	return rbac.NewConfig(RoleGrants)
}
