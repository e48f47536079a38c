package rbac

// Role identifiers are fixed at process start. The identity directory maps
// principals to global roles; relation-derived roles (owner, division admin,
// employee) are computed by the access resolver, not stored here.
type Role string

const (
	RoleSystemAdmin   Role = "system_admin"
	RoleAgencyOwner   Role = "agency_owner"
	RoleDivisionAdmin Role = "division_admin"
	RoleEmployee      Role = "employee"
)

type Capability string

const (
	CapViewInactive    Capability = "entities.view_inactive"
	CapManageAgencies  Capability = "agencies.manage"
	CapManageDivisions Capability = "divisions.manage"
	CapManageEmployees Capability = "employees.manage"
	CapAssignTerritory Capability = "jurisdictions.assign"
)

// Config is the immutable role-to-capability mapping, built once at process
// start and passed by reference to the access resolver. It is never mutated
// after construction.
type Config struct {
	grants map[Role]map[Capability]struct{}
}

// NewConfig copies the given mapping so later changes to the input cannot
// leak into the running configuration.
func NewConfig(grants map[Role][]Capability) *Config {
	copied := make(map[Role]map[Capability]struct{}, len(grants))
	for role, caps := range grants {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		copied[role] = set
	}
	return &Config{grants: copied}
}

// DefaultConfig is the capability matrix shipped with the platform.
func DefaultConfig() *Config {
	return NewConfig(map[Role][]Capability{
		RoleSystemAdmin: {
			CapViewInactive,
			CapManageAgencies,
			CapManageDivisions,
			CapManageEmployees,
			CapAssignTerritory,
		},
		RoleAgencyOwner: {
			CapManageDivisions,
			CapManageEmployees,
			CapAssignTerritory,
		},
		RoleDivisionAdmin: {
			CapManageEmployees,
		},
		RoleEmployee: {},
	})
}

func (c *Config) Allows(role Role, capability Capability) bool {
	caps, ok := c.grants[role]
	if !ok {
		return false
	}
	_, ok = caps[capability]
	return ok
}

// AnyAllows reports whether any of the roles grants the capability.
func (c *Config) AnyAllows(roles []Role, capability Capability) bool {
	for _, role := range roles {
		if c.Allows(role, capability) {
			return true
		}
	}
	return false
}

func HasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
