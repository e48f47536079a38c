package fixtures

import (
	"github.com/google/uuid"

	"github.com/siadin-id/siadin/pkg/geo"
	"github.com/siadin-id/siadin/pkg/identity"
	"github.com/siadin-id/siadin/pkg/rbac"
)

// Development collaborators. The directory and geo reference are external
// systems in production; these static stand-ins carry well-known IDs so the
// seed command and local API calls can reference them.
var (
	SystemAdminID = uuid.MustParse("6f1f2a49-9a3f-4d2e-8e28-0f26f1a0e901")
	OwnerID       = uuid.MustParse("f3c7c9d4-52ab-45b3-90c4-2a5ef1f1b702")
)

func Directory() *identity.StaticDirectory {
	return identity.NewStaticDirectory(
		identity.Principal{
			ID:    SystemAdminID,
			Name:  "Platform Admin",
			Roles: []rbac.Role{rbac.RoleSystemAdmin},
		},
		identity.Principal{
			ID:    OwnerID,
			Name:  "Budi Santoso",
			Roles: []rbac.Role{rbac.RoleAgencyOwner},
		},
	)
}

func Geo() *geo.StaticService {
	return geo.NewStaticService(
		[]geo.Territory{
			{Code: "11", Name: "Aceh"},
			{Code: "12", Name: "Sumatera Utara"},
			{Code: "31", Name: "DKI Jakarta"},
		},
		[]geo.Territory{
			{Code: "1101", Name: "Kab. Aceh Selatan"},
			{Code: "1102", Name: "Kab. Aceh Tenggara"},
			{Code: "1103", Name: "Kab. Aceh Timur"},
			{Code: "1171", Name: "Kota Banda Aceh"},
			{Code: "1201", Name: "Kab. Nias"},
			{Code: "1202", Name: "Kab. Mandailing Natal"},
			{Code: "1275", Name: "Kota Medan"},
			{Code: "3171", Name: "Kota Jakarta Selatan"},
			{Code: "3172", Name: "Kota Jakarta Timur"},
			{Code: "3173", Name: "Kota Jakarta Pusat"},
		},
	)
}
