// internal/domain/admin/resources.go
package admin

import "admin-console/internal/resource"

const (
	ActionActivate   = "activate"
	ActionDeactivate = "deactivate"
)

var (
	AdminsEndpoint = resource.Endpoint{
		Collection: "admin/admins",
		Item:       "admin/admins",
		FilterKeys: []string{"search", "role", "is_active"},
	}

	SearchKeys = []string{"search"}
)
