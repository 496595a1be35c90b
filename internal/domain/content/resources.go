// internal/domain/content/resources.go
package content

import (
	"net/http"

	"admin-console/internal/resource"
)

const (
	ActionSend       = "send"
	ActionActivate   = "activate"
	ActionDeactivate = "deactivate"
)

var (
	TemplatesEndpoint = resource.Endpoint{
		Collection: "admin/templates",
		Item:       "admin/templates",
		FilterKeys: []string{"search", "type", "is_active"},
	}

	NotificationsEndpoint = resource.Endpoint{
		Collection:   "admin/notifications",
		Item:         "admin/notifications",
		FilterKeys:   []string{"search", "type", "status", "from", "to"},
		StatusMethod: http.MethodPost,
	}

	SearchKeys = []string{"search"}
)
