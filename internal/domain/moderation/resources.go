// internal/domain/moderation/resources.go
package moderation

import (
	"net/http"

	"admin-console/internal/resource"
)

const (
	ActionResolve = "resolve"
	ActionDismiss = "dismiss"
	ActionClose   = "close"
	ActionReopen  = "reopen"
	ActionReply   = "reply"
)

var (
	ReportsEndpoint = resource.Endpoint{
		Collection: "admin/reports",
		Item:       "admin/reports",
		FilterKeys: []string{"search", "status", "reason", "from", "to"},
	}

	TicketsEndpoint = resource.Endpoint{
		Collection:   "admin/tickets",
		Item:         "admin/tickets",
		FilterKeys:   []string{"search", "status", "priority"},
		StatusMethod: http.MethodPost,
	}

	SearchKeys = []string{"search"}
)
