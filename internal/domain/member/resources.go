// internal/domain/member/resources.go
package member

import "admin-console/internal/resource"

// Status change actions accepted by the user endpoints.
const (
	ActionBan      = "ban"
	ActionUnban    = "unban"
	ActionSuspend  = "suspend"
	ActionActivate = "activate"
	ActionVerify   = "verify"
)

var (
	UsersEndpoint = resource.Endpoint{
		Collection: "admin/users",
		Item:       "admin/users",
		FilterKeys: []string{"search", "status", "gender", "country", "is_premium", "from", "to"},
	}

	BannedUsersEndpoint = resource.Endpoint{
		Collection: "admin/banned-users",
		Item:       "admin/banned-users",
		FilterKeys: []string{"search", "from", "to"},
	}

	ActivityLogsEndpoint = resource.Endpoint{
		Collection: "admin/activity-logs",
		FilterKeys: []string{"search", "action", "user_id", "from", "to"},
	}

	// SearchKeys are the free-text filters shared by all member screens.
	SearchKeys = []string{"search"}
)
