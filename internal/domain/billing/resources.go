// internal/domain/billing/resources.go
package billing

import "admin-console/internal/resource"

const (
	ActionRefund   = "refund"
	ActionMarkPaid = "mark-paid"
)

var (
	PaymentsEndpoint = resource.Endpoint{
		Collection: "admin/payments",
		Item:       "admin/payments",
		FilterKeys: []string{"search", "status", "method", "plan", "from", "to"},
	}

	SearchKeys = []string{"search"}
)
