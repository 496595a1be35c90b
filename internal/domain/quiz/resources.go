// internal/domain/quiz/resources.go
package quiz

import "admin-console/internal/resource"

const (
	ActionActivate   = "activate"
	ActionDeactivate = "deactivate"
)

var (
	QuestionsEndpoint = resource.Endpoint{
		Collection: "admin/questions",
		Item:       "admin/questions",
		FilterKeys: []string{"search", "category_id", "type", "is_active"},
	}

	CategoriesEndpoint = resource.Endpoint{
		Collection: "admin/categories",
		Item:       "admin/categories",
		FilterKeys: []string{"search", "is_active"},
	}

	InterestsEndpoint = resource.Endpoint{
		Collection: "admin/interests",
		Item:       "admin/interests",
		FilterKeys: []string{"search", "is_active"},
	}

	SearchKeys = []string{"search"}
)
