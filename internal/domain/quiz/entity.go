// internal/domain/quiz/entity.go
package quiz

import "time"

// Question is a compatibility quiz question.
type Question struct {
	ID           int64     `json:"id"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	Text         string    `json:"question"`
	Type         string    `json:"type"`
	Options      []string  `json:"options,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	QuestionCount int    `json:"question_count"`
	IsActive      bool   `json:"is_active"`
}

// Interest is a profile tag members pick from.
type Interest struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	UserCount int    `json:"user_count"`
	IsActive  bool   `json:"is_active"`
}

type QuestionRequest struct {
	CategoryID int64    `json:"category_id"`
	Text       string   `json:"question"`
	Type       string   `json:"type"`
	Options    []string `json:"options,omitempty"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type InterestRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}
