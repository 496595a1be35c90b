// internal/domain/journal/entity.go
package journal

import "time"

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Entry records one settled mutation attempt made from the console.
type Entry struct {
	ID        string    `json:"id" db:"id"`
	Resource  string    `json:"resource" db:"resource"`
	Kind      string    `json:"kind" db:"kind"`
	TargetID  string    `json:"target_id,omitempty" db:"target_id"`
	Action    string    `json:"action,omitempty" db:"action"`
	AdminID   string    `json:"admin_id,omitempty" db:"admin_id"`
	Outcome   Outcome   `json:"outcome" db:"outcome"`
	Error     string    `json:"error,omitempty" db:"error"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
