// internal/domain/content/entity.go
package content

import "time"

type TemplateKind string

const (
	TemplateEmail TemplateKind = "email"
	TemplatePush  TemplateKind = "push"
	TemplateSMS   TemplateKind = "sms"
)

// Template is a message template used by the app's mailers.
type Template struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Kind      TemplateKind `json:"type"`
	Subject   string       `json:"subject,omitempty"`
	Body      string       `json:"body"`
	IsActive  bool         `json:"is_active"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type NotificationType string

const (
	TypeSystem NotificationType = "system"
	TypeAlert  NotificationType = "alert"
	TypeInfo   NotificationType = "info"
	TypePromo  NotificationType = "promo"
)

// Notification is a broadcast sent to a member audience.
type Notification struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Audience  string           `json:"audience"`
	Status    string           `json:"status"`
	SentAt    *time.Time       `json:"sent_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Sent reports whether the notification has gone out.
func (n Notification) Sent() bool {
	return n.SentAt != nil
}

type TemplateRequest struct {
	Name    string       `json:"name"`
	Kind    TemplateKind `json:"type"`
	Subject string       `json:"subject,omitempty"`
	Body    string       `json:"body"`
}

type CreateNotificationRequest struct {
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Audience  string           `json:"audience"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}
