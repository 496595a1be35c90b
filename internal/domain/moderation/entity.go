// internal/domain/moderation/entity.go
package moderation

import "time"

type ReportStatus string

const (
	ReportOpen      ReportStatus = "open"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report is a member's complaint about another member.
type Report struct {
	ID             int64        `json:"id"`
	ReporterID     int64        `json:"reporter_id"`
	ReporterName   string       `json:"reporter_name"`
	ReportedUserID int64        `json:"reported_user_id"`
	ReportedName   string       `json:"reported_name"`
	Reason         string       `json:"reason"`
	Details        string       `json:"details,omitempty"`
	Status         ReportStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty"`
}

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketClosed     TicketStatus = "closed"
)

// Ticket is a support request.
type Ticket struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	UserName   string       `json:"user_name"`
	Subject    string       `json:"subject"`
	Message    string       `json:"message"`
	Priority   string       `json:"priority"`
	Status     TicketStatus `json:"status"`
	AssignedTo string       `json:"assigned_to,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// ReplyRequest answers a ticket.
type ReplyRequest struct {
	Message string `json:"message"`
	Close   bool   `json:"close,omitempty"`
}

// ResolveRequest closes a report, optionally with a note to the reporter.
type ResolveRequest struct {
	Note string `json:"note,omitempty"`
}
