// internal/screens/kinds.go
package screens

import (
	"admin-console/internal/domain/admin"
	"admin-console/internal/domain/billing"
	"admin-console/internal/domain/content"
	"admin-console/internal/domain/member"
	"admin-console/internal/domain/moderation"
	"admin-console/internal/domain/quiz"
	"admin-console/internal/resource"
)

// Kind describes one list screen.
// View is required to open the screen, Manage to mutate from it. An empty
// Manage makes the screen read-only.
type Kind struct {
	Name       string            `json:"name"`
	Subject    string            `json:"subject"`
	View       string            `json:"view_permission"`
	Manage     string            `json:"manage_permission,omitempty"`
	Endpoint   resource.Endpoint `json:"-"`
	SearchKeys []string          `json:"-"`
}

// ReadOnly reports whether the screen accepts no mutations.
func (k Kind) ReadOnly() bool { return k.Manage == "" }

const (
	Users         = "users"
	BannedUsers   = "banned-users"
	ActivityLogs  = "activity-logs"
	Admins        = "admins"
	Payments      = "payments"
	Reports       = "reports"
	Tickets       = "tickets"
	Questions     = "questions"
	Categories    = "categories"
	Interests     = "interests"
	Templates     = "templates"
	Notifications = "notifications"
)

var (
	usersKind = Kind{
		Name: Users, Subject: "User",
		View: "users.view", Manage: "users.manage",
		Endpoint: member.UsersEndpoint, SearchKeys: member.SearchKeys,
	}
	bannedUsersKind = Kind{
		Name: BannedUsers, Subject: "Ban",
		View: "bans.view", Manage: "bans.manage",
		Endpoint: member.BannedUsersEndpoint, SearchKeys: member.SearchKeys,
	}
	activityLogsKind = Kind{
		Name: ActivityLogs, Subject: "Activity log",
		View:     "activity.view",
		Endpoint: member.ActivityLogsEndpoint, SearchKeys: member.SearchKeys,
	}
	adminsKind = Kind{
		Name: Admins, Subject: "Admin",
		View: "admins.view", Manage: "admins.manage",
		Endpoint: admin.AdminsEndpoint, SearchKeys: admin.SearchKeys,
	}
	paymentsKind = Kind{
		Name: Payments, Subject: "Payment",
		View: "payments.view", Manage: "payments.manage",
		Endpoint: billing.PaymentsEndpoint, SearchKeys: billing.SearchKeys,
	}
	reportsKind = Kind{
		Name: Reports, Subject: "Report",
		View: "reports.view", Manage: "reports.manage",
		Endpoint: moderation.ReportsEndpoint, SearchKeys: moderation.SearchKeys,
	}
	ticketsKind = Kind{
		Name: Tickets, Subject: "Ticket",
		View: "tickets.view", Manage: "tickets.manage",
		Endpoint: moderation.TicketsEndpoint, SearchKeys: moderation.SearchKeys,
	}
	questionsKind = Kind{
		Name: Questions, Subject: "Question",
		View: "quiz.view", Manage: "quiz.manage",
		Endpoint: quiz.QuestionsEndpoint, SearchKeys: quiz.SearchKeys,
	}
	categoriesKind = Kind{
		Name: Categories, Subject: "Category",
		View: "quiz.view", Manage: "quiz.manage",
		Endpoint: quiz.CategoriesEndpoint, SearchKeys: quiz.SearchKeys,
	}
	interestsKind = Kind{
		Name: Interests, Subject: "Interest",
		View: "interests.view", Manage: "interests.manage",
		Endpoint: quiz.InterestsEndpoint, SearchKeys: quiz.SearchKeys,
	}
	templatesKind = Kind{
		Name: Templates, Subject: "Template",
		View: "templates.view", Manage: "templates.manage",
		Endpoint: content.TemplatesEndpoint, SearchKeys: content.SearchKeys,
	}
	notificationsKind = Kind{
		Name: Notifications, Subject: "Notification",
		View: "notifications.view", Manage: "notifications.manage",
		Endpoint: content.NotificationsEndpoint, SearchKeys: content.SearchKeys,
	}
)

func registerAll(r *Registry) {
	register[member.User](r, usersKind)
	register[member.BannedUser](r, bannedUsersKind)
	register[member.ActivityLog](r, activityLogsKind)
	register[admin.Admin](r, adminsKind)
	register[billing.Payment](r, paymentsKind)
	register[moderation.Report](r, reportsKind)
	register[moderation.Ticket](r, ticketsKind)
	register[quiz.Question](r, questionsKind)
	register[quiz.Category](r, categoriesKind)
	register[quiz.Interest](r, interestsKind)
	register[content.Template](r, templatesKind)
	register[content.Notification](r, notificationsKind)
}
