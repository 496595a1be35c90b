// internal/domain/member/entity.go
package member

import "time"

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserPending   UserStatus = "pending"
	UserSuspended UserStatus = "suspended"
	UserBanned    UserStatus = "banned"
)

// User is an app member as listed on the users screen.
type User struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Gender     string     `json:"gender,omitempty"`
	Age        int        `json:"age,omitempty"`
	Country    string     `json:"country,omitempty"`
	Status     UserStatus `json:"status"`
	IsVerified bool       `json:"is_verified"`
	IsPremium  bool       `json:"is_premium"`
	LastActive *time.Time `json:"last_active,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// BannedUser is one active or expired ban.
type BannedUser struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Reason    string     `json:"reason"`
	BannedBy  string     `json:"banned_by,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Permanent reports whether the ban has no end date.
func (b BannedUser) Permanent() bool {
	return b.ExpiresAt == nil
}

type ActivityLog struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"`
	IPAddress string    `json:"ip_address,omitempty"`
	Device    string    `json:"device,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
