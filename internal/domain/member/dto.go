// internal/domain/member/dto.go
package member

// UpdateUserRequest edits a member profile. Empty fields are left unchanged.
type UpdateUserRequest struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	IsVerified *bool  `json:"is_verified,omitempty"`
	IsPremium  *bool  `json:"is_premium,omitempty"`
}

// BanRequest is the payload of the ban status change.
type BanRequest struct {
	Reason       string `json:"reason"`
	DurationDays int    `json:"duration_days,omitempty"` // 0 means permanent
}
