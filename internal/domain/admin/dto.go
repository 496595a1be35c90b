// internal/domain/admin/dto.go
package admin

// CreateAdminRequest represents the request for creating a new admin
type CreateAdminRequest struct {
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone,omitempty"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// UpdateAdminRequest represents the request for updating an admin
type UpdateAdminRequest struct {
	FullName    string   `json:"full_name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Password    string   `json:"password,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// LoginRequest represents admin login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=4"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	Token string   `json:"token"`
	Admin *Profile `json:"admin,omitempty"`
}
