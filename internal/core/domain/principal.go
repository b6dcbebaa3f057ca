package domain

// AuthMethod records which credential produced a Principal.
type AuthMethod string

const (
	AuthMethodBearer AuthMethod = "bearer"
	AuthMethodAPIKey AuthMethod = "api_key"
)

// Principal is the authenticated identity attached to a single request.
// It is built once by the identity resolver and never mutated afterwards.
// Role is nil when the user's role record could not be found.
type Principal struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	RoleID   string     `json:"role_id"`
	Role     *Role      `json:"role"`
	Method   AuthMethod `json:"-"`
	APIKeyID string     `json:"-"`
}

// NewPrincipal builds a Principal for u authenticated via method.
func NewPrincipal(u *User, role *Role, method AuthMethod) *Principal {
	return &Principal{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		RoleID: u.RoleID,
		Role:   role,
		Method: method,
	}
}
