package entity

import "time"

// Role is the fixed set of directory roles
type Role string

const (
	RoleStaff         Role = "STAFF"
	RoleBrandHead     Role = "BRAND_HEAD"
	RoleSeniorManager Role = "SENIOR_MANAGER"
	RoleAccounts      Role = "ACCOUNTS"
	RoleAdmin         Role = "ADMIN"
)

var validRoles = map[Role]bool{
	RoleStaff:         true,
	RoleBrandHead:     true,
	RoleSeniorManager: true,
	RoleAccounts:      true,
	RoleAdmin:         true,
}

// IsValid returns true if the role is one of the defined roles
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Identity is one directory account. SecretHash is a bcrypt hash;
// plaintext secrets are never persisted.
type Identity struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	Active      bool      `json:"active"`
	SecretHash  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by,omitempty"`
}
