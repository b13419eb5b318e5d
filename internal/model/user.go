package model

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// User is an account row. The password hash lives only in the store layer
// and is never part of this struct.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Station  string `json:"station"`
	Operator string `json:"operator"`
	Role     Role   `json:"role"`
	IsActive int    `json:"is_active"`
}

// SessionUser is the identity snapshot captured at login time. It is not
// refreshed from the users table afterwards, except when the admin API
// patches the logged-in user's own row.
type SessionUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Station  string `json:"station"`
	Operator string `json:"operator"`
	Role     Role   `json:"role"`
}
