package domain

// Role is the closed set of account roles.
type Role string

const (
	RoleUser     Role = "user"
	RoleBuilder  Role = "builder"
	RoleSupplier Role = "supplier"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleBuilder, RoleSupplier, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
