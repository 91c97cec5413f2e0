package domain

// Role is the authenticated actor's role as carried in the auth token.
// Creator capability is not a role: it is derived from an APPROVED
// verification and checked by the campaign registry at call time.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }
