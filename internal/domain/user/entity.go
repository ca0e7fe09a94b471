package user

// Role is the access level assigned to a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// DefaultRole is applied when a creation payload omits the role.
const DefaultRole = RoleUser

// ParseRole maps a raw string to a Role. The second return value is false
// when the value is not a member of the enumeration.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	default:
		return "", false
	}
}

// User represents a user entity in the system.
type User struct {
	ID        string // ID is the unique identifier for the user, assigned at creation
	FirstName string // FirstName is the user's given name
	LastName  string // LastName is the user's family name
	Email     string // Email is the unique email address of the user
	City      string // City is the city the user lives in, may be empty
	Role      Role   // Role is the user's access level, defaults to RoleUser
}

// Patch carries the fields of a partial update. Nil fields are left
// untouched by the update.
type Patch struct {
	FirstName *string
	LastName  *string
	Email     *string
	City      *string
	Role      *Role
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.City == nil && p.Role == nil
}
