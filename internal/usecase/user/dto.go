package user

// CreateUserRequest represents the request payload for creating a new user.
// Role is optional; the repository applies the default when it is empty.
type CreateUserRequest struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required,email"`
	City      string `validate:"omitempty"`
	Role      string `validate:"omitempty,oneof=admin user"`
}

// UpdateUserRequest represents the request payload for partially updating a
// user. Nil fields are not part of the patch; present fields follow the
// same rules as creation.
type UpdateUserRequest struct {
	FirstName *string `validate:"omitnil,min=1"`
	LastName  *string `validate:"omitnil,min=1"`
	Email     *string `validate:"omitnil,email"`
	City      *string
	Role      *string `validate:"omitnil,oneof=admin user"`
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	City      string
	Role      string
}
