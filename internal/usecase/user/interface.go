package user

import (
	"context"

	domain "user-rest-service/internal/domain/user"
)

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	ListUsersByCity(ctx context.Context, city string) ([]User, error)
	ListUsersByRole(ctx context.Context, role domain.Role) ([]User, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}
