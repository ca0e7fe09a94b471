package user

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "user-rest-service/internal/domain/user"
	apperrors "user-rest-service/pkg/errors"
	"user-rest-service/pkg/security"

	"github.com/go-playground/validator/v10"
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (e.g., PostgreSQL, a cached decorator) to be used interchangeably.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)          // Insert a new user, assigning its ID
	GetByID(ctx context.Context, id string) (*domain.User, error)              // Retrieve user by ID
	GetByEmail(ctx context.Context, email string) (*domain.User, error)        // Retrieve user by email, nil when absent
	List(ctx context.Context) ([]domain.User, error)                           // List every user
	ListByCity(ctx context.Context, city string) ([]domain.User, error)        // Case-insensitive substring city filter
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)   // Exact role filter
	Update(ctx context.Context, id string, p domain.Patch) (*domain.User, error) // Partial update, returns the updated row
	Delete(ctx context.Context, id string) error                               // Delete by ID
}

// Service implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type Service struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

var _ Usecase = (*Service)(nil)

// New creates a new instance of Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a typed
// error carrying the violated constraints.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "email":
				messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must not be empty", e.Field()))
			case "oneof":
				messages = append(messages, fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return apperrors.NewValidationError("", strings.Join(messages, ", "))
	}
	return err
}

// CreateUser creates a new user after validating the request and checking
// email uniqueness. The repository assigns the ID and the default role.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	s.log.Info("creating user", zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		s.log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to validate email uniqueness", err)
	}
	if existing != nil {
		s.log.Warn("email already exists", zap.String("email", in.Email))
		return nil, apperrors.NewAlreadyExistsError("user", fmt.Sprintf("user with email %s already exists", in.Email))
	}

	created, err := s.repo.Create(ctx, &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		City:      in.City,
		Role:      domain.Role(in.Role),
	})
	if err != nil {
		s.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	return toDTO(created), nil
}

// GetUser retrieves a single user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Warn("failed to get user", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toDTO(u), nil
}

// ListUsers retrieves every user. An empty list is a valid result here,
// unlike the filtered listings.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("failed to list users", zap.Error(err))
		return nil, err
	}
	return toDTOSlice(users), nil
}

// ListUsersByCity retrieves users whose city contains the given substring,
// case-insensitively. An empty result converts to a not-found error
// carrying the filter value.
func (s *Service) ListUsersByCity(ctx context.Context, city string) ([]User, error) {
	filtered, err := security.ValidateFilter(city)
	if err != nil {
		s.log.Warn("invalid city filter", zap.String("city", city), zap.Error(err))
		return nil, apperrors.NewValidationError("city", err.Error())
	}

	users, err := s.repo.ListByCity(ctx, filtered)
	if err != nil {
		s.log.Error("failed to list users by city", zap.String("city", filtered), zap.Error(err))
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("no users found in city: %s", filtered))
	}
	return toDTOSlice(users), nil
}

// ListUsersByRole retrieves users with the given role. An empty result
// converts to a not-found error; role membership is checked by the caller.
func (s *Service) ListUsersByRole(ctx context.Context, role domain.Role) ([]User, error) {
	users, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		s.log.Error("failed to list users by role", zap.String("role", string(role)), zap.Error(err))
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("no users found with role %s", role))
	}
	return toDTOSlice(users), nil
}

// UpdateUser applies a partial update and returns the updated user. Fields
// absent from the request are left untouched.
func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserRequest) (*User, error) {
	s.log.Info("updating user", zap.String("id", id))

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if in.Email != nil {
		existing, err := s.repo.GetByEmail(ctx, *in.Email)
		if err != nil {
			s.log.Error("failed to check existing email", zap.String("email", *in.Email), zap.Error(err))
			return nil, apperrors.NewInternalError("failed to validate email uniqueness", err)
		}
		if existing != nil && existing.ID != id {
			s.log.Warn("email already exists", zap.String("email", *in.Email), zap.String("existing_id", existing.ID))
			return nil, apperrors.NewAlreadyExistsError("user", fmt.Sprintf("user with email %s already exists", *in.Email))
		}
	}

	patch := domain.Patch{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		City:      in.City,
	}
	if in.Role != nil {
		role := domain.Role(*in.Role)
		patch.Role = &role
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.log.Warn("failed to update user", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toDTO(updated), nil
}

// DeleteUser deletes a user by ID. Deleting an unknown ID is an error, not
// a silent no-op; the repository reports it through the affected row count.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	s.log.Info("deleting user", zap.String("id", id))

	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Warn("failed to delete user", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toDTO(u *domain.User) *User {
	return &User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		City:      u.City,
		Role:      string(u.Role),
	}
}

func toDTOSlice(users []domain.User) []User {
	out := make([]User, len(users))
	for i := range users {
		out[i] = *toDTO(&users[i])
	}
	return out
}
