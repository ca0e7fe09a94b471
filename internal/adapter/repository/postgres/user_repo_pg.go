package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "user-rest-service/pkg/errors"

	"user-rest-service/internal/domain/user"
)

// UserRepoPG implements the user repository interface using GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        string `gorm:"primaryKey;size:36"`      // UUID assigned at insert
	FirstName string `gorm:"not null"`                // User's given name (required)
	LastName  string `gorm:"not null"`                // User's family name (required)
	Email     string `gorm:"not null;uniqueIndex"`    // Unique email address (required)
	City      string // City, may be empty
	Role      string `gorm:"not null;default:'user'"` // Access level
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (m *UserSchema) toDomain() *user.User {
	return &user.User{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		City:      m.City,
		Role:      user.Role(m.Role),
	}
}

// Create inserts a new user into the database. The ID is assigned here and
// the default role is applied when the entity carries none. The email
// uniqueness constraint is enforced by the database; a collision surfaces
// as an AlreadyExistsError.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	role := u.Role
	if role == "" {
		role = user.DefaultRole
	}

	model := UserSchema{
		ID:        uuid.NewString(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		City:      u.City,
		Role:      string(role),
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isDuplicateErr(err) {
			r.log.Warn("duplicate email on insert", zap.String("email", u.Email))
			return nil, apperrors.NewAlreadyExistsError("user", fmt.Sprintf("user with email %s already exists", u.Email))
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.String("id", model.ID))
	return model.toDomain(), nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.String("id", id))
			return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%s", id))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// GetByEmail retrieves a user from the database by their email address.
// Returns (nil, nil) when no user has the given email.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return model.toDomain(), nil
}

// List retrieves every user. No ordering is applied.
func (r *UserRepoPG) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return toDomainSlice(models), nil
}

// ListByCity retrieves users whose city contains the given substring,
// case-insensitively. The fragment is bound as a LIKE pattern, so `%` and
// `_` keep their wildcard meaning; city is a low-risk filter and the wider
// match is harmless.
func (r *UserRepoPG) ListByCity(ctx context.Context, city string) ([]user.User, error) {
	var models []UserSchema
	pattern := "%" + strings.ToLower(city) + "%"
	if err := r.db.WithContext(ctx).Where("LOWER(city) LIKE ?", pattern).Find(&models).Error; err != nil {
		r.log.Error("failed to list users by city from db", zap.Error(err), zap.String("city", city))
		return nil, fmt.Errorf("failed to list users by city: %w", err)
	}

	return toDomainSlice(models), nil
}

// ListByRole retrieves users whose role matches exactly.
func (r *UserRepoPG) ListByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Where("role = ?", string(role)).Find(&models).Error; err != nil {
		r.log.Error("failed to list users by role from db", zap.Error(err), zap.String("role", string(role)))
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}

	return toDomainSlice(models), nil
}

// Update applies the non-nil fields of the patch to the row matching id and
// returns the updated user. The patch and the read-back run inside one
// transaction so a concurrent delete cannot slip between them. Zero rows
// affected surfaces as a NotFoundError.
func (r *UserRepoPG) Update(ctx context.Context, id string, p user.Patch) (*user.User, error) {
	fields := map[string]any{}
	if p.FirstName != nil {
		fields["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		fields["last_name"] = *p.LastName
	}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.City != nil {
		fields["city"] = *p.City
	}
	if p.Role != nil {
		fields["role"] = string(*p.Role)
	}

	var model UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			res := tx.Model(&UserSchema{}).Where("id = ?", id).Updates(fields)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found for update", zap.String("id", id))
			return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%s", id))
		}
		if isDuplicateErr(err) {
			r.log.Warn("duplicate email on update", zap.String("id", id))
			return nil, apperrors.NewAlreadyExistsError("user", "email already in use")
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Info("user updated in db", zap.String("id", model.ID))
	return model.toDomain(), nil
}

// Delete removes the row matching id. Deleting an unknown id surfaces as a
// NotFoundError, detected through the affected row count.
func (r *UserRepoPG) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserSchema{})
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.String("id", id))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("user not found for delete", zap.String("id", id))
		return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%s", id))
	}

	r.log.Info("user deleted in db", zap.String("id", id))
	return nil
}

// isDuplicateErr reports whether err is a unique-constraint violation.
// GORM's TranslateError covers drivers that implement it; the string checks
// cover the raw postgres and sqlite messages.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func toDomainSlice(models []UserSchema) []user.User {
	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *models[i].toDomain()
	}
	return users
}
