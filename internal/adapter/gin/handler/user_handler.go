package handler

import (
	"errors"
	"net/http"

	"user-rest-service/internal/usecase/user"

	domain "user-rest-service/internal/domain/user"
	apperrors "user-rest-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user
type CreateUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	City      string `json:"city" binding:"omitempty"`
	Role      string `json:"role" binding:"omitempty,oneof=admin user"`
}

// UpdateUserRequest represents the HTTP request body for partially updating
// a user. Absent fields are not part of the patch.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=1"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1"`
	Email     *string `json:"email" binding:"omitempty,email"`
	City      *string `json:"city"`
	Role      *string `json:"role" binding:"omitempty,oneof=admin user"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	City      string `json:"city,omitempty"`
	Role      string `json:"role"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		City:      req.City,
		Role:      req.Role,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(resp))
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp))
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponseSlice(resp))
}

// ListUsersByCity handles GET /users/city/:city
func (h *UserHandler) ListUsersByCity(c *gin.Context) {
	city := c.Param("city")

	resp, err := h.uc.ListUsersByCity(c.Request.Context(), city)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponseSlice(resp))
}

// ListUsersByRole handles GET /users/role/:role
func (h *UserHandler) ListUsersByRole(c *gin.Context) {
	// Unknown roles are rejected here rather than silently returning an
	// empty result from the query.
	role, ok := domain.ParseRole(c.Param("role"))
	if !ok {
		h.log.Warn("invalid role filter", zap.String("role", c.Param("role")))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_role",
			Message: "role must be one of: admin, user",
		})
		return
	}

	resp, err := h.uc.ListUsersByRole(c.Request.Context(), role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponseSlice(resp))
}

// UpdateUser handles PATCH /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid update user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.uc.UpdateUser(c.Request.Context(), id, user.UpdateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		City:      req.City,
		Role:      req.Role,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp))
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.uc.DeleteUser(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// userID extracts and validates the :id path parameter. It writes the error
// response itself when the value is not a UUID.
func (h *UserHandler) userID(c *gin.Context) (string, bool) {
	idStr := c.Param("id")
	if _, err := uuid.Parse(idStr); err != nil {
		h.log.Warn("invalid user ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "user ID must be a valid UUID",
		})
		return "", false
	}
	return idStr, true
}

// handleError converts usecase errors to HTTP responses using the typed
// error taxonomy from pkg/errors.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var (
		validationErr *apperrors.ValidationError
		notFoundErr   *apperrors.NotFoundError
		existsErr     *apperrors.AlreadyExistsError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(validationErr.HTTPStatus(), ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Error(),
		})
	case errors.As(err, &notFoundErr):
		c.JSON(notFoundErr.HTTPStatus(), ErrorResponse{
			Error:   "not_found",
			Message: notFoundErr.Error(),
		})
	case errors.As(err, &existsErr):
		c.JSON(existsErr.HTTPStatus(), ErrorResponse{
			Error:   "already_exists",
			Message: existsErr.Error(),
		})
	default:
		h.log.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "an internal error occurred",
		})
	}
}

func toResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		City:      u.City,
		Role:      u.Role,
	}
}

func toResponseSlice(users []user.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = toResponse(&users[i])
	}
	return out
}
