package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/thisnaeem/artigma/internal/model"
	"github.com/thisnaeem/artigma/internal/repository"
	"github.com/thisnaeem/artigma/internal/service"
)

type AdminHandler struct {
	userService service.UserService
	validate    *validator.Validate
}

func NewAdminHandler(userService service.UserService) *AdminHandler {
	return &AdminHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	filter := repository.UserListFilter{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 20),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := model.Status(statusStr)
		if !status.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
		}
		filter.Status = &status
	}

	result, err := h.userService.List(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not list users"})
	}

	users := make([]*model.PublicUser, 0, len(result.Users))
	for i := range result.Users {
		users = append(users, result.Users[i].Public())
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"users": users,
		"meta":  result.Meta,
	})
}

type UpdateUserRequest struct {
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

// UpdateUser applies a single field change: either a role change or a
// status transition, never both in one request.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID format"})
	}

	actor := CurrentUser(c)
	if actor == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var request UpdateUserRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if (request.Role == nil) == (request.Status == nil) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Provide exactly one of role or status"})
	}

	var updated *model.User

	switch {
	case request.Role != nil:
		role := model.Role(*request.Role)
		if !role.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role"})
		}
		updated, err = h.userService.UpdateRole(c.Context(), actor.ID, targetID, role)
	case request.Status != nil:
		status := model.Status(*request.Status)
		if !status.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
		}
		updated, err = h.userService.UpdateStatus(c.Context(), actor.ID, targetID, status)
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfAction):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot change your own role"})
		case errors.Is(err, service.ErrInvalidTransition):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Status change is not allowed"})
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update user"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": updated.Public()})
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID format"})
	}

	actor := CurrentUser(c)
	if actor == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	if err := h.userService.Delete(c.Context(), actor.ID, targetID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfAction):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot delete your own account"})
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete user"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
