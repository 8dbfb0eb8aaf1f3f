package api

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/thisnaeem/artigma/internal/auth"
	"github.com/thisnaeem/artigma/internal/service"
)

type AuthHandler struct {
	authService   service.AuthService
	validate      *validator.Validate
	secureCookies bool
}

func NewAuthHandler(authService service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		validate:      validator.New(),
		secureCookies: secureCookies,
	}
}

type SignUpRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2"`
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var request SignUpRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON", "details": err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	user, err := h.authService.SignUp(c.Context(), request.Email, request.Password, request.Name)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email and password are required"})
		case errors.Is(err, service.ErrEmailTaken):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully. Please wait for admin approval.",
		"user":    user,
	})
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var request SignInRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	token, user, err := h.authService.SignIn(c.Context(), request.Email, request.Password)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		case errors.Is(err, service.ErrPendingApproval):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account pending approval. Please wait for admin approval."})
		case errors.Is(err, service.ErrAccountRejected):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account has been rejected."})
		case errors.Is(err, service.ErrAccountSuspended):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account has been suspended."})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   int(auth.SessionTTL.Seconds()),
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Signed in successfully",
		"user":    user,
	})
}

func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	token := tokenFromRequest(c)

	if err := h.authService.SignOut(c.Context(), token); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Signed out successfully"})
}

// Me returns the authenticated user's public view.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user.Public()})
}
