package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/thisnaeem/artigma/internal/model"
	"github.com/thisnaeem/artigma/internal/service"
)

// SessionCookie is the only artifact handed to the browser.
const SessionCookie = "auth_token"

const currentUserKey = "currentUser"

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
)

// tokenFromRequest prefers the session cookie; a Bearer header works for
// non-browser clients.
func tokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

// Authenticate resolves the request's session token to a user and stores
// it in locals. The caller never learns whether the token was missing,
// malformed, revoked or expired.
func Authenticate(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authService.CurrentUser(c.Context(), tokenFromRequest(c))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}

		c.Locals(currentUserKey, user)

		return c.Next()
	}
}

// RequireApproved rejects any account that is not APPROVED. The status is
// rechecked on every request, so suspending a user cuts off their live
// sessions immediately.
func RequireApproved() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}

		switch user.Status {
		case model.StatusApproved:
			return c.Next()
		case model.StatusPending:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account pending approval. Please wait for admin approval."})
		case model.StatusRejected:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account has been rejected."})
		case model.StatusSuspended:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account has been suspended."})
		default:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account not approved"})
		}
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}

		if user.Role != model.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
		}

		return c.Next()
	}
}

// CurrentUser returns the user resolved by Authenticate, or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, ok := c.Locals(currentUserKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start).Seconds()
		statusCode := c.Response().StatusCode()

		if err != nil {
			var e *fiber.Error

			if errors.As(err, &e) {
				statusCode = e.Code
			} else {
				statusCode = fiber.StatusInternalServerError
			}
		}

		method := c.Method()
		path := c.Path()
		statusStr := fmt.Sprintf("%d", statusCode)

		httpRequestTotal.WithLabelValues(method, path, statusStr).Inc()
		httpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)

		return err
	}
}
