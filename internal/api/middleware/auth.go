package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/intersect-health/fhir-api/internal/api/metrics"
	"github.com/intersect-health/fhir-api/internal/core/domain"
	"github.com/intersect-health/fhir-api/internal/core/ports"
)

// Context keys set by Authenticate and read by handlers and RequireRole.
const (
	ContextUser   = "current_user"
	ContextClaims = "claims"
	ContextToken  = "bearer_token"
)

// Authenticate validates the bearer token and resolves it to a live account
// via the auth service: signature and expiry, revocation list, then a fresh
// read of the user record. Claims alone are never trusted for the active
// flag. On success the user and claims are injected into the Echo context.
func Authenticate(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, claims, err := auth.CurrentUser(c.Request().Context(), parts[1])
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			c.Set(ContextUser, user)
			c.Set(ContextClaims, claims)
			c.Set(ContextToken, parts[1])

			return next(c)
		}
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, domain.ErrUserInactive):
		return "inactive_account"
	default:
		return "invalid"
	}
}

// UserFromContext returns the account injected by Authenticate, or nil when
// the middleware did not run.
func UserFromContext(c echo.Context) *domain.User {
	user, _ := c.Get(ContextUser).(*domain.User)
	return user
}
