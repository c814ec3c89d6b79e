package authtoken

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cloudkeep/authd/services/tokens"
)

const (
	AccountIDKey = "_auth_account_id"
	ClaimsKey    = "_auth_claims"
)

// RequireAccessToken guards a route with the AccessToken cookie. Claims
// are stored on the echo context for downstream handlers.
func RequireAccessToken(tokenSvc *tokens.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(tokens.AccessCookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "access token required")
			}

			claims, err := tokenSvc.ValidateKind(cookie.Value, tokens.KindAccess)
			if err != nil {
				switch {
				case errors.Is(err, tokens.ErrExpiredToken):
					return echo.NewHTTPError(http.StatusUnauthorized, "access token has expired")
				case errors.Is(err, tokens.ErrMalformedToken):
					return echo.NewHTTPError(http.StatusUnauthorized, "malformed access token")
				case errors.Is(err, tokens.ErrInvalidSignature):
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token signature")
				default:
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
				}
			}

			c.Set(AccountIDKey, claims.AccountID)
			c.Set(ClaimsKey, claims)

			return next(c)
		}
	}
}

func GetAccountID(c echo.Context) string {
	if accountID, ok := c.Get(AccountIDKey).(string); ok {
		return accountID
	}
	return ""
}

func GetClaims(c echo.Context) *tokens.Claims {
	if claims, ok := c.Get(ClaimsKey).(*tokens.Claims); ok {
		return claims
	}
	return nil
}
