package server

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/vstopensource/formfill/pkg/profile"
)

const identityKey = "formfill.identity"

// identityMiddleware parses the bearer token into a member identity. Token
// issuance lives elsewhere; this layer only verifies the HMAC signature and
// lifts the standard claims.
func identityMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return writeError(c, ErrTokenRequired)
			}

			token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return writeError(c, ErrTokenInvalid)
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return writeError(c, ErrTokenInvalid)
			}

			ident := identityFromClaims(claims)
			if ident.UID == "" {
				return writeError(c, ErrTokenInvalid)
			}
			c.Set(identityKey, ident)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(after)
	}
	return ""
}

func identityFromClaims(claims jwt.MapClaims) profile.Identity {
	ident := profile.Identity{}
	if sub, err := claims.GetSubject(); err == nil {
		ident.UID = sub
	}
	ident.Email = stringClaim(claims, "email")
	ident.DisplayName = stringClaim(claims, "name")
	ident.PhotoURL = stringClaim(claims, "picture")
	return ident
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func currentIdentity(c echo.Context) profile.Identity {
	if ident, ok := c.Get(identityKey).(profile.Identity); ok {
		return ident
	}
	return profile.Identity{}
}
