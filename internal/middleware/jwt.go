package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ctroy978/umadex-sub002/internal/utils"
)

// Locals keys under which the authenticated identity is stored for the
// handlers and the role gate.
const (
	LocalsUserID   = "user_id"
	LocalsUserRole = "user_role"
)

// debateClaims is what the school platform puts in its tokens: the platform
// user id as the subject and a role naming the debate surface the user may
// reach.
type debateClaims struct {
	UserID uint
	Role   string
}

// JWTProtected validates bearer tokens issued by the school platform and
// binds the student or teacher identity to the request. Tokens without a
// usable subject are rejected.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		mapClaims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		claims, err := parseDebateClaims(mapClaims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(LocalsUserID, claims.UserID)
		c.Locals(LocalsUserRole, claims.Role)

		return c.Next()
	}
}

func bearerToken(authorization string) (string, error) {
	if authorization == "" {
		return "", fmt.Errorf("authorization header missing")
	}

	const bearer = "Bearer "
	if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
		return "", fmt.Errorf("invalid authorization header")
	}

	token := strings.TrimSpace(authorization[len(bearer):])
	if token == "" {
		return "", fmt.Errorf("invalid token")
	}
	return token, nil
}

func parseDebateClaims(claims jwt.MapClaims) (debateClaims, error) {
	parsed := debateClaims{Role: roleClaim(claims)}

	// "sub" is what the platform issues; "user_id" covers tokens minted by
	// its older auth service.
	for _, key := range []string{"sub", "user_id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		id, err := subjectID(value)
		if err != nil {
			continue
		}
		parsed.UserID = id
		return parsed, nil
	}

	return debateClaims{}, fmt.Errorf("token subject missing")
}

func subjectID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 1 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil || parsed == 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}

func roleClaim(claims jwt.MapClaims) string {
	value, ok := claims["role"]
	if !ok {
		value = claims["roles"]
	}

	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
				return strings.ToLower(strings.TrimSpace(str))
			}
		}
	}
	return ""
}
