package web

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"bitbucket.org/crgw/booking-engine/internal/web/responding"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const operatorRole = "operator"

type operatorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// OperatorAuth guards the back-office endpoints with a bearer token signed by
// the operator portal.
func OperatorAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := os.Getenv("OPERATOR_JWT_SECRET")
		if secret == "" {
			responding.HandleError(c, http.StatusServiceUnavailable, "Operator access is not configured", nil)
			return
		}

		header := c.GetHeader("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header || raw == "" {
			responding.HandleError(c, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		token, err := jwt.ParseWithClaims(raw, &operatorClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			responding.HandleError(c, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		claims, ok := token.Claims.(*operatorClaims)
		if !ok || claims.Role != operatorRole {
			responding.HandleError(c, http.StatusForbidden, "Operator role required", nil)
			return
		}

		c.Set("operator", claims.Subject)
	}
}
