package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cmfs/models"

	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates JWT tokens issued by the identity provider and
// extracts the caller's identity. Tokens carry user_id, role and optionally
// institution_id; the engine never issues tokens itself.
type AuthMiddleware struct {
	jwtSecret []byte
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: []byte(jwtSecret)}
}

// RequireAuth validates the bearer token and sets user_id, role and
// institution_id in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid authorization format. Expected: Bearer <token>")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid token claims")
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid token: user_id not found")
			return
		}
		role, _ := claims["role"].(string)
		if role == "" {
			role = string(models.RoleUser)
		}

		ctx := context.WithValue(r.Context(), "user_id", int64(userIDFloat))
		ctx = context.WithValue(ctx, "role", role)
		if instFloat, ok := claims["institution_id"].(float64); ok {
			ctx = context.WithValue(ctx, "institution_id", int64(instFloat))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole wraps RequireAuth and additionally rejects callers whose role
// is not in the allowed set.
func (m *AuthMiddleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[string(role)] = true
	}
	return func(next http.Handler) http.Handler {
		return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value("role").(string)
			if !allowed[role] {
				respondWithError(w, http.StatusForbidden, "Forbidden", "Insufficient role for this operation")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// Helper function for error responses
func respondWithError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	body := fmt.Sprintf(`{"error":"%s","message":"%s","code":%d}`, errorType, message, statusCode)
	w.Write([]byte(body))
}
