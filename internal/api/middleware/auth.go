package middleware

import (
	"context"
	"net/http"

	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/app/service"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common/security"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserIDCtxKey    contextKey = "userID"
	UserEmailCtxKey contextKey = "userEmail"
)

type Authenticator struct {
	authService *service.AuthService
}

func NewAuthenticator(authService *service.AuthService) *Authenticator {
	return &Authenticator{authService: authService}
}

// Handler resolves the caller identity before any protected handler runs.
// HTTP Basic credentials are checked against the stored hash; a bearer token
// issued by /api/login is accepted as an alternative. Requests without a
// usable credential never reach the services.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if email, password, ok := r.BasicAuth(); ok {
			user, err := a.authService.VerifyCredentials(r.Context(), email, password)
			if err != nil {
				respondUnauthorized(w, "Invalid email or password")
				return
			}
			ctx := context.WithValue(r.Context(), UserIDCtxKey, user.ID)
			ctx = context.WithValue(ctx, UserEmailCtxKey, user.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		token, claims, err := jwtauth.FromContext(r.Context()) // Extracts token from Authorization header
		if err != nil || token == nil {
			respondUnauthorized(w, "Authorization required")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			respondUnauthorized(w, "Invalid token claims: "+err.Error())
			return
		}
		userEmail, err := security.GetUserEmailFromClaims(claims)
		if err != nil {
			respondUnauthorized(w, "Invalid token claims: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
		ctx = context.WithValue(ctx, UserEmailCtxKey, userEmail)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Web Quiz Engine"`)
	common.RespondWithError(w, http.StatusUnauthorized, message)
}

// Helper to get user ID from context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}

// Helper to get user email from context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	userEmail, ok := ctx.Value(UserEmailCtxKey).(string)
	return userEmail, ok
}
