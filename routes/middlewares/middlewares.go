package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/httpx"
	"github.com/sgjt/gestao-forms/log"
	"github.com/sgjt/gestao-forms/model"
	"github.com/sgjt/gestao-forms/store"
)

type userKey struct{}

// Authenticated rejects requests without a valid bearer token and makes the
// caller available through CurrentUser. The caller is read from users on
// every request, so role, directorate and status changes apply at once and
// inactive or removed users are turned away with their token still valid.
func Authenticated(secret string, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), withUser(users)).Handler(next)
	}
}

func withUser(users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(oauth.ClaimsContext).(map[string]string)
			if !ok || claims[httpx.ClaimUserID] == "" {
				httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "auth.claims")
				return
			}

			user, err := users.Get(r.Context(), claims[httpx.ClaimUserID])
			if errors.Is(err, store.ErrNotFound) {
				httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "auth.user_gone")
				return
			}
			if err != nil {
				httpx.LogInternalError(w, r, "db.get_user", err)
				return
			}
			if user.Status != model.UserActive {
				httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "auth.user_inactive")
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser is the caller of an Authenticated request.
func CurrentUser(r *http.Request) model.User {
	user, _ := r.Context().Value(userKey{}).(model.User)
	return user
}

// RequireRole lets through callers holding one of roles.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.LogStatus(w, r, http.StatusForbidden, log.DebugLevel, "auth.role")
		})
	}
}

// Author middleware lets through users that may build forms.
func Author(next http.Handler) http.Handler {
	return RequireRole(model.RoleManager, model.RoleAdmin)(next)
}

// Admin middleware lets through administrators only.
func Admin(next http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)(next)
}
