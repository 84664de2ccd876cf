package middleware

import (
	"net/http"

	"github.com/geldimmi/geldimmi/internal/auth"
	"github.com/geldimmi/geldimmi/internal/store"
)

const SessionCookieName = "geldimmi_session"

// RequireAuth validates the session cookie and populates AuthContext.
// Guest sessions (no user) authenticate with role "guest".
func RequireAuth(sessionStore *store.SessionStore, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				OrganizationID: sess.OrganizationID,
				Role:           "guest",
				SessionID:      sess.ID,
			}
			if sess.UserID != nil {
				user, err := userStore.GetByID(*sess.UserID)
				if err != nil || user == nil || user.OrganizationID != sess.OrganizationID {
					unauthorized(w)
					return
				}
				ac.UserID = user.ID
				ac.Role = user.Role
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks that the authenticated user has the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "authentication required"}`))
}
