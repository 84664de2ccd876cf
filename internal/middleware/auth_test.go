package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geldimmi/geldimmi/internal/auth"
	"github.com/geldimmi/geldimmi/internal/database"
	"github.com/geldimmi/geldimmi/internal/store"
)

func setupAuthMiddlewareDB(t *testing.T) (*store.SessionStore, *store.UserStore, *store.OrganizationStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewSessionStore(db), store.NewUserStore(db), store.NewOrganizationStore(db)
}

func TestRequireAuthNoCookie(t *testing.T) {
	ss, us, _ := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/schedules", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	ss, us, _ := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/schedules", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "invalid-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthValidUserSession(t *testing.T) {
	ss, us, os := setupAuthMiddlewareDB(t)

	org, _ := os.Create("Acme", true)
	user, _ := us.Create(org.ID, "maria@example.com", "hash", "admin")
	sess, _ := ss.Create(org.ID, &user.ID)

	var gotAC auth.AuthContext
	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			t.Fatal("expected AuthContext in request context")
		}
		gotAC = ac
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/schedules", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotAC.UserID != user.ID {
		t.Errorf("UserID = %d, want %d", gotAC.UserID, user.ID)
	}
	if gotAC.OrganizationID != org.ID {
		t.Errorf("OrganizationID = %d, want %d", gotAC.OrganizationID, org.ID)
	}
	if gotAC.Role != "admin" {
		t.Errorf("Role = %q, want %q", gotAC.Role, "admin")
	}
}

func TestRequireAuthGuestSession(t *testing.T) {
	ss, us, os := setupAuthMiddlewareDB(t)

	org, _ := os.Create("Guest", false)
	sess, _ := ss.Create(org.ID, nil)

	var gotAC auth.AuthContext
	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAC, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/schedules", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotAC.OrganizationID != org.ID {
		t.Errorf("OrganizationID = %d, want %d", gotAC.OrganizationID, org.ID)
	}
	if gotAC.UserID != 0 {
		t.Errorf("UserID = %d, want 0 for guest", gotAC.UserID)
	}
	if gotAC.Role != "guest" {
		t.Errorf("Role = %q, want guest", gotAC.Role)
	}
}

func TestRequireAdminAllowed(t *testing.T) {
	ctx := auth.WithAuth(context.Background(), auth.AuthContext{Role: "admin"})
	req := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireAdminForbidden(t *testing.T) {
	ctx := auth.WithAuth(context.Background(), auth.AuthContext{Role: "guest"})
	req := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
