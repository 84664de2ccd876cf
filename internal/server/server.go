package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/geldimmi/geldimmi/internal/completion"
	"github.com/geldimmi/geldimmi/internal/handler"
	"github.com/geldimmi/geldimmi/internal/middleware"
	"github.com/geldimmi/geldimmi/internal/store"
	ws "github.com/geldimmi/geldimmi/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	scheduleH    *handler.ScheduleHandler
	groupH       *handler.GroupHandler
	itemH        *handler.ItemHandler
	recordH      *handler.RecordHandler
	qrH          *handler.QRHandler
	settingsH    *handler.SettingsHandler
	sessionStore *store.SessionStore
	userStore    *store.UserStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	orgStore := store.NewOrganizationStore(db)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	scheduleStore := store.NewScheduleStore(db)
	itemStore := store.NewItemStore(db)
	recordStore := store.NewRecordStore(db)
	accessStore := store.NewAccessLogStore(db)
	settingsStore := store.NewSettingsStore(db)

	engine := completion.NewEngine(orgStore, scheduleStore, itemStore, recordStore, accessStore, settingsStore)

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(orgStore, userStore, sessionStore, logger.With("component", "auth")),
		scheduleH:    handler.NewScheduleHandler(scheduleStore, orgStore, settingsStore, hub, logger.With("component", "schedule")),
		groupH:       handler.NewGroupHandler(scheduleStore, orgStore, settingsStore, hub, logger.With("component", "group")),
		itemH:        handler.NewItemHandler(itemStore, scheduleStore, orgStore, settingsStore, hub, logger.With("component", "item")),
		recordH:      handler.NewRecordHandler(engine, recordStore, hub, logger.With("component", "record")),
		qrH:          handler.NewQRHandler(engine, hub, logger.With("component", "qr")),
		settingsH:    handler.NewSettingsHandler(settingsStore, logger.With("component", "settings")),
		sessionStore: sessionStore,
		userStore:    userStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /guest", s.rateLimitedHandler(s.authH.Guest))
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /logout", s.authH.Logout)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// QR routes are public: the token plus the optional access code are the
	// credentials. Rate limited by client IP since there is no session.
	outerMux.HandleFunc("GET /q/{token}", s.rateLimitedHandler(s.qrH.View))
	outerMux.HandleFunc("POST /q/{token}/complete", s.rateLimitedHandler(s.qrH.Complete))

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 30, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Schedule API routes
	mux.HandleFunc("GET /api/schedules", s.scheduleH.List)
	mux.HandleFunc("POST /api/schedules", s.scheduleH.Create)
	mux.HandleFunc("GET /api/schedules/{id}", s.scheduleH.Get)
	mux.HandleFunc("PUT /api/schedules/{id}", s.scheduleH.Update)
	mux.HandleFunc("DELETE /api/schedules/{id}", s.scheduleH.Delete)

	// Schedule group API routes
	mux.HandleFunc("GET /api/groups", s.groupH.List)
	mux.HandleFunc("POST /api/groups", s.groupH.Create)
	mux.HandleFunc("PUT /api/groups/{id}", s.groupH.Update)
	mux.HandleFunc("DELETE /api/groups/{id}", s.groupH.Delete)

	// Item API routes
	mux.HandleFunc("GET /api/schedules/{id}/items", s.itemH.ListBySchedule)
	mux.HandleFunc("POST /api/schedules/{id}/items", s.itemH.Create)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)

	// Completion record review routes
	mux.HandleFunc("GET /api/records/pending", s.recordH.ListPending)
	mux.HandleFunc("POST /api/records/{id}/approve", s.recordH.Approve)
	mux.HandleFunc("POST /api/records/{id}/reject", s.recordH.Reject)

	// Admin settings routes
	mux.Handle("GET /api/admin/limit-defaults", middleware.RequireAdmin(http.HandlerFunc(s.settingsH.GetLimitDefaults)))
	mux.Handle("PUT /api/admin/limit-defaults", middleware.RequireAdmin(http.HandlerFunc(s.settingsH.UpdateLimitDefaults)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
