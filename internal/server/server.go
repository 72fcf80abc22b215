package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/autoagenda/internal/agenda"
	"github.com/dukerupert/autoagenda/internal/auth"
	"github.com/dukerupert/autoagenda/internal/config"
	"github.com/dukerupert/autoagenda/internal/handler"
	"github.com/dukerupert/autoagenda/internal/intake"
	"github.com/dukerupert/autoagenda/internal/middleware"
	"github.com/dukerupert/autoagenda/internal/nlu"
	"github.com/dukerupert/autoagenda/internal/recurrence"
	"github.com/dukerupert/autoagenda/internal/reminder"
	"github.com/dukerupert/autoagenda/internal/store"
	"github.com/dukerupert/autoagenda/internal/temporal"
	ws "github.com/dukerupert/autoagenda/internal/websocket"
)

const (
	tokenRateLimit  = 10
	tokenRatePeriod = time.Minute
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	authH       *handler.AuthHandler
	taskH       *handler.TaskHandler
	eventH      *handler.EventHandler
	agendaH     *handler.AgendaHandler
	reminderH   *handler.ReminderHandler
	userStore   *store.UserStore
	tokens      *auth.TokenIssuer
	rateLimiter *middleware.RateLimiter
	sweeper     *reminder.Sweeper
	logger      *slog.Logger
}

// New wires stores, the temporal and agenda cores, and the handlers over db.
// extractor may be nil, in which case cfg selects one.
func New(db *sql.DB, cfg *config.Config, extractor nlu.Extractor, logger *slog.Logger) *Server {
	zone := cfg.Location()
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	taskStore := store.NewTaskStore(db)
	eventStore := store.NewEventStore(db)
	reminderStore := store.NewReminderStore(db)

	if extractor == nil {
		extractor = nlu.New(cfg, logger.With("component", "nlu"))
	}

	eval := recurrence.NewRRuleEvaluator(cfg.MaxOccurrences, logger.With("component", "recurrence"))
	resolver := temporal.NewResolver(temporal.NewDateParser(cfg.Language), temporal.LanguageFor(cfg.Language))
	materializer := agenda.New(taskStore, eventStore, eval, zone, logger.With("component", "agenda"))
	intakeSvc := intake.NewService(extractor, resolver, materializer, taskStore, eventStore, zone, logger.With("component", "intake"))
	tokens := auth.NewTokenIssuer(cfg.SecretKey, cfg.TokenTTL)

	return &Server{
		db:          db,
		hub:         hub,
		authH:       handler.NewAuthHandler(userStore, tokens, logger.With("component", "auth")),
		taskH:       handler.NewTaskHandler(taskStore, intakeSvc, hub),
		eventH:      handler.NewEventHandler(eventStore, intakeSvc, hub, zone),
		agendaH:     handler.NewAgendaHandler(materializer),
		reminderH:   handler.NewReminderHandler(reminderStore, taskStore, hub),
		userStore:   userStore,
		tokens:      tokens,
		rateLimiter: middleware.NewRateLimiter(tokenRateLimit, tokenRatePeriod),
		sweeper:     reminder.NewSweeper(reminderStore, eval, hub, zone, logger.With("component", "reminder")),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Sweeper returns the due-reminder sweeper.
func (s *Server) Sweeper() *reminder.Sweeper {
	return s.sweeper
}

func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("GET /ping", s.pingHandler)
	outerMux.HandleFunc("POST /auth/register", s.authH.Register)
	outerMux.Handle("POST /auth/token", middleware.RateLimit(s.rateLimiter)(http.HandlerFunc(s.authH.Token)))

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		status = "database unavailable"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "pong"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /users/me", s.authH.Me)

	mux.HandleFunc("POST /tasks", s.taskH.Create)
	mux.HandleFunc("GET /tasks", s.taskH.List)
	mux.HandleFunc("POST /tasks/from-text", s.taskH.FromText)
	mux.HandleFunc("GET /tasks/{id}", s.taskH.Get)
	mux.HandleFunc("POST /tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /tasks/{id}/reopen", s.taskH.Reopen)
	mux.HandleFunc("DELETE /tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /notes/text", s.taskH.FromNote)

	mux.HandleFunc("POST /events", s.eventH.Create)
	mux.HandleFunc("GET /events", s.eventH.List)
	mux.HandleFunc("POST /events/from-text", s.eventH.FromText)
	mux.HandleFunc("GET /events/{id}", s.eventH.Get)
	mux.HandleFunc("PUT /events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /events/{id}", s.eventH.Delete)

	mux.HandleFunc("GET /agenda", s.agendaH.List)
	mux.HandleFunc("GET /agenda.ics", s.agendaH.ICS)

	mux.HandleFunc("POST /reminders", s.reminderH.Create)
	mux.HandleFunc("GET /reminders", s.reminderH.List)
	mux.HandleFunc("DELETE /reminders/{id}", s.reminderH.Delete)

	mux.HandleFunc("GET /ws", ws.Handle(s.hub, nil))
}
