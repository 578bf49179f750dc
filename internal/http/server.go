package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"givetrack/internal/core"
	"givetrack/internal/log"
	"givetrack/internal/notify"
)

// Accounts is the account surface the gateway needs.
type Accounts interface {
	CreateAccount(ctx context.Context, s core.Signup) (core.Account, error)
	Authenticate(ctx context.Context, l core.Login) (core.Account, error)
}

// Contributions is the contribution surface the gateway needs.
type Contributions interface {
	RecordDonation(ctx context.Context, accountID int64, amount float64) (core.Donation, error)
	LogVolunteerHours(ctx context.Context, accountID int64, hours float64) (core.VolunteerLog, error)
	PledgeCause(ctx context.Context, accountID int64, causeName string) (core.CausePledge, error)
}

// Dashboards is the aggregation surface the gateway needs.
type Dashboards interface {
	GetDashboard(ctx context.Context, accountID int64) (core.Dashboard, error)
}

// Pinger reports store reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the owned collaborators the gateway is built from.
type Deps struct {
	Accounts      Accounts
	Contributions Contributions
	Dashboards    Dashboards
	Hub           *notify.Hub
	Store         Pinger
	Logger        *log.Logger
}

type Server struct {
	http.Server
	accounts      Accounts
	contributions Contributions
	dashboards    Dashboards
	hub           *notify.Hub
	store         Pinger
	logger        *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Nop()
	}

	s := &Server{
		accounts:      deps.Accounts,
		contributions: deps.Contributions,
		dashboards:    deps.Dashboards,
		hub:           deps.Hub,
		store:         deps.Store,
		logger:        logger.WithComponent(log.ComponentHTTP),
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		log.RequestLogger(logger),
		middleware.Recoverer,
		allowAnyOrigin,
	)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)
	r.Post("/donations", s.handleDonation)
	r.Post("/volunteer", s.handleVolunteer)
	r.Post("/causes", s.handleCause)
	r.Get("/dashboard/{user_id}", s.handleDashboard)

	if s.hub != nil {
		r.Handle("/ws", notify.NewWebsocketHandler(s.hub, logger))
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	return s
}

// Shutdown disconnects notification sessions, then drains HTTP requests.
// Hijacked websocket connections are not tracked by http.Server, so the hub
// has to let them go first.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.hub != nil {
			s.hub.CloseAll()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// allowAnyOrigin answers CORS for every origin with GET and POST.
func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
