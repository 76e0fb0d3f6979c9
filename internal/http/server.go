package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"finchat/internal/ledger"
	"finchat/internal/log"
	"finchat/internal/middleware/ratelimit"
	"finchat/internal/middleware/security"
	"finchat/internal/middleware/trace"
	"finchat/internal/services"
)

// Answerer produces the reply to a chat message.
type Answerer interface {
	Answer(ctx context.Context, userID, message string) (services.Answer, error)
}

type Options struct {
	Logger *log.Logger
	// Ready is pinged by /readyz when set.
	Ready              ledger.Pinger
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	AllowedOrigins     []string
}

type Server struct {
	http.Server
	chat           Answerer
	ready          ledger.Pinger
	logger         *log.Logger
	requestTimeout time.Duration
	rateLimiter    *ratelimit.Limiter
	shutdownOnce   sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, chat Answerer, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 45 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		chat:           chat,
		ready:          opts.Ready,
		logger:         opts.Logger.WithComponent(log.ComponentHTTP),
		requestTimeout: opts.RequestTimeout,
		rateLimiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
	}

	ips := security.NewClientIPResolver()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(trace.Middleware(ips.ClientIP))
	r.Use(log.Middleware(s.logger, trace.GetRequestID))
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(security.CORS(opts.AllowedOrigins))

	r.Get("/", handleRoot)
	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.With(s.rateLimiter.Middleware(ips.ClientIP, handleRateLimited)).Post("/chat", s.handleChat)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Leave room for the request timeout plus the response write.
		WriteTimeout: opts.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
