package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/amgst/mapapp2/internal/catalog"
	"github.com/amgst/mapapp2/internal/config"
	"github.com/amgst/mapapp2/internal/embed"
	"github.com/amgst/mapapp2/internal/locator"
	"github.com/amgst/mapapp2/internal/session"
	"github.com/amgst/mapapp2/internal/shop"
)

// Deps bundles what the HTTP surface needs. Stores and Shop are
// optional; their endpoints report an error when absent.
type Deps struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	Sessions *session.Manager
	Stores   *locator.Repository
	Shop     *shop.Client
	Logger   *log.Logger
}

// NewHandlers creates the route handlers.
func NewHandlers(deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Handlers{
		cfg:      deps.Config,
		catalog:  deps.Catalog,
		sessions: deps.Sessions,
		stores:   deps.Stores,
		shop:     deps.Shop,
		logger:   logger,
		outboxes: make(map[string]*outbox),
		bridges:  make(map[string]*embed.Bridge),
	}
}

// NewServer creates and configures the HTTP server for the builder API.
func NewServer(deps Deps, bind string, port int) *http.Server {
	h := NewHandlers(deps)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: NewRouter(h),
	}
}

// NewRouter builds the route table.
func NewRouter(h *Handlers) http.Handler {
	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /api/catalog", h.HandleCatalog)
	mux.HandleFunc("POST /api/sessions", h.HandleCreateSession)
	mux.HandleFunc("POST /api/sessions/{productId}", h.HandleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/product", h.HandleChooseProduct)
	mux.HandleFunc("POST /api/sessions/{id}/size", h.HandleChooseSize)
	mux.HandleFunc("POST /api/sessions/{id}/tool", h.HandleSetTool)
	mux.HandleFunc("POST /api/sessions/{id}/elements", h.HandleAddElement)
	mux.HandleFunc("PATCH /api/sessions/{id}/elements/{elementId}", h.HandleUpdateElement)
	mux.HandleFunc("DELETE /api/sessions/{id}/elements/{elementId}", h.HandleRemoveElement)
	mux.HandleFunc("DELETE /api/sessions/{id}/elements", h.HandleClearElements)
	mux.HandleFunc("PUT /api/sessions/{id}/map-bounds", h.HandleMapBounds)
	mux.HandleFunc("POST /api/sessions/{id}/save", h.HandleSave)
	mux.HandleFunc("POST /api/sessions/{id}/message", h.HandleMessage)
	mux.HandleFunc("GET /api/sessions/{id}/messages", h.HandleMessages)
	mux.HandleFunc("GET /api/previews/{previewId}", h.HandlePreview)
	mux.HandleFunc("GET /api/stores/search", h.HandleStoreSearch)
	mux.HandleFunc("GET /api/shop", h.HandleShop)

	return securityHeaders(mux, h.cfg.AllowedOrigins)
}

// securityHeaders adds security-related HTTP headers to all responses.
// This app is built to run inside host-page iframes, so framing is
// permitted: for the configured origins when an allowlist is set, for
// any ancestor otherwise.
func securityHeaders(next http.Handler, allowedOrigins []string) http.Handler {
	ancestors := "*"
	if len(allowedOrigins) > 0 {
		ancestors = strings.Join(allowedOrigins, " ")
	}
	csp := "default-src 'self'; frame-ancestors " + ancestors

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", csp)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *log.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("builder API running", "addr", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
