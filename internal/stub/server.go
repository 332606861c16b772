package stub

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"orderdesk/internal/config"
	"orderdesk/internal/orders"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const recentOrderLimit = 15

// Server wires the development backend handlers together.
type Server struct {
	repo  *Store
	cfg   *config.Stub
	cache *orderCache
}

// NewServer creates the development backend over a seeded store.
func NewServer(repo *Store, cfg *config.Stub) *Server {
	return &Server{
		repo:  repo,
		cfg:   cfg,
		cache: newOrderCache(cfg.OrderCacheTTL),
	}
}

// Routes assembles the router with the wire contract the portal client
// consumes.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(CORS(s.cfg.AllowedOrigins))

	r.Post("/token", s.handleToken)
	r.Post("/logout", s.withCustomer(s.handleLogout))
	r.Get("/me", s.withCustomer(s.handleMe))
	r.Get("/validate", s.withCustomer(s.handleValidate))

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", s.withCustomer(s.handleListOrders))
		r.Get("/{orderID}", s.withCustomer(s.handleGetOrder))
	})

	r.Post("/agent/", s.withCustomer(s.handleAgent))

	return r
}

func (s *Server) withCustomer(h http.HandlerFunc) http.HandlerFunc {
	return s.requireCustomer(h).ServeHTTP
}

// handleToken performs the credential exchange: a known customer id and an
// empty password buy an HttpOnly session cookie.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		Error(w, http.StatusBadRequest, "invalid form body")
		return
	}
	username := strings.ToUpper(strings.TrimSpace(r.PostFormValue("username")))
	if username == "" {
		Error(w, http.StatusBadRequest, "username is required")
		return
	}

	exists, err := s.repo.CustomerExists(r.Context(), username)
	if err != nil {
		slog.Error("customer lookup failed", "error", err)
		Error(w, http.StatusInternalServerError, "customer lookup failed")
		return
	}
	if !exists {
		Error(w, http.StatusUnauthorized, "Invalid customer ID")
		return
	}

	s.setSessionCookie(w, username)
	JSON(w, http.StatusOK, map[string]string{
		"message":     "Login successful",
		"customer_id": username,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	customerID := CustomerIDFromContext(r.Context())
	s.cache.clear(customerID)
	s.clearSessionCookie(w)
	JSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"customer_id": CustomerIDFromContext(r.Context()),
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"valid":       true,
		"customer_id": CustomerIDFromContext(r.Context()),
	})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	customerID := CustomerIDFromContext(r.Context())

	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(r, "per_page", 10)
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	tranid := r.URL.Query().Get("tranid")

	list, err := s.repo.ListOrders(r.Context(), customerID, tranid, perPage, (page-1)*perPage)
	if err != nil {
		slog.Error("order list failed", "customer_id", customerID, "error", err)
		Error(w, http.StatusInternalServerError, "order lookup failed")
		return
	}
	if list == nil {
		list = []orders.Order{}
	}

	JSON(w, http.StatusOK, map[string]any{
		"customer_id": customerID,
		"orders":      list,
	})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	customerID := CustomerIDFromContext(r.Context())
	orderID := chi.URLParam(r, "orderID")

	order, err := s.repo.GetOrder(r.Context(), customerID, orderID)
	if err != nil {
		slog.Error("order detail failed", "customer_id", customerID, "order_id", orderID, "error", err)
		Error(w, http.StatusInternalServerError, "order lookup failed")
		return
	}
	if order == nil {
		Error(w, http.StatusNotFound, "Order not found or does not belong to the authenticated customer")
		return
	}
	JSON(w, http.StatusOK, order)
}

type agentRequest struct {
	Message          string `json:"message"`
	PreviousMessages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"previous_messages"`
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	customerID := CustomerIDFromContext(r.Context())

	var req agentRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	var recent []orders.Order
	if needsOrderData(req.Message) {
		recent = s.recentOrders(r, customerID)
	}

	slog.Info("agent turn",
		"customer_id", customerID,
		"message_length", len(req.Message),
		"history_length", len(req.PreviousMessages),
	)

	JSON(w, http.StatusOK, composeTurn(req.Message, recent))
}

// recentOrders serves the agent from the per-customer cache when possible.
func (s *Server) recentOrders(r *http.Request, customerID string) []orders.Order {
	if cached, ok := s.cache.get(customerID); ok {
		return cached
	}
	list, err := s.repo.ListOrders(r.Context(), customerID, "", recentOrderLimit, 0)
	if err != nil {
		slog.Warn("agent order fetch failed", "customer_id", customerID, "error", err)
		return nil
	}
	s.cache.set(customerID, list)
	return list
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
