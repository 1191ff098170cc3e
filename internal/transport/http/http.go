package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/deliveryzone"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/product"
	"github.com/corray333/backend-labs/meatshop/internal/service/session"
	"github.com/corray333/backend-labs/meatshop/internal/service/ticket"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/auth"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/catalog"
	createorder "github.com/corray333/backend-labs/meatshop/internal/transport/http/create_order"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/docs"
	elapsedhandler "github.com/corray333/backend-labs/meatshop/internal/transport/http/elapsed"
	listorders "github.com/corray333/backend-labs/meatshop/internal/transport/http/list_orders"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/notifications"
	orderactions "github.com/corray333/backend-labs/meatshop/internal/transport/http/order_actions"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/sessions"
	tickethandler "github.com/corray333/backend-labs/meatshop/internal/transport/http/ticket"
	updateorder "github.com/corray333/backend-labs/meatshop/internal/transport/http/update_order"
	"github.com/corray333/backend-labs/meatshop/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/meatshop/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// sessionService logs staff in and out and resolves their tokens.
type sessionService interface {
	Login(ctx context.Context, staffID, pin string) (*session.Session, error)
	Logout(token string) error
	Get(token string) (*session.Session, error)
}

// catalogService maintains delivery zones and products.
type catalogService interface {
	ListZones(ctx context.Context) ([]deliveryzone.Zone, error)
	CreateZone(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error)
	UpdateZone(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error)
	DeleteZone(ctx context.Context, id string) error

	ListProducts(ctx context.Context, onlyAvailable bool) ([]product.Product, error)
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
	UpdateProduct(ctx context.Context, p product.Product) (product.Product, error)
	SetAvailability(ctx context.Context, id string, available bool) (product.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type printer interface {
	Render(o order.Order, f ticket.Format) (string, error)
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	sessions sessionService
	catalog  catalogService
	printer  printer
	interval time.Duration
}

func NewHTTPTransport(sessions sessionService, catalog catalogService, printer printer) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	interval := time.Duration(viper.GetInt("server.http.elapsed_interval_ms")) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}

	return &HTTPTransport{
		server:   server,
		router:   router,
		sessions: sessions,
		catalog:  catalog,
		printer:  printer,
		interval: interval,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for the open ones.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler returns the router, for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/swagger/openapi.yaml", docs.ServeOpenAPI)
	h.router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/openapi.yaml")))

	h.router.Route("/api", func(r chi.Router) {
		r.Post("/sessions", h.login)
		r.Delete("/sessions", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(auth.NewAuthMiddleware(h.sessions))

			r.Get("/sync", sessions.SyncStatus)
			r.Get("/notifications", notifications.Drain)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", listorders.ListOrders)
				r.Post("/", createorder.CreateOrder)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", orderactions.GetOrder)
					r.Patch("/", updateorder.UpdateOrder)
					r.Delete("/", orderactions.Delete)
					r.Post("/accept", orderactions.Accept)
					r.Post("/cancel", orderactions.Cancel)
					r.Post("/send", orderactions.Send)
					r.Post("/deliver", orderactions.Deliver)
					r.Post("/pay", orderactions.Pay)
					r.Get("/ticket", h.ticket)
					r.Get("/elapsed", elapsedhandler.Elapsed)
					r.Get("/elapsed/stream", h.elapsedStream)
				})
			})

			r.Route("/delivery-zones", func(r chi.Router) {
				r.Get("/", h.listZones)
				r.Post("/", h.saveZone)
				r.Put("/{id}", h.saveZone)
				r.Delete("/{id}", h.deleteZone)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.listProducts)
				r.Post("/", h.saveProduct)
				r.Put("/{id}", h.saveProduct)
				r.Delete("/{id}", h.deleteProduct)
				r.Post("/{id}/availability", h.setAvailability)
			})
		})
	})
}

func (h *HTTPTransport) login(w http.ResponseWriter, r *http.Request) {
	sessions.Login(w, r, h.sessions)
}

func (h *HTTPTransport) logout(w http.ResponseWriter, r *http.Request) {
	sessions.Logout(w, r, h.sessions)
}

func (h *HTTPTransport) ticket(w http.ResponseWriter, r *http.Request) {
	tickethandler.Ticket(w, r, h.printer)
}

func (h *HTTPTransport) elapsedStream(w http.ResponseWriter, r *http.Request) {
	elapsedhandler.Stream(w, r, h.interval)
}

func (h *HTTPTransport) listZones(w http.ResponseWriter, r *http.Request) {
	catalog.ListZones(w, r, h.catalog)
}

func (h *HTTPTransport) saveZone(w http.ResponseWriter, r *http.Request) {
	catalog.SaveZone(w, r, h.catalog)
}

func (h *HTTPTransport) deleteZone(w http.ResponseWriter, r *http.Request) {
	catalog.DeleteZone(w, r, h.catalog)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	catalog.ListProducts(w, r, h.catalog)
}

func (h *HTTPTransport) saveProduct(w http.ResponseWriter, r *http.Request) {
	catalog.SaveProduct(w, r, h.catalog)
}

func (h *HTTPTransport) deleteProduct(w http.ResponseWriter, r *http.Request) {
	catalog.DeleteProduct(w, r, h.catalog)
}

func (h *HTTPTransport) setAvailability(w http.ResponseWriter, r *http.Request) {
	catalog.SetAvailability(w, r, h.catalog)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(middleware.Recoverer)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
