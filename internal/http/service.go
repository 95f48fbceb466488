package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/qalicha-dev28/boutique-pos/internal/auth"
	"github.com/qalicha-dev28/boutique-pos/internal/config"
	"github.com/qalicha-dev28/boutique-pos/internal/http/metric"
	"github.com/qalicha-dev28/boutique-pos/internal/http/middleware"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/service"
	"github.com/qalicha-dev28/boutique-pos/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg        config.HTTP
	logger     *slog.Logger
	metrics    *metric.Metrics
	tokenMaker *auth.TokenMaker
	responder  *responder

	authSvc      service.AuthService
	productSvc   service.ProductService
	customerSvc  service.CustomerService
	inventorySvc service.InventoryService
	saleSvc      service.SaleService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	validate validator.Validator,
	tokenMaker *auth.TokenMaker,
	authSvc service.AuthService,
	productSvc service.ProductService,
	customerSvc service.CustomerService,
	inventorySvc service.InventoryService,
	saleSvc service.SaleService,
) *Service {
	logger := log.With(slog.String("service", "http"))
	return &Service{
		cfg:        cfg,
		logger:     logger,
		metrics:    metric.New(),
		tokenMaker: tokenMaker,
		responder: &responder{
			logger:   logger,
			validate: validate,
		},
		authSvc:      authSvc,
		productSvc:   productSvc,
		customerSvc:  customerSvc,
		inventorySvc: inventorySvc,
		saleSvc:      saleSvc,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)
	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	authH := newAuthHandler(s.responder, s.authSvc)
	productH := newProductHandler(s.responder, s.productSvc)
	customerH := newCustomerHandler(s.responder, s.customerSvc)
	inventoryH := newInventoryHandler(s.responder, s.inventorySvc)
	saleH := newSaleHandler(s.responder, s.saleSvc)

	authn := middleware.Authenticate(s.tokenMaker)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	managers := middleware.RequireRole(model.RoleAdmin, model.RoleManager)
	sellers := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleCashier)
	stockControl := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStockController)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authH.login)

		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Get("/auth/me", authH.me)
			r.With(managers).Post("/auth/register", authH.register)
			r.With(managers).Get("/auth/users", authH.listUsers)
			r.With(adminOnly).Put("/auth/users/{id}", authH.updateUser)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productH.list)
				r.Get("/search", productH.search)
				r.Get("/low-stock", inventoryH.listLowStock)
				r.Get("/categories", productH.listCategories)
				r.With(managers).Post("/categories", productH.createCategory)
				r.Get("/{id}", productH.get)
				r.With(managers).Post("/", productH.create)
				r.With(managers).Put("/{id}", productH.update)
				r.With(adminOnly).Delete("/{id}", productH.delete)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", customerH.list)
				r.Get("/search", customerH.search)
				r.Get("/{id}", customerH.get)
				r.Get("/{id}/purchases", customerH.purchaseHistory)
				r.Post("/", customerH.create)
				r.Put("/{id}", customerH.update)
				r.With(sellers).Put("/{id}/loyalty", customerH.creditPoints)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", inventoryH.list)
				r.Get("/low-stock", inventoryH.listLowStock)
				r.Get("/expiring", inventoryH.listExpiring)
				r.Get("/adjustments", inventoryH.listAdjustments)
				r.With(stockControl).Post("/adjust", inventoryH.adjust)
				r.With(managers).Put("/reorder-level", inventoryH.updateReorderLevel)
			})

			r.Route("/sales", func(r chi.Router) {
				r.Get("/", saleH.list)
				r.Get("/summary/today", saleH.summaryToday)
				r.Get("/{id}", saleH.get)
				r.With(sellers).Post("/", saleH.create)
				r.With(managers).Post("/{id}/refund", saleH.refund)
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write([]byte("ok"))
	})

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}
