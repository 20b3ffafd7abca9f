package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/craftpack/packstore/internal/cart"
	"github.com/craftpack/packstore/internal/catalog"
	"github.com/craftpack/packstore/internal/checkout"
	"github.com/craftpack/packstore/internal/config"
	"github.com/craftpack/packstore/internal/crm"
	"github.com/craftpack/packstore/internal/orders"
	"github.com/craftpack/packstore/internal/receipt"
	"github.com/craftpack/packstore/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load[config.Storefront]()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "storefront", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, err := telemetry.InitMeterProvider("storefront", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter provider", "error", err)
		os.Exit(1)
	}

	db, err := telemetry.OpenDB(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = redisClient.Close() }()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	rates := checkout.Rates{
		TaxRateBps:  cfg.TaxRateBps,
		ShippingFee: cfg.ShippingCents,
	}
	business := receipt.Business{
		Name:    "Craftpack Supply Co.",
		Address: "14 Mill Road, Portland, OR",
		Phone:   "(503) 555-0144",
	}

	carts := cart.NewService(cart.NewRedisStore(redisClient, 7*24*time.Hour))
	cartHandler := cart.NewHandler(carts, logger)

	orderClient := orders.NewClient(cfg.OrdersURL, httpClient)
	confirmer := checkout.NewConfirmer(carts, orderClient, rates, logger)
	checkoutHandler := checkout.NewHandler(confirmer, carts, rates, business, logger)

	catalogHandler := catalog.NewHandler(catalog.NewRepository(db), logger)
	contactHandler := crm.NewContactHandler(crm.NewContactRepository(db), logger)
	quoteHandler := crm.NewQuoteHandler(crm.NewQuoteRepository(db), logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /products", telemetry.WithHTTPRoute(catalogHandler.HandleList))
	mux.HandleFunc("GET /products/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleGet))

	mux.HandleFunc("GET /cart/{session}", telemetry.WithHTTPRoute(cartHandler.HandleGet))
	mux.HandleFunc("POST /cart/{session}/items", telemetry.WithHTTPRoute(cartHandler.HandleAddItem))
	mux.HandleFunc("PATCH /cart/{session}/items/{key}", telemetry.WithHTTPRoute(cartHandler.HandleUpdateQuantity))
	mux.HandleFunc("DELETE /cart/{session}/items/{key}", telemetry.WithHTTPRoute(cartHandler.HandleRemoveItem))
	mux.HandleFunc("DELETE /cart/{session}", telemetry.WithHTTPRoute(cartHandler.HandleClear))

	mux.HandleFunc("POST /checkout/{session}/totals", telemetry.WithHTTPRoute(checkoutHandler.HandleTotals))
	mux.HandleFunc("POST /checkout/{session}/confirm", telemetry.WithHTTPRoute(checkoutHandler.HandleConfirm))

	mux.HandleFunc("POST /contact", telemetry.WithHTTPRoute(contactHandler.HandleSubmit))
	mux.HandleFunc("POST /quotes", telemetry.WithHTTPRoute(quoteHandler.HandleSubmit))

	mux.HandleFunc("GET /admin/contacts", telemetry.WithHTTPRoute(contactHandler.HandleList))
	mux.HandleFunc("GET /admin/contacts/{id}", telemetry.WithHTTPRoute(contactHandler.HandleGet))
	mux.HandleFunc("PUT /admin/contacts/{id}/status", telemetry.WithHTTPRoute(contactHandler.HandleUpdateStatus))
	mux.HandleFunc("DELETE /admin/contacts/{id}", telemetry.WithHTTPRoute(contactHandler.HandleDelete))

	mux.HandleFunc("GET /admin/quotes", telemetry.WithHTTPRoute(quoteHandler.HandleList))
	mux.HandleFunc("GET /admin/quotes/{id}", telemetry.WithHTTPRoute(quoteHandler.HandleGet))
	mux.HandleFunc("PUT /admin/quotes/{id}/status", telemetry.WithHTTPRoute(quoteHandler.HandleUpdateStatus))
	mux.HandleFunc("DELETE /admin/quotes/{id}", telemetry.WithHTTPRoute(quoteHandler.HandleDelete))

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, "storefront",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsHandler,
	}

	go func() {
		logger.Info("starting metrics server", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	go func() {
		logger.Info("starting storefront service", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	_ = metricsServer.Shutdown(shutdownCtx)
}
