package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"shopfloor/internal/auth"
	authhandler "shopfloor/internal/auth/handler"
	"shopfloor/internal/auth/revocation"
	httpapi "shopfloor/internal/http"
	"shopfloor/internal/inventory"
	inventoryhandler "shopfloor/internal/inventory/handler"
	"shopfloor/internal/jwttoken"
	"shopfloor/internal/platform/config"
	"shopfloor/internal/platform/httpserver"
	"shopfloor/internal/platform/logger"
	"shopfloor/internal/product"
	producthandler "shopfloor/internal/product/handler"
	"shopfloor/internal/quality"
	qualityhandler "shopfloor/internal/quality/handler"
	qmetrics "shopfloor/internal/quality/metrics"
	"shopfloor/internal/workorder"
	workorderhandler "shopfloor/internal/workorder/handler"
	wometrics "shopfloor/internal/workorder/metrics"
)

// main wires stores, services, and the router, then runs the server until a
// shutdown signal arrives. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	// Storage: Postgres when configured, in-memory otherwise so the service
	// runs without external dependencies in local development.
	var (
		productStore   product.Store
		inventoryStore inventory.Store
		workOrderStore workorder.Store
		qualityStore   quality.Store
		userStore      auth.UserStore
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(context.Background()); err != nil {
			log.Error("failed to reach database", "error", err)
			os.Exit(1)
		}
		productStore = product.NewPostgres(db)
		inventoryStore = inventory.NewPostgres(db)
		workOrderStore = workorder.NewPostgres(db)
		qualityStore = quality.NewPostgres(db)
		userStore = auth.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		productStore = product.NewInMemory()
		inventoryStore = inventory.NewInMemory()
		workOrderStore = workorder.NewInMemory()
		qualityStore = quality.NewInMemory()
		userStore = auth.NewInMemory()
	}

	// Token revocation: shared via Redis when configured.
	var revoked revocation.List
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Error("failed to reach redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		revoked = revocation.NewRedisList(client)
	} else {
		log.Warn("REDIS_ADDR not set, using in-memory revocation list")
		revoked = revocation.NewMemoryList()
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	inventoryService := inventory.NewService(inventoryStore, log)
	productService := product.NewService(productStore, inventoryService, log)
	workOrderService := workorder.NewService(workOrderStore, productStore, inventoryStore, wometrics.New(), log)
	qualityService := quality.NewService(qualityStore, workOrderStore, qmetrics.New(), log)
	authService := auth.NewService(userStore, jwtService, revoked, cfg.AccessTokenTTL, log)

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:         authhandler.New(authService, log),
		Product:      producthandler.New(productService, log),
		Inventory:    inventoryhandler.New(inventoryService, log),
		WorkOrder:    workorderhandler.New(workOrderService, log),
		Quality:      qualityhandler.New(qualityService, log),
		JWTValidator: jwtService,
		Revocation:   revoked,
		Logger:       log,
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting shopfloor server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
