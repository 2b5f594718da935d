package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/okanerk/restaurant-loyalty/internal/config"
	"github.com/okanerk/restaurant-loyalty/internal/database"
	"github.com/okanerk/restaurant-loyalty/internal/handler"
	"github.com/okanerk/restaurant-loyalty/internal/loyalty"
	appmw "github.com/okanerk/restaurant-loyalty/internal/middleware"
	"github.com/okanerk/restaurant-loyalty/internal/queue"
	"github.com/okanerk/restaurant-loyalty/internal/repository"
	"github.com/okanerk/restaurant-loyalty/internal/router"
	"github.com/okanerk/restaurant-loyalty/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	program, err := config.LoadProgram()
	if err != nil {
		log.Fatalf("program config: %v", err)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter.  A nil client
	// degrades both middlewares to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}
	cacheMW := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)
	rateMW := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	customers := repository.NewCustomerRepo(db)
	rewards := repository.NewRewardRepo(db)
	ledger := repository.NewLedgerRepo(db)
	redemptions := repository.NewRedemptionRepo(db)

	// Services and the ephemeral session registry.
	accrual := service.NewAccrualService(db, customers, ledger, program)
	engine := service.NewRedemptionEngine(db, customers, rewards, ledger, redemptions)
	sessions := loyalty.NewSessionStore(program.SessionTTL)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	portalH := handler.NewPortalHandler(customers, rewards, ledger, accrual, engine, sessions, program)
	staffH := handler.NewStaffHandler(customers, rewards, redemptions, accrual, sessions, program)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPortal(e, portalH, rateMW, cacheMW)
	router.RegisterStaff(e, staffH, cfg.JWTSecret)

	// Background consumer writing confirmed redemptions to logs/redemption.log.
	go func() {
		if err := queue.StartRedemptionConsumer(); err != nil {
			log.Printf("redemption consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
