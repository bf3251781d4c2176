package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-service/internal/config"
	"github.com/iliyamo/restaurant-table-service/internal/database"
	"github.com/iliyamo/restaurant-table-service/internal/handler"
	"github.com/iliyamo/restaurant-table-service/internal/queue"
	"github.com/iliyamo/restaurant-table-service/internal/repository"
	"github.com/iliyamo/restaurant-table-service/internal/router"
	"github.com/iliyamo/restaurant-table-service/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: running without cache and rate limiting")
	}

	tables := repository.NewTableRepo(db)
	sessions := repository.NewSessionRepo(db)
	orders := repository.NewOrderRepo(db)
	payments := repository.NewPaymentRepo(db)
	splits := repository.NewSplitRepo(db)
	staff := repository.NewStaffRepo(db)
	tokens := repository.NewTokenRepo(db)
	menu := repository.NewMenuRepo(db)

	locks := session.NewLocker(cfg.SessionStripes)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, staff, tokens))
	router.RegisterStaff(e, router.Handlers{
		Sessions: handler.NewSessionHandler(sessions, tables, payments, locks),
		Orders:   handler.NewOrderHandler(orders, sessions, menu, locks),
		Billing:  handler.NewBillingHandler(orders, sessions, payments, locks),
		Splits:   handler.NewSplitHandler(splits, orders, payments, sessions, locks),
		Tables:   handler.NewTableHandler(tables, sessions),
	}, cfg, rdb)

	// kitchen ticket consumer; reconnects on its own, never takes the
	// server down
	go func() {
		if err := queue.StartKitchenConsumer(); err != nil {
			log.Printf("kitchen consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
