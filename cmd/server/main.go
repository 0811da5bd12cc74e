package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-allocation/internal/config"
	"github.com/iliyamo/ticket-allocation/internal/database"
	"github.com/iliyamo/ticket-allocation/internal/handler"
	"github.com/iliyamo/ticket-allocation/internal/queue"
	"github.com/iliyamo/ticket-allocation/internal/repository"
	"github.com/iliyamo/ticket-allocation/internal/router"
	"github.com/iliyamo/ticket-allocation/internal/runner"
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the run cursor only lives in-process.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; run cursor will not survive restarts")
	}

	orders := repository.NewOrderRepo(db)
	tickets := repository.NewTicketRepo(db)
	progress := repository.NewProgressRepo(rdb)

	run := runner.New(runner.Config{
		SeatingRulesPath: cfg.SeatingRulesPath,
		HierarchyPath:    cfg.HierarchyPath,
		MappingDir:       cfg.MappingDir,
		Commit:           cfg.RunMode == "assign",
	}, orders, tickets, progress)

	// Background consumer that appends assignment events to the audit log.
	go func() {
		if err := queue.StartAssignmentConsumer(); err != nil {
			log.Printf("assignment consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e, handler.NewAuthHandler(cfg))
	router.RegisterRuns(e, handler.NewRunHandler(run), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, mode=%s)", addr, cfg.Env, cfg.RunMode)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
