package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"panelsim/adapters/llm"
	"panelsim/adapters/postgres"
	"panelsim/app"
	"panelsim/internal/aggregate"
	"panelsim/internal/cache"
	"panelsim/internal/compare"
	"panelsim/internal/config"
	"panelsim/internal/errors"
	"panelsim/internal/migration"
	"panelsim/internal/report"
	"panelsim/internal/simulation"
	"panelsim/ports"
	"panelsim/ui"
)

func main() {
	// .env is optional; real deployments set environment variables directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	chatClient, err := llm.NewOpenAIClient(llm.Config{
		APIKey:      cfg.Oracle.APIKey,
		BaseURL:     cfg.Oracle.BaseURL,
		Model:       cfg.Oracle.Model,
		MaxTokens:   cfg.Oracle.MaxTokens,
		Temperature: cfg.Oracle.Temperature,
		Timeout:     cfg.Oracle.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to create oracle client: %v", err)
	}
	oracle := llm.NewOracle(chatClient, cfg.Oracle.Model)

	statsCache := cache.New(cfg.Cache.TTL, ports.SystemClock{})
	defer statsCache.Close()

	service := app.NewStudyService(app.StudyServiceDeps{
		Engine:     simulation.NewEngine(oracle, cfg.Simulation.Concurrency),
		Aggregator: aggregate.NewAggregator(cfg.Simulation.SampleCap),
		Comparator: compare.NewComparator(cfg.Simulation.StableBand, cfg.Simulation.SampleCap),
		Studies:    postgres.NewStudyRepository(db),
		Responses:  postgres.NewResponseRepository(db),
		StatsCache: statsCache,
		PanelSeed:  cfg.Simulation.Seed,
	})

	gin.SetMode(cfg.Server.GinMode)
	server := ui.NewServer(service, report.NewGenerator())
	log.Printf("Starting panelsim API on :%s", cfg.Server.Port)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// initDatabase opens the PostgreSQL connection pool
func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	if cfg.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return db, nil
}
