// Package app wires the service together: config, storage, clients, and
// the HTTP server, with graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"rental-pricing-ai/analysis"
	"rental-pricing-ai/api"
	"rental-pricing-ai/cache"
	"rental-pricing-ai/chat"
	"rental-pricing-ai/config"
	"rental-pricing-ai/database"
	"rental-pricing-ai/llm"
	"rental-pricing-ai/pricelabs"
)

// shutdownTimeout bounds how long in-flight requests get to finish
const shutdownTimeout = 10 * time.Second

// App represents the main application
type App struct {
	config   *config.Config
	db       *database.Database
	redis    *cache.RedisClient
	analysis *analysis.Service
	chat     *chat.Service
	server   *http.Server
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{config: cfg}
}

// Start starts the application and blocks until shutdown
func (a *App) Start() error {
	// 1. Database Connection
	fmt.Println("🗄️  Connecting to database...")

	dbPort, err := strconv.Atoi(a.config.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid database port: %w", err)
	}

	db, err := database.Connect(
		a.config.DatabaseHost,
		dbPort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db

	if err := a.db.InitSchema(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// 2. Redis Connection
	fmt.Println("🧠 Connecting to Redis...")
	redisClient := cache.NewRedisClient(
		a.config.RedisHost,
		a.config.RedisPort,
		a.config.RedisPassword,
	)
	if redisClient == nil {
		fmt.Println("⚠️  Redis connection failed. Caching disabled.")
	} else {
		a.redis = redisClient
	}

	// 3. PriceLabs client
	source := pricelabs.NewClient(a.config.PriceLabs.BaseURL, a.config.PriceLabs.APIKey)

	// 4. LLM client if enabled
	var llmClient *llm.Client
	if a.config.LLM.Enabled {
		llmClient = llm.NewClient(a.config.LLM.Endpoint, a.config.LLM.APIKey, a.config.LLM.Model)
		log.Printf("✅ LLM Pricing Analysis ENABLED (Model: %s)", a.config.LLM.Model)
	} else {
		log.Println("ℹ️  LLM Pricing Analysis DISABLED")
	}

	// 5. Analysis service
	var analysisCache *cache.AnalysisCache
	if a.redis != nil {
		analysisCache = cache.NewAnalysisCache(a.redis)
	}

	var analyzer analysis.Analyzer
	if llmClient != nil {
		analyzer = llmClient
	}

	a.analysis = analysis.NewService(source, analyzer, analysisCache, a.db, analysis.Options{
		ListingID:         a.config.PriceLabs.ListingID,
		PMS:               a.config.PriceLabs.PMS,
		Bedrooms:          a.config.PriceLabs.Bedrooms,
		Model:             a.config.LLM.Model,
		MaxNights:         a.config.LLM.MaxNightsPerRequest,
		RequestsPerSecond: a.config.LLM.RequestsPerSecond,
	})

	// 6. Chat service, only when the LLM is on
	if llmClient != nil {
		var store chat.Store
		if a.redis != nil {
			store = chat.NewRedisStore(a.redis, a.config.Chat.MaxHistoryMessages)
		} else {
			store = chat.NewMemoryStore(a.config.Chat.MaxHistoryMessages)
		}
		a.chat = chat.NewService(llmClient, store, a.analysis)
	}

	// 7. HTTP server
	apiServer := api.NewServer(a.analysis, a.chat)
	a.server = &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", a.config.Port),
		Handler: apiServer.Handler(),
	}

	go func() {
		log.Printf("🚀 API Server starting on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️  API Server failed: %v", err)
		}
	}()

	return a.gracefulShutdown()
}

// gracefulShutdown blocks until an interrupt, then drains the server and
// closes connections with a timeout
func (a *App) gracefulShutdown() error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  HTTP server shutdown: %v", err)
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("⚠️  Redis close: %v", err)
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("⚠️  Database close: %v", err)
		}
	}

	fmt.Println("✅ Shutdown complete")
	return nil
}
