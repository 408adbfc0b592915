package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/cache"
	"github.com/Baafi-Marcus/qstakebet-sub001/internal/config"
	"github.com/Baafi-Marcus/qstakebet-sub001/internal/handlers"
	"github.com/Baafi-Marcus/qstakebet-sub001/internal/hub"
	"github.com/Baafi-Marcus/qstakebet-sub001/internal/publisher"
	"github.com/Baafi-Marcus/qstakebet-sub001/internal/ratings"
	"github.com/Baafi-Marcus/qstakebet-sub001/internal/settlement"
	"github.com/Baafi-Marcus/qstakebet-sub001/internal/store"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
)

// engineStore is the full persistence surface the service wires up
type engineStore interface {
	handlers.BetWriter
	contracts.RatingStore
	contracts.WalletSink
}

func main() {
	fmt.Println("=== QStake Virtuals Engine ===")

	cfg := config.LoadConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence: Postgres when a DSN is configured, in-memory otherwise
	var st engineStore
	if cfg.Store.PostgresDSN != "" {
		pg, err := store.NewPostgresStore(cfg.Store.PostgresDSN)
		if err != nil {
			fmt.Printf("❌ Failed to connect to Postgres: %v\n", err)
			os.Exit(1)
		}
		defer pg.Close()

		if err := pg.Ping(ctx); err != nil {
			fmt.Printf("❌ Postgres unreachable: %v\n", err)
			os.Exit(1)
		}
		if err := pg.Migrate(ctx); err != nil {
			fmt.Printf("❌ Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Connected to Postgres")
		st = pg
	} else {
		fmt.Println("✓ Using in-memory store (no POSTGRES_DSN configured)")
		st = store.NewMemoryStore()
	}

	// Redis: odds cache + event streams, optional
	var oddsCache *cache.OddsCache
	var eventPublisher settlement.EventPublisher
	if cfg.Store.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.Store.RedisURL)
		if err != nil {
			fmt.Printf("❌ Failed to parse Redis URL: %v\n", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Connected to Redis")

		oddsCache = cache.NewOddsCache(redisClient)
		eventPublisher = publisher.NewStreamPublisher(redisClient)
	}

	// Engine wiring
	engine := settlement.NewEngine(st, eventPublisher, cfg.Engine.MaxGamePayout)
	updater := ratings.NewUpdater(st, cfg.Engine.LearningRate, cfg.Engine.VolatilityDecay)

	roundHub := hub.NewHub()
	go roundHub.Run(ctx)

	closer := settlement.NewRoundCloser(engine, st, st, updater, roundHub)

	// Handlers
	healthHandler := handlers.NewHealthHandler(roundHub.ClientCount)
	oddsHandler := handlers.NewOddsHandler(oddsCache, cfg.Engine.MarginPct)
	betHandler := handlers.NewBetHandler(st, st, engine)
	roundHandler := handlers.NewRoundHandler(closer)
	wsHandler := handlers.NewWSHandler(roundHub, ctx)

	// Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/ws", wsHandler.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/odds/derive", oddsHandler.DeriveOdds)
		r.Post("/outcomes/generate", oddsHandler.GenerateOutcomes)

		r.Post("/bets", betHandler.PlaceBet)
		r.Get("/bets/{id}", betHandler.GetBet)
		r.Post("/bets/{id}/settle", betHandler.SettleBet)
		r.Get("/wallet/balance", betHandler.GetBalance)

		r.Post("/rounds/{id}/close", roundHandler.CloseRound)
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
	}

	go func() {
		fmt.Printf("✓ Virtuals engine listening on %s\n", cfg.Server.Addr)
		fmt.Printf("  Margin: %.0f%%  Max game payout: %.2f\n",
			cfg.Engine.MarginPct*100, cfg.Engine.MaxGamePayout)
		fmt.Printf("  Learning rate: %.3f  Volatility decay: %.3f\n",
			cfg.Engine.LearningRate, cfg.Engine.VolatilityDecay)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("❌ Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n✓ Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("❌ Shutdown error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Virtuals engine stopped")
}
