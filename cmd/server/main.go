package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/storefront/internal/config"
	"github.com/diewo77/storefront/internal/db"
	"github.com/diewo77/storefront/internal/notify"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedFlag        = flag.Bool("seed", false, "Seed demo products on startup")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *migrateOnlyFlag {
		log.Println("Migrations completed successfully")
		return
	}

	if *seedFlag {
		if err := db.Seed(dbConn); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Println("Seeding completed")
	}

	dispatcher, closeDispatcher := buildDispatcher(cfg.AMQPURL)
	defer closeDispatcher()

	appHandler := NewApp(dbConn, dispatcher)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withLogging(appHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (env=%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// buildDispatcher connects to RabbitMQ when AMQP_URL is set, and falls back
// to the log dispatcher otherwise. Notification delivery is best-effort
// either way.
func buildDispatcher(amqpURL string) (notify.Dispatcher, func()) {
	if amqpURL == "" {
		return notify.LogDispatcher{}, func() {}
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.Printf("AMQP connection failed, using log dispatcher: %v", err)
		return notify.LogDispatcher{}, func() {}
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Printf("AMQP channel failed, using log dispatcher: %v", err)
		conn.Close()
		return notify.LogDispatcher{}, func() {}
	}
	d, err := notify.NewAMQPDispatcher(ch)
	if err != nil {
		log.Printf("AMQP exchange setup failed, using log dispatcher: %v", err)
		ch.Close()
		conn.Close()
		return notify.LogDispatcher{}, func() {}
	}
	log.Printf("Lifecycle events publishing to exchange %s", notify.ExchangeName)
	return d, func() {
		ch.Close()
		conn.Close()
	}
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
