package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.temporal.io/sdk/client"
	"golang.org/x/sync/errgroup"

	"freelance-checkout-system/codec"
	"freelance-checkout-system/events"
	"freelance-checkout-system/metrics"
	"freelance-checkout-system/store"
)

type Config struct {
	HTTPPort        string
	PublicBaseURL   string
	UploadDir       string
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("checkout-api starting...")

	cfg := loadConfig()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload dir: %v", err)
	}

	// Database setup
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}
	creds := &store.Credentials{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              dbPort,
		User:              getEnv("DB_USER", "postgres"),
		Password:          getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "checkout"),
		MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./store/migrations"),
	}

	orderStore, err := store.New(creds)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer orderStore.Close()

	if err := orderStore.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Connected to postgres, migrations applied")

	// Temporal client for delivering gateway webhooks as signals
	temporalAddress := getEnv("TEMPORAL_ADDRESS", "localhost:7233")

	keyBytes := loadEncryptionKey()
	dataConverter, err := codec.NewEncryptionDataConverter(keyBytes)
	if err != nil {
		log.Fatalf("Failed to create encryption data converter: %v", err)
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:      temporalAddress,
		DataConverter: dataConverter,
	})
	if err != nil {
		log.Fatalf("Unable to create Temporal client: %v", err)
	}
	defer temporalClient.Close()

	// Optional Kafka order events
	kafkaClient := events.NewClient(getEnv("KAFKA_BROKERS", ""))
	var orderWriter *kafkaGo.Writer
	if kafkaClient.Enabled() {
		orderWriter = kafkaClient.NewWriter(events.TopicOrderCompleted)
		defer orderWriter.Close()
		log.Printf("Kafka order events enabled, brokers: %v", kafkaClient.Brokers)
	} else {
		log.Println("Kafka order events disabled")
	}

	serverMetrics := metrics.NewServerMetrics("api")

	api := &API{
		store:         orderStore,
		signaler:      temporalClient,
		orderWriter:   orderWriter,
		metrics:       serverMetrics,
		uploadDir:     cfg.UploadDir,
		publicBaseURL: cfg.PublicBaseURL,
		logWarn:       log.Printf,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/api/payments/create-order", api.instrument("create_order", api.createOrder))
	r.Post("/api/payments/webhook", api.instrument("payment_webhook", api.paymentWebhook))
	r.Post("/api/orders", api.instrument("persist_order", api.persistOrder))
	r.Get("/api/orders/{id}", api.instrument("get_order", func(w http.ResponseWriter, req *http.Request) {
		api.getOrder(w, req, chi.URLParam(req, "id"))
	}))
	r.Post("/api/uploadServiceRs", api.instrument("upload_resume", api.upload("serviceRs")))
	r.Post("/api/uploadDocuments", api.instrument("upload_documents", api.upload("documents")))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("checkout-api listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("checkout-api stopped with error: %v", err)
	}
	log.Println("checkout-api stopped")
}

// loadEncryptionKey reads ENCRYPTION_KEY (hex) or generates a throwaway key.
func loadEncryptionKey() []byte {
	encryptionKey := os.Getenv("ENCRYPTION_KEY")
	if encryptionKey != "" {
		keyBytes, err := hex.DecodeString(encryptionKey)
		if err != nil {
			log.Fatalf("Failed to decode encryption key: %v", err)
		}
		return keyBytes
	}

	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		log.Fatalf("Failed to generate encryption key: %v", err)
	}
	log.Printf("Warning: Using generated encryption key. Set ENCRYPTION_KEY env var to match worker.")
	log.Printf("Generated key: %s", hex.EncodeToString(keyBytes))
	return keyBytes
}
