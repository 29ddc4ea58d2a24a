package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-grading-service/internal/app"
	"quiz-grading-service/internal/auth"
	"quiz-grading-service/internal/config"
	"quiz-grading-service/internal/infra/bunstore"
	"quiz-grading-service/internal/infra/memory"
	pgloader "quiz-grading-service/internal/infra/postgres"
	rediscache "quiz-grading-service/internal/infra/redis"
	"quiz-grading-service/internal/notify"
	transport "quiz-grading-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz grading server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var store app.Store
	if cfg.Database.URL == "" {
		log.Printf("no database configured, using in-memory storage")
		store = memory.NewStore()
	} else {
		db, err := bunstore.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := bunstore.Migrate(ctx, db); err != nil {
			return err
		}
		store = bunstore.NewStore(db)
	}

	var loader app.QuestionLoader = store
	if cfg.Database.URL != "" && cfg.Database.Driver == bunstore.DriverPostgres {
		pool, err := pgxpool.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgloader.NewQuestionLoader(pool)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var reader app.QuestionReader
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		reader = rediscache.NewCatalogCache(redisClient, loader, catalogTTL)
	} else {
		reader = memory.NewCatalogCache(loader, catalogTTL)
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = randomSecret()
		log.Printf("auth.secret not set; admin tokens will not survive a restart")
	}
	if cfg.Auth.AdminUser == "" || cfg.Auth.AdminPasswordHash == "" {
		log.Printf("admin credentials not configured; login is disabled")
	}
	authService := auth.NewService(secret, cfg.Auth.AdminUser, cfg.Auth.AdminPasswordHash,
		config.TTLDuration(cfg.Auth.TokenTTL, auth.DefaultTokenTTL))

	dispatcher := notify.NewDispatcher(store, cfg.Notification.APIURL,
		config.TTLDuration(cfg.Notification.Timeout, notify.DefaultTimeout), cfg.Notification.Locale)
	feed := app.NewFeed()

	handlers := transport.Handlers{
		Questions:    transport.NewQuestionHandler(app.NewCatalogService(store, reader)),
		Attempts:     transport.NewAttemptHandler(app.NewAttemptService(store, dispatcher, feed)),
		Notification: transport.NewNotificationHandler(app.NewSettingsService(store)),
		Auth:         transport.NewAuthHandler(authService),
		Feed:         transport.NewWSHandler(feed),
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(handlers, authService, cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz grading service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("generate auth secret: %v", err)
	}
	return hex.EncodeToString(b)
}
