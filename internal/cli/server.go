package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizdeck/internal/app"
	"quizdeck/internal/auth"
	"quizdeck/internal/config"
	"quizdeck/internal/docstore"
	"quizdeck/internal/event"
	"quizdeck/internal/infra/memory"
	mongostore "quizdeck/internal/infra/mongo"
	pgstore "quizdeck/internal/infra/postgres"
	redisinfra "quizdeck/internal/infra/redis"
	"quizdeck/internal/opentdb"
	transport "quizdeck/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quizdeck server",
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

	if cfg.Store.Backend == "postgres" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var questions app.QuestionSource = app.NewLoader(store)
	if redisClient != nil {
		questions = redisinfra.NewQuestionCache(redisClient, questions, quizTTL)
	} else {
		questions = memory.NewQuestionCache(questions, quizTTL)
	}

	var scoreCache app.ScoreCache
	if redisClient != nil {
		scoreTTL := config.TTLDuration(cfg.Leaderboard.CacheTTL, 5*time.Minute)
		scoreCache = redisinfra.NewScoreCache(redisClient, scoreTTL)
	}

	var events app.EventPublisher
	if cfg.AMQP.URL != "" && cfg.AMQP.Exchange != "" {
		publisher, err := event.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return fmt.Errorf("connect amqp: %w", err)
		}
		defer publisher.Close()
		events = publisher
	} else {
		log.Println("amqp not configured, score events will not be published")
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = "quizdeck-dev-secret"
		log.Println("auth.jwt_secret not set, using development secret")
	}
	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, 8*time.Hour)

	quizzes := app.NewQuizService(store)
	trivia := opentdb.NewClient(nil)
	api := &transport.API{
		Quizzes:  quizzes,
		Loader:   questions,
		Sessions: app.NewSessions(store, questions),
		Board:    app.NewLeaderboard(store, scoreCache, events),
		Users:    auth.NewService(store, secret, tokenTTL),
		Importer: opentdb.NewImporter(quizzes, trivia),
		Trivia:   trivia,
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizdeck on :%s (store=%s)", finalPort, storeName(cfg))
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

// buildStore picks the document store backend from config. The returned
// cleanup is safe to call once the store is no longer used.
func buildStore(ctx context.Context, cfg config.Config) (docstore.Store, func(), error) {
	switch cfg.Store.Backend {
	case "mongo":
		if cfg.Mongo.URI == "" {
			return nil, nil, fmt.Errorf("store.backend is mongo but mongo.uri is empty")
		}
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, nil, err
		}
		dbName := cfg.Mongo.Database
		if dbName == "" {
			dbName = "quizdeck"
		}
		cleanup := func() {
			_ = client.Disconnect(context.Background())
		}
		return mongostore.NewStore(client.Database(dbName)), cleanup, nil
	case "postgres":
		if cfg.Postgres.URL == "" {
			return nil, nil, fmt.Errorf("store.backend is postgres but postgres.url is empty")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewStore(pool), pool.Close, nil
	default:
		return memory.NewStore(), func() {}, nil
	}
}

func storeName(cfg config.Config) string {
	if cfg.Store.Backend == "" {
		return "memory"
	}
	return cfg.Store.Backend
}
