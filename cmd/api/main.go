package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "github.com/somoapp/campus-events/internal/adapters/mongo"
	"github.com/somoapp/campus-events/internal/adapters/rabbit"
	redisadapter "github.com/somoapp/campus-events/internal/adapters/redis"
	"github.com/somoapp/campus-events/internal/config"
	httphandler "github.com/somoapp/campus-events/internal/http"
	"github.com/somoapp/campus-events/internal/idempotency"
	"github.com/somoapp/campus-events/internal/observability"
	"github.com/somoapp/campus-events/internal/rateLimit"
	"github.com/somoapp/campus-events/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger()

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.MongoDatabase)

	campusRepo := mongoadapter.NewCampusRepository(db, logger)
	eventRepo := mongoadapter.NewEventRepository(db, logger)
	optinRepo := mongoadapter.NewOptInRepository(db, logger)
	userRepo := mongoadapter.NewUserRepository(db, logger)

	if err := optinRepo.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("failed to create optin indexes: %v", err)
	}
	if err := eventRepo.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("failed to create event indexes: %v", err)
	}

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	redisCache := redisadapter.NewCache(redisClient)
	redisIdemp := redisadapter.NewIdempotency(redisClient)
	idemp := idempotency.NewIdempotency(redisIdemp, time.Hour)
	rl := rateLimit.NewRateLimiter(redisCache)

	var rabbitPub *rabbit.Publisher
	if cfg.RabbitURL != "" {
		rabbitConn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rabbitConn.Close()
		rabbitPub, err = rabbit.NewPublisher(rabbitConn)
		if err != nil {
			log.Fatalf("failed to create publisher: %v", err)
		}
	}

	serializer := service.NewEventSerializer(optinRepo)
	campusSvc := service.NewCampusService(campusRepo, userRepo, eventRepo, redisCache, serializer, logger)
	catalogSvc := service.NewCatalogService(eventRepo, campusRepo, serializer, rabbitPub, cfg.ServiceFeeRate, cfg.MinServiceFee, logger)
	reservationSvc := service.NewReservationService(eventRepo, optinRepo, rabbitPub, logger)

	handlers := httphandler.NewHandlers(cfg, campusSvc, catalogSvc, reservationSvc, idemp, logger)

	r := httphandler.SetupRouter(handlers, logger, rl)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}
