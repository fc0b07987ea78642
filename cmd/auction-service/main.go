package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/scraplot/auction-service/internal/app/background"
	"github.com/scraplot/auction-service/internal/config"
	httpapi "github.com/scraplot/auction-service/internal/delivery/http"
	"github.com/scraplot/auction-service/internal/domain"
	"github.com/scraplot/auction-service/internal/infrastructure/broadcast"
	"github.com/scraplot/auction-service/internal/infrastructure/kafka"
	"github.com/scraplot/auction-service/internal/infrastructure/metrics"
	"github.com/scraplot/auction-service/internal/infrastructure/migrate"
	"github.com/scraplot/auction-service/internal/infrastructure/notifier"
	"github.com/scraplot/auction-service/internal/infrastructure/postgres"
	"github.com/scraplot/auction-service/internal/infrastructure/postgres/repository"
	"github.com/scraplot/auction-service/internal/infrastructure/redisdb"
	"github.com/scraplot/auction-service/internal/infrastructure/verification"
	usecase "github.com/scraplot/auction-service/internal/usecase/auction"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)

	if cfg.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := kafka.NewDefaultKafkaPublisher(brokers)
	defer pub.Close()
	sub := kafka.NewDefaultKafkaSubscriber(brokers)

	leaderboard, err := redisdb.NewLeaderboard(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("failed to init redis leaderboard: %v", err)
	}
	defer leaderboard.Close()

	auctionMetrics := metrics.NewAuctionMetrics()
	hub := broadcast.NewHub(auctionMetrics)

	verificationClient := verification.NewHTTPClient(cfg.VerificationService.BaseURL)
	notificationClient := notifier.NewHTTPNotifier(cfg.NotificationService.BaseURL)

	// Init repositories
	auctionRepo := repository.NewDefaultAuctionRepository(db)
	bidRepo := repository.NewDefaultBidRepository(db)

	// Init auction usecase
	uc := usecase.NewDefaultAuctionUsecase(
		auctionRepo,
		bidRepo,
		verificationClient,
		notificationClient,
		pub,
		hub,
		leaderboard,
		auctionMetrics,
		usecase.Timings{
			LockTimeout: time.Duration(cfg.Bidding.LockTimeoutMs) * time.Millisecond,
			TokenWindow: time.Duration(cfg.Bidding.TokenPaymentWindowHours) * time.Hour,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background lifecycle tasks
	tasks := background.NewBackgroundTasks(uc, time.Duration(cfg.Bidding.SchedulerIntervalSec)*time.Second)
	tasks.StartAll(ctx)

	// Relay events committed by other replicas into the local hub so every
	// replica's websocket subscribers see the full feed.
	go relayPeerEvents(ctx, sub, hub, cfg.KafkaService.Topic, cfg.KafkaService.Group)

	wsHandler := httpapi.NewWSHandler(hub)
	handler := httpapi.NewHandler(uc, leaderboard, wsHandler)
	router := handler.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err.Error())
		}
	}()

	log.Printf("HTTP server started on %s:%s\n", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("failed to serve: %v\n", err)
	}
}

func relayPeerEvents(ctx context.Context, sub domain.SubscriberPort, hub *broadcast.Hub, topic, group string) {
	if topic == "" {
		topic = "auction-events"
	}
	msgs, err := sub.Subscribe(topic, group)
	if err != nil {
		slog.Error("failed to subscribe to event topic", "topic", topic, "error", err.Error())
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var event domain.AuctionEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				slog.Error("failed to decode auction event", "error", err.Error())
				continue
			}
			hub.Publish(event)
		}
	}
}
