package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/deaffx/mottu-yard-devops/internal/api"
	"github.com/deaffx/mottu-yard-devops/internal/api/handler"
	"github.com/deaffx/mottu-yard-devops/internal/api/middleware"
	"github.com/deaffx/mottu-yard-devops/internal/config"
	"github.com/deaffx/mottu-yard-devops/internal/iot"
	"github.com/deaffx/mottu-yard-devops/internal/logger"
	"github.com/deaffx/mottu-yard-devops/internal/repository/postgresql"
	"github.com/deaffx/mottu-yard-devops/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalw("connecting to database", "error", err)
	}
	defer db.Close()
	log.Info("database connected")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatalw("loading aws config", "error", err)
	}

	sqsClient := sqs.NewFromConfig(awsCfg)
	iotClient := iotdataplane.NewFromConfig(awsCfg, func(o *iotdataplane.Options) {
		if cfg.IoTMQTTEndpoint != "" {
			endpoint := cfg.IoTMQTTEndpoint
			if !strings.HasPrefix(endpoint, "https://") && !strings.HasPrefix(endpoint, "http://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	rekognitionClient := rekognition.NewFromConfig(awsCfg)

	vehicleRepo := postgresql.NewPgVehicleRepository(db)
	lotRepo := postgresql.NewPgLotRepository(db)
	maintRepo := postgresql.NewPgMaintenanceRepository(db)
	userRepo := postgresql.NewPgUserRepository(db)

	wsManager := handler.NewWebSocketManager(log)
	go wsManager.Start()

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration)
	yardService := service.NewYardService(vehicleRepo, lotRepo, maintRepo, wsManager, log)
	lprService := service.NewLPRService(rekognitionClient, log)
	gateService := service.NewGateService(yardService, iotClient, wsManager, log)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	var wg sync.WaitGroup
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()

	if cfg.SQSGateQueueURL == "" {
		log.Warn("SQS_GATE_QUEUE_URL not configured, gate event consumer disabled")
	} else {
		consumer := iot.NewSQSConsumer(sqsClient, cfg, gateService, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(consumerCtx)
		}()
	}

	router := api.SetupRouter(authService, yardService, lprService, authMiddleware, wsManager)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Infow("server listening", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("http server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	cancelConsumer()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("forced shutdown", "error", err)
	}

	if cfg.SQSGateQueueURL != "" {
		done := make(chan struct{})
		go func() {
			defer close(done)
			wg.Wait()
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			log.Warn("gate event consumer did not stop in time")
		}
	}

	log.Info("server stopped")
}
