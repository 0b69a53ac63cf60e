package main

import (
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tripmall/booking-core/config"
	"github.com/tripmall/booking-core/internal/consumer"
	"github.com/tripmall/booking-core/internal/handler"
	"github.com/tripmall/booking-core/internal/middleware"
	"github.com/tripmall/booking-core/internal/repository"
	"github.com/tripmall/booking-core/internal/service"
	"github.com/tripmall/booking-core/pkg/database"
	"github.com/tripmall/booking-core/pkg/rabbitmq"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	earnRate, err := decimal.NewFromString(cfg.EarnRate)
	if err != nil {
		logrus.Fatalf("invalid POINTS_EARN_RATE: %v", err)
	}

	primaryDB := database.NewPostgresDB(cfg.DSN())
	mirrorDB := database.NewMySQLDB(cfg.MirrorDSN)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		logrus.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Repositories
	resourceRepo := repository.NewResourceRepository(primaryDB)
	reservationRepo := repository.NewReservationRepository(primaryDB)
	ledgerRepo := repository.NewLedgerRepository(primaryDB)
	accountRepo := repository.NewAccountRepository(mirrorDB)

	// Services
	resourceSvc := service.NewResourceService(resourceRepo)
	availabilitySvc := service.NewAvailabilityService(resourceRepo, reservationRepo, cfg.PendingGraceWindow)
	bookingSvc := service.NewBookingService(reservationRepo, resourceRepo, publisher, cfg.PendingGraceWindow, cfg.VoucherMaxAttempts)
	pointsSvc := service.NewPointsService(ledgerRepo, accountRepo)
	reconcileSvc := service.NewReconcileService(ledgerRepo, accountRepo)

	// RabbitMQ consumer: apply payment outcomes from the gateway
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		logrus.Fatalf("failed to connect consumer to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		logrus.Fatalf("failed to start consuming: %v", err)
	}
	consumer.NewPaymentConsumer(bookingSvc, pointsSvc, earnRate).Start(msgs)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			logrus.WithFields(logrus.Fields{
				"method": v.Method,
				"uri":    v.URI,
				"status": v.Status,
			}).Info("request")
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(middleware.RequestTimeout(cfg.QueryTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "booking-core"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler.NewResourceHandler(resourceSvc, availabilitySvc).RegisterRoutes(e)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)
	handler.NewPointsHandler(pointsSvc, reconcileSvc, earnRate).RegisterRoutes(e)

	logrus.Infof("booking core starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
