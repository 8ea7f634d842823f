package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courseware-labs/ms-go-enrollments/app/auth"
	"github.com/courseware-labs/ms-go-enrollments/app/controller"
	"github.com/courseware-labs/ms-go-enrollments/app/repository"
	"github.com/courseware-labs/ms-go-enrollments/app/service"
	"github.com/courseware-labs/ms-go-enrollments/app/types"
	"github.com/courseware-labs/ms-go-enrollments/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for webhook intake and the internal enrollments API.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, enrollmentService, cleanup := mustCreateEnrollmentService()
	defer cleanup()

	webhookAuthenticator := auth.NewAuthenticator(cfg.Webhook.Secret)
	webhookController := controller.NewWebhookController(enrollmentService, webhookAuthenticator)
	enrollmentController := controller.NewEnrollmentController(enrollmentService)

	e := setupHTTPServer(cfg, webhookController, enrollmentController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	cfg *config.Config,
	webhookController *controller.WebhookController,
	enrollmentController *controller.EnrollmentController,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.RequestID())

	e.GET("/health", enrollmentController.Health)

	// Gateways deliver here. The webhook controller owns its own shared-secret
	// check, so no route middleware applies.
	e.POST("/webhook-payment", webhookController.HandleWebhook)
	e.POST("/webhook-payment/:gateway", webhookController.HandleWebhook)

	internal := e.Group("/internal", requireAPIKey(cfg.App.APIKey))
	internal.POST("/transactions", enrollmentController.CreateTransaction)
	internal.GET("/transactions", enrollmentController.ListTransactions)
	internal.GET("/transactions/:id", enrollmentController.GetTransaction)
	internal.GET("/grants", enrollmentController.CheckAccess)
	internal.POST("/grants", enrollmentController.GrantAccess)
	internal.DELETE("/grants", enrollmentController.RevokeAccess)

	return e
}

func requireAPIKey(apiKey string) echo.MiddlewareFunc {
	authenticator := auth.NewAuthenticator(apiKey)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := authenticator.Authenticate(ctx.Request().Header.Get("X-API-Key")); err != nil {
				return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{Error: "invalid api key"})
			}
			return next(ctx)
		}
	}
}

func mustCreateEnrollmentService() (*config.Config, *service.EnrollmentService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	transactionRepo := repository.NewTransactionRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	deliveryRepo := repository.NewWebhookDeliveryRepository(db)

	enrollmentService := service.NewEnrollmentService(
		transactionRepo,
		grantRepo,
		deliveryRepo,
		cfg.Webhook,
	)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, enrollmentService, cleanup
}
