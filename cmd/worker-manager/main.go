// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"return-notifier/internal/common/aws"
	"return-notifier/internal/common/camunda"
	"return-notifier/internal/common/config"
	"return-notifier/internal/common/database"
	apihttp "return-notifier/internal/common/http"
	"return-notifier/internal/common/logger"
	"return-notifier/internal/common/observability"
	"return-notifier/internal/directory"
	"return-notifier/internal/templates"

	rsn "return-notifier/internal/workers/complaint/return-status-notify"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting return notifier...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- PostgreSQL ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres init failed", zap.Error(err))
	}
	defer pg.Close()
	if err := retryWithBackoff(func() error { return pg.Ping(ctx) }, 15, 2*time.Second, zapLog, "PostgreSQL connection"); err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	if err := retryWithBackoff(func() error { return rdb.Ping(ctx) }, 10, 2*time.Second, zapLog, "Redis connection"); err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	// --- Collaborators ---
	store := directory.NewStore(pg.DB, rdb.Client, directory.Config{
		CacheTTL:       config.GetDuration(cfg.Notifications.CacheTTL),
		FallbackSender: cfg.Notifications.Email.FallbackFrom,
	}, log)

	registry, err := templates.Load(cfg.Notifications.Templates.RegistryPath)
	if err != nil {
		zapLog.Fatal("template registry load failed", zap.Error(err))
	}

	awsClients, err := aws.NewClients(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("aws init failed", zap.Error(err))
	}
	mailer := aws.NewSESMailer(awsClients.SES, cfg.Notifications.Email.ConfigurationSet, log)
	sms := aws.NewSNSNotifier(awsClients.SNS, registry, cfg.Notifications.SMS.TemplateKey, cfg.Notifications.SMS.SenderID, log)

	// --- Zeebe ---
	camundaClient, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer camundaClient.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Worker ---
	handler, err := rsn.NewHandler(rsn.HandlerOptions{
		AppConfig: cfg,
		Camunda:   camundaClient,
		Dependencies: rsn.ServiceDependencies{
			Entities:      store,
			Roster:        store,
			Senders:       store,
			Statuses:      store,
			Renderer:      registry,
			Email:         mailer,
			SMS:           sms,
			Observability: obs,
		},
		Logger: log,
	})
	if err != nil {
		zapLog.Fatal("failed to create return-status-notify handler", zap.Error(err))
	}
	if err := handler.Register(); err != nil {
		zapLog.Fatal("failed to register return-status-notify worker", zap.Error(err))
	}

	// --- HTTP API, Health & Metrics ---
	server := apihttp.NewServer(cfg.HTTP, log)
	server.AddReadinessCheck("postgres", pg.Ping)
	server.AddReadinessCheck("redis", rdb.Ping)
	server.AddReadinessCheck("zeebe", handler.HealthCheck)
	server.Post(rsn.Route, rsn.NewHTTPHandler(handler, handler.GetConfig().Timeout, log))

	go func() {
		if err := server.Start(); err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	handler.Close()

	zapLog.Info("Return notifier stopped gracefully")
}
