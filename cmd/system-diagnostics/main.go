package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	// Application
	"github.com/dreschagin/system-diagnostics/internal/application/alerting"
	applicationPort "github.com/dreschagin/system-diagnostics/internal/application/port"
	"github.com/dreschagin/system-diagnostics/internal/application/usecase"

	// Domain
	"github.com/dreschagin/system-diagnostics/internal/domain/service"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"

	// Infrastructure
	"github.com/dreschagin/system-diagnostics/internal/infrastructure/alert"
	"github.com/dreschagin/system-diagnostics/internal/infrastructure/cache"
	redisCache "github.com/dreschagin/system-diagnostics/internal/infrastructure/cache/redis"
	"github.com/dreschagin/system-diagnostics/internal/infrastructure/collector"
	natsInfra "github.com/dreschagin/system-diagnostics/internal/infrastructure/messaging/nats"
	wsInfra "github.com/dreschagin/system-diagnostics/internal/infrastructure/notification/websocket"
	"github.com/dreschagin/system-diagnostics/internal/infrastructure/observability/cloudwatch"
	"github.com/dreschagin/system-diagnostics/internal/infrastructure/persistence/postgres"
	"github.com/dreschagin/system-diagnostics/internal/infrastructure/privilege"
	"github.com/dreschagin/system-diagnostics/internal/infrastructure/source"

	// Interfaces
	httpInterface "github.com/dreschagin/system-diagnostics/internal/interfaces/http"
	"github.com/dreschagin/system-diagnostics/internal/interfaces/http/handler"
	"github.com/dreschagin/system-diagnostics/internal/interfaces/http/middleware"

	// Shared
	"github.com/dreschagin/system-diagnostics/internal/scheduler"
	"github.com/dreschagin/system-diagnostics/pkg/config"
	"github.com/dreschagin/system-diagnostics/pkg/logger"

	_ "github.com/lib/pq"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger
	log := logger.New(os.Getenv("LOG_LEVEL"))
	log.Info("Starting System Diagnostics")

	// 3. Privilege gate and metric sources
	gate := privilege.NewGate(privilege.Config{
		Command: cfg.Monitoring.EscalationCommand,
		Timeout: cfg.Monitoring.EscalationTimeout,
	}, log)

	sources := []applicationPort.MetricSource{
		source.NewCPUSource(),
		source.NewMemorySource(),
		source.NewDiskSource(),
		source.NewNetworkSource(),
		source.NewSensorsSource(),
	}
	snapshotCollector := collector.New(sources, gate, cfg.Monitoring.SourceTimeout, log)

	// 4. Domain layer
	analyzer := service.NewAnalyzer()
	thresholds := valueobject.Thresholds{
		CPUUsageMax:    cfg.Thresholds.CPUUsageMax,
		CPUTempMax:     cfg.Thresholds.CPUTempMax,
		MemoryUsageMax: cfg.Thresholds.MemoryUsageMax,
		DiskUsageMax:   cfg.Thresholds.DiskUsageMax,
		SensorTempMax:  cfg.Thresholds.SensorTempMax,
	}
	if err := thresholds.Validate(); err != nil {
		log.Error("Invalid thresholds", err)
		os.Exit(1)
	}

	// 5. Alert channels
	var channels []applicationPort.AlertChannel
	if cfg.Alerts.Email.Enabled {
		channels = append(channels, alert.NewEmailChannel(alert.EmailConfig{
			Host:       cfg.Alerts.Email.SMTPServer,
			Port:       strconv.Itoa(cfg.Alerts.Email.SMTPPort),
			Username:   cfg.Alerts.Email.Sender,
			Password:   cfg.Alerts.Email.Password,
			Sender:     cfg.Alerts.Email.Sender,
			Recipients: cfg.Alerts.Email.Recipients,
		}))
		log.Info("Email alert channel enabled", "recipients", strconv.Itoa(len(cfg.Alerts.Email.Recipients)))
	}
	if cfg.Alerts.Webhook.Enabled {
		channels = append(channels, alert.NewWebhookChannel(cfg.Alerts.Webhook.URL))
		log.Info("Webhook alert channel enabled")
	}
	if len(channels) == 0 {
		log.Warn("No alert channels configured, breaches will only appear in the API")
	}
	dispatcher := alerting.NewDispatcher(channels, cfg.Alerts.SendTimeout, log)

	// 6. Snapshot cache and WebSocket hub
	snapshotCache := cache.NewSnapshotCache()
	hub := wsInfra.NewHub(log)
	go hub.Run()

	// 7. Optional sinks

	// PostgreSQL history
	var repository applicationPort.SnapshotRepository
	var snapshotRepo *postgres.SnapshotRepository
	if cfg.Database.Enabled {
		db, dbErr := sql.Open("postgres", cfg.Database.DSN())
		if dbErr != nil {
			log.Error("Failed to open database", dbErr)
			os.Exit(1)
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

		if pingErr := db.Ping(); pingErr != nil {
			log.Error("Failed to ping database", pingErr)
			os.Exit(1)
		}

		snapshotRepo = postgres.NewSnapshotRepository(db)
		if schemaErr := snapshotRepo.EnsureSchema(context.Background()); schemaErr != nil {
			log.Error("Failed to ensure database schema", schemaErr)
			os.Exit(1)
		}
		repository = snapshotRepo
		log.Info("Snapshot history enabled", "database", cfg.Database.Database)
	} else {
		log.Warn("Database is disabled, history API will return 501")
	}

	// Redis mirror of the latest snapshot
	var mirror applicationPort.LatestSnapshotMirror
	if cfg.Redis.Enabled {
		mirrorImpl, initErr := redisCache.NewSnapshotMirror(redisCache.Options{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			TTL:          cfg.Redis.TTL,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if initErr != nil {
			log.Warn("Failed to connect to Redis, continuing without mirror", "error", initErr.Error())
		} else {
			mirror = mirrorImpl
			defer mirrorImpl.Close()
			log.Info("Redis snapshot mirror enabled")
		}
	}

	// NATS event publisher
	var eventPublisher applicationPort.EventPublisher
	if cfg.NATS.Enabled {
		publisherImpl, initErr := natsInfra.NewPublisher(cfg.NATS.URL, log)
		if initErr != nil {
			log.Warn("Failed to connect to NATS, continuing without event publishing", "error", initErr.Error())
		} else {
			eventPublisher = publisherImpl
			defer publisherImpl.Close()
			log.Info("NATS event publisher enabled", "url", cfg.NATS.URL)
		}
	}

	// CloudWatch metric and alert log mirrors
	var metricsPublisher applicationPort.CycleMetricsPublisher
	var alertLogPublisher applicationPort.AlertLogPublisher
	var cwMetrics *cloudwatch.MetricsPublisher
	var cwLogs *cloudwatch.LogsPublisher
	if cfg.CloudWatch.Enabled {
		cwMetrics, err = cloudwatch.NewMetricsPublisher(context.Background(), cloudwatch.MetricsPublisherConfig{
			Namespace:       cfg.CloudWatch.Namespace,
			Region:          cfg.CloudWatch.Region,
			Endpoint:        cfg.CloudWatch.Endpoint,
			AccessKeyID:     cfg.CloudWatch.AccessKeyID,
			SecretAccessKey: cfg.CloudWatch.SecretAccessKey,
		})
		if err != nil {
			log.Error("Failed to initialize CloudWatch metrics publisher", err)
			os.Exit(1)
		}
		metricsPublisher = cwMetrics

		cwLogs, err = cloudwatch.NewLogsPublisher(context.Background(), cloudwatch.LogsPublisherConfig{
			LogGroupName:    cfg.CloudWatch.LogGroupName,
			LogStreamName:   cfg.CloudWatch.LogStreamName,
			Region:          cfg.CloudWatch.Region,
			Endpoint:        cfg.CloudWatch.Endpoint,
			AccessKeyID:     cfg.CloudWatch.AccessKeyID,
			SecretAccessKey: cfg.CloudWatch.SecretAccessKey,
			AutoCreate:      true,
		})
		if err != nil {
			log.Error("Failed to initialize CloudWatch logs publisher", err)
			os.Exit(1)
		}
		alertLogPublisher = cwLogs
		log.Info("CloudWatch mirroring enabled", "namespace", cfg.CloudWatch.Namespace)
	}

	// 8. Use cases
	runCycleUC := usecase.NewRunCycleUseCase(
		snapshotCollector,
		analyzer,
		thresholds,
		dispatcher,
		snapshotCache,
		usecase.RunCycleDeps{
			Repository: repository,
			Events:     eventPublisher,
			Metrics:    metricsPublisher,
			AlertLog:   alertLogPublisher,
			Notifier:   hub,
			Mirror:     mirror,
		},
		log,
	)
	getCurrentUC := usecase.NewGetCurrentUseCase(snapshotCache, log)
	getHistoryUC := usecase.NewGetHistoryUseCase(repository, log)
	elevationUC := usecase.NewRequestElevationUseCase(gate, log)

	// 9. HTTP layer
	authConfig := middleware.AuthConfig{
		Enabled:     cfg.Security.AuthEnabled,
		BearerToken: cfg.Security.AuthToken,
	}

	diagnosticsHandler := handler.NewDiagnosticsHandler(getCurrentUC, log)
	privilegeHandler := handler.NewPrivilegeHandler(elevationUC, log)
	historyHandler := handler.NewHistoryHandler(getHistoryUC, log)
	websocketHandler := handler.NewWebSocketHandler(hub, cfg.Security.AllowedOrigins, authConfig, log)

	router := httpInterface.NewRouter(
		diagnosticsHandler,
		privilegeHandler,
		historyHandler,
		websocketHandler,
		snapshotCache,
		cfg.Server,
		cfg.Security,
		log,
	)

	// 10. Background processes
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cycleScheduler := scheduler.New(runCycleUC, cfg.Monitoring.CollectionInterval, log)
	cycleScheduler.Start(ctx)

	// Retention pruning once an hour when history is on.
	if snapshotRepo != nil && cfg.Monitoring.RetentionDays > 0 {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					cutoff := time.Now().AddDate(0, 0, -cfg.Monitoring.RetentionDays)
					deleted, pruneErr := snapshotRepo.DeleteOlderThan(ctx, cutoff)
					if pruneErr != nil {
						log.Error("Failed to prune old snapshots", pruneErr)
						continue
					}
					if deleted > 0 {
						log.Info("Pruned old snapshots", "deleted", strconv.FormatInt(deleted, 10))
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// 11. HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}()

	// 12. Graceful shutdown
	<-sigChan
	log.Info("Shutdown signal received, starting graceful shutdown...")

	// Stop producing new cycles first, then drain everything downstream.
	cycleScheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if cwMetrics != nil {
		if err := cwMetrics.Close(shutdownCtx); err != nil {
			log.Error("Failed to flush CloudWatch metrics", err)
		}
	}
	if cwLogs != nil {
		if err := cwLogs.Close(shutdownCtx); err != nil {
			log.Error("Failed to flush CloudWatch logs", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", err)
	}

	log.Info("Server stopped gracefully")
}
