package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/marketpulse/reporting-gateway/internal/api"
	"github.com/marketpulse/reporting-gateway/internal/config"
	"github.com/marketpulse/reporting-gateway/internal/connection"
	"github.com/marketpulse/reporting-gateway/internal/credentials"
	"github.com/marketpulse/reporting-gateway/internal/platform/db"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"
	"github.com/marketpulse/reporting-gateway/internal/platform/queue"
	"github.com/marketpulse/reporting-gateway/internal/platform/utils"
	"github.com/marketpulse/reporting-gateway/internal/reconciler"
	"github.com/marketpulse/reporting-gateway/internal/reporting"
	"github.com/marketpulse/reporting-gateway/internal/scheduler"
	"github.com/marketpulse/reporting-gateway/internal/sync"
	"github.com/marketpulse/reporting-gateway/internal/upstream"

	"github.com/gorilla/mux"
	kafka "github.com/segmentio/kafka-go"
)

func startApiServer(listenAddr string) {

	logger.InitLogger()
	defer logger.FlushLogger()

	logger.Log.Info("Starting Reporting-Gateway service")

	cfg := config.GetConfig()
	logger.Log.Info("Reporting-Gateway configuration:\n", cfg)

	database, err := db.InitializeDatabaseConnection(cfg)
	if err != nil {
		logger.LogFatalError("Unable to connect to database: ", err)
	}

	sqlTimeout := cfg.ReportingDatabaseQueryTimeout
	sellerRepository := reporting.NewSqlSellerRepository(database, sqlTimeout)
	customerRepository := reporting.NewSqlCustomerRepository(database, sqlTimeout)
	catalogRepository := reporting.NewSqlCatalogRepository(database, sqlTimeout)
	settlementWriter := reporting.NewSqlSettlementReportWriter(database, sqlTimeout)

	authClient := upstream.NewAuthServiceClient(cfg)
	inventoryClient := upstream.NewInventoryServiceClient(cfg)
	ordersClient := upstream.NewOrdersServiceClient(cfg)

	identityConnection := newConnectionManager("identity", cfg)
	credentialManager := credentials.NewManager(authClient.AcquireCredential, cfg.CredentialRenewalInterval, identityConnection)

	kafkaWriter, eventPublisher := buildSyncEventPublisher(cfg)

	catalogReconciler := reconciler.NewCatalogReconciler(inventoryClient, sellerRepository, catalogRepository)
	rosterSynchronizer := sync.NewRosterSynchronizer(authClient, sellerRepository, customerRepository)

	settlementAnalyzer, err := sync.NewSettlementAnalyzer(ordersClient, settlementWriter, cfg.SettlementPaidCartCacheSize)
	if err != nil {
		logger.LogFatalError("Unable to create the settlement analyzer: ", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	credentialManager.Start(ctx)

	inventoryJob := scheduler.NewJob(
		"inventory_sync",
		cfg.InventorySyncInterval,
		func(ctx context.Context, token string) error {
			_, err := catalogReconciler.Reconcile(ctx, token)
			return err
		},
		credentialManager,
		newConnectionManager("inventory", cfg),
		eventPublisher)

	rosterJob := scheduler.NewJob(
		"roster_sync",
		cfg.RosterSyncInterval,
		func(ctx context.Context, token string) error {
			_, err := rosterSynchronizer.Synchronize(ctx, token)
			return err
		},
		credentialManager,
		newConnectionManager("auth", cfg),
		eventPublisher).
		WithStartupCredentialWait(cfg.RosterCredentialWaitTimeout)

	settlementJob := scheduler.NewJob(
		"settlement_analysis",
		cfg.SettlementAnalysisInterval,
		func(ctx context.Context, token string) error {
			_, err := settlementAnalyzer.Analyze(ctx, token)
			return err
		},
		credentialManager,
		newConnectionManager("orders", cfg),
		eventPublisher)

	jobs := []*scheduler.Job{inventoryJob, rosterJob, settlementJob}

	jobsByName := make(map[string]*scheduler.Job)
	for _, job := range jobs {
		jobsByName[job.Name()] = job
		job.Start(ctx)
	}

	apiMux := mux.NewRouter()

	monitoringServer := api.NewMonitoringServer(apiMux, cfg, jobs, credentialManager)
	monitoringServer.Routes()

	mgmtServer := api.NewManagementServer(apiMux, cfg, jobsByName, credentialManager)
	mgmtServer.Routes()

	apiSrv := utils.StartHTTPServer(listenAddr, "management", apiMux)

	signalChan := make(chan os.Signal, 1)

	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-signalChan
	logger.Log.Info("Received signal to shutdown: ", sig)

	cancel()
	credentialManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HttpShutdownTimeout)
	defer shutdownCancel()

	utils.ShutdownHTTPServer(shutdownCtx, "management", apiSrv)

	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.LogError("Unable to close the kafka writer", err)
		}
	}

	if err := database.Close(); err != nil {
		logger.LogError("Unable to close the database connection", err)
	}

	logger.Log.Info("Reporting-Gateway shutting down")
}

func newConnectionManager(name string, cfg *config.Config) *connection.Manager {
	return connection.NewManager(name, cfg.ConnectionInitialDelay, cfg.ConnectionRetryDelay, cfg.ConnectionMaxAttempts)
}

func buildSyncEventPublisher(cfg *config.Config) (*kafka.Writer, *sync.EventPublisher) {

	if len(cfg.SyncEventsKafkaBrokers) == 0 {
		logger.Log.Info("Sync event publishing is disabled (no kafka brokers configured)")
		return nil, nil
	}

	producerCfg := &queue.ProducerConfig{
		Brokers:    cfg.SyncEventsKafkaBrokers,
		Topic:      cfg.SyncEventsTopic,
		BatchSize:  cfg.SyncEventsBatchSize,
		BatchBytes: cfg.SyncEventsBatchBytes,
		Balancer:   "hash",
	}

	if cfg.SyncEventsKafkaUsername != "" {
		producerCfg.SaslConfig = &queue.SaslConfig{
			SaslMechanism: cfg.SyncEventsKafkaSaslMechanism,
			SaslUsername:  cfg.SyncEventsKafkaUsername,
			SaslPassword:  cfg.SyncEventsKafkaPassword,
			KafkaCA:       cfg.SyncEventsKafkaCA,
		}
	}

	writer := queue.StartProducer(producerCfg)

	return writer, sync.NewEventPublisher(writer)
}
