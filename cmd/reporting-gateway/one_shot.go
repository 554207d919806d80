package main

import (
	"context"
	"database/sql"

	"github.com/marketpulse/reporting-gateway/internal/config"
	"github.com/marketpulse/reporting-gateway/internal/platform/db"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"
	"github.com/marketpulse/reporting-gateway/internal/reconciler"
	"github.com/marketpulse/reporting-gateway/internal/reporting"
	"github.com/marketpulse/reporting-gateway/internal/sync"
	"github.com/marketpulse/reporting-gateway/internal/upstream"
)

// runOneShotPass acquires a credential directly and runs a single pass.
// These entry points exist for cron style deployments and for operators
// recovering from an incident.
func runOneShotPass(jobName string, buildRun func(cfg *config.Config, database *sql.DB) (func(ctx context.Context, token string) error, error)) {

	logger.InitLogger()
	defer logger.FlushLogger()

	logger.Log.Infof("Starting a one-shot %s pass", jobName)

	cfg := config.GetConfig()
	logger.Log.Info("Reporting-Gateway configuration:\n", cfg)

	database, err := db.InitializeDatabaseConnection(cfg)
	if err != nil {
		logger.LogFatalError("Unable to connect to database: ", err)
	}
	defer database.Close()

	run, err := buildRun(cfg, database)
	if err != nil {
		logger.LogFatalError("Unable to build the sync pass: ", err)
	}

	ctx := context.Background()

	authClient := upstream.NewAuthServiceClient(cfg)

	credential, err := authClient.AcquireCredential(ctx)
	if err != nil {
		logger.LogFatalError("Unable to acquire a service credential: ", err)
	}

	if err := run(ctx, credential.Token); err != nil {
		logger.LogFatalError("Sync pass failed: ", err)
	}

	logger.Log.Infof("One-shot %s pass finished", jobName)
}

func startOneShotInventorySync() {
	runOneShotPass("inventory_sync", func(cfg *config.Config, database *sql.DB) (func(ctx context.Context, token string) error, error) {

		sqlTimeout := cfg.ReportingDatabaseQueryTimeout
		catalogReconciler := reconciler.NewCatalogReconciler(
			upstream.NewInventoryServiceClient(cfg),
			reporting.NewSqlSellerRepository(database, sqlTimeout),
			reporting.NewSqlCatalogRepository(database, sqlTimeout))

		return func(ctx context.Context, token string) error {
			_, err := catalogReconciler.Reconcile(ctx, token)
			return err
		}, nil
	})
}

func startOneShotRosterSync() {
	runOneShotPass("roster_sync", func(cfg *config.Config, database *sql.DB) (func(ctx context.Context, token string) error, error) {

		sqlTimeout := cfg.ReportingDatabaseQueryTimeout
		rosterSynchronizer := sync.NewRosterSynchronizer(
			upstream.NewAuthServiceClient(cfg),
			reporting.NewSqlSellerRepository(database, sqlTimeout),
			reporting.NewSqlCustomerRepository(database, sqlTimeout))

		return func(ctx context.Context, token string) error {
			_, err := rosterSynchronizer.Synchronize(ctx, token)
			return err
		}, nil
	})
}

func startOneShotSettlementAnalysis() {
	runOneShotPass("settlement_analysis", func(cfg *config.Config, database *sql.DB) (func(ctx context.Context, token string) error, error) {

		sqlTimeout := cfg.ReportingDatabaseQueryTimeout
		settlementAnalyzer, err := sync.NewSettlementAnalyzer(
			upstream.NewOrdersServiceClient(cfg),
			reporting.NewSqlSettlementReportWriter(database, sqlTimeout),
			cfg.SettlementPaidCartCacheSize)
		if err != nil {
			return nil, err
		}

		return func(ctx context.Context, token string) error {
			_, err := settlementAnalyzer.Analyze(ctx, token)
			return err
		}, nil
	})
}
