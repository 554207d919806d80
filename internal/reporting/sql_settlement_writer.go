package reporting

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
)

type SqlSettlementReportWriter struct {
	database   *sql.DB
	sqlTimeout time.Duration
}

func NewSqlSettlementReportWriter(database *sql.DB, sqlTimeout time.Duration) *SqlSettlementReportWriter {
	return &SqlSettlementReportWriter{
		database:   database,
		sqlTimeout: sqlTimeout,
	}
}

func (ssw *SqlSettlementReportWriter) RecordSettlement(ctx context.Context, runAt time.Time, summary domain.SettlementSummary) error {

	callDurationTimer := prometheus.NewTimer(metrics.sqlRecordSettlementDuration)
	defer callDurationTimer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, ssw.sqlTimeout)
	defer cancel()

	productsSoldString, err := json.Marshal(summary.ProductsSold)
	if err != nil {
		logger.LogError("Unable to marshal the products sold map", err)
		return err
	}

	update := `INSERT INTO settlement_reports (run_at, paid_carts, total_paid, products_sold)
                 VALUES ($1, $2, $3, $4)`

	statement, err := ssw.database.Prepare(update)
	if err != nil {
		logger.LogError("SQL Prepare failed", err)
		return err
	}
	defer statement.Close()

	_, err = statement.ExecContext(ctx, runAt, summary.PaidCarts, summary.TotalPaid, string(productsSoldString))
	if err != nil {
		logger.LogError("SQL settlement report insert failed", err)
		return err
	}

	return nil
}
