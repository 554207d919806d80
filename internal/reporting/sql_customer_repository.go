package reporting

import (
	"context"
	"database/sql"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type SqlCustomerRepository struct {
	database   *sql.DB
	sqlTimeout time.Duration
}

func NewSqlCustomerRepository(database *sql.DB, sqlTimeout time.Duration) *SqlCustomerRepository {
	return &SqlCustomerRepository{
		database:   database,
		sqlTimeout: sqlTimeout,
	}
}

func (scr *SqlCustomerRepository) UpsertCustomer(ctx context.Context, customer domain.Customer) error {

	callDurationTimer := prometheus.NewTimer(metrics.sqlUpsertCustomerDuration)
	defer callDurationTimer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, scr.sqlTimeout)
	defer cancel()

	update := `INSERT INTO customers (customer_id, created_at, updated_at) VALUES ($1, $2, NOW())
                 ON CONFLICT (customer_id) DO UPDATE SET created_at = EXCLUDED.created_at, updated_at = NOW()`

	statement, err := scr.database.Prepare(update)
	if err != nil {
		logger.LogError("SQL Prepare failed", err)
		return err
	}
	defer statement.Close()

	_, err = statement.ExecContext(ctx, string(customer.CustomerID), customer.CreatedAt)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err, "customer_id": customer.CustomerID}).Error("SQL customer upsert failed")
		return err
	}

	return nil
}
