package reporting

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type SqlSellerRepository struct {
	database   *sql.DB
	sqlTimeout time.Duration
}

func NewSqlSellerRepository(database *sql.DB, sqlTimeout time.Duration) *SqlSellerRepository {
	return &SqlSellerRepository{
		database:   database,
		sqlTimeout: sqlTimeout,
	}
}

func (ssr *SqlSellerRepository) FetchAllSellers(ctx context.Context) ([]domain.Seller, error) {

	callDurationTimer := prometheus.NewTimer(metrics.sqlFetchAllSellersDuration)
	defer callDurationTimer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, ssr.sqlTimeout)
	defer cancel()

	statement, err := ssr.database.Prepare("SELECT seller_id, stores FROM sellers ORDER BY seller_id")
	if err != nil {
		logger.LogError("SQL Prepare failed", err)
		return nil, err
	}
	defer statement.Close()

	rows, err := statement.QueryContext(ctx)
	if err != nil {
		logger.LogError("SQL query failed", err)
		return nil, err
	}
	defer rows.Close()

	var sellers []domain.Seller

	for rows.Next() {
		var sellerID string
		var storesString string

		if err := rows.Scan(&sellerID, &storesString); err != nil {
			logger.LogError("SQL scan failed.  Skipping row.", err)
			continue
		}

		var stores []domain.StoreRef
		if err := json.Unmarshal([]byte(storesString), &stores); err != nil {
			logger.Log.WithFields(logrus.Fields{"error": err, "seller_id": sellerID}).Error("Unable to parse embedded store list.  Skipping seller.")
			continue
		}

		sellers = append(sellers, domain.Seller{SellerID: domain.UserID(sellerID), Stores: stores})
	}

	return sellers, nil
}

func (ssr *SqlSellerRepository) UpsertSeller(ctx context.Context, sellerID domain.UserID) error {

	callDurationTimer := prometheus.NewTimer(metrics.sqlUpsertSellerDuration)
	defer callDurationTimer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, ssr.sqlTimeout)
	defer cancel()

	update := `INSERT INTO sellers (seller_id, stores, updated_at) VALUES ($1, '[]', NOW())
                 ON CONFLICT (seller_id) DO UPDATE SET updated_at = NOW()`

	statement, err := ssr.database.Prepare(update)
	if err != nil {
		logger.LogError("SQL Prepare failed", err)
		return err
	}
	defer statement.Close()

	_, err = statement.ExecContext(ctx, string(sellerID))
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err, "seller_id": sellerID}).Error("SQL seller upsert failed")
		return err
	}

	return nil
}

func (ssr *SqlSellerRepository) ReplaceSellerStores(ctx context.Context, sellerID domain.UserID, stores []domain.StoreRef) error {

	callDurationTimer := prometheus.NewTimer(metrics.sqlReplaceSellerStoresDuration)
	defer callDurationTimer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, ssr.sqlTimeout)
	defer cancel()

	storesString, err := json.Marshal(stores)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err, "seller_id": sellerID}).Error("Unable to marshal embedded store list")
		return err
	}

	update := "UPDATE sellers SET stores = $1, updated_at = NOW() WHERE seller_id = $2"

	statement, err := ssr.database.Prepare(update)
	if err != nil {
		logger.LogError("SQL Prepare failed", err)
		return err
	}
	defer statement.Close()

	_, err = statement.ExecContext(ctx, string(storesString), string(sellerID))
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err, "seller_id": sellerID}).Error("SQL seller store list update failed")
		return err
	}

	return nil
}
