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

type SqlCatalogRepository struct {
	database   *sql.DB
	sqlTimeout time.Duration
}

func NewSqlCatalogRepository(database *sql.DB, sqlTimeout time.Duration) *SqlCatalogRepository {
	return &SqlCatalogRepository{
		database:   database,
		sqlTimeout: sqlTimeout,
	}
}

func (scr *SqlCatalogRepository) FetchCatalog(ctx context.Context, storeID domain.StoreID) (*domain.StoreCatalog, error) {

	callDurationTimer := prometheus.NewTimer(metrics.sqlFetchCatalogDuration)
	defer callDurationTimer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, scr.sqlTimeout)
	defer cancel()

	statement, err := scr.database.Prepare("SELECT products FROM store_catalogs WHERE store_id = $1")
	if err != nil {
		logger.LogError("SQL Prepare failed", err)
		return nil, err
	}
	defer statement.Close()

	var productsString string

	err = statement.QueryRowContext(ctx, string(storeID)).Scan(&productsString)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err, "store_id": storeID}).Error("SQL catalog lookup failed")
		return nil, err
	}

	var products []domain.ProductRecord
	if err := json.Unmarshal([]byte(productsString), &products); err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err, "store_id": storeID}).Error("Unable to parse embedded product list")
		return nil, err
	}

	return &domain.StoreCatalog{StoreID: storeID, Products: products}, nil
}

func (scr *SqlCatalogRepository) UpsertCatalog(ctx context.Context, catalog domain.StoreCatalog) error {

	callDurationTimer := prometheus.NewTimer(metrics.sqlUpsertCatalogDuration)
	defer callDurationTimer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, scr.sqlTimeout)
	defer cancel()

	productsString, err := json.Marshal(catalog.Products)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err, "store_id": catalog.StoreID}).Error("Unable to marshal embedded product list")
		return err
	}

	update := `INSERT INTO store_catalogs (store_id, products, updated_at) VALUES ($1, $2, NOW())
                 ON CONFLICT (store_id) DO UPDATE SET products = EXCLUDED.products, updated_at = NOW()`

	statement, err := scr.database.Prepare(update)
	if err != nil {
		logger.LogError("SQL Prepare failed", err)
		return err
	}
	defer statement.Close()

	_, err = statement.ExecContext(ctx, string(catalog.StoreID), string(productsString))
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err, "store_id": catalog.StoreID}).Error("SQL catalog upsert failed")
		return err
	}

	return nil
}
