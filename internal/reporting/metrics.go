package reporting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type reportingStoreMetrics struct {
	sqlFetchAllSellersDuration     prometheus.Histogram
	sqlUpsertSellerDuration        prometheus.Histogram
	sqlReplaceSellerStoresDuration prometheus.Histogram
	sqlUpsertCustomerDuration      prometheus.Histogram
	sqlFetchCatalogDuration        prometheus.Histogram
	sqlUpsertCatalogDuration       prometheus.Histogram
	sqlRecordSettlementDuration    prometheus.Histogram
}

var metrics *reportingStoreMetrics

func init() {
	metrics = new(reportingStoreMetrics)

	metrics.sqlFetchAllSellersDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "reporting_gateway_sql_fetch_all_sellers_duration",
		Help: "The amount of time it took to fetch all seller records",
	})

	metrics.sqlUpsertSellerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "reporting_gateway_sql_upsert_seller_duration",
		Help: "The amount of time it took to upsert a seller record",
	})

	metrics.sqlReplaceSellerStoresDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "reporting_gateway_sql_replace_seller_stores_duration",
		Help: "The amount of time it took to replace a seller's embedded store list",
	})

	metrics.sqlUpsertCustomerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "reporting_gateway_sql_upsert_customer_duration",
		Help: "The amount of time it took to upsert a customer record",
	})

	metrics.sqlFetchCatalogDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "reporting_gateway_sql_fetch_catalog_duration",
		Help: "The amount of time it took to fetch a store catalog",
	})

	metrics.sqlUpsertCatalogDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "reporting_gateway_sql_upsert_catalog_duration",
		Help: "The amount of time it took to upsert a store catalog",
	})

	metrics.sqlRecordSettlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "reporting_gateway_sql_record_settlement_duration",
		Help: "The amount of time it took to record a settlement analysis report",
	})
}
