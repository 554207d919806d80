package reporting

import (
	"context"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/domain"
)

// SellerRepository manages the locally stored seller records.
type SellerRepository interface {
	// FetchAllSellers returns every locally registered seller
	FetchAllSellers(ctx context.Context) ([]domain.Seller, error)

	// UpsertSeller registers a seller by identity key.  The embedded store
	// list of an existing record is left untouched.
	UpsertSeller(ctx context.Context, sellerID domain.UserID) error

	// ReplaceSellerStores overwrites the seller's embedded store list
	ReplaceSellerStores(ctx context.Context, sellerID domain.UserID, stores []domain.StoreRef) error
}

// CustomerRepository manages the locally stored customer records.
type CustomerRepository interface {
	UpsertCustomer(ctx context.Context, customer domain.Customer) error
}

// CatalogRepository manages the denormalized per store product catalogs.
type CatalogRepository interface {
	// FetchCatalog returns the catalog for the store, or nil when the store
	// has never been synchronized
	FetchCatalog(ctx context.Context, storeID domain.StoreID) (*domain.StoreCatalog, error)

	// UpsertCatalog creates or wholesale replaces the store's catalog
	UpsertCatalog(ctx context.Context, catalog domain.StoreCatalog) error
}

// SettlementReportWriter persists the outcome of a settlement analysis run.
type SettlementReportWriter interface {
	RecordSettlement(ctx context.Context, runAt time.Time, summary domain.SettlementSummary) error
}
