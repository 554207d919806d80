package reconciler

import (
	"context"

	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"
	"github.com/marketpulse/reporting-gateway/internal/reporting"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// InventoryGateway is the slice of the inventory service consumed by the
// reconciliation engine.
type InventoryGateway interface {
	FetchStores(ctx context.Context, token string) ([]domain.UpstreamStore, error)
	FetchProducts(ctx context.Context, token string) ([]domain.UpstreamProduct, error)
}

// Summary reports the outcome of one reconciliation pass.
type Summary struct {
	StoresProcessed int
}

// CatalogReconciler folds an upstream authoritative snapshot of stores and
// products into the local reporting store.
//
// Master fields always come from the upstream snapshot; the locally owned
// TimesSold / TimesSearched counters are carried over from the existing
// catalog and default to zero for products never seen before.  Products
// missing from the upstream snapshot for a store are dropped, and sellers
// matching zero upstream stores keep their previous store list.
type CatalogReconciler struct {
	inventory InventoryGateway
	sellers   reporting.SellerRepository
	catalogs  reporting.CatalogRepository
}

func NewCatalogReconciler(inventory InventoryGateway, sellers reporting.SellerRepository, catalogs reporting.CatalogRepository) *CatalogReconciler {
	return &CatalogReconciler{
		inventory: inventory,
		sellers:   sellers,
		catalogs:  catalogs,
	}
}

// Reconcile runs one full reconciliation pass.  The two snapshot fetches run
// in parallel; store merges run strictly sequentially so a target record
// never sees concurrent writers.
func (cr *CatalogReconciler) Reconcile(ctx context.Context, token string) (Summary, error) {

	callDurationTimer := prometheus.NewTimer(reconciliationDuration)
	defer callDurationTimer.ObserveDuration()

	logger.Log.Debug("Starting a catalog reconciliation pass")

	var upstreamStores []domain.UpstreamStore
	var upstreamProducts []domain.UpstreamProduct

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error
		upstreamStores, err = cr.inventory.FetchStores(groupCtx, token)
		return err
	})

	group.Go(func() error {
		var err error
		upstreamProducts, err = cr.inventory.FetchProducts(groupCtx, token)
		return err
	})

	if err := group.Wait(); err != nil {
		return Summary{}, err
	}

	localSellers, err := cr.sellers.FetchAllSellers(ctx)
	if err != nil {
		return Summary{}, err
	}

	matchedStoreIDs := cr.reconcileSellerStores(ctx, localSellers, upstreamStores)

	productsByStore := groupProductsByStore(upstreamProducts, matchedStoreIDs)

	for _, storeID := range matchedStoreIDs {
		storeProducts := productsByStore[storeID]
		if len(storeProducts) == 0 {
			continue
		}

		if err := cr.mergeStoreCatalog(ctx, storeID, storeProducts); err != nil {
			// A failed store merge only aborts that store
			logger.Log.WithFields(logrus.Fields{"error": err, "store_id": storeID}).Error("Store catalog merge failed.  Skipping store.")
			continue
		}
	}

	storesProcessedCounter.Add(float64(len(matchedStoreIDs)))

	logger.Log.WithFields(logrus.Fields{"stores_processed": len(matchedStoreIDs)}).Debug("Catalog reconciliation pass finished")

	return Summary{StoresProcessed: len(matchedStoreIDs)}, nil
}

// reconcileSellerStores replaces each seller's embedded store list with the
// matching upstream stores and returns the ids of every matched store.
// Sellers with zero matching upstream stores are left untouched.
func (cr *CatalogReconciler) reconcileSellerStores(ctx context.Context, localSellers []domain.Seller, upstreamStores []domain.UpstreamStore) []domain.StoreID {

	var matchedStoreIDs []domain.StoreID
	seen := make(map[domain.StoreID]bool)

	for _, seller := range localSellers {

		var storeRefs []domain.StoreRef

		for _, store := range upstreamStores {
			if store.SellerID != seller.SellerID {
				continue
			}

			storeRefs = append(storeRefs, domain.StoreRef{StoreID: store.StoreID, StoreName: store.Name})

			if !seen[store.StoreID] {
				seen[store.StoreID] = true
				matchedStoreIDs = append(matchedStoreIDs, store.StoreID)
			}
		}

		if len(storeRefs) == 0 {
			continue
		}

		if err := cr.sellers.ReplaceSellerStores(ctx, seller.SellerID, storeRefs); err != nil {
			// A failed seller update only aborts that seller
			logger.Log.WithFields(logrus.Fields{"error": err, "seller_id": seller.SellerID}).Error("Seller store list update failed.  Skipping seller.")
			continue
		}

		logger.Log.Debugf("Seller %s updated with %d stores", seller.SellerID, len(storeRefs))
	}

	return matchedStoreIDs
}

func (cr *CatalogReconciler) mergeStoreCatalog(ctx context.Context, storeID domain.StoreID, upstreamProducts []domain.UpstreamProduct) error {

	existingCatalog, err := cr.catalogs.FetchCatalog(ctx, storeID)
	if err != nil {
		return err
	}

	existingByProductID := make(map[domain.ProductID]domain.ProductRecord)
	if existingCatalog != nil {
		for _, product := range existingCatalog.Products {
			existingByProductID[product.ProductID] = product
		}
	}

	mergedProducts := make([]domain.ProductRecord, 0, len(upstreamProducts))

	for _, upstreamProduct := range upstreamProducts {

		record := domain.ProductRecord{
			ProductID: upstreamProduct.ProductID,
			Name:      upstreamProduct.Name,
			Category:  upstreamProduct.Category,
			Price:     upstreamProduct.Price,
			Stock:     upstreamProduct.Stock,
			CreatedAt: upstreamProduct.CreatedAt,
		}

		if existingProduct, ok := existingByProductID[upstreamProduct.ProductID]; ok {
			record.TimesSold = existingProduct.TimesSold
			record.TimesSearched = existingProduct.TimesSearched
		}

		mergedProducts = append(mergedProducts, record)
	}

	return cr.catalogs.UpsertCatalog(ctx, domain.StoreCatalog{StoreID: storeID, Products: mergedProducts})
}

func groupProductsByStore(upstreamProducts []domain.UpstreamProduct, matchedStoreIDs []domain.StoreID) map[domain.StoreID][]domain.UpstreamProduct {

	matched := make(map[domain.StoreID]bool, len(matchedStoreIDs))
	for _, storeID := range matchedStoreIDs {
		matched[storeID] = true
	}

	productsByStore := make(map[domain.StoreID][]domain.UpstreamProduct)
	for _, product := range upstreamProducts {
		if matched[product.StoreID] {
			productsByStore[product.StoreID] = append(productsByStore[product.StoreID], product)
		}
	}

	return productsByStore
}
