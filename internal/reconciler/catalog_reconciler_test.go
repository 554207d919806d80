package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"

	"github.com/google/go-cmp/cmp"
)

func init() {
	logger.InitLogger()
}

type fakeInventoryGateway struct {
	stores      []domain.UpstreamStore
	products    []domain.UpstreamProduct
	storesErr   error
	productsErr error
}

func (fig *fakeInventoryGateway) FetchStores(ctx context.Context, token string) ([]domain.UpstreamStore, error) {
	return fig.stores, fig.storesErr
}

func (fig *fakeInventoryGateway) FetchProducts(ctx context.Context, token string) ([]domain.UpstreamProduct, error) {
	return fig.products, fig.productsErr
}

type fakeSellerRepository struct {
	sellers       []domain.Seller
	storeLists    map[domain.UserID][]domain.StoreRef
	replaceErrFor domain.UserID
}

func newFakeSellerRepository(sellers ...domain.Seller) *fakeSellerRepository {
	return &fakeSellerRepository{
		sellers:    sellers,
		storeLists: make(map[domain.UserID][]domain.StoreRef),
	}
}

func (fsr *fakeSellerRepository) FetchAllSellers(ctx context.Context) ([]domain.Seller, error) {
	return fsr.sellers, nil
}

func (fsr *fakeSellerRepository) UpsertSeller(ctx context.Context, sellerID domain.UserID) error {
	return nil
}

func (fsr *fakeSellerRepository) ReplaceSellerStores(ctx context.Context, sellerID domain.UserID, stores []domain.StoreRef) error {
	if sellerID == fsr.replaceErrFor {
		return errors.New("seller update rejected")
	}
	fsr.storeLists[sellerID] = stores
	return nil
}

type fakeCatalogRepository struct {
	catalogs    map[domain.StoreID][]domain.ProductRecord
	upsertCount int
	failFor     domain.StoreID
}

func newFakeCatalogRepository() *fakeCatalogRepository {
	return &fakeCatalogRepository{
		catalogs: make(map[domain.StoreID][]domain.ProductRecord),
	}
}

func (fcr *fakeCatalogRepository) FetchCatalog(ctx context.Context, storeID domain.StoreID) (*domain.StoreCatalog, error) {
	products, ok := fcr.catalogs[storeID]
	if !ok {
		return nil, nil
	}
	return &domain.StoreCatalog{StoreID: storeID, Products: products}, nil
}

func (fcr *fakeCatalogRepository) UpsertCatalog(ctx context.Context, catalog domain.StoreCatalog) error {
	if catalog.StoreID == fcr.failFor {
		return errors.New("catalog write rejected")
	}
	fcr.upsertCount++
	fcr.catalogs[catalog.StoreID] = catalog.Products
	return nil
}

func upstreamStore(storeID domain.StoreID, sellerID domain.UserID, name string) domain.UpstreamStore {
	return domain.UpstreamStore{StoreID: storeID, SellerID: sellerID, Name: name}
}

func upstreamProduct(productID domain.ProductID, storeID domain.StoreID, name string, price float64) domain.UpstreamProduct {
	return domain.UpstreamProduct{ProductID: productID, StoreID: storeID, Name: name, Price: price, Stock: 5}
}

func TestReconcilePreservesLocallyOwnedCounters(t *testing.T) {

	inventory := &fakeInventoryGateway{
		stores:   []domain.UpstreamStore{upstreamStore("store-1", "seller-1", "Main Street")},
		products: []domain.UpstreamProduct{upstreamProduct("prod-1", "store-1", "Widget", 9.99)},
	}

	sellers := newFakeSellerRepository(domain.Seller{SellerID: "seller-1"})

	catalogs := newFakeCatalogRepository()
	catalogs.catalogs["store-1"] = []domain.ProductRecord{
		{ProductID: "prod-1", Name: "Old Widget", Price: 1.00, TimesSold: 7, TimesSearched: 42},
	}

	reconciler := NewCatalogReconciler(inventory, sellers, catalogs)

	summary, err := reconciler.Reconcile(context.Background(), "token")
	if err != nil {
		t.Fatal("unexpected reconciliation error", err)
	}

	if summary.StoresProcessed != 1 {
		t.Errorf("expected 1 store processed, got %d", summary.StoresProcessed)
	}

	expected := []domain.ProductRecord{
		{ProductID: "prod-1", Name: "Widget", Price: 9.99, Stock: 5, TimesSold: 7, TimesSearched: 42},
	}

	if cmp.Equal(expected, catalogs.catalogs["store-1"]) != true {
		t.Errorf("merged catalog mismatch: %s", cmp.Diff(expected, catalogs.catalogs["store-1"]))
	}
}

func TestReconcileInitializesCountersForNewProducts(t *testing.T) {

	inventory := &fakeInventoryGateway{
		stores:   []domain.UpstreamStore{upstreamStore("store-1", "seller-1", "Main Street")},
		products: []domain.UpstreamProduct{upstreamProduct("prod-new", "store-1", "Gadget", 4.50)},
	}

	sellers := newFakeSellerRepository(domain.Seller{SellerID: "seller-1"})
	catalogs := newFakeCatalogRepository()

	reconciler := NewCatalogReconciler(inventory, sellers, catalogs)

	if _, err := reconciler.Reconcile(context.Background(), "token"); err != nil {
		t.Fatal("unexpected reconciliation error", err)
	}

	merged := catalogs.catalogs["store-1"]
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged product, got %d", len(merged))
	}

	if merged[0].TimesSold != 0 || merged[0].TimesSearched != 0 {
		t.Errorf("expected zeroed counters for new product, got %d / %d", merged[0].TimesSold, merged[0].TimesSearched)
	}
}

func TestReconcileDropsProductsMissingUpstream(t *testing.T) {

	inventory := &fakeInventoryGateway{
		stores:   []domain.UpstreamStore{upstreamStore("store-1", "seller-1", "Main Street")},
		products: []domain.UpstreamProduct{upstreamProduct("prod-1", "store-1", "Widget", 9.99)},
	}

	sellers := newFakeSellerRepository(domain.Seller{SellerID: "seller-1"})

	catalogs := newFakeCatalogRepository()
	catalogs.catalogs["store-1"] = []domain.ProductRecord{
		{ProductID: "prod-1", Name: "Widget", TimesSold: 1},
		{ProductID: "prod-gone", Name: "Discontinued", TimesSold: 99},
	}

	reconciler := NewCatalogReconciler(inventory, sellers, catalogs)

	if _, err := reconciler.Reconcile(context.Background(), "token"); err != nil {
		t.Fatal("unexpected reconciliation error", err)
	}

	merged := catalogs.catalogs["store-1"]
	if len(merged) != 1 {
		t.Fatalf("expected discontinued product to be dropped, got %d products", len(merged))
	}
	if merged[0].ProductID != "prod-1" {
		t.Errorf("expected prod-1 to survive, got %s", merged[0].ProductID)
	}
}

func TestReconcileLeavesUnmatchedSellersUntouched(t *testing.T) {

	inventory := &fakeInventoryGateway{
		stores: []domain.UpstreamStore{upstreamStore("store-1", "seller-1", "Main Street")},
	}

	sellers := newFakeSellerRepository(
		domain.Seller{SellerID: "seller-1"},
		domain.Seller{SellerID: "seller-2", Stores: []domain.StoreRef{{StoreID: "stale-store", StoreName: "Closed"}}},
	)

	reconciler := NewCatalogReconciler(inventory, sellers, newFakeCatalogRepository())

	if _, err := reconciler.Reconcile(context.Background(), "token"); err != nil {
		t.Fatal("unexpected reconciliation error", err)
	}

	if _, updated := sellers.storeLists["seller-2"]; updated {
		t.Error("seller with no upstream stores should not have been rewritten")
	}

	expected := []domain.StoreRef{{StoreID: "store-1", StoreName: "Main Street"}}
	if cmp.Equal(expected, sellers.storeLists["seller-1"]) != true {
		t.Errorf("seller store list mismatch: %s", cmp.Diff(expected, sellers.storeLists["seller-1"]))
	}
}

func TestReconcileCountsStoresWithoutProducts(t *testing.T) {

	inventory := &fakeInventoryGateway{
		stores: []domain.UpstreamStore{
			upstreamStore("store-1", "seller-1", "Main Street"),
			upstreamStore("store-2", "seller-1", "Side Street"),
		},
		products: []domain.UpstreamProduct{upstreamProduct("prod-1", "store-1", "Widget", 9.99)},
	}

	sellers := newFakeSellerRepository(domain.Seller{SellerID: "seller-1"})
	catalogs := newFakeCatalogRepository()

	reconciler := NewCatalogReconciler(inventory, sellers, catalogs)

	summary, err := reconciler.Reconcile(context.Background(), "token")
	if err != nil {
		t.Fatal("unexpected reconciliation error", err)
	}

	if summary.StoresProcessed != 2 {
		t.Errorf("expected both matched stores counted, got %d", summary.StoresProcessed)
	}

	if catalogs.upsertCount != 1 {
		t.Errorf("expected a single catalog write, got %d", catalogs.upsertCount)
	}
}

func TestReconcileContinuesPastFailedStoreMerge(t *testing.T) {

	inventory := &fakeInventoryGateway{
		stores: []domain.UpstreamStore{
			upstreamStore("store-bad", "seller-1", "Broken"),
			upstreamStore("store-good", "seller-1", "Working"),
		},
		products: []domain.UpstreamProduct{
			upstreamProduct("prod-1", "store-bad", "Widget", 9.99),
			upstreamProduct("prod-2", "store-good", "Gadget", 4.50),
		},
	}

	sellers := newFakeSellerRepository(domain.Seller{SellerID: "seller-1"})

	catalogs := newFakeCatalogRepository()
	catalogs.failFor = "store-bad"

	reconciler := NewCatalogReconciler(inventory, sellers, catalogs)

	summary, err := reconciler.Reconcile(context.Background(), "token")
	if err != nil {
		t.Fatal("a single failed store merge should not fail the pass", err)
	}

	if summary.StoresProcessed != 2 {
		t.Errorf("expected 2 stores processed, got %d", summary.StoresProcessed)
	}

	if _, ok := catalogs.catalogs["store-good"]; !ok {
		t.Error("expected the remaining store to be merged after a failure")
	}
}

func TestReconcileFailsWhenSnapshotFetchFails(t *testing.T) {

	inventory := &fakeInventoryGateway{
		productsErr: errors.New("inventory service unavailable"),
	}

	reconciler := NewCatalogReconciler(inventory, newFakeSellerRepository(), newFakeCatalogRepository())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := reconciler.Reconcile(ctx, "token"); err == nil {
		t.Fatal("expected an error when the product snapshot fetch fails")
	}
}

func TestReconcileIsIdempotent(t *testing.T) {

	inventory := &fakeInventoryGateway{
		stores:   []domain.UpstreamStore{upstreamStore("store-1", "seller-1", "Main Street")},
		products: []domain.UpstreamProduct{upstreamProduct("prod-1", "store-1", "Widget", 9.99)},
	}

	sellers := newFakeSellerRepository(domain.Seller{SellerID: "seller-1"})
	catalogs := newFakeCatalogRepository()

	reconciler := NewCatalogReconciler(inventory, sellers, catalogs)

	if _, err := reconciler.Reconcile(context.Background(), "token"); err != nil {
		t.Fatal("unexpected reconciliation error", err)
	}

	firstPass := catalogs.catalogs["store-1"]

	if _, err := reconciler.Reconcile(context.Background(), "token"); err != nil {
		t.Fatal("unexpected reconciliation error", err)
	}

	if cmp.Equal(firstPass, catalogs.catalogs["store-1"]) != true {
		t.Errorf("back to back passes diverged: %s", cmp.Diff(firstPass, catalogs.catalogs["store-1"]))
	}
}
