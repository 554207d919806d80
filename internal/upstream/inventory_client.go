package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/marketpulse/reporting-gateway/internal/config"
	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"
)

const inventoryServiceName = "inventory"

// InventoryServiceClient pulls the authoritative store and product snapshots
// from the catalog / inventory service.
type InventoryServiceClient struct {
	baseUrl    string
	httpClient *http.Client
}

func NewInventoryServiceClient(cfg *config.Config) *InventoryServiceClient {
	return &InventoryServiceClient{
		baseUrl:    cfg.InventoryServiceUrl,
		httpClient: newHTTPClient(cfg.UpstreamRequestTimeout),
	}
}

// FetchStores returns the full upstream store list
func (c *InventoryServiceClient) FetchStores(ctx context.Context, token string) ([]domain.UpstreamStore, error) {

	var stores []domain.UpstreamStore
	url := fmt.Sprintf("%s/api/stores", c.baseUrl)

	if err := getJSON(ctx, c.httpClient, inventoryServiceName, url, token, &stores); err != nil {
		return nil, err
	}

	logger.Log.Debugf("Fetched %d stores from the inventory service", len(stores))

	return stores, nil
}

// FetchProducts returns the full upstream product list
func (c *InventoryServiceClient) FetchProducts(ctx context.Context, token string) ([]domain.UpstreamProduct, error) {

	var products []domain.UpstreamProduct
	url := fmt.Sprintf("%s/api/products", c.baseUrl)

	if err := getJSON(ctx, c.httpClient, inventoryServiceName, url, token, &products); err != nil {
		return nil, err
	}

	logger.Log.Debugf("Fetched %d products from the inventory service", len(products))

	return products, nil
}
