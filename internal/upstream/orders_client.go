package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/marketpulse/reporting-gateway/internal/config"
	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"
)

const ordersServiceName = "orders"

// OrdersServiceClient talks to the cart / order settlement service.
type OrdersServiceClient struct {
	baseUrl    string
	httpClient *http.Client
}

func NewOrdersServiceClient(cfg *config.Config) *OrdersServiceClient {
	return &OrdersServiceClient{
		baseUrl:    cfg.OrdersServiceUrl,
		httpClient: newHTTPClient(cfg.UpstreamRequestTimeout),
	}
}

// FetchCarts returns every cart known to the orders service
func (c *OrdersServiceClient) FetchCarts(ctx context.Context, token string) ([]domain.Cart, error) {

	var carts []domain.Cart
	url := fmt.Sprintf("%s/api/v1/carts", c.baseUrl)

	if err := getJSON(ctx, c.httpClient, ordersServiceName, url, token, &carts); err != nil {
		return nil, err
	}

	logger.Log.Debugf("Fetched %d carts from the orders service", len(carts))

	return carts, nil
}

type paymentStatusResponse struct {
	Status string `json:"status"`
}

// FetchCartPaymentStatus resolves the payment status for a single cart
func (c *OrdersServiceClient) FetchCartPaymentStatus(ctx context.Context, token string, cartID domain.CartID) (string, error) {

	var response paymentStatusResponse
	url := fmt.Sprintf("%s/api/v1/orders/payment-status/%s", c.baseUrl, cartID)

	if err := getJSON(ctx, c.httpClient, ordersServiceName, url, token, &response); err != nil {
		return "", err
	}

	return response.Status, nil
}
