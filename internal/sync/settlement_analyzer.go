package sync

import (
	"context"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"
	"github.com/marketpulse/reporting-gateway/internal/reporting"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentStatusChecks = 10

// OrdersGateway is the slice of the orders service consumed by settlement
// analysis.
type OrdersGateway interface {
	FetchCarts(ctx context.Context, token string) ([]domain.Cart, error)
	FetchCartPaymentStatus(ctx context.Context, token string, cartID domain.CartID) (string, error)
}

// SettlementAnalyzer aggregates paid carts into a settlement report.  Payment
// status lookups run concurrently, a lookup failure demotes the cart to
// unpaid for this run, and carts already known to be paid are served from a
// local cache because a paid cart never becomes unpaid again.
type SettlementAnalyzer struct {
	orders    OrdersGateway
	reports   reporting.SettlementReportWriter
	paidCarts *lru.Cache[domain.CartID, struct{}]
}

func NewSettlementAnalyzer(orders OrdersGateway, reports reporting.SettlementReportWriter, paidCartCacheSize int) (*SettlementAnalyzer, error) {

	paidCarts, err := lru.New[domain.CartID, struct{}](paidCartCacheSize)
	if err != nil {
		return nil, err
	}

	return &SettlementAnalyzer{
		orders:    orders,
		reports:   reports,
		paidCarts: paidCarts,
	}, nil
}

func (sa *SettlementAnalyzer) Analyze(ctx context.Context, token string) (domain.SettlementSummary, error) {

	callDurationTimer := prometheus.NewTimer(settlementAnalysisDuration)
	defer callDurationTimer.ObserveDuration()

	carts, err := sa.orders.FetchCarts(ctx, token)
	if err != nil {
		return domain.SettlementSummary{}, err
	}

	paid := sa.resolvePaymentStatuses(ctx, token, carts)

	summary := domain.SettlementSummary{
		ProductsSold: make(map[domain.ProductID]int),
	}

	for i, cart := range carts {
		if !paid[i] {
			continue
		}

		summary.PaidCarts++
		summary.TotalPaid += cart.Total

		for _, item := range cart.Items {
			summary.ProductsSold[item.ProductID] += item.Quantity
		}
	}

	paidCartsCounter.Add(float64(summary.PaidCarts))

	if err := sa.reports.RecordSettlement(ctx, time.Now(), summary); err != nil {
		return domain.SettlementSummary{}, err
	}

	logger.Log.WithFields(logrus.Fields{
		"carts_analyzed": len(carts),
		"paid_carts":     summary.PaidCarts,
		"total_paid":     summary.TotalPaid,
	}).Info("Settlement analysis pass finished")

	return summary, nil
}

// resolvePaymentStatuses returns a paid flag per cart, positionally aligned
// with the input slice.
func (sa *SettlementAnalyzer) resolvePaymentStatuses(ctx context.Context, token string, carts []domain.Cart) []bool {

	paid := make([]bool, len(carts))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentStatusChecks)

	for i, cart := range carts {
		i := i
		cart := cart

		if _, known := sa.paidCarts.Get(cart.ID); known {
			paid[i] = true
			continue
		}

		group.Go(func() error {
			status, err := sa.orders.FetchCartPaymentStatus(groupCtx, token, cart.ID)
			if err != nil {
				// An unresolved status counts as unpaid for this run
				logger.Log.WithFields(logrus.Fields{"error": err, "cart_id": cart.ID}).Error("Payment status lookup failed.  Treating cart as unpaid.")
				return nil
			}

			if status == domain.PaymentStatusPaid {
				paid[i] = true
				sa.paidCarts.Add(cart.ID, struct{}{})
			}

			return nil
		})
	}

	// Worker funcs never return an error, so Wait only collects completion.
	_ = group.Wait()

	return paid
}
