package sync

import (
	"context"
	"strings"

	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"
	"github.com/marketpulse/reporting-gateway/internal/reporting"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	sellerRole   = "seller"
	customerRole = "customer"
)

// IdentityGateway is the slice of the auth service consumed by roster
// synchronization.
type IdentityGateway interface {
	FetchUsers(ctx context.Context, token string) ([]domain.User, error)
}

// RosterSummary reports the outcome of one roster synchronization pass.
type RosterSummary struct {
	SellersUpserted   int
	CustomersUpserted int
	RecordsSkipped    int
}

// RosterSynchronizer mirrors the upstream user roster into the local seller
// and customer tables.  Role matching is case-insensitive and a user may be
// written to both tables when it carries both roles.
type RosterSynchronizer struct {
	identity  IdentityGateway
	sellers   reporting.SellerRepository
	customers reporting.CustomerRepository
}

func NewRosterSynchronizer(identity IdentityGateway, sellers reporting.SellerRepository, customers reporting.CustomerRepository) *RosterSynchronizer {
	return &RosterSynchronizer{
		identity:  identity,
		sellers:   sellers,
		customers: customers,
	}
}

func (rs *RosterSynchronizer) Synchronize(ctx context.Context, token string) (RosterSummary, error) {

	callDurationTimer := prometheus.NewTimer(rosterSyncDuration)
	defer callDurationTimer.ObserveDuration()

	users, err := rs.identity.FetchUsers(ctx, token)
	if err != nil {
		return RosterSummary{}, err
	}

	var summary RosterSummary

	for _, user := range users {

		if user.ID == "" {
			logger.Log.Warn("Skipping roster record without an id")
			summary.RecordsSkipped++
			continue
		}

		isSeller, isCustomer := classifyRoles(user.Roles)

		if !isSeller && !isCustomer {
			summary.RecordsSkipped++
			continue
		}

		// A failed upsert only aborts that record
		if isSeller {
			if err := rs.sellers.UpsertSeller(ctx, user.ID); err != nil {
				logger.Log.WithFields(logrus.Fields{"error": err, "user_id": user.ID}).Error("Seller upsert failed.  Skipping record.")
				summary.RecordsSkipped++
			} else {
				summary.SellersUpserted++
			}
		}

		if isCustomer {
			customer := domain.Customer{CustomerID: user.ID, CreatedAt: user.CreatedAt}
			if err := rs.customers.UpsertCustomer(ctx, customer); err != nil {
				logger.Log.WithFields(logrus.Fields{"error": err, "user_id": user.ID}).Error("Customer upsert failed.  Skipping record.")
				summary.RecordsSkipped++
			} else {
				summary.CustomersUpserted++
			}
		}
	}

	rosterRecordsCounter.WithLabelValues("seller").Add(float64(summary.SellersUpserted))
	rosterRecordsCounter.WithLabelValues("customer").Add(float64(summary.CustomersUpserted))

	logger.Log.WithFields(logrus.Fields{
		"sellers_upserted":   summary.SellersUpserted,
		"customers_upserted": summary.CustomersUpserted,
		"records_skipped":    summary.RecordsSkipped,
	}).Info("Roster synchronization pass finished")

	return summary, nil
}

func classifyRoles(roles []string) (isSeller bool, isCustomer bool) {
	for _, role := range roles {
		switch strings.ToLower(strings.TrimSpace(role)) {
		case sellerRole:
			isSeller = true
		case customerRole:
			isCustomer = true
		}
	}
	return isSeller, isCustomer
}
