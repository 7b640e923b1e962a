package directoryRepo

import (
	"context"

	"gigbook/models"
)

// ProviderDirectory is the read-only view of the profile service the booking core needs.
type ProviderDirectory interface {
	GetOffering(ctx context.Context, ref models.OfferingRef) (*models.Offering, error)
	// GetPayoutDestination returns "" when the provider has no linked payout account.
	GetPayoutDestination(ctx context.Context, providerID string) (string, error)
}

// UserDirectory reads customers and records their gateway customer id.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	SetGatewayCustomerID(ctx context.Context, userID, customerID string) error
}
