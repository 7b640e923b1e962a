package models

import "time"

type PaymentStatus string

const (
	PaymentHeld      PaymentStatus = "HELD"
	PaymentRequested PaymentStatus = "REQUESTED"
	PaymentReleased  PaymentStatus = "RELEASED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Terminal reports whether no further transition may leave s.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentReleased || s == PaymentRefunded
}

// Payment is the escrow ledger entry. Amounts are in currency minor units and
// Amount == PlatformShare + ProviderShare always holds.
type Payment struct {
	ID                         string        `bson:"id" json:"id"`
	CustomerID                 string        `bson:"customerId" json:"customerId"`
	ProviderID                 string        `bson:"providerId" json:"providerId"`
	Amount                     int64         `bson:"amount" json:"amount"`
	Currency                   string        `bson:"currency" json:"currency"`
	PlatformShare              int64         `bson:"platformTotalAmount" json:"platformShare"`
	ProviderShare              int64         `bson:"providerTotalAmount" json:"providerShare"`
	Status                     PaymentStatus `bson:"status" json:"status"`
	PaymentIntentID            string        `bson:"paymentIntentId" json:"paymentIntentId"`
	ChargeID                   string        `bson:"chargeId,omitempty" json:"chargeId,omitempty"`
	ProviderTransferID         *string       `bson:"providerTransferId" json:"providerTransferId"`
	ProviderTransferReversedID *string       `bson:"providerTransferReversedId" json:"providerTransferReversedId"`
	BookingIDs                 []string      `bson:"bookingIds" json:"bookingIds"`
	CreatedAt                  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt                  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// PaymentUpdate carries the optional fields written together with a status transition.
type PaymentUpdate struct {
	ProviderTransferID         *string
	ProviderTransferReversedID *string
}

// PaymentSummary is the client-facing view of a payment.
type PaymentSummary struct {
	ID              string        `json:"id"`
	Status          PaymentStatus `json:"status"`
	Currency        string        `json:"currency"`
	TotalAmount     int64         `json:"totalAmount"`
	PlatformShare   int64         `json:"platformShare"`
	ProviderShare   int64         `json:"providerShare"`
	PaymentIntentID string        `json:"paymentIntentId"`
}

func (p *Payment) Summary() PaymentSummary {
	return PaymentSummary{
		ID:              p.ID,
		Status:          p.Status,
		Currency:        p.Currency,
		TotalAmount:     p.Amount,
		PlatformShare:   p.PlatformShare,
		ProviderShare:   p.ProviderShare,
		PaymentIntentID: p.PaymentIntentID,
	}
}

// ReleaseResult is returned by the release transition; repeated calls return the same transfer.
type ReleaseResult struct {
	PaymentID       string `json:"paymentId"`
	TransferID      string `json:"transferId"`
	Amount          int64  `json:"amount"`
	AlreadyReleased bool   `json:"alreadyReleased"`
	Message         string `json:"message"`
}

// PaymentDetails groups a payment with the bookings it owns.
type PaymentDetails struct {
	PaymentID     string        `json:"paymentId"`
	Status        PaymentStatus `json:"status"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	CustomerID    string        `json:"customerId"`
	ProviderID    string        `json:"providerId"`
	PlatformShare int64         `json:"platformTotalAmount,omitempty"`
	ProviderShare int64         `json:"providerTotalAmount,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	Bookings      []Booking     `json:"bookings"`
}
