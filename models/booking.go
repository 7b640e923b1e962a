package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// BookingSlot is one date and time range requested by the customer.
type BookingSlot struct {
	BookDate  string    `json:"bookDate" binding:"required"`  // "2006-01-02" or RFC3339
	StartTime time.Time `json:"startTime" binding:"required"` // RFC3339
	EndTime   time.Time `json:"endTime" binding:"required"`   // RFC3339
}

// Booking is a persisted booking owned by exactly one Payment.
// Exactly one of MusicianID, VocalistID and InstrumentID is set.
type Booking struct {
	ID           string        `bson:"id" json:"id"`
	CustomerID   string        `bson:"userId" json:"userId"`
	PaymentID    string        `bson:"paymentId" json:"paymentId"`
	MusicianID   string        `bson:"musicianId,omitempty" json:"musicianId,omitempty"`
	VocalistID   string        `bson:"vocalistId,omitempty" json:"vocalistId,omitempty"`
	InstrumentID string        `bson:"instrumentId,omitempty" json:"instrumentId,omitempty"`
	BookDate     time.Time     `bson:"bookDate" json:"bookDate"`
	StartTime    time.Time     `bson:"startTime" json:"startTime"`
	EndTime      time.Time     `bson:"endTime" json:"endTime"`
	Status       BookingStatus `bson:"status" json:"status"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// SetOffering stores ref in the matching reference field and clears the other two.
func (b *Booking) SetOffering(ref OfferingRef) {
	b.MusicianID, b.VocalistID, b.InstrumentID = "", "", ""
	switch ref.Kind {
	case OfferingMusician:
		b.MusicianID = ref.ID
	case OfferingVocalist:
		b.VocalistID = ref.ID
	case OfferingInstrument:
		b.InstrumentID = ref.ID
	}
}

// Offering returns the booked offering reference.
func (b *Booking) Offering() OfferingRef {
	switch {
	case b.MusicianID != "":
		return OfferingRef{Kind: OfferingMusician, ID: b.MusicianID}
	case b.VocalistID != "":
		return OfferingRef{Kind: OfferingVocalist, ID: b.VocalistID}
	default:
		return OfferingRef{Kind: OfferingInstrument, ID: b.InstrumentID}
	}
}

// Overlaps uses open-interval semantics: touching endpoints do not conflict.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// BookingRequest is the body of POST /booking.
// The offering may be given as a tagged reference or through one of the legacy id fields.
type BookingRequest struct {
	Offering        *OfferingRef  `json:"offering,omitempty"`
	MusicianID      string        `json:"musicianId,omitempty"`
	VocalistID      string        `json:"vocalistId,omitempty"`
	InstrumentID    string        `json:"instrumentId,omitempty"`
	Currency        string        `json:"currency" binding:"omitempty,len=3,alpha"`
	PaymentMethodID string        `json:"paymentMethodId" binding:"required"`
	Slots           []BookingSlot `json:"bookings" binding:"required,min=1,dive"`

	// IdempotencyKey keys the gateway capture; taken from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

// BookingResult is returned after funds are captured and the bookings are recorded.
type BookingResult struct {
	Payment  PaymentSummary `json:"payment"`
	Bookings []Booking      `json:"bookings"`
}
