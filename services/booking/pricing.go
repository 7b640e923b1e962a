package booking

import (
	"fmt"
	"time"

	"gigbook/models"
)

// DefaultFeePercent is the platform's share of every booking.
const DefaultFeePercent = 10

// Quote is the charge for one booking request, in currency minor units.
// Amount == PlatformShare + ProviderShare.
type Quote struct {
	Amount        int64
	PlatformShare int64
	ProviderShare int64
	Duration      time.Duration
}

// CalculatePrice prices all slots at hourlyRate (minor units per hour). The
// total is rounded once, half up, and the provider share absorbs the rounding
// of the platform share.
func CalculatePrice(hourlyRate int64, slots []models.BookingSlot, feePercent int64) (Quote, error) {
	if hourlyRate <= 0 {
		return Quote{}, newError(KindInvalidRate, "hourly rate must be greater than zero")
	}
	if feePercent < 0 || feePercent > 100 {
		return Quote{}, fmt.Errorf("platform fee percent %d out of range", feePercent)
	}

	var seconds int64
	var total time.Duration
	for i, slot := range slots {
		d := slot.EndTime.Sub(slot.StartTime)
		if d <= 0 {
			return Quote{}, newError(KindInvalidRange, "slot %d: end time %s must be after start time %s",
				i+1, slot.EndTime.Format(time.RFC3339), slot.StartTime.Format(time.RFC3339))
		}
		total += d
		seconds += int64(d / time.Second)
	}

	amount := roundDiv(hourlyRate*seconds, int64(time.Hour/time.Second))
	if amount <= 0 {
		return Quote{}, newError(KindInvalidRange, "booked time is too short to be charged")
	}
	platform := roundDiv(amount*feePercent, 100)

	return Quote{
		Amount:        amount,
		PlatformShare: platform,
		ProviderShare: amount - platform,
		Duration:      total,
	}, nil
}

// roundDiv divides non-negative a by positive b, rounding half up.
func roundDiv(a, b int64) int64 {
	return (a + b/2) / b
}

func formatMoney(amount int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", amount/100, amount%100, currency)
}
