package booking

import (
	"context"
	"strings"
	"time"

	"gigbook/models"
)

// PlannedSlot is a requested slot after validation, ready to be persisted.
type PlannedSlot struct {
	BookDate  time.Time
	StartTime time.Time
	EndTime   time.Time
	Weekday   string
}

const (
	dayLayout  = "2006-01-02"
	timeLayout = "2006-01-02 15:04"
)

// ValidateSlots checks slots in request order. Each slot must have a positive
// range, fall on an available weekday, miss the earlier slots of the request
// and miss the stored bookings before the next slot is looked at. The first
// failure aborts the whole request.
func (s *DefaultEscrowService) ValidateSlots(ctx context.Context, off *models.ResolvedOffering, slots []models.BookingSlot) ([]PlannedSlot, error) {
	if len(slots) == 0 {
		return nil, newError(KindInvalidRequest, "at least one booking slot is required")
	}

	planned := make([]PlannedSlot, 0, len(slots))
	for i, slot := range slots {
		if !slot.EndTime.After(slot.StartTime) {
			return nil, newError(KindInvalidRange, "slot %d ends at or before its start", i+1)
		}
		day, err := parseBookDate(slot.BookDate, s.location())
		if err != nil {
			return nil, err
		}
		weekday := strings.ToUpper(day.Weekday().String())
		if !off.AvailableOn(weekday) {
			return nil, newError(KindProviderUnavailable, "%s is not available on %s (%s)", off.Ref, weekday, day.Format(dayLayout))
		}

		p := PlannedSlot{
			BookDate:  day,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Weekday:   weekday,
		}
		for j, prev := range planned {
			if overlaps(prev.StartTime, prev.EndTime, p.StartTime, p.EndTime) {
				return nil, newError(KindSlotConflict, "slot %d (%s) overlaps slot %d (%s) of the same request",
					i+1, s.formatRange(p.StartTime, p.EndTime), j+1, s.formatRange(prev.StartTime, prev.EndTime))
			}
		}
		if err := s.checkStoredOverlap(ctx, off.Ref, p); err != nil {
			return nil, err
		}
		planned = append(planned, p)
	}
	return planned, nil
}

// checkStoredOverlaps repeats the stored-booking check for a validated plan.
// The orchestrator runs it again inside the booking transaction.
func (s *DefaultEscrowService) checkStoredOverlaps(ctx context.Context, ref models.OfferingRef, planned []PlannedSlot) error {
	for _, p := range planned {
		if err := s.checkStoredOverlap(ctx, ref, p); err != nil {
			return err
		}
	}
	return nil
}

// checkStoredOverlap fails when p intersects a non-cancelled booking.
func (s *DefaultEscrowService) checkStoredOverlap(ctx context.Context, ref models.OfferingRef, p PlannedSlot) error {
	existing, err := s.Bookings.FindOverlapping(ctx, ref, p.StartTime, p.EndTime)
	if err != nil {
		return fromRepo(err, "bookings of %s", ref)
	}
	if existing != nil {
		return newError(KindSlotConflict, "%s is already booked from %s, requested %s",
			ref, s.formatRange(existing.StartTime, existing.EndTime), s.formatRange(p.StartTime, p.EndTime))
	}
	return nil
}

// overlaps uses open intervals: ranges that only touch do not conflict.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

func (s *DefaultEscrowService) formatRange(start, end time.Time) string {
	loc := s.location()
	return start.In(loc).Format(timeLayout) + " to " + end.In(loc).Format(timeLayout)
}

// parseBookDate accepts a calendar date or a full timestamp and returns the
// date at midnight in loc.
func parseBookDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if d, err := time.ParseInLocation(dayLayout, value, loc); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, wrapError(KindInvalidRequest, err, "invalid bookDate %q", value)
	}
	ts = ts.In(loc)
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc), nil
}
