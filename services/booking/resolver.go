package booking

import (
	"context"
	"math"
	"strings"

	"gigbook/models"
)

// SelectorOf reads the offering selector of a booking request. Exactly one of
// the tagged reference and the three legacy id fields must be present.
func SelectorOf(req *models.BookingRequest) (models.OfferingRef, error) {
	var refs []models.OfferingRef
	if req.Offering != nil {
		ref := models.OfferingRef{
			Kind: models.OfferingKind(strings.ToUpper(string(req.Offering.Kind))),
			ID:   strings.TrimSpace(req.Offering.ID),
		}
		if !ref.Kind.Valid() {
			return models.OfferingRef{}, newError(KindInvalidRequest, "unknown offering kind %q", req.Offering.Kind)
		}
		refs = append(refs, ref)
	}
	for kind, id := range map[models.OfferingKind]string{
		models.OfferingMusician:   req.MusicianID,
		models.OfferingVocalist:   req.VocalistID,
		models.OfferingInstrument: req.InstrumentID,
	} {
		if id = strings.TrimSpace(id); id != "" {
			refs = append(refs, models.OfferingRef{Kind: kind, ID: id})
		}
	}

	switch {
	case len(refs) == 0:
		return models.OfferingRef{}, newError(KindInvalidRequest, "one of musician, vocalist or instrument must be selected")
	case len(refs) > 1:
		return models.OfferingRef{}, newError(KindInvalidRequest, "only one of musician, vocalist or instrument may be selected")
	case refs[0].ID == "":
		return models.OfferingRef{}, newError(KindInvalidRequest, "offering id is required")
	}
	return refs[0], nil
}

// ResolveOffering loads the offering into the shape the rest of the workflow uses.
func (s *DefaultEscrowService) ResolveOffering(ctx context.Context, ref models.OfferingRef) (*models.ResolvedOffering, error) {
	off, err := s.Directory.GetOffering(ctx, ref)
	if err != nil {
		return nil, fromRepo(err, "%s", ref)
	}

	rate, err := toMinorUnits(off.HourlyRate)
	if err != nil {
		return nil, err
	}

	days := make(map[string]bool, len(off.WeeklyAvailability))
	for _, d := range off.WeeklyAvailability {
		days[strings.ToUpper(strings.TrimSpace(d))] = true
	}

	return &models.ResolvedOffering{
		Ref:          ref,
		ProviderID:   off.ProviderID,
		HourlyRate:   rate,
		Availability: days,
	}, nil
}

// toMinorUnits converts a decimal rate to cents, rounding half up.
func toMinorUnits(rate float64) (int64, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0, newError(KindInvalidRate, "hourly rate must be greater than zero, got %v", rate)
	}
	cents := int64(math.Round(rate * 100))
	if cents <= 0 {
		return 0, newError(KindInvalidRate, "hourly rate %v is below the smallest currency unit", rate)
	}
	return cents, nil
}
