package encounter

import (
	"context"
	"strings"

	"github.com/gyeh/chargeflow/internal/normalize"
	"github.com/gyeh/chargeflow/internal/tebra"
)

// ChargeTotal sums the charge lines that belong to one encounter. The
// charges query cannot filter by encounter, so it is narrowed by practice,
// service date and one procedure code, and the returned lines are matched
// locally on patient and encounter id. found is false when no line matched.
func ChargeTotal(charges []tebra.Charge, patientID int64, encounterID string) (cents int64, found bool) {
	for _, c := range charges {
		if strings.TrimSpace(c.EncounterID) != encounterID {
			continue
		}
		if pid, err := normalize.ParseID(c.PatientID); err != nil || pid != patientID {
			continue
		}
		v, err := normalize.ParseAmountCents(c.TotalCharges)
		if err != nil {
			continue
		}
		cents += v
		found = true
	}
	return cents, found
}

func (b *Builder) fetchChargeAmount(ctx context.Context, filter tebra.ChargeFilter, patientID int64, encounterID string) (string, error) {
	charges, err := b.gw.GetCharges(ctx, filter)
	if err != nil {
		return "", err
	}
	cents, found := ChargeTotal(charges, patientID, encounterID)
	if !found {
		b.log.Warn().Str("encounter_id", encounterID).Int("lines", len(charges)).Msg("no charge lines matched encounter, defaulting to 0.00")
		return "0.00", nil
	}
	return normalize.FormatCents(cents), nil
}
