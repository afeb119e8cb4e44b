package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/scheduler-api/internal/model"
	apperrors "github.com/brightpath/scheduler-api/pkg/errors"
)

// ConflictError names the colliding appointment so the operator can pick a
// different slot.
type ConflictError struct {
	Conflicting *model.Appointment
}

func (e *ConflictError) Error() string {
	c := e.Conflicting
	return fmt.Sprintf("slot conflicts with appointment %s for %s on %s at %s (%d min)",
		c.ID, c.Clinician, c.AppointmentDate.Format("2006-01-02"), c.AppointmentTime, c.DurationMinutes)
}

// ConflictCheck is a candidate slot to test against a clinician's day.
type ConflictCheck struct {
	Clinician       string
	Date            time.Time
	StartTime       string
	DurationMinutes int

	// ExcludeID skips one appointment, used when re-saving an edit against
	// itself.
	ExcludeID *uuid.UUID
}

// overlaps reports whether two half-open intervals intersect. Back-to-back
// intervals (e1 == s2) do not.
func overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// CheckConflict returns the first scheduled appointment on the same
// clinician's day whose interval overlaps the candidate, or nil. Cancelled,
// completed and no-show appointments never block a slot.
func (s *Service) CheckConflict(ctx context.Context, check ConflictCheck) (*model.Appointment, error) {
	start, err := model.ParseTimeOfDay(check.StartTime)
	if err != nil {
		return nil, apperrors.NewValidation("invalid start time", err)
	}
	end := start + check.DurationMinutes

	existing, err := s.repo.ListActiveForClinicianDay(ctx, check.Clinician, check.Date)
	if err != nil {
		return nil, err
	}

	for _, apt := range existing {
		if check.ExcludeID != nil && apt.ID == *check.ExcludeID {
			continue
		}
		aStart, aEnd, err := apt.Interval()
		if err != nil {
			// a stored appointment with an unparseable time should block
			// nothing but must be visible in logs
			s.logger.ZL.Warn().Err(err).Str("appointment_id", apt.ID.String()).Msg("skipping appointment with bad time")
			continue
		}
		if overlaps(start, end, aStart, aEnd) {
			return apt, nil
		}
	}
	return nil, nil
}
