package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/brightpath/scheduler-api/internal/model"
	apperrors "github.com/brightpath/scheduler-api/pkg/errors"
)

// Working day bounds for availability listings, minutes from midnight.
const (
	dayStartMinutes = 8 * 60
	dayEndMinutes   = 18 * 60

	DefaultSlotMinutes = 60
)

// AvailableSlots lists the free slots of slotMinutes duration in a
// clinician's working day, skipping any that overlap a scheduled
// appointment.
func (s *Service) AvailableSlots(ctx context.Context, clinician string, date time.Time, slotMinutes int) ([]model.TimeSlot, error) {
	if slotMinutes <= 0 {
		return nil, apperrors.NewValidation("slot duration must be positive", nil)
	}

	booked, err := s.repo.ListActiveForClinicianDay(ctx, clinician, date)
	if err != nil {
		return nil, err
	}

	type interval struct{ start, end int }
	var taken []interval
	for _, apt := range booked {
		aStart, aEnd, err := apt.Interval()
		if err != nil {
			continue
		}
		taken = append(taken, interval{aStart, aEnd})
	}

	var slots []model.TimeSlot
	for start := dayStartMinutes; start+slotMinutes <= dayEndMinutes; start += slotMinutes {
		end := start + slotMinutes
		free := true
		for _, iv := range taken {
			if overlaps(start, end, iv.start, iv.end) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, model.TimeSlot{
				Start: formatMinutes(start),
				End:   formatMinutes(end),
			})
		}
	}
	return slots, nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
