package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/scheduler-api/internal/model"
	"github.com/brightpath/scheduler-api/internal/repository"
	"github.com/brightpath/scheduler-api/internal/service/notification"
	apperrors "github.com/brightpath/scheduler-api/pkg/errors"
	"github.com/brightpath/scheduler-api/pkg/logger"
	"github.com/brightpath/scheduler-api/pkg/messaging"
)

type Service struct {
	repo        repository.AppointmentRepository
	submissions repository.SubmissionRepository
	notifier    notification.Service
	broker      messaging.Broker
	logger      *logger.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	submissions repository.SubmissionRepository,
	notifier notification.Service,
	broker messaging.Broker,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		submissions: submissions,
		notifier:    notifier,
		broker:      broker,
		logger:      logger,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	apt, err := appointmentFromCreate(req)
	if err != nil {
		return nil, err
	}

	conflicting, err := s.CheckConflict(ctx, ConflictCheck{
		Clinician:       apt.Clinician,
		Date:            apt.AppointmentDate,
		StartTime:       apt.AppointmentTime,
		DurationMinutes: apt.DurationMinutes,
	})
	if err != nil {
		return nil, err
	}
	if conflicting != nil {
		return nil, &ConflictError{Conflicting: conflicting}
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, err
	}

	s.notify(ctx, apt, notification.EventConfirmation)
	s.publish(ctx, messaging.EventAppointmentCreated, apt)
	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}

// Update applies a partial edit. Any change touching clinician, date, time
// or duration re-runs the conflict check against the (possibly new)
// clinician's schedule, excluding the appointment's own prior slot.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	slotChanged := applyUpdate(apt, req)
	if err := validateAppointment(apt); err != nil {
		return nil, err
	}

	if slotChanged {
		conflicting, err := s.CheckConflict(ctx, ConflictCheck{
			Clinician:       apt.Clinician,
			Date:            apt.AppointmentDate,
			StartTime:       apt.AppointmentTime,
			DurationMinutes: apt.DurationMinutes,
			ExcludeID:       &apt.ID,
		})
		if err != nil {
			return nil, err
		}
		if conflicting != nil {
			return nil, &ConflictError{Conflicting: conflicting}
		}
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, err
	}

	if slotChanged {
		s.notify(ctx, apt, notification.EventUpdate)
	}
	return apt, nil
}

// Delete removes an appointment directly; only cancelled appointments may
// go this way. Everything else disappears only as a cascade of deleting
// its linked submission.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if apt.Status != model.AppointmentStatusCancelled {
		return apperrors.NewValidation("only cancelled appointments can be deleted", nil)
	}
	return s.repo.Delete(ctx, id)
}

// Transition moves an appointment to a new status. Any-to-any transitions
// within the status set are allowed; real-world corrections (a completed
// visit later marked no_show) need that freedom. The linked submission, if
// any, is mirrored best-effort.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, newStatus model.AppointmentStatus) (*model.Appointment, error) {
	if !model.ValidAppointmentStatus(newStatus) {
		return nil, apperrors.NewValidation(fmt.Sprintf("invalid status %q", newStatus), nil)
	}

	apt, err := s.repo.UpdateStatus(ctx, id, newStatus)
	if err != nil {
		return nil, err
	}

	if subID, _, ok := apt.Submission(); ok {
		if mirrored, ok := MirrorStatus(newStatus); ok {
			if err := s.submissions.UpdateStatus(ctx, subID, mirrored); err != nil {
				s.logger.ZL.Warn().Err(err).
					Str("appointment_id", apt.ID.String()).
					Str("submission_id", subID.String()).
					Msg("failed to mirror status to submission")
			}
		}
	}

	s.publish(ctx, messaging.EventStatusChanged, apt)
	return apt, nil
}

// ScheduleFromSubmission is the only path by which a submission reaches
// scheduled: conflict check, then appointment insert plus submission status
// flip in one transaction. On any failure the submission is untouched and
// the caller gets the draft back for correction.
func (s *Service) ScheduleFromSubmission(ctx context.Context, subID uuid.UUID, subType model.SubmissionType, draft *model.ScheduleSubmissionRequest) (*model.Appointment, error) {
	if !model.ValidSubmissionType(subType) {
		return nil, apperrors.NewValidation(fmt.Sprintf("invalid submission type %q", subType), nil)
	}

	sub, err := s.submissions.Get(ctx, subID)
	if err != nil {
		return nil, err
	}
	if sub.Type != subType {
		return nil, apperrors.NewNotFound("submission", nil)
	}
	if sub.Status == model.SubmissionStatusScheduled {
		return nil, apperrors.NewValidation("submission is already scheduled", nil)
	}

	apt, err := appointmentFromDraft(sub, draft)
	if err != nil {
		return nil, err
	}

	conflicting, err := s.CheckConflict(ctx, ConflictCheck{
		Clinician:       apt.Clinician,
		Date:            apt.AppointmentDate,
		StartTime:       apt.AppointmentTime,
		DurationMinutes: apt.DurationMinutes,
	})
	if err != nil {
		return nil, err
	}
	if conflicting != nil {
		return nil, &ConflictError{Conflicting: conflicting}
	}

	if err := s.repo.CreateForSubmission(ctx, apt, subID, subType); err != nil {
		return nil, err
	}

	s.notify(ctx, apt, notification.EventConfirmation)
	s.publish(ctx, messaging.EventAppointmentCreated, apt)
	return apt, nil
}

func (s *Service) notify(ctx context.Context, apt *model.Appointment, event notification.Event) {
	if _, err := s.notifier.NotifyAppointment(ctx, apt, event); err != nil {
		s.logger.ZL.Warn().Err(err).
			Str("appointment_id", apt.ID.String()).
			Str("event", string(event)).
			Msg("failed to send appointment notification")
	}
}

func (s *Service) publish(ctx context.Context, eventType string, apt *model.Appointment) {
	if s.broker == nil {
		return
	}
	evt := messaging.Event{Type: eventType, Payload: apt}
	if err := s.broker.Publish(ctx, messaging.ChannelAppointments, evt); err != nil {
		s.logger.ZL.Warn().Err(err).Str("event", eventType).Msg("failed to publish appointment event")
	}
}

func appointmentFromCreate(req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	date, err := parseDate(req.AppointmentDate)
	if err != nil {
		return nil, err
	}
	apt := &model.Appointment{
		PatientName:     req.PatientName,
		PatientPhone:    req.PatientPhone,
		PatientEmail:    req.PatientEmail,
		AppointmentDate: date,
		AppointmentTime: req.AppointmentTime,
		DurationMinutes: req.DurationMinutes,
		Clinician:       req.Clinician,
		Location:        req.Location,
		Address:         req.Address,
		Status:          model.AppointmentStatusScheduled,
	}
	if err := validateAppointment(apt); err != nil {
		return nil, err
	}
	return apt, nil
}

func appointmentFromDraft(sub *model.Submission, draft *model.ScheduleSubmissionRequest) (*model.Appointment, error) {
	date, err := parseDate(draft.AppointmentDate)
	if err != nil {
		return nil, err
	}
	apt := &model.Appointment{
		PatientName:     sub.PatientName,
		PatientPhone:    sub.PatientPhone,
		PatientEmail:    sub.PatientEmail,
		AppointmentDate: date,
		AppointmentTime: draft.AppointmentTime,
		DurationMinutes: draft.DurationMinutes,
		Clinician:       draft.Clinician,
		Location:        draft.Location,
		Address:         draft.Address,
		Status:          model.AppointmentStatusScheduled,
	}
	switch sub.Type {
	case model.SubmissionTypeVisitRequest:
		apt.VisitRequestID = &sub.ID
	case model.SubmissionTypeReferral:
		apt.ReferralID = &sub.ID
	}
	if err := validateAppointment(apt); err != nil {
		return nil, err
	}
	return apt, nil
}

func applyUpdate(apt *model.Appointment, req *model.UpdateAppointmentRequest) (slotChanged bool) {
	if req.PatientName != nil {
		apt.PatientName = *req.PatientName
	}
	if req.PatientPhone != nil {
		apt.PatientPhone = *req.PatientPhone
	}
	if req.PatientEmail != nil {
		apt.PatientEmail = *req.PatientEmail
	}
	if req.AppointmentDate != nil {
		if date, err := parseDate(*req.AppointmentDate); err == nil && !date.Equal(apt.AppointmentDate) {
			apt.AppointmentDate = date
			slotChanged = true
		}
	}
	if req.AppointmentTime != nil && *req.AppointmentTime != apt.AppointmentTime {
		apt.AppointmentTime = *req.AppointmentTime
		slotChanged = true
	}
	if req.DurationMinutes != nil && *req.DurationMinutes != apt.DurationMinutes {
		apt.DurationMinutes = *req.DurationMinutes
		slotChanged = true
	}
	if req.Clinician != nil && *req.Clinician != apt.Clinician {
		apt.Clinician = *req.Clinician
		slotChanged = true
	}
	if req.Location != nil {
		apt.Location = *req.Location
	}
	if req.Address != nil {
		apt.Address = *req.Address
	}
	return slotChanged
}

func validateAppointment(apt *model.Appointment) error {
	if _, err := model.ParseTimeOfDay(apt.AppointmentTime); err != nil {
		return apperrors.NewValidation("invalid appointment time", err)
	}
	if apt.DurationMinutes <= 0 {
		return apperrors.NewValidation("duration must be positive", nil)
	}
	if apt.Location == model.LocationInHome && apt.Address == "" {
		return apperrors.NewValidation("address is required for in-home appointments", nil)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperrors.NewValidation("invalid appointment date", err)
	}
	return date, nil
}
