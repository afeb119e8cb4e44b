package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/scheduler-api/internal/model"
)

type AppointmentRepository interface {
	Create(ctx context.Context, apt *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, apt *model.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)

	// ListActiveForClinicianDay returns the scheduled appointments for one
	// clinician on one calendar date, the working set of the conflict checker.
	ListActiveForClinicianDay(ctx context.Context, clinician string, date time.Time) ([]*model.Appointment, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)

	// CreateForSubmission inserts the appointment and marks the linked
	// submission scheduled in a single transaction.
	CreateForSubmission(ctx context.Context, apt *model.Appointment, subID uuid.UUID, subType model.SubmissionType) error

	// ListReminderCandidates returns scheduled appointments on or after the
	// given date whose reminder has not been sent.
	ListReminderCandidates(ctx context.Context, from time.Time) ([]*model.Appointment, error)

	// ClaimReminder conditionally sets reminder_sent, returning true only
	// for the caller that flipped it. Concurrent scans race here; exactly
	// one wins.
	ClaimReminder(ctx context.Context, id uuid.UUID) (bool, error)

	// ClearReminderFlag releases a claim whose send failed so the next scan
	// retries the appointment.
	ClearReminderFlag(ctx context.Context, id uuid.UUID) error
}

type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	Get(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	List(ctx context.Context, subType model.SubmissionType, status model.SubmissionStatus) ([]*model.Submission, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SubmissionStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsRepository is the generic key/value configuration store the
// reminder scan reads at the start of each run.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
