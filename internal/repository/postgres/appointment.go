package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brightpath/scheduler-api/internal/model"
)

const appointmentColumns = `
	id, patient_name, patient_phone, patient_email,
	appointment_date, appointment_time, duration_minutes,
	clinician, location, address, status,
	visit_request_id, referral_id, reminder_sent,
	created_at, updated_at
`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) *appointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt

	if _, err := r.db.ExecContext(ctx, insertAppointmentQuery, insertAppointmentArgs(apt)...); err != nil {
		return storeError("appointment", err)
	}
	return nil
}

const insertAppointmentQuery = `
	INSERT INTO appointments (
		id, patient_name, patient_phone, patient_email,
		appointment_date, appointment_time, duration_minutes,
		clinician, location, address, status,
		visit_request_id, referral_id, reminder_sent,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
`

func insertAppointmentArgs(apt *model.Appointment) []interface{} {
	return []interface{}{
		apt.ID,
		apt.PatientName,
		apt.PatientPhone,
		apt.PatientEmail,
		apt.AppointmentDate,
		apt.AppointmentTime,
		apt.DurationMinutes,
		apt.Clinician,
		apt.Location,
		apt.Address,
		apt.Status,
		apt.VisitRequestID,
		apt.ReferralID,
		apt.ReminderSent,
		apt.CreatedAt,
		apt.UpdatedAt,
	}
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, storeError("appointment", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_name = $1, patient_phone = $2, patient_email = $3,
			appointment_date = $4, appointment_time = $5, duration_minutes = $6,
			clinician = $7, location = $8, address = $9, updated_at = $10
		WHERE id = $11
	`
	apt.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		apt.PatientName,
		apt.PatientPhone,
		apt.PatientEmail,
		apt.AppointmentDate,
		apt.AppointmentTime,
		apt.DurationMinutes,
		apt.Clinician,
		apt.Location,
		apt.Address,
		apt.UpdatedAt,
		apt.ID,
	)
	if err != nil {
		return storeError("appointment", err)
	}
	return requireRow(result, "appointment")
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return storeError("appointment", err)
	}
	return requireRow(result, "appointment")
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Clinician != "" {
			query += fmt.Sprintf(" AND clinician = $%d", argCount)
			args = append(args, filters.Clinician)
			argCount++
		}
		if !filters.Date.IsZero() {
			query += fmt.Sprintf(" AND appointment_date = $%d", argCount)
			args = append(args, filters.Date)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
	}

	query += " ORDER BY appointment_date, appointment_time"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, storeError("appointment", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListActiveForClinicianDay(ctx context.Context, clinician string, date time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE clinician = $1
		AND appointment_date = $2
		AND status = $3
		ORDER BY appointment_time
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, clinician, date, model.AppointmentStatusScheduled)
	if err != nil {
		return nil, storeError("appointment", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + appointmentColumns

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, status, time.Now(), id); err != nil {
		return nil, storeError("appointment", err)
	}
	return &apt, nil
}

// CreateForSubmission inserts the appointment and flips the submission to
// scheduled in one transaction, so a failure on either side leaves both
// records unchanged.
func (r *appointmentRepository) CreateForSubmission(ctx context.Context, apt *model.Appointment, subID uuid.UUID, subType model.SubmissionType) error {
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, insertAppointmentQuery, insertAppointmentArgs(apt)...); err != nil {
			return storeError("appointment", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE submissions SET status = $1, updated_at = $2 WHERE id = $3 AND type = $4`,
			model.SubmissionStatusScheduled, time.Now(), subID, subType,
		)
		if err != nil {
			return storeError("submission", err)
		}
		return requireRow(result, "submission")
	})
}

func (r *appointmentRepository) ListReminderCandidates(ctx context.Context, from time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE status = $1
		AND reminder_sent = FALSE
		AND appointment_date >= $2
		ORDER BY appointment_date, appointment_time
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, model.AppointmentStatusScheduled, from)
	if err != nil {
		return nil, storeError("appointment", err)
	}
	return appointments, nil
}

// ClaimReminder is the compare-and-set that makes reminders at-most-once:
// the WHERE clause only matches rows still unflagged, so of any number of
// overlapping scans exactly one sees RowsAffected = 1.
func (r *appointmentRepository) ClaimReminder(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET reminder_sent = TRUE, updated_at = $1 WHERE id = $2 AND reminder_sent = FALSE`,
		time.Now(), id,
	)
	if err != nil {
		return false, storeError("appointment", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, storeError("appointment", err)
	}
	return rows == 1, nil
}

func (r *appointmentRepository) ClearReminderFlag(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET reminder_sent = FALSE, updated_at = $1 WHERE id = $2`,
		time.Now(), id,
	)
	if err != nil {
		return storeError("appointment", err)
	}
	return nil
}
