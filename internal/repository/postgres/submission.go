package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brightpath/scheduler-api/internal/model"
)

const submissionColumns = `
	id, type, patient_name, patient_phone, patient_email,
	referrer_name, notes, status, created_at, updated_at
`

type submissionRepository struct {
	BaseRepository
}

func NewSubmissionRepository(db *sqlx.DB) *submissionRepository {
	return &submissionRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *submissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	query := `
		INSERT INTO submissions (
			id, type, patient_name, patient_phone, patient_email,
			referrer_name, notes, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	sub.ID = uuid.New()
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt
	if sub.Status == "" {
		sub.Status = model.SubmissionStatusPending
	}

	_, err := r.db.ExecContext(ctx, query,
		sub.ID,
		sub.Type,
		sub.PatientName,
		sub.PatientPhone,
		sub.PatientEmail,
		sub.ReferrerName,
		sub.Notes,
		sub.Status,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return storeError("submission", err)
	}
	return nil
}

func (r *submissionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	var sub model.Submission
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, storeError("submission", err)
	}
	return &sub, nil
}

func (r *submissionRepository) List(ctx context.Context, subType model.SubmissionType, status model.SubmissionStatus) ([]*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if subType != "" {
		query += fmt.Sprintf(" AND type = $%d", argCount)
		args = append(args, subType)
		argCount++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, status)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	var subs []*model.Submission
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, storeError("submission", err)
	}
	return subs, nil
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SubmissionStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	if err != nil {
		return storeError("submission", err)
	}
	return requireRow(result, "submission")
}

// Delete removes the submission; the appointment foreign keys are declared
// ON DELETE CASCADE, so a linked appointment goes with it.
func (r *submissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return storeError("submission", err)
	}
	return requireRow(result, "submission")
}
