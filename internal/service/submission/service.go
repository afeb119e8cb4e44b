package submission

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brightpath/scheduler-api/internal/model"
	"github.com/brightpath/scheduler-api/internal/repository"
	apperrors "github.com/brightpath/scheduler-api/pkg/errors"
	"github.com/brightpath/scheduler-api/pkg/logger"
)

type Service struct {
	repo   repository.SubmissionRepository
	logger *logger.Logger
}

func NewService(repo repository.SubmissionRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, req *model.CreateSubmissionRequest) (*model.Submission, error) {
	sub := &model.Submission{
		Type:         req.Type,
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		PatientEmail: req.PatientEmail,
		ReferrerName: req.ReferrerName,
		Notes:        req.Notes,
		Status:       model.SubmissionStatusPending,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, subType model.SubmissionType, status model.SubmissionStatus) ([]*model.Submission, error) {
	return s.repo.List(ctx, subType, status)
}

// UpdateStatus handles the intake side of the submission lifecycle. The
// scheduled status is only reachable through scheduling, and completed only
// through appointment status mirroring.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SubmissionStatus) (*model.Submission, error) {
	switch status {
	case model.SubmissionStatusPending, model.SubmissionStatusContacted, model.SubmissionStatusCancelled:
	default:
		return nil, apperrors.NewValidation(fmt.Sprintf("status %q cannot be set directly", status), nil)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a submission; the store cascades to any linked
// appointment, since the submission owns the appointment's existence.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
