package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/scheduler-api/internal/model"
	"github.com/brightpath/scheduler-api/internal/service/notification"
	apperrors "github.com/brightpath/scheduler-api/pkg/errors"
	"github.com/brightpath/scheduler-api/pkg/logger"
)

type fakeSubmissionRepo struct {
	subs map[uuid.UUID]*model.Submission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{subs: make(map[uuid.UUID]*model.Submission)}
}

func (r *fakeSubmissionRepo) Create(_ context.Context, sub *model.Submission) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	r.subs[sub.ID] = sub
	return nil
}

func (r *fakeSubmissionRepo) Get(_ context.Context, id uuid.UUID) (*model.Submission, error) {
	sub, ok := r.subs[id]
	if !ok {
		return nil, apperrors.NewNotFound("submission", nil)
	}
	copied := *sub
	return &copied, nil
}

func (r *fakeSubmissionRepo) List(_ context.Context, _ model.SubmissionType, _ model.SubmissionStatus) ([]*model.Submission, error) {
	var out []*model.Submission
	for _, sub := range r.subs {
		out = append(out, sub)
	}
	return out, nil
}

func (r *fakeSubmissionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.SubmissionStatus) error {
	sub, ok := r.subs[id]
	if !ok {
		return apperrors.NewNotFound("submission", nil)
	}
	sub.Status = status
	return nil
}

func (r *fakeSubmissionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.subs, id)
	return nil
}

type fakeAppointmentRepo struct {
	appointments    map[uuid.UUID]*model.Appointment
	subs            *fakeSubmissionRepo
	failNextCreate  error
	claimDenied     bool
	claimErr        error
	clearCalled     int
	candidatesQuery []*model.Appointment
}

func newFakeAppointmentRepo(subs *fakeSubmissionRepo) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appointments: make(map[uuid.UUID]*model.Appointment),
		subs:         subs,
	}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	if r.failNextCreate != nil {
		err := r.failNextCreate
		r.failNextCreate = nil
		return err
	}
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	r.appointments[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	copied := *apt
	return &copied, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	if _, ok := r.appointments[apt.ID]; !ok {
		return apperrors.NewNotFound("appointment", nil)
	}
	r.appointments[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.appointments[id]; !ok {
		return apperrors.NewNotFound("appointment", nil)
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range r.appointments {
		out = append(out, apt)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListActiveForClinicianDay(_ context.Context, clinician string, date time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range r.appointments {
		if apt.Clinician == clinician && apt.AppointmentDate.Equal(date) && apt.Status == model.AppointmentStatusScheduled {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	apt.Status = status
	copied := *apt
	return &copied, nil
}

func (r *fakeAppointmentRepo) CreateForSubmission(ctx context.Context, apt *model.Appointment, subID uuid.UUID, _ model.SubmissionType) error {
	if err := r.Create(ctx, apt); err != nil {
		return err
	}
	return r.subs.UpdateStatus(ctx, subID, model.SubmissionStatusScheduled)
}

func (r *fakeAppointmentRepo) ListReminderCandidates(_ context.Context, _ time.Time) ([]*model.Appointment, error) {
	return r.candidatesQuery, nil
}

func (r *fakeAppointmentRepo) ClaimReminder(_ context.Context, id uuid.UUID) (bool, error) {
	if r.claimErr != nil {
		return false, r.claimErr
	}
	if r.claimDenied {
		return false, nil
	}
	apt, ok := r.appointments[id]
	if !ok {
		return false, apperrors.NewNotFound("appointment", nil)
	}
	if apt.ReminderSent {
		return false, nil
	}
	apt.ReminderSent = true
	return true, nil
}

func (r *fakeAppointmentRepo) ClearReminderFlag(_ context.Context, id uuid.UUID) error {
	r.clearCalled++
	if apt, ok := r.appointments[id]; ok {
		apt.ReminderSent = false
	}
	return nil
}

type fakeNotifier struct {
	calls []notification.Event
	err   error
}

func (n *fakeNotifier) NotifyAppointment(_ context.Context, apt *model.Appointment, event notification.Event) (bool, error) {
	if n.err != nil {
		return false, n.err
	}
	n.calls = append(n.calls, event)
	return apt.PatientEmail != "", nil
}

func newTestService(t *testing.T) (*Service, *fakeAppointmentRepo, *fakeSubmissionRepo, *fakeNotifier) {
	t.Helper()
	subs := newFakeSubmissionRepo()
	repo := newFakeAppointmentRepo(subs)
	notifier := &fakeNotifier{}
	svc := NewService(repo, subs, notifier, nil, logger.NewLogger(nil))
	return svc, repo, subs, notifier
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedAppointment(repo *fakeAppointmentRepo, clinician, day, start string, duration int) *model.Appointment {
	apt := &model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		PatientName:     "Alice Example",
		AppointmentDate: date(day),
		AppointmentTime: start,
		DurationMinutes: duration,
		Clinician:       clinician,
		Location:        model.LocationClinic,
		Status:          model.AppointmentStatusScheduled,
	}
	repo.appointments[apt.ID] = apt
	return apt
}

func TestCheckConflictOverlap(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	existing := seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)

	conflicting, err := svc.CheckConflict(context.Background(), ConflictCheck{
		Clinician:       "J. Thompson",
		Date:            date("2024-06-01"),
		StartTime:       "09:30",
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	require.NotNil(t, conflicting)
	assert.Equal(t, existing.ID, conflicting.ID)
}

func TestCheckConflictBackToBack(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)

	conflicting, err := svc.CheckConflict(context.Background(), ConflictCheck{
		Clinician:       "J. Thompson",
		Date:            date("2024-06-01"),
		StartTime:       "10:00",
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	assert.Nil(t, conflicting, "back-to-back appointments must not conflict")
}

func TestCheckConflictIgnoresInactive(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusCancelled,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusNoShow,
	} {
		apt := seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)
		apt.Status = status

		conflicting, err := svc.CheckConflict(context.Background(), ConflictCheck{
			Clinician:       "J. Thompson",
			Date:            date("2024-06-01"),
			StartTime:       "09:15",
			DurationMinutes: 30,
		})
		require.NoError(t, err)
		assert.Nil(t, conflicting, "%s appointments must not block a slot", status)
		delete(repo.appointments, apt.ID)
	}
}

func TestCheckConflictOtherClinicianOrDay(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)

	conflicting, err := svc.CheckConflict(context.Background(), ConflictCheck{
		Clinician:       "R. Patel",
		Date:            date("2024-06-01"),
		StartTime:       "09:00",
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Nil(t, conflicting)

	conflicting, err = svc.CheckConflict(context.Background(), ConflictCheck{
		Clinician:       "J. Thompson",
		Date:            date("2024-06-02"),
		StartTime:       "09:00",
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Nil(t, conflicting)
}

func TestCheckConflictExcludesSelf(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	existing := seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)

	conflicting, err := svc.CheckConflict(context.Background(), ConflictCheck{
		Clinician:       "J. Thompson",
		Date:            date("2024-06-01"),
		StartTime:       "09:00",
		DurationMinutes: 90,
		ExcludeID:       &existing.ID,
	})
	require.NoError(t, err)
	assert.Nil(t, conflicting, "an edit must not conflict with its own prior slot")
}

func TestCreateConflictNamesCollidingAppointment(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	existing := seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)

	_, err := svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientName:     "Bob Example",
		AppointmentDate: "2024-06-01",
		AppointmentTime: "09:30",
		DurationMinutes: 30,
		Clinician:       "J. Thompson",
		Location:        model.LocationClinic,
	})
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, existing.ID, conflict.Conflicting.ID)
	assert.Contains(t, conflict.Error(), "J. Thompson")
	assert.Contains(t, conflict.Error(), "09:00")
}

func TestCreateInHomeRequiresAddress(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientName:     "Bob Example",
		AppointmentDate: "2024-06-01",
		AppointmentTime: "09:00",
		DurationMinutes: 60,
		Clinician:       "J. Thompson",
		Location:        model.LocationInHome,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateSendsConfirmation(t *testing.T) {
	svc, _, _, notifier := newTestService(t)

	apt, err := svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientName:     "Bob Example",
		PatientEmail:    "bob@example.com",
		AppointmentDate: "2024-06-01",
		AppointmentTime: "09:00",
		DurationMinutes: 60,
		Clinician:       "J. Thompson",
		Location:        model.LocationClinic,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, notification.EventConfirmation, notifier.calls[0])
}

func TestTransitionMirrorsLinkedSubmission(t *testing.T) {
	cases := []struct {
		status   model.AppointmentStatus
		expected model.SubmissionStatus
		mirrored bool
	}{
		{model.AppointmentStatusCompleted, model.SubmissionStatusCompleted, true},
		{model.AppointmentStatusCancelled, model.SubmissionStatusCancelled, true},
		{model.AppointmentStatusScheduled, model.SubmissionStatusScheduled, true},
		{model.AppointmentStatusNoShow, "", false},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			svc, repo, subs, _ := newTestService(t)

			sub := &model.Submission{
				Base:        model.Base{ID: uuid.New()},
				Type:        model.SubmissionTypeVisitRequest,
				PatientName: "Alice Example",
				Status:      model.SubmissionStatusContacted,
			}
			subs.subs[sub.ID] = sub

			apt := seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)
			apt.VisitRequestID = &sub.ID

			updated, err := svc.Transition(context.Background(), apt.ID, tc.status)
			require.NoError(t, err)
			assert.Equal(t, tc.status, updated.Status)

			if tc.mirrored {
				assert.Equal(t, tc.expected, sub.Status)
			} else {
				assert.Equal(t, model.SubmissionStatusContacted, sub.Status,
					"no_show must leave the submission untouched")
			}
		})
	}
}

func TestTransitionAnyToAny(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	apt := seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)
	apt.Status = model.AppointmentStatusCompleted

	// a completed visit later corrected to no_show
	updated, err := svc.Transition(context.Background(), apt.ID, model.AppointmentStatusNoShow)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusNoShow, updated.Status)
}

func TestTransitionInvalidStatus(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	apt := seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)

	_, err := svc.Transition(context.Background(), apt.ID, "rescheduled")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestTransitionNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Transition(context.Background(), uuid.New(), model.AppointmentStatusCompleted)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestScheduleFromSubmission(t *testing.T) {
	svc, _, subs, notifier := newTestService(t)

	sub := &model.Submission{
		Base:         model.Base{ID: uuid.New()},
		Type:         model.SubmissionTypeVisitRequest,
		PatientName:  "Alice Example",
		PatientEmail: "alice@example.com",
		Status:       model.SubmissionStatusContacted,
	}
	subs.subs[sub.ID] = sub

	apt, err := svc.ScheduleFromSubmission(context.Background(), sub.ID, model.SubmissionTypeVisitRequest, &model.ScheduleSubmissionRequest{
		AppointmentDate: "2024-06-01",
		AppointmentTime: "09:00",
		DurationMinutes: 60,
		Clinician:       "J. Thompson",
		Location:        model.LocationClinic,
	})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, "Alice Example", apt.PatientName, "contact details come from the submission")
	require.NotNil(t, apt.VisitRequestID)
	assert.Equal(t, sub.ID, *apt.VisitRequestID)
	assert.Equal(t, model.SubmissionStatusScheduled, sub.Status)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, notification.EventConfirmation, notifier.calls[0])
}

func TestScheduleFromSubmissionConflictLeavesBothUnchanged(t *testing.T) {
	svc, repo, subs, _ := newTestService(t)
	seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)

	sub := &model.Submission{
		Base:        model.Base{ID: uuid.New()},
		Type:        model.SubmissionTypeReferral,
		PatientName: "Alice Example",
		Status:      model.SubmissionStatusPending,
	}
	subs.subs[sub.ID] = sub

	_, err := svc.ScheduleFromSubmission(context.Background(), sub.ID, model.SubmissionTypeReferral, &model.ScheduleSubmissionRequest{
		AppointmentDate: "2024-06-01",
		AppointmentTime: "09:30",
		DurationMinutes: 30,
		Clinician:       "J. Thompson",
		Location:        model.LocationClinic,
	})
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, model.SubmissionStatusPending, sub.Status, "submission status must be untouched")
	assert.Len(t, repo.appointments, 1, "no appointment row may be created")
}

func TestScheduleFromSubmissionAlreadyScheduled(t *testing.T) {
	svc, _, subs, _ := newTestService(t)

	sub := &model.Submission{
		Base:   model.Base{ID: uuid.New()},
		Type:   model.SubmissionTypeVisitRequest,
		Status: model.SubmissionStatusScheduled,
	}
	subs.subs[sub.ID] = sub

	_, err := svc.ScheduleFromSubmission(context.Background(), sub.ID, model.SubmissionTypeVisitRequest, &model.ScheduleSubmissionRequest{
		AppointmentDate: "2024-06-01",
		AppointmentTime: "09:00",
		DurationMinutes: 60,
		Clinician:       "J. Thompson",
		Location:        model.LocationClinic,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateReschedulePassesConflictCheck(t *testing.T) {
	svc, repo, _, notifier := newTestService(t)
	seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)
	apt := seedAppointment(repo, "J. Thompson", "2024-06-01", "11:00", 60)

	// moving onto the other appointment's slot fails
	newTime := "09:30"
	_, err := svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		AppointmentTime: &newTime,
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// moving to a free slot succeeds and notifies the patient
	freeTime := "13:00"
	updated, err := svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		AppointmentTime: &freeTime,
	})
	require.NoError(t, err)
	assert.Equal(t, "13:00", updated.AppointmentTime)
	assert.Contains(t, notifier.calls, notification.EventUpdate)
}

func TestUpdateClinicianChangeRechecksConflicts(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	seedAppointment(repo, "R. Patel", "2024-06-01", "09:00", 60)
	apt := seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)

	newClinician := "R. Patel"
	_, err := svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		Clinician: &newClinician,
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict, "reassigning the clinician must re-run the conflict check")
}

func TestDeleteOnlyCancelled(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	apt := seedAppointment(repo, "J. Thompson", "2024-06-01", "09:00", 60)

	err := svc.Delete(context.Background(), apt.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	apt.Status = model.AppointmentStatusCancelled
	require.NoError(t, svc.Delete(context.Background(), apt.ID))
	assert.Empty(t, repo.appointments)
}

func TestMirrorStatusTable(t *testing.T) {
	mirrored, ok := MirrorStatus(model.AppointmentStatusCompleted)
	assert.True(t, ok)
	assert.Equal(t, model.SubmissionStatusCompleted, mirrored)

	_, ok = MirrorStatus(model.AppointmentStatusNoShow)
	assert.False(t, ok)
}
