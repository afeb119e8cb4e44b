package appointment

import (
	"github.com/brightpath/scheduler-api/internal/model"
)

// statusMirror is the single definition of how appointment statuses reflect
// onto a linked submission. Statuses absent from the map (no_show has no
// submission equivalent) leave the submission untouched.
var statusMirror = map[model.AppointmentStatus]model.SubmissionStatus{
	model.AppointmentStatusScheduled: model.SubmissionStatusScheduled,
	model.AppointmentStatusCompleted: model.SubmissionStatusCompleted,
	model.AppointmentStatusCancelled: model.SubmissionStatusCancelled,
}

// MirrorStatus returns the submission status implied by an appointment
// status, and whether one exists.
func MirrorStatus(s model.AppointmentStatus) (model.SubmissionStatus, bool) {
	mirrored, ok := statusMirror[s]
	return mirrored, ok
}
