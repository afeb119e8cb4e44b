package model

type SubmissionType string

const (
	SubmissionTypeVisitRequest SubmissionType = "visit_request"
	SubmissionTypeReferral     SubmissionType = "provider_referral"
)

func ValidSubmissionType(t SubmissionType) bool {
	return t == SubmissionTypeVisitRequest || t == SubmissionTypeReferral
}

type SubmissionStatus string

const (
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusContacted SubmissionStatus = "contacted"
	SubmissionStatusScheduled SubmissionStatus = "scheduled"
	SubmissionStatusCompleted SubmissionStatus = "completed"
	SubmissionStatusCancelled SubmissionStatus = "cancelled"
)

// Submission is an inbound visit request or provider referral. It owns its
// own lifecycle; an appointment holds only a weak back-reference to it.
type Submission struct {
	Base
	Type         SubmissionType   `db:"type" json:"type"`
	PatientName  string           `db:"patient_name" json:"patient_name"`
	PatientPhone string           `db:"patient_phone" json:"patient_phone,omitempty"`
	PatientEmail string           `db:"patient_email" json:"patient_email,omitempty"`
	ReferrerName string           `db:"referrer_name" json:"referrer_name,omitempty"`
	Notes        string           `db:"notes" json:"notes,omitempty"`
	Status       SubmissionStatus `db:"status" json:"status"`
}

type CreateSubmissionRequest struct {
	Type         SubmissionType `json:"type" binding:"required,oneof=visit_request provider_referral"`
	PatientName  string         `json:"patient_name" binding:"required,max=200"`
	PatientPhone string         `json:"patient_phone" binding:"omitempty,max=30"`
	PatientEmail string         `json:"patient_email" binding:"omitempty,email"`
	ReferrerName string         `json:"referrer_name" binding:"omitempty,max=200"`
	Notes        string         `json:"notes" binding:"omitempty,max=2000"`
}

type UpdateSubmissionStatusRequest struct {
	// scheduled is reachable only through the schedule endpoint, and
	// completed only through appointment status mirroring.
	Status SubmissionStatus `json:"status" binding:"required,oneof=pending contacted cancelled"`
}
