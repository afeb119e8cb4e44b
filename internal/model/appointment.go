package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// ValidAppointmentStatus reports whether s is one of the four appointment
// statuses. Any-to-any transitions between them are permitted.
func ValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

type Location string

const (
	LocationInHome Location = "in-home"
	LocationClinic Location = "clinic"
)

type Appointment struct {
	Base
	PatientName     string            `db:"patient_name" json:"patient_name"`
	PatientPhone    string            `db:"patient_phone" json:"patient_phone,omitempty"`
	PatientEmail    string            `db:"patient_email" json:"patient_email,omitempty"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string            `db:"appointment_time" json:"appointment_time"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Clinician       string            `db:"clinician" json:"clinician"`
	Location        Location          `db:"location" json:"location"`
	Address         string            `db:"address" json:"address,omitempty"`
	Status          AppointmentStatus `db:"status" json:"status"`
	VisitRequestID  *uuid.UUID        `db:"visit_request_id" json:"visit_request_id,omitempty"`
	ReferralID      *uuid.UUID        `db:"referral_id" json:"referral_id,omitempty"`
	ReminderSent    bool              `db:"reminder_sent" json:"reminder_sent"`
}

// StartAt combines the appointment's date and time-of-day into a single
// instant in the given location.
func (a *Appointment) StartAt(loc *time.Location) (time.Time, error) {
	mins, err := ParseTimeOfDay(a.AppointmentTime)
	if err != nil {
		return time.Time{}, err
	}
	d := a.AppointmentDate
	return time.Date(d.Year(), d.Month(), d.Day(), mins/60, mins%60, 0, 0, loc), nil
}

// Interval returns the half-open interval [start, end) in minutes from
// midnight of the appointment's date.
func (a *Appointment) Interval() (start, end int, err error) {
	start, err = ParseTimeOfDay(a.AppointmentTime)
	if err != nil {
		return 0, 0, err
	}
	return start, start + a.DurationMinutes, nil
}

// Submission returns the id and type of the linked submission, if any.
// At most one of the two references is ever set.
func (a *Appointment) Submission() (uuid.UUID, SubmissionType, bool) {
	if a.VisitRequestID != nil {
		return *a.VisitRequestID, SubmissionTypeVisitRequest, true
	}
	if a.ReferralID != nil {
		return *a.ReferralID, SubmissionTypeReferral, true
	}
	return uuid.Nil, "", false
}

// ParseTimeOfDay parses "HH:MM" (or "HH:MM:SS", as postgres TIME columns
// scan) into minutes from midnight.
func ParseTimeOfDay(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

type CreateAppointmentRequest struct {
	PatientName     string   `json:"patient_name" binding:"required,max=200"`
	PatientPhone    string   `json:"patient_phone" binding:"omitempty,max=30"`
	PatientEmail    string   `json:"patient_email" binding:"omitempty,email"`
	AppointmentDate string   `json:"appointment_date" binding:"required,datetime=2006-01-02"`
	AppointmentTime string   `json:"appointment_time" binding:"required,timeofday"`
	DurationMinutes int      `json:"duration_minutes" binding:"required,min=5,max=480"`
	Clinician       string   `json:"clinician" binding:"required,max=200"`
	Location        Location `json:"location" binding:"required,oneof=in-home clinic"`
	Address         string   `json:"address" binding:"omitempty,max=500"`
}

type UpdateAppointmentRequest struct {
	PatientName     *string   `json:"patient_name" binding:"omitempty,max=200"`
	PatientPhone    *string   `json:"patient_phone" binding:"omitempty,max=30"`
	PatientEmail    *string   `json:"patient_email" binding:"omitempty,email"`
	AppointmentDate *string   `json:"appointment_date" binding:"omitempty,datetime=2006-01-02"`
	AppointmentTime *string   `json:"appointment_time" binding:"omitempty,timeofday"`
	DurationMinutes *int      `json:"duration_minutes" binding:"omitempty,min=5,max=480"`
	Clinician       *string   `json:"clinician" binding:"omitempty,max=200"`
	Location        *Location `json:"location" binding:"omitempty,oneof=in-home clinic"`
	Address         *string   `json:"address" binding:"omitempty,max=500"`
}

// ScheduleSubmissionRequest is the appointment draft supplied when
// scheduling a submission. Patient contact details default from the
// submission itself.
type ScheduleSubmissionRequest struct {
	AppointmentDate string   `json:"appointment_date" binding:"required,datetime=2006-01-02"`
	AppointmentTime string   `json:"appointment_time" binding:"required,timeofday"`
	DurationMinutes int      `json:"duration_minutes" binding:"required,min=5,max=480"`
	Clinician       string   `json:"clinician" binding:"required,max=200"`
	Location        Location `json:"location" binding:"required,oneof=in-home clinic"`
	Address         string   `json:"address" binding:"omitempty,max=500"`
}

type TransitionRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=scheduled completed cancelled no_show"`
}

type AppointmentFilters struct {
	Clinician string
	Date      time.Time
	Status    AppointmentStatus
}

// TimeSlot is a free interval in a clinician's day.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
