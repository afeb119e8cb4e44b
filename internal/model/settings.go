package model

// Settings keys for the reminder pipeline. Stored in a generic key/value
// table so operators can change them without a redeploy.
const (
	SettingRemindersEnabled = "reminders_enabled"
	SettingLeadTimeHours    = "reminder_lead_time_hours"
)

const DefaultLeadTimeHours = 24

type ReminderSettings struct {
	Enabled       bool `json:"enabled"`
	LeadTimeHours int  `json:"lead_time_hours" binding:"omitempty,min=1,max=720"`
}
