package models

import "time"

// User is the contact record the dispatcher needs to reach someone.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	FCMToken  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserPreference holds per-user notification settings.
type UserPreference struct {
	UserID          string    `json:"userId"`
	PushEnabled     bool      `json:"pushEnabled"`
	SMSEnabled      bool      `json:"smsEnabled"`
	WhatsAppEnabled bool      `json:"whatsAppEnabled"`
	ReminderDays    string    `json:"reminderDays"`
	Language        string    `json:"language"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DefaultPreference is used for users that never saved preferences.
func DefaultPreference(userID string) UserPreference {
	return UserPreference{
		UserID:       userID,
		PushEnabled:  true,
		ReminderDays: "7,3,0",
		Language:     "en",
	}
}

// PreferencePatch is a partial preference update.
type PreferencePatch struct {
	PushEnabled     *bool   `json:"pushEnabled"`
	SMSEnabled      *bool   `json:"smsEnabled"`
	WhatsAppEnabled *bool   `json:"whatsAppEnabled"`
	ReminderDays    *string `json:"reminderDays" binding:"omitempty,reminderdays"`
	Language        *string `json:"language" binding:"omitempty,oneof=en hi ta te kn mr gu bn"`
}

func (p PreferencePatch) Apply(pref *UserPreference) {
	if p.PushEnabled != nil {
		pref.PushEnabled = *p.PushEnabled
	}
	if p.SMSEnabled != nil {
		pref.SMSEnabled = *p.SMSEnabled
	}
	if p.WhatsAppEnabled != nil {
		pref.WhatsAppEnabled = *p.WhatsAppEnabled
	}
	if p.ReminderDays != nil {
		pref.ReminderDays = *p.ReminderDays
	}
	if p.Language != nil {
		pref.Language = *p.Language
	}
}

// ProfileUpdate is a partial contact update.
type ProfileUpdate struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}
