package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"emireminder/models"
)

// PreferenceStore implements preferenceRepo.PreferenceRepository.
type PreferenceStore struct {
	db *sql.DB
}

func (s *PreferenceStore) Get(ctx context.Context, userID string) (*models.UserPreference, error) {
	var (
		p                   models.UserPreference
		push, sms, whatsapp int
		updatedAt           int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT user_id, push_enabled, sms_enabled, whatsapp_enabled,
		reminder_days, language, updated_at FROM user_preferences WHERE user_id = ?`, userID).
		Scan(&p.UserID, &push, &sms, &whatsapp, &p.ReminderDays, &p.Language, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preferences of user %s: %w", userID, err)
	}
	p.PushEnabled = push == 1
	p.SMSEnabled = sms == 1
	p.WhatsAppEnabled = whatsapp == 1
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}

func (s *PreferenceStore) Upsert(ctx context.Context, pref *models.UserPreference) error {
	pref.UpdatedAt = nowMillis()
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_preferences
			(user_id, push_enabled, sms_enabled, whatsapp_enabled, reminder_days, language, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET push_enabled = excluded.push_enabled,
			sms_enabled = excluded.sms_enabled, whatsapp_enabled = excluded.whatsapp_enabled,
			reminder_days = excluded.reminder_days, language = excluded.language, updated_at = excluded.updated_at`,
		pref.UserID, boolInt(pref.PushEnabled), boolInt(pref.SMSEnabled), boolInt(pref.WhatsAppEnabled),
		pref.ReminderDays, pref.Language, toMillis(pref.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save preferences of user %s: %w", pref.UserID, err)
	}
	return nil
}
