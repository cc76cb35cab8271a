package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"emireminder/models"
	"emireminder/utils"
)

// ReminderStore implements reminderRepo.ReminderRepository.
type ReminderStore struct {
	db *sql.DB
}

const reminderColumns = `id, bill_id, user_id, fire_at, days_before, message, channel, status,
	sent_at, delivery_key, created_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanReminder(row rowScanner) (models.Reminder, error) {
	var (
		r                 models.Reminder
		fireAt, createdAt int64
		sentAt            sql.NullInt64
		channel, status   string
	)
	err := row.Scan(&r.ID, &r.BillID, &r.UserID, &fireAt, &r.DaysBefore, &r.Message, &channel, &status,
		&sentAt, &r.DeliveryKey, &createdAt)
	if err != nil {
		return models.Reminder{}, err
	}
	r.FireAt = fromMillis(fireAt)
	r.CreatedAt = fromMillis(createdAt)
	r.Channel = models.Channel(channel)
	r.Status = models.ReminderStatus(status)
	if sentAt.Valid {
		t := fromMillis(sentAt.Int64)
		r.SentAt = &t
	}
	return r, nil
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func insertReminders(ctx context.Context, ex execer, reminders []models.Reminder) error {
	for _, r := range reminders {
		_, err := ex.ExecContext(ctx, `INSERT INTO reminders (`+reminderColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.BillID, r.UserID, toMillis(r.FireAt), r.DaysBefore, r.Message, string(r.Channel),
			string(r.Status), nullMillis(r.SentAt), r.DeliveryKey, toMillis(r.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert reminder for bill %s: %w", r.BillID, err)
		}
	}
	return nil
}

// CreateMany inserts the batch inside one transaction.
func (s *ReminderStore) CreateMany(ctx context.Context, reminders []models.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		return insertReminders(ctx, tx, reminders)
	})
}

// DeletePending removes the pending reminders of a bill.
func (s *ReminderStore) DeletePending(ctx context.Context, billID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE bill_id = ? AND status = ?`,
		billID, string(models.ReminderPending))
	if err != nil {
		return 0, fmt.Errorf("failed to delete pending reminders of bill %s: %w", billID, err)
	}
	return res.RowsAffected()
}

func deletePending(ctx context.Context, ex execer, billID string) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM reminders WHERE bill_id = ? AND status = ?`,
		billID, string(models.ReminderPending)); err != nil {
		return fmt.Errorf("failed to delete pending reminders of bill %s: %w", billID, err)
	}
	return nil
}

// ReplacePending deletes and inserts inside one transaction.
func (s *ReminderStore) ReplacePending(ctx context.Context, billID string, fresh []models.Reminder) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := deletePending(ctx, tx, billID); err != nil {
			return err
		}
		return insertReminders(ctx, tx, fresh)
	})
}

// ListDue returns pending reminders due at or before now.
func (s *ReminderStore) ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	return s.query(ctx, `SELECT `+reminderColumns+` FROM reminders
		WHERE status = ? AND fire_at <= ? ORDER BY fire_at, id`,
		string(models.ReminderPending), toMillis(now))
}

// SaveOutcomes persists every outcome in a single transaction. A row
// rescheduled since it was loaded carries a new delivery key and is skipped.
func (s *ReminderStore) SaveOutcomes(ctx context.Context, reminders []models.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE reminders SET status = ?, sent_at = ?
			WHERE id = ? AND status = ? AND delivery_key = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range reminders {
			if _, err := stmt.ExecContext(ctx, string(r.Status), nullMillis(r.SentAt), r.ID,
				string(models.ReminderPending), r.DeliveryKey); err != nil {
				return fmt.Errorf("failed to persist outcome of reminder %s: %w", r.ID, err)
			}
		}
		return nil
	})
}

// GetByID retrieves a reminder owned by userID.
func (s *ReminderStore) GetByID(ctx context.Context, userID, id string) (*models.Reminder, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = ? AND user_id = ?`, id, userID)
	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.NotFound("reminder not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminder %s: %w", id, err)
	}
	return &r, nil
}

// Reschedule updates the schedule fields of a reminder.
func (s *ReminderStore) Reschedule(ctx context.Context, reminder *models.Reminder) error {
	res, err := s.db.ExecContext(ctx, `UPDATE reminders SET fire_at = ?, status = ?, sent_at = ?, delivery_key = ?
		WHERE id = ? AND user_id = ?`,
		toMillis(reminder.FireAt), string(reminder.Status), nullMillis(reminder.SentAt), reminder.DeliveryKey,
		reminder.ID, reminder.UserID)
	if err != nil {
		return fmt.Errorf("failed to reschedule reminder %s: %w", reminder.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.NotFound("reminder not found")
	}
	return nil
}

// Delete removes a reminder owned by userID.
func (s *ReminderStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.NotFound("reminder not found")
	}
	return nil
}

// List returns a filtered page of reminders, newest first.
func (s *ReminderStore) List(ctx context.Context, filter models.ReminderFilter) ([]models.Reminder, int, error) {
	where := []string{"user_id = ?"}
	args := []any{filter.UserID}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.BillID != "" {
		where = append(where, "bill_id = ?")
		args = append(args, filter.BillID)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reminders WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reminders: %w", err)
	}

	orderBy := "fire_at"
	if filter.OrderBySentAt {
		orderBy = "sent_at"
	}
	page := filter.Page.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM reminders WHERE %s ORDER BY %s DESC, id ASC LIMIT ? OFFSET ?`,
		reminderColumns, clause, orderBy)

	reminders, err := s.query(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return reminders, total, nil
}

// ListByBill returns every reminder of a bill ordered by fire time.
func (s *ReminderStore) ListByBill(ctx context.Context, billID string) ([]models.Reminder, error) {
	return s.query(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE bill_id = ? ORDER BY fire_at, id`, billID)
}

func (s *ReminderStore) query(ctx context.Context, query string, args ...any) ([]models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var out []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
