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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStore implements billRepo.BillRepository.
type BillStore struct {
	db *sql.DB
}

const billColumns = `id, user_id, title, category, amount, due_date, frequency, is_recurring,
	status, notes, institution, account_info, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (models.Bill, error) {
	var (
		b                    models.Bill
		amount, due          string
		frequency, status    string
		recurring            int
		createdAt, updatedAt int64
	)
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Category, &amount, &due, &frequency, &recurring,
		&status, &b.Notes, &b.Institution, &b.AccountInfo, &b.Version, &createdAt, &updatedAt)
	if err != nil {
		return models.Bill{}, err
	}
	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return models.Bill{}, fmt.Errorf("bill %s: bad amount %q: %w", b.ID, amount, err)
	}
	if b.DueDate, err = time.Parse(models.DateLayout, due); err != nil {
		return models.Bill{}, fmt.Errorf("bill %s: bad due date %q: %w", b.ID, due, err)
	}
	b.Frequency = models.Frequency(frequency)
	b.Status = models.BillStatus(status)
	b.IsRecurring = recurring == 1
	b.CreatedAt = fromMillis(createdAt)
	b.UpdatedAt = fromMillis(updatedAt)
	return b, nil
}

// Create inserts a new bill.
func (s *BillStore) Create(ctx context.Context, bill *models.Bill) error {
	return insertBill(ctx, s.db, bill)
}

func insertBill(ctx context.Context, ex execer, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	now := nowMillis()
	bill.CreatedAt, bill.UpdatedAt = now, now
	bill.Version = 1

	_, err := ex.ExecContext(ctx, `INSERT INTO bills (`+billColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.UserID, bill.Title, bill.Category, bill.Amount.String(),
		bill.DueDate.Format(models.DateLayout), string(bill.Frequency), boolInt(bill.IsRecurring),
		string(bill.Status), bill.Notes, bill.Institution, bill.AccountInfo, bill.Version,
		toMillis(bill.CreatedAt), toMillis(bill.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

// GetByID retrieves a bill owned by userID.
func (s *BillStore) GetByID(ctx context.Context, userID, id string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.NotFound("bill not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bill %s: %w", id, err)
	}
	return &b, nil
}

// Update writes every mutable column when the stored version matches.
func (s *BillStore) Update(ctx context.Context, bill *models.Bill) error {
	updatedAt, err := updateBill(ctx, s.db, bill)
	if err != nil {
		return err
	}
	bill.Version++
	bill.UpdatedAt = updatedAt
	return nil
}

// UpdateWithReminders writes the bill and swaps its pending reminders in
// one transaction.
func (s *BillStore) UpdateWithReminders(ctx context.Context, bill *models.Bill, fresh []models.Reminder) error {
	var updatedAt time.Time
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if updatedAt, err = updateBill(ctx, tx, bill); err != nil {
			return err
		}
		if err := deletePending(ctx, tx, bill.ID); err != nil {
			return err
		}
		return insertReminders(ctx, tx, fresh)
	})
	if err != nil {
		return err
	}
	bill.Version++
	bill.UpdatedAt = updatedAt
	return nil
}

// Settle flips the bill to paid, drops its pending reminders and inserts
// the successor with its reminders in one transaction.
func (s *BillStore) Settle(ctx context.Context, paid *models.Bill, next *models.Bill, nextReminders []models.Reminder) error {
	var updatedAt time.Time
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if updatedAt, err = updateBill(ctx, tx, paid); err != nil {
			return err
		}
		if err := deletePending(ctx, tx, paid.ID); err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		if err := insertBill(ctx, tx, next); err != nil {
			return err
		}
		return insertReminders(ctx, tx, nextReminders)
	})
	if err != nil {
		return err
	}
	paid.Version++
	paid.UpdatedAt = updatedAt
	return nil
}

// updateBill runs the versioned UPDATE. bill itself is not modified.
func updateBill(ctx context.Context, ex execer, bill *models.Bill) (time.Time, error) {
	updatedAt := nowMillis()
	res, err := ex.ExecContext(ctx, `UPDATE bills SET
			title = ?, category = ?, amount = ?, due_date = ?, frequency = ?, is_recurring = ?,
			status = ?, notes = ?, institution = ?, account_info = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND user_id = ? AND version = ?`,
		bill.Title, bill.Category, bill.Amount.String(), bill.DueDate.Format(models.DateLayout),
		string(bill.Frequency), boolInt(bill.IsRecurring), string(bill.Status),
		bill.Notes, bill.Institution, bill.AccountInfo, toMillis(updatedAt),
		bill.ID, bill.UserID, bill.Version)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to update bill %s: %w", bill.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to update bill %s: %w", bill.ID, err)
	}
	if n == 0 {
		return time.Time{}, utils.Conflict("bill %s was modified concurrently", bill.ID)
	}
	return updatedAt, nil
}

// Delete removes the bill and its reminders in one transaction.
func (s *BillStore) Delete(ctx context.Context, userID, id string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM bills WHERE id = ? AND user_id = ?`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete bill %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return utils.NotFound("bill not found")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE bill_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete reminders of bill %s: %w", id, err)
		}
		return nil
	})
}

// List returns a filtered, sorted page of bills and the total match count.
func (s *BillStore) List(ctx context.Context, filter models.BillFilter) ([]models.Bill, int, error) {
	where := []string{"user_id = ?"}
	args := []any{filter.UserID}

	switch filter.Status {
	case "":
	case string(models.ComputedOverdue):
		where = append(where, "status <> ?", "due_date < ?")
		args = append(args, string(models.BillPaid), filter.Today.Format(models.DateLayout))
	case string(models.ComputedDue):
		where = append(where, "status = ?", "due_date >= ?")
		args = append(args, string(models.BillDue), filter.Today.Format(models.DateLayout))
	default:
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bills WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}

	orderBy := "due_date"
	switch filter.Sort {
	case "amount":
		orderBy = "CAST(amount AS REAL)"
	case "title":
		orderBy = "title"
	}
	dir := "ASC"
	if filter.Desc {
		dir = "DESC"
	}
	page := filter.Page.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM bills WHERE %s ORDER BY %s %s, id ASC LIMIT ? OFFSET ?`,
		billColumns, clause, orderBy, dir)

	bills, err := s.query(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

// ListByUser returns every bill of a user.
func (s *BillStore) ListByUser(ctx context.Context, userID string) ([]models.Bill, error) {
	return s.query(ctx, `SELECT `+billColumns+` FROM bills WHERE user_id = ? ORDER BY due_date, id`, userID)
}

// ListDueBetween returns bills due inside [from, to].
func (s *BillStore) ListDueBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Bill, error) {
	return s.query(ctx, `SELECT `+billColumns+` FROM bills
		WHERE user_id = ? AND due_date >= ? AND due_date <= ? ORDER BY due_date, id`,
		userID, from.Format(models.DateLayout), to.Format(models.DateLayout))
}

func (s *BillStore) query(ctx context.Context, query string, args ...any) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}
