package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/railbook/train-reservation/internal/model"
)

// ReminderRepo provides persistence for payment reminders.  The
// processor creates at most one reminder per scheduled job; the
// reminder dispatch loop (a separate subsystem) advances send counts
// and due instants from there.
type ReminderRepo struct {
    db *sql.DB
}

// NewReminderRepo returns a new ReminderRepo bound to the given database.
func NewReminderRepo(db *sql.DB) *ReminderRepo { return &ReminderRepo{db: db} }

// Create inserts a reminder row and populates the generated ID on the
// provided model.
func (r *ReminderRepo) Create(ctx context.Context, rem *model.PaymentReminder) error {
    const q = `INSERT INTO payment_reminders
               (booking_id, send_count, next_due_at, channel, status)
               VALUES (?, ?, ?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q,
        rem.BookingID, rem.SendCount, rem.NextDueAt.UTC(), rem.Channel, rem.Status,
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    rem.ID = uint64(id)
    return nil
}

// MarkSent records a delivery: increments the send count, stamps
// last_sent_at and moves next_due_at forward.  Used by the reminder
// dispatch loop.
func (r *ReminderRepo) MarkSent(ctx context.Context, id uint64, sentAt, nextDue time.Time) error {
    const q = `UPDATE payment_reminders
               SET send_count = send_count + 1, last_sent_at = ?, next_due_at = ?, status = ?
               WHERE id = ?`
    _, err := r.db.ExecContext(ctx, q, sentAt.UTC(), nextDue.UTC(), model.ReminderStatusSent, id)
    return err
}

// GetByBooking returns the reminder attached to a booking, if any.
// sql.ErrNoRows is returned when the booking has no reminder.
func (r *ReminderRepo) GetByBooking(ctx context.Context, bookingID uint64) (*model.PaymentReminder, error) {
    const q = `SELECT id, booking_id, send_count, last_sent_at, next_due_at, channel, status, created_at
               FROM payment_reminders WHERE booking_id = ?`
    var rem model.PaymentReminder
    var lastSent sql.NullTime
    err := r.db.QueryRowContext(ctx, q, bookingID).Scan(
        &rem.ID, &rem.BookingID, &rem.SendCount, &lastSent,
        &rem.NextDueAt, &rem.Channel, &rem.Status, &rem.CreatedAt,
    )
    if err != nil {
        return nil, err
    }
    if lastSent.Valid {
        t := lastSent.Time
        rem.LastSentAt = &t
    }
    return &rem, nil
}
