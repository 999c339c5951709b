package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/railbook/train-reservation/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  A booking is a
// confirmed ticket purchase identified by its ten digit PNR; the
// processor creates exactly one per successfully executed scheduled
// job.  All timestamp fields are stored in UTC.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, train_id, class_code, journey_date, pnr, status,
                        total_fare_paise, booking_type, payment_status, payment_due_at,
                        created_at, updated_at`

// Create inserts a new booking and populates the generated ID and
// timestamps on the provided model.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
    const q = `INSERT INTO bookings
               (user_id, train_id, class_code, journey_date, pnr, status,
                total_fare_paise, booking_type, payment_status, payment_due_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q,
        b.UserID, b.TrainID, b.ClassCode, b.JourneyDate, b.PNR, b.Status,
        b.TotalFarePaise, b.BookingType, b.PaymentStatus, b.PaymentDueAt.UTC(),
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    sel := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    fetched, err := scanBooking(r.db.QueryRowContext(ctx, sel, b.ID))
    if err != nil {
        return err
    }
    *b = *fetched
    return nil
}

// GetByID returns the booking with the given ID or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    return r.getOne(ctx, q, id)
}

// GetByPNR returns the booking carrying the given PNR or
// ErrBookingNotFound.
func (r *BookingRepo) GetByPNR(ctx context.Context, pnr string) (*model.Booking, error) {
    q := `SELECT ` + bookingColumns + ` FROM bookings WHERE pnr = ?`
    return r.getOne(ctx, q, pnr)
}

// PNRExists reports whether a booking already carries the given code.
// The PNR generator uses this as its collision check.
func (r *BookingRepo) PNRExists(ctx context.Context, pnr string) (bool, error) {
    const q = `SELECT 1 FROM bookings WHERE pnr = ? LIMIT 1`
    var one int
    err := r.db.QueryRowContext(ctx, q, pnr).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// UpdatePaymentStatus sets the payment status of a booking.  It
// returns ErrBookingNotFound when no booking matches the ID.
func (r *BookingRepo) UpdatePaymentStatus(ctx context.Context, id uint64, status string) error {
    const q = `UPDATE bookings SET payment_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    result, err := r.db.ExecContext(ctx, q, status, id)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrBookingNotFound
    }
    return nil
}

func (r *BookingRepo) getOne(ctx context.Context, q string, arg interface{}) (*model.Booking, error) {
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, arg))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    if err != nil {
        return nil, err
    }
    return b, nil
}

func scanBooking(row rowScanner) (*model.Booking, error) {
    var b model.Booking
    var journey time.Time
    err := row.Scan(
        &b.ID, &b.UserID, &b.TrainID, &b.ClassCode, &journey, &b.PNR,
        &b.Status, &b.TotalFarePaise, &b.BookingType, &b.PaymentStatus,
        &b.PaymentDueAt, &b.CreatedAt, &b.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    // DATE columns come back as time.Time under parseTime; the model
    // carries the calendar date only.
    b.JourneyDate = journey.Format("2006-01-02")
    return &b, nil
}
