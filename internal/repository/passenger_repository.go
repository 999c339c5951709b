package repository

import (
    "context"
    "database/sql"

    "github.com/railbook/train-reservation/internal/model"
)

// PassengerRepo provides persistence for the passengers attached to a
// booking.  Passengers are created in manifest order by the
// processor; the order carries no meaning beyond display.
type PassengerRepo struct {
    db *sql.DB
}

// NewPassengerRepo returns a new PassengerRepo bound to the given database.
func NewPassengerRepo(db *sql.DB) *PassengerRepo { return &PassengerRepo{db: db} }

// Create inserts a passenger row and populates the generated ID on
// the provided model.
func (r *PassengerRepo) Create(ctx context.Context, p *model.Passenger) error {
    const q = `INSERT INTO booking_passengers
               (booking_id, name, age, gender, berth_preference, seat_label, status)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q,
        p.BookingID, p.Name, p.Age, p.Gender, p.BerthPreference, p.SeatLabel, p.Status,
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    return nil
}

// ListByBooking returns the passengers of a booking in insertion
// order.  An empty slice is returned for a booking without rows.
func (r *PassengerRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.Passenger, error) {
    const q = `SELECT id, booking_id, name, age, gender, berth_preference, seat_label, status, created_at
               FROM booking_passengers WHERE booking_id = ? ORDER BY id ASC`
    rows, err := r.db.QueryContext(ctx, q, bookingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    passengers := make([]model.Passenger, 0)
    for rows.Next() {
        var p model.Passenger
        if err := rows.Scan(
            &p.ID, &p.BookingID, &p.Name, &p.Age, &p.Gender,
            &p.BerthPreference, &p.SeatLabel, &p.Status, &p.CreatedAt,
        ); err != nil {
            return nil, err
        }
        passengers = append(passengers, p)
    }
    return passengers, rows.Err()
}
