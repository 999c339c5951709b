package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/railbook/train-reservation/internal/model"
)

// TrainRepo reads the train catalog.  The catalog is owned by another
// subsystem and is consumed here strictly read-only: validation at
// job creation, class/fare lookup during processing, and the public
// browse endpoints.
type TrainRepo struct {
    db *sql.DB
}

// NewTrainRepo returns a new TrainRepo bound to the given database.
func NewTrainRepo(db *sql.DB) *TrainRepo { return &TrainRepo{db: db} }

// List returns the full train catalog ordered by train number.
func (r *TrainRepo) List(ctx context.Context) ([]model.Train, error) {
    const q = `SELECT id, number, name, source, destination, distance_km
               FROM trains ORDER BY number ASC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    trains := make([]model.Train, 0)
    for rows.Next() {
        var t model.Train
        if err := rows.Scan(&t.ID, &t.Number, &t.Name, &t.Source, &t.Destination, &t.DistanceKm); err != nil {
            return nil, err
        }
        trains = append(trains, t)
    }
    return trains, rows.Err()
}

// GetByID returns the train with the given ID or ErrTrainNotFound.
func (r *TrainRepo) GetByID(ctx context.Context, id uint64) (*model.Train, error) {
    const q = `SELECT id, number, name, source, destination, distance_km
               FROM trains WHERE id = ?`
    var t model.Train
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &t.ID, &t.Number, &t.Name, &t.Source, &t.Destination, &t.DistanceKm,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrTrainNotFound
    }
    if err != nil {
        return nil, err
    }
    return &t, nil
}

// ListClasses returns the bookable classes of a train with their unit
// fares.  An empty slice is returned for a train without classes; the
// caller decides whether that is an error.
func (r *TrainRepo) ListClasses(ctx context.Context, trainID uint64) ([]model.TrainClass, error) {
    const q = `SELECT train_id, code, name, fare_paise, total_seats
               FROM train_classes WHERE train_id = ? ORDER BY code ASC`
    rows, err := r.db.QueryContext(ctx, q, trainID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    classes := make([]model.TrainClass, 0)
    for rows.Next() {
        var c model.TrainClass
        if err := rows.Scan(&c.TrainID, &c.Code, &c.Name, &c.FarePaise, &c.TotalSeats); err != nil {
            return nil, err
        }
        classes = append(classes, c)
    }
    return classes, rows.Err()
}
