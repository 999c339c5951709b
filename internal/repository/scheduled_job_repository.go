package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/railbook/train-reservation/internal/model"
)

// ScheduledJobRepo provides persistence for scheduled booking jobs.
// A job row is the durable record of a user's deferred booking
// intent; it is created by the HTTP layer, claimed and completed (or
// failed) by the processor, and cancelled by its owner.  Rows are
// never deleted so the table doubles as an audit trail.  All
// timestamp fields are stored in UTC.
type ScheduledJobRepo struct {
    db *sql.DB
}

// NewScheduledJobRepo returns a new ScheduledJobRepo bound to the given database.
func NewScheduledJobRepo(db *sql.DB) *ScheduledJobRepo { return &ScheduledJobRepo{db: db} }

const jobColumns = `id, user_id, train_id, class_code, journey_date, scheduled_at,
                    passengers, booking_type, reminder_config, booking_id, status,
                    created_at, updated_at`

// Create inserts a new scheduled job with status PENDING and populates
// the generated ID and timestamps on the provided model.  The
// passenger manifest and reminder configuration are serialized to
// JSON columns.
func (r *ScheduledJobRepo) Create(ctx context.Context, job *model.ScheduledJob) error {
    passengers, err := json.Marshal(job.Passengers)
    if err != nil {
        return fmt.Errorf("marshal passengers: %w", err)
    }
    reminder, err := json.Marshal(job.Reminder)
    if err != nil {
        return fmt.Errorf("marshal reminder config: %w", err)
    }
    const q = `INSERT INTO scheduled_jobs
               (user_id, train_id, class_code, journey_date, scheduled_at,
                passengers, booking_type, reminder_config, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q,
        job.UserID, job.TrainID, job.ClassCode, job.JourneyDate,
        job.ScheduledAt.UTC(), passengers, job.BookingType, reminder,
        model.JobStatusPending,
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    job.ID = uint64(id)
    job.Status = model.JobStatusPending
    // Query back the row to populate timestamps and defaults.
    fetched, err := r.GetByID(ctx, job.ID)
    if err != nil {
        return err
    }
    *job = *fetched
    return nil
}

// GetByID returns the job with the given ID or ErrJobNotFound.
func (r *ScheduledJobRepo) GetByID(ctx context.Context, id uint64) (*model.ScheduledJob, error) {
    q := `SELECT ` + jobColumns + ` FROM scheduled_jobs WHERE id = ?`
    job, err := scanJob(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrJobNotFound
    }
    return job, err
}

// ListByUser returns all jobs created by the given user, newest
// first.  An empty slice is returned when the user has none.
func (r *ScheduledJobRepo) ListByUser(ctx context.Context, userID uint64) ([]model.ScheduledJob, error) {
    q := `SELECT ` + jobColumns + ` FROM scheduled_jobs WHERE user_id = ? ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    jobs := make([]model.ScheduledJob, 0)
    for rows.Next() {
        job, err := scanJob(rows)
        if err != nil {
            return nil, err
        }
        jobs = append(jobs, *job)
    }
    return jobs, rows.Err()
}

// ListDue returns every job that a sweep running at the given instant
// should process: status PENDING and scheduled_at at or before now.
// Jobs scheduled in the future or already in a terminal state are
// excluded.  Oldest first so long-overdue jobs recover before fresh
// ones.
func (r *ScheduledJobRepo) ListDue(ctx context.Context, now time.Time) ([]model.ScheduledJob, error) {
    q := `SELECT ` + jobColumns + ` FROM scheduled_jobs
          WHERE status = ? AND scheduled_at <= ?
          ORDER BY scheduled_at ASC`
    rows, err := r.db.QueryContext(ctx, q, model.JobStatusPending, now.UTC())
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    jobs := make([]model.ScheduledJob, 0)
    for rows.Next() {
        job, err := scanJob(rows)
        if err != nil {
            return nil, err
        }
        jobs = append(jobs, *job)
    }
    return jobs, rows.Err()
}

// MarkCompleted transitions a job from PENDING to COMPLETED and
// records the booking it produced.  The status predicate in the WHERE
// clause is the claim: when two sweeps race on the same job only one
// UPDATE matches a row, and the loser receives ErrNotPending.
func (r *ScheduledJobRepo) MarkCompleted(ctx context.Context, id, bookingID uint64) error {
    const q = `UPDATE scheduled_jobs
               SET status = ?, booking_id = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND status = ?`
    result, err := r.db.ExecContext(ctx, q, model.JobStatusCompleted, bookingID, id, model.JobStatusPending)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotPending
    }
    return nil
}

// MarkFailed transitions a job from PENDING to FAILED.  Guarded by
// the same status predicate as MarkCompleted so a job that was
// completed by a concurrent sweep is never flipped to FAILED.
func (r *ScheduledJobRepo) MarkFailed(ctx context.Context, id uint64) error {
    const q = `UPDATE scheduled_jobs
               SET status = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND status = ?`
    result, err := r.db.ExecContext(ctx, q, model.JobStatusFailed, id, model.JobStatusPending)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotPending
    }
    return nil
}

// Cancel withdraws a pending job on behalf of its owner.  It returns
// ErrJobNotFound when the job does not exist, ErrForbidden when the
// caller does not own it and ErrNotPending when the job has already
// reached a terminal state.  The ownership and status checks run
// before any mutation so a rejected cancel leaves no trace.
func (r *ScheduledJobRepo) Cancel(ctx context.Context, id, userID uint64) error {
    job, err := r.GetByID(ctx, id)
    if err != nil {
        return err
    }
    if job.UserID != userID {
        return ErrForbidden
    }
    if !job.IsPending() {
        return ErrNotPending
    }
    const q = `UPDATE scheduled_jobs
               SET status = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND status = ?`
    result, err := r.db.ExecContext(ctx, q, model.JobStatusCancelled, id, model.JobStatusPending)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Claimed by the processor between the read and the update.
        return ErrNotPending
    }
    return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*model.ScheduledJob, error) {
    var job model.ScheduledJob
    var journey time.Time
    var passengers, reminder []byte
    var bookingID sql.NullInt64
    err := row.Scan(
        &job.ID, &job.UserID, &job.TrainID, &job.ClassCode, &journey,
        &job.ScheduledAt, &passengers, &job.BookingType, &reminder,
        &bookingID, &job.Status, &job.CreatedAt, &job.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    // DATE columns come back as time.Time under parseTime; the model
    // carries the calendar date only.
    job.JourneyDate = journey.Format("2006-01-02")
    if err := json.Unmarshal(passengers, &job.Passengers); err != nil {
        return nil, fmt.Errorf("unmarshal passengers: %w", err)
    }
    if err := json.Unmarshal(reminder, &job.Reminder); err != nil {
        return nil, fmt.Errorf("unmarshal reminder config: %w", err)
    }
    if bookingID.Valid {
        bid := uint64(bookingID.Int64)
        job.BookingID = &bid
    }
    return &job, nil
}
