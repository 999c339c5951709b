package model

import "time"

// Scheduled job lifecycle states.  A job starts PENDING and moves to
// exactly one terminal state: COMPLETED when the processor created a
// booking for it, FAILED when the workflow could not finish, or
// CANCELLED when the owning user withdrew it before execution.
// Terminal states are immutable; jobs are never deleted so the row
// remains as an audit trail.
const (
    JobStatusPending   = "PENDING"
    JobStatusCompleted = "COMPLETED"
    JobStatusFailed    = "FAILED"
    JobStatusCancelled = "CANCELLED"
)

// Booking categories accepted on a scheduled job.  TATKAL is the
// short-notice, surcharge-bearing category; GENERAL is everything else.
const (
    BookingTypeGeneral = "GENERAL"
    BookingTypeTatkal  = "TATKAL"
)

// PassengerInput is one entry of a scheduled job's passenger manifest.
// The manifest is stored as a JSON column on scheduled_jobs and its
// order is preserved when passengers are fanned out onto a booking.
type PassengerInput struct {
    Name            string `json:"name"`
    Age             int    `json:"age"`
    Gender          string `json:"gender"`
    BerthPreference string `json:"berth_preference,omitempty"`
}

// ReminderConfig controls whether a payment reminder is scheduled for
// the booking produced by a job.  FrequencyHours governs reminders
// after the first one and is acted on by the reminder dispatch loop,
// not by the processor.
type ReminderConfig struct {
    Enabled        bool `json:"enabled"`
    FrequencyHours int  `json:"frequency_hours"`
    MaxReminders   int  `json:"max_reminders"`
}

// ScheduledJob is a user's deferred booking intent: book the given
// train/class for the given journey date at ScheduledAt, without
// further user interaction.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who created the job.
//  TrainID     – target train.
//  ClassCode   – target class on that train (e.g. "SL", "3A").
//  JourneyDate – calendar date of travel (no time component).
//  ScheduledAt – instant at which the job becomes due.
//  Passengers  – ordered passenger manifest (JSON column).
//  BookingType – GENERAL or TATKAL.
//  Reminder    – payment reminder configuration (JSON column).
//  BookingID   – resulting booking, set when status is COMPLETED.
//  Status      – PENDING, COMPLETED, FAILED or CANCELLED.
type ScheduledJob struct {
    ID          uint64           // scheduled_jobs.id
    UserID      uint64           // scheduled_jobs.user_id
    TrainID     uint64           // scheduled_jobs.train_id
    ClassCode   string           // scheduled_jobs.class_code
    JourneyDate string           // scheduled_jobs.journey_date (YYYY-MM-DD)
    ScheduledAt time.Time        // scheduled_jobs.scheduled_at
    Passengers  []PassengerInput // scheduled_jobs.passengers (JSON)
    BookingType string           // scheduled_jobs.booking_type
    Reminder    ReminderConfig   // scheduled_jobs.reminder_config (JSON)
    BookingID   *uint64          // scheduled_jobs.booking_id (nullable)
    Status      string           // scheduled_jobs.status
    CreatedAt   time.Time        // scheduled_jobs.created_at
    UpdatedAt   time.Time        // scheduled_jobs.updated_at
}

// IsDue reports whether the job should be picked up by a sweep running
// at the given instant: it is still pending and its scheduled instant
// has passed.  The boundary is inclusive; a job scheduled for exactly
// now is due.
func (j *ScheduledJob) IsDue(now time.Time) bool {
    return j.Status == JobStatusPending && !j.ScheduledAt.After(now)
}

// IsPending reports whether the job can still be claimed or cancelled.
func (j *ScheduledJob) IsPending() bool {
    return j.Status == JobStatusPending
}
