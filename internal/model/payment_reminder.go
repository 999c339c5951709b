package model

import "time"

// Delivery states of a payment reminder record.
const (
    ReminderStatusScheduled = "SCHEDULED"
    ReminderStatusSent      = "SENT"
    ReminderStatusFailed    = "FAILED"
)

// Reminder delivery channels.
const (
    ReminderChannelEmail = "EMAIL"
    ReminderChannelSMS   = "SMS"
)

// PaymentReminder is a follow-up nudge tied to a booking with an
// outstanding payment.  The processor creates at most one per job with
// SendCount zero and NextDueAt a fixed lead after creation; subsequent
// scheduling from the job's frequency is the reminder dispatch loop's
// concern.
//
// Fields:
//  ID         – primary key identifier.
//  BookingID  – booking the reminder belongs to.
//  SendCount  – number of reminders delivered so far.
//  LastSentAt – when the most recent reminder went out, if any.
//  NextDueAt  – when the next reminder should go out.
//  Channel    – delivery channel (EMAIL, SMS).
//  Status     – SCHEDULED, SENT or FAILED.
type PaymentReminder struct {
    ID         uint64     // payment_reminders.id
    BookingID  uint64     // payment_reminders.booking_id
    SendCount  int        // payment_reminders.send_count
    LastSentAt *time.Time // payment_reminders.last_sent_at (nullable)
    NextDueAt  time.Time  // payment_reminders.next_due_at
    Channel    string     // payment_reminders.channel
    Status     string     // payment_reminders.status
    CreatedAt  time.Time  // payment_reminders.created_at
}
