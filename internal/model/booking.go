package model

import "time"

// Booking states.  Scheduled bookings are created CONFIRMED; CANCELLED
// exists for manual reconciliation of failed workflows.
const (
    BookingStatusConfirmed = "CONFIRMED"
    BookingStatusCancelled = "CANCELLED"
)

// Payment states for a booking.  A scheduled booking starts PENDING
// with a payment-due instant; the reminder dispatch loop nudges the
// user until it becomes PAID or the due instant passes.
const (
    PaymentStatusPending = "PENDING"
    PaymentStatusPaid    = "PAID"
)

// Booking records a confirmed ticket purchase produced from a
// scheduled job.  The PNR is the human-presentable ten digit code and
// is globally unique; uniqueness is enforced by generate-then-check
// retry against the store, not by the schema alone.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – user who owns the booking.
//  TrainID        – train being travelled.
//  ClassCode      – travel class code.
//  JourneyDate    – calendar date of travel.
//  PNR            – unique ten digit reservation code.
//  Status         – booking state (CONFIRMED, CANCELLED).
//  TotalFarePaise – total fare in currency minor units.
//  BookingType    – GENERAL or TATKAL.
//  PaymentStatus  – PENDING or PAID.
//  PaymentDueAt   – instant by which payment is expected.
type Booking struct {
    ID             uint64    // bookings.id
    UserID         uint64    // bookings.user_id
    TrainID        uint64    // bookings.train_id
    ClassCode      string    // bookings.class_code
    JourneyDate    string    // bookings.journey_date (YYYY-MM-DD)
    PNR            string    // bookings.pnr
    Status         string    // bookings.status
    TotalFarePaise int64     // bookings.total_fare_paise
    BookingType    string    // bookings.booking_type
    PaymentStatus  string    // bookings.payment_status
    PaymentDueAt   time.Time // bookings.payment_due_at
    CreatedAt      time.Time // bookings.created_at
    UpdatedAt      time.Time // bookings.updated_at
}
