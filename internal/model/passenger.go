package model

import "time"

// Passenger states.  Passengers created by the scheduled-booking
// processor start WAITLISTED: a scheduled booking is not instantly
// guaranteed a confirmed seat and only moves to CONFIRMED once payment
// completes.
const (
    PassengerStatusWaitlisted = "WAITLISTED"
    PassengerStatusConfirmed  = "CONFIRMED"
)

// Passenger is one traveller on a booking.  The seat label is a
// display placeholder drawn from the class's coach/seat space; it
// carries no uniqueness or inventory guarantee.
//
// Fields:
//  ID              – primary key identifier.
//  BookingID       – booking the passenger belongs to.
//  Name            – traveller name.
//  Age             – traveller age (validated 1–120 at job creation).
//  Gender          – M, F or O.
//  BerthPreference – optional preferred berth (e.g. "LOWER").
//  SeatLabel       – cosmetic coach/seat label (e.g. "S4-23").
//  Status          – WAITLISTED or CONFIRMED.
type Passenger struct {
    ID              uint64    // booking_passengers.id
    BookingID       uint64    // booking_passengers.booking_id
    Name            string    // booking_passengers.name
    Age             int       // booking_passengers.age
    Gender          string    // booking_passengers.gender
    BerthPreference string    // booking_passengers.berth_preference
    SeatLabel       string    // booking_passengers.seat_label
    Status          string    // booking_passengers.status
    CreatedAt       time.Time // booking_passengers.created_at
}
