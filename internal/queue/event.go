// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingProcessedEvent is published when the processor turns a
// scheduled job into a booking. It contains enough information for
// the notification sender and analytics consumers to act without
// querying the primary database.
type BookingProcessedEvent struct {
    JobID          uint64 `json:"job_id"`
    BookingID      uint64 `json:"booking_id"`
    UserID         uint64 `json:"user_id"`
    TrainID        uint64 `json:"train_id"`
    ClassCode      string `json:"class_code"`
    JourneyDate    string `json:"journey_date"`
    PNR            string `json:"pnr"`
    TotalFarePaise int64  `json:"total_fare_paise"`
    PassengerCount int    `json:"passenger_count"`
    PaymentDueAt   string `json:"payment_due_at"`
    ProcessedAt    string `json:"processed_at"`
}
