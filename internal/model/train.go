package model

// Train is an entry of the read-only train catalog.  The catalog is
// owned by another subsystem; this service only looks trains up when
// validating and executing scheduled jobs and when serving the public
// browse endpoints.
//
// Fields:
//  ID         – primary key identifier.
//  Number     – operator-facing train number (e.g. "12951").
//  Name       – display name.
//  Source     – origin station code.
//  Destination – terminus station code.
//  DistanceKm – route length, used by distance-based fare addends.
type Train struct {
    ID          uint64 // trains.id
    Number      string // trains.number
    Name        string // trains.name
    Source      string // trains.source
    Destination string // trains.destination
    DistanceKm  int    // trains.distance_km
}

// TrainClass is one bookable class on a train together with its unit
// fare.  The processor multiplies FarePaise by the passenger count to
// price a scheduled booking.
//
// Fields:
//  TrainID    – train the class belongs to.
//  Code       – class code (SL, 3A, 2A, 1A, CC, 2S).
//  Name       – display name (e.g. "AC 3 Tier").
//  FarePaise  – unit fare per passenger in minor units.
//  TotalSeats – advertised capacity, display only.
type TrainClass struct {
    TrainID    uint64 // train_classes.train_id
    Code       string // train_classes.code
    Name       string // train_classes.name
    FarePaise  int64  // train_classes.fare_paise
    TotalSeats int    // train_classes.total_seats
}
