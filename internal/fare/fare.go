// Package fare prices a booking.  All amounts are integer paise so
// the arithmetic is exact; nothing here touches a store or a clock.
package fare

import "errors"

// ErrInvalidUnitFare is returned when the catalog supplied a zero or
// negative unit fare.  A free class is a data error, never a valid
// price.
var ErrInvalidUnitFare = errors.New("unit fare must be positive")

// ErrNoPassengers is returned when the passenger count is zero or
// negative.  A booking without passengers must never silently price
// to zero.
var ErrNoPassengers = errors.New("passenger count must be positive")

// Flat tatkal surcharge per passenger by class code, in paise.
// Classes absent from the map take the sleeper surcharge.
var tatkalSurcharge = map[string]int64{
    "SL": 10000,
    "3A": 30000,
    "2A": 40000,
    "1A": 40000,
    "CC": 12500,
    "2S": 1500,
}

// Compute returns the base fare for a booking: unit fare multiplied
// by the passenger count.
func Compute(unitFarePaise int64, passengers int) (int64, error) {
    if unitFarePaise <= 0 {
        return 0, ErrInvalidUnitFare
    }
    if passengers <= 0 {
        return 0, ErrNoPassengers
    }
    return unitFarePaise * int64(passengers), nil
}

// TatkalSurcharge returns the flat per-passenger surcharge applied
// when the booking category is tatkal.  Unknown class codes fall back
// to the sleeper surcharge.
func TatkalSurcharge(classCode string) int64 {
    if s, ok := tatkalSurcharge[classCode]; ok {
        return s
    }
    return tatkalSurcharge["SL"]
}

// ComputeTatkal returns the tatkal fare: the base fare plus the
// per-passenger class surcharge.
func ComputeTatkal(unitFarePaise int64, passengers int, classCode string) (int64, error) {
    base, err := Compute(unitFarePaise, passengers)
    if err != nil {
        return 0, err
    }
    return base + TatkalSurcharge(classCode)*int64(passengers), nil
}

// DistanceCharge returns the distance-based addend for a booking: a
// per-kilometre rate applied once per passenger.  Zero rate or
// distance yields zero; negative inputs are clamped to zero rather
// than producing a negative fare.
func DistanceCharge(perKmPaise int64, distanceKm, passengers int) int64 {
    if perKmPaise <= 0 || distanceKm <= 0 || passengers <= 0 {
        return 0
    }
    return perKmPaise * int64(distanceKm) * int64(passengers)
}
