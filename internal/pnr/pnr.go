// Package pnr generates reservation identifiers: the globally unique
// ten digit PNR code printed on a ticket, and the cosmetic coach/seat
// labels shown next to each passenger.
package pnr

import (
    "context"
    "errors"
    "fmt"
    "math/rand"
)

// maxAttempts bounds the generate-check loop.  With a nine billion
// code space and realistic record counts the loop terminates on the
// first draw almost every time; the cap only exists so a broken
// existence check cannot spin forever.
const maxAttempts = 100

// ErrExhausted is returned when no unused code was found within
// maxAttempts draws.  Seeing this in production means the existence
// check is misbehaving, not that the space is full.
var ErrExhausted = errors.New("pnr: exhausted attempts generating unique code")

// ExistsFunc reports whether a candidate code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// GenerateUniqueCode draws random ten digit codes from the range
// 1000000000–9999999999 and returns the first one the existence check
// does not know.  Collisions are retried; errors from the check are
// returned as-is.
func GenerateUniqueCode(ctx context.Context, exists ExistsFunc) (string, error) {
    for i := 0; i < maxAttempts; i++ {
        code := fmt.Sprintf("%d", 1_000_000_000+rand.Int63n(9_000_000_000))
        taken, err := exists(ctx, code)
        if err != nil {
            return "", err
        }
        if !taken {
            return code, nil
        }
    }
    return "", ErrExhausted
}

// seatSpace describes the coach prefix and dimensions of one class's
// seat numbering.
type seatSpace struct {
    prefix  string
    coaches int
    seats   int
}

// Seat spaces by class code.  These mirror the usual coach layouts
// (sleeper S1–S10 with 72 berths, AC three tier B coaches with 64,
// and so on) but are used for display only.
var seatSpaces = map[string]seatSpace{
    "SL": {prefix: "S", coaches: 10, seats: 72},
    "3A": {prefix: "B", coaches: 6, seats: 64},
    "2A": {prefix: "A", coaches: 4, seats: 46},
    "1A": {prefix: "H", coaches: 2, seats: 24},
    "CC": {prefix: "C", coaches: 8, seats: 78},
    "2S": {prefix: "D", coaches: 10, seats: 108},
}

// GenerateSeatLabel returns a random "<prefix><coach>-<seat>" label
// from the class's seat space, e.g. "S4-23" for sleeper.  Unknown
// class codes fall back to the sleeper space.  Labels are cosmetic
// placeholders: they carry no uniqueness guarantee and do not touch
// any seat inventory.
func GenerateSeatLabel(classCode string) string {
    space, ok := seatSpaces[classCode]
    if !ok {
        space = seatSpaces["SL"]
    }
    coach := 1 + rand.Intn(space.coaches)
    seat := 1 + rand.Intn(space.seats)
    return fmt.Sprintf("%s%d-%d", space.prefix, coach, seat)
}
