package repository

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railbook/train-reservation/internal/model"
)

// fakeRow feeds canned column values to the scan helpers the way the
// MySQL driver would under parseTime: DATE and DATETIME columns as
// time.Time, JSON columns as []byte.
type fakeRow struct {
	vals []interface{}
}

func (f *fakeRow) Scan(dest ...interface{}) error {
	if len(dest) != len(f.vals) {
		return fmt.Errorf("scan: want %d destinations, got %d", len(f.vals), len(dest))
	}
	for i, d := range dest {
		switch dst := d.(type) {
		case *uint64:
			*dst = f.vals[i].(uint64)
		case *int64:
			*dst = f.vals[i].(int64)
		case *string:
			*dst = f.vals[i].(string)
		case *time.Time:
			*dst = f.vals[i].(time.Time)
		case *[]byte:
			*dst = f.vals[i].([]byte)
		case *sql.NullInt64:
			*dst = f.vals[i].(sql.NullInt64)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func TestScanJobFormatsJourneyDateAsCalendarDate(t *testing.T) {
	journey := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	scheduled := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	created := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	row := &fakeRow{vals: []interface{}{
		uint64(5), uint64(7), uint64(1), "SL", journey,
		scheduled, []byte(`[{"name":"Asha Rao","age":34,"gender":"F"}]`),
		model.BookingTypeGeneral, []byte(`{"enabled":true,"frequency_hours":6,"max_reminders":3}`),
		sql.NullInt64{}, model.JobStatusPending, created, created,
	}}

	job, err := scanJob(row)
	require.NoError(t, err)

	assert.Equal(t, "2026-09-15", job.JourneyDate,
		"DATE column must not leak its midnight timestamp")
	assert.Equal(t, scheduled, job.ScheduledAt)
	require.Len(t, job.Passengers, 1)
	assert.Equal(t, "Asha Rao", job.Passengers[0].Name)
	assert.True(t, job.Reminder.Enabled)
	assert.Nil(t, job.BookingID)
}

func TestScanJobKeepsBookingID(t *testing.T) {
	at := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	row := &fakeRow{vals: []interface{}{
		uint64(5), uint64(7), uint64(1), "SL", at,
		at, []byte(`[]`), model.BookingTypeGeneral, []byte(`{}`),
		sql.NullInt64{Int64: 9, Valid: true}, model.JobStatusCompleted, at, at,
	}}

	job, err := scanJob(row)
	require.NoError(t, err)
	require.NotNil(t, job.BookingID)
	assert.Equal(t, uint64(9), *job.BookingID)
}

func TestScanBookingFormatsJourneyDateAsCalendarDate(t *testing.T) {
	journey := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 9, 11, 10, 0, 0, 0, time.UTC)

	row := &fakeRow{vals: []interface{}{
		uint64(9), uint64(7), uint64(1), "SL", journey, "4837291056",
		model.BookingStatusConfirmed, int64(100000), model.BookingTypeGeneral,
		model.PaymentStatusPending, due, due, due,
	}}

	booking, err := scanBooking(row)
	require.NoError(t, err)

	assert.Equal(t, "2026-09-15", booking.JourneyDate)
	assert.Equal(t, "4837291056", booking.PNR)
	assert.Equal(t, int64(100000), booking.TotalFarePaise)
}
