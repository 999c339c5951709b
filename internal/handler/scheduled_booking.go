package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/railbook/train-reservation/internal/model"
    "github.com/railbook/train-reservation/internal/repository"
)

// Passenger manifest limits enforced at job creation.
const (
    maxPassengers = 6
    minAge        = 1
    maxAge        = 120
)

// JobStore is the slice of the scheduled-job repository the HTTP
// layer consumes.  Satisfied by *repository.ScheduledJobRepo.
type JobStore interface {
    Create(ctx context.Context, job *model.ScheduledJob) error
    GetByID(ctx context.Context, id uint64) (*model.ScheduledJob, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.ScheduledJob, error)
    Cancel(ctx context.Context, id, userID uint64) error
}

// BookingReader loads the booking and passengers a completed job
// produced, for list enrichment.
type BookingReader interface {
    GetByID(ctx context.Context, id uint64) (*model.Booking, error)
}

// PassengerReader lists the passengers of a booking.
type PassengerReader interface {
    ListByBooking(ctx context.Context, bookingID uint64) ([]model.Passenger, error)
}

// JobProcessor runs the booking workflow for one job.  Satisfied by
// *processor.Processor; the "process now" endpoint invokes it
// synchronously under the same ownership and status rules as the
// background sweep.
type JobProcessor interface {
    ProcessJob(ctx context.Context, jobID uint64) (*model.Booking, error)
}

// ScheduledBookingHandler implements the scheduled-booking API: a
// user files a booking intent for a future instant (typically the
// moment tatkal opens), lists and cancels their jobs, and can trigger
// processing out-of-band.  All methods assume JWT authentication has
// already run; they return 401 if the user ID cannot be extracted
// from the context.
type ScheduledBookingHandler struct {
    Jobs       JobStore
    Trains     Catalog
    Bookings   BookingReader
    Passengers PassengerReader
    Processor  JobProcessor
}

// NewScheduledBookingHandler constructs the handler.  All dependencies
// must be non-nil.
func NewScheduledBookingHandler(jobs JobStore, trains Catalog, bookings BookingReader, passengers PassengerReader, proc JobProcessor) *ScheduledBookingHandler {
    if jobs == nil || trains == nil || bookings == nil || passengers == nil || proc == nil {
        panic("nil dependency passed to NewScheduledBookingHandler")
    }
    return &ScheduledBookingHandler{
        Jobs:       jobs,
        Trains:     trains,
        Bookings:   bookings,
        Passengers: passengers,
        Processor:  proc,
    }
}

type passengerRequest struct {
    Name            string `json:"name"`
    Age             int    `json:"age"`
    Gender          string `json:"gender"`
    BerthPreference string `json:"berth_preference"`
}

type reminderRequest struct {
    Enabled        bool `json:"enabled"`
    FrequencyHours int  `json:"frequency_hours"`
    MaxReminders   int  `json:"max_reminders"`
}

type createJobRequest struct {
    TrainID     uint64             `json:"train_id"`
    ClassCode   string             `json:"class_code"`
    JourneyDate string             `json:"journey_date"`
    ScheduledAt string             `json:"scheduled_at"`
    BookingType string             `json:"booking_type"`
    Passengers  []passengerRequest `json:"passengers"`
    Reminder    reminderRequest    `json:"reminder"`
}

// Create handles POST /v1/scheduled-bookings.  Every validation
// failure is rejected here, before a job row is ever persisted; a job
// that makes it into the store is well-formed by construction.
func (h *ScheduledBookingHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body createJobRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.TrainID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "train_id is required"})
    }
    classCode := strings.ToUpper(strings.TrimSpace(body.ClassCode))
    if classCode == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "class_code is required"})
    }
    journeyDate, err := time.Parse("2006-01-02", body.JourneyDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "journey_date must be YYYY-MM-DD"})
    }
    scheduledAt, err := time.Parse(time.RFC3339, body.ScheduledAt)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_at must be RFC3339"})
    }
    now := time.Now().UTC()
    if !scheduledAt.After(now) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_at must be in the future"})
    }
    bookingType := strings.ToUpper(strings.TrimSpace(body.BookingType))
    if bookingType == "" {
        bookingType = model.BookingTypeGeneral
    }
    if bookingType != model.BookingTypeGeneral && bookingType != model.BookingTypeTatkal {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_type must be GENERAL or TATKAL"})
    }
    if len(body.Passengers) == 0 || len(body.Passengers) > maxPassengers {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "passengers must contain 1 to 6 entries"})
    }
    manifest := make([]model.PassengerInput, 0, len(body.Passengers))
    for _, p := range body.Passengers {
        name := strings.TrimSpace(p.Name)
        if name == "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger name is required"})
        }
        if p.Age < minAge || p.Age > maxAge {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger age must be between 1 and 120"})
        }
        gender := strings.ToUpper(strings.TrimSpace(p.Gender))
        if gender != "M" && gender != "F" && gender != "O" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger gender must be M, F or O"})
        }
        manifest = append(manifest, model.PassengerInput{
            Name:            name,
            Age:             p.Age,
            Gender:          gender,
            BerthPreference: strings.ToUpper(strings.TrimSpace(p.BerthPreference)),
        })
    }
    reminder := model.ReminderConfig{
        Enabled:        body.Reminder.Enabled,
        FrequencyHours: body.Reminder.FrequencyHours,
        MaxReminders:   body.Reminder.MaxReminders,
    }
    if reminder.Enabled && (reminder.FrequencyHours < 1 || reminder.MaxReminders < 1) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reminder frequency_hours and max_reminders must be at least 1"})
    }

    ctx := c.Request().Context()
    // The target train and class must exist at creation time; losing
    // them later is the processor's problem, not the user's.
    if _, err := h.Trains.GetByID(ctx, body.TrainID); err != nil {
        if errors.Is(err, repository.ErrTrainNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    classes, err := h.Trains.ListClasses(ctx, body.TrainID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    found := false
    for _, cl := range classes {
        if cl.Code == classCode {
            found = true
            break
        }
    }
    if !found {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "class not available on this train"})
    }

    job := &model.ScheduledJob{
        UserID:      userID,
        TrainID:     body.TrainID,
        ClassCode:   classCode,
        JourneyDate: journeyDate.Format("2006-01-02"),
        ScheduledAt: scheduledAt.UTC(),
        Passengers:  manifest,
        BookingType: bookingType,
        Reminder:    reminder,
    }
    if err := h.Jobs.Create(ctx, job); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create scheduled booking"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "job_id":       job.ID,
        "scheduled_at": job.ScheduledAt.Format(time.RFC3339),
        "status":       job.Status,
    })
}

type jobResponse struct {
    JobID       uint64             `json:"job_id"`
    TrainID     uint64             `json:"train_id"`
    Train       *trainResponse     `json:"train,omitempty"`
    ClassCode   string             `json:"class_code"`
    JourneyDate string             `json:"journey_date"`
    ScheduledAt string             `json:"scheduled_at"`
    BookingType string             `json:"booking_type"`
    Status      string             `json:"status"`
    Booking     *bookingResponse   `json:"booking,omitempty"`
}

type bookingResponse struct {
    BookingID      uint64              `json:"booking_id"`
    PNR            string              `json:"pnr"`
    Status         string              `json:"status"`
    TotalFarePaise int64               `json:"total_fare_paise"`
    PaymentStatus  string              `json:"payment_status"`
    PaymentDueAt   string              `json:"payment_due_at"`
    Passengers     []passengerResponse `json:"passengers"`
}

type passengerResponse struct {
    Name      string `json:"name"`
    Age       int    `json:"age"`
    Gender    string `json:"gender"`
    SeatLabel string `json:"seat_label"`
    Status    string `json:"status"`
}

// List handles GET /v1/scheduled-bookings.  Each job is enriched with
// a train summary and, when completed, the booking it produced along
// with its passengers.
func (h *ScheduledBookingHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    jobs, err := h.Jobs.ListByUser(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]jobResponse, 0, len(jobs))
    for _, job := range jobs {
        resp := jobResponse{
            JobID:       job.ID,
            TrainID:     job.TrainID,
            ClassCode:   job.ClassCode,
            JourneyDate: job.JourneyDate,
            ScheduledAt: job.ScheduledAt.Format(time.RFC3339),
            BookingType: job.BookingType,
            Status:      job.Status,
        }
        if train, err := h.Trains.GetByID(ctx, job.TrainID); err == nil {
            resp.Train = &trainResponse{
                ID: train.ID, Number: train.Number, Name: train.Name,
                Source: train.Source, Destination: train.Destination, DistanceKm: train.DistanceKm,
            }
        }
        if job.Status == model.JobStatusCompleted && job.BookingID != nil {
            if booking, err := h.Bookings.GetByID(ctx, *job.BookingID); err == nil {
                br := &bookingResponse{
                    BookingID:      booking.ID,
                    PNR:            booking.PNR,
                    Status:         booking.Status,
                    TotalFarePaise: booking.TotalFarePaise,
                    PaymentStatus:  booking.PaymentStatus,
                    PaymentDueAt:   booking.PaymentDueAt.Format(time.RFC3339),
                    Passengers:     []passengerResponse{},
                }
                if passengers, err := h.Passengers.ListByBooking(ctx, booking.ID); err == nil {
                    for _, p := range passengers {
                        br.Passengers = append(br.Passengers, passengerResponse{
                            Name: p.Name, Age: p.Age, Gender: p.Gender,
                            SeatLabel: p.SeatLabel, Status: p.Status,
                        })
                    }
                }
                resp.Booking = br
            }
        }
        out = append(out, resp)
    }
    return c.JSON(http.StatusOK, echo.Map{"scheduled_bookings": out})
}

// ProcessNow handles POST /v1/scheduled-bookings/:id/process.  The
// caller must own the job; processing runs synchronously through the
// same primitive the background sweep uses, so the idempotency and
// claim guarantees hold regardless of who triggers it.
func (h *ScheduledBookingHandler) ProcessNow(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    jobID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
    }
    ctx := c.Request().Context()
    job, err := h.Jobs.GetByID(ctx, jobID)
    if err != nil {
        if errors.Is(err, repository.ErrJobNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "scheduled booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if job.UserID != userID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    booking, err := h.Processor.ProcessJob(ctx, jobID)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrNotPending):
            return c.JSON(http.StatusConflict, echo.Map{"error": "scheduled booking already handled"})
        case errors.Is(err, repository.ErrClassNotFound):
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "class no longer available on this train"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "processing failed"})
        }
    }
    return c.JSON(http.StatusOK, echo.Map{
        "job_id":           jobID,
        "booking_id":       booking.ID,
        "pnr":              booking.PNR,
        "status":           booking.Status,
        "total_fare_paise": booking.TotalFarePaise,
        "payment_status":   booking.PaymentStatus,
        "payment_due_at":   booking.PaymentDueAt.Format(time.RFC3339),
    })
}

// Cancel handles DELETE /v1/scheduled-bookings/:id.  Only the owner
// may cancel and only while the job is still pending; cancelling a
// handled job is rejected, never silently accepted.
func (h *ScheduledBookingHandler) Cancel(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    jobID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
    }
    if err := h.Jobs.Cancel(c.Request().Context(), jobID, userID); err != nil {
        switch {
        case errors.Is(err, repository.ErrJobNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "scheduled booking not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        case errors.Is(err, repository.ErrNotPending):
            return c.JSON(http.StatusConflict, echo.Map{"error": "scheduled booking is not pending"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
    }
    return c.JSON(http.StatusOK, echo.Map{
        "job_id": jobID,
        "status": model.JobStatusCancelled,
    })
}
