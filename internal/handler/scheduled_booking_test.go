package handler_test

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/railbook/train-reservation/internal/handler"
    "github.com/railbook/train-reservation/internal/model"
    "github.com/railbook/train-reservation/internal/repository"
)

type fakeJobStore struct {
    jobs   map[uint64]*model.ScheduledJob
    nextID uint64
}

func newFakeJobStore(jobs ...*model.ScheduledJob) *fakeJobStore {
    s := &fakeJobStore{jobs: make(map[uint64]*model.ScheduledJob), nextID: 100}
    for _, j := range jobs {
        s.jobs[j.ID] = j
    }
    return s
}

func (s *fakeJobStore) Create(_ context.Context, job *model.ScheduledJob) error {
    s.nextID++
    job.ID = s.nextID
    job.Status = model.JobStatusPending
    dup := *job
    s.jobs[job.ID] = &dup
    return nil
}

func (s *fakeJobStore) GetByID(_ context.Context, id uint64) (*model.ScheduledJob, error) {
    j, ok := s.jobs[id]
    if !ok {
        return nil, repository.ErrJobNotFound
    }
    dup := *j
    return &dup, nil
}

func (s *fakeJobStore) ListByUser(_ context.Context, userID uint64) ([]model.ScheduledJob, error) {
    out := make([]model.ScheduledJob, 0)
    for _, j := range s.jobs {
        if j.UserID == userID {
            out = append(out, *j)
        }
    }
    return out, nil
}

func (s *fakeJobStore) Cancel(_ context.Context, id, userID uint64) error {
    j, ok := s.jobs[id]
    if !ok {
        return repository.ErrJobNotFound
    }
    if j.UserID != userID {
        return repository.ErrForbidden
    }
    if j.Status != model.JobStatusPending {
        return repository.ErrNotPending
    }
    j.Status = model.JobStatusCancelled
    return nil
}

type fakeCatalog struct {
    trains  map[uint64]*model.Train
    classes map[uint64][]model.TrainClass
}

func (c *fakeCatalog) List(_ context.Context) ([]model.Train, error) {
    out := make([]model.Train, 0, len(c.trains))
    for _, t := range c.trains {
        out = append(out, *t)
    }
    return out, nil
}

func (c *fakeCatalog) GetByID(_ context.Context, id uint64) (*model.Train, error) {
    t, ok := c.trains[id]
    if !ok {
        return nil, repository.ErrTrainNotFound
    }
    return t, nil
}

func (c *fakeCatalog) ListClasses(_ context.Context, trainID uint64) ([]model.TrainClass, error) {
    return c.classes[trainID], nil
}

type fakeBookingReader struct {
    bookings map[uint64]*model.Booking
}

func (r *fakeBookingReader) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
    b, ok := r.bookings[id]
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    return b, nil
}

type fakePassengerReader struct {
    byBooking map[uint64][]model.Passenger
}

func (r *fakePassengerReader) ListByBooking(_ context.Context, bookingID uint64) ([]model.Passenger, error) {
    return r.byBooking[bookingID], nil
}

type fakeProcessor struct {
    result  *model.Booking
    err     error
    calls   int
    lastJob uint64
}

func (p *fakeProcessor) ProcessJob(_ context.Context, jobID uint64) (*model.Booking, error) {
    p.calls++
    p.lastJob = jobID
    if p.err != nil {
        return nil, p.err
    }
    return p.result, nil
}

func defaultCatalog() *fakeCatalog {
    return &fakeCatalog{
        trains: map[uint64]*model.Train{
            1: {ID: 1, Number: "12951", Name: "Rajdhani Express", Source: "BCT", Destination: "NDLS", DistanceKm: 1384},
        },
        classes: map[uint64][]model.TrainClass{
            1: {
                {TrainID: 1, Code: "SL", Name: "Sleeper", FarePaise: 50000},
                {TrainID: 1, Code: "3A", Name: "AC 3 Tier", FarePaise: 150000},
            },
        },
    }
}

func newHandler(jobs *fakeJobStore, proc *fakeProcessor) *handler.ScheduledBookingHandler {
    return handler.NewScheduledBookingHandler(
        jobs,
        defaultCatalog(),
        &fakeBookingReader{bookings: map[uint64]*model.Booking{}},
        &fakePassengerReader{byBooking: map[uint64][]model.Passenger{}},
        proc,
    )
}

func doRequest(t *testing.T, h echo.HandlerFunc, method, target, body string, userID uint64, params ...string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(method, target, strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("user_id", userID)
    var names, values []string
    for i := 0; i+1 < len(params); i += 2 {
        names = append(names, params[i])
        values = append(values, params[i+1])
    }
    c.SetParamNames(names...)
    c.SetParamValues(values...)
    require.NoError(t, h(c))
    return rec
}

func validCreateBody() string {
    scheduledAt := time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)
    return fmt.Sprintf(`{
        "train_id": 1,
        "class_code": "SL",
        "journey_date": "2026-09-15",
        "scheduled_at": %q,
        "booking_type": "TATKAL",
        "passengers": [{"name": "Asha Rao", "age": 34, "gender": "F"}],
        "reminder": {"enabled": true, "frequency_hours": 6, "max_reminders": 3}
    }`, scheduledAt)
}

func TestCreateScheduledBooking(t *testing.T) {
    jobs := newFakeJobStore()
    h := newHandler(jobs, &fakeProcessor{})

    rec := doRequest(t, h.Create, http.MethodPost, "/v1/scheduled-bookings", validCreateBody(), 7)
    require.Equal(t, http.StatusCreated, rec.Code)

    var resp struct {
        JobID  uint64 `json:"job_id"`
        Status string `json:"status"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, model.JobStatusPending, resp.Status)

    stored, err := jobs.GetByID(context.Background(), resp.JobID)
    require.NoError(t, err)
    assert.Equal(t, uint64(7), stored.UserID)
    assert.Equal(t, model.BookingTypeTatkal, stored.BookingType)
    assert.Len(t, stored.Passengers, 1)
}

func TestCreateRejectsPastScheduledAt(t *testing.T) {
    jobs := newFakeJobStore()
    h := newHandler(jobs, &fakeProcessor{})

    past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
    bad := fmt.Sprintf(`{"train_id":1,"class_code":"SL","journey_date":"2026-09-15","scheduled_at":%q,
        "passengers":[{"name":"A","age":30,"gender":"M"}]}`, past)

    rec := doRequest(t, h.Create, http.MethodPost, "/v1/scheduled-bookings", bad, 7)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Empty(t, jobs.jobs, "no job persisted on validation failure")
}

func TestCreateRejectsBadManifests(t *testing.T) {
    future := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
    cases := map[string]string{
        "empty manifest": `[]`,
        "too many": `[{"name":"A","age":30,"gender":"M"},{"name":"B","age":30,"gender":"M"},
            {"name":"C","age":30,"gender":"M"},{"name":"D","age":30,"gender":"M"},
            {"name":"E","age":30,"gender":"M"},{"name":"F","age":30,"gender":"M"},
            {"name":"G","age":30,"gender":"M"}]`,
        "age out of range": `[{"name":"A","age":121,"gender":"M"}]`,
        "bad gender":       `[{"name":"A","age":30,"gender":"X"}]`,
        "missing name":     `[{"name":"  ","age":30,"gender":"M"}]`,
    }
    for name, manifest := range cases {
        t.Run(name, func(t *testing.T) {
            jobs := newFakeJobStore()
            h := newHandler(jobs, &fakeProcessor{})
            body := fmt.Sprintf(`{"train_id":1,"class_code":"SL","journey_date":"2026-09-15",
                "scheduled_at":%q,"passengers":%s}`, future, manifest)
            rec := doRequest(t, h.Create, http.MethodPost, "/v1/scheduled-bookings", body, 7)
            assert.Equal(t, http.StatusBadRequest, rec.Code)
            assert.Empty(t, jobs.jobs)
        })
    }
}

func TestCreateRejectsUnknownClass(t *testing.T) {
    jobs := newFakeJobStore()
    h := newHandler(jobs, &fakeProcessor{})
    future := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
    body := fmt.Sprintf(`{"train_id":1,"class_code":"1A","journey_date":"2026-09-15",
        "scheduled_at":%q,"passengers":[{"name":"A","age":30,"gender":"M"}]}`, future)

    rec := doRequest(t, h.Create, http.MethodPost, "/v1/scheduled-bookings", body, 7)
    assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateRejectsUnknownTrain(t *testing.T) {
    jobs := newFakeJobStore()
    h := newHandler(jobs, &fakeProcessor{})
    future := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
    body := fmt.Sprintf(`{"train_id":42,"class_code":"SL","journey_date":"2026-09-15",
        "scheduled_at":%q,"passengers":[{"name":"A","age":30,"gender":"M"}]}`, future)

    rec := doRequest(t, h.Create, http.MethodPost, "/v1/scheduled-bookings", body, 7)
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelPendingJob(t *testing.T) {
    job := &model.ScheduledJob{ID: 5, UserID: 7, Status: model.JobStatusPending}
    jobs := newFakeJobStore(job)
    h := newHandler(jobs, &fakeProcessor{})

    rec := doRequest(t, h.Cancel, http.MethodDelete, "/v1/scheduled-bookings/5", "", 7, "id", "5")
    require.Equal(t, http.StatusOK, rec.Code)

    stored, _ := jobs.GetByID(context.Background(), 5)
    assert.Equal(t, model.JobStatusCancelled, stored.Status)
}

func TestCancelCompletedJobIsRejected(t *testing.T) {
    job := &model.ScheduledJob{ID: 5, UserID: 7, Status: model.JobStatusCompleted}
    jobs := newFakeJobStore(job)
    h := newHandler(jobs, &fakeProcessor{})

    rec := doRequest(t, h.Cancel, http.MethodDelete, "/v1/scheduled-bookings/5", "", 7, "id", "5")
    assert.Equal(t, http.StatusConflict, rec.Code)

    stored, _ := jobs.GetByID(context.Background(), 5)
    assert.Equal(t, model.JobStatusCompleted, stored.Status, "status untouched by rejected cancel")
}

func TestCancelForeignJobIsForbidden(t *testing.T) {
    job := &model.ScheduledJob{ID: 5, UserID: 7, Status: model.JobStatusPending}
    jobs := newFakeJobStore(job)
    h := newHandler(jobs, &fakeProcessor{})

    rec := doRequest(t, h.Cancel, http.MethodDelete, "/v1/scheduled-bookings/5", "", 8, "id", "5")
    assert.Equal(t, http.StatusForbidden, rec.Code)

    stored, _ := jobs.GetByID(context.Background(), 5)
    assert.Equal(t, model.JobStatusPending, stored.Status)
}

func TestProcessNow(t *testing.T) {
    job := &model.ScheduledJob{ID: 5, UserID: 7, Status: model.JobStatusPending}
    jobs := newFakeJobStore(job)
    proc := &fakeProcessor{result: &model.Booking{
        ID: 9, PNR: "4837291056", Status: model.BookingStatusConfirmed,
        TotalFarePaise: 100000, PaymentStatus: model.PaymentStatusPending,
        PaymentDueAt: time.Now().UTC().Add(24 * time.Hour),
    }}
    h := newHandler(jobs, proc)

    rec := doRequest(t, h.ProcessNow, http.MethodPost, "/v1/scheduled-bookings/5/process", "", 7, "id", "5")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, 1, proc.calls)
    assert.Equal(t, uint64(5), proc.lastJob)
    assert.Contains(t, rec.Body.String(), "4837291056")
}

func TestProcessNowForeignJobIsForbidden(t *testing.T) {
    job := &model.ScheduledJob{ID: 5, UserID: 7, Status: model.JobStatusPending}
    jobs := newFakeJobStore(job)
    proc := &fakeProcessor{}
    h := newHandler(jobs, proc)

    rec := doRequest(t, h.ProcessNow, http.MethodPost, "/v1/scheduled-bookings/5/process", "", 8, "id", "5")
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.Equal(t, 0, proc.calls, "processor never invoked for a foreign job")
}

func TestProcessNowAlreadyHandled(t *testing.T) {
    job := &model.ScheduledJob{ID: 5, UserID: 7, Status: model.JobStatusCompleted}
    jobs := newFakeJobStore(job)
    proc := &fakeProcessor{err: repository.ErrNotPending}
    h := newHandler(jobs, proc)

    rec := doRequest(t, h.ProcessNow, http.MethodPost, "/v1/scheduled-bookings/5/process", "", 7, "id", "5")
    assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListEnrichesCompletedJobs(t *testing.T) {
    bookingID := uint64(9)
    job := &model.ScheduledJob{
        ID: 5, UserID: 7, TrainID: 1, ClassCode: "SL", JourneyDate: "2026-09-15",
        ScheduledAt: time.Now().UTC(), Status: model.JobStatusCompleted, BookingID: &bookingID,
    }
    jobs := newFakeJobStore(job)
    h := handler.NewScheduledBookingHandler(
        jobs,
        defaultCatalog(),
        &fakeBookingReader{bookings: map[uint64]*model.Booking{
            9: {ID: 9, PNR: "4837291056", Status: model.BookingStatusConfirmed,
                TotalFarePaise: 50000, PaymentStatus: model.PaymentStatusPending,
                PaymentDueAt: time.Now().UTC()},
        }},
        &fakePassengerReader{byBooking: map[uint64][]model.Passenger{
            9: {{BookingID: 9, Name: "Asha Rao", Age: 34, Gender: "F", SeatLabel: "S4-23", Status: model.PassengerStatusWaitlisted}},
        }},
        &fakeProcessor{},
    )

    rec := doRequest(t, h.List, http.MethodGet, "/v1/scheduled-bookings", "", 7)
    require.Equal(t, http.StatusOK, rec.Code)
    body := rec.Body.String()
    assert.Contains(t, body, "4837291056")
    assert.Contains(t, body, "Rajdhani Express")
    assert.Contains(t, body, "S4-23")
}
