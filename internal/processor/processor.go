// Package processor executes scheduled booking jobs.  It owns the
// only background loop in the service: on a fixed cadence it sweeps
// the job store for due work and converts each pending job into a
// booking, its passengers and, when configured, a payment reminder.
package processor

import (
    "context"
    "errors"
    "fmt"
    "log"
    "time"

    "github.com/railbook/train-reservation/internal/fare"
    "github.com/railbook/train-reservation/internal/model"
    "github.com/railbook/train-reservation/internal/pnr"
    "github.com/railbook/train-reservation/internal/queue"
    "github.com/railbook/train-reservation/internal/repository"
)

// JobStore is the slice of the scheduled-job repository the processor
// needs.  GetByID returns repository.ErrJobNotFound for a missing
// job; MarkCompleted and MarkFailed return repository.ErrNotPending
// when the job was already claimed, which is the optimistic guard the
// whole claim protocol rests on.
type JobStore interface {
    GetByID(ctx context.Context, id uint64) (*model.ScheduledJob, error)
    ListDue(ctx context.Context, now time.Time) ([]model.ScheduledJob, error)
    MarkCompleted(ctx context.Context, id, bookingID uint64) error
    MarkFailed(ctx context.Context, id uint64) error
}

// Catalog looks up the classes of a train.  Read-only.
type Catalog interface {
    ListClasses(ctx context.Context, trainID uint64) ([]model.TrainClass, error)
}

// BookingStore creates bookings and answers PNR collision checks.
type BookingStore interface {
    Create(ctx context.Context, b *model.Booking) error
    PNRExists(ctx context.Context, pnr string) (bool, error)
}

// PassengerStore creates passenger rows for a booking.
type PassengerStore interface {
    Create(ctx context.Context, p *model.Passenger) error
}

// ReminderStore creates payment reminder rows.
type ReminderStore interface {
    Create(ctx context.Context, r *model.PaymentReminder) error
}

// Notifier publishes a fire-and-forget event once a job has been
// processed.  Failures are logged by the processor and never fail
// the job.
type Notifier interface {
    BookingProcessed(ctx context.Context, ev queue.BookingProcessedEvent) error
}

// Config carries the processor's timing knobs.  Zero values are
// replaced with defaults by New.
type Config struct {
    Interval         time.Duration // sweep cadence
    PaymentDueWindow time.Duration // payment due = processing time + window
    ReminderLead     time.Duration // first reminder due = processing time + lead
}

const (
    defaultInterval         = time.Minute
    defaultPaymentDueWindow = 24 * time.Hour
    defaultReminderLead     = 6 * time.Hour
)

// SweepResult aggregates one sweep: how many due jobs completed and
// how many were marked failed.  Jobs that turned out to be already
// claimed by an overlapping sweep are counted in neither.
type SweepResult struct {
    Succeeded int
    Failed    int
}

// Processor converts due scheduled jobs into bookings.  It is a
// singleton within the process; running two of them against the same
// store is safe for correctness (the claim guard wins exactly once)
// but is not a supported deployment.
type Processor struct {
    jobs       JobStore
    catalog    Catalog
    bookings   BookingStore
    passengers PassengerStore
    reminders  ReminderStore
    notifier   Notifier // may be nil
    cfg        Config
    now        func() time.Time
}

// New constructs a Processor.  The notifier may be nil, in which case
// no events are published.
func New(jobs JobStore, catalog Catalog, bookings BookingStore, passengers PassengerStore, reminders ReminderStore, notifier Notifier, cfg Config) *Processor {
    if jobs == nil || catalog == nil || bookings == nil || passengers == nil || reminders == nil {
        panic("nil store passed to processor.New")
    }
    if cfg.Interval <= 0 {
        cfg.Interval = defaultInterval
    }
    if cfg.PaymentDueWindow <= 0 {
        cfg.PaymentDueWindow = defaultPaymentDueWindow
    }
    if cfg.ReminderLead <= 0 {
        cfg.ReminderLead = defaultReminderLead
    }
    return &Processor{
        jobs:       jobs,
        catalog:    catalog,
        bookings:   bookings,
        passengers: passengers,
        reminders:  reminders,
        notifier:   notifier,
        cfg:        cfg,
        now:        time.Now,
    }
}

// Run drives the sweep loop until the context is cancelled.  One
// sweep fires immediately so jobs that became due while the process
// was down recover without waiting a full interval.
func (p *Processor) Run(ctx context.Context) error {
    t := time.NewTicker(p.cfg.Interval)
    defer t.Stop()

    p.sweep(ctx)

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-t.C:
            p.sweep(ctx)
        }
    }
}

func (p *Processor) sweep(ctx context.Context) {
    res, err := p.RunSweep(ctx)
    if err != nil {
        log.Printf("processor: sweep failed: %v", err)
        return
    }
    if res.Succeeded > 0 || res.Failed > 0 {
        log.Printf("processor: sweep done: %d completed, %d failed", res.Succeeded, res.Failed)
    }
}

// RunSweep executes one due-job discovery cycle.  Every due job is
// attempted; one job's failure never aborts the sweep.  The returned
// error covers only the due-set query itself.
func (p *Processor) RunSweep(ctx context.Context) (SweepResult, error) {
    var res SweepResult
    due, err := p.jobs.ListDue(ctx, p.now())
    if err != nil {
        return res, fmt.Errorf("list due jobs: %w", err)
    }
    for _, job := range due {
        if _, err := p.ProcessJob(ctx, job.ID); err != nil {
            if errors.Is(err, repository.ErrNotPending) {
                // Claimed by an overlapping sweep or a manual trigger
                // between the due query and now; nothing to do.
                log.Printf("processor: job %d already handled, skipping", job.ID)
                continue
            }
            log.Printf("processor: job %d failed: %v", job.ID, err)
            res.Failed++
            continue
        }
        res.Succeeded++
    }
    return res, nil
}

// ProcessJob executes the booking workflow for one job.  It is the
// primitive behind both the autonomous sweep and the synchronous
// "process now" endpoint.  Any error after the job was confirmed
// pending marks the job FAILED before returning; a job visible to a
// user always ends in a terminal, inspectable state.
func (p *Processor) ProcessJob(ctx context.Context, jobID uint64) (*model.Booking, error) {
    job, err := p.jobs.GetByID(ctx, jobID)
    if err != nil {
        return nil, err
    }
    if !job.IsPending() {
        return nil, repository.ErrNotPending
    }

    class, err := p.lookupClass(ctx, job)
    if err != nil {
        p.fail(ctx, job.ID)
        return nil, err
    }

    total, err := p.price(class.FarePaise, job)
    if err != nil {
        p.fail(ctx, job.ID)
        return nil, fmt.Errorf("compute fare: %w", err)
    }

    code, err := pnr.GenerateUniqueCode(ctx, p.bookings.PNRExists)
    if err != nil {
        p.fail(ctx, job.ID)
        return nil, fmt.Errorf("generate pnr: %w", err)
    }

    now := p.now()
    booking := &model.Booking{
        UserID:         job.UserID,
        TrainID:        job.TrainID,
        ClassCode:      job.ClassCode,
        JourneyDate:    job.JourneyDate,
        PNR:            code,
        Status:         model.BookingStatusConfirmed,
        TotalFarePaise: total,
        BookingType:    job.BookingType,
        PaymentStatus:  model.PaymentStatusPending,
        PaymentDueAt:   now.Add(p.cfg.PaymentDueWindow),
    }
    if err := p.bookings.Create(ctx, booking); err != nil {
        p.fail(ctx, job.ID)
        return nil, fmt.Errorf("create booking: %w", err)
    }

    // Passenger fan-out in manifest order.  No rollback of the booking
    // if a row fails: the job is marked FAILED so the inconsistency is
    // visible for manual reconciliation.
    for _, in := range job.Passengers {
        passenger := &model.Passenger{
            BookingID:       booking.ID,
            Name:            in.Name,
            Age:             in.Age,
            Gender:          in.Gender,
            BerthPreference: in.BerthPreference,
            SeatLabel:       pnr.GenerateSeatLabel(job.ClassCode),
            Status:          model.PassengerStatusWaitlisted,
        }
        if err := p.passengers.Create(ctx, passenger); err != nil {
            p.fail(ctx, job.ID)
            return nil, fmt.Errorf("create passenger %q: %w", in.Name, err)
        }
    }

    // The claim: only one caller wins this transition.
    if err := p.jobs.MarkCompleted(ctx, job.ID, booking.ID); err != nil {
        return nil, err
    }

    if job.Reminder.Enabled {
        reminder := &model.PaymentReminder{
            BookingID: booking.ID,
            SendCount: 0,
            NextDueAt: now.Add(p.cfg.ReminderLead),
            Channel:   model.ReminderChannelEmail,
            Status:    model.ReminderStatusScheduled,
        }
        if err := p.reminders.Create(ctx, reminder); err != nil {
            // The booking stands and the job is completed; a missing
            // reminder only costs the user a nudge.
            log.Printf("processor: job %d: create payment reminder failed: %v", job.ID, err)
        }
    }

    p.publish(ctx, job, booking)
    return booking, nil
}

func (p *Processor) lookupClass(ctx context.Context, job *model.ScheduledJob) (*model.TrainClass, error) {
    classes, err := p.catalog.ListClasses(ctx, job.TrainID)
    if err != nil {
        return nil, fmt.Errorf("list classes for train %d: %w", job.TrainID, err)
    }
    for i := range classes {
        if classes[i].Code == job.ClassCode {
            return &classes[i], nil
        }
    }
    // A vanished class is terminal for this job, not retryable.
    return nil, fmt.Errorf("train %d class %s: %w", job.TrainID, job.ClassCode, repository.ErrClassNotFound)
}

func (p *Processor) price(unitFare int64, job *model.ScheduledJob) (int64, error) {
    if job.BookingType == model.BookingTypeTatkal {
        return fare.ComputeTatkal(unitFare, len(job.Passengers), job.ClassCode)
    }
    return fare.Compute(unitFare, len(job.Passengers))
}

// fail marks the job FAILED.  ErrNotPending here means a concurrent
// caller already settled the job; anything else is logged because a
// job must never dangle in PENDING.
func (p *Processor) fail(ctx context.Context, jobID uint64) {
    if err := p.jobs.MarkFailed(ctx, jobID); err != nil && !errors.Is(err, repository.ErrNotPending) {
        log.Printf("processor: job %d: mark failed: %v", jobID, err)
    }
}

func (p *Processor) publish(ctx context.Context, job *model.ScheduledJob, booking *model.Booking) {
    if p.notifier == nil {
        return
    }
    ev := queue.BookingProcessedEvent{
        JobID:          job.ID,
        BookingID:      booking.ID,
        UserID:         booking.UserID,
        TrainID:        booking.TrainID,
        ClassCode:      booking.ClassCode,
        JourneyDate:    booking.JourneyDate,
        PNR:            booking.PNR,
        TotalFarePaise: booking.TotalFarePaise,
        PassengerCount: len(job.Passengers),
        PaymentDueAt:   booking.PaymentDueAt.UTC().Format(time.RFC3339),
        ProcessedAt:    p.now().UTC().Format(time.RFC3339),
    }
    if err := p.notifier.BookingProcessed(ctx, ev); err != nil {
        log.Printf("processor: job %d: publish notification failed: %v", job.ID, err)
    }
}
