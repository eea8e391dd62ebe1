// Package form holds the state machine behind one seller's lead form: the
// record, its field errors, the wizard step, and the two upstream submissions.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mushinbuys/leadform/internal/leadapi"
	"github.com/mushinbuys/leadform/internal/leads"
	"github.com/mushinbuys/leadform/internal/observability/metrics"
	"github.com/mushinbuys/leadform/internal/phone"
	"github.com/mushinbuys/leadform/internal/tracking"
	"github.com/mushinbuys/leadform/pkg/logging"
)

var tracer = otel.Tracer("leadform.internal.form")

// isoMillis matches the timestamps the intake API already stores.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

var (
	errMissingLeadID = errors.New("form: partial response carried no lead id")
	errFormCleared   = errors.New("form: cleared while partial lead was in flight")
)

// Snapshots persists the in-progress record between visits.
type Snapshots interface {
	Load(ctx context.Context) (leads.FormState, bool, error)
	Save(ctx context.Context, state leads.FormState) error
	Clear(ctx context.Context) error
}

// LeadAPI is the intake service.
type LeadAPI interface {
	SubmitPartial(ctx context.Context, lead leadapi.PartialLead) (leadapi.PartialResult, error)
	SubmitForm(ctx context.Context, lead leads.LeadFormData) (leads.SubmissionResponse, error)
}

// CaptureHook observes settled updates once the seller has passed the first step.
type CaptureHook interface {
	Capture(ctx context.Context, state leads.FormState)
}

// CaptureFunc adapts a function to CaptureHook.
type CaptureFunc func(ctx context.Context, state leads.FormState)

func (f CaptureFunc) Capture(ctx context.Context, state leads.FormState) { f(ctx, state) }

// Options wires a Controller. Snapshots and API are required.
type Options struct {
	SessionID string
	Snapshots Snapshots
	API       LeadAPI
	Tracker   tracking.Tracker
	Capture   CaptureHook
	Metrics   *metrics.FormMetrics
	Logger    *logging.Logger
	Clock     func() time.Time

	// Conversion, when enabled, adds an ads conversion to completed leads.
	Conversion tracking.ConversionTarget
}

type partialPhase int

const (
	partialIdle partialPhase = iota
	partialInFlight
	partialDone
)

// Controller owns one form session. All methods are safe for concurrent use.
type Controller struct {
	mu         sync.Mutex
	state      leads.FormState
	errors     leads.FormErrors
	step       leads.FormStep
	partial    partialPhase
	submitting bool
	generation uint64
	version    uint64

	// saveMu orders snapshot writes; flushed is the newest version written.
	saveMu  sync.Mutex
	flushed uint64

	sessionID  string
	snapshots  Snapshots
	api        LeadAPI
	tracker    tracking.Tracker
	conversion tracking.ConversionTarget
	capture    CaptureHook
	metrics    *metrics.FormMetrics
	logger     *logging.Logger
	now        func() time.Time
}

// Transition reports what Advance did.
type Transition struct {
	From    leads.FormStep            `json:"from"`
	To      leads.FormStep            `json:"to"`
	Partial *leads.SubmissionResponse `json:"partial,omitempty"`
}

// New builds a controller and hydrates it from the snapshot store. A snapshot
// that cannot be read is logged and the form starts from defaults.
func New(ctx context.Context, opts Options) *Controller {
	if opts.Snapshots == nil {
		panic("form: snapshots required")
	}
	if opts.API == nil {
		panic("form: lead api required")
	}
	if opts.Tracker == nil {
		opts.Tracker = tracking.Noop{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	c := &Controller{
		state:      leads.DefaultFormState(),
		errors:     leads.FormErrors{},
		step:       leads.StepInitial,
		sessionID:  opts.SessionID,
		snapshots:  opts.Snapshots,
		api:        opts.API,
		tracker:    opts.Tracker,
		conversion: opts.Conversion,
		capture:    opts.Capture,
		metrics:    opts.Metrics,
		logger:     opts.Logger.WithSession(opts.SessionID),
		now:        opts.Clock,
	}

	state, found, err := c.snapshots.Load(ctx)
	c.metrics.ObserveSnapshot("load", err)
	switch {
	case err != nil:
		c.logger.Warn("failed to load form snapshot", "error", err)
	case found:
		state.IsSubmitting = false
		c.state = state
		if state.LeadID != "" {
			c.partial = partialDone
		}
	}
	return c
}

// Update merges the present fields of p into the record, re-validates each of
// them, and persists the result.
func (c *Controller) Update(ctx context.Context, p leads.Patch) {
	fields := p.Fields()
	if len(fields) == 0 {
		return
	}
	if p.Phone != nil {
		p.Phone = leads.Ptr(phone.Normalize(*p.Phone))
	}

	c.mu.Lock()
	next := c.state
	p.ApplyTo(&next)
	for _, field := range fields {
		msg := ValidateField(field, next)
		if msg != "" {
			c.errors[field] = msg
		} else {
			delete(c.errors, field)
		}
		if hasChangeRule(field) {
			c.metrics.ObserveFieldValidation(field, msg == "")
		}
	}
	c.state = next
	w := c.persistLocked()
	state, step := c.state, c.step
	c.mu.Unlock()

	c.flush(ctx, w)
	c.notifyCapture(ctx, state, step)
}

// SetFieldError sets field's message; an empty message removes it.
func (c *Controller) SetFieldError(field, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg == "" {
		delete(c.errors, field)
		return
	}
	c.errors[field] = msg
}

// ClearFieldError removes field's message.
func (c *Controller) ClearFieldError(field string) {
	c.SetFieldError(field, "")
}

// StepIsComplete reports whether step's required fields are filled. It has no side effects.
func (c *Controller) StepIsComplete(step leads.FormStep) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return StepComplete(c.state, step)
}

// CurrentStep returns the wizard position.
func (c *Controller) CurrentStep() leads.FormStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// SetStep moves the wizard without any checks.
func (c *Controller) SetStep(step leads.FormStep) error {
	if !step.Valid() {
		return fmt.Errorf("form: set step %q: %w", step, leads.ErrInvalidStep)
	}
	c.mu.Lock()
	c.step = step
	c.mu.Unlock()
	return nil
}

// Advance moves past the current step once it is complete and valid. Leaving
// the first step sends the partial lead, at most once per lead; a failed
// partial is reported in the transition but does not hold the seller back.
func (c *Controller) Advance(ctx context.Context) (Transition, error) {
	ctx, span := tracer.Start(ctx, "form.advance")
	defer span.End()

	c.mu.Lock()
	from, startGen := c.step, c.generation
	span.SetAttributes(attribute.String("form.step", string(from)))
	if !StepComplete(c.state, from) {
		c.mu.Unlock()
		return Transition{From: from, To: from}, fmt.Errorf("form: advance from %s: %w", from, leads.ErrStepIncomplete)
	}
	if errs := requiredErrors(c.state, from); len(errs) > 0 {
		for field, msg := range errs {
			c.errors[field] = msg
		}
		c.mu.Unlock()
		return Transition{From: from, To: from}, fmt.Errorf("form: advance from %s: %w", from, leads.ErrValidation)
	}

	var (
		req      leadapi.PartialLead
		gen      uint64
		claimed  bool
		previous leads.SubmissionResponse
	)
	if from == leads.StepInitial {
		switch c.partial {
		case partialIdle:
			req, gen, claimed = c.claimPartialLocked(), c.generation, true
		case partialDone:
			previous = leads.SubmissionResponse{Success: true, LeadID: c.state.LeadID}
		}
	}
	c.mu.Unlock()

	var partial *leads.SubmissionResponse
	if claimed {
		res, err := c.sendPartial(ctx, req, gen)
		if err != nil {
			span.RecordError(err)
		}
		if !errors.Is(err, errFormCleared) {
			partial = &res
		}
	} else if previous.Success {
		partial = &previous
	}

	// A Clear while the partial was out starts a new lead; it stays where Clear put it.
	c.mu.Lock()
	if c.generation == startGen && c.step == from {
		c.step = from.Next()
	}
	to := c.step
	c.mu.Unlock()

	return Transition{From: from, To: to, Partial: partial}, nil
}

// SubmitPartial sends the minimal lead. It is a no-op returning the known
// lead id when a partial has already been accepted for this lead.
func (c *Controller) SubmitPartial(ctx context.Context) (leads.SubmissionResponse, error) {
	ctx, span := tracer.Start(ctx, "form.submit_partial")
	defer span.End()

	c.mu.Lock()
	if c.state.Address == "" || c.state.Phone == "" || !c.state.Consent {
		c.mu.Unlock()
		c.metrics.ObservePartial("rejected")
		return leads.SubmissionResponse{Error: msgPartialRequired}, leads.ErrConsentRequired
	}
	switch c.partial {
	case partialDone:
		id := c.state.LeadID
		c.mu.Unlock()
		return leads.SubmissionResponse{Success: true, LeadID: id}, nil
	case partialInFlight:
		c.mu.Unlock()
		return leads.SubmissionResponse{Error: msgSubmitting}, leads.ErrSubmissionInFlight
	}
	req, gen := c.claimPartialLocked(), c.generation
	c.mu.Unlock()

	res, err := c.sendPartial(ctx, req, gen)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (c *Controller) claimPartialLocked() leadapi.PartialLead {
	c.partial = partialInFlight
	s := c.state
	return leadapi.PartialLead{
		Address:       s.Address,
		StreetAddress: s.StreetAddress,
		City:          s.City,
		State:         s.State,
		PostalCode:    s.PostalCode,
		Phone:         s.Phone,
		Consent:       s.Consent,
		Timestamp:     c.now().UTC().Format(isoMillis),
	}
}

func (c *Controller) sendPartial(ctx context.Context, req leadapi.PartialLead, gen uint64) (leads.SubmissionResponse, error) {
	start := c.now()
	res, err := c.api.SubmitPartial(ctx, req)
	c.metrics.ObserveAPILatency("partial", c.now().Sub(start).Seconds())
	if err == nil && res.LeadID == "" {
		err = errMissingLeadID
	}

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		c.logger.Info("discarding partial result for a cleared form")
		return leads.SubmissionResponse{Error: msgGenericFailure}, errFormCleared
	}
	if err != nil {
		c.partial = partialIdle
		c.mu.Unlock()
		c.metrics.ObservePartial("error")
		c.logger.Error("partial lead submission failed", "error", err)
		return leads.SubmissionResponse{Error: userMessage(err)}, fmt.Errorf("form: submit partial: %w", err)
	}
	c.partial = partialDone
	c.state.LeadID = res.LeadID
	c.state.SubmissionType = leads.SubmissionPartial
	c.state.Timestamp = req.Timestamp
	w := c.persistLocked()
	c.mu.Unlock()
	c.flush(ctx, w)

	c.metrics.ObservePartial("success")
	c.logger.Info("partial lead saved", "lead_id", res.LeadID)
	c.track(ctx, tracking.LeadGenerated(c.sessionID, res.LeadID))
	return leads.SubmissionResponse{Success: true, LeadID: res.LeadID}, nil
}

// Submit sends the complete record. Only one submission runs at a time; on
// success the form is reset, on failure the record is kept and the message
// is stored in the top-level error.
func (c *Controller) Submit(ctx context.Context) (leads.SubmissionResponse, error) {
	ctx, span := tracer.Start(ctx, "form.submit")
	defer span.End()

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		c.metrics.ObserveSubmit("in_flight")
		return leads.SubmissionResponse{Error: msgSubmitting}, leads.ErrSubmissionInFlight
	}
	step := c.step
	span.SetAttributes(attribute.String("form.step", string(step)))
	errs := requiredErrors(c.state, step)
	c.errors = errs
	if len(errs) > 0 {
		c.mu.Unlock()
		c.metrics.ObserveSubmit("invalid")
		return leads.SubmissionResponse{Error: msgCorrectErrors}, leads.ErrValidation
	}
	c.submitting = true
	c.state.IsSubmitting = true
	c.state.Error = ""
	payload := c.state.LeadFormData
	payload.LastUpdated = c.now().UTC().Format(isoMillis)
	payload.SubmissionType = leads.SubmissionComplete
	gen := c.generation
	c.mu.Unlock()

	start := c.now()
	res, err := c.api.SubmitForm(ctx, payload)
	c.metrics.ObserveAPILatency("form", c.now().Sub(start).Seconds())
	if err == nil && !res.Success {
		err = &rejectedError{message: firstNonEmpty(res.Error, res.Message, msgSubmitRejected)}
	}

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		msg := userMessage(err)
		var w snapshotWrite
		if c.generation == gen {
			c.state.IsSubmitting = false
			c.state.Error = msg
			w = c.persistLocked()
		}
		c.mu.Unlock()
		c.flush(ctx, w)
		c.metrics.ObserveSubmit("error")
		c.logger.Error("form submission failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return leads.SubmissionResponse{Error: msg}, fmt.Errorf("form: submit: %w", err)
	}

	leadID := firstNonEmpty(res.LeadID, payload.LeadID)
	w := c.resetLocked()
	c.step = leads.StepThankYou
	c.mu.Unlock()
	c.flush(ctx, w)

	c.metrics.ObserveSubmit("success")
	c.logger.Info("form submitted", "lead_id", leadID)
	events := tracking.LeadCompleted(c.sessionID, leadID)
	if c.conversion.Enabled() {
		events = append(events, tracking.Conversion(c.sessionID, c.conversion, map[string]any{"lead_id": leadID}))
	}
	c.track(ctx, events)

	res.Success = true
	res.LeadID = leadID
	return res, nil
}

// Clear discards the record, its errors, and the stored snapshot, and starts
// a new lead at the first step.
func (c *Controller) Clear(ctx context.Context) {
	c.mu.Lock()
	w := c.resetLocked()
	c.step = leads.StepInitial
	c.mu.Unlock()
	c.flush(ctx, w)
}

// snapshotWrite is a pending store operation taken under mu and performed
// after it is released. A zero version means nothing to write.
type snapshotWrite struct {
	version uint64
	state   leads.FormState
	clear   bool
}

func (c *Controller) resetLocked() snapshotWrite {
	c.state = leads.DefaultFormState()
	c.errors = leads.FormErrors{}
	c.partial = partialIdle
	c.generation++
	c.version++
	return snapshotWrite{version: c.version, clear: true}
}

// persistLocked queues a snapshot of the record unless a final submission is running.
func (c *Controller) persistLocked() snapshotWrite {
	if c.state.IsSubmitting {
		return snapshotWrite{}
	}
	c.version++
	return snapshotWrite{version: c.version, state: copyState(c.state)}
}

// flush performs w unless a newer write already reached the store.
func (c *Controller) flush(ctx context.Context, w snapshotWrite) {
	if w.version == 0 {
		return
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	if w.version <= c.flushed {
		return
	}
	c.flushed = w.version

	if w.clear {
		err := c.snapshots.Clear(ctx)
		c.metrics.ObserveSnapshot("clear", err)
		if err != nil {
			c.logger.Warn("failed to clear form snapshot", "error", err)
		}
		return
	}
	err := c.snapshots.Save(ctx, w.state)
	c.metrics.ObserveSnapshot("save", err)
	if err != nil {
		c.logger.Warn("failed to save form snapshot", "error", err)
	}
}

func (c *Controller) notifyCapture(ctx context.Context, state leads.FormState, step leads.FormStep) {
	if c.capture == nil || step == leads.StepInitial || !state.HasContactBasics() {
		return
	}
	c.capture.Capture(ctx, state)
}

func (c *Controller) track(ctx context.Context, events []tracking.Event) {
	for _, evt := range events {
		if err := c.tracker.Track(ctx, evt); err != nil {
			c.logger.Warn("tracking event failed", "event", evt.Name, "destination", string(evt.Destination), "error", err)
		}
	}
}

type rejectedError struct {
	message string
}

func (e *rejectedError) Error() string { return "form: submission rejected: " + e.message }

// userMessage picks the text shown to the seller for a failed submission.
func userMessage(err error) string {
	var rejected *rejectedError
	if errors.As(err, &rejected) {
		return rejected.message
	}
	var apiErr *leadapi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgGenericFailure
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
