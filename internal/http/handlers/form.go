package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mushinbuys/leadform/internal/fields"
	"github.com/mushinbuys/leadform/internal/form"
	httpmiddleware "github.com/mushinbuys/leadform/internal/http/middleware"
	"github.com/mushinbuys/leadform/internal/leads"
	"github.com/mushinbuys/leadform/internal/session"
	"github.com/mushinbuys/leadform/internal/validation"
	"github.com/mushinbuys/leadform/pkg/logging"
)

const maxBodyBytes = 64 << 10

// textLimits caps free-text fields.
var textLimits = map[string]int{
	leads.FieldFirstName: 50,
	leads.FieldLastName:  50,
	leads.FieldEmail:     100,
	leads.FieldPrice:     20,
	leads.FieldComments:  1000,
}

// SessionCreator starts form sessions.
type SessionCreator interface {
	Create(ctx context.Context) (session.Session, *form.Controller, error)
}

// FormHandler exposes a form session over HTTP. Every route except
// CreateSession expects the controller on the request context.
type FormHandler struct {
	sessions SessionCreator
	val      *validation.Validator
	logger   *logging.Logger
}

func NewFormHandler(sessions SessionCreator, val *validation.Validator, logger *logging.Logger) *FormHandler {
	if sessions == nil {
		panic("handlers: session creator required")
	}
	if val == nil {
		val = validation.New()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FormHandler{sessions: sessions, val: val, logger: logger}
}

type sessionResponse struct {
	Session session.Session `json:"session"`
	View    form.View       `json:"view"`
}

// CreateSession handles POST /form/sessions.
func (h *FormHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, ctrl, err := h.sessions.Create(r.Context())
	if err != nil {
		h.logger.Error("failed to create form session", "error", err)
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Session: sess, View: ctrl.View()})
}

// GetForm handles GET /form.
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

// PatchForm handles PATCH /form with a partial record.
func (h *FormHandler) PatchForm(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var patch leads.Patch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.Empty() {
		http.Error(w, "no fields to update", http.StatusBadRequest)
		return
	}
	for field, value := range map[string]*string{
		leads.FieldPropertyCondition: patch.PropertyCondition,
		leads.FieldTimeframe:         patch.Timeframe,
		leads.FieldReferralSource:    patch.ReferralSource,
	} {
		if value == nil || *value == "" {
			continue
		}
		if _, found := leads.FindOption(leads.OptionsFor(field), *value); !found {
			http.Error(w, "invalid option for "+field, http.StatusUnprocessableEntity)
			return
		}
	}
	ctrl.Update(r.Context(), patch)
	writeJSON(w, http.StatusOK, ctrl.View())
}

// ClearForm handles DELETE /form.
func (h *FormHandler) ClearForm(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.Clear(r.Context())
	h.logger.WithSession(httpmiddleware.SessionIDFromContext(r.Context())).Info("form cleared")
	writeJSON(w, http.StatusOK, ctrl.View())
}

type addressRequest struct {
	Text      *string             `json:"text,omitempty"`
	Selection *fields.AddressData `json:"selection,omitempty"`
	Blur      bool                `json:"blur,omitempty"`
}

type addressResponse struct {
	Display   string    `json:"display"`
	Committed bool      `json:"committed"`
	Status    string    `json:"status"`
	View      form.View `json:"view"`
}

// Address handles POST /form/address. Typed text stays with the client; only
// a complete provider selection reaches the record.
func (h *FormHandler) Address(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req addressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	input := fields.NewAddressInput(ctrl.State().Address, h.val, func(d fields.AddressData) {
		ctrl.Update(ctx, d.Patch())
	})

	status := http.StatusOK
	switch {
	case req.Selection != nil:
		if err := input.Select(*req.Selection); err != nil {
			ctrl.SetFieldError(leads.FieldAddress, leads.ErrIncompleteAddress.Error())
			h.logger.Debug("rejected incomplete address selection", "error", err)
			status = http.StatusUnprocessableEntity
		}
	case req.Text != nil:
		input.Type(*req.Text)
		if req.Blur {
			if hint := input.Blur(); hint != "" {
				ctrl.SetFieldError(leads.FieldAddress, hint)
			}
		}
	default:
		http.Error(w, "text or selection required", http.StatusBadRequest)
		return
	}

	view := ctrl.View()
	writeJSON(w, status, addressResponse{
		Display:   input.Display(),
		Committed: input.Committed(),
		Status:    input.Status(view.Errors[leads.FieldAddress]),
		View:      view,
	})
}

type phoneRequest struct {
	Action string `json:"action" validate:"required,oneof=change paste blur"`
	Value  string `json:"value"`
}

type phoneResponse struct {
	Accepted bool      `json:"accepted"`
	Display  string    `json:"display"`
	Hint     string    `json:"hint,omitempty"`
	View     form.View `json:"view"`
}

// Phone handles POST /form/phone for change, paste and blur events.
func (h *FormHandler) Phone(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req phoneRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.val.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": h.val.Details(err)})
		return
	}

	ctx := r.Context()
	input := fields.NewPhoneInput(ctrl.State().Phone,
		func(v string) { ctrl.Update(ctx, leads.Patch{Phone: leads.Ptr(v)}) },
		func() { ctrl.SetFieldError(leads.FieldPhone, form.ValidateBlur(leads.FieldPhone, ctrl.State())) },
	)

	accepted := true
	switch req.Action {
	case "change":
		input.Focus()
		accepted = input.Change(req.Value)
	case "paste":
		input.Focus()
		input.Paste(req.Value)
	case "blur":
		input.Blur()
	}

	view := ctrl.View()
	writeJSON(w, http.StatusOK, phoneResponse{
		Accepted: accepted,
		Display:  input.Display(),
		Hint:     input.Hint(view.Errors[leads.FieldPhone]),
		View:     view,
	})
}

type fieldRequest struct {
	Value json.RawMessage `json:"value"`
	Blur  bool            `json:"blur,omitempty"`
}

// Field handles POST /form/fields/{name} for text, select and checkbox fields.
func (h *FormHandler) Field(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	if !leads.KnownField(name) {
		http.Error(w, "unknown field", http.StatusNotFound)
		return
	}
	if name == leads.FieldPhone || name == leads.FieldAddress {
		http.Error(w, "use the dedicated "+name+" endpoint", http.StatusBadRequest)
		return
	}
	var req fieldRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	if leads.IsBoolField(name) {
		var checked bool
		if err := json.Unmarshal(req.Value, &checked); err != nil {
			http.Error(w, "value must be a boolean", http.StatusBadRequest)
			return
		}
		cur := ctrl.State()
		initial := cur.Consent
		if name == leads.FieldIsPropertyListed {
			initial = cur.IsPropertyListed != nil && *cur.IsPropertyListed
		}
		box := fields.NewCheckbox(name, initial, func(v bool) {
			patch, _ := leads.SetBool(name, v)
			ctrl.Update(ctx, patch)
		})
		box.Set(checked)
		writeJSON(w, http.StatusOK, ctrl.View())
		return
	}

	var value string
	if len(req.Value) > 0 {
		if err := json.Unmarshal(req.Value, &value); err != nil {
			http.Error(w, "value must be a string", http.StatusBadRequest)
			return
		}
	}
	update := func(v string) {
		patch, _ := leads.SetString(name, v)
		ctrl.Update(ctx, patch)
	}

	if opts := leads.OptionsFor(name); opts != nil {
		sel := fields.NewSelectField(name, ctrl.State().Text(name), opts, update)
		if err := sel.Choose(value); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeJSON(w, http.StatusOK, ctrl.View())
		return
	}

	text := fields.NewTextInput(name, ctrl.State().Text(name), textLimits[name], update, nil)
	if len(req.Value) > 0 {
		text.Change(value)
	}
	if req.Blur {
		text.Blur()
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

type stepRequest struct {
	Step string `json:"step" validate:"required"`
}

// SetStep handles PUT /form/step.
func (h *FormHandler) SetStep(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req stepRequest
	if !decodeBody(w, r, &req) {
		return
	}
	step, err := leads.ParseStep(req.Step)
	if err == nil {
		err = ctrl.SetStep(step)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

// StepStatus handles GET /form/steps/{step}.
func (h *FormHandler) StepStatus(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	step, err := leads.ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"step":     step,
		"complete": ctrl.StepIsComplete(step),
	})
}

type advanceResponse struct {
	Transition form.Transition `json:"transition"`
	View       form.View       `json:"view"`
}

// Advance handles POST /form/advance.
func (h *FormHandler) Advance(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	tr, err := ctrl.Advance(r.Context())
	status := http.StatusOK
	switch {
	case errors.Is(err, leads.ErrStepIncomplete):
		status = http.StatusConflict
	case errors.Is(err, leads.ErrValidation):
		status = http.StatusUnprocessableEntity
	case err != nil:
		h.logger.Error("failed to advance form", "error", err)
		http.Error(w, "failed to advance", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, advanceResponse{Transition: tr, View: ctrl.View()})
}

type submitResponse struct {
	Result leads.SubmissionResponse `json:"result"`
	View   form.View                `json:"view"`
}

// Submit handles POST /form/submit.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	res, err := ctrl.Submit(r.Context())
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, leads.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, leads.ErrSubmissionInFlight):
		status = http.StatusConflict
	default:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, submitResponse{Result: res, View: ctrl.View()})
}

type fieldErrorRequest struct {
	Message string `json:"message" validate:"required"`
}

// SetFieldError handles PUT /form/errors/{field}.
func (h *FormHandler) SetFieldError(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	field, ok := errorField(w, r)
	if !ok {
		return
	}
	var req fieldErrorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.val.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": h.val.Details(err)})
		return
	}
	ctrl.SetFieldError(field, validation.Sanitize(req.Message))
	writeJSON(w, http.StatusOK, ctrl.View())
}

// ClearFieldError handles DELETE /form/errors/{field}.
func (h *FormHandler) ClearFieldError(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	field, ok := errorField(w, r)
	if !ok {
		return
	}
	ctrl.ClearFieldError(field)
	writeJSON(w, http.StatusOK, ctrl.View())
}

// Options handles GET /form/options.
func (h *FormHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]leads.Option{
		leads.FieldPropertyCondition: leads.PropertyConditionOptions,
		leads.FieldTimeframe:         leads.TimeframeOptions,
		leads.FieldReferralSource:    leads.ReferralSourceOptions,
	})
}

// HealthCheck handles GET /health.
func (h *FormHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *FormHandler) controller(w http.ResponseWriter, r *http.Request) (*form.Controller, bool) {
	ctrl, ok := httpmiddleware.FormFromContext(r.Context())
	if !ok {
		http.Error(w, leads.ErrSessionNotFound.Error(), http.StatusUnauthorized)
		return nil, false
	}
	return ctrl, true
}

func errorField(w http.ResponseWriter, r *http.Request) (string, bool) {
	field := chi.URLParam(r, "field")
	if field != leads.FormErrorKey && !leads.KnownField(field) {
		http.Error(w, "unknown field", http.StatusNotFound)
		return "", false
	}
	return field, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
