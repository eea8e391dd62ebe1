// Package tracking sends best-effort analytics events for lead milestones.
// Nothing here may block or fail the form flow.
package tracking

import (
	"context"
	"errors"
)

// Destination names the kind of provider an event is meant for.
type Destination string

const (
	DestinationAnalytics Destination = "analytics"
	DestinationPixel     Destination = "pixel"
	DestinationHeatmap   Destination = "heatmap"
)

// Event names emitted by the form.
const (
	EventGenerateLead          = "generate_lead"
	EventFormSubmissionSuccess = "form_submission_success"
	EventLead                  = "Lead"
	EventConversion            = "conversion"
)

// Event is one analytics call.
type Event struct {
	Destination Destination
	Name        string
	ClientID    string
	Params      map[string]any
}

// Tracker delivers events. Implementations must tolerate a missing provider.
type Tracker interface {
	Track(ctx context.Context, evt Event) error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Track(context.Context, Event) error { return nil }

// Multi fans an event out to every tracker and joins their errors.
type Multi []Tracker

func (m Multi) Track(ctx context.Context, evt Event) error {
	var errs []error
	for _, t := range m {
		if t == nil {
			continue
		}
		if err := t.Track(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LeadGenerated is the set of events for a successful partial save.
func LeadGenerated(clientID, leadID string) []Event {
	return []Event{
		{Destination: DestinationAnalytics, Name: EventGenerateLead, ClientID: clientID, Params: map[string]any{"currency": "USD", "value": 0, "lead_id": leadID}},
		{Destination: DestinationPixel, Name: EventLead, ClientID: clientID},
	}
}

// ConversionTarget names a Google Ads conversion action.
type ConversionTarget struct {
	ID    string
	Label string
}

// Enabled reports whether both parts are set.
func (t ConversionTarget) Enabled() bool {
	return t.ID != "" && t.Label != ""
}

// Conversion builds the ads conversion event for target. Params are copied
// and send_to always points at the target.
func Conversion(clientID string, target ConversionTarget, params map[string]any) Event {
	p := make(map[string]any, len(params)+1)
	for k, v := range params {
		p[k] = v
	}
	p["send_to"] = target.ID + "/" + target.Label
	return Event{Destination: DestinationAnalytics, Name: EventConversion, ClientID: clientID, Params: p}
}

// LeadCompleted is the set of events for a successful final submission.
func LeadCompleted(clientID, leadID string) []Event {
	return []Event{
		{Destination: DestinationAnalytics, Name: EventFormSubmissionSuccess, ClientID: clientID, Params: map[string]any{"event_category": "Lead", "event_label": "Complete", "lead_id": leadID}},
		{Destination: DestinationPixel, Name: EventLead, ClientID: clientID},
		{Destination: DestinationHeatmap, Name: EventFormSubmissionSuccess, ClientID: clientID},
	}
}
