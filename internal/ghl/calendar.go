package ghl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/wolfman30/ai-voice-outbound/pkg/logging"
)

// CallStatus is the internal call-outcome vocabulary. Provider statuses
// are mapped into exactly one of these three values before they reach
// the CRM.
type CallStatus string

const (
	CallCompleted CallStatus = "completed"
	CallNoAnswer  CallStatus = "no-answer"
	CallFailed    CallStatus = "failed"
)

// CallOutcome is the ephemeral record written to a contact after a call
// ends. It is never persisted by this service.
type CallOutcome struct {
	CallID            string
	Status            CallStatus
	Transcript        string
	Notes             string
	AppointmentBooked bool
}

// CalendarSlot is one bookable window on a GHL calendar.
type CalendarSlot struct {
	SlotID    string
	StartTime string
	EndTime   string
	Available bool
}

// ContactData describes a contact to create or match in the CRM.
type ContactData struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Tags    []string
}

// Contact is the CRM's view of a person.
type Contact struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Booking is a confirmed appointment.
type Booking struct {
	AppointmentID   string
	ConfirmationURL string
}

// Calendar identifies one bookable calendar for the location.
type Calendar struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// AvailabilityOptions bounds a calendar availability query.
type AvailabilityOptions struct {
	DateFrom   string
	DateTo     string
	CalendarID string
}

// CRM exposes the typed GoHighLevel operations this service needs,
// layered over the generic Client gateway.
type CRM struct {
	client     *Client
	locationID string
	calendarID string
	logger     *logging.Logger

	// now is swapped in tests to pin the call-outcome timestamp.
	now func() time.Time
}

// NewCRM wires a CRM adapter for one location and its default calendar.
func NewCRM(client *Client, locationID, calendarID string, logger *logging.Logger) *CRM {
	if logger == nil {
		logger = logging.Default()
	}
	return &CRM{
		client:     client,
		locationID: locationID,
		calendarID: calendarID,
		logger:     logger,
		now:        time.Now,
	}
}

// CheckAvailability lists bookable slots between two dates.
func (c *CRM) CheckAvailability(ctx context.Context, opts AvailabilityOptions) ([]CalendarSlot, error) {
	c.logger.Info("checking calendar availability", "date_from", opts.DateFrom, "date_to", opts.DateTo)

	calendarID := opts.CalendarID
	if calendarID == "" {
		calendarID = c.calendarID
	}
	query := url.Values{}
	query.Set("startDate", opts.DateFrom)
	query.Set("endDate", opts.DateTo)

	var resp struct {
		Slots []struct {
			ID         string `json:"id"`
			Start      string `json:"start"`
			End        string `json:"end"`
			BookingURL string `json:"bookingUrl"`
		} `json:"slots"`
	}
	if err := c.client.Get(ctx, fmt.Sprintf("/calendars/%s/availability", calendarID), query, &resp); err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	slots := make([]CalendarSlot, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		slots = append(slots, CalendarSlot{
			SlotID:    slot.ID,
			StartTime: slot.Start,
			EndTime:   slot.End,
			Available: slot.BookingURL == "",
		})
	}
	return slots, nil
}

// BookAppointment creates (or matches) the contact, then books the slot
// for them on the default calendar.
func (c *CRM) BookAppointment(ctx context.Context, slotID string, info ContactData) (*Booking, error) {
	c.logger.Info("booking appointment", "slot_id", slotID, "contact_name", info.Name)

	if info.Tags == nil {
		info.Tags = []string{"ai-outbound-call", "remodeling-lead"}
	}
	contact, err := c.CreateContact(ctx, info)
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID              string `json:"id"`
		ConfirmationURL string `json:"confirmationUrl"`
	}
	body := map[string]string{
		"contactId": contact.ID,
		"source":    "AI Voice Outbound",
	}
	if err := c.client.Post(ctx, fmt.Sprintf("/calendars/%s/slots/%s/book", c.calendarID, slotID), body, &resp); err != nil {
		return nil, fmt.Errorf("book slot %s: %w", slotID, err)
	}

	c.logger.Info("appointment booked", "appointment_id", resp.ID, "contact_id", contact.ID)
	return &Booking{AppointmentID: resp.ID, ConfirmationURL: resp.ConfirmationURL}, nil
}

// CreateContact finds an existing contact by email or creates a new one.
func (c *CRM) CreateContact(ctx context.Context, data ContactData) (*Contact, error) {
	if data.Email == "" {
		return nil, errors.New("ghl: contact email required")
	}
	c.logger.Info("creating contact", "email", data.Email)

	query := url.Values{}
	query.Set("email", data.Email)
	var existing struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := c.client.Get(ctx, fmt.Sprintf("/locations/%s/contacts", c.locationID), query, &existing); err != nil {
		return nil, fmt.Errorf("lookup contact: %w", err)
	}
	if len(existing.Contacts) > 0 {
		c.logger.Info("contact already exists", "email", data.Email)
		return &existing.Contacts[0], nil
	}

	body := map[string]any{
		"email":   data.Email,
		"name":    data.Name,
		"phone":   data.Phone,
		"company": data.Company,
		"tags":    data.Tags,
	}
	var created Contact
	if err := c.client.Post(ctx, fmt.Sprintf("/locations/%s/contacts", c.locationID), body, &created); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	c.logger.Info("contact created", "contact_id", created.ID)
	return &created, nil
}

// GetCalendars lists all calendars configured for the location.
func (c *CRM) GetCalendars(ctx context.Context) ([]Calendar, error) {
	var resp struct {
		Calendars []Calendar `json:"calendars"`
	}
	if err := c.client.Get(ctx, fmt.Sprintf("/locations/%s/calendars", c.locationID), nil, &resp); err != nil {
		return nil, fmt.Errorf("get calendars: %w", err)
	}
	return resp.Calendars, nil
}

// UpdateContactWithCallOutcome records the result of a call on a contact.
// Failures are logged and swallowed here: a missed CRM note is
// non-critical and must never fail the webhook path that triggered it.
func (c *CRM) UpdateContactWithCallOutcome(ctx context.Context, contactID string, outcome CallOutcome) {
	c.logger.Info("updating contact with call outcome", "contact_id", contactID, "call_id", outcome.CallID)

	customFields := map[string]string{
		"last_call_date":   c.now().UTC().Format(time.RFC3339),
		"last_call_status": string(outcome.Status),
		"retell_call_id":   outcome.CallID,
	}
	if outcome.AppointmentBooked {
		customFields["appointment_status"] = "booked"
	}
	body := map[string]any{
		"custom_fields": customFields,
	}
	if outcome.Notes != "" {
		body["notes"] = fmt.Sprintf("Call %s: %s", outcome.CallID, outcome.Notes)
	}

	path := fmt.Sprintf("/locations/%s/contacts/%s", c.locationID, contactID)
	if err := c.client.Put(ctx, path, body, nil); err != nil {
		c.logger.Error("failed to update contact", "error", err, "contact_id", contactID)
		return
	}
	c.logger.Info("contact updated with call outcome", "contact_id", contactID)
}
