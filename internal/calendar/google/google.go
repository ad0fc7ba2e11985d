// Package google mirrors shift assignments into Google Calendar.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"shiftplan/internal/calendar"
	"shiftplan/internal/core"

	gcal "google.golang.org/api/calendar/v3"
	goption "google.golang.org/api/option"
)

type Client struct {
	svc *gcal.Service
	loc *time.Location
	// calendarID is the calendar events are deleted from. Google scopes
	// event ids per calendar, so deletion needs one even though the port
	// identifies events by id alone.
	calendarID string
}

// Ensure interface conformance
var _ calendar.EventWriter = (*Client)(nil)

// NewFromEnv creates a Calendar client from service account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	svc, err := newCalendarService(ctx)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}

	loc := time.Local
	if tz := strings.TrimSpace(os.Getenv("CALENDAR_TIMEZONE")); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load calendar timezone %q: %w", tz, err)
		}
	}

	calendarID := strings.TrimSpace(os.Getenv("GOOGLE_CALENDAR_ID"))
	if calendarID == "" {
		calendarID = "primary"
	}

	return &Client{svc: svc, loc: loc, calendarID: calendarID}, nil
}

func newCalendarService(ctx context.Context) (*gcal.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gcal.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gcal.CalendarEventsScope))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return service, nil
}

// CreateEvent implements calendar.EventWriter.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, assignmentID int64, date string, shift core.Shift) (string, error) {
	payload, err := calendar.BuildEvent(assignmentID, date, shift, c.loc)
	if err != nil {
		return "", fmt.Errorf("build event: %w", err)
	}

	created, err := c.svc.Events.Insert(calendarID, toGoogleEvent(payload)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}

	slog.InfoContext(ctx, "Calendar event created",
		"event_id", created.Id,
		"assignment_id", assignmentID,
		"date", date,
		"shift", shift.Name)
	return created.Id, nil
}

// UpdateEvent implements calendar.EventWriter.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, assignmentID int64, date string, shift core.Shift) error {
	payload, err := calendar.BuildEvent(assignmentID, date, shift, c.loc)
	if err != nil {
		return fmt.Errorf("build event: %w", err)
	}

	if _, err := c.svc.Events.Update(calendarID, eventID, toGoogleEvent(payload)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("update event %s: %w", eventID, err)
	}

	slog.InfoContext(ctx, "Calendar event updated",
		"event_id", eventID,
		"assignment_id", assignmentID,
		"date", date,
		"shift", shift.Name)
	return nil
}

// DeleteEvent implements calendar.EventWriter.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}

	slog.InfoContext(ctx, "Calendar event deleted", "event_id", eventID)
	return nil
}

func toGoogleEvent(e calendar.Event) *gcal.Event {
	return &gcal.Event{
		Summary:     e.Title,
		Description: e.Description,
		Start:       &gcal.EventDateTime{DateTime: e.Start.Format(time.RFC3339), TimeZone: e.Start.Location().String()},
		End:         &gcal.EventDateTime{DateTime: e.End.Format(time.RFC3339), TimeZone: e.End.Location().String()},
	}
}
