package gates

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/mikey/mail-priority/internal/core"
)

// CalendarThreshold is the confidence at which the calendar gate reports a match
const CalendarThreshold = 0.70

var (
	calendarContentTypes = []string{
		"text/calendar",
		"application/ics",
	}

	calendarSenderDomains = []string{
		"calendar-server.bounces.google.com",
		"calendly.com",
		"zoom.us",
		"webex.com",
		"gotomeeting.com",
		"teams.microsoft.com",
	}

	exchangeCalendarHeaders = []string{
		"x-microsoft-cdo-busystatus",
		"x-microsoft-cdo-appt-sequence",
		"x-ms-exchange-calendar-series-instance-id",
	}

	calendarSubjectPattern = regexp.MustCompile(`(?i)^\s*(invitation|invite|accepted|declined|tentative|canceled|cancelled|updated invitation)\s*:`)

	calendarBodyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)zoom\.us/j/\d+`),
		regexp.MustCompile(`(?i)meet\.google\.com/[a-z-]+`),
		regexp.MustCompile(`(?i)teams\.microsoft\.com/l/meetup-join`),
		regexp.MustCompile(`(?i)\bwebex\.com/(meet|join)\b`),
		regexp.MustCompile(`(?i)\badd to calendar\b`),
		regexp.MustCompile(`(?im)^\s*when\s*:`),
		regexp.MustCompile(`(?im)^\s*where\s*:`),
	}

	meetingLinkPattern = regexp.MustCompile(`(?i)https?://[^\s<>"]*(zoom\.us/j/|meet\.google\.com/|teams\.microsoft\.com/l/meetup-join|webex\.com/(meet|join))[^\s<>"]*`)

	calendarKeyValuePattern = regexp.MustCompile(`(?im)^\s*([a-z][a-z-]*)\s*[:;]\s*(.+?)\s*$`)

	icsDateLayouts = []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}
)

// CalendarGate detects calendar invitations and meeting notifications
type CalendarGate struct{}

// NewCalendarGate creates a new calendar gate
func NewCalendarGate() *CalendarGate {
	return &CalendarGate{}
}

// Evaluate inspects a message for calendar markers
func (g *CalendarGate) Evaluate(email *core.Email) core.GateResult {
	var result core.GateResult

	ct := strings.ToLower(email.ContentType)
	for _, t := range calendarContentTypes {
		if strings.Contains(ct, t) {
			record(&result, 1.0, fmt.Sprintf("calendar content type: %s", t))
			break
		}
	}

	for _, a := range email.Attachments {
		if strings.HasSuffix(strings.ToLower(a.Filename), ".ics") ||
			strings.Contains(strings.ToLower(a.MimeType), "text/calendar") {
			record(&result, 0.95, fmt.Sprintf("calendar attachment: %s", a.Filename))
			break
		}
	}

	domain := email.SenderDomain()
	for _, d := range calendarSenderDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			record(&result, 0.90, fmt.Sprintf("calendar service sender domain: %s", domain))
			break
		}
	}
	for _, h := range exchangeCalendarHeaders {
		if email.HasHeader(h) {
			record(&result, 0.90, fmt.Sprintf("exchange calendar header: %s", h))
			break
		}
	}

	if calendarSubjectPattern.MatchString(email.Subject) {
		record(&result, 0.85, "calendar invitation subject pattern")
	}

	bodyMatches := 0
	for _, p := range calendarBodyPatterns {
		if p.MatchString(email.Body) {
			bodyMatches++
		}
	}
	if bodyMatches > 0 {
		conf := 0.70 + 0.05*float64(bodyMatches-1)
		if conf > 0.85 {
			conf = 0.85
		}
		record(&result, conf, fmt.Sprintf("calendar body patterns matched: %d", bodyMatches))
	}

	result.Matched = result.Confidence >= CalendarThreshold
	return result
}

// ExtractEvent pulls best-effort event details out of a calendar message.
// Structured key:value lines (ICS fields, When:/Where: lines) are tried
// first, then free-text meeting link patterns. Returns nil when nothing
// event-like is found.
func (g *CalendarGate) ExtractEvent(email *core.Email) *core.CalendarEvent {
	event := &core.CalendarEvent{}
	found := false

	for _, m := range calendarKeyValuePattern.FindAllStringSubmatch(email.Body, -1) {
		key := strings.ToLower(m[1])
		value := strings.TrimSpace(m[2])
		switch key {
		case "dtstart":
			if t := parseICSDate(value); t != nil {
				event.Start = t
				found = true
			}
		case "dtend":
			if t := parseICSDate(value); t != nil {
				event.End = t
				found = true
			}
		case "summary":
			event.Title = value
			found = true
		case "location", "where":
			event.Location = value
			found = true
		case "organizer":
			event.Organizer = strings.TrimPrefix(strings.ToLower(value), "mailto:")
			found = true
		case "rrule":
			event.Recurring = true
			found = true
		case "when":
			if t, err := dateparse.ParseAny(value); err == nil {
				event.Start = &t
			}
			found = true
		}
	}

	if link := meetingLinkPattern.FindString(email.Body); link != "" {
		event.MeetingLink = link
		found = true
	}

	if event.Title == "" {
		if m := calendarSubjectPattern.FindString(email.Subject); m != "" {
			event.Title = strings.TrimSpace(strings.TrimPrefix(email.Subject, m))
		}
	}

	if !found {
		return nil
	}
	return event
}

// parseICSDate parses ICS-style timestamps, possibly carrying a TZID prefix
func parseICSDate(value string) *time.Time {
	// strip a TZID=...: parameter if present
	if idx := strings.LastIndex(value, ":"); idx >= 0 && strings.Contains(value[:idx], "=") {
		value = value[idx+1:]
	}
	for _, layout := range icsDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
