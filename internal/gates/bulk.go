// Package gates contains the independent pattern gates. Each gate inspects
// one message for a single narrow signal and returns a confidence plus the
// reasons that produced it. Gates are pure and order-independent.
package gates

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mikey/mail-priority/internal/core"
)

// BulkThreshold is the confidence at which the bulk gate reports a match
const BulkThreshold = 0.60

var (
	listHeaders = []string{
		"list-unsubscribe",
		"list-id",
		"list-post",
		"list-archive",
		"list-help",
		"list-owner",
	}

	campaignHeaders = []string{
		"x-campaign",
		"x-campaignid",
		"x-mailgun-sid",
		"x-mc-user",
		"x-sg-eid",
		"x-ses-outgoing",
	}

	bulkLocalPartPattern = regexp.MustCompile(`^(no-?reply|newsletter|marketing|news|digest|notifications?|updates?|promo(tions?)?|do-?not-?reply)`)

	bulkSenderDomains = []string{
		"mailchimp.com",
		"mailchimpapp.net",
		"sendgrid.net",
		"mailgun.org",
		"amazonses.com",
		"substack.com",
		"constantcontact.com",
		"hubspotemail.net",
		"cmail19.com",
		"cmail20.com",
		"rsgsv.net",
	}

	bulkSubjectPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bnewsletter\b`),
		regexp.MustCompile(`(?i)\bdigest\b`),
		regexp.MustCompile(`(?i)\bissue\s*#?\d+\b`),
		regexp.MustCompile(`(?i)\bweekly\s+(roundup|update)\b`),
		regexp.MustCompile(`^\[[^\]]+\]`),
	}
)

// BulkGate detects bulk and newsletter mail
type BulkGate struct{}

// NewBulkGate creates a new bulk/newsletter gate
func NewBulkGate() *BulkGate {
	return &BulkGate{}
}

// Evaluate inspects a message for bulk-mail markers. The confidence is the
// maximum across matched signals, not a sum.
func (g *BulkGate) Evaluate(email *core.Email) core.GateResult {
	var result core.GateResult

	for _, h := range listHeaders {
		if email.HasHeader(h) {
			record(&result, 0.95, fmt.Sprintf("list management header present: %s", h))
			break
		}
	}

	precedence := strings.ToLower(email.Header("precedence"))
	if precedence == "bulk" || precedence == "list" || precedence == "junk" {
		record(&result, 0.85, fmt.Sprintf("bulk precedence header: %s", precedence))
	}

	for _, h := range campaignHeaders {
		if email.HasHeader(h) {
			record(&result, 0.90, fmt.Sprintf("campaign tool header present: %s", h))
			break
		}
	}

	if bulkLocalPartPattern.MatchString(email.SenderLocalPart()) {
		record(&result, 0.75, fmt.Sprintf("bulk sender local part: %s", email.SenderLocalPart()))
	}

	domain := email.SenderDomain()
	for _, d := range bulkSenderDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			record(&result, 0.85, fmt.Sprintf("known bulk mail service domain: %s", domain))
			break
		}
	}

	for _, p := range bulkSubjectPatterns {
		if p.MatchString(email.Subject) {
			record(&result, 0.60, "newsletter-style subject pattern")
			break
		}
	}

	result.Matched = result.Confidence >= BulkThreshold
	return result
}

// record keeps the max confidence seen so far and appends the reason
func record(r *core.GateResult, confidence float64, reason string) {
	if confidence > r.Confidence {
		r.Confidence = confidence
	}
	r.Reasons = append(r.Reasons, reason)
}
