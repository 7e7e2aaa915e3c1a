package gates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mikey/mail-priority/internal/core"
)

// OTPThreshold is the confidence at which the one-time-code gate reports a match
const OTPThreshold = 0.65

// DefaultOTPExpiryWindow is how long a one-time code is assumed to stay valid
// when the message does not state its own expiry
const DefaultOTPExpiryWindow = 15 * time.Minute

var (
	otpKeywordPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bverification code\b`),
		regexp.MustCompile(`(?i)\bsecurity code\b`),
		regexp.MustCompile(`(?i)\bone[- ]time (code|passcode|password)\b`),
		regexp.MustCompile(`(?i)\botp\b`),
		regexp.MustCompile(`(?i)\b2fa\b`),
		regexp.MustCompile(`(?i)\btwo[- ]factor\b`),
		regexp.MustCompile(`(?i)\bsign[- ]in code\b`),
		regexp.MustCompile(`(?i)\blogin code\b`),
		regexp.MustCompile(`(?i)\bauthentication code\b`),
		regexp.MustCompile(`(?i)\bconfirmation code\b`),
	}

	// a digit run immediately following a code keyword carries more weight
	// than a bare digit run anywhere in the body
	otpContextCodePattern = regexp.MustCompile(`(?i)(?:code|otp|pin|passcode)\D{0,12}(\d{4}|\d{6}|\d{8})\b`)
	otpBareCodePattern    = regexp.MustCompile(`\b(\d{4}|\d{6}|\d{8})\b`)

	otpExpiryPattern = regexp.MustCompile(`(?i)\bexpires?\s+(?:in|within)\s+(\d+)\s+minutes?\b`)

	otpSenderDomains = []string{
		"accounts.google.com",
		"account.microsoft.com",
		"okta.com",
		"duosecurity.com",
		"authy.com",
		"id.apple.com",
		"github.com",
	}

	otpLocalPartPattern = regexp.MustCompile(`^(security|no-?reply|account|verify|auth)`)
)

// OTPGate detects one-time-code and verification messages
type OTPGate struct {
	expiryWindow time.Duration
}

// NewOTPGate creates a new one-time-code gate. A non-positive expiry window
// falls back to the default.
func NewOTPGate(expiryWindow time.Duration) *OTPGate {
	if expiryWindow <= 0 {
		expiryWindow = DefaultOTPExpiryWindow
	}
	return &OTPGate{expiryWindow: expiryWindow}
}

// Evaluate inspects a message for one-time-code markers
func (g *OTPGate) Evaluate(email *core.Email) core.GateResult {
	var result core.GateResult
	text := email.Subject + "\n" + email.Body

	keywordMatches := 0
	for _, p := range otpKeywordPatterns {
		if p.MatchString(text) {
			keywordMatches++
		}
	}
	if keywordMatches > 0 {
		conf := 0.80 + 0.05*float64(keywordMatches-1)
		if conf > 0.95 {
			conf = 0.95
		}
		record(&result, conf, fmt.Sprintf("one-time-code keywords matched: %d", keywordMatches))
	}

	if otpContextCodePattern.MatchString(text) {
		record(&result, 0.75, "numeric code adjacent to code keyword")
	} else if keywordMatches > 0 && otpBareCodePattern.MatchString(text) {
		record(&result, 0.65, "numeric code pattern in message")
	}

	domain := email.SenderDomain()
	for _, d := range otpSenderDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			record(&result, 0.70, fmt.Sprintf("code-issuing service domain: %s", domain))
			break
		}
	}

	if keywordMatches > 0 && otpLocalPartPattern.MatchString(email.SenderLocalPart()) {
		record(&result, 0.65, fmt.Sprintf("security sender local part: %s", email.SenderLocalPart()))
	}

	result.Matched = result.Confidence >= OTPThreshold
	return result
}

// AgeMinutes returns how many minutes old the message is at the given time.
// Messages without a receipt timestamp report zero.
func (g *OTPGate) AgeMinutes(email *core.Email, now time.Time) int {
	if email.ReceivedAt.IsZero() || now.Before(email.ReceivedAt) {
		return 0
	}
	return int(now.Sub(email.ReceivedAt).Minutes())
}

// Expired reports whether a detected code is likely no longer usable, either
// because the message is older than the gate's expiry window or older than an
// expiry the body states itself.
func (g *OTPGate) Expired(email *core.Email, now time.Time) bool {
	age := time.Duration(g.AgeMinutes(email, now)) * time.Minute

	window := g.expiryWindow
	if m := otpExpiryPattern.FindStringSubmatch(email.Body); m != nil {
		if mins, err := strconv.Atoi(m[1]); err == nil && mins > 0 {
			window = time.Duration(mins) * time.Minute
		}
	}

	return age > window
}
