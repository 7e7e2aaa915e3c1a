package gates

import (
	"fmt"
	"strings"

	"github.com/mikey/mail-priority/internal/core"
)

var autoResponseHeaders = []string{
	"x-auto-response-suppress",
	"x-autoreply",
	"x-autorespond",
	"auto-submitted",
}

// AutomationGate detects machine-generated messages. It only flags the
// signal; the penalty is applied downstream by the scorer.
type AutomationGate struct{}

// NewAutomationGate creates a new automation gate
func NewAutomationGate() *AutomationGate {
	return &AutomationGate{}
}

// Evaluate inspects a message for automated-submission markers
func (g *AutomationGate) Evaluate(email *core.Email) core.GateResult {
	var result core.GateResult

	if v := strings.ToLower(email.Header("auto-submitted")); v != "" && v != "no" {
		record(&result, 0.95, fmt.Sprintf("auto-submitted header: %s", v))
	}

	for _, h := range autoResponseHeaders {
		if h == "auto-submitted" {
			continue
		}
		if email.HasHeader(h) {
			record(&result, 0.85, fmt.Sprintf("auto-response header present: %s", h))
			break
		}
	}

	if strings.EqualFold(email.Header("precedence"), "auto_reply") {
		record(&result, 0.85, "auto_reply precedence header")
	}

	result.Matched = len(result.Reasons) > 0
	return result
}
