// Package vip checks senders against the user's manual VIP lists.
package vip

import (
	"strings"

	"go.uber.org/zap"
)

// Checker matches sender addresses against manually flagged VIP addresses
// and domains
type Checker struct {
	addresses map[string]struct{}
	domains   []string
	logger    *zap.Logger
}

// NewChecker creates a VIP checker. Entries are normalized to lower case.
func NewChecker(addresses, domains []string, logger *zap.Logger) *Checker {
	addrSet := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		addrSet[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	normalizedDomains := make([]string, 0, len(domains))
	for _, d := range domains {
		normalizedDomains = append(normalizedDomains, strings.ToLower(strings.TrimSpace(d)))
	}

	if logger != nil && (len(addrSet) > 0 || len(normalizedDomains) > 0) {
		logger.Info("Initialized VIP checker",
			zap.Int("addresses", len(addrSet)),
			zap.Strings("domains", normalizedDomains))
	}

	return &Checker{
		addresses: addrSet,
		domains:   normalizedDomains,
		logger:    logger,
	}
}

// IsVIP reports whether a sender address or its domain is flagged as VIP
func (c *Checker) IsVIP(address string) bool {
	address = strings.ToLower(strings.TrimSpace(address))
	if _, ok := c.addresses[address]; ok {
		return true
	}

	parts := strings.SplitN(address, "@", 2)
	if len(parts) != 2 {
		return false
	}
	domain := parts[1]
	for _, d := range c.domains {
		if d == domain {
			if c.logger != nil {
				c.logger.Debug("Sender domain is VIP",
					zap.String("domain", domain),
					zap.String("address", address))
			}
			return true
		}
	}
	return false
}
