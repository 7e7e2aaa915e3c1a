package source

import (
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/mikey/mail-priority/internal/core"
)

// ParseMessage reads an RFC822 message and converts it into the pipeline's
// Email record. Header names are lower-cased; a missing or unparsable Date
// header falls back to the given receipt time.
func ParseMessage(r io.Reader, id string, receivedAt time.Time) (*core.Email, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}

	headers := make(map[string]string, len(msg.Header))
	for name, values := range msg.Header {
		if len(values) > 0 {
			headers[strings.ToLower(name)] = values[0]
		}
	}

	from := msg.Header.Get("From")
	fromName := ""
	if addr, err := mail.ParseAddress(from); err == nil {
		from = addr.Address
		fromName = addr.Name
	}

	var to []string
	if addrs, err := msg.Header.AddressList("To"); err == nil {
		for _, a := range addrs {
			to = append(to, a.Address)
		}
	}

	if date, err := msg.Header.Date(); err == nil {
		receivedAt = date
	}

	return &core.Email{
		ID:          id,
		From:        from,
		FromName:    fromName,
		To:          to,
		Subject:     msg.Header.Get("Subject"),
		Body:        string(bodyBytes),
		Headers:     headers,
		ContentType: msg.Header.Get("Content-Type"),
		ReceivedAt:  receivedAt,
	}, nil
}
