package source

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/mail-priority/internal/core"
)

const sampleMessage = "From: Alice Smith <alice@example.com>\r\n" +
	"To: me@corp.example\r\n" +
	"Subject: Quarterly review\r\n" +
	"Date: Mon, 02 Mar 2026 10:30:00 +0000\r\n" +
	"List-Unsubscribe: <mailto:unsub@example.com>\r\n" +
	"\r\n" +
	"Can you review the numbers by Friday?\r\n"

func TestParseMessage(t *testing.T) {
	fallback := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	email, err := ParseMessage(strings.NewReader(sampleMessage), "m1", fallback)
	require.NoError(t, err)

	assert.Equal(t, "m1", email.ID)
	assert.Equal(t, "alice@example.com", email.From)
	assert.Equal(t, "Alice Smith", email.FromName)
	assert.Equal(t, []string{"me@corp.example"}, email.To)
	assert.Equal(t, "Quarterly review", email.Subject)
	assert.Contains(t, email.Body, "review the numbers")

	// headers are stored lower-cased
	assert.True(t, email.HasHeader("list-unsubscribe"))
	assert.Equal(t, "me@corp.example", email.Header("to"))

	// the Date header wins over the fallback
	assert.Equal(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC), email.ReceivedAt.UTC())
}

func TestParseMessageWithoutDateHeader(t *testing.T) {
	raw := "From: bob@example.com\r\nSubject: hi\r\n\r\nhello\r\n"
	fallback := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	email, err := ParseMessage(strings.NewReader(raw), "m2", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, email.ReceivedAt)
}

func TestParseMessageMalformed(t *testing.T) {
	_, err := ParseMessage(strings.NewReader("not an rfc822 message"), "m3", time.Now())
	assert.Error(t, err)
}

func TestMemorySourceRoundTrip(t *testing.T) {
	src := NewMemorySource()
	email := &core.Email{ID: "m1", From: "alice@example.com", Subject: "hi"}
	thread := &core.ThreadContext{Length: 2, LastFromMe: true}
	src.Add(email, thread)

	got, err := src.GetMessage(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, email, got)

	gotThread, err := src.GetThread(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, thread, gotThread)
}

func TestMemorySourceUnknownMessage(t *testing.T) {
	src := NewMemorySource()

	_, err := src.GetMessage(context.Background(), "ghost")
	assert.ErrorIs(t, err, core.ErrMessageNotFound)
}

func TestMemorySourceDefaultThread(t *testing.T) {
	src := NewMemorySource()
	src.Add(&core.Email{ID: "m1"}, nil)

	thread, err := src.GetThread(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, 1, thread.Length)
}
