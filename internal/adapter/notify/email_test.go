package notify

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/srgjo27/ticket_marketplace/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmation() ports.TicketConfirmation {
	seat := "B12"
	return ports.TicketConfirmation{
		To:        domain.BuyerContact{Email: "ana@example.com", Name: "Ana"},
		TicketID:  uuid.New(),
		EventName: "Jazz Night",
		EventDate: time.Date(2026, time.November, 7, 20, 30, 0, 0, time.UTC),
		Venue:     "Blue Hall",
		Seat:      &seat,
	}
}

func TestEmailNotifier_RenderBody(t *testing.T) {
	n, err := NewEmailNotifier(EmailConfig{Host: "localhost", Port: 25, From: "tickets@example.com"}, nil)
	require.NoError(t, err)

	c := confirmation()
	body, err := n.renderBody(c)
	require.NoError(t, err)

	assert.Contains(t, body, "Your ticket for Jazz Night")
	assert.Contains(t, body, "November 07, 2026")
	assert.Contains(t, body, "08:30 PM")
	assert.Contains(t, body, "Blue Hall")
	assert.Contains(t, body, "B12")
	assert.Contains(t, body, c.TicketID.String())
	assert.Contains(t, body, "cid:ticket-qr.png")
}

func TestEmailNotifier_RenderBodyResaleWithoutSeat(t *testing.T) {
	n, err := NewEmailNotifier(EmailConfig{}, nil)
	require.NoError(t, err)

	c := confirmation()
	c.Seat = nil
	c.Resale = true

	body, err := n.renderBody(c)
	require.NoError(t, err)

	assert.Contains(t, body, "Your resale ticket for Jazz Night")
	assert.Contains(t, body, "General admission")
}

func TestEmailNotifier_BuildMessage(t *testing.T) {
	n, err := NewEmailNotifier(EmailConfig{From: "tickets@example.com"}, nil)
	require.NoError(t, err)

	msg, err := n.buildMessage(confirmation())
	require.NoError(t, err)

	assert.Equal(t, []string{"Your ticket for Jazz Night"}, msg.GetHeader("Subject"))
	assert.Equal(t, []string{"tickets@example.com"}, msg.GetHeader("From"))

	var raw bytes.Buffer
	_, err = msg.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "ticket-qr.png")
}

func TestEmailNotifier_SendHonoursCancelledContext(t *testing.T) {
	n, err := NewEmailNotifier(EmailConfig{Host: "192.0.2.1", Port: 2525, From: "tickets@example.com"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = n.SendTicketConfirmation(ctx, confirmation())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogNotifier_NeverFails(t *testing.T) {
	assert.NoError(t, NewLogNotifier(nil).SendTicketConfirmation(context.Background(), confirmation()))
}
