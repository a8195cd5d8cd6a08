package notify

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"

	"github.com/skip2/go-qrcode"
	"github.com/srgjo27/ticket_marketplace/internal/core/ports"
	"gopkg.in/gomail.v2"
)

//go:embed ticket_email.html
var ticketEmailTemplate string

const (
	qrFileName = "ticket-qr.png"
	qrSize     = 256
)

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type ticketEmailData struct {
	Name      string
	EventName string
	EventDate string
	EventTime string
	Venue     string
	Seat      string
	TicketID  string
	Resale    bool
	QRName    string
}

// EmailNotifier sends one confirmation email per ticket with its QR code
// embedded.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	tmpl   *template.Template
	logger *slog.Logger
}

func NewEmailNotifier(cfg EmailConfig, logger *slog.Logger) (*EmailNotifier, error) {
	tmpl, err := template.New("ticket_email").Parse(ticketEmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email template: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		tmpl:   tmpl,
		logger: logger,
	}, nil
}

func (n *EmailNotifier) SendTicketConfirmation(ctx context.Context, c ports.TicketConfirmation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := n.buildMessage(c)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(msg)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send confirmation for ticket %s: %w", c.TicketID, err)
		}
	}

	n.logger.Info("ticket confirmation sent", "ticket_id", c.TicketID, "email", c.To.Email)
	return nil
}

func (n *EmailNotifier) buildMessage(c ports.TicketConfirmation) (*gomail.Message, error) {
	body, err := n.renderBody(c)
	if err != nil {
		return nil, err
	}

	qr, err := qrcode.Encode(c.TicketID.String(), qrcode.High, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetAddressHeader("To", c.To.Email, c.To.Name)
	m.SetHeader("Subject", subject(c))
	m.SetBody("text/html", body)
	m.Embed(qrFileName, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(qr)
		return err
	}))

	return m, nil
}

func (n *EmailNotifier) renderBody(c ports.TicketConfirmation) (string, error) {
	seat := "General admission"
	if c.Seat != nil && *c.Seat != "" {
		seat = *c.Seat
	}

	data := ticketEmailData{
		Name:      c.To.Name,
		EventName: c.EventName,
		EventDate: c.EventDate.Format("January 02, 2006"),
		EventTime: c.EventDate.Format("03:04 PM"),
		Venue:     c.Venue,
		Seat:      seat,
		TicketID:  c.TicketID.String(),
		Resale:    c.Resale,
		QRName:    qrFileName,
	}

	var body bytes.Buffer
	if err := n.tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}

	return body.String(), nil
}

func subject(c ports.TicketConfirmation) string {
	return fmt.Sprintf("Your ticket for %s", c.EventName)
}

// LogNotifier records confirmations in the log instead of mailing them.
// It is used when no SMTP server is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendTicketConfirmation(_ context.Context, c ports.TicketConfirmation) error {
	n.logger.Info("ticket confirmation",
		"ticket_id", c.TicketID,
		"email", c.To.Email,
		"event", c.EventName,
		"resale", c.Resale,
	)
	return nil
}
