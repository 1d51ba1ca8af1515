package notify

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"it-inventory/internal/model"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailChannel struct {
	mailer  mailer
	from    string
	to      string
	appName string
}

func NewEmailChannel(cfg SMTPConfig, to, appName string) *EmailChannel {
	return &EmailChannel{
		mailer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:    cfg.From,
		to:      to,
		appName: appName,
	}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Send(ctx context.Context, event model.LowStockEvent) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.to)
	m.SetHeader("Subject", fmt.Sprintf("%s - %s", title(e.appName), event.ItemName))
	m.SetBody("text/plain", emailBody(event))

	// gomail has no context support; abandon the dial when ctx expires.
	done := make(chan error, 1)
	go func() { done <- e.mailer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", e.to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func emailBody(event model.LowStockEvent) string {
	var b strings.Builder
	b.WriteString(summary(event))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Category: %s\n", event.Category)
	if event.TicketNumber != "" {
		fmt.Fprintf(&b, "Ticket: %s\n", event.TicketNumber)
	}
	if event.RequesterName != "" {
		fmt.Fprintf(&b, "Requester: %s\n", event.RequesterName)
	}
	fmt.Fprintf(&b, "Time: %s\n", event.OccurredAt.Format("2006-01-02 15:04:05 MST"))
	return b.String()
}
