package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"it-inventory/internal/model"
)

// postJSON sends payload with Fiber's HTTP client and treats any non-2xx status as a failure.
func postJSON(ctx context.Context, url string, payload interface{}, timeout time.Duration) error {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	code, body, errs := fiber.Post(url).JSON(payload).Timeout(timeout).Bytes()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("webhook returned status %d: %s", code, truncate(string(body), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

type SlackChannel struct {
	url     string
	appName string
	timeout time.Duration
}

func NewSlackChannel(url, appName string, timeout time.Duration) *SlackChannel {
	return &SlackChannel{url: url, appName: appName, timeout: timeout}
}

func (s *SlackChannel) Name() string { return "slack" }

func (s *SlackChannel) Send(ctx context.Context, event model.LowStockEvent) error {
	payload := fiber.Map{
		"text": fmt.Sprintf(":warning: *%s*\n%s", title(s.appName), summary(event)),
	}
	return postJSON(ctx, s.url, payload, s.timeout)
}

type TeamsChannel struct {
	url     string
	appName string
	timeout time.Duration
}

func NewTeamsChannel(url, appName string, timeout time.Duration) *TeamsChannel {
	return &TeamsChannel{url: url, appName: appName, timeout: timeout}
}

func (t *TeamsChannel) Name() string { return "teams" }

func (t *TeamsChannel) Send(ctx context.Context, event model.LowStockEvent) error {
	facts := []fiber.Map{
		{"name": "Item", "value": event.ItemName},
		{"name": "Category", "value": event.Category},
		{"name": "Stock", "value": fmt.Sprintf("%d (minimum %d)", event.Stock, event.MinStock)},
	}
	if event.TicketNumber != "" {
		facts = append(facts, fiber.Map{"name": "Ticket", "value": event.TicketNumber})
	}

	payload := fiber.Map{
		"@type":      "MessageCard",
		"@context":   "https://schema.org/extensions",
		"summary":    title(t.appName),
		"themeColor": "D9534F",
		"title":      title(t.appName),
		"sections": []fiber.Map{{
			"activityTitle": summary(event),
			"facts":         facts,
		}},
	}
	return postJSON(ctx, t.url, payload, t.timeout)
}
