// Package notify delivers low-stock alerts to the destinations configured in settings.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"it-inventory/internal/model"
	"it-inventory/pkg/config"
	"it-inventory/pkg/metrics"
)

// Channel is one delivery destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, event model.LowStockEvent) error
}

// Dispatcher fans a low-stock event out to every configured channel.
// Delivery runs in the background and failures are only logged.
type Dispatcher struct {
	smtp     SMTPConfig
	timeout  time.Duration
	log      *zap.Logger
	channels func(settings model.Settings) []Channel
	wg       sync.WaitGroup
}

func NewDispatcher(cfg *config.Config, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		smtp: SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		},
		timeout: cfg.NotifyTimeout,
		log:     log.Named("notify"),
	}
	d.channels = d.channelsFor
	return d
}

// channelsFor builds the destinations named by a settings snapshot.
func (d *Dispatcher) channelsFor(settings model.Settings) []Channel {
	var chs []Channel
	if settings.AlertEmail != "" {
		if d.smtp.Enabled() {
			chs = append(chs, NewEmailChannel(d.smtp, settings.AlertEmail, settings.AppName))
		} else {
			d.log.Debug("alert email configured but SMTP is not, skipping email", zap.String("to", settings.AlertEmail))
		}
	}
	if settings.WebhookTeams != "" {
		chs = append(chs, NewTeamsChannel(settings.WebhookTeams, settings.AppName, d.timeout))
	}
	if settings.WebhookSlack != "" {
		chs = append(chs, NewSlackChannel(settings.WebhookSlack, settings.AppName, d.timeout))
	}
	return chs
}

// Notify never blocks on delivery and never reports failure to the caller.
func (d *Dispatcher) Notify(ctx context.Context, event model.LowStockEvent, settings model.Settings) {
	chs := d.channels(settings)
	if len(chs) == 0 {
		d.log.Info("low stock, no notification channel configured",
			zap.Uint("item_id", event.ItemID),
			zap.Int("stock", event.Stock))
		return
	}

	// The request that triggered the event may finish before delivery does.
	base := context.WithoutCancel(ctx)
	for _, ch := range chs {
		d.wg.Add(1)
		go func(ch Channel) {
			defer d.wg.Done()
			d.send(base, ch, event)
		}(ch)
	}
}

func (d *Dispatcher) send(ctx context.Context, ch Channel, event model.LowStockEvent) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.NotificationsTotal.WithLabelValues(ch.Name(), "error").Inc()
			d.log.Error("notification channel panicked", zap.String("channel", ch.Name()), zap.Any("panic", r))
		}
	}()

	if err := ch.Send(ctx, event); err != nil {
		metrics.NotificationsTotal.WithLabelValues(ch.Name(), "error").Inc()
		d.log.Warn("low stock notification failed",
			zap.String("channel", ch.Name()),
			zap.Uint("item_id", event.ItemID),
			zap.Error(err))
		return
	}
	metrics.NotificationsTotal.WithLabelValues(ch.Name(), "sent").Inc()
	d.log.Info("low stock notification sent",
		zap.String("channel", ch.Name()),
		zap.Uint("item_id", event.ItemID),
		zap.Int("stock", event.Stock))
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func summary(event model.LowStockEvent) string {
	return fmt.Sprintf("Item '%s' reached a critical level of %d units (minimum %d).",
		event.ItemName, event.Stock, event.MinStock)
}

func title(appName string) string {
	if appName == "" {
		return "Low stock alert"
	}
	return appName + ": low stock alert"
}
