package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/helpdesk-hq/helpdesk-service/internal/config"
	"github.com/helpdesk-hq/helpdesk-service/internal/events"
	"github.com/helpdesk-hq/helpdesk-service/internal/notify"
)

// NotificationService emits outbound email for domain events. Delivery is
// best-effort: any failure is logged and swallowed so the triggering write
// always succeeds.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     notify.Mailer
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer notify.Mailer, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketMessageAdded, n.handleTicketMessageAdded)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	ticketURL := fmt.Sprintf("%s/ticket/%s", strings.TrimRight(n.cfg.BaseURL, "/"), event.TicketID)

	if n.cfg.HelpdeskTo != "" {
		n.send(ctx, notify.Email{
			To:      n.cfg.HelpdeskTo,
			From:    n.cfg.EmailFrom,
			Subject: fmt.Sprintf("New Ticket %s", event.TicketID),
			HTML:    helpdeskAlertBody(event.TicketID, ticketURL, payload),
		}, event.TicketID, "helpdesk")
	}

	if payload.Email != "" {
		n.send(ctx, notify.Email{
			To:      payload.Email,
			From:    n.cfg.EmailFrom,
			Subject: fmt.Sprintf("We received your ticket (%s)", event.TicketID),
			HTML:    requesterAckBody(event.TicketID, ticketURL, payload),
		}, event.TicketID, "requester")
	}
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketMessageAdded(_ context.Context, event events.Event) error {
	n.logger.Info("TicketMessageAdded", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) send(ctx context.Context, email notify.Email, ticketID, audience string) {
	if n.mailer == nil {
		return
	}
	if err := n.mailer.Send(ctx, email); err != nil {
		n.logger.Error("email send failed",
			zap.String("ticket_id", ticketID),
			zap.String("audience", audience),
			zap.Error(err))
	}
}

func helpdeskAlertBody(ticketID, ticketURL string, p events.TicketCreatedPayload) string {
	return fmt.Sprintf(`New ticket <b>%s</b><br/>
Subject: %s<br/>
Location: %s<br/>
From: %s<br/>
Details:<br/><pre>%s</pre><br/>
<a href="%s">Open Ticket</a>`,
		ticketID, p.Subject, p.Location, p.Email, p.Details, ticketURL)
}

func requesterAckBody(ticketID, ticketURL string, p events.TicketCreatedPayload) string {
	greeting := "Hi"
	if p.RequesterName != nil {
		greeting = "Hi " + *p.RequesterName
	}
	return fmt.Sprintf(`%s,<br/><br/>
We have received your helpdesk request.<br/><br/>
<b>Ticket ID:</b> %s<br/>
<b>Subject:</b> %s<br/>
<b>Location:</b> %s<br/><br/>
You can view and reply to your ticket here:<br/>
<a href="%s">%s</a><br/><br/>
Thanks,<br/>
Helpdesk`,
		greeting, ticketID, p.Subject, p.Location, ticketURL, ticketURL)
}
