package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brightclass/conference-hub/internal/domain/notification"
)

// LogSender delivers notifications to the log. It stands in for the real
// email and SMS gateways in development and test environments.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a new log-backed sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send implements notification.Sender.
func (s *LogSender) Send(ctx context.Context, n *notification.Notification) error {
	s.logger.Info("delivering notification",
		"notification_id", n.ID,
		"channel", n.Channel,
		"type", n.Type,
		"priority", n.Priority,
		"recipient", n.RecipientID,
		"subject", n.Subject,
	)
	return nil
}

// ChannelSender routes each notification to the sender registered for its
// channel.
type ChannelSender struct {
	senders  map[notification.Channel]notification.Sender
	fallback notification.Sender
}

// NewChannelSender creates a router with the given fallback.
func NewChannelSender(fallback notification.Sender) *ChannelSender {
	return &ChannelSender{
		senders:  make(map[notification.Channel]notification.Sender),
		fallback: fallback,
	}
}

// Register binds a sender to a channel.
func (s *ChannelSender) Register(channel notification.Channel, sender notification.Sender) {
	s.senders[channel] = sender
}

// Send implements notification.Sender.
func (s *ChannelSender) Send(ctx context.Context, n *notification.Notification) error {
	if sender, ok := s.senders[n.Channel]; ok {
		return sender.Send(ctx, n)
	}
	if s.fallback != nil {
		return s.fallback.Send(ctx, n)
	}
	return fmt.Errorf("no sender registered for channel %q", n.Channel)
}
