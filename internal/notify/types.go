// Package notify delivers notification text to a channel. The transport
// is a collaborator: the monitoring core only sees the Sender interface.
package notify

import "context"

// Sender pushes one text message to the configured channel.
type Sender interface {
	Notify(ctx context.Context, text string) error
}

// DeliveryError wraps a transport failure so callers can distinguish
// delivery problems from other errors via errors.As.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return "notification delivery failed: " + e.Err.Error() }

func (e *DeliveryError) Unwrap() error { return e.Err }
