// Package mailer is the outbound mail transport seam used by the sharing
// engine. Only the send contract lives here; rendering stays with the caller.
package mailer

import "context"

// Mailer delivers one HTML message to one recipient. Implementations must be
// safe for concurrent use; the sharing engine fans out one Send per recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// HealthPinger is implemented by transports that can verify connectivity
// without sending a message.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
