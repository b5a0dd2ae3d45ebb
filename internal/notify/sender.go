// Package notify delivers one-time codes and account notices over mail and SMS.
package notify

import "log"

// Sender delivers a message to a single contact (mail address or phone number).
// Implementations must not log the message body; it may contain a one-time code.
type Sender interface {
	Send(to, subject, body string) error
}

// NopSender discards messages, logging only the destination. Used when a
// transport is not configured so code issuance still succeeds.
type NopSender struct {
	// Kind names the missing transport in log lines (e.g. "mail", "sms").
	Kind string
}

// Send logs the skipped delivery and returns nil.
func (n NopSender) Send(to, subject, body string) error {
	log.Printf("notify: %s transport not configured, skipping delivery to %s", n.Kind, to)
	return nil
}
