// Package notifications posts command outcomes to a Discord webhook.
// Without a configured webhook every notification is a silent no-op.
package notifications
