package model

// Notifier delivers an alert summary to its recipients. The body is HTML.
type Notifier interface {
	Send(subject, htmlBody string) error
}
