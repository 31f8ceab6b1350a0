// Package mailer defines the outbound notification interface and its SMTP
// implementation. Notification delivery is best-effort throughout the
// application: a failed send is logged, never propagated into the
// processing pipeline.
package mailer

import "context"

// Message is one outbound notification email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer sends notification emails.
//
//go:generate mockgen -package mockmailer -source=mailer.go -destination=mock/mockmailer.go *
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
