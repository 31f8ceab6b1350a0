package mailer

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPOptions configure the SMTP mailer connection.
type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	// StartTLS upgrades the connection opportunistically when set.
	StartTLS bool
}

// SMTP implements Mailer over a plain SMTP submission connection.
type SMTP struct {
	options SMTPOptions
}

// NewSMTP creates an SMTP mailer with the given options.
func NewSMTP(options SMTPOptions) *SMTP {
	return &SMTP{options: options}
}

// Send delivers one message. A fresh client is dialed per send; notification
// volume is far too low to justify connection pooling.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	opts := []gomail.Option{gomail.WithPort(s.options.Port)}
	if s.options.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.options.Username),
			gomail.WithPassword(s.options.Password))
	}
	if s.options.StartTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	client, err := gomail.NewClient(s.options.Host, opts...)
	if err != nil {
		return fmt.Errorf("could not create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("could not send mail: %w", err)
	}

	return nil
}

var _ Mailer = (*SMTP)(nil)
