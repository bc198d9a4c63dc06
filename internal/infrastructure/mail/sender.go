package mail

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Sender delivers notification mail over SMTP. From/to are fixed per
// process, matching the single notification recipient of the pipeline.
type Sender struct {
	client *mail.Client
	from   string
	to     string
}

func New(host string, port int, username, password, from, to string) (*Sender, error) {
	opts := []mail.Option{
		mail.WithPort(port),
	}

	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail - New - mail.NewClient: %w", err)
	}

	return &Sender{
		client: client,
		from:   from,
		to:     to,
	}, nil
}

func (s *Sender) Send(ctx context.Context, subject, htmlBody string) error {
	msg := mail.NewMsg()

	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("mail - Send - msg.From: %w", err)
	}

	if err := msg.To(s.to); err != nil {
		return fmt.Errorf("mail - Send - msg.To: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail - Send - s.client.DialAndSendWithContext: %w", err)
	}

	return nil
}
