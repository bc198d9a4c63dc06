package infrastructure

import "context"

type (
	// MessagePublisher puts a message with optional routing attributes onto
	// a topic.
	MessagePublisher interface {
		Publish(ctx context.Context, topic string, key, value []byte, attrs map[string]string) error
		Close() error
	}

	// MailSender delivers one outbound notification mail.
	MailSender interface {
		Send(ctx context.Context, subject, htmlBody string) error
	}
)
