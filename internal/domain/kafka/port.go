package kafka

import "context"

type MailEvents interface {
	PublishVerificationCode(ctx context.Context, email, code string) error
}
