package kafka

import (
	"context"
	"time"

	"github.com/taehun/board/internal/domain/kafka"
)

// VerificationMail is the wire shape of a verification-code event.
type VerificationMail struct {
	Email string    `json:"email"`
	Code  string    `json:"code"`
	At    time.Time `json:"at"`
}

type MailEventsKafka struct {
	p *Producer
}

func NewMailEventsKafka(p *Producer) *MailEventsKafka { return &MailEventsKafka{p: p} }

var _ kafka.MailEvents = (*MailEventsKafka)(nil)

func (e *MailEventsKafka) PublishVerificationCode(ctx context.Context, email, code string) error {
	return e.p.PublishJSON(ctx, []byte(email), &VerificationMail{
		Email: email,
		Code:  code,
		At:    time.Now().UTC(),
	})
}
