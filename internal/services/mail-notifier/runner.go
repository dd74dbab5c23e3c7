package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/taehun/board/internal/domain/maillog"
	kafkax "github.com/taehun/board/internal/repository/kafka"
)

type Runner struct {
	log  *zap.Logger
	cons *kafkax.Consumer
	mail *Mailer
	logs maillog.Repo

	mConsumed prometheus.Counter
	mSent     prometheus.Counter
	mErrors   prometheus.Counter
}

func NewRunner(
	log *zap.Logger,
	cons *kafkax.Consumer,
	mail *Mailer,
	logs maillog.Repo,
) *Runner {
	return &Runner{
		log:  log,
		cons: cons,
		mail: mail,
		logs: logs,
		mConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_notifier_messages_consumed_total",
			Help: "Verification mail events consumed",
		}),
		mSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_notifier_emails_sent_total",
			Help: "Emails sent",
		}),
		mErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_notifier_errors_total",
			Help: "Errors",
		}),
	}
}

func (r *Runner) Run(ctx context.Context) error {
	handler := kafkax.JSONHandler(
		func(ctx context.Context, _ []byte, ev *kafkax.VerificationMail) error {
			r.mConsumed.Inc()
			if ev.Email == "" || ev.Code == "" {
				r.log.Warn("invalid verification event", zap.String("email", ev.Email))
				return nil
			}
			return r.handleVerification(ctx, ev)
		},
	)

	if err := r.cons.Consume(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		r.mErrors.Inc()
		r.log.Warn("kafka consume", zap.Error(err))
		return err
	}
	return ctx.Err()
}

func (r *Runner) handleVerification(ctx context.Context, ev *kafkax.VerificationMail) error {
	subject := "Email verification code"
	body := fmt.Sprintf(
		"Hello!\n\nYour verification code is %s.\nIt expires in 5 minutes.\n\nBoard Team",
		ev.Code,
	)

	if err := r.mail.Send(ctx, ev.Email, subject, body); err != nil {
		r.mErrors.Inc()
		return fmt.Errorf("send email: %w", err)
	}
	r.mSent.Inc()

	if r.logs != nil {
		e := &maillog.Entry{
			Email:   ev.Email,
			Kind:    "verification",
			SentAt:  time.Now().UTC(),
			Payload: body,
		}
		if err := r.logs.Create(ctx, e); err != nil {
			// The mail went out; a lost log row should not replay it.
			r.log.Warn("mail log write failed", zap.Error(err))
		}
	}

	return nil
}
