package mail

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taehun/board/internal/domain/auth"
	"github.com/taehun/board/internal/domain/outbox"
	outboxpkg "github.com/taehun/board/internal/outbox"
)

var (
	ErrThrottled    = errors.New("a code was already sent; wait for it to expire")
	ErrCodeExpired  = errors.New("verification code expired or never sent")
	ErrCodeMismatch = errors.New("verification code does not match")
)

const codeTTL = 5 * time.Minute

// CodeStore is the slice of the redis store the mail service needs.
type CodeStore interface {
	PutCode(ctx context.Context, email, code string, ttl time.Duration) (bool, error)
	GetCode(ctx context.Context, email string) (string, error)
}

type Usecase struct {
	codes  CodeStore
	outbox outbox.Repository
	log    *zap.Logger
}

func NewUsecase(codes CodeStore, ob outbox.Repository, log *zap.Logger) *Usecase {
	return &Usecase{codes: codes, outbox: ob, log: log.With(zap.String("component", "mail.usecase"))}
}

// SendCode issues a fresh verification code for email and queues the
// mail through the outbox. A still-live previous code throttles the
// resend.
func (u *Usecase) SendCode(ctx context.Context, email string) error {
	code, err := sixDigits()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	stored, err := u.codes.PutCode(ctx, email, code, codeTTL)
	if err != nil {
		return err
	}
	if !stored {
		return ErrThrottled
	}

	payload, err := json.Marshal(outboxpkg.VerificationMailPayload{
		Email: email,
		Code:  code,
		At:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}
	if err := u.outbox.Enqueue(ctx, uuid.NewString(), outbox.KindVerificationMail, payload); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}

	u.log.Info("verification code queued", zap.String("email", email))
	return nil
}

// VerifyCode checks the submitted code against the stored one.
func (u *Usecase) VerifyCode(ctx context.Context, email, code string) error {
	want, err := u.codes.GetCode(ctx, email)
	if errors.Is(err, auth.ErrNotFound) {
		return ErrCodeExpired
	}
	if err != nil {
		return err
	}
	if want != code {
		return ErrCodeMismatch
	}
	return nil
}

func sixDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
