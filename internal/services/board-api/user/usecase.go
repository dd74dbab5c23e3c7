package user

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taehun/board/internal/domain/board"
	"github.com/taehun/board/internal/domain/user"
	"github.com/taehun/board/internal/repository/postgres"
)

var (
	ErrUsernameTaken    = errors.New("username already in use")
	ErrEmailTaken       = errors.New("email already in use")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrWrongPassword    = errors.New("current password is wrong")
	ErrSamePassword     = errors.New("new password must differ from the current one")
	ErrNoSuchUser       = errors.New("no such user")
)

// ImageStore is the slice of the file uploader the user service needs.
type ImageStore interface {
	Upload(ctx context.Context, body io.Reader, filename, contentType string) (string, error)
}

type RegisterInput struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	CheckPassword string `json:"checkPassword"`
}

type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type PasswordReset struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type Image struct {
	Body        io.Reader
	Filename    string
	ContentType string
}

type Usecase struct {
	users  user.Repo
	posts  board.PostRepo
	images ImageStore
	log    *zap.Logger
}

func NewUsecase(users user.Repo, posts board.PostRepo, images ImageStore, log *zap.Logger) *Usecase {
	return &Usecase{users: users, posts: posts, images: images, log: log.With(zap.String("component", "user.usecase"))}
}

func (u *Usecase) Register(ctx context.Context, in RegisterInput, img *Image) error {
	if in.Password != in.CheckPassword {
		return ErrPasswordMismatch
	}
	if _, err := u.users.GetByUsername(ctx, in.Username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, postgres.ErrNotFound) {
		return err
	}
	if _, err := u.users.GetByEmail(ctx, in.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, postgres.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var imageURL string
	if img != nil {
		if imageURL, err = u.images.Upload(ctx, img.Body, img.Filename, img.ContentType); err != nil {
			return fmt.Errorf("upload profile image: %w", err)
		}
	}

	rec := &user.User{
		Username:        in.Username,
		Email:           in.Email,
		Password:        string(hash),
		ProfileImageURL: imageURL,
	}
	if err := u.users.Create(ctx, rec); err != nil {
		if errors.Is(err, postgres.ErrConflict) {
			return ErrUsernameTaken
		}
		return err
	}
	u.log.Info("user registered", zap.String("username", in.Username))
	return nil
}

func (u *Usecase) Profile(ctx context.Context, username string) (*user.User, error) {
	rec, err := u.users.GetByUsername(ctx, username)
	if errors.Is(err, postgres.ErrNotFound) {
		return nil, ErrNoSuchUser
	}
	return rec, err
}

func (u *Usecase) List(ctx context.Context) ([]user.User, error) {
	return u.users.List(ctx)
}

func (u *Usecase) UpdateProfile(ctx context.Context, username string, upd ProfileUpdate, img *Image) error {
	rec, err := u.users.GetByUsername(ctx, username)
	if errors.Is(err, postgres.ErrNotFound) {
		return ErrNoSuchUser
	}
	if err != nil {
		return err
	}

	if upd.Username != "" {
		rec.Username = upd.Username
	}
	if upd.Email != "" {
		rec.Email = upd.Email
	}
	if upd.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		rec.Password = string(hash)
	}
	if img != nil {
		url, err := u.images.Upload(ctx, img.Body, img.Filename, img.ContentType)
		if err != nil {
			return fmt.Errorf("upload profile image: %w", err)
		}
		rec.ProfileImageURL = url
	}

	if err := u.users.Update(ctx, rec); err != nil {
		if errors.Is(err, postgres.ErrConflict) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (u *Usecase) ResetPassword(ctx context.Context, username string, in PasswordReset) error {
	rec, err := u.users.GetByUsername(ctx, username)
	if errors.Is(err, postgres.ErrNotFound) {
		return ErrNoSuchUser
	}
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.Password), []byte(in.CurrentPassword)) != nil {
		return ErrWrongPassword
	}
	if in.CurrentPassword == in.NewPassword {
		return ErrSamePassword
	}
	if in.NewPassword != in.ConfirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	rec.Password = string(hash)
	return u.users.Update(ctx, rec)
}

func (u *Usecase) Delete(ctx context.Context, username string) error {
	err := u.users.Delete(ctx, username)
	if errors.Is(err, postgres.ErrNotFound) {
		return ErrNoSuchUser
	}
	return err
}

// Exists reports which of email/username are already taken.
func (u *Usecase) Exists(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error) {
	if email != "" {
		if _, err := u.users.GetByEmail(ctx, email); err == nil {
			emailTaken = true
		} else if !errors.Is(err, postgres.ErrNotFound) {
			return false, false, err
		}
	}
	if username != "" {
		if _, err := u.users.GetByUsername(ctx, username); err == nil {
			usernameTaken = true
		} else if !errors.Is(err, postgres.ErrNotFound) {
			return false, false, err
		}
	}
	return emailTaken, usernameTaken, nil
}

func (u *Usecase) Statistics(ctx context.Context, username string) (*user.Stats, error) {
	rec, err := u.users.GetByUsername(ctx, username)
	if errors.Is(err, postgres.ErrNotFound) {
		return nil, ErrNoSuchUser
	}
	if err != nil {
		return nil, err
	}

	posts, err := u.posts.CountByWriter(ctx, username)
	if err != nil {
		return nil, err
	}
	views, err := u.posts.SumViewsByWriter(ctx, username)
	if err != nil {
		return nil, err
	}
	return &user.Stats{TotalPosts: posts, TotalViews: views, JoinDate: rec.CreatedAt}, nil
}
