package main

import (
	"context"

	"go.uber.org/zap"

	config "github.com/taehun/board/internal/config/board-api"
	obdomain "github.com/taehun/board/internal/domain/outbox"
	kafkax "github.com/taehun/board/internal/repository/kafka"
	pg "github.com/taehun/board/internal/repository/postgres"
	"github.com/taehun/board/internal/repository/redisstore"
	authsvc "github.com/taehun/board/internal/services/board-api/auth"
	boardsvc "github.com/taehun/board/internal/services/board-api/board"
	"github.com/taehun/board/internal/services/board-api/files"
	mailsvc "github.com/taehun/board/internal/services/board-api/mail"
	usersvc "github.com/taehun/board/internal/services/board-api/user"
	"github.com/taehun/board/internal/token"
)

type deps struct {
	tokens     *token.Provider
	outboxRepo obdomain.Repository
	mailEvents *kafkax.MailEventsKafka

	authH  *authsvc.Handler
	userH  *usersvc.Handler
	boardH *boardsvc.Handler
	mailH  *mailsvc.Handler
}

func buildDeps(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
	db *pg.DB,
	store *redisstore.Store,
	producer *kafkax.Producer,
) (*deps, error) {
	tokens := token.NewProvider(token.Config{
		Secret:     token.SecretBytes(cfg.Auth.JWTSecret),
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}, store, logger)

	users := pg.NewUserRepo(db)
	posts := pg.NewPostRepo(db)
	comments := pg.NewCommentRepo(db)
	outboxRepo := pg.NewOutboxRepo(db)
	tx := pg.NewTransactor(db, logger)

	uploader, err := files.NewUploader(ctx, cfg.S3, logger)
	if err != nil {
		return nil, err
	}

	authUC := authsvc.NewUsecase(users, tokens, logger)
	userUC := usersvc.NewUsecase(users, posts, uploader, logger)
	boardUC := boardsvc.NewUsecase(posts, comments, tx, logger)
	mailUC := mailsvc.NewUsecase(store, outboxRepo, logger)

	return &deps{
		tokens:     tokens,
		outboxRepo: outboxRepo,
		mailEvents: kafkax.NewMailEventsKafka(producer),

		authH:  authsvc.NewHandler(authUC, logger),
		userH:  usersvc.NewHandler(userUC, logger),
		boardH: boardsvc.NewHandler(boardUC, logger),
		mailH:  mailsvc.NewHandler(mailUC, logger),
	}, nil
}
