package token

import (
	"context"

	"recipe-push-server/internal/model"
)

type IRepository interface {
	GetByUser(ctx context.Context, userId string) ([]model.NotificationToken, error)
	DeleteByToken(ctx context.Context, token string) error
}
