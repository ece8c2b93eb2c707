package preference

import (
	"context"

	"recipe-push-server/internal/model"
)

type IRepository interface {
	GetByUser(ctx context.Context, userId string) (model.NotificationPreferences, error)
}
