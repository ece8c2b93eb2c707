package shoplist

import (
	"context"

	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/model"
)

type IRepository interface {
	GetById(ctx context.Context, id string) (*model.Shoplist, error)
	ListenItems(ctx context.Context) (<-chan event.SnapshotEvent[model.ShoplistItem], error)
}
