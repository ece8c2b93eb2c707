package menu

import (
	"context"

	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/model"
)

type IRepository interface {
	Listen(ctx context.Context) (<-chan event.SnapshotEvent[model.Menu], error)
}
