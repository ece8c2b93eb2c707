package recipe

import (
	"context"

	"recipe-push-server/internal/model"
)

type IRepository interface {
	GetById(ctx context.Context, id string) (*model.Recipe, error)
}
