package watcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	ierr "recipe-push-server/internal/errors"
	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/fanout"
	"recipe-push-server/internal/model"
	"recipe-push-server/internal/push"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// items of other collections share the collection group id
const shoplistCollection = "shoplists"

type ShoplistReader interface {
	GetById(ctx context.Context, id string) (*model.Shoplist, error)
}

// ShoplistItemHandler notifies the members of a shared shoplist about new items.
// Item paths seen so far, including those of the initial snapshot, are never notified.
type ShoplistItemHandler struct {
	shoplists ShoplistReader
	processed map[string]struct{}
	logger    zerolog.Logger
}

var _ Handler[model.ShoplistItem] = (*ShoplistItemHandler)(nil)

func NewShoplistItemHandler(shoplists ShoplistReader) *ShoplistItemHandler {
	return &ShoplistItemHandler{
		shoplists: shoplists,
		processed: map[string]struct{}{},
		logger:    log.With().Str("watcher", "items").Logger(),
	}
}

func (h *ShoplistItemHandler) Initialize(_ context.Context, snapshot event.Snapshot[model.ShoplistItem]) []fanout.Task {
	for _, change := range snapshot.Changes {
		h.processed[change.Path] = struct{}{}
	}
	return nil
}

func (h *ShoplistItemHandler) OnChange(ctx context.Context, change event.Change[model.ShoplistItem]) []fanout.Task {
	if change.Type != event.DbDocAdded {
		return nil
	}

	listId, ok := shoplistOf(change.Path)
	if !ok {
		h.logger.Debug().Str("item", change.Path).Msg("skip item outside of a shoplist")
		return nil
	}

	if _, ok := h.processed[change.Path]; ok {
		h.logger.Debug().Str("item", change.Path).Msg("skip item already processed")
		return nil
	}
	h.processed[change.Path] = struct{}{}

	list, err := h.shoplists.GetById(ctx, listId)
	if err != nil {
		if errors.Is(err, ierr.NotFound) {
			h.logger.Info().Str("item", change.Path).Msg("parent shoplist is gone, dropping item")
			return nil
		}
		h.logger.Error().Err(err).Str("item", change.Path).Msg("failed to resolve parent shoplist")
		return nil
	}

	if len(list.SharedWith) == 0 {
		h.logger.Info().Str("shoplist", list.Id).Msg("shoplist is not shared, skipping")
		return nil
	}

	item := change.Data
	recipients := Recipients(list.UserId, list.SharedWith, item.CreatedBy)
	if len(recipients) == 0 {
		h.logger.Info().Str("shoplist", list.Id).Msg("no recipients besides the author")
		return nil
	}

	msg := itemMessage(list, change.Id, item)
	tasks := make([]fanout.Task, 0, len(recipients))
	for _, recipient := range recipients {
		tasks = append(tasks, fanout.Task{
			RecipientId: recipient,
			Kind:        fanout.KindUpdate,
			Message:     msg,
		})
	}
	return tasks
}

// shoplistOf returns the shoplist id of an item path like "shoplists/s1/items/i1".
func shoplistOf(path string) (string, bool) {
	segments := strings.Split(path, "/")
	if len(segments) != 4 || segments[0] != shoplistCollection || segments[1] == "" {
		return "", false
	}
	return segments[1], true
}

func itemMessage(list *model.Shoplist, itemId string, item model.ShoplistItem) push.Message {
	name := list.Name
	if name == "" {
		name = "a shared shopping list"
	}
	text := item.Text
	if text == "" {
		text = "an item"
	}
	return push.Message{
		Title: "Shopping list updated",
		Body:  fmt.Sprintf("New item in %s: %s", name, text),
		Data: map[string]string{
			"type":       string(model.ItemTypeShoplist),
			"shoplistId": list.Id,
			"itemId":     itemId,
		},
	}
}
