package watcher

import (
	"context"
	"fmt"

	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/fanout"
	"recipe-push-server/internal/model"
	"recipe-push-server/internal/push"
	"recipe-push-server/internal/repository/recipe"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const fallbackRecipeLabel = "a recipe"

type listKind struct {
	name        string
	title       string
	dataType    string
	defaultName string
}

var (
	menuKind = listKind{
		name:        "menulists",
		title:       "Menu updated",
		dataType:    string(model.ItemTypeMenu),
		defaultName: "a shared menu",
	}
	recipeCollectionKind = listKind{
		name:        "recipeCollections",
		title:       "Collection updated",
		dataType:    string(model.ItemTypeRecipeCollection),
		defaultName: "a shared collection",
	}
)

// MembershipHandler notifies the members of a shared list about recipes added to it.
// It caches the last seen recipe ids of every list to compute additions.
type MembershipHandler[T any] struct {
	kind    listKind
	view    func(T) model.ShareableList
	recipes recipe.IRepository
	cache   map[string][]string
	logger  zerolog.Logger
}

var (
	_ Handler[model.Menu]             = (*MembershipHandler[model.Menu])(nil)
	_ Handler[model.RecipeCollection] = (*MembershipHandler[model.RecipeCollection])(nil)
)

func NewMenuHandler(recipes recipe.IRepository) *MembershipHandler[model.Menu] {
	return newMembershipHandler(menuKind, model.Menu.Shareable, recipes)
}

func NewRecipeCollectionHandler(recipes recipe.IRepository) *MembershipHandler[model.RecipeCollection] {
	return newMembershipHandler(recipeCollectionKind, model.RecipeCollection.Shareable, recipes)
}

func newMembershipHandler[T any](kind listKind, view func(T) model.ShareableList, recipes recipe.IRepository) *MembershipHandler[T] {
	return &MembershipHandler[T]{
		kind:    kind,
		view:    view,
		recipes: recipes,
		cache:   map[string][]string{},
		logger:  log.With().Str("watcher", kind.name).Logger(),
	}
}

func (h *MembershipHandler[T]) Initialize(_ context.Context, snapshot event.Snapshot[T]) []fanout.Task {
	h.cache = make(map[string][]string, len(snapshot.Changes))
	for _, change := range snapshot.Changes {
		if change.Type == event.DbDocDeleted {
			continue
		}
		h.remember(change.Id, h.view(change.Data).MemberIds)
	}
	return nil
}

func (h *MembershipHandler[T]) OnChange(ctx context.Context, change event.Change[T]) []fanout.Task {
	switch change.Type {
	case event.DbDocDeleted:
		delete(h.cache, change.Id)
		return nil
	case event.DbDocAdded:
		h.remember(change.Id, h.view(change.Data).MemberIds)
		return nil
	}

	list := h.view(change.Data)
	list.Id = change.Id

	added := Added(h.cache[change.Id], list.MemberIds)
	// the cache follows every modification, even one without additions
	h.remember(change.Id, list.MemberIds)

	if len(added) == 0 {
		return nil
	}
	if len(list.SharedWith) == 0 {
		h.logger.Info().Str("list", list.Id).Msg("list is not shared, skipping")
		return nil
	}

	recipients := Recipients(list.UserId, list.SharedWith, list.UpdatedBy)
	if len(recipients) == 0 {
		h.logger.Info().Str("list", list.Id).Msg("no recipients besides the author")
		return nil
	}

	tasks := make([]fanout.Task, 0, len(added)*len(recipients))
	for _, recipeId := range added {
		msg := h.message(list, recipeId, h.label(ctx, recipeId))
		for _, recipient := range recipients {
			tasks = append(tasks, fanout.Task{
				RecipientId: recipient,
				Kind:        fanout.KindUpdate,
				Message:     msg,
			})
		}
	}
	return tasks
}

func (h *MembershipHandler[T]) remember(id string, members []string) {
	h.cache[id] = append([]string(nil), members...)
}

// label looks up the recipe title, falling back to a generic label.
func (h *MembershipHandler[T]) label(ctx context.Context, recipeId string) string {
	r, err := h.recipes.GetById(ctx, recipeId)
	if err != nil {
		h.logger.Warn().Err(err).Str("recipe", recipeId).Msg("recipe title lookup failed")
		return fallbackRecipeLabel
	}
	if r == nil || r.Title == "" {
		return fallbackRecipeLabel
	}
	return r.Title
}

func (h *MembershipHandler[T]) message(list model.ShareableList, recipeId, label string) push.Message {
	name := list.Name
	if name == "" {
		name = h.kind.defaultName
	}
	return push.Message{
		Title: h.kind.title,
		Body:  fmt.Sprintf("New recipe in %s: %s", name, label),
		Data: map[string]string{
			"type":     h.kind.dataType,
			"listId":   list.Id,
			"recipeId": recipeId,
		},
	}
}
